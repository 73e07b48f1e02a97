// Package errs defines the sentinel errors returned by curvefit packages.
//
// Errors are returned either directly or wrapped with additional context using
// fmt.Errorf("...: %w", errs.ErrX). Callers should always match them with errors.Is.
//
// Solver non-convergence is deliberately absent from this list: a fit that does not
// converge is an expected outcome, reported through the fitter state and a logged
// warning rather than an error value.
package errs

import "errors"

var (
	// ErrCannotFit indicates a structural misconfiguration: the model declares no
	// parameters besides the independent variable, every parameter is fixed when a fit
	// is requested, or there are not enough active points to leave any degrees of freedom.
	ErrCannotFit = errors.New("curvefit: cannot fit")

	// ErrBadData indicates malformed input data: mismatched lengths, a non-broadcastable
	// error vector, an empty dataset at fit time, a wrong column count, a mask of the wrong
	// length, or error values that cannot be turned into weights.
	ErrBadData = errors.New("curvefit: bad data")

	// ErrNoResults indicates a post-fit quantity was requested while no converged fit
	// exists for the current inputs.
	ErrNoResults = errors.New("curvefit: no fit results")

	// ErrUnknownKey indicates a key is neither a recognized setting nor a model parameter.
	ErrUnknownKey = errors.New("curvefit: unknown key")

	// ErrUnknownParameter indicates the named parameter is not declared by the model.
	ErrUnknownParameter = errors.New("curvefit: unknown parameter")

	// ErrBadParameters indicates an explicit parameter vector has the wrong length.
	ErrBadParameters = errors.New("curvefit: bad parameter vector")

	// ErrInvalidSetting indicates a setting value failed validation.
	ErrInvalidSetting = errors.New("curvefit: invalid setting")

	// ErrInvalidModel indicates a malformed model signature.
	ErrInvalidModel = errors.New("curvefit: invalid model")

	// ErrInvalidFrame indicates an encoded plot frame is truncated or corrupted.
	ErrInvalidFrame = errors.New("curvefit: invalid plot frame")
)
