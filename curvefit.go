// Package curvefit fits parametric models to measured data with per-point errors.
//
// It wraps a weighted nonlinear least-squares solver with a stateful fitter that
// tracks which parameters are free or fixed, which points are active, and whether the
// stored results still describe the current configuration.
//
// # Core Features
//
//   - Free and Fixed parameters, switchable at any time
//   - Weighted fits with weights 1/|yerr|
//   - Outlier masks and x-range bounds that restrict the active data
//   - Uncertainties at a configurable confidence level (Student's t)
//   - Studentized residuals, reduced chi-squared and the parameter covariance
//   - Automatic invalidation: results are never reported for a stale configuration
//   - Plot frames with optional compression for external renderers
//
// # Basic Usage
//
// Fitting a straight line with one parameter held fixed:
//
//	import "github.com/arloliu/curvefit"
//
//	f, _ := curvefit.NewCatalogFitter("linear")
//	_, err := f.Pipe(
//	    fit.Data(x, y, yerr),
//	    fit.Fix(map[string]float64{"b": 0}),
//	    fit.Run(),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if f.State() == curvefit.StateConverged {
//	    slope, _ := f.Read("a")
//	    fmt.Println(slope)
//	}
//
// Custom models are plain Go functions:
//
//	m, _ := model.FromFunc("decay", func(t, n0, tau float64) float64 {
//	    return n0 * math.Exp(-t/tau)
//	}, "t", "n0", "tau")
//	f, _ := curvefit.NewFitter(m)
//
// # Package Structure
//
// This package provides convenient top-level wrappers. The building blocks live in
// their own packages: model (model functions and the catalog), param (parameter
// sets), dataset (observations and masks), settings (configuration), lsq (solvers),
// fit (the fitter) and plotdata (plot frames and their binary encoding).
package curvefit

import (
	"github.com/arloliu/curvefit/fit"
	"github.com/arloliu/curvefit/format"
	"github.com/arloliu/curvefit/internal/hash"
	"github.com/arloliu/curvefit/model"
	"github.com/arloliu/curvefit/plotdata"
)

// Fitter lifecycle states.
const (
	StateNoData    = fit.StateNoData
	StateDataSet   = fit.StateDataSet
	StateConverged = fit.StateConverged
	StateFailed    = fit.StateFailed
)

// NewFitter creates a fitter for m with every parameter Free.
//
// Parameters:
//   - m: The model to fit
//   - opts: Optional configuration (see fit.Option)
//
// Available options:
//   - fit.WithSolver(lsq.Solver)
//   - fit.WithSettings(settings.Settings)
//   - fit.WithLogger(*slog.Logger)
//   - fit.WithRenderer(plotdata.Renderer)
//
// Returns ErrCannotFit if m has no parameters besides the independent variable.
func NewFitter(m *model.Model, opts ...fit.Option) (*fit.Fitter, error) {
	return fit.New(m, opts...)
}

// NewCatalogFitter creates a fitter for a built-in model looked up by name, such as
// "linear", "exponential" or "gaussian".
//
// Returns ErrInvalidModel for unknown names.
//
// Example:
//
//	f, err := curvefit.NewCatalogFitter("power")
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewCatalogFitter(name string, opts ...fit.Option) (*fit.Fitter, error) {
	m, err := model.ByName(name)
	if err != nil {
		return nil, err
	}

	return fit.New(m, opts...)
}

// FitData creates a fitter for m, loads the data and runs one fit.
//
// The returned fitter is Converged or Failed; a fit that does not converge is not an
// error. Any other failure returns a nil fitter.
func FitData(m *model.Model, x, y, yerr []float64, opts ...fit.Option) (*fit.Fitter, error) {
	f, err := fit.New(m, opts...)
	if err != nil {
		return nil, err
	}

	if _, err := f.Pipe(fit.Data(x, y, yerr), fit.Run()); err != nil {
		return nil, err
	}

	return f, nil
}

// ModelID returns the 64-bit identifier plot frames carry for a model name.
func ModelID(name string) uint64 {
	return hash.ID(name)
}

// EncodeFrame snapshots f as a plot frame and encodes it with the given compression.
func EncodeFrame(f *fit.Fitter, compression format.CompressionType) ([]byte, error) {
	return plotdata.Encode(f.Frame(), plotdata.WithCompression(compression))
}

// DecodeFrame decodes a plot frame produced by EncodeFrame.
func DecodeFrame(data []byte) (*plotdata.Frame, error) {
	return plotdata.Decode(data)
}
