package fit

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/arloliu/curvefit/errs"
	"github.com/arloliu/curvefit/internal/hash"
	"github.com/arloliu/curvefit/settings"
)

// Result is the outcome of a converged fit.
type Result struct {
	// Params holds the best-fit values of the Free parameters ordered by position.
	Params []float64
	// Errors holds the uncertainties of Params at the configured error range.
	Errors []float64
	// Residuals holds (y - f(x)) / |err| for every active point, in dataset order.
	Residuals []float64
	// Covariance is the Free x Free parameter covariance matrix.
	Covariance *mat.SymDense
	// Index maps each residual to its dataset index.
	Index []int
	// DOF is the number of active points minus the number of Free parameters.
	DOF int
	// Iterations is the solver's iteration count.
	Iterations int

	fingerprint uint64
}

func (r *Result) clone() *Result {
	out := *r
	out.Params = slices.Clone(r.Params)
	out.Errors = slices.Clone(r.Errors)
	out.Residuals = slices.Clone(r.Residuals)
	out.Index = slices.Clone(r.Index)
	if r.Covariance != nil {
		out.Covariance = mat.NewSymDense(r.Covariance.SymmetricDim(), nil)
		out.Covariance.CopySym(r.Covariance)
	}

	return &out
}

// Fit runs the solver on the active data, optionally applying settings overrides
// first. Overrides persist like Configure.
//
// On convergence the best-fit values, their uncertainties, the residuals and the
// covariance are stored and the state becomes Converged. Without convergence every
// result is discarded, a warning is logged, the state becomes Failed and Fit returns
// nil.
//
// Returns ErrBadData if no data is loaded and ErrCannotFit if no parameter is Free or
// the active points cannot determine the Free parameters.
func (f *Fitter) Fit(overrides ...settings.Option) error {
	if f.data.Empty() {
		return fmt.Errorf("%w: no data to fit", errs.ErrBadData)
	}
	if len(overrides) > 0 {
		if err := f.Configure(overrides...); err != nil {
			return err
		}
	}

	active := f.data.Active(f.settings.Bounds())
	free := f.params.FreeCount()
	if free == 0 {
		return fmt.Errorf("%w: every parameter of %s is fixed", errs.ErrCannotFit, f.model)
	}

	weights := make([]float64, active.Len())
	for i, e := range active.Err {
		weights[i] = 1 / math.Abs(e)
	}

	full := make([]float64, f.params.Len())
	objective := func(x, trial []float64) []float64 {
		f.params.AssembleInto(full, trial)
		return f.model.EvalAll(x, full)
	}

	f.invalidate()
	res, err := f.solver.Solve(objective, active.X, active.Y, weights, f.params.FreeGuesses())
	if err != nil {
		return fmt.Errorf("fit %s: %w", f.model, err)
	}

	if !res.Converged {
		f.fail("fit did not converge", slog.Int("iterations", res.Iterations))
		return nil
	}

	uncertainties, err := f.solver.EstimateErrors(res, f.settings.ErrorRange)
	if err == nil {
		var cov *mat.SymDense
		cov, err = f.solver.EstimateCovariance(res)
		if err == nil {
			f.store(res.Params, uncertainties, res.Residuals, cov, active.Index, res.DOF, res.Iterations)
			return nil
		}
	}
	if !errors.Is(err, errs.ErrCannotFit) {
		return err
	}
	f.fail("fit converged but the covariance could not be estimated", slog.String("error", err.Error()))

	return nil
}

func (f *Fitter) store(params, uncertainties, solverRes []float64, cov *mat.SymDense, index []int, dof, iters int) {
	if err := f.params.SetResults(params, uncertainties); err != nil {
		f.fail("solver returned an unexpected parameter count", slog.String("error", err.Error()))
		return
	}

	residuals := make([]float64, len(solverRes))
	for i, r := range solverRes {
		residuals[i] = -r
	}

	f.result = &Result{
		Params:      slices.Clone(params),
		Errors:      slices.Clone(uncertainties),
		Residuals:   residuals,
		Covariance:  cov,
		Index:       slices.Clone(index),
		DOF:         dof,
		Iterations:  iters,
		fingerprint: f.fingerprint(),
	}
	f.state = StateConverged

	f.logger.Info("fit converged",
		slog.String("model", f.model.String()),
		slog.Int("iterations", iters),
		slog.Int("dof", dof),
		slog.Any("params", params))
	f.autoplot()
}

func (f *Fitter) fail(msg string, attrs ...any) {
	f.invalidate()
	f.state = StateFailed
	f.logger.Warn(msg, append([]any{slog.String("model", f.model.String())}, attrs...)...)
	f.autoplot()
}

// fingerprint hashes every input that determines a fit result.
func (f *Fitter) fingerprint() uint64 {
	fp := hash.NewFingerprint().
		Float64s(f.data.X()).
		Float64s(f.data.Y()).
		Float64s(f.data.Err()).
		Bools(f.data.Outliers()).
		Float64(f.settings.ErrorRange)
	for _, b := range []*float64{f.settings.XMin, f.settings.XMax} {
		if b == nil {
			fp.Uint64(0)
		} else {
			fp.Uint64(1).Float64(*b)
		}
	}
	for _, p := range f.params.All() {
		fp.Text(p.Name).Int(int(p.Kind)).Float64(p.Value)
	}

	return fp.Sum()
}

// current returns the stored result if it still matches the fitter's inputs.
func (f *Fitter) current() (*Result, error) {
	if f.state != StateConverged || f.result == nil {
		return nil, fmt.Errorf("%w: state is %s", errs.ErrNoResults, f.state)
	}
	if f.result.fingerprint != f.fingerprint() {
		f.invalidate()
		return nil, fmt.Errorf("%w: inputs changed since the last fit", errs.ErrNoResults)
	}

	return f.result, nil
}

// Result returns a copy of the last converged fit.
//
// Returns ErrNoResults unless the state is Converged.
func (f *Fitter) Result() (*Result, error) {
	r, err := f.current()
	if err != nil {
		return nil, err
	}

	return r.clone(), nil
}
