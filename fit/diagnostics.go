package fit

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/arloliu/curvefit/errs"
	"github.com/arloliu/curvefit/internal/pool"
)

// StudentizedResiduals returns (y - f(x)) / |err| for every active point, in dataset
// order. With params (a full parameter vector, one value per model parameter) the
// model is evaluated at params; otherwise the residuals of the current fit are
// returned.
//
// Returns ErrNoResults without params and without a converged fit, ErrBadParameters if
// params has the wrong length and ErrBadData if no data is loaded.
func (f *Fitter) StudentizedResiduals(params ...float64) ([]float64, error) {
	if len(params) == 0 {
		r, err := f.current()
		if err != nil {
			return nil, err
		}

		return slices.Clone(r.Residuals), nil
	}
	if err := f.checkVector(params); err != nil {
		return nil, err
	}
	if f.data.Empty() {
		return nil, fmt.Errorf("%w: no data loaded", errs.ErrBadData)
	}

	active := f.data.Active(f.settings.Bounds())
	out := make([]float64, active.Len())
	f.model.EvalInto(out, active.X, params)
	for i := range out {
		out[i] = (active.Y[i] - out[i]) / math.Abs(active.Err[i])
	}

	return out, nil
}

// ReducedChiSquared returns the sum of squared studentized residuals divided by the
// degrees of freedom: active points minus len(params) when params is given, or minus
// the number of Free parameters for the current fit.
//
// Returns ErrCannotFit when there are no degrees of freedom, plus the errors of
// StudentizedResiduals.
func (f *Fitter) ReducedChiSquared(params ...float64) (float64, error) {
	res, err := f.StudentizedResiduals(params...)
	if err != nil {
		return 0, err
	}

	dof := len(res) - f.paramCount(params)
	if dof <= 0 {
		return 0, fmt.Errorf("%w: %d active points leave no degrees of freedom", errs.ErrCannotFit, len(res))
	}

	return floats.Dot(res, res) / float64(dof), nil
}

// ApplyModel evaluates the model at every x, using params (a full parameter vector)
// when given, otherwise the best-fit values with Fixed constants.
//
// Returns ErrNoResults without params and without a converged fit, and
// ErrBadParameters if params has the wrong length.
func (f *Fitter) ApplyModel(x []float64, params ...float64) ([]float64, error) {
	p, err := f.vector(params)
	if err != nil {
		return nil, err
	}

	return f.model.EvalAll(x, p), nil
}

// ParameterCovariance returns a copy of the Free x Free covariance matrix of the
// current fit, ordered by parameter position.
//
// Returns ErrNoResults unless the state is Converged.
func (f *Fitter) ParameterCovariance() (*mat.SymDense, error) {
	r, err := f.current()
	if err != nil {
		return nil, err
	}

	cov := mat.NewSymDense(r.Covariance.SymmetricDim(), nil)
	cov.CopySym(r.Covariance)

	return cov, nil
}

// Read returns the best-fit value of a Free parameter or the constant of a Fixed one.
//
// Returns ErrUnknownParameter for unknown names and ErrNoResults for a Free parameter
// without a converged fit.
func (f *Fitter) Read(name string) (float64, error) {
	if _, err := f.current(); err != nil && f.isFree(name) {
		return 0, err
	}

	return f.params.Read(name)
}

// Uncertainty returns the uncertainty of a Free parameter at the configured error
// range, or zero for a Fixed one.
func (f *Fitter) Uncertainty(name string) (float64, error) {
	if _, err := f.current(); err != nil && f.isFree(name) {
		return 0, err
	}

	return f.params.Uncertainty(name)
}

func (f *Fitter) isFree(name string) bool {
	p, ok := f.params.Get(name)
	return ok && p.IsFree()
}

// Stats summarizes the quality of a fit over the active points.
type Stats struct {
	// Active is the number of points taking part in the fit.
	Active int
	// DOF is Active minus the number of evaluated parameters.
	DOF int
	// ChiSquared is the sum of squared studentized residuals.
	ChiSquared float64
	// ReducedChiSquared is ChiSquared / DOF, or NaN without degrees of freedom.
	ReducedChiSquared float64
	// RSquared is the unweighted coefficient of determination.
	RSquared float64
	// RMSE is the unweighted root mean square error.
	RMSE float64
}

// Stats computes fit statistics at params (a full parameter vector) or, without params,
// at the current fit.
func (f *Fitter) Stats(params ...float64) (Stats, error) {
	res, err := f.StudentizedResiduals(params...)
	if err != nil {
		return Stats{}, err
	}
	p, err := f.vector(params)
	if err != nil {
		return Stats{}, err
	}

	active := f.data.Active(f.settings.Bounds())
	predicted, put := pool.GetFloat64Slice(active.Len())
	defer put()
	f.model.EvalInto(predicted, active.X, p)

	s := Stats{
		Active:            active.Len(),
		DOF:               active.Len() - f.paramCount(params),
		ChiSquared:        floats.Dot(res, res),
		ReducedChiSquared: math.NaN(),
		RSquared:          rSquared(active.Y, predicted),
		RMSE:              rmse(active.Y, predicted),
	}
	if s.DOF > 0 {
		s.ReducedChiSquared = s.ChiSquared / float64(s.DOF)
	}

	return s, nil
}

// rSquared is 1 - SSres/SStot, or 0 when the observations are constant.
func rSquared(observed, predicted []float64) float64 {
	if len(observed) == 0 {
		return 0
	}

	mean := stat.Mean(observed, nil)
	ssTot, ssRes := 0.0, 0.0
	for i, y := range observed {
		ssTot += (y - mean) * (y - mean)
		ssRes += (y - predicted[i]) * (y - predicted[i])
	}
	if ssTot == 0 {
		return 0
	}

	return 1 - ssRes/ssTot
}

func rmse(observed, predicted []float64) float64 {
	if len(observed) == 0 {
		return 0
	}

	return floats.Distance(observed, predicted, 2) / math.Sqrt(float64(len(observed)))
}

// paramCount is the number of parameters a diagnostic evaluates.
func (f *Fitter) paramCount(params []float64) int {
	if len(params) > 0 {
		return len(params)
	}

	return f.params.FreeCount()
}

// vector returns params after a length check, or the fitted full vector.
func (f *Fitter) vector(params []float64) ([]float64, error) {
	if len(params) > 0 {
		if err := f.checkVector(params); err != nil {
			return nil, err
		}

		return params, nil
	}
	if _, err := f.current(); err != nil {
		return nil, err
	}

	return f.params.Fitted()
}

func (f *Fitter) checkVector(params []float64) error {
	if len(params) != f.params.Len() {
		return fmt.Errorf("%w: got %d values, %s takes %d parameters",
			errs.ErrBadParameters, len(params), f.model, f.params.Len())
	}

	return nil
}
