// Package lsq solves weighted nonlinear least-squares problems.
//
// A problem is an Objective evaluated over x samples, the observed y samples, one
// weight per sample and an initial parameter guess. The solver minimizes
//
//	sum_i (w_i * (f(x_i; p) - y_i))^2
//
// and reports the best-fit parameters together with the weighted residual vector
// w * (f(x; p) - y). Parameter uncertainties and the covariance matrix are derived
// from the weighted Jacobian at the solution.
//
// Two solvers are provided: LevenbergMarquardt, the default, and Minimizer, which hands
// the sum of squares to a general-purpose gonum optimizer.
package lsq

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/arloliu/curvefit/errs"
)

// Objective evaluates the model at every x for the given parameters.
type Objective func(x, params []float64) []float64

// Result is the outcome of a Solve call.
type Result struct {
	// Converged reports whether a convergence criterion was met.
	Converged bool
	// Params is the best parameter vector found.
	Params []float64
	// Residuals holds w * (f(x; Params) - y).
	Residuals []float64
	// DOF is len(y) - len(Params).
	DOF int
	// Iterations is the number of iterations performed.
	Iterations int
	// Jacobian is the weighted residual Jacobian at Params (len(y) x len(Params)).
	Jacobian *mat.Dense
}

// Cost returns half the sum of squared residuals.
func (r *Result) Cost() float64 {
	s := 0.0
	for _, v := range r.Residuals {
		s += v * v
	}

	return s / 2
}

// Solver is a weighted nonlinear least-squares solver.
type Solver interface {
	// Solve minimizes the weighted residuals of obj starting from p0.
	//
	// Returns ErrBadData if x, y and w differ in length, and ErrCannotFit if there are no
	// parameters or fewer samples than parameters. Failing to converge is not an error:
	// it is reported through Result.Converged. A model that is not finite at p0 is
	// reported the same way, with zero iterations.
	Solve(obj Objective, x, y, w, p0 []float64) (*Result, error)
	// EstimateErrors returns the symmetric confidence half-width of every parameter at the
	// given level in (0, 1).
	EstimateErrors(res *Result, level float64) ([]float64, error)
	// EstimateCovariance returns the parameter covariance matrix inv(JᵀJ).
	EstimateCovariance(res *Result) (*mat.SymDense, error)
}

// problem is a validated Solve input.
type problem struct {
	obj     Objective
	x, y, w []float64
}

func newProblem(obj Objective, x, y, w, p0 []float64) (*problem, error) {
	if obj == nil {
		return nil, fmt.Errorf("%w: nil objective", errs.ErrCannotFit)
	}
	if len(y) != len(x) || len(w) != len(x) {
		return nil, fmt.Errorf("%w: len(x)=%d, len(y)=%d, len(w)=%d", errs.ErrBadData, len(x), len(y), len(w))
	}
	if len(p0) == 0 {
		return nil, fmt.Errorf("%w: no parameters to fit", errs.ErrCannotFit)
	}
	if len(x) < len(p0) {
		return nil, fmt.Errorf("%w: %d samples cannot determine %d parameters", errs.ErrCannotFit, len(x), len(p0))
	}

	return &problem{obj: obj, x: x, y: y, w: w}, nil
}

// residuals writes w * (f(x; p) - y) into dst.
func (p *problem) residuals(dst, params []float64) {
	f := p.obj(p.x, params)
	for i := range dst {
		dst[i] = p.w[i] * (f[i] - p.y[i])
	}
}

func (p *problem) jacobian(dst *mat.Dense, params, origin []float64) {
	fd.Jacobian(dst, p.residuals, params, &fd.JacobianSettings{
		Formula:     fd.Central,
		OriginValue: origin,
	})
}

func (p *problem) result(params, res []float64, iters int, converged bool) *Result {
	jac := mat.NewDense(len(p.y), len(params), nil)
	p.jacobian(jac, params, res)

	return &Result{
		Converged:  converged,
		Params:     params,
		Residuals:  res,
		DOF:        len(p.y) - len(params),
		Iterations: iters,
		Jacobian:   jac,
	}
}

// diverged reports a start point where the model is not finite. It carries no
// Jacobian, so error and covariance estimation report ErrNoResults.
func (p *problem) diverged(params, res []float64) *Result {
	return &Result{
		Params:    params,
		Residuals: res,
		DOF:       len(p.y) - len(params),
	}
}

// covariance returns inv(JᵀJ) for the Jacobian stored in res.
func covariance(res *Result) (*mat.SymDense, error) {
	if res == nil || res.Jacobian == nil {
		return nil, fmt.Errorf("%w: no solver result", errs.ErrNoResults)
	}

	var jtj mat.SymDense
	jtj.SymOuterK(1, res.Jacobian.T())

	var chol mat.Cholesky
	if ok := chol.Factorize(&jtj); !ok {
		return nil, fmt.Errorf("%w: normal matrix is singular", errs.ErrCannotFit)
	}

	var cov mat.SymDense
	if err := chol.InverseTo(&cov); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrCannotFit, err)
	}

	return &cov, nil
}

// confidenceErrors scales the standard errors to a two-sided confidence half-width.
// Without degrees of freedom every error is +Inf.
func confidenceErrors(res *Result, level float64) ([]float64, error) {
	if !(level > 0 && level < 1) {
		return nil, fmt.Errorf("%w: confidence level must be in (0, 1), got %v", errs.ErrInvalidSetting, level)
	}

	cov, err := covariance(res)
	if err != nil {
		return nil, err
	}

	n := cov.SymmetricDim()
	out := make([]float64, n)
	if res.DOF <= 0 {
		for i := range out {
			out[i] = math.Inf(1)
		}

		return out, nil
	}

	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(res.DOF)}.Quantile((1 + level) / 2)
	for i := range out {
		out[i] = math.Sqrt(cov.At(i, i)) * t
	}

	return out, nil
}

func allFinite(v []float64) bool {
	for _, f := range v {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}

	return true
}
