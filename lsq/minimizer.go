package lsq

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/arloliu/curvefit/errs"
	"github.com/arloliu/curvefit/internal/options"
)

// Method selects the gonum optimization method used by a Minimizer.
type Method int

const (
	// MethodLBFGS is limited-memory BFGS with a numeric gradient.
	MethodLBFGS Method = iota
	// MethodBFGS is BFGS with a numeric gradient.
	MethodBFGS
	// MethodNelderMead is the derivative-free simplex method.
	MethodNelderMead
)

func (m Method) String() string {
	switch m {
	case MethodLBFGS:
		return "lbfgs"
	case MethodBFGS:
		return "bfgs"
	case MethodNelderMead:
		return "nelder-mead"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

func (m Method) gonum() optimize.Method {
	switch m {
	case MethodBFGS:
		return &optimize.BFGS{}
	case MethodNelderMead:
		return &optimize.NelderMead{}
	default:
		return &optimize.LBFGS{}
	}
}

// DefaultMinimizerGradientTol is the gradient norm below which a Minimizer run counts
// as converged.
const DefaultMinimizerGradientTol = 1e-8

// MinimizerOption configures a Minimizer.
type MinimizerOption = options.Option[*Minimizer]

// Minimizer solves the least-squares problem by minimizing the half sum of squared
// residuals with a general-purpose gonum optimizer. It is slower than
// LevenbergMarquardt but tolerates models whose Jacobian is poorly conditioned far from
// the solution.
type Minimizer struct {
	method        Method
	maxIterations int
	gradientTol   float64
}

var _ Solver = (*Minimizer)(nil)

// NewMinimizer creates a Minimizer using L-BFGS by default.
func NewMinimizer(opts ...MinimizerOption) (*Minimizer, error) {
	mz := &Minimizer{
		method:        MethodLBFGS,
		maxIterations: DefaultMaxIterations * 10,
		gradientTol:   DefaultMinimizerGradientTol,
	}
	if err := options.Apply(mz, opts...); err != nil {
		return nil, err
	}

	return mz, nil
}

// WithMethod selects the optimization method.
func WithMethod(m Method) MinimizerOption {
	return options.New(func(mz *Minimizer) error {
		if m < MethodLBFGS || m > MethodNelderMead {
			return fmt.Errorf("%w: unknown method %v", errs.ErrInvalidSetting, m)
		}
		mz.method = m

		return nil
	})
}

// WithMajorIterations limits the number of major iterations.
func WithMajorIterations(n int) MinimizerOption {
	return options.New(func(mz *Minimizer) error {
		if n <= 0 {
			return fmt.Errorf("%w: major iterations must be positive, got %d", errs.ErrInvalidSetting, n)
		}
		mz.maxIterations = n

		return nil
	})
}

// WithGradientTolerance sets the gradient norm below which the run counts as converged.
func WithGradientTolerance(tol float64) MinimizerOption {
	return options.New(func(mz *Minimizer) error {
		if !(tol > 0) {
			return fmt.Errorf("%w: gradient tolerance must be positive, got %v", errs.ErrInvalidSetting, tol)
		}
		mz.gradientTol = tol

		return nil
	})
}

// Solve implements Solver.
func (mz *Minimizer) Solve(obj Objective, x, y, w, p0 []float64) (*Result, error) {
	prob, err := newProblem(obj, x, y, w, p0)
	if err != nil {
		return nil, err
	}

	res := make([]float64, len(y))
	prob.residuals(res, p0)
	if !allFinite(res) {
		return prob.diverged(append([]float64(nil), p0...), res), nil
	}

	cost := func(params []float64) float64 {
		r := make([]float64, len(y))
		prob.residuals(r, params)

		return halfSumSquares(r)
	}
	grad := func(g, params []float64) {
		fd.Gradient(g, cost, params, &fd.Settings{Formula: fd.Central})
	}
	p := optimize.Problem{Func: cost, Grad: grad}
	settings := &optimize.Settings{
		MajorIterations:   mz.maxIterations,
		GradientThreshold: mz.gradientTol,
	}

	out, err := optimize.Minimize(p, append([]float64(nil), p0...), settings, mz.method.gonum())
	if out == nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrCannotFit, err)
	}

	params := append([]float64(nil), out.X...)
	prob.residuals(res, params)

	ok := err == nil && converged(out.Status)
	if !ok && allFinite(res) {
		// line searches stall on the numeric gradient's noise floor at the minimum
		g := make([]float64, len(params))
		grad(g, params)
		ok = floats.Norm(g, math.Inf(1)) <= mz.gradientTol*(1+cost(params))
	}

	return prob.result(params, res, out.MajorIterations, ok), nil
}

func converged(s optimize.Status) bool {
	switch s {
	case optimize.Success,
		optimize.FunctionThreshold,
		optimize.FunctionConvergence,
		optimize.GradientThreshold,
		optimize.StepConvergence,
		optimize.MethodConverge:
		return true
	default:
		return false
	}
}

// EstimateErrors implements Solver.
func (mz *Minimizer) EstimateErrors(res *Result, level float64) ([]float64, error) {
	return confidenceErrors(res, level)
}

// EstimateCovariance implements Solver.
func (mz *Minimizer) EstimateCovariance(res *Result) (*mat.SymDense, error) {
	return covariance(res)
}
