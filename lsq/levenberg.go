package lsq

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/arloliu/curvefit/errs"
	"github.com/arloliu/curvefit/internal/options"
	"github.com/arloliu/curvefit/internal/pool"
)

// Default Levenberg-Marquardt settings.
const (
	DefaultMaxIterations = 200
	DefaultTau           = 1e-3
	DefaultGradientTol   = 1e-10
	DefaultStepTol       = 1e-12
	DefaultObjectiveTol  = 1e-30
)

// LMOption configures a LevenbergMarquardt solver.
type LMOption = options.Option[*LevenbergMarquardt]

// LevenbergMarquardt is a damped Gauss-Newton solver with a numeric central-difference
// Jacobian. The damping follows Nielsen's update rule.
//
// A LevenbergMarquardt value is stateless between calls and safe for concurrent use.
type LevenbergMarquardt struct {
	maxIterations int
	tau           float64
	gradientTol   float64
	stepTol       float64
	objectiveTol  float64
}

var _ Solver = (*LevenbergMarquardt)(nil)

// NewLevenbergMarquardt creates a solver with the given options applied over the defaults.
func NewLevenbergMarquardt(opts ...LMOption) (*LevenbergMarquardt, error) {
	lm := &LevenbergMarquardt{
		maxIterations: DefaultMaxIterations,
		tau:           DefaultTau,
		gradientTol:   DefaultGradientTol,
		stepTol:       DefaultStepTol,
		objectiveTol:  DefaultObjectiveTol,
	}
	if err := options.Apply(lm, opts...); err != nil {
		return nil, err
	}

	return lm, nil
}

// WithMaxIterations limits the number of iterations. Reaching the limit is reported as
// non-convergence.
func WithMaxIterations(n int) LMOption {
	return options.New(func(lm *LevenbergMarquardt) error {
		if n <= 0 {
			return fmt.Errorf("%w: max iterations must be positive, got %d", errs.ErrInvalidSetting, n)
		}
		lm.maxIterations = n

		return nil
	})
}

// WithTau sets the initial damping relative to the largest diagonal entry of JᵀJ.
func WithTau(tau float64) LMOption {
	return options.New(func(lm *LevenbergMarquardt) error {
		if !(tau > 0) {
			return fmt.Errorf("%w: tau must be positive, got %v", errs.ErrInvalidSetting, tau)
		}
		lm.tau = tau

		return nil
	})
}

// WithTolerances sets the convergence thresholds on the gradient infinity norm, the
// relative step length and the objective value. Zero keeps the current value.
func WithTolerances(gradient, step, objective float64) LMOption {
	return options.New(func(lm *LevenbergMarquardt) error {
		if gradient < 0 || step < 0 || objective < 0 {
			return fmt.Errorf("%w: tolerances must not be negative", errs.ErrInvalidSetting)
		}
		if gradient > 0 {
			lm.gradientTol = gradient
		}
		if step > 0 {
			lm.stepTol = step
		}
		if objective > 0 {
			lm.objectiveTol = objective
		}

		return nil
	})
}

// Solve implements Solver.
func (lm *LevenbergMarquardt) Solve(obj Objective, x, y, w, p0 []float64) (*Result, error) {
	prob, err := newProblem(obj, x, y, w, p0)
	if err != nil {
		return nil, err
	}

	m, n := len(y), len(p0)
	params := append([]float64(nil), p0...)
	res := make([]float64, m)
	prob.residuals(res, params)
	if !allFinite(res) {
		return prob.diverged(params, res), nil
	}

	trial, putTrial := pool.GetFloat64Slice(n)
	defer putTrial()
	trialRes, putTrialRes := pool.GetFloat64Slice(m)
	defer putTrialRes()

	jac := mat.NewDense(m, n, nil)
	var (
		a    mat.SymDense
		g    mat.VecDense
		step mat.VecDense
	)
	linearize := func() {
		prob.jacobian(jac, params, res)
		a.SymOuterK(1, jac.T())
		g.MulVec(jac.T(), mat.NewVecDense(m, res))
	}
	linearize()

	cost := halfSumSquares(res)
	found := mat.Norm(&g, math.Inf(1)) <= lm.gradientTol || cost <= lm.objectiveTol

	mu := 0.0
	for i := range n {
		mu = math.Max(mu, a.At(i, i))
	}
	mu *= lm.tau
	if mu == 0 {
		mu = lm.tau
	}
	nu := 2.0

	damped := mat.NewSymDense(n, nil)
	negG := mat.NewVecDense(n, nil)

	iter := 0
	for ; iter < lm.maxIterations && !found; iter++ {
		damped.CopySym(&a)
		for i := range n {
			damped.SetSym(i, i, a.At(i, i)+mu)
		}

		var chol mat.Cholesky
		if ok := chol.Factorize(damped); !ok {
			mu *= nu
			nu *= 2

			continue
		}
		negG.ScaleVec(-1, &g)
		if err := chol.SolveVecTo(&step, negG); err != nil {
			mu *= nu
			nu *= 2

			continue
		}

		h := step.RawVector().Data
		if floats.Norm(h, 2) <= lm.stepTol*(floats.Norm(params, 2)+lm.stepTol) {
			found = true
			break
		}

		floats.AddTo(trial, params, h)
		prob.residuals(trialRes, trial)

		rho := -1.0
		trialCost := math.Inf(1)
		if allFinite(trialRes) {
			trialCost = halfSumSquares(trialRes)
			// predicted reduction: hᵀ(mu h - g) / 2
			predicted := 0.0
			for i, hi := range h {
				predicted += hi * (mu*hi - g.AtVec(i))
			}
			rho = (cost - trialCost) / (predicted / 2)
		}

		if rho > 0 {
			copy(params, trial)
			copy(res, trialRes)
			cost = trialCost
			linearize()
			found = mat.Norm(&g, math.Inf(1)) <= lm.gradientTol || cost <= lm.objectiveTol
			mu *= math.Max(1.0/3, 1-math.Pow(2*rho-1, 3))
			nu = 2
		} else {
			mu *= nu
			nu *= 2
		}
	}

	return prob.result(params, res, iter, found), nil
}

// EstimateErrors implements Solver.
func (lm *LevenbergMarquardt) EstimateErrors(res *Result, level float64) ([]float64, error) {
	return confidenceErrors(res, level)
}

// EstimateCovariance implements Solver.
func (lm *LevenbergMarquardt) EstimateCovariance(res *Result) (*mat.SymDense, error) {
	return covariance(res)
}

func halfSumSquares(v []float64) float64 {
	return floats.Dot(v, v) / 2
}
