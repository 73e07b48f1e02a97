package lsq

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/arloliu/curvefit/errs"
)

func line(x, p []float64) []float64 {
	out := make([]float64, len(x))
	for i, xi := range x {
		out[i] = p[0]*xi + p[1]
	}

	return out
}

func decay(x, p []float64) []float64 {
	out := make([]float64, len(x))
	for i, xi := range x {
		out[i] = p[0] * math.Exp(-p[1]*xi)
	}

	return out
}

func ones(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}

	return w
}

func newLM(t *testing.T, opts ...LMOption) *LevenbergMarquardt {
	t.Helper()
	lm, err := NewLevenbergMarquardt(opts...)
	require.NoError(t, err)

	return lm
}

func TestLevenbergMarquardt_Linear(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{1, 3, 5, 7, 9}

	res, err := newLM(t).Solve(line, x, y, ones(5), []float64{1, 1})
	require.NoError(t, err)
	require.True(t, res.Converged)
	require.InDelta(t, 2.0, res.Params[0], 1e-8)
	require.InDelta(t, 1.0, res.Params[1], 1e-8)
	require.Equal(t, 3, res.DOF)
	require.Len(t, res.Residuals, 5)
	for _, r := range res.Residuals {
		require.InDelta(t, 0.0, r, 1e-8)
	}
	require.InDelta(t, 0.0, res.Cost(), 1e-12)
}

func TestLevenbergMarquardt_Exponential(t *testing.T) {
	x := []float64{0, 0.5, 1, 1.5, 2, 2.5, 3, 3.5, 4}
	y := decay(x, []float64{5, 0.8})

	res, err := newLM(t).Solve(decay, x, y, ones(len(x)), []float64{1, 0.1})
	require.NoError(t, err)
	require.True(t, res.Converged)
	require.InDelta(t, 5.0, res.Params[0], 1e-6)
	require.InDelta(t, 0.8, res.Params[1], 1e-6)
}

func TestLevenbergMarquardt_ResidualSign(t *testing.T) {
	x := []float64{0, 1, 2}
	y := []float64{0, 0, 0}
	constant := func(x, p []float64) []float64 {
		out := make([]float64, len(x))
		for i := range out {
			out[i] = p[0]
		}

		return out
	}
	shifted := func(x, p []float64) []float64 {
		out := constant(x, p)
		out[0] += 3

		return out
	}

	res, err := newLM(t).Solve(shifted, x, y, []float64{2, 2, 2}, []float64{0})
	require.NoError(t, err)
	require.True(t, res.Converged)
	require.InDelta(t, -1.0, res.Params[0], 1e-8)
	// residuals are w * (model - y)
	require.InDelta(t, 2*(2.0), res.Residuals[0], 1e-8)
	require.InDelta(t, 2*(-1.0), res.Residuals[1], 1e-8)
}

func TestLevenbergMarquardt_IterationLimit(t *testing.T) {
	x := []float64{0, 0.5, 1, 1.5, 2, 2.5, 3, 3.5, 4}
	y := decay(x, []float64{5, 0.8})

	res, err := newLM(t, WithMaxIterations(1)).Solve(decay, x, y, ones(len(x)), []float64{1, 3})
	require.NoError(t, err)
	require.False(t, res.Converged)
	require.Equal(t, 1, res.Iterations)
	require.Len(t, res.Params, 2)
}

func TestLevenbergMarquardt_BadInput(t *testing.T) {
	lm := newLM(t)

	_, err := lm.Solve(line, []float64{1, 2, 3}, []float64{1, 2}, ones(3), []float64{1, 1})
	require.ErrorIs(t, err, errs.ErrBadData)

	_, err = lm.Solve(line, []float64{1}, []float64{1}, ones(1), []float64{1, 1})
	require.ErrorIs(t, err, errs.ErrCannotFit)

	_, err = lm.Solve(line, []float64{1, 2}, []float64{1, 2}, ones(2), nil)
	require.ErrorIs(t, err, errs.ErrCannotFit)

	_, err = lm.Solve(nil, []float64{1, 2}, []float64{1, 2}, ones(2), []float64{1})
	require.ErrorIs(t, err, errs.ErrCannotFit)

	nan := func(x, p []float64) []float64 {
		out := make([]float64, len(x))
		for i := range out {
			out[i] = math.NaN()
		}

		return out
	}
	res, err := lm.Solve(nan, []float64{1, 2}, []float64{1, 2}, ones(2), []float64{1})
	require.NoError(t, err)
	require.False(t, res.Converged)
	require.Zero(t, res.Iterations)
	require.Equal(t, []float64{1}, res.Params)

	_, err = lm.EstimateCovariance(res)
	require.ErrorIs(t, err, errs.ErrNoResults)
}

func TestSolve_NotFiniteAtGuess(t *testing.T) {
	x := []float64{100, 200, 300, 400, 500, 600, 700, 800}
	y := decay(x, []float64{2, 0.01})

	mz, err := NewMinimizer()
	require.NoError(t, err)

	for name, s := range map[string]Solver{"lm": newLM(t), "minimizer": mz} {
		t.Run(name, func(t *testing.T) {
			res, err := s.Solve(decay, x, y, ones(len(x)), []float64{1, -1})
			require.NoError(t, err)
			require.False(t, res.Converged)
			require.Equal(t, []float64{1, -1}, res.Params)
		})
	}
}

func TestLevenbergMarquardt_Options(t *testing.T) {
	_, err := NewLevenbergMarquardt(WithMaxIterations(0))
	require.ErrorIs(t, err, errs.ErrInvalidSetting)

	_, err = NewLevenbergMarquardt(WithTau(-1))
	require.ErrorIs(t, err, errs.ErrInvalidSetting)

	_, err = NewLevenbergMarquardt(WithTolerances(-1, 0, 0))
	require.ErrorIs(t, err, errs.ErrInvalidSetting)

	lm := newLM(t, WithTolerances(1e-6, 0, 0), WithTau(1e-2))
	require.InDelta(t, 1e-6, lm.gradientTol, 0)
	require.InDelta(t, DefaultStepTol, lm.stepTol, 0)
	require.InDelta(t, 1e-2, lm.tau, 0)
}

func TestCovariance(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{1, 3, 5, 7, 9}
	lm := newLM(t)

	res, err := lm.Solve(line, x, y, ones(5), []float64{1, 1})
	require.NoError(t, err)

	cov, err := lm.EstimateCovariance(res)
	require.NoError(t, err)
	require.Equal(t, 2, cov.SymmetricDim())
	// inverse of [[30, 10], [10, 5]]
	require.InDelta(t, 0.1, cov.At(0, 0), 1e-6)
	require.InDelta(t, -0.2, cov.At(0, 1), 1e-6)
	require.InDelta(t, 0.6, cov.At(1, 1), 1e-6)

	t.Run("errors are scaled by the t quantile", func(t *testing.T) {
		q := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: 3}.Quantile((1 + 0.68) / 2)
		e, err := lm.EstimateErrors(res, 0.68)
		require.NoError(t, err)
		require.InDelta(t, math.Sqrt(0.1)*q, e[0], 1e-6)
		require.InDelta(t, math.Sqrt(0.6)*q, e[1], 1e-6)

		wider, err := lm.EstimateErrors(res, 0.95)
		require.NoError(t, err)
		require.Greater(t, wider[0], e[0])
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := lm.EstimateErrors(res, 1)
		require.ErrorIs(t, err, errs.ErrInvalidSetting)
	})

	t.Run("no degrees of freedom", func(t *testing.T) {
		exact, err := lm.Solve(line, []float64{0, 1}, []float64{1, 3}, ones(2), []float64{1, 1})
		require.NoError(t, err)
		require.Zero(t, exact.DOF)

		e, err := lm.EstimateErrors(exact, 0.68)
		require.NoError(t, err)
		require.True(t, math.IsInf(e[0], 1))
	})

	t.Run("singular normal matrix", func(t *testing.T) {
		unused := func(x, p []float64) []float64 { return line(x, []float64{p[0], 0}) }
		res, err := lm.Solve(unused, x, y, ones(5), []float64{1, 1})
		require.NoError(t, err)

		_, err = lm.EstimateCovariance(res)
		require.ErrorIs(t, err, errs.ErrCannotFit)
	})

	t.Run("missing result", func(t *testing.T) {
		_, err := lm.EstimateCovariance(nil)
		require.ErrorIs(t, err, errs.ErrNoResults)
	})
}

func TestMinimizer(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{1, 3, 5, 7, 9}

	for _, m := range []Method{MethodLBFGS, MethodBFGS, MethodNelderMead} {
		t.Run(m.String(), func(t *testing.T) {
			mz, err := NewMinimizer(WithMethod(m))
			require.NoError(t, err)

			res, err := mz.Solve(line, x, y, ones(5), []float64{0.5, 0.5})
			require.NoError(t, err)
			require.True(t, res.Converged)
			require.InDelta(t, 2.0, res.Params[0], 1e-3)
			require.InDelta(t, 1.0, res.Params[1], 1e-3)

			cov, err := mz.EstimateCovariance(res)
			require.NoError(t, err)
			require.InDelta(t, 0.1, cov.At(0, 0), 1e-4)
		})
	}

	t.Run("options", func(t *testing.T) {
		_, err := NewMinimizer(WithMethod(Method(9)))
		require.ErrorIs(t, err, errs.ErrInvalidSetting)

		_, err = NewMinimizer(WithMajorIterations(0))
		require.ErrorIs(t, err, errs.ErrInvalidSetting)

		_, err = NewMinimizer(WithGradientTolerance(0))
		require.ErrorIs(t, err, errs.ErrInvalidSetting)

		_, err = NewMinimizer(WithGradientTolerance(1e-6), WithMethod(MethodBFGS))
		require.NoError(t, err)
	})
}
