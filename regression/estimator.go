package regression

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/arloliu/curvefit/model"
)

// initialEstimate returns starting values for a catalog model from a closed-form
// regression on linearized data. ok is false when the linearization does not apply,
// for example a logarithm of a non-positive value.
func initialEstimate(t model.Type, x, y, w []float64) (guess []float64, ok bool) {
	switch t {
	case model.TypeLinear:
		a, b := linearFit(x, y, w)
		return []float64{b, a}, true
	case model.TypeHyperbolic:
		// y = a + b*(1/x)
		inv, ok := transform(x, func(v float64) float64 { return 1 / v }, nonZero)
		if !ok {
			return nil, false
		}
		a, b := linearFit(inv, y, w)

		return []float64{a, b}, true
	case model.TypeLogarithmic:
		// y = a + b*ln(x)
		lx, ok := transform(x, math.Log, positive)
		if !ok {
			return nil, false
		}
		a, b := linearFit(lx, y, w)

		return []float64{a, b}, true
	case model.TypePower:
		// ln(y) = ln(a) + b*ln(x)
		lx, okx := transform(x, math.Log, positive)
		ly, oky := transform(y, math.Log, positive)
		if !okx || !oky {
			return nil, false
		}
		lnA, b := linearFit(lx, ly, w)

		return []float64{math.Exp(lnA), b}, true
	case model.TypeExponential:
		// ln(y) = ln(a) + b*x
		ly, ok := transform(y, math.Log, positive)
		if !ok {
			return nil, false
		}
		lnA, b := linearFit(x, ly, w)

		return []float64{math.Exp(lnA), b}, true
	case model.TypeQuadratic:
		return quadraticFit(x, y, w)
	case model.TypeGaussian:
		return gaussianEstimate(x, y)
	default:
		return nil, false
	}
}

// linearFit returns the weighted least-squares intercept and slope of y = a + b*x.
func linearFit(x, y, w []float64) (a, b float64) {
	return stat.LinearRegression(x, y, w, false)
}

// quadraticFit solves the weighted normal equations of y = a + b*x + c*x².
func quadraticFit(x, y, w []float64) ([]float64, bool) {
	n := len(x)
	if n < 3 {
		return nil, false
	}

	design := mat.NewDense(n, 3, nil)
	rhs := mat.NewVecDense(n, nil)
	for i := range n {
		sw := math.Sqrt(w[i])
		design.Set(i, 0, sw)
		design.Set(i, 1, sw*x[i])
		design.Set(i, 2, sw*x[i]*x[i])
		rhs.SetVec(i, sw*y[i])
	}

	var coef mat.VecDense
	if err := coef.SolveVec(design, rhs); err != nil {
		return nil, false
	}

	return []float64{coef.AtVec(0), coef.AtVec(1), coef.AtVec(2)}, true
}

// gaussianEstimate takes the peak as amplitude and center, the baseline as offset and
// a quarter of the x span as sigma.
func gaussianEstimate(x, y []float64) ([]float64, bool) {
	if len(x) < 4 {
		return nil, false
	}

	peak := floats.MaxIdx(y)
	offset := floats.Min(y)
	sigma := (slices.Max(x) - slices.Min(x)) / 4
	if sigma == 0 {
		return nil, false
	}

	return []float64{y[peak] - offset, x[peak], sigma, offset}, true
}

func positive(v float64) bool { return v > 0 }

func nonZero(v float64) bool { return v != 0 }

func transform(vs []float64, fn func(float64) float64, valid func(float64) bool) ([]float64, bool) {
	out := make([]float64, len(vs))
	for i, v := range vs {
		if !valid(v) {
			return nil, false
		}
		out[i] = fn(v)
	}

	return out, true
}
