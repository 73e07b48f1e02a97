// Package model describes the parametric model functions that curvefit fits.
//
// A model is a scalar function of one independent variable and N parameters. Besides
// evaluating it, the fitter needs to know the declared argument names in order, since
// those names become the keys of the parameter set. Go keeps no argument names at run
// time, so a Model carries them explicitly alongside the function:
//
//	m, err := model.New("line", func(x float64, p []float64) float64 {
//	    return p[0]*x + p[1]
//	}, "x", "a", "b")
//
// Plain Go functions can be wrapped too; their arity is read through reflection and
// the names default to x, p1, p2, ... when omitted:
//
//	m, err := model.FromFunc("decay", func(t, n0, tau float64) float64 {
//	    return n0 * math.Exp(-t/tau)
//	}, "t", "n0", "tau")
//
// # Built-in Models
//
// The catalog provides the common shapes by name (see ByName):
//
//   - linear:      y = a*x + b
//   - hyperbolic:  y = a + b/x
//   - logarithmic: y = a + b*ln(x)
//   - power:       y = a * x^b
//   - exponential: y = a * e^(b*x)
//   - quadratic:   y = a + b*x + c*x²
//   - gaussian:    y = amplitude * e^(-(x-center)²/(2*sigma²)) + offset
package model
