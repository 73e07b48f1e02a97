package model

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/arloliu/curvefit/errs"
)

// Type identifies a built-in model shape.
type Type int

const (
	// TypeLinear is y = a*x + b
	TypeLinear Type = iota
	// TypeHyperbolic is y = a + b/x
	TypeHyperbolic
	// TypeLogarithmic is y = a + b*ln(x)
	TypeLogarithmic
	// TypePower is y = a * x^b
	TypePower
	// TypeExponential is y = a * e^(b*x)
	TypeExponential
	// TypeQuadratic is y = a + b*x + c*x²
	TypeQuadratic
	// TypeGaussian is y = amplitude * e^(-(x-center)²/(2*sigma²)) + offset
	TypeGaussian
)

var typeNames = map[Type]string{
	TypeLinear:      "linear",
	TypeHyperbolic:  "hyperbolic",
	TypeLogarithmic: "logarithmic",
	TypePower:       "power",
	TypeExponential: "exponential",
	TypeQuadratic:   "quadratic",
	TypeGaussian:    "gaussian",
}

// String returns the catalog name of the type.
func (t Type) String() string {
	if name, exists := typeNames[t]; exists {
		return name
	}

	return "unknown"
}

var typeFromString = map[string]Type{
	"linear":      TypeLinear,
	"hyperbolic":  TypeHyperbolic,
	"logarithmic": TypeLogarithmic,
	"power":       TypePower,
	"exponential": TypeExponential,
	"quadratic":   TypeQuadratic,
	"polynomial":  TypeQuadratic,
	"gaussian":    TypeGaussian,
}

// TypeFromString returns the Type for a catalog name (case-insensitive).
// Returns Type(-1) for unknown names.
func TypeFromString(name string) Type {
	if t, exists := typeFromString[strings.ToLower(name)]; exists {
		return t
	}

	return Type(-1)
}

// Linear returns y = a*x + b.
func Linear() *Model {
	return MustNew(TypeLinear.String(), func(x float64, p []float64) float64 {
		return p[0]*x + p[1]
	}, "x", "a", "b")
}

// Hyperbolic returns y = a + b/x.
func Hyperbolic() *Model {
	return MustNew(TypeHyperbolic.String(), func(x float64, p []float64) float64 {
		return p[0] + p[1]/x
	}, "x", "a", "b")
}

// Logarithmic returns y = a + b*ln(x).
func Logarithmic() *Model {
	return MustNew(TypeLogarithmic.String(), func(x float64, p []float64) float64 {
		return p[0] + p[1]*math.Log(x)
	}, "x", "a", "b")
}

// Power returns y = a * x^b.
func Power() *Model {
	return MustNew(TypePower.String(), func(x float64, p []float64) float64 {
		return p[0] * math.Pow(x, p[1])
	}, "x", "a", "b")
}

// Exponential returns y = a * e^(b*x).
func Exponential() *Model {
	return MustNew(TypeExponential.String(), func(x float64, p []float64) float64 {
		return p[0] * math.Exp(p[1]*x)
	}, "x", "a", "b")
}

// Quadratic returns y = a + b*x + c*x².
func Quadratic() *Model {
	return MustNew(TypeQuadratic.String(), func(x float64, p []float64) float64 {
		return p[0] + p[1]*x + p[2]*x*x
	}, "x", "a", "b", "c")
}

// Gaussian returns y = amplitude * e^(-(x-center)²/(2*sigma²)) + offset.
func Gaussian() *Model {
	return MustNew(TypeGaussian.String(), func(x float64, p []float64) float64 {
		d := x - p[1]
		return p[0]*math.Exp(-d*d/(2*p[2]*p[2])) + p[3]
	}, "x", "amplitude", "center", "sigma", "offset")
}

// ByName returns a fresh built-in model by catalog name (case-insensitive).
//
// Example:
//
//	m, err := model.ByName("exponential")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(m) // exponential(x; a, b)
func ByName(name string) (*Model, error) {
	switch TypeFromString(name) {
	case TypeLinear:
		return Linear(), nil
	case TypeHyperbolic:
		return Hyperbolic(), nil
	case TypeLogarithmic:
		return Logarithmic(), nil
	case TypePower:
		return Power(), nil
	case TypeExponential:
		return Exponential(), nil
	case TypeQuadratic:
		return Quadratic(), nil
	case TypeGaussian:
		return Gaussian(), nil
	default:
		supported := make([]string, 0, len(typeNames))
		for _, n := range typeNames {
			supported = append(supported, n)
		}
		slices.Sort(supported)

		return nil, fmt.Errorf("%w: unknown model type: %s. Supported types: %s", errs.ErrInvalidModel, name, strings.Join(supported, ", "))
	}
}
