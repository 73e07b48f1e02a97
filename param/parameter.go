// Package param manages the free/fixed state of model parameters.
//
// Every parameter declared by a model (excluding the independent variable) has exactly
// one entry, positioned 1..N in declaration order. A parameter is either Free, with a
// guess that the optimizer starts from and, after a converged fit, a best-fit value and
// uncertainty; or Fixed, held at a constant during fitting.
//
// Any change to roles, guesses or constants clears the fit results of the whole set:
// a result computed for one configuration is never reported for another.
package param

import "fmt"

// DefaultGuess is the initial guess of every parameter in a new set.
const DefaultGuess = 1.0

// Kind tags the two parameter variants.
type Kind uint8

const (
	// Free parameters are adjusted by the optimizer.
	Free Kind = iota
	// Fixed parameters are held constant during fitting.
	Fixed
)

// String returns "free" or "fixed".
func (k Kind) String() string {
	switch k {
	case Free:
		return "free"
	case Fixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// estimate holds the outcome of a converged fit for one Free parameter.
type estimate struct {
	value       float64
	uncertainty float64
}

// Parameter is one model parameter. The zero Kind is Free.
type Parameter struct {
	// Name is the declared argument name.
	Name string
	// Position is the 1-based index in the model's parameter list.
	Position int
	// Kind is Free or Fixed.
	Kind Kind
	// Value is the guess for a Free parameter or the constant for a Fixed one.
	Value float64

	fit *estimate
}

// IsFree reports whether the parameter is adjusted by the optimizer.
func (p Parameter) IsFree() bool {
	return p.Kind == Free
}

// FitValue returns the best-fit value. ok is false for Fixed parameters and for
// Free parameters without a converged fit.
func (p Parameter) FitValue() (value float64, ok bool) {
	if p.Kind != Free || p.fit == nil {
		return 0, false
	}

	return p.fit.value, true
}

// FitUncertainty returns the best-fit uncertainty, with the same availability rules
// as FitValue.
func (p Parameter) FitUncertainty() (uncertainty float64, ok bool) {
	if p.Kind != Free || p.fit == nil {
		return 0, false
	}

	return p.fit.uncertainty, true
}

// String formats the parameter for reports, e.g. "a = 1.75 ± 0.12" or "b = 0 (fixed)".
func (p Parameter) String() string {
	switch p.Kind {
	case Fixed:
		return fmt.Sprintf("%s = %g (fixed)", p.Name, p.Value)
	case Free:
		if p.fit != nil {
			return fmt.Sprintf("%s = %g ± %g", p.Name, p.fit.value, p.fit.uncertainty)
		}

		return fmt.Sprintf("%s ≈ %g (guess)", p.Name, p.Value)
	default:
		return p.Name + " = ?"
	}
}
