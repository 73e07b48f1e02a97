package regression

import (
	"fmt"
	"strings"

	"github.com/arloliu/curvefit/fit"
	"github.com/arloliu/curvefit/model"
)

// Model is one converged candidate.
type Model struct {
	// Type is the catalog model type.
	Type model.Type
	// Names holds the parameter names in declaration order.
	Names []string
	// Coefficients holds the best-fit parameter values in declaration order.
	Coefficients []float64
	// Errors holds the uncertainties of Coefficients at the configured error range.
	Errors []float64
	// RSquared is the coefficient of determination (goodness of fit, 0-1).
	RSquared float64
	// RMSE is the root mean square error.
	RMSE float64
	// ReducedChiSquared is the weighted goodness of fit, NaN without degrees of freedom.
	ReducedChiSquared float64
	// Formula is a human-readable representation of the fitted model.
	Formula string
	// Fitter is the converged fitter, for further diagnostics or plotting.
	Fitter *fit.Fitter
}

// Estimate evaluates the fitted model at x.
func (m *Model) Estimate(x float64) float64 {
	return m.Fitter.Model().Eval(x, m.Coefficients)
}

// String returns a string representation of the model.
func (m *Model) String() string {
	return fmt.Sprintf("Model{Type: %s, R²: %.4f, RMSE: %.4f, χ²ν: %.4f, Formula: %s}",
		m.Type, m.RSquared, m.RMSE, m.ReducedChiSquared, m.Formula)
}

func formula(m *model.Model, names []string, values []float64) string {
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%.4g", name, values[i])
	}

	return fmt.Sprintf("%s with %s", m, strings.Join(parts, ", "))
}

// Failure records a candidate that produced no result.
type Failure struct {
	// Type is the catalog model type.
	Type model.Type
	// Reason describes why the candidate was dropped.
	Reason string
}

// Result represents the outcome of an analysis.
type Result struct {
	// Name is the series name, empty for Analyze.
	Name string
	// BestFit is the best-ranked model.
	BestFit *Model
	// AllModels contains every converged candidate ranked best first.
	AllModels []*Model
	// Failed lists the candidates that did not converge or could not be fitted.
	Failed []Failure
}

// String returns a string representation of the result.
func (r *Result) String() string {
	if r.BestFit == nil {
		return "Result{BestFit: nil}"
	}

	return fmt.Sprintf("Result{BestFit: %s, TotalModels: %d, Failed: %d}",
		r.BestFit, len(r.AllModels), len(r.Failed))
}
