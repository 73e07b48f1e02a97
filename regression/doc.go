// Package regression compares built-in models on one dataset and selects the best fit.
//
// Every candidate from the model catalog is fitted with its own fit.Fitter. Starting
// values come from a closed-form regression on linearized data (for example ln(y)
// against x for the exponential model), so the nonlinear solver starts close to the
// solution. Converged candidates are ranked by R² or by reduced chi-squared.
//
// # Usage Patterns
//
// ## Basic Analysis
//
// Fit every catalog model and use the winner:
//
//	result, err := regression.Analyze(x, y, yerr)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.BestFit)
//	y100 := result.BestFit.Estimate(100)
//
// ## Restricted Candidates
//
// Compare only the models that make physical sense:
//
//	result, err := regression.Analyze(x, y, yerr,
//	    regression.WithCandidates(model.TypePower, model.TypeExponential),
//	    regression.WithCriterion(regression.ByReducedChiSquared),
//	)
//
// ## Per-Series Analysis
//
// Analyze several series separately, for example to detect drift between runs:
//
//	results, err := regression.AnalyzeEach([]regression.Series{run1, run2})
//	for i, r := range results {
//	    fmt.Printf("run %d: %s\n", i, r.BestFit)
//	}
//
// Candidates whose fit fails to converge, or whose linearization does not apply to the
// data (a logarithm of a non-positive value), are reported in Result.Failed instead of
// failing the whole analysis.
package regression
