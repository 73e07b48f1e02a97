package fit

import (
	"fmt"

	"github.com/arloliu/curvefit/settings"
)

// Step is one stage of a Pipe.
type Step struct {
	name string
	run  func(*Fitter) error
}

// String returns the step name.
func (s Step) String() string {
	return s.name
}

// Pipe runs steps in order and stops at the first error, which is wrapped with the
// failing step's name. It returns f so calls can be chained:
//
//	f, err := f.Pipe(
//		fit.Data(x, y, yerr),
//		fit.Fix(map[string]float64{"b": 0}),
//		fit.Run(),
//	)
func (f *Fitter) Pipe(steps ...Step) (*Fitter, error) {
	for i, s := range steps {
		if s.run == nil {
			continue
		}
		if err := s.run(f); err != nil {
			return f, fmt.Errorf("step %d (%s): %w", i+1, s.name, err)
		}
	}

	return f, nil
}

// Data is a step that calls SetData.
func Data(x, y, yerr []float64) Step {
	return Step{name: "data", run: func(f *Fitter) error { return f.SetData(x, y, yerr) }}
}

// Columns is a step that calls SetColumns.
func Columns(rows [][]float64) Step {
	return Step{name: "columns", run: func(f *Fitter) error { return f.SetColumns(rows) }}
}

// Fix is a step that calls Fix.
func Fix(values map[string]float64) Step {
	return Step{name: "fix", run: func(f *Fitter) error { return f.Fix(values) }}
}

// Free is a step that calls Free.
func Free(names ...string) Step {
	return Step{name: "free", run: func(f *Fitter) error { return f.Free(names...) }}
}

// Guess is a step that calls SetGuesses.
func Guess(values map[string]float64) Step {
	return Step{name: "guess", run: func(f *Fitter) error { return f.SetGuesses(values) }}
}

// Mask is a step that calls ApplyMask.
func Mask(keep []bool) Step {
	return Step{name: "mask", run: func(f *Fitter) error { return f.ApplyMask(keep) }}
}

// Outliers is a step that calls IgnoreOutliers.
func Outliers(threshold float64, params ...float64) Step {
	return Step{name: "outliers", run: func(f *Fitter) error { return f.IgnoreOutliers(threshold, params...) }}
}

// Configure is a step that calls Configure.
func Configure(opts ...settings.Option) Step {
	return Step{name: "configure", run: func(f *Fitter) error { return f.Configure(opts...) }}
}

// Run is a step that calls Fit. A fit that does not converge does not stop the
// pipeline; check State afterwards.
func Run(overrides ...settings.Option) Step {
	return Step{name: "fit", run: func(f *Fitter) error { return f.Fit(overrides...) }}
}
