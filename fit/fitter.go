// Package fit orchestrates fitting a parametric model to a dataset.
//
// A Fitter owns a model, its parameter set, a dataset, the settings and the outcome of
// the last fit. It moves through four states:
//
//	NoData ──SetData──▶ DataSet ──Fit──▶ Converged
//	                       ▲        └───▶ Failed
//	                       └── any mutation of data, mask, bounds, roles or guesses
//
// Results are only reported in the Converged state. Every mutation that could change
// the outcome of a fit discards the previous result as a whole, so a value, an
// uncertainty, a residual or a covariance computed for one configuration is never
// reported for another.
//
// Failing to converge is an expected outcome: Fit logs a warning, moves to Failed and
// returns nil. Errors are reserved for unusable input (ErrBadData, ErrCannotFit) and for
// reading results that do not exist (ErrNoResults).
//
//	f, err := fit.New(model.Linear())
//	if err != nil {
//		return err
//	}
//	if err := f.SetData(x, y, yerr); err != nil {
//		return err
//	}
//	if err := f.Fit(); err != nil {
//		return err
//	}
//	slope, err := f.Read("a")
//
// A Fitter is not safe for concurrent use.
package fit

import (
	"fmt"
	"log/slog"

	"github.com/arloliu/curvefit/dataset"
	"github.com/arloliu/curvefit/errs"
	"github.com/arloliu/curvefit/internal/options"
	"github.com/arloliu/curvefit/lsq"
	"github.com/arloliu/curvefit/model"
	"github.com/arloliu/curvefit/param"
	"github.com/arloliu/curvefit/plotdata"
	"github.com/arloliu/curvefit/settings"
)

// State is the lifecycle state of a Fitter.
type State int

const (
	// StateNoData means no dataset has been loaded.
	StateNoData State = iota
	// StateDataSet means data is loaded and no valid result exists.
	StateDataSet
	// StateConverged means the last fit converged and its results are current.
	StateConverged
	// StateFailed means the last fit did not converge.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNoData:
		return "no-data"
	case StateDataSet:
		return "data-set"
	case StateConverged:
		return "converged"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Fitter fits one model to one dataset.
type Fitter struct {
	model    *model.Model
	params   *param.Set
	data     *dataset.Dataset
	settings settings.Settings
	solver   lsq.Solver
	renderer plotdata.Renderer
	logger   *slog.Logger

	state  State
	result *Result
}

// Option configures a Fitter.
type Option = options.Option[*Fitter]

// WithSolver replaces the default Levenberg-Marquardt solver.
func WithSolver(s lsq.Solver) Option {
	return options.New(func(f *Fitter) error {
		if s == nil {
			return fmt.Errorf("%w: nil solver", errs.ErrInvalidSetting)
		}
		f.solver = s

		return nil
	})
}

// WithLogger sets the logger for warnings and fit summaries.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(f *Fitter) {
		if logger != nil {
			f.logger = logger
		}
	})
}

// WithSettings replaces the default settings.
func WithSettings(s settings.Settings) Option {
	return options.New(func(f *Fitter) error {
		if err := s.Validate(); err != nil {
			return err
		}
		f.settings = s.Clone()

		return nil
	})
}

// WithRenderer attaches a plot renderer. It is called after every mutation when the
// autoplot setting is on.
func WithRenderer(r plotdata.Renderer) Option {
	return options.NoError(func(f *Fitter) {
		f.renderer = r
	})
}

// New creates a Fitter for m. All parameters start Free with guess param.DefaultGuess.
//
// Returns ErrCannotFit if m declares no parameters besides the independent variable.
func New(m *model.Model, opts ...Option) (*Fitter, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil model", errs.ErrInvalidModel)
	}

	f := &Fitter{
		model:    m,
		data:     dataset.New(),
		settings: settings.Default(),
		logger:   slog.Default(),
		state:    StateNoData,
	}
	if err := options.Apply(f, opts...); err != nil {
		return nil, err
	}
	if f.solver == nil {
		lm, err := lsq.NewLevenbergMarquardt()
		if err != nil {
			return nil, err
		}
		f.solver = lm
	}

	params, err := param.New(m, param.WithLogger(f.logger))
	if err != nil {
		return nil, err
	}
	f.params = params

	return f, nil
}

// Model returns the fitted model.
func (f *Fitter) Model() *model.Model {
	return f.model
}

// State returns the current lifecycle state.
func (f *Fitter) State() State {
	return f.state
}

// Settings returns a copy of the current settings.
func (f *Fitter) Settings() settings.Settings {
	return f.settings.Clone()
}

// Parameters returns copies of all parameters ordered by position.
func (f *Fitter) Parameters() []param.Parameter {
	return f.params.All()
}

// Data returns the dataset. Callers must not modify it directly; use the Fitter's
// mutators so results are invalidated.
func (f *Fitter) Data() *dataset.Dataset {
	return f.data
}

// invalidate discards the fit result and returns to DataSet (or NoData without data).
func (f *Fitter) invalidate() {
	f.result = nil
	f.params.Invalidate()
	if f.data.Empty() {
		f.state = StateNoData
	} else {
		f.state = StateDataSet
	}
}

// changed is called after every mutation.
func (f *Fitter) changed() {
	f.invalidate()
	f.autoplot()
}
