package regression

import (
	"fmt"
	"log/slog"

	"github.com/arloliu/curvefit/errs"
	"github.com/arloliu/curvefit/internal/options"
	"github.com/arloliu/curvefit/lsq"
	"github.com/arloliu/curvefit/model"
	"github.com/arloliu/curvefit/settings"
)

// Criterion selects how candidates are ranked.
type Criterion int

const (
	// ByRSquared ranks by the unweighted coefficient of determination, highest first.
	ByRSquared Criterion = iota
	// ByReducedChiSquared ranks by the distance of the reduced chi-squared from one,
	// closest first.
	ByReducedChiSquared
)

func (c Criterion) String() string {
	switch c {
	case ByRSquared:
		return "r-squared"
	case ByReducedChiSquared:
		return "reduced-chi-squared"
	default:
		return fmt.Sprintf("Criterion(%d)", int(c))
	}
}

// AnalyzeConfig holds the candidate list and the fitting configuration.
type AnalyzeConfig struct {
	Candidates []model.Type
	Criterion  Criterion
	Settings   settings.Settings
	Solver     lsq.Solver
	Logger     *slog.Logger
}

func defaultAnalyzeConfig() AnalyzeConfig {
	return AnalyzeConfig{
		Candidates: []model.Type{
			model.TypeLinear,
			model.TypeHyperbolic,
			model.TypeLogarithmic,
			model.TypePower,
			model.TypeExponential,
			model.TypeQuadratic,
		},
		Criterion: ByRSquared,
		Settings:  settings.Default(),
		Logger:    slog.Default(),
	}
}

// AnalyzeOption is a functional option for AnalyzeConfig.
type AnalyzeOption = options.Option[*AnalyzeConfig]

// WithCandidates replaces the candidate models.
func WithCandidates(types ...model.Type) AnalyzeOption {
	return options.New(func(cfg *AnalyzeConfig) error {
		if len(types) == 0 {
			return fmt.Errorf("%w: no candidate models", errs.ErrInvalidSetting)
		}
		for _, t := range types {
			if _, err := model.ByName(t.String()); err != nil {
				return fmt.Errorf("%w: candidate %d is not a catalog model", errs.ErrInvalidSetting, int(t))
			}
		}
		cfg.Candidates = append([]model.Type(nil), types...)

		return nil
	})
}

// WithCriterion sets the ranking criterion.
func WithCriterion(c Criterion) AnalyzeOption {
	return options.New(func(cfg *AnalyzeConfig) error {
		if c != ByRSquared && c != ByReducedChiSquared {
			return fmt.Errorf("%w: unknown criterion %v", errs.ErrInvalidSetting, c)
		}
		cfg.Criterion = c

		return nil
	})
}

// WithSettings sets the fitter settings used for every candidate, for example
// bounds or the error range.
func WithSettings(s settings.Settings) AnalyzeOption {
	return options.New(func(cfg *AnalyzeConfig) error {
		if err := s.Validate(); err != nil {
			return err
		}
		cfg.Settings = s.Clone()

		return nil
	})
}

// WithSolver sets the solver used for every candidate.
func WithSolver(s lsq.Solver) AnalyzeOption {
	return options.NoError(func(cfg *AnalyzeConfig) {
		cfg.Solver = s
	})
}

// WithLogger sets the logger passed to every fitter.
func WithLogger(logger *slog.Logger) AnalyzeOption {
	return options.NoError(func(cfg *AnalyzeConfig) {
		if logger != nil {
			cfg.Logger = logger
		}
	})
}
