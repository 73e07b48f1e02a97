package settings

import (
	"github.com/arloliu/curvefit/internal/options"
)

// Option modifies a Settings record.
type Option = options.Option[*Settings]

// Apply applies opts to a copy of s, validates the result and then commits it.
// s is left unchanged on error.
func (s *Settings) Apply(opts ...Option) error {
	next := s.Clone()
	if err := options.Apply(&next, opts...); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*s = next

	return nil
}

// WithErrorRange sets the confidence level of reported uncertainties.
func WithErrorRange(level float64) Option {
	return options.NoError(func(s *Settings) {
		s.ErrorRange = level
	})
}

// WithAutoPlot toggles re-rendering after every fitter mutation.
func WithAutoPlot(enabled bool) Option {
	return options.NoError(func(s *Settings) {
		s.AutoPlot = enabled
	})
}

// WithXScale sets the x axis scale.
func WithXScale(scale Scale) Option {
	return options.NoError(func(s *Settings) {
		s.XScale = scale
	})
}

// WithYScale sets the y axis scale.
func WithYScale(scale Scale) Option {
	return options.NoError(func(s *Settings) {
		s.YScale = scale
	})
}

// WithXMin sets the lower bound of the active x range.
func WithXMin(v float64) Option {
	return options.NoError(func(s *Settings) {
		s.XMin = &v
	})
}

// WithXMax sets the upper bound of the active x range.
func WithXMax(v float64) Option {
	return options.NoError(func(s *Settings) {
		s.XMax = &v
	})
}

// WithBounds sets both ends of the active x range.
func WithBounds(lo, hi float64) Option {
	return options.Compose[*Settings](WithXMin(lo), WithXMax(hi))
}

// WithoutBounds removes any x range restriction.
func WithoutBounds() Option {
	return options.NoError(func(s *Settings) {
		s.XMin = nil
		s.XMax = nil
	})
}

// WithCurvePoints sets how many samples a rendered curve has.
func WithCurvePoints(n int) Option {
	return options.NoError(func(s *Settings) {
		s.CurvePoints = n
	})
}

// WithLabels sets the plot title and axis labels.
func WithLabels(title, xlabel, ylabel string) Option {
	return options.NoError(func(s *Settings) {
		s.Title = title
		s.XLabel = xlabel
		s.YLabel = ylabel
	})
}

// WithOverrides merges a map of option keys to values, as Merge does.
func WithOverrides(overrides map[string]any) Option {
	return options.New(func(s *Settings) error {
		return s.Merge(overrides)
	})
}

// WithFile merges options from a YAML file.
func WithFile(path string) Option {
	return options.New(func(s *Settings) error {
		src, parser := fileSource(path)
		return s.mergeFrom(src, parser)
	})
}

// WithEnv merges options from environment variables named prefix + upper-case key,
// e.g. CURVEFIT_ERROR_RANGE=0.95 with prefix "CURVEFIT_".
func WithEnv(prefix string) Option {
	return options.New(func(s *Settings) error {
		return s.mergeFrom(envSource(prefix), nil)
	})
}
