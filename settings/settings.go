// Package settings is the typed configuration record of a fitter.
//
// Most options are display hints consumed by a plot renderer. Three of them affect
// fitting: error_range (the confidence level of reported uncertainties) and the
// optional xmin/xmax bounds that restrict the active data range.
//
// Settings can be changed with functional options, by key through Get/Set, from a map
// of overrides, from a YAML file, or from environment variables:
//
//	s := settings.Default()
//	err := s.Apply(settings.WithXMin(2), settings.WithErrorRange(0.95))
//
//	s, err := settings.Load("fit.yaml")
package settings

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/arloliu/curvefit/dataset"
	"github.com/arloliu/curvefit/errs"
)

// Scale is an axis scale kind.
type Scale string

const (
	// ScaleLinear is a linear axis.
	ScaleLinear Scale = "linear"
	// ScaleLog is a base-10 logarithmic axis.
	ScaleLog Scale = "log"
)

// Defaults for a new Settings record.
const (
	DefaultErrorRange  = 0.68
	DefaultCurvePoints = 200
	DefaultMarkerSize  = 4.0
	DefaultLineWidth   = 1.5
)

// Settings holds the recognized configuration options.
type Settings struct {
	// ErrorRange is the confidence level of reported parameter uncertainties, in (0, 1).
	ErrorRange float64 `koanf:"error_range"`
	// AutoPlot requests a re-render after every fitter mutation.
	AutoPlot bool `koanf:"autoplot"`
	// XScale and YScale are the axis scales.
	XScale Scale `koanf:"xscale"`
	YScale Scale `koanf:"yscale"`
	// XMin and XMax optionally bound the active x range; nil falls back to the data.
	XMin *float64 `koanf:"xmin"`
	XMax *float64 `koanf:"xmax"`

	Title         string  `koanf:"title"`
	XLabel        string  `koanf:"xlabel"`
	YLabel        string  `koanf:"ylabel"`
	MarkerSize    float64 `koanf:"marker_size"`
	LineWidth     float64 `koanf:"line_width"`
	CurvePoints   int     `koanf:"curve_points"`
	ShowGuess     bool    `koanf:"show_guess"`
	ShowResiduals bool    `koanf:"show_residuals"`
	DataColor     string  `koanf:"data_color"`
	FitColor      string  `koanf:"fit_color"`
	GuessColor    string  `koanf:"guess_color"`
}

// Default returns the default settings.
func Default() Settings {
	return Settings{
		ErrorRange:    DefaultErrorRange,
		XScale:        ScaleLinear,
		YScale:        ScaleLinear,
		MarkerSize:    DefaultMarkerSize,
		LineWidth:     DefaultLineWidth,
		CurvePoints:   DefaultCurvePoints,
		ShowGuess:     true,
		ShowResiduals: true,
		DataColor:     "black",
		FitColor:      "red",
		GuessColor:    "gray",
	}
}

// Validate checks every option.
//
// Returns ErrInvalidSetting describing the first invalid option.
func (s Settings) Validate() error {
	if !(s.ErrorRange > 0 && s.ErrorRange < 1) {
		return fmt.Errorf("%w: error_range must be in (0, 1), got %v", errs.ErrInvalidSetting, s.ErrorRange)
	}
	for key, sc := range map[string]Scale{"xscale": s.XScale, "yscale": s.YScale} {
		if sc != ScaleLinear && sc != ScaleLog {
			return fmt.Errorf("%w: %s must be %q or %q, got %q", errs.ErrInvalidSetting, key, ScaleLinear, ScaleLog, sc)
		}
	}
	for key, v := range map[string]*float64{"xmin": s.XMin, "xmax": s.XMax} {
		if v != nil && math.IsNaN(*v) {
			return fmt.Errorf("%w: %s is NaN", errs.ErrInvalidSetting, key)
		}
	}
	if s.XMin != nil && s.XMax != nil && *s.XMin > *s.XMax {
		return fmt.Errorf("%w: xmin %v is greater than xmax %v", errs.ErrInvalidSetting, *s.XMin, *s.XMax)
	}
	if s.CurvePoints < 2 {
		return fmt.Errorf("%w: curve_points must be at least 2, got %d", errs.ErrInvalidSetting, s.CurvePoints)
	}
	if s.MarkerSize < 0 || s.LineWidth < 0 {
		return fmt.Errorf("%w: marker_size and line_width must not be negative", errs.ErrInvalidSetting)
	}

	return nil
}

// Bounds returns the active x range restriction for the dataset.
func (s Settings) Bounds() dataset.Bounds {
	return dataset.Bounds{Min: s.XMin, Max: s.XMax}
}

// SameBounds reports whether s and o restrict the x range identically.
func (s Settings) SameBounds(o Settings) bool {
	return sameBound(s.XMin, o.XMin) && sameBound(s.XMax, o.XMax)
}

func sameBound(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}

// Clone returns a deep copy of s.
func (s Settings) Clone() Settings {
	out := s
	if s.XMin != nil {
		v := *s.XMin
		out.XMin = &v
	}
	if s.XMax != nil {
		v := *s.XMax
		out.XMax = &v
	}

	return out
}

// Keys returns every recognized option key, sorted.
func Keys() []string {
	return slices.Sorted(maps.Keys(Default().values()))
}

// Has reports whether key names a recognized option.
func Has(key string) bool {
	_, ok := Default().values()[key]
	return ok
}

// Get returns the value of the option named key. Unset bounds are returned as nil.
//
// Returns ErrUnknownKey if key is not a recognized option.
func (s Settings) Get(key string) (any, error) {
	v, ok := s.values()[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a setting", errs.ErrUnknownKey, key)
	}

	return v, nil
}

// Set assigns the option named key. Values are converted to the option's type where
// possible (for example an int or a numeric string for a float option); a nil value
// clears xmin or xmax.
//
// Returns ErrUnknownKey for unrecognized keys and ErrInvalidSetting for values that
// cannot be converted or fail validation. s is left unchanged on error.
func (s *Settings) Set(key string, value any) error {
	return s.Merge(map[string]any{key: value})
}

// values returns every option keyed by name; unset bounds map to nil.
func (s Settings) values() map[string]any {
	m := map[string]any{
		"error_range":    s.ErrorRange,
		"autoplot":       s.AutoPlot,
		"xscale":         string(s.XScale),
		"yscale":         string(s.YScale),
		"xmin":           nil,
		"xmax":           nil,
		"title":          s.Title,
		"xlabel":         s.XLabel,
		"ylabel":         s.YLabel,
		"marker_size":    s.MarkerSize,
		"line_width":     s.LineWidth,
		"curve_points":   s.CurvePoints,
		"show_guess":     s.ShowGuess,
		"show_residuals": s.ShowResiduals,
		"data_color":     s.DataColor,
		"fit_color":      s.FitColor,
		"guess_color":    s.GuessColor,
	}
	if s.XMin != nil {
		m["xmin"] = *s.XMin
	}
	if s.XMax != nil {
		m["xmax"] = *s.XMax
	}

	return m
}
