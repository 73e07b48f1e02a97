package fit

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/go-viper/mapstructure/v2"

	"github.com/arloliu/curvefit/errs"
	"github.com/arloliu/curvefit/settings"
)

// SetData replaces the dataset. yerr holds one value per point or a single value for
// all points. The outlier mask is reset.
//
// Returns ErrBadData if the lengths disagree or an error value is zero, NaN or
// infinite; the previous data is kept in that case.
func (f *Fitter) SetData(x, y, yerr []float64) error {
	if err := f.data.Set(x, y, yerr); err != nil {
		return err
	}
	f.logger.Debug("data set", slog.String("model", f.model.Name()), slog.Int("points", f.data.Len()))
	f.changed()

	return nil
}

// SetUniformData replaces the dataset using the same error for every point.
func (f *Fitter) SetUniformData(x, y []float64, yerr float64) error {
	return f.SetData(x, y, []float64{yerr})
}

// SetColumns replaces the dataset from rows of (x, y) or (x, y, yerr).
//
// Returns ErrBadData for any other column count.
func (f *Fitter) SetColumns(rows [][]float64) error {
	if err := f.data.FromColumns(rows); err != nil {
		return err
	}
	f.changed()

	return nil
}

// Free makes the named parameters Free.
func (f *Fitter) Free(names ...string) error {
	if err := f.params.Free(names...); err != nil {
		return err
	}
	f.changed()

	return nil
}

// Fix holds the named parameters at the given values.
func (f *Fitter) Fix(values map[string]float64) error {
	if err := f.params.Fix(values); err != nil {
		return err
	}
	f.changed()

	return nil
}

// FixOne holds a single parameter at value.
func (f *Fitter) FixOne(name string, value float64) error {
	return f.Fix(map[string]float64{name: value})
}

// SetGuesses sets the starting values of named Free parameters. If any target is
// Fixed a warning is logged and nothing changes.
func (f *Fitter) SetGuesses(values map[string]float64) error {
	applied, err := f.params.SetGuesses(values)
	if err != nil {
		return err
	}
	if applied {
		f.changed()
	}

	return nil
}

// SetGuessVector sets the starting values of all Free parameters in position order.
// A vector of the wrong length is logged and ignored; the result reports whether the
// guesses were updated.
func (f *Fitter) SetGuessVector(values []float64) bool {
	if !f.params.SetGuessVector(values) {
		return false
	}
	f.changed()

	return true
}

// ApplyMask marks every point whose keep entry is false as an outlier.
//
// Returns ErrBadData if len(keep) differs from the number of points.
func (f *Fitter) ApplyMask(keep []bool) error {
	if err := f.data.ApplyMask(keep); err != nil {
		return err
	}
	f.changed()

	return nil
}

// ResetMask clears every outlier mark.
func (f *Fitter) ResetMask() {
	f.data.ResetMask()
	f.changed()
}

// IgnoreOutliers marks every active point whose absolute studentized residual exceeds
// threshold as an outlier. Residuals are computed at params (a full parameter vector)
// when given, otherwise taken from the current fit. Points already excluded stay
// excluded. The fit is not rerun.
//
// Returns ErrNoResults if params is empty and there is no converged fit.
func (f *Fitter) IgnoreOutliers(threshold float64, params ...float64) error {
	if math.IsNaN(threshold) || threshold < 0 {
		return fmt.Errorf("%w: outlier threshold must be a non-negative number, got %v", errs.ErrInvalidSetting, threshold)
	}

	res, err := f.StudentizedResiduals(params...)
	if err != nil {
		return err
	}

	active := f.data.Active(f.settings.Bounds())
	var indices []int
	for i, r := range res {
		if math.Abs(r) > threshold {
			indices = append(indices, active.Index[i])
		}
	}
	if err := f.data.MarkOutliers(indices); err != nil {
		return err
	}

	f.logger.Info("outliers excluded",
		slog.Int("flagged", len(indices)),
		slog.Float64("threshold", threshold),
		slog.Int("active", f.data.ActiveCount(f.settings.Bounds())))
	f.changed()

	return nil
}

// Configure applies settings options. The fit result is discarded when the x bounds
// or the error range change; display options only trigger a re-render.
//
// The settings are left unchanged on error.
func (f *Fitter) Configure(opts ...settings.Option) error {
	prev := f.settings.Clone()
	if err := f.settings.Apply(opts...); err != nil {
		return err
	}
	f.settingsChanged(prev)

	return nil
}

func (f *Fitter) settingsChanged(prev settings.Settings) {
	if !prev.SameBounds(f.settings) || prev.ErrorRange != f.settings.ErrorRange {
		f.invalidate()
	}
	f.autoplot()
}

// Get returns a setting by key, or a copy of the param.Parameter of that name.
// Settings take precedence over parameters of the same name.
//
// Returns ErrUnknownKey if key names neither.
func (f *Fitter) Get(key string) (any, error) {
	if settings.Has(key) {
		return f.settings.Get(key)
	}
	if p, ok := f.params.Get(key); ok {
		return p, nil
	}

	return nil, fmt.Errorf("%w: %q is neither a setting nor a parameter of %s", errs.ErrUnknownKey, key, f.model)
}

// Set assigns a setting by key, or the guess (Free) or constant (Fixed) of the
// parameter of that name. Values are converted where possible, so "2.5" and 2 are
// both accepted for numeric targets.
//
// Returns ErrUnknownKey if key names neither, and ErrInvalidSetting if the value
// cannot be converted.
func (f *Fitter) Set(key string, value any) error {
	if settings.Has(key) {
		prev := f.settings.Clone()
		if err := f.settings.Set(key, value); err != nil {
			return err
		}
		f.settingsChanged(prev)

		return nil
	}
	if !f.params.Has(key) {
		return fmt.Errorf("%w: %q is neither a setting nor a parameter of %s", errs.ErrUnknownKey, key, f.model)
	}

	if value == nil {
		return fmt.Errorf("%w: parameter %q cannot be unset", errs.ErrInvalidSetting, key)
	}
	var v float64
	if err := mapstructure.WeakDecode(value, &v); err != nil {
		return fmt.Errorf("%w: parameter %q: %w", errs.ErrInvalidSetting, key, err)
	}
	if err := f.params.Write(key, v); err != nil {
		return err
	}
	f.changed()

	return nil
}
