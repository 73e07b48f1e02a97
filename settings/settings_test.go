package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/curvefit/errs"
)

func TestDefault(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())
	require.InDelta(t, 0.68, s.ErrorRange, 0)
	require.False(t, s.AutoPlot)
	require.Equal(t, ScaleLinear, s.XScale)
	require.Equal(t, ScaleLinear, s.YScale)
	require.Nil(t, s.XMin)
	require.Nil(t, s.XMax)
	require.Equal(t, DefaultCurvePoints, s.CurvePoints)
}

func TestKeys(t *testing.T) {
	keys := Keys()
	require.Contains(t, keys, "error_range")
	require.Contains(t, keys, "xmin")
	require.Contains(t, keys, "xmax")
	require.IsNonDecreasing(t, keys)

	require.True(t, Has("autoplot"))
	require.False(t, Has("a"))
}

func TestGetSet(t *testing.T) {
	t.Run("get returns current values", func(t *testing.T) {
		s := Default()
		v, err := s.Get("error_range")
		require.NoError(t, err)
		require.Equal(t, 0.68, v)

		v, err = s.Get("xmin")
		require.NoError(t, err)
		require.Nil(t, v)
	})

	t.Run("unknown key", func(t *testing.T) {
		s := Default()
		_, err := s.Get("bogus")
		require.ErrorIs(t, err, errs.ErrUnknownKey)
		require.ErrorIs(t, s.Set("bogus", 1), errs.ErrUnknownKey)
	})

	t.Run("values are converted", func(t *testing.T) {
		s := Default()
		require.NoError(t, s.Set("xmin", 2))
		require.NotNil(t, s.XMin)
		require.InDelta(t, 2.0, *s.XMin, 0)

		require.NoError(t, s.Set("error_range", "0.95"))
		require.InDelta(t, 0.95, s.ErrorRange, 1e-12)

		require.NoError(t, s.Set("xscale", "log"))
		require.Equal(t, ScaleLog, s.XScale)

		require.NoError(t, s.Set("autoplot", true))
		require.True(t, s.AutoPlot)
	})

	t.Run("nil clears a bound", func(t *testing.T) {
		s := Default()
		require.NoError(t, s.Set("xmax", 10.0))
		require.NoError(t, s.Set("xmax", nil))
		require.Nil(t, s.XMax)

		require.ErrorIs(t, s.Set("title", nil), errs.ErrInvalidSetting)
	})

	t.Run("invalid values leave settings unchanged", func(t *testing.T) {
		s := Default()
		require.ErrorIs(t, s.Set("error_range", 1.5), errs.ErrInvalidSetting)
		require.ErrorIs(t, s.Set("yscale", "cubic"), errs.ErrInvalidSetting)
		require.ErrorIs(t, s.Set("curve_points", 1), errs.ErrInvalidSetting)
		require.Equal(t, Default(), s)
	})
}

func TestMerge(t *testing.T) {
	s := Default()
	require.NoError(t, s.Merge(map[string]any{"xmin": 1.0, "xmax": 3.0, "title": "decay"}))
	require.InDelta(t, 1.0, *s.XMin, 0)
	require.InDelta(t, 3.0, *s.XMax, 0)
	require.Equal(t, "decay", s.Title)

	err := s.Merge(map[string]any{"xmin": 5.0})
	require.ErrorIs(t, err, errs.ErrInvalidSetting)
	require.InDelta(t, 1.0, *s.XMin, 0)

	err = s.Merge(map[string]any{"title": "x", "a": 1})
	require.ErrorIs(t, err, errs.ErrUnknownKey)
	require.Equal(t, "decay", s.Title)
}

func TestApply(t *testing.T) {
	t.Run("options", func(t *testing.T) {
		s := Default()
		require.NoError(t, s.Apply(
			WithErrorRange(0.95),
			WithAutoPlot(true),
			WithXScale(ScaleLog),
			WithBounds(1, 10),
			WithCurvePoints(50),
			WithLabels("title", "time", "counts"),
		))
		require.InDelta(t, 0.95, s.ErrorRange, 0)
		require.True(t, s.AutoPlot)
		require.Equal(t, ScaleLog, s.XScale)
		require.InDelta(t, 1.0, *s.XMin, 0)
		require.InDelta(t, 10.0, *s.XMax, 0)
		require.Equal(t, 50, s.CurvePoints)
		require.Equal(t, "counts", s.YLabel)

		require.NoError(t, s.Apply(WithoutBounds()))
		require.Nil(t, s.XMin)
		require.Nil(t, s.XMax)
	})

	t.Run("failure is atomic", func(t *testing.T) {
		s := Default()
		err := s.Apply(WithErrorRange(0.9), WithBounds(5, 1))
		require.ErrorIs(t, err, errs.ErrInvalidSetting)
		require.Equal(t, Default(), s)
	})

	t.Run("clone does not share bounds", func(t *testing.T) {
		s := Default()
		require.NoError(t, s.Apply(WithXMin(1)))
		c := s.Clone()
		*c.XMin = 7
		require.InDelta(t, 1.0, *s.XMin, 0)
		require.True(t, s.SameBounds(s.Clone()))
		require.False(t, s.SameBounds(Default()))
	})

	t.Run("overrides", func(t *testing.T) {
		s := Default()
		require.NoError(t, s.Apply(WithOverrides(map[string]any{"fit_color": "blue"})))
		require.Equal(t, "blue", s.FitColor)
		require.ErrorIs(t, s.Apply(WithOverrides(map[string]any{"nope": 1})), errs.ErrUnknownKey)
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml file", func(t *testing.T) {
		path := filepath.Join(dir, "fit.yaml")
		content := "error_range: 0.9\nxmin: 2\nxscale: log\ntitle: decay\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		s, err := Load(path)
		require.NoError(t, err)
		require.InDelta(t, 0.9, s.ErrorRange, 0)
		require.NotNil(t, s.XMin)
		require.InDelta(t, 2.0, *s.XMin, 0)
		require.Nil(t, s.XMax)
		require.Equal(t, ScaleLog, s.XScale)
		require.Equal(t, "decay", s.Title)
		require.Equal(t, DefaultCurvePoints, s.CurvePoints)
	})

	t.Run("unknown key in file", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("colour: red\n"), 0o600))

		_, err := Load(path)
		require.ErrorIs(t, err, errs.ErrUnknownKey)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "missing.yaml"))
		require.Error(t, err)
	})
}

func TestWithEnv(t *testing.T) {
	t.Setenv("CFTEST_ERROR_RANGE", "0.95")
	t.Setenv("CFTEST_XMAX", "4.5")
	t.Setenv("CFTEST_AUTOPLOT", "true")

	s := Default()
	require.NoError(t, s.Apply(WithEnv("CFTEST_")))
	require.InDelta(t, 0.95, s.ErrorRange, 1e-12)
	require.NotNil(t, s.XMax)
	require.InDelta(t, 4.5, *s.XMax, 1e-12)
	require.True(t, s.AutoPlot)
}
