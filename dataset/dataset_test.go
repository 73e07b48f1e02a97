package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/curvefit/errs"
)

func ptr(v float64) *float64 { return &v }

func TestSet(t *testing.T) {
	t.Run("scalar error is broadcast", func(t *testing.T) {
		d := New()
		require.NoError(t, d.Set([]float64{1, 2, 3}, []float64{4, 5, 6}, []float64{1.0}))
		require.Equal(t, []float64{1, 1, 1}, d.Err())
		require.Equal(t, 3, d.Len())
		require.Equal(t, []bool{false, false, false}, d.Outliers())
	})

	t.Run("uniform helper", func(t *testing.T) {
		d := New()
		require.NoError(t, d.SetUniform([]float64{1, 2}, []float64{3, 4}, 0.5))
		require.Equal(t, []float64{0.5, 0.5}, d.Err())
	})

	t.Run("stores private copies", func(t *testing.T) {
		x := []float64{1, 2}
		d := New()
		require.NoError(t, d.Set(x, []float64{3, 4}, []float64{1, 1}))
		x[0] = 100
		require.Equal(t, []float64{1, 2}, d.X())
	})

	t.Run("resets outliers", func(t *testing.T) {
		d := New()
		require.NoError(t, d.SetUniform([]float64{1, 2}, []float64{3, 4}, 1))
		require.NoError(t, d.ApplyMask([]bool{false, true}))
		require.NoError(t, d.SetUniform([]float64{1, 2, 3}, []float64{3, 4, 5}, 1))
		require.Equal(t, []bool{false, false, false}, d.Outliers())
	})

	bad := []struct {
		name       string
		x, y, yerr []float64
	}{
		{"y shorter than x", []float64{1, 2, 3}, []float64{4, 5}, []float64{1, 2, 3}},
		{"error not broadcastable", []float64{1, 2, 3}, []float64{4, 5, 6}, []float64{1, 2}},
		{"zero error", []float64{1, 2}, []float64{4, 5}, []float64{1, 0}},
		{"NaN error", []float64{1, 2}, []float64{4, 5}, []float64{math.NaN()}},
		{"infinite error", []float64{1, 2}, []float64{4, 5}, []float64{1, math.Inf(1)}},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			d := New()
			require.ErrorIs(t, d.Set(tt.x, tt.y, tt.yerr), errs.ErrBadData)
			require.True(t, d.Empty())
		})
	}
}

func TestFromColumns(t *testing.T) {
	t.Run("three columns", func(t *testing.T) {
		d := New()
		require.NoError(t, d.FromColumns([][]float64{{1, 2, 0.1}, {2, 4, 0.2}}))
		require.Equal(t, []float64{1, 2}, d.X())
		require.Equal(t, []float64{2, 4}, d.Y())
		require.Equal(t, []float64{0.1, 0.2}, d.Err())
	})

	t.Run("two columns use unit errors", func(t *testing.T) {
		d := New()
		require.NoError(t, d.FromColumns([][]float64{{1, 2}, {2, 4}}))
		require.Equal(t, []float64{1, 1}, d.Err())
	})

	t.Run("wrong column count", func(t *testing.T) {
		d := New()
		require.ErrorIs(t, d.FromColumns([][]float64{{1, 2, 3, 4}}), errs.ErrBadData)
		require.ErrorIs(t, d.FromColumns([][]float64{{1}}), errs.ErrBadData)
		require.ErrorIs(t, d.FromColumns([][]float64{{1, 2, 3}, {1, 2}}), errs.ErrBadData)
	})
}

func TestXlims(t *testing.T) {
	d := New()
	lo, hi := d.Xlims(Bounds{})
	require.True(t, math.IsNaN(lo))
	require.True(t, math.IsNaN(hi))

	require.NoError(t, d.SetUniform([]float64{3, -1, 7, 2}, []float64{0, 0, 0, 0}, 1))
	lo, hi = d.Xlims(Bounds{})
	require.InDelta(t, -1.0, lo, 0)
	require.InDelta(t, 7.0, hi, 0)

	lo, hi = d.Xlims(Bounds{Min: ptr(0)})
	require.InDelta(t, 0.0, lo, 0)
	require.InDelta(t, 7.0, hi, 0)

	lo, hi = d.Xlims(Bounds{Min: ptr(0), Max: ptr(5)})
	require.InDelta(t, 0.0, lo, 0)
	require.InDelta(t, 5.0, hi, 0)
}

func TestActiveMask(t *testing.T) {
	d := New()
	require.NoError(t, d.SetUniform([]float64{1, 2, 3, 4, 5}, []float64{1, 2, 3, 4, 5}, 1))

	t.Run("all points active by default", func(t *testing.T) {
		require.Equal(t, []bool{true, true, true, true, true}, d.ActiveMask(Bounds{}))
		require.Equal(t, 5, d.ActiveCount(Bounds{}))
	})

	t.Run("bounds are inclusive", func(t *testing.T) {
		mask := d.ActiveMask(Bounds{Min: ptr(2), Max: ptr(4)})
		require.Equal(t, []bool{false, true, true, true, false}, mask)
	})

	t.Run("outliers are excluded", func(t *testing.T) {
		require.NoError(t, d.ApplyMask([]bool{true, false, true, true, true}))
		mask := d.ActiveMask(Bounds{Max: ptr(4)})
		require.Equal(t, []bool{true, false, true, true, false}, mask)

		active := d.Active(Bounds{Max: ptr(4)})
		require.Equal(t, []int{0, 2, 3}, active.Index)
		require.Equal(t, []float64{1, 3, 4}, active.X)
		require.Equal(t, 3, active.Len())

		excluded := d.Excluded(Bounds{Max: ptr(4)})
		require.Equal(t, []int{1, 4}, excluded.Index)
		require.Equal(t, []float64{2, 5}, excluded.Y)
	})

	t.Run("mask length must match", func(t *testing.T) {
		require.ErrorIs(t, d.ApplyMask([]bool{true}), errs.ErrBadData)
	})

	t.Run("reset", func(t *testing.T) {
		d.ResetMask()
		require.Equal(t, 5, d.ActiveCount(Bounds{}))
	})
}

func TestMarkOutliers(t *testing.T) {
	d := New()
	require.NoError(t, d.SetUniform([]float64{1, 2, 3}, []float64{1, 2, 3}, 1))
	require.NoError(t, d.ApplyMask([]bool{true, true, false}))

	require.NoError(t, d.MarkOutliers([]int{0}))
	require.Equal(t, []bool{true, false, true}, d.Outliers())
	require.Equal(t, 1, d.ActiveCount(Bounds{}))

	require.ErrorIs(t, d.MarkOutliers([]int{1, 3}), errs.ErrBadData)
	require.Equal(t, []bool{true, false, true}, d.Outliers())
}
