// Package dataset holds the observations a model is fitted to and decides which of
// them take part in a fit.
//
// A Dataset stores three equal-length columns (x, y and the y error) plus an outlier
// mask. The active subset used for every fit and statistic is the set of points that
// lie inside the x bounds and are not marked as outliers.
package dataset

import (
	"fmt"
	"math"
	"slices"

	"github.com/arloliu/curvefit/errs"
)

// Bounds restricts the active x range. A nil end falls back to the data extreme.
type Bounds struct {
	Min *float64
	Max *float64
}

// Dataset is a set of (x, y, yerr) observations with an outlier mask.
//
// A Dataset is not safe for concurrent use.
type Dataset struct {
	x, y, yerr []float64
	outliers   []bool
}

// New returns an empty dataset.
func New() *Dataset {
	return &Dataset{}
}

// Set replaces the observations. yerr must hold either one value, which is broadcast
// to every point, or exactly len(x) values. The outlier mask is reset.
//
// Returns ErrBadData if the lengths disagree or an error value is zero, NaN or
// infinite. Negative errors are accepted; only their magnitude is used.
func (d *Dataset) Set(x, y, yerr []float64) error {
	if len(y) != len(x) {
		return fmt.Errorf("%w: len(y)=%d does not match len(x)=%d", errs.ErrBadData, len(y), len(x))
	}

	var e []float64
	switch len(yerr) {
	case 1:
		e = make([]float64, len(x))
		for i := range e {
			e[i] = yerr[0]
		}
	case len(x):
		e = slices.Clone(yerr)
	default:
		return fmt.Errorf("%w: len(yerr)=%d is neither 1 nor len(x)=%d", errs.ErrBadData, len(yerr), len(x))
	}

	for i, v := range e {
		if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: error value %v at index %d cannot be used as a weight", errs.ErrBadData, v, i)
		}
	}

	d.x = slices.Clone(x)
	d.y = slices.Clone(y)
	d.yerr = e
	d.outliers = make([]bool, len(x))

	return nil
}

// SetUniform replaces the observations using the same error for every point.
func (d *Dataset) SetUniform(x, y []float64, yerr float64) error {
	return d.Set(x, y, []float64{yerr})
}

// FromColumns replaces the observations from row-major data with two columns
// (x, y; unit errors) or three columns (x, y, yerr).
//
// Returns ErrBadData for any other column count or ragged rows.
func (d *Dataset) FromColumns(rows [][]float64) error {
	if len(rows) == 0 {
		return d.Set(nil, nil, nil)
	}

	cols := len(rows[0])
	if cols != 2 && cols != 3 {
		return fmt.Errorf("%w: expected 2 or 3 columns, got %d", errs.ErrBadData, cols)
	}

	x := make([]float64, len(rows))
	y := make([]float64, len(rows))
	e := make([]float64, len(rows))
	for i, row := range rows {
		if len(row) != cols {
			return fmt.Errorf("%w: row %d has %d columns, expected %d", errs.ErrBadData, i, len(row), cols)
		}
		x[i], y[i], e[i] = row[0], row[1], 1
		if cols == 3 {
			e[i] = row[2]
		}
	}

	return d.Set(x, y, e)
}

// Len returns the number of observations.
func (d *Dataset) Len() int {
	return len(d.x)
}

// Empty reports whether the dataset holds no observations.
func (d *Dataset) Empty() bool {
	return len(d.x) == 0
}

// X returns a copy of the x column.
func (d *Dataset) X() []float64 { return slices.Clone(d.x) }

// Y returns a copy of the y column.
func (d *Dataset) Y() []float64 { return slices.Clone(d.y) }

// Err returns a copy of the error column.
func (d *Dataset) Err() []float64 { return slices.Clone(d.yerr) }

// Outliers returns a copy of the outlier mask (true = excluded).
func (d *Dataset) Outliers() []bool { return slices.Clone(d.outliers) }

// Xlims returns the effective x range: explicit bounds where given, otherwise the
// data extremes. An empty dataset without bounds yields (NaN, NaN).
func (d *Dataset) Xlims(b Bounds) (lo, hi float64) {
	lo, hi = math.NaN(), math.NaN()
	if len(d.x) > 0 {
		lo, hi = slices.Min(d.x), slices.Max(d.x)
	}
	if b.Min != nil {
		lo = *b.Min
	}
	if b.Max != nil {
		hi = *b.Max
	}

	return lo, hi
}

// ActiveMask returns true for every point with xmin <= x <= xmax that is not an outlier.
func (d *Dataset) ActiveMask(b Bounds) []bool {
	lo, hi := d.Xlims(b)
	mask := make([]bool, len(d.x))
	for i, x := range d.x {
		mask[i] = x >= lo && x <= hi && !d.outliers[i]
	}

	return mask
}

// Subset is a selection of observations together with their dataset indices.
type Subset struct {
	Index []int
	X     []float64
	Y     []float64
	Err   []float64
}

// Len returns the number of selected points.
func (s Subset) Len() int {
	return len(s.Index)
}

// Active returns the points selected by ActiveMask.
func (d *Dataset) Active(b Bounds) Subset {
	return d.selectWhere(d.ActiveMask(b), true)
}

// Excluded returns the points not selected by ActiveMask.
func (d *Dataset) Excluded(b Bounds) Subset {
	return d.selectWhere(d.ActiveMask(b), false)
}

// ActiveCount returns the number of active points.
func (d *Dataset) ActiveCount(b Bounds) int {
	n := 0
	for _, on := range d.ActiveMask(b) {
		if on {
			n++
		}
	}

	return n
}

func (d *Dataset) selectWhere(mask []bool, want bool) Subset {
	var s Subset
	for i, on := range mask {
		if on != want {
			continue
		}
		s.Index = append(s.Index, i)
		s.X = append(s.X, d.x[i])
		s.Y = append(s.Y, d.y[i])
		s.Err = append(s.Err, d.yerr[i])
	}

	return s
}

// ApplyMask stores the outlier mask as the negation of keep.
//
// Returns ErrBadData if len(keep) differs from the dataset length.
func (d *Dataset) ApplyMask(keep []bool) error {
	if len(keep) != len(d.x) {
		return fmt.Errorf("%w: mask length %d does not match dataset length %d", errs.ErrBadData, len(keep), len(d.x))
	}

	for i, k := range keep {
		d.outliers[i] = !k
	}

	return nil
}

// MarkOutliers adds the given dataset indices to the outlier mask. Existing outliers
// stay excluded.
func (d *Dataset) MarkOutliers(indices []int) error {
	for _, i := range indices {
		if i < 0 || i >= len(d.x) {
			return fmt.Errorf("%w: outlier index %d outside dataset of length %d", errs.ErrBadData, i, len(d.x))
		}
	}
	for _, i := range indices {
		d.outliers[i] = true
	}

	return nil
}

// ResetMask clears every outlier mark.
func (d *Dataset) ResetMask() {
	clear(d.outliers)
}
