// Package plotdata describes what a plot of a fit shows, independent of any plotting
// backend.
//
// A Frame is a snapshot of a fitter: the active and excluded data points, the model
// curve at the current guesses, the best-fit curve when a converged fit exists, the
// studentized residuals and the display style. A Renderer consumes frames; frames can
// also be encoded into a compact binary payload for a plotter running in another
// process.
package plotdata

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// Points is a set of observations in columnar form.
type Points struct {
	X   []float64
	Y   []float64
	Err []float64
}

// Len returns the number of points.
func (p Points) Len() int {
	return len(p.X)
}

// Curve is a sampled model curve.
type Curve struct {
	X []float64
	Y []float64
}

// Len returns the number of samples.
func (c Curve) Len() int {
	return len(c.X)
}

// Style carries the display options of a frame.
type Style struct {
	Title         string
	XLabel        string
	YLabel        string
	XScale        string
	YScale        string
	MarkerSize    float64
	LineWidth     float64
	ShowGuess     bool
	ShowResiduals bool
	DataColor     string
	FitColor      string
	GuessColor    string
}

// Frame is one renderable snapshot of a fitter.
type Frame struct {
	// ModelID is a stable hash of the model name.
	ModelID uint64
	// Model is the model's display form, e.g. "line(x; a, b)".
	Model string
	// XMin and XMax are the effective x range of the fit.
	XMin, XMax float64

	Active   Points
	Excluded Points
	// Guess is the model evaluated at the current guesses.
	Guess Curve
	// Fit is the model evaluated at the best-fit values; empty without a converged fit.
	Fit Curve
	// Residuals holds the studentized residuals of the active points (Err is 1).
	Residuals Points

	Style Style
}

// HasFit reports whether the frame carries a best-fit curve.
func (f *Frame) HasFit() bool {
	return f.Fit.Len() > 0
}

// Renderer draws frames.
type Renderer interface {
	Render(f *Frame) error
}

// RenderFunc adapts a function to the Renderer interface.
type RenderFunc func(f *Frame) error

// Render calls fn(f).
func (fn RenderFunc) Render(f *Frame) error {
	return fn(f)
}

// RecordingRenderer keeps every frame it is asked to render. It is safe for concurrent
// use.
type RecordingRenderer struct {
	mu     sync.Mutex
	frames []*Frame
	err    error
}

var _ Renderer = (*RecordingRenderer)(nil)

// NewRecordingRenderer returns an empty recorder.
func NewRecordingRenderer() *RecordingRenderer {
	return &RecordingRenderer{}
}

// Render records f and returns the configured failure, if any.
func (r *RecordingRenderer) Render(f *Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frames = append(r.frames, f)

	return r.err
}

// FailWith makes subsequent Render calls return err.
func (r *RecordingRenderer) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.err = err
}

// Count returns the number of recorded frames.
func (r *RecordingRenderer) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.frames)
}

// Last returns the most recent frame, or nil.
func (r *RecordingRenderer) Last() *Frame {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.frames) == 0 {
		return nil
	}

	return r.frames[len(r.frames)-1]
}

// Sample returns n x values spanning [lo, hi]. With logScale and a positive range the
// values are evenly spaced in log10; otherwise they are evenly spaced. A range with a
// NaN end or n < 2 yields nil.
func Sample(lo, hi float64, n int, logScale bool) []float64 {
	if n < 2 || math.IsNaN(lo) || math.IsNaN(hi) {
		return nil
	}

	out := make([]float64, n)
	if logScale && lo > 0 && hi > 0 {
		return floats.LogSpan(out, lo, hi)
	}

	return floats.Span(out, lo, hi)
}
