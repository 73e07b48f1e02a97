package fit

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/arloliu/curvefit/dataset"
	"github.com/arloliu/curvefit/errs"
	"github.com/arloliu/curvefit/internal/hash"
	"github.com/arloliu/curvefit/plotdata"
	"github.com/arloliu/curvefit/settings"
)

// Frame builds a plot snapshot of the fitter: active and excluded points, the model
// at the current guesses and, with a converged fit, the best-fit curve and residuals.
func (f *Fitter) Frame() *plotdata.Frame {
	b := f.settings.Bounds()
	lo, hi := f.data.Xlims(b)

	frame := &plotdata.Frame{
		ModelID:  hash.ID(f.model.Name()),
		Model:    f.model.String(),
		XMin:     lo,
		XMax:     hi,
		Active:   points(f.data.Active(b)),
		Excluded: points(f.data.Excluded(b)),
		Style:    style(f.settings),
	}

	xs := plotdata.Sample(lo, hi, f.settings.CurvePoints, f.settings.XScale == settings.ScaleLog)
	if xs == nil {
		return frame
	}
	frame.Guess = plotdata.Curve{X: xs, Y: f.model.EvalAll(xs, f.params.Guesses())}

	r, err := f.current()
	if err != nil {
		return frame
	}
	fitted, err := f.params.Fitted()
	if err != nil {
		return frame
	}
	frame.Fit = plotdata.Curve{X: xs, Y: f.model.EvalAll(xs, fitted)}

	x := f.data.X()
	frame.Residuals = plotdata.Points{
		X:   make([]float64, len(r.Index)),
		Y:   append([]float64(nil), r.Residuals...),
		Err: make([]float64, len(r.Index)),
	}
	for i, idx := range r.Index {
		frame.Residuals.X[i] = x[idx]
		frame.Residuals.Err[i] = 1
	}

	return frame
}

// Render draws the current frame with the attached renderer regardless of the
// autoplot setting.
//
// Returns ErrInvalidSetting if no renderer is attached.
func (f *Fitter) Render() error {
	if f.renderer == nil {
		return fmt.Errorf("%w: no renderer attached", errs.ErrInvalidSetting)
	}

	return f.renderer.Render(f.Frame())
}

// autoplot re-renders after a mutation when enabled. Render failures are logged.
func (f *Fitter) autoplot() {
	if !f.settings.AutoPlot || f.renderer == nil {
		return
	}
	if err := f.renderer.Render(f.Frame()); err != nil {
		f.logger.Warn("autoplot render failed",
			slog.String("model", f.model.Name()),
			slog.String("error", err.Error()))
	}
}

func points(s dataset.Subset) plotdata.Points {
	return plotdata.Points{X: s.X, Y: s.Y, Err: s.Err}
}

func style(s settings.Settings) plotdata.Style {
	return plotdata.Style{
		Title:         s.Title,
		XLabel:        s.XLabel,
		YLabel:        s.YLabel,
		XScale:        string(s.XScale),
		YScale:        string(s.YScale),
		MarkerSize:    s.MarkerSize,
		LineWidth:     s.LineWidth,
		ShowGuess:     s.ShowGuess,
		ShowResiduals: s.ShowResiduals,
		DataColor:     s.DataColor,
		FitColor:      s.FitColor,
		GuessColor:    s.GuessColor,
	}
}

// String returns a plain-text report of the model, the data and the parameters.
func (f *Fitter) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "model:  %s\n", f.model)
	fmt.Fprintf(&sb, "state:  %s\n", f.state)
	b := f.settings.Bounds()
	fmt.Fprintf(&sb, "points: %d active of %d\n", f.data.ActiveCount(b), f.data.Len())
	if !f.data.Empty() {
		lo, hi := f.data.Xlims(b)
		fmt.Fprintf(&sb, "range:  [%g, %g]\n", lo, hi)
	}

	sb.WriteString("parameters:\n")
	for _, p := range f.params.All() {
		fmt.Fprintf(&sb, "  %s\n", p)
	}

	if f.state == StateConverged {
		fmt.Fprintf(&sb, "error range: %g\n", f.settings.ErrorRange)
		if chi2, err := f.ReducedChiSquared(); err == nil {
			fmt.Fprintf(&sb, "reduced chi-squared: %.4g\n", chi2)
		}
	}

	return sb.String()
}
