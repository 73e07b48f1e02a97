package regression

import (
	"cmp"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/arloliu/curvefit/dataset"
	"github.com/arloliu/curvefit/errs"
	"github.com/arloliu/curvefit/fit"
	"github.com/arloliu/curvefit/internal/options"
	"github.com/arloliu/curvefit/model"
)

// Series is one named dataset for AnalyzeEach.
type Series struct {
	Name string
	X    []float64
	Y    []float64
	Err  []float64
}

// Analyze fits every candidate model to the data and ranks the converged ones.
//
// yerr holds one value per point or a single value for all points, as for
// fit.Fitter.SetData.
//
// Returns ErrBadData for unusable data and ErrCannotFit if no candidate converges.
//
// Example:
//
//	result, err := regression.Analyze(x, y, []float64{0.1})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.BestFit.Formula)
func Analyze(x, y, yerr []float64, opts ...AnalyzeOption) (*Result, error) {
	cfg := defaultAnalyzeConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	return analyze(cfg, Series{X: x, Y: y, Err: yerr})
}

// AnalyzeEach analyzes each series separately and returns one result per series, in
// order. The first failing series aborts the analysis.
func AnalyzeEach(series []Series, opts ...AnalyzeOption) ([]*Result, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: no series provided", errs.ErrBadData)
	}

	cfg := defaultAnalyzeConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	results := make([]*Result, len(series))
	for i, s := range series {
		r, err := analyze(cfg, s)
		if err != nil {
			return nil, fmt.Errorf("failed to analyze series %d (%s): %w", i, s.Name, err)
		}
		results[i] = r
	}

	return results, nil
}

func analyze(cfg AnalyzeConfig, s Series) (*Result, error) {
	ds := dataset.New()
	if err := ds.Set(s.X, s.Y, s.Err); err != nil {
		return nil, err
	}
	if ds.Empty() {
		return nil, fmt.Errorf("%w: no data points", errs.ErrBadData)
	}

	active := ds.Active(cfg.Settings.Bounds())
	weights := make([]float64, active.Len())
	for i, e := range active.Err {
		weights[i] = 1 / (e * e)
	}

	result := &Result{Name: s.Name}
	for _, t := range cfg.Candidates {
		m, reason := fitCandidate(cfg, t, s, active, weights)
		if m == nil {
			cfg.Logger.Debug("candidate dropped",
				slog.String("series", s.Name),
				slog.String("model", t.String()),
				slog.String("reason", reason))
			result.Failed = append(result.Failed, Failure{Type: t, Reason: reason})

			continue
		}
		result.AllModels = append(result.AllModels, m)
	}

	if len(result.AllModels) == 0 {
		return nil, fmt.Errorf("%w: none of %d candidate models converged", errs.ErrCannotFit, len(cfg.Candidates))
	}

	rank(result.AllModels, cfg.Criterion)
	result.BestFit = result.AllModels[0]

	cfg.Logger.Info("regression analysis complete",
		slog.String("series", s.Name),
		slog.String("best", result.BestFit.Type.String()),
		slog.Int("converged", len(result.AllModels)),
		slog.Int("failed", len(result.Failed)))

	return result, nil
}

// fitCandidate returns the converged model, or nil and the reason it was dropped.
func fitCandidate(cfg AnalyzeConfig, t model.Type, s Series, active dataset.Subset, weights []float64) (*Model, string) {
	m, err := model.ByName(t.String())
	if err != nil {
		return nil, err.Error()
	}

	opts := []fit.Option{fit.WithSettings(cfg.Settings), fit.WithLogger(cfg.Logger)}
	if cfg.Solver != nil {
		opts = append(opts, fit.WithSolver(cfg.Solver))
	}
	f, err := fit.New(m, opts...)
	if err != nil {
		return nil, err.Error()
	}
	if err := f.SetData(s.X, s.Y, s.Err); err != nil {
		return nil, err.Error()
	}

	if guess, ok := initialEstimate(t, active.X, active.Y, weights); ok && allFinite(guess) {
		f.SetGuessVector(guess)
	}

	if err := f.Fit(); err != nil {
		return nil, err.Error()
	}
	if f.State() != fit.StateConverged {
		return nil, "fit did not converge"
	}

	r, err := f.Result()
	if err != nil {
		return nil, err.Error()
	}
	stats, err := f.Stats()
	if err != nil {
		return nil, err.Error()
	}

	return &Model{
		Type:              t,
		Names:             m.ParamNames(),
		Coefficients:      r.Params,
		Errors:            r.Errors,
		RSquared:          stats.RSquared,
		RMSE:              stats.RMSE,
		ReducedChiSquared: stats.ReducedChiSquared,
		Formula:           formula(m, m.ParamNames(), r.Params),
		Fitter:            f,
	}, ""
}

// rank sorts models best first. Ties keep candidate order.
func rank(models []*Model, c Criterion) {
	slices.SortStableFunc(models, func(a, b *Model) int {
		switch c {
		case ByReducedChiSquared:
			return cmp.Compare(chiDistance(a), chiDistance(b))
		default:
			return cmp.Compare(b.RSquared, a.RSquared)
		}
	})
}

// chiDistance is |χ²ν - 1|, with undefined values ranked last.
func chiDistance(m *Model) float64 {
	if math.IsNaN(m.ReducedChiSquared) {
		return math.Inf(1)
	}

	return math.Abs(m.ReducedChiSquared - 1)
}

func allFinite(vs []float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}
