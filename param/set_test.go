package param

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/curvefit/errs"
	"github.com/arloliu/curvefit/internal/testutil"
	"github.com/arloliu/curvefit/model"
)

func newSet(t *testing.T, sig model.Signature) *Set {
	t.Helper()
	s, err := New(sig, WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)

	return s
}

func TestNew(t *testing.T) {
	t.Run("one free parameter per declared name", func(t *testing.T) {
		for _, m := range []*model.Model{model.Linear(), model.Quadratic(), model.Gaussian()} {
			s := newSet(t, m)
			require.Equal(t, m.Arity(), s.Len())
			require.Equal(t, m.ParamNames(), s.Names())
			for i, p := range s.All() {
				require.Equal(t, i+1, p.Position)
				require.Equal(t, Free, p.Kind)
				require.InDelta(t, DefaultGuess, p.Value, 0)
			}
		}
	})

	t.Run("model without parameters cannot be fitted", func(t *testing.T) {
		g, err := model.FromFunc("g", func(x float64) float64 { return x * x })
		require.NoError(t, err)

		_, err = New(g)
		require.ErrorIs(t, err, errs.ErrCannotFit)
	})
}

func TestFixAndFree(t *testing.T) {
	s := newSet(t, model.Quadratic())

	require.NoError(t, s.Fix(map[string]float64{"b": 2.5}))
	require.Equal(t, []string{"a", "c"}, s.FreeNames())
	require.Equal(t, []int{1, 3}, s.FreePositions())
	require.Equal(t, 2, s.FreeCount())
	require.Equal(t, []float64{1, 2.5, 1}, s.Guesses())
	require.Equal(t, []float64{1, 1}, s.FreeGuesses())

	v, err := s.Read("b")
	require.NoError(t, err)
	require.InDelta(t, 2.5, v, 0)

	require.NoError(t, s.Free("b"))
	p, ok := s.Get("b")
	require.True(t, ok)
	require.True(t, p.IsFree())
	require.InDelta(t, 2.5, p.Value, 0, "freeing keeps the constant as the new guess")

	t.Run("unknown names leave the set untouched", func(t *testing.T) {
		err := s.Fix(map[string]float64{"a": 3, "zz": 1})
		require.ErrorIs(t, err, errs.ErrUnknownParameter)
		require.Equal(t, 3, s.FreeCount())

		require.ErrorIs(t, s.Free("nope"), errs.ErrUnknownParameter)
	})
}

func TestSetGuesses(t *testing.T) {
	t.Run("updates free guesses", func(t *testing.T) {
		s := newSet(t, model.Linear())
		applied, err := s.SetGuesses(map[string]float64{"a": 3, "b": -1})
		require.NoError(t, err)
		require.True(t, applied)
		require.Equal(t, []float64{3, -1}, s.Guesses())
	})

	t.Run("fixed target warns and leaves state unchanged", func(t *testing.T) {
		logger, capture := testutil.NewCaptureLogger()
		s, err := New(model.Linear(), WithLogger(logger))
		require.NoError(t, err)
		require.NoError(t, s.FixOne("b", 4))

		applied, err := s.SetGuesses(map[string]float64{"a": 7, "b": 9})
		require.NoError(t, err)
		require.False(t, applied)
		require.Equal(t, []float64{1, 4}, s.Guesses())
		require.Contains(t, capture.String(), "fixed parameter")
	})

	t.Run("unknown name is an error", func(t *testing.T) {
		s := newSet(t, model.Linear())
		_, err := s.SetGuesses(map[string]float64{"q": 1})
		require.ErrorIs(t, err, errs.ErrUnknownParameter)
	})
}

func TestSetGuessVector(t *testing.T) {
	logger, capture := testutil.NewCaptureLogger()
	s, err := New(model.Quadratic(), WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, s.FixOne("a", 0))

	require.True(t, s.SetGuessVector([]float64{5, 6}))
	require.Equal(t, []float64{0, 5, 6}, s.Guesses())

	require.False(t, s.SetGuessVector([]float64{1, 2, 3}))
	require.Equal(t, []float64{0, 5, 6}, s.Guesses())
	require.Contains(t, capture.String(), "guess vector length")
}

func TestReadAndResults(t *testing.T) {
	s := newSet(t, model.Quadratic())
	require.NoError(t, s.FixOne("b", 0.5))

	_, err := s.Read("a")
	require.ErrorIs(t, err, errs.ErrNoResults)
	_, err = s.Fitted()
	require.ErrorIs(t, err, errs.ErrNoResults)
	require.False(t, s.HasResults())

	require.ErrorIs(t, s.SetResults([]float64{1}, []float64{0.1}), errs.ErrBadParameters)
	require.NoError(t, s.SetResults([]float64{1.5, -2}, []float64{0.1, 0.2}))
	require.True(t, s.HasResults())

	a, err := s.Read("a")
	require.NoError(t, err)
	require.InDelta(t, 1.5, a, 0)
	ua, err := s.Uncertainty("a")
	require.NoError(t, err)
	require.InDelta(t, 0.1, ua, 0)
	ub, err := s.Uncertainty("b")
	require.NoError(t, err)
	require.Zero(t, ub)

	fitted, err := s.Fitted()
	require.NoError(t, err)
	require.Equal(t, []float64{1.5, 0.5, -2}, fitted)

	p, _ := s.Get("c")
	require.Equal(t, "c = -2 ± 0.2", p.String())

	_, err = s.Read("missing")
	require.ErrorIs(t, err, errs.ErrUnknownParameter)
}

func TestMutationsInvalidateEveryResult(t *testing.T) {
	mutations := []struct {
		name   string
		mutate func(s *Set) error
	}{
		{"fix another parameter", func(s *Set) error { return s.FixOne("c", 3) }},
		{"free a parameter", func(s *Set) error { return s.Free("a") }},
		{"set guesses", func(s *Set) error { _, err := s.SetGuesses(map[string]float64{"a": 2}); return err }},
		{"set guess vector", func(s *Set) error { s.SetGuessVector([]float64{1, 2, 3}); return nil }},
		{"write", func(s *Set) error { return s.Write("b", 9) }},
	}
	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			s := newSet(t, model.Quadratic())
			require.NoError(t, s.SetResults([]float64{1, 2, 3}, []float64{0.1, 0.1, 0.1}))

			require.NoError(t, tt.mutate(s))

			require.False(t, s.HasResults())
			for _, name := range []string{"a", "b", "c"} {
				p, _ := s.Get(name)
				_, ok := p.FitValue()
				require.False(t, ok, "stale result on %s", name)
			}
		})
	}
}

func TestAssemble(t *testing.T) {
	s := newSet(t, model.Gaussian())
	require.NoError(t, s.Fix(map[string]float64{"center": 4, "offset": 0.5}))

	full := s.Assemble([]float64{2, 1})
	require.Equal(t, []float64{2, 4, 1, 0.5}, full)
}

func TestWrite(t *testing.T) {
	s := newSet(t, model.Linear())
	require.NoError(t, s.Write("a", 4))
	require.Equal(t, []float64{4, 1}, s.Guesses())

	require.NoError(t, s.FixOne("b", 1))
	require.NoError(t, s.Write("b", 2))
	v, err := s.Read("b")
	require.NoError(t, err)
	require.InDelta(t, 2.0, v, 0)

	require.ErrorIs(t, s.Write("zz", 1), errs.ErrUnknownParameter)
}

func TestKindString(t *testing.T) {
	require.Equal(t, "free", Free.String())
	require.Equal(t, "fixed", Fixed.String())
	require.Equal(t, "unknown", Kind(7).String())
}
