package fit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/curvefit/errs"
	"github.com/arloliu/curvefit/settings"
)

func TestPipe(t *testing.T) {
	f := newLinear(t)

	out, err := f.Pipe(
		Data(sampleX, sampleY, sampleErr),
		Fix(map[string]float64{"b": 0}),
		Configure(settings.WithErrorRange(0.95)),
		Run(),
	)
	require.NoError(t, err)
	require.Same(t, f, out)
	require.Equal(t, StateConverged, f.State())

	a, err := f.Read("a")
	require.NoError(t, err)
	require.InDelta(t, wantFixedA, a, 1e-6)
	require.Equal(t, 0.95, f.Settings().ErrorRange)
}

func TestPipeStopsAtFirstError(t *testing.T) {
	f := newLinear(t)

	_, err := f.Pipe(
		Data(sampleX, sampleY, sampleErr),
		Fix(map[string]float64{"c": 0}),
		Run(),
	)
	require.ErrorIs(t, err, errs.ErrUnknownParameter)
	require.ErrorContains(t, err, "step 2 (fix)")
	require.Equal(t, StateDataSet, f.State())
}

func TestPipeSteps(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4, 5}
	y := []float64{1, 3, 5, 17, 9, 11}
	rows := make([][]float64, len(x))
	for i := range x {
		rows[i] = []float64{x[i], y[i]}
	}

	f := newLinear(t)
	_, err := f.Pipe(
		Columns(rows),
		Guess(map[string]float64{"a": 1.5, "b": 0.5}),
		Outliers(3, 2, 1),
		Run(),
	)
	require.NoError(t, err)
	require.Equal(t, []bool{false, false, false, true, false, false}, f.Data().Outliers())

	a, err := f.Read("a")
	require.NoError(t, err)
	require.InDelta(t, 2, a, 1e-6)

	_, err = f.Pipe(
		Mask([]bool{true, true, true, true, true, true}),
		Fix(map[string]float64{"a": 2}),
		Free("a"),
		Run(settings.WithXMax(2)),
	)
	require.NoError(t, err)
	r, err := f.Result()
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2}, r.Index)
}

func TestPipeFailedFitContinues(t *testing.T) {
	stub := &stubSolver{converged: false}
	f := newLinear(t, WithSolver(stub))

	_, err := f.Pipe(
		Data(sampleX, sampleY, sampleErr),
		Run(),
		Configure(settings.WithLabels("after", "", "")),
	)
	require.NoError(t, err)
	require.Equal(t, StateFailed, f.State())
	require.Equal(t, "after", f.Settings().Title)
}

func TestStepString(t *testing.T) {
	require.Equal(t, "fit", Run().String())
	require.Equal(t, "outliers", Outliers(1).String())
	require.Equal(t, "data", Data(nil, nil, nil).String())
}
