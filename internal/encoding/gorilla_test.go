package encoding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGorillaRoundTrip(t *testing.T) {
	grid := make([]float64, 200)
	curve := make([]float64, 200)
	for i := range grid {
		grid[i] = float64(i) * 0.05
		curve[i] = 4 * math.Exp(-grid[i]/3)
	}

	tests := []struct {
		name   string
		values []float64
	}{
		{"single", []float64{3.25}},
		{"constant", []float64{1, 1, 1, 1, 1}},
		{"grid", grid},
		{"curve", curve},
		{"sign changes", []float64{1, -1, 2, -2, 0, math.Copysign(0, -1)}},
		{"special values", []float64{math.Inf(1), math.Inf(-1), math.MaxFloat64, math.SmallestNonzeroFloat64, 0}},
		{"small xor", []float64{1, math.Nextafter(1, 2), 1, math.Nextafter(1, 0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := AppendGorilla(nil, tt.values)
			got, err := DecodeGorilla(data, len(tt.values))
			require.NoError(t, err)
			require.Len(t, got, len(tt.values))
			for i := range tt.values {
				require.Equal(t, math.Float64bits(tt.values[i]), math.Float64bits(got[i]), "index %d", i)
			}
		})
	}
}

func TestGorillaNaN(t *testing.T) {
	data := AppendGorilla(nil, []float64{1, math.NaN(), 2})
	got, err := DecodeGorilla(data, 3)
	require.NoError(t, err)
	require.Equal(t, 1.0, got[0])
	require.True(t, math.IsNaN(got[1]))
	require.Equal(t, 2.0, got[2])
}

func TestGorillaCompresses(t *testing.T) {
	constant := make([]float64, 100)
	for i := range constant {
		constant[i] = 7.5
	}
	// 64 bits plus one bit per repeat
	require.Len(t, AppendGorilla(nil, constant), 8+13)
}

func TestAppendGorillaKeepsPrefix(t *testing.T) {
	data := AppendGorilla([]byte{0xAB}, []float64{1, 2})
	require.Equal(t, byte(0xAB), data[0])

	got, err := DecodeGorilla(data[1:], 2)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2}, got)
}

func TestDecodeGorillaErrors(t *testing.T) {
	got, err := DecodeGorilla(nil, 0)
	require.NoError(t, err)
	require.Nil(t, got)

	_, err = DecodeGorilla([]byte{1, 2, 3}, 1)
	require.ErrorIs(t, err, ErrCorrupt)

	data := AppendGorilla(nil, []float64{1, 2, 3, 4})
	_, err = DecodeGorilla(data[:len(data)-1], 4)
	require.ErrorIs(t, err, ErrCorrupt)

	_, err = DecodeGorilla(data, 1<<20)
	require.ErrorIs(t, err, ErrCorrupt)

	_, err = DecodeGorilla(data, -1)
	require.ErrorIs(t, err, ErrCorrupt)
}
