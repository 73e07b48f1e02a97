package compress

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/curvefit/endian"
	"github.com/arloliu/curvefit/format"
)

// curveBody mimics an encoded model curve: x on a regular grid and a smooth y.
func curveBody(n int) []byte {
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range n {
		x[i] = float64(i) / 10
		y[i] = 3 * math.Exp(-0.5*x[i])
	}
	engine := endian.GetLittleEndianEngine()
	buf := endian.AppendFloat64s(engine, nil, x)

	return endian.AppendFloat64s(engine, buf, y)
}

func TestCodecs_RoundTrip(t *testing.T) {
	inputs := map[string][]byte{
		"curve":    curveBody(500),
		"single":   {0x42},
		"repeated": bytes.Repeat([]byte("residual"), 256),
	}

	for _, ct := range []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	} {
		codec, err := GetCodec(ct)
		require.NoError(t, err)

		for name, data := range inputs {
			t.Run(ct.String()+"/"+name, func(t *testing.T) {
				compressed, err := codec.Compress(data)
				require.NoError(t, err)

				out, err := codec.Decompress(compressed)
				require.NoError(t, err)
				require.Equal(t, data, out)
			})
		}
	}
}

func TestCodecs_Empty(t *testing.T) {
	for _, codec := range []Codec{NewZstdCompressor(), NewS2Compressor(), NewLZ4Compressor()} {
		compressed, err := codec.Compress(nil)
		require.NoError(t, err)
		require.Empty(t, compressed)

		out, err := codec.Decompress(nil)
		require.NoError(t, err)
		require.Empty(t, out)
	}
}

func TestCodecs_Compresses(t *testing.T) {
	data := bytes.Repeat(curveBody(64), 16)

	for _, codec := range []Codec{NewZstdCompressor(), NewS2Compressor(), NewLZ4Compressor()} {
		compressed, err := codec.Compress(data)
		require.NoError(t, err)
		require.Less(t, Ratio(data, compressed), 0.5)
	}
}

func TestCodecs_Corrupt(t *testing.T) {
	garbage := []byte{0xde, 0xad, 0xbe, 0xef, 0x01, 0x02, 0x03}

	_, err := NewZstdCompressor().Decompress(garbage)
	require.Error(t, err)

	// declares five decoded bytes, then a copy tag pointing before the output start
	_, err = NewS2Compressor().Decompress([]byte{0x05, 0xff, 0xff, 0xff})
	require.Error(t, err)
}

func TestCodecs_BodyLimit(t *testing.T) {
	// varint length prefix of 128 MiB with no payload
	_, err := NewS2Compressor().Decompress([]byte{0x80, 0x80, 0x80, 0x40})
	require.ErrorIs(t, err, ErrBodyTooLarge)
}

func TestGetCodec_Unknown(t *testing.T) {
	_, err := GetCodec(format.CompressionType(0x7f))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported compression type")
}

func TestNoOp_SharesMemory(t *testing.T) {
	data := []byte{1, 2, 3}
	out, err := NewNoOpCompressor().Compress(data)
	require.NoError(t, err)
	require.Same(t, &data[0], &out[0])
	require.InDelta(t, 1.0, Ratio(data, out), 0)
	require.Zero(t, Ratio(nil, out))
}
