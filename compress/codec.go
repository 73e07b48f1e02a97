package compress

import (
	"errors"
	"fmt"

	"github.com/arloliu/curvefit/format"
)

// Compressor compresses an encoded plot frame body.
//
// The returned slice is owned by the caller. The input is not modified.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor of the same algorithm.
//
// Decompress returns an error if data is corrupted or was produced by another
// algorithm. Implementations are safe for concurrent use.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions.
type Codec interface {
	Compressor
	Decompressor
}

// MaxBodySize caps the decompressed size of a frame body.
const MaxBodySize = 64 * 1024 * 1024

// ErrBodyTooLarge is returned when a compressed body would decode past MaxBodySize.
var ErrBodyTooLarge = errors.New("decompressed body exceeds size limit")

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec returns the built-in Codec for compressionType.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s (0x%02x)", compressionType, uint8(compressionType))
}

// Ratio returns len(compressed)/len(original), or 0 for empty input.
func Ratio(original, compressed []byte) float64 {
	if len(original) == 0 {
		return 0
	}

	return float64(len(compressed)) / float64(len(original))
}
