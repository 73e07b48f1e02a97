// Package compress provides the codecs applied to encoded plot frame bodies.
//
// A frame is a handful of float64 columns: data points, sampled model curves and
// residuals. Frames shipped to an out-of-process plotter over a pipe or a socket are
// usually small, but curves sampled at many points compress well. Four algorithms are
// available:
//   - None: the body is sent as is
//   - Zstd: best ratio; uses github.com/klauspost/compress/zstd, or
//     github.com/valyala/gozstd when built with cgo and the gozstd tag
//   - S2: fast, moderate ratio (github.com/klauspost/compress/s2)
//   - LZ4: fastest decompression (github.com/pierrec/lz4/v4)
//
// Codecs are looked up by their format.CompressionType:
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//		return err
//	}
//	body, err := codec.Compress(raw)
//
// Every codec is stateless and safe for concurrent use. Encoders and decoders that are
// expensive to create are pooled internally.
package compress
