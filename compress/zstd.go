package compress

// ZstdCompressor is the Zstandard codec. The implementation is selected at build time:
// the pure Go klauspost encoder by default, the cgo gozstd binding with -tags gozstd.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a Zstandard codec with the default level.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

// zstdLevel is the compression level used by both implementations.
const zstdLevel = 3
