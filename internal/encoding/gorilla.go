package encoding

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
)

// ErrCorrupt is returned when a Gorilla stream ends early or contains an impossible
// block.
var ErrCorrupt = errors.New("corrupt gorilla stream")

// AppendGorilla appends the Gorilla encoding of values to dst. The stream is padded
// to a whole byte.
func AppendGorilla(dst []byte, values []float64) []byte {
	if len(values) == 0 {
		return dst
	}

	w := bitWriter{buf: dst}
	prev := math.Float64bits(values[0])
	w.writeBits(prev, 64)

	prevLeading, prevTrailing := -1, 0
	for _, v := range values[1:] {
		cur := math.Float64bits(v)
		xor := cur ^ prev
		prev = cur

		if xor == 0 {
			w.writeBits(0, 1)
			continue
		}
		w.writeBits(1, 1)

		// leading zeros are stored in 5 bits
		leading := min(bits.LeadingZeros64(xor), 31)
		trailing := bits.TrailingZeros64(xor)

		if prevLeading >= 0 && leading >= prevLeading && trailing >= prevTrailing {
			w.writeBits(0, 1)
			w.writeBits(xor>>prevTrailing, 64-prevLeading-prevTrailing)

			continue
		}

		blockSize := 64 - leading - trailing
		w.writeBits(1, 1)
		w.writeBits(uint64(leading), 5)
		w.writeBits(uint64(blockSize-1), 6)
		w.writeBits(xor>>trailing, blockSize)
		prevLeading, prevTrailing = leading, trailing
	}

	return w.flush()
}

// DecodeGorilla decodes n values from a stream produced by AppendGorilla.
//
// Returns ErrCorrupt if data holds fewer than n values.
func DecodeGorilla(data []byte, n int) ([]float64, error) {
	if n == 0 {
		return nil, nil
	}
	// every value after the first takes at least one bit
	if n < 0 || len(data) < 8 || n-1 > (len(data)-8)*8 {
		return nil, fmt.Errorf("%w: %d bytes cannot hold %d values", ErrCorrupt, len(data), n)
	}

	r := bitReader{buf: data}
	out := make([]float64, n)
	prev, ok := r.readBits(64)
	if !ok {
		return nil, ErrCorrupt
	}
	out[0] = math.Float64frombits(prev)

	leading, trailing, blockSize := 0, 0, 0
	for i := 1; i < n; i++ {
		changed, ok := r.readBits(1)
		if !ok {
			return nil, fmt.Errorf("%w: truncated at value %d", ErrCorrupt, i)
		}
		if changed == 0 {
			out[i] = math.Float64frombits(prev)
			continue
		}

		newBlock, ok := r.readBits(1)
		if !ok {
			return nil, fmt.Errorf("%w: truncated at value %d", ErrCorrupt, i)
		}
		if newBlock == 1 {
			l, ok1 := r.readBits(5)
			size, ok2 := r.readBits(6)
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("%w: truncated block header at value %d", ErrCorrupt, i)
			}
			leading, blockSize = int(l), int(size)+1
			trailing = 64 - leading - blockSize
			if trailing < 0 {
				return nil, fmt.Errorf("%w: block of %d bits after %d leading zeros", ErrCorrupt, blockSize, leading)
			}
		} else if blockSize == 0 {
			return nil, fmt.Errorf("%w: block reuse before any block at value %d", ErrCorrupt, i)
		}

		meaningful, ok := r.readBits(blockSize)
		if !ok {
			return nil, fmt.Errorf("%w: truncated at value %d", ErrCorrupt, i)
		}
		prev ^= meaningful << trailing
		out[i] = math.Float64frombits(prev)
	}

	return out, nil
}

// bitWriter packs bits most significant first.
type bitWriter struct {
	buf  []byte
	cur  byte
	used int
}

func (w *bitWriter) writeBits(v uint64, n int) {
	for n > 0 {
		free := 8 - w.used
		take := min(free, n)
		chunk := byte(v>>(n-take)) & (byte(0xFF) >> (8 - take))
		w.cur |= chunk << (free - take)
		w.used += take
		n -= take
		if w.used == 8 {
			w.buf = append(w.buf, w.cur)
			w.cur, w.used = 0, 0
		}
	}
}

func (w *bitWriter) flush() []byte {
	if w.used > 0 {
		w.buf = append(w.buf, w.cur)
		w.cur, w.used = 0, 0
	}

	return w.buf
}

type bitReader struct {
	buf  []byte
	off  int
	used int
}

func (r *bitReader) readBits(n int) (uint64, bool) {
	var v uint64
	for n > 0 {
		if r.off >= len(r.buf) {
			return 0, false
		}
		avail := 8 - r.used
		take := min(avail, n)
		chunk := (r.buf[r.off] >> (avail - take)) & (byte(0xFF) >> (8 - take))
		v = v<<take | uint64(chunk)
		r.used += take
		n -= take
		if r.used == 8 {
			r.off++
			r.used = 0
		}
	}

	return v, true
}
