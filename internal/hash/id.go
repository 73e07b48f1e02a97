package hash

import (
	"math"

	"github.com/cespare/xxhash/v2"
)

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Fingerprint accumulates an xxHash64 digest over the numeric inputs of a fit.
//
// Two fingerprints built from the same sequence of writes are equal; any change in a
// value, a flag, or the order of writes yields a different sum with overwhelming
// probability. The zero value is not usable; create one with NewFingerprint.
type Fingerprint struct {
	d   *xxhash.Digest
	buf [8]byte
}

// NewFingerprint returns an empty fingerprint.
func NewFingerprint() *Fingerprint {
	return &Fingerprint{d: xxhash.New()}
}

// Uint64 mixes an unsigned integer into the fingerprint.
func (f *Fingerprint) Uint64(v uint64) *Fingerprint {
	for i := range f.buf {
		f.buf[i] = byte(v >> (8 * i))
	}
	_, _ = f.d.Write(f.buf[:])

	return f
}

// Int mixes a signed integer into the fingerprint.
func (f *Fingerprint) Int(v int) *Fingerprint {
	return f.Uint64(uint64(v)) //nolint:gosec
}

// Float64 mixes the IEEE 754 bits of v into the fingerprint.
func (f *Fingerprint) Float64(v float64) *Fingerprint {
	return f.Uint64(math.Float64bits(v))
}

// Float64s mixes a length-prefixed float slice into the fingerprint.
func (f *Fingerprint) Float64s(vs []float64) *Fingerprint {
	f.Int(len(vs))
	for _, v := range vs {
		f.Float64(v)
	}

	return f
}

// Bools mixes a length-prefixed bool slice into the fingerprint.
func (f *Fingerprint) Bools(vs []bool) *Fingerprint {
	f.Int(len(vs))
	for _, v := range vs {
		if v {
			f.Uint64(1)
		} else {
			f.Uint64(0)
		}
	}

	return f
}

// Text mixes a length-prefixed string into the fingerprint.
func (f *Fingerprint) Text(s string) *Fingerprint {
	f.Int(len(s))
	_, _ = f.d.WriteString(s)

	return f
}

// Sum returns the current digest value.
func (f *Fingerprint) Sum() uint64 {
	return f.d.Sum64()
}
