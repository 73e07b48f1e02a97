// Package endian provides the byte order used to lay out plot frame columns.
//
// EndianEngine combines binary.ByteOrder and binary.AppendByteOrder so encoders can
// append fixed-width values without scratch buffers:
//
//	engine := endian.GetLittleEndianEngine()
//	buf = endian.AppendFloat64s(engine, buf, xs)
//
// Frames are little-endian unless the producer asks for big-endian output; the chosen
// order is recorded in the frame header.
package endian

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// EndianEngine is satisfied by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness returns the byte order of the host.
func CheckEndianness() binary.ByteOrder {
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsNativeLittleEndian reports whether the host is little-endian.
func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// AppendFloat64s appends the IEEE 754 bits of every value in vs to dst.
func AppendFloat64s(engine EndianEngine, dst []byte, vs []float64) []byte {
	for _, v := range vs {
		dst = engine.AppendUint64(dst, math.Float64bits(v))
	}

	return dst
}

// Float64s decodes len(src)/8 values from src. Trailing bytes are ignored.
func Float64s(engine EndianEngine, src []byte) []float64 {
	out := make([]float64, len(src)/8)
	for i := range out {
		out[i] = math.Float64frombits(engine.Uint64(src[i*8:]))
	}

	return out
}
