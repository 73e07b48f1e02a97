package pool

import "sync"

// Slice pools for scratch vectors of the solver and the diagnostics.
var (
	float64SlicePool = sync.Pool{
		New: func() any { return &[]float64{} },
	}
)

// GetFloat64Slice retrieves a float64 slice of exactly size elements from the pool.
// The contents are unspecified. The caller must call the returned cleanup function,
// typically with defer, and must not use the slice afterwards.
//
//	values, cleanup := pool.GetFloat64Slice(len(x))
//	defer cleanup()
func GetFloat64Slice(size int) ([]float64, func()) {
	ptr, _ := float64SlicePool.Get().(*[]float64)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]float64, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { float64SlicePool.Put(ptr) }
}
