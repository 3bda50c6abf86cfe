package core

// EnsureLen returns a slice with the requested length, reusing buf capacity if possible.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}

// RealToComplex writes src into dst as complex values with zero imaginary
// part and returns the number of written elements.
func RealToComplex(dst []complex128, src []float64) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = complex(src[i], 0)
	}
	return n
}

// Float32ToFloat64 widens src into dst and returns the number of copied elements.
func Float32ToFloat64(dst []float64, src []float32) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = float64(src[i])
	}
	return n
}

// Float64ToFloat32 narrows src into dst and returns the number of copied elements.
func Float64ToFloat32(dst []float32, src []float64) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = float32(src[i])
	}
	return n
}
