//go:build !fastmath

package core

import "math"

// mathLog10 computes log10(x) using standard library math.
func mathLog10(x float64) float64 {
	return math.Log10(x)
}
