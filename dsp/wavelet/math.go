//go:build !fastmath

package wavelet

import "math"

// mathExp computes e^x using standard library math.
func mathExp(x float64) float64 {
	return math.Exp(x)
}
