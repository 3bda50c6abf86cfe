//go:build fastmath

package wavelet

import "github.com/meko-christian/algo-approx"

// mathExp computes e^x using fast approximation. The envelope is
// renormalized afterwards, so the approximation error only shapes the taper.
func mathExp(x float64) float64 {
	return approx.FastExp(x)
}
