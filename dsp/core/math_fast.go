//go:build fastmath

package core

import "github.com/meko-christian/algo-approx"

// ln10 is the natural logarithm of 10, used for log base conversion.
const ln10 = 2.302585092994045684017991454684

// mathLog10 computes log10(x) using fast approximation.
// Uses the identity: log10(x) = ln(x) / ln(10)
func mathLog10(x float64) float64 {
	return approx.FastLog(x) / ln10
}
