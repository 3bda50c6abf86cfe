//go:build fastmath

package core

// dbTol bounds dB errors of the approximate log10. approx.FastLog stays
// within about 1.3e-5 of ln(x), which is about 1.1e-4 dB.
const dbTol = 1e-3
