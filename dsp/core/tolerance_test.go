//go:build !fastmath

package core

// dbTol bounds dB errors of the standard library log10.
const dbTol = 1e-9
