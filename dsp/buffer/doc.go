// Package buffer provides reusable sample buffers and pools for
// allocation-friendly analysis. Buffers are generic over real (float64) and
// complex (complex128) samples so the same pool type backs both the
// time-domain scratch and the spectra of one analysis call.
//
// All DSP functions accept raw slices; Buffer is a convenience that helps
// callers manage allocation and reuse in hot paths.
package buffer
