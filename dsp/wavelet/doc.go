// Package wavelet synthesizes the complex Morlet wavelets used as matched
// filters by the CWT analyzer.
//
// A Morlet wavelet is a complex exponential at the target frequency under a
// Gaussian envelope. The envelope width follows a fixed cycle count:
//
//	sigma_t = Cycles / (2*pi*f)       seconds
//	sigma   = sigma_t * sampleRate    samples
//
// Samples are centered on the window midpoint (n-1)/2 and normalized to unit
// energy (sum of squared magnitudes equal to 1) unless the raw energy is
// negligible, in which case they are returned as generated.
//
// Very low frequencies give envelopes wider than the window and are
// truncated; very high frequencies give envelopes narrower than a sample and
// alias. Neither case is corrected.
package wavelet
