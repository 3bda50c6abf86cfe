// Package transform provides fixed-length complex discrete Fourier
// transforms behind a small backend-neutral interface.
//
// Every [Transform] follows the same contract regardless of the library that
// implements it:
//
//	Forward: X[k] = sum_n x[n] * exp(-2*pi*i*k*n/N)
//	Inverse: x[n] = sum_k X[k] * exp(+2*pi*i*k*n/N)   (unnormalized)
//
// so Forward followed by Inverse multiplies the input by N.
//
// # Backends
//
//   - [BackendAlgoFFT]: github.com/MeKo-Christian/algo-fft plans (default),
//     power-of-two lengths only.
//   - [BackendGonum]: gonum.org/v1/gonum/dsp/fourier, any length.
//   - [BackendGoDSP]: github.com/mjibson/go-dsp/fft, any length.
//
// For any other length, or when the algo-fft planner rejects one, [New]
// transparently falls back to the gonum backend and logs a warning.
//
// # Caching
//
// Preparing a transform is comparatively expensive, so [Cache] keeps prepared
// instances per length. A transform instance is never handed to two callers
// at once: each concurrent worker acquires its own and releases it when done.
package transform
