// Package cwt measures per-frequency stereo level and pan from one chunk of
// audio using a Morlet continuous wavelet transform evaluated in the
// frequency domain.
//
// For every target frequency the chunk is correlated with a unit-energy
// Morlet wavelet (6 cycles) through the FFT. Only the strongest coefficient
// of each channel is kept: its magnitude becomes a dB level clamped to
// [-100, 0] and the phase difference between the two channels becomes a pan
// angle clamped to [-90, 90] degrees.
//
// # Usage
//
//	a, err := cwt.New()
//	frame, err := a.Analyze(left, right, 48000, bank.Default())
//	fmt.Println(frame.DBLeft[i], frame.DBRight[i], frame.Pan[i])
//
// The float32 layout used by audio hosts is available through
// [ProcessAudioData], which writes left levels to dbLevels[0:N], right levels
// to dbLevels[N:2N] and pan angles to panAngles[0:N].
//
// # Limitations
//
// The left and right peaks are searched independently, so their time
// positions may differ and the pan angle mixes the true inter-channel phase
// with the phase advance between the two positions.
//
// A silent channel is not special-cased. An all-zero channel has a zero
// peak, which contributes phase 0, so with one channel silent the pan angle
// is the active channel's own peak phase and often sits at the clamp. A
// channel that is merely quiet still contributes the phase of its peak.
//
// Frequencies at or above Nyquist alias and are reported as whatever their
// aliased wavelet measures; use [WithNyquistGuard] to reject them instead.
//
// # Concurrency
//
// An [Analyzer] is safe for concurrent use. [WithWorkers] splits the
// frequency loop across goroutines, each with its own transform and scratch.
package cwt
