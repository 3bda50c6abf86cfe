// Package testutil holds deterministic stereo fixtures and tolerance helpers
// shared by the package tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	return Tone(freqHz, sampleRate, amplitude, 0, length)
}

// Tone generates amplitude*sin(2*pi*f*t + phase).
func Tone(freqHz, sampleRate, amplitude, phase float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i)+phase)
	}
	return out
}

// StereoTone returns a left/right pair of the same tone. The right channel
// leads the left by phaseRight radians.
func StereoTone(freqHz, sampleRate, ampLeft, ampRight, phaseRight float64, length int) (left, right []float64) {
	return Tone(freqHz, sampleRate, ampLeft, 0, length),
		Tone(freqHz, sampleRate, ampRight, phaseRight, length)
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Silence returns length zero samples.
func Silence(length int) []float64 {
	return make([]float64, length)
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// ToFloat32 narrows a fixture to the float32 sample layout.
func ToFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
