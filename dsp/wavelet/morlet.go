package wavelet

import (
	"errors"
	"fmt"
	"math"
)

// Cycles is the default number of oscillations under the envelope.
const Cycles = 6.0

// MinEnergy is the raw energy at or below which normalization is skipped.
const MinEnergy = 1e-9

// ErrInvalidArgument is returned for non-positive or non-finite parameters.
var ErrInvalidArgument = errors.New("wavelet: invalid argument")

// Generator builds Morlet wavelets with a configurable cycle count.
// The zero value uses [Cycles].
type Generator struct {
	Cycles float64
}

func (g Generator) cycles() float64 {
	if g.Cycles > 0 && !math.IsInf(g.Cycles, 0) {
		return g.Cycles
	}
	return Cycles
}

// Morlet returns a new unit-energy Morlet wavelet of length n for freq at
// sampleRate, using the default cycle count.
func Morlet(freq, sampleRate float64, n int) ([]complex128, error) {
	return Generator{}.Morlet(freq, sampleRate, n)
}

// Morlet returns a new wavelet of length n.
func (g Generator) Morlet(freq, sampleRate float64, n int) ([]complex128, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: length must be > 0: %d", ErrInvalidArgument, n)
	}
	if err := Validate(freq, sampleRate); err != nil {
		return nil, err
	}

	w := make([]complex128, n)
	g.Fill(w, freq, sampleRate)
	return w, nil
}

// Validate checks the frequency and sample rate of a wavelet request.
func Validate(freq, sampleRate float64) error {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: sample rate must be > 0: %v", ErrInvalidArgument, sampleRate)
	}
	if !(freq > 0) || math.IsInf(freq, 0) {
		return fmt.Errorf("%w: frequency must be > 0: %v", ErrInvalidArgument, freq)
	}
	return nil
}

// Fill writes the wavelet for freq into dst, using len(dst) as the window
// length, and returns the raw energy before normalization. Parameters are
// not validated; see [Validate].
func (g Generator) Fill(dst []complex128, freq, sampleRate float64) float64 {
	n := len(dst)
	if n == 0 {
		return 0
	}

	sigmaT := g.cycles() / (2 * math.Pi * freq)
	sigma := sigmaT * sampleRate
	invTwoSigmaSq := 1 / (2 * sigma * sigma)
	omega := 2 * math.Pi * freq / sampleRate
	center := float64(n-1) / 2

	energy := 0.0
	for t := range dst {
		tau := float64(t) - center
		env := mathExp(-tau * tau * invTwoSigmaSq)
		s, c := math.Sincos(omega * tau)
		re, im := env*c, env*s
		dst[t] = complex(re, im)
		energy += re*re + im*im
	}

	if energy > MinEnergy {
		scale := complex(1/math.Sqrt(energy), 0)
		for t := range dst {
			dst[t] *= scale
		}
	}

	return energy
}

// Energy returns the sum of squared magnitudes of w.
func Energy(w []complex128) float64 {
	sum := 0.0
	for _, v := range w {
		re, im := real(v), imag(v)
		sum += re*re + im*im
	}
	return sum
}

// Sigma returns the envelope standard deviation in samples for freq.
func (g Generator) Sigma(freq, sampleRate float64) float64 {
	return g.cycles() / (2 * math.Pi * freq) * sampleRate
}
