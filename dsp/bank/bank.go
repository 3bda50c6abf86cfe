// Package bank builds and validates the ordered frequency banks the CWT
// analyzer evaluates. The index of a frequency in its bank is the index of
// its level and pan outputs.
package bank

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Reference bank parameters: 130 semitone steps starting at 20 Hz.
const (
	DefaultSize = 130
	DefaultBase = 20.0
)

// ErrInvalidBank is returned for empty banks, bad parameters and invalid
// entries.
var ErrInvalidBank = errors.New("bank: invalid frequency bank")

// Bank is an ordered list of target frequencies in Hz.
type Bank []float64

// Default returns the reference bank 20*2^(i/12) for i in [0,130).
//
// Its upper entries lie above the Nyquist frequency of common sample rates
// (the last entry is about 34.4 kHz); the analyzer reports them as
// near-silent rather than rejecting them.
func Default() Bank {
	b, _ := Semitones(DefaultBase, DefaultSize)
	return b
}

// Semitones returns n frequencies spaced one equal-tempered semitone apart,
// starting at base.
func Semitones(base float64, n int) (Bank, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: size must be > 0: %d", ErrInvalidBank, n)
	}
	if !(base > 0) || math.IsInf(base, 0) {
		return nil, fmt.Errorf("%w: base must be > 0: %v", ErrInvalidBank, base)
	}

	b := make(Bank, n)
	for i := range b {
		b[i] = base * math.Pow(2, float64(i)/12)
	}
	return b, nil
}

// LogSpaced returns n frequencies geometrically spaced from fmin to fmax
// inclusive.
func LogSpaced(fmin, fmax float64, n int) (Bank, error) {
	if err := checkRange(fmin, fmax, n); err != nil {
		return nil, err
	}
	if n == 1 {
		return Bank{fmin}, nil
	}

	b := make(Bank, n)
	ratio := math.Log(fmax / fmin)
	for i := range b {
		b[i] = fmin * math.Exp(ratio*float64(i)/float64(n-1))
	}
	b[n-1] = fmax
	return b, nil
}

// Linear returns n frequencies evenly spaced from fmin to fmax inclusive.
func Linear(fmin, fmax float64, n int) (Bank, error) {
	if err := checkRange(fmin, fmax, n); err != nil {
		return nil, err
	}
	if n == 1 {
		return Bank{fmin}, nil
	}

	b := make(Bank, n)
	step := (fmax - fmin) / float64(n-1)
	for i := range b {
		b[i] = fmin + step*float64(i)
	}
	b[n-1] = fmax
	return b, nil
}

func checkRange(fmin, fmax float64, n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: size must be > 0: %d", ErrInvalidBank, n)
	}
	if !(fmin > 0) || math.IsInf(fmax, 0) || math.IsNaN(fmax) {
		return fmt.Errorf("%w: range must be positive and finite: [%v, %v]", ErrInvalidBank, fmin, fmax)
	}
	if fmax < fmin {
		return fmt.Errorf("%w: fmax %v below fmin %v", ErrInvalidBank, fmax, fmin)
	}
	return nil
}

// Validate reports the first unusable entry of b. Entries must be finite and
// > 0; when strictNyquist is set they must also lie below sampleRate/2.
func Validate[T ~float32 | ~float64](b []T, sampleRate float64, strictNyquist bool) error {
	if len(b) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidBank)
	}

	nyquist := sampleRate / 2
	for i, v := range b {
		f := float64(v)
		if !(f > 0) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: frequency %d must be finite and > 0: %v", ErrInvalidBank, i, f)
		}
		if strictNyquist && f >= nyquist {
			return fmt.Errorf("%w: frequency %d (%v Hz) at or above Nyquist %v Hz", ErrInvalidBank, i, f, nyquist)
		}
	}
	return nil
}

// AboveNyquist returns how many entries lie at or above sampleRate/2.
func (b Bank) AboveNyquist(sampleRate float64) int {
	nyquist := sampleRate / 2
	count := 0
	for _, f := range b {
		if f >= nyquist {
			count++
		}
	}
	return count
}

// Index returns the index of the entry closest to f on a log-frequency
// scale, or -1 for an empty bank. The bank need not be sorted.
func (b Bank) Index(f float64) int {
	best, bestDist := -1, math.Inf(1)
	if !(f > 0) {
		return best
	}
	lf := math.Log(f)
	for i, v := range b {
		if !(v > 0) {
			continue
		}
		if d := math.Abs(math.Log(v) - lf); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// IsSorted reports whether the bank is strictly increasing.
func (b Bank) IsSorted() bool {
	return sort.SliceIsSorted(b, func(i, j int) bool { return b[i] < b[j] }) && !hasDuplicates(b)
}

func hasDuplicates(b Bank) bool {
	for i := 1; i < len(b); i++ {
		if b[i] == b[i-1] {
			return true
		}
	}
	return false
}

// Float32 converts the bank to the float32 layout of the kernel boundary.
func (b Bank) Float32() []float32 {
	out := make([]float32, len(b))
	for i, f := range b {
		out[i] = float32(f)
	}
	return out
}
