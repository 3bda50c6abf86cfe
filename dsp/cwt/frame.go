package cwt

import (
	"fmt"

	"github.com/cwbudde/algo-cwt/dsp/core"
)

// Frame holds the per-frequency results of one analyzed chunk. Index i of
// every slice belongs to frequency i of the analyzed bank.
type Frame struct {
	DBLeft  []float64
	DBRight []float64
	Pan     []float64

	// Degenerate counts frequencies whose wavelet energy was too small to
	// normalize.
	Degenerate int
	// SilentLeft and SilentRight count frequencies at the -100 dB floor.
	SilentLeft  int
	SilentRight int
}

// NewFrame returns a frame sized for n frequencies.
func NewFrame(n int) *Frame {
	f := &Frame{}
	f.resize(n)
	return f
}

// Len returns the number of frequencies in the frame.
func (f *Frame) Len() int {
	return len(f.Pan)
}

func (f *Frame) resize(n int) {
	f.DBLeft = resizeFloat(f.DBLeft, n)
	f.DBRight = resizeFloat(f.DBRight, n)
	f.Pan = resizeFloat(f.Pan, n)
	f.Degenerate = 0
	f.SilentLeft = 0
	f.SilentRight = 0
}

func resizeFloat(s []float64, n int) []float64 {
	s = core.EnsureLen(s, n)
	clear(s)
	return s
}

// Levels writes the left levels to dst[0:N] and the right levels to
// dst[N:2N]. dst must have length 2N.
func (f *Frame) Levels(dst []float32) error {
	n := f.Len()
	if len(dst) != 2*n {
		return fmt.Errorf("%w: level buffer length %d, want %d", ErrInvalidArgument, len(dst), 2*n)
	}
	core.Float64ToFloat32(dst[:n], f.DBLeft)
	core.Float64ToFloat32(dst[n:], f.DBRight)
	return nil
}

// Angles writes the pan angles to dst, which must have length N.
func (f *Frame) Angles(dst []float32) error {
	n := f.Len()
	if len(dst) != n {
		return fmt.Errorf("%w: angle buffer length %d, want %d", ErrInvalidArgument, len(dst), n)
	}
	core.Float64ToFloat32(dst, f.Pan)
	return nil
}
