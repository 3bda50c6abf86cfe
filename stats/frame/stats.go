// Package frame summarizes one analyzed CWT frame: per-channel peaks and
// averages over the frequency bank plus stereo balance and width.
package frame

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-cwt/dsp/core"
	"github.com/cwbudde/algo-cwt/dsp/cwt"
)

// ChannelStats describes one channel of a frame.
type ChannelStats struct {
	PeakIndex int     // bank index of the loudest frequency, -1 if silent
	PeakFreq  float64 // Hz
	PeakDB    float64
	MeanDB    float64
	Centroid  float64 // amplitude-weighted mean frequency (Hz)
	Flatness  float64 // geometric / arithmetic mean amplitude, 0..1
	Active    int     // frequencies above the silence floor
}

// Stats holds frame-level statistics.
type Stats struct {
	Bins        int
	Left, Right ChannelStats
	Centroid    float64 // centroid of the combined stereo amplitude (Hz)
	Balance     float64 // mean right-minus-left level (dB)
	Width       float64 // combined-amplitude-weighted mean |pan| (degrees)
	Degenerate  int
}

// Calculate computes statistics for f analyzed over freqs. Only the first
// min(f.Len(), len(freqs)) entries are used.
func Calculate(f *cwt.Frame, freqs []float64) Stats {
	var s Stats
	if f == nil {
		s.Left.PeakIndex, s.Right.PeakIndex = -1, -1
		return s
	}

	n := min(f.Len(), len(freqs))
	s.Bins = n
	s.Degenerate = f.Degenerate
	if n == 0 {
		s.Left.PeakIndex, s.Right.PeakIndex = -1, -1
		return s
	}
	freqs = freqs[:n]

	ampLeft := amplitudes(f.DBLeft[:n])
	ampRight := amplitudes(f.DBRight[:n])
	s.Left = channel(f.DBLeft[:n], ampLeft, freqs)
	s.Right = channel(f.DBRight[:n], ampRight, freqs)

	combined := make([]float64, n)
	vecmath.Magnitude(combined, ampLeft, ampRight)
	s.Centroid = weightedMean(freqs, combined)

	diff := make([]float64, n)
	floats.SubTo(diff, f.DBRight[:n], f.DBLeft[:n])
	s.Balance = stat.Mean(diff, nil)

	absPan := make([]float64, n)
	for i, p := range f.Pan[:n] {
		absPan[i] = math.Abs(p)
	}
	s.Width = weightedMean(absPan, combined)

	return s
}

// amplitudes converts levels to linear amplitude; the floor maps to 0.
func amplitudes(db []float64) []float64 {
	amp := make([]float64, len(db))
	for i, v := range db {
		if v > cwt.FloorDB {
			amp[i] = core.DBToLinear(v)
		}
	}
	return amp
}

func channel(db, amp, freqs []float64) ChannelStats {
	cs := ChannelStats{PeakIndex: -1, PeakDB: cwt.FloorDB}
	cs.MeanDB = stat.Mean(db, nil)

	for _, a := range amp {
		if a > 0 {
			cs.Active++
		}
	}
	if cs.Active == 0 {
		return cs
	}

	cs.PeakIndex = floats.MaxIdx(db)
	cs.PeakFreq = freqs[cs.PeakIndex]
	cs.PeakDB = db[cs.PeakIndex]
	cs.Centroid = weightedMean(freqs, amp)
	cs.Flatness = flatness(amp)
	return cs
}

// weightedMean returns 0 when all weights are zero.
func weightedMean(x, weights []float64) float64 {
	if floats.Sum(weights) == 0 {
		return 0
	}
	return stat.Mean(x, weights)
}

// Flatness returns the ratio of geometric to arithmetic mean amplitude. Any
// zero amplitude makes it 0.
func Flatness(amp []float64) float64 {
	return flatness(amp)
}

func flatness(amp []float64) float64 {
	if len(amp) == 0 {
		return 0
	}
	arith := stat.Mean(amp, nil)
	if arith == 0 {
		return 0
	}
	for _, a := range amp {
		if a <= 0 {
			return 0
		}
	}
	return stat.GeometricMean(amp, nil) / arith
}
