package cwt

import (
	"fmt"
	"sync"

	"github.com/cwbudde/algo-cwt/dsp/bank"
	"github.com/cwbudde/algo-cwt/dsp/buffer"
	"github.com/cwbudde/algo-cwt/dsp/core"
)

var (
	defaultOnce     sync.Once
	defaultAnalyzer *Analyzer
	defaultErr      error
)

// Default returns the shared analyzer used by ProcessAudioData.
func Default() (*Analyzer, error) {
	defaultOnce.Do(func() {
		defaultAnalyzer, defaultErr = New()
	})
	return defaultAnalyzer, defaultErr
}

// ProcessAudioData analyzes one float32 chunk with the default analyzer.
//
// dbLevels must have length 2*len(freqs) and receives the left levels
// followed by the right levels; panAngles must have length len(freqs).
// Computation runs in float64.
func ProcessAudioData(left, right []float32, sampleRate float32, freqs []float32, dbLevels, panAngles []float32) error {
	a, err := Default()
	if err != nil {
		return err
	}
	return a.ProcessAudioData(left, right, sampleRate, freqs, dbLevels, panAngles)
}

// ProcessAudioData is the float32 form of AnalyzeInto; see the package-level
// ProcessAudioData for the buffer layout.
func (a *Analyzer) ProcessAudioData(left, right []float32, sampleRate float32, freqs []float32, dbLevels, panAngles []float32) error {
	sr := float64(sampleRate)
	if err := checkChunk(len(left), len(right), sr); err != nil {
		return err
	}
	nf := len(freqs)
	if err := bank.Validate(freqs, sr, a.cfg.NyquistGuard); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if len(dbLevels) != 2*nf {
		return fmt.Errorf("%w: dbLevels length %d, want %d", ErrInvalidArgument, len(dbLevels), 2*nf)
	}
	if len(panAngles) != nf {
		return fmt.Errorf("%w: panAngles length %d, want %d", ErrInvalidArgument, len(panAngles), nf)
	}

	arena := buffer.NewArena(a.reals, a.complexes)
	defer arena.Release()

	l := arena.Real(len(left))
	r := arena.Real(len(right))
	f := arena.Real(nf)
	core.Float32ToFloat64(l, left)
	core.Float32ToFloat64(r, right)
	core.Float32ToFloat64(f, freqs)

	frame := a.frames.Get().(*Frame)
	defer a.frames.Put(frame)

	frame.resize(nf)
	if err := a.run(frame, l, r, sr, f); err != nil {
		return err
	}
	if err := frame.Levels(dbLevels); err != nil {
		return err
	}
	return frame.Angles(panAngles)
}
