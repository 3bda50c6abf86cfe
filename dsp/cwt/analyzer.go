package cwt

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-cwt/dsp/bank"
	"github.com/cwbudde/algo-cwt/dsp/buffer"
	"github.com/cwbudde/algo-cwt/dsp/core"
	"github.com/cwbudde/algo-cwt/dsp/transform"
	"github.com/cwbudde/algo-cwt/dsp/wavelet"
	"github.com/cwbudde/algo-cwt/internal/logging"
)

// ErrInvalidArgument is returned for empty or mismatched chunks, bad sample
// rates, bad frequencies and wrongly sized output buffers.
var ErrInvalidArgument = errors.New("cwt: invalid argument")

// Analyzer computes level and pan frames. It keeps prepared transforms per
// chunk length and pooled scratch buffers between calls.
type Analyzer struct {
	cfg       Config
	cache     *transform.Cache
	reals     *buffer.Pool[float64]
	complexes *buffer.Pool[complex128]
	frames    sync.Pool
	gen       wavelet.Generator
}

// New returns an analyzer configured by opts.
func New(opts ...Option) (*Analyzer, error) {
	cfg := ApplyOptions(opts...)
	if !cfg.Backend.Valid() {
		return nil, fmt.Errorf("cwt: %w: %v", transform.ErrUnknownBackend, cfg.Backend)
	}

	a := &Analyzer{
		cfg:       cfg,
		cache:     transform.NewCache(cfg.Backend, cfg.CacheSize, transform.WithLogger(cfg.Logger)),
		reals:     buffer.NewPool[float64](),
		complexes: buffer.NewPool[complex128](),
		gen:       wavelet.Generator{Cycles: wavelet.Cycles},
	}
	a.frames.New = func() any { return &Frame{} }

	cfg.Logger.Debug("analyzer ready", logging.Fields{
		"backend":       cfg.Backend.String(),
		"workers":       cfg.Workers,
		"nyquist_guard": cfg.NyquistGuard,
		"cache_lengths": cfg.CacheSize,
	})
	return a, nil
}

// Config returns the analyzer configuration.
func (a *Analyzer) Config() Config {
	return a.cfg
}

// CacheStats reports transform cache activity.
func (a *Analyzer) CacheStats() transform.CacheStats {
	return a.cache.Stats()
}

// Analyze measures one chunk. left and right must have the same non-zero
// length; freqs are target frequencies in Hz.
func (a *Analyzer) Analyze(left, right []float64, sampleRate float64, freqs []float64) (*Frame, error) {
	if err := a.validate(len(left), len(right), sampleRate, freqs); err != nil {
		return nil, err
	}

	frame := NewFrame(len(freqs))
	if err := a.run(frame, left, right, sampleRate, freqs); err != nil {
		return nil, err
	}
	return frame, nil
}

// AnalyzeInto is like Analyze but writes into frame, reusing its slices.
func (a *Analyzer) AnalyzeInto(frame *Frame, left, right []float64, sampleRate float64, freqs []float64) error {
	if frame == nil {
		return fmt.Errorf("%w: nil frame", ErrInvalidArgument)
	}
	if err := a.validate(len(left), len(right), sampleRate, freqs); err != nil {
		return err
	}

	frame.resize(len(freqs))
	return a.run(frame, left, right, sampleRate, freqs)
}

func (a *Analyzer) validate(nLeft, nRight int, sampleRate float64, freqs []float64) error {
	if err := checkChunk(nLeft, nRight, sampleRate); err != nil {
		return err
	}
	if err := bank.Validate(freqs, sampleRate, a.cfg.NyquistGuard); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return nil
}

func checkChunk(nLeft, nRight int, sampleRate float64) error {
	if nLeft <= 0 {
		return fmt.Errorf("%w: chunk size must be > 0", ErrInvalidArgument)
	}
	if nLeft != nRight {
		return fmt.Errorf("%w: channel lengths differ: left=%d right=%d", ErrInvalidArgument, nLeft, nRight)
	}
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: sample rate must be finite and > 0: %v", ErrInvalidArgument, sampleRate)
	}
	return nil
}

// run assumes validated arguments and a frame sized for freqs.
func (a *Analyzer) run(frame *Frame, left, right []float64, sampleRate float64, freqs []float64) error {
	n := len(left)

	arena := buffer.NewArena(a.reals, a.complexes)
	defer arena.Release()

	specLeft := arena.Complex(n)
	specRight := arena.Complex(n)
	if err := a.forward(arena, specLeft, specRight, left, right); err != nil {
		return err
	}

	j := &job{
		frame:      frame,
		specLeft:   specLeft,
		specRight:  specRight,
		freqs:      freqs,
		sampleRate: sampleRate,
	}

	workers := min(a.cfg.Workers, len(freqs))
	if workers <= 1 {
		t, err := a.band(j, 0, len(freqs))
		if err != nil {
			return err
		}
		t.addTo(frame)
		return nil
	}

	tallies := make([]tally, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * len(freqs) / workers
		hi := (w + 1) * len(freqs) / workers
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			tallies[w], errs[w] = a.band(j, lo, hi)
		}(w, lo, hi)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return err
	}
	for _, t := range tallies {
		t.addTo(frame)
	}
	return nil
}

// forward transforms both channels into specLeft and specRight.
func (a *Analyzer) forward(arena *buffer.Arena, specLeft, specRight []complex128, left, right []float64) error {
	n := len(left)
	t, err := a.cache.Acquire(n)
	if err != nil {
		return fmt.Errorf("cwt: forward transform: %w", err)
	}
	defer a.cache.Release(t)

	in := arena.Complex(n)
	core.RealToComplex(in, left)
	if err := t.Forward(specLeft, in); err != nil {
		return fmt.Errorf("cwt: forward transform: %w", err)
	}
	core.RealToComplex(in, right)
	if err := t.Forward(specRight, in); err != nil {
		return fmt.Errorf("cwt: forward transform: %w", err)
	}
	return nil
}

// job is the read-only input shared by the workers of one call. Workers
// write only their own frame slots.
type job struct {
	frame      *Frame
	specLeft   []complex128
	specRight  []complex128
	freqs      []float64
	sampleRate float64
}

type tally struct {
	degenerate  int
	silentLeft  int
	silentRight int
}

func (t tally) addTo(f *Frame) {
	f.Degenerate += t.degenerate
	f.SilentLeft += t.silentLeft
	f.SilentRight += t.silentRight
}

// band analyzes freqs[lo:hi] with its own transform and scratch.
func (a *Analyzer) band(j *job, lo, hi int) (tally, error) {
	var out tally
	n := len(j.specLeft)

	t, err := a.cache.Acquire(n)
	if err != nil {
		return out, fmt.Errorf("cwt: transform: %w", err)
	}
	defer a.cache.Release(t)

	arena := buffer.NewArena(a.reals, a.complexes)
	defer arena.Release()

	s := scratch{
		wave:  arena.Complex(n),
		spec:  arena.Complex(n),
		cross: arena.Complex(n),
		coef:  arena.Complex(n),
		re:    arena.Real(n),
		im:    arena.Real(n),
		pow:   arena.Real(n),
	}

	for i := lo; i < hi; i++ {
		if energy := a.gen.Fill(s.wave, j.freqs[i], j.sampleRate); !(energy > wavelet.MinEnergy) {
			out.degenerate++
		}
		if err := t.Forward(s.spec, s.wave); err != nil {
			return out, fmt.Errorf("cwt: wavelet transform: %w", err)
		}

		peakLeft, err := s.peak(t, j.specLeft)
		if err != nil {
			return out, err
		}
		peakRight, err := s.peak(t, j.specRight)
		if err != nil {
			return out, err
		}

		magLeft, magRight := cabs(peakLeft), cabs(peakRight)
		if !(magLeft > SilenceThreshold) {
			out.silentLeft++
		}
		if !(magRight > SilenceThreshold) {
			out.silentRight++
		}

		j.frame.DBLeft[i] = core.FlooredDB(magLeft, SilenceThreshold, FloorDB, CeilDB)
		j.frame.DBRight[i] = core.FlooredDB(magRight, SilenceThreshold, FloorDB, CeilDB)
		j.frame.Pan[i] = panAngle(peakLeft, peakRight)
	}
	return out, nil
}

// scratch holds one worker's per-frequency buffers.
type scratch struct {
	wave, spec, cross, coef []complex128
	re, im, pow             []float64
}

// peak correlates a channel spectrum with the current wavelet spectrum and
// returns the coefficient with the largest squared magnitude. Ties keep the
// earliest index; an all-zero result yields 0.
func (s *scratch) peak(t transform.Transform, channel []complex128) (complex128, error) {
	for k, w := range s.spec {
		s.cross[k] = channel[k] * complex(real(w), -imag(w))
	}
	if err := t.Inverse(s.coef, s.cross); err != nil {
		return 0, fmt.Errorf("cwt: inverse transform: %w", err)
	}

	n := float64(len(s.coef))
	for k, c := range s.coef {
		s.re[k] = real(c) / n
		s.im[k] = imag(c) / n
	}
	vecmath.Power(s.pow, s.re, s.im)

	best, at := 0.0, -1
	for k, p := range s.pow {
		if p > best {
			best, at = p, k
		}
	}
	if at < 0 {
		return 0, nil
	}
	return complex(s.re[at], s.im[at]), nil
}

func cabs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

// panAngle maps the inter-channel phase difference of the two peaks to
// degrees. A zero peak has phase 0, so a silent channel leaves the active
// channel's own phase as the difference.
func panAngle(left, right complex128) float64 {
	delta := core.WrapPhase(math.Atan2(imag(left), real(left)) - math.Atan2(imag(right), real(right)))
	return core.Clamp(core.RadToDeg(delta), -MaxPanDegrees, MaxPanDegrees)
}
