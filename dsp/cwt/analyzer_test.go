package cwt

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-cwt/dsp/bank"
	"github.com/cwbudde/algo-cwt/dsp/transform"
	"github.com/cwbudde/algo-cwt/internal/testutil"
)

const (
	testRate  = 48000.0
	testChunk = 2048
	toneHz    = 640.0 // 20*2^(60/12), entry 60 of the default bank
)

func mustNew(t *testing.T, opts ...Option) *Analyzer {
	t.Helper()
	a, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a
}

func requireFrameInRange(t *testing.T, f *Frame) {
	t.Helper()
	testutil.RequireInRange(t, f.DBLeft, FloorDB, CeilDB)
	testutil.RequireInRange(t, f.DBRight, FloorDB, CeilDB)
	testutil.RequireInRange(t, f.Pan, -MaxPanDegrees, MaxPanDegrees)
}

func TestSilence(t *testing.T) {
	a := mustNew(t)
	freqs := bank.Default()
	silence := testutil.Silence(testChunk)

	f, err := a.Analyze(silence, silence, testRate, freqs)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	for i := range freqs {
		if f.DBLeft[i] != FloorDB || f.DBRight[i] != FloorDB {
			t.Fatalf("freq %d: dB = %v/%v, want %v", i, f.DBLeft[i], f.DBRight[i], FloorDB)
		}
		if f.Pan[i] != 0 {
			t.Fatalf("freq %d: pan = %v, want 0", i, f.Pan[i])
		}
	}
	if f.SilentLeft != len(freqs) || f.SilentRight != len(freqs) {
		t.Fatalf("silent = %d/%d, want %d", f.SilentLeft, f.SilentRight, len(freqs))
	}
	if f.Degenerate != 0 {
		t.Fatalf("Degenerate = %d, want 0", f.Degenerate)
	}
}

func TestOutputRanges(t *testing.T) {
	a := mustNew(t)
	freqs := bank.Default()

	tests := []struct {
		name        string
		left, right []float64
	}{
		{"noise", testutil.DeterministicNoise(1, 1, testChunk), testutil.DeterministicNoise(2, 1, testChunk)},
		{"loud tone", testutil.DeterministicSine(toneHz, testRate, 1, testChunk), testutil.DeterministicSine(toneHz, testRate, 1, testChunk)},
		{"quadrature", testutil.Tone(1000, testRate, 0.3, 0, testChunk), testutil.Tone(1000, testRate, 0.3, math.Pi/2, testChunk)},
		{"impulse", testutil.Impulse(testChunk, 100), testutil.Impulse(testChunk, 1500)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := a.Analyze(tt.left, tt.right, testRate, freqs)
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}
			requireFrameInRange(t, f)
		})
	}
}

func TestNonFiniteSamplesStayInRange(t *testing.T) {
	a := mustNew(t)
	left := testutil.DeterministicNoise(3, 0.5, 256)
	left[10] = math.NaN()
	right := testutil.DeterministicNoise(4, 0.5, 256)

	f, err := a.Analyze(left, right, testRate, []float64{100, 1000, 10000})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	requireFrameInRange(t, f)
	for i, db := range f.DBLeft {
		if db != FloorDB {
			t.Fatalf("left %d = %v, want floor for NaN input", i, db)
		}
	}
}

func TestPureToneBothChannels(t *testing.T) {
	a := mustNew(t)
	freqs := bank.Default()
	idx := freqs.Index(toneHz)
	if freqs[idx] != toneHz {
		t.Fatalf("bank entry %d = %v, want %v", idx, freqs[idx], toneHz)
	}

	tone := testutil.DeterministicSine(toneHz, testRate, 0.01, testChunk)
	f, err := a.Analyze(tone, tone, testRate, freqs)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if f.Pan[idx] != 0 {
		t.Fatalf("pan at tone = %v, want 0", f.Pan[idx])
	}
	if f.DBLeft[idx] != f.DBRight[idx] {
		t.Fatalf("identical channels gave %v/%v dB", f.DBLeft[idx], f.DBRight[idx])
	}
	if !(f.DBLeft[idx] > FloorDB && f.DBLeft[idx] < CeilDB) {
		t.Fatalf("tone level = %v, want strictly inside the clamp range", f.DBLeft[idx])
	}
	for i := range freqs {
		if i > idx-24 && i < idx+24 {
			continue
		}
		if !(f.DBLeft[idx] > f.DBLeft[i]) {
			t.Fatalf("level at %v Hz (%v dB) not below tone level %v dB", freqs[i], f.DBLeft[i], f.DBLeft[idx])
		}
	}
}

func TestHardPan(t *testing.T) {
	a := mustNew(t)
	freqs := bank.Default()
	idx := freqs.Index(toneHz)
	tone := testutil.DeterministicSine(toneHz, testRate, 0.5, testChunk)
	silence := testutil.Silence(testChunk)

	leftOnly, err := a.Analyze(tone, silence, testRate, freqs)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	rightOnly, err := a.Analyze(silence, tone, testRate, freqs)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	for i := range freqs {
		if leftOnly.DBRight[i] != FloorDB || rightOnly.DBLeft[i] != FloorDB {
			t.Fatalf("silent channel at %d = %v/%v dB, want %v", i, leftOnly.DBRight[i], rightOnly.DBLeft[i], FloorDB)
		}
	}
	if !(leftOnly.DBLeft[idx] > FloorDB) || !(rightOnly.DBRight[idx] > FloorDB) {
		t.Fatalf("active channel at tone = %v/%v dB, want > %v", leftOnly.DBLeft[idx], rightOnly.DBRight[idx], FloorDB)
	}
	if got := math.Abs(leftOnly.Pan[idx]); got != MaxPanDegrees {
		t.Fatalf("left only: |pan| at tone = %v, want %v", got, MaxPanDegrees)
	}
	if rightOnly.Pan[idx] != -leftOnly.Pan[idx] {
		t.Fatalf("right only pan = %v, want %v", rightOnly.Pan[idx], -leftOnly.Pan[idx])
	}
	requireFrameInRange(t, leftOnly)
	requireFrameInRange(t, rightOnly)
}

func TestPanIsAntisymmetric(t *testing.T) {
	a := mustNew(t)
	l, r := testutil.StereoTone(750, testRate, 0.5, 0.5, 0.6, testChunk)
	freqs := []float64{750}

	f1, err := a.Analyze(l, r, testRate, freqs)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	f2, err := a.Analyze(r, l, testRate, freqs)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if f1.Pan[0] != -f2.Pan[0] {
		t.Fatalf("pan(l,r) = %v, pan(r,l) = %v, want negated", f1.Pan[0], f2.Pan[0])
	}
}

func TestDeterministicAcrossWorkers(t *testing.T) {
	freqs := bank.Default()
	left := testutil.DeterministicNoise(7, 0.8, testChunk)
	right := testutil.DeterministicNoise(8, 0.8, testChunk)

	ref, err := mustNew(t).Analyze(left, right, testRate, freqs)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	for _, workers := range []int{1, 2, 3, 8, 200} {
		a := mustNew(t, WithWorkers(workers))
		for run := 0; run < 2; run++ {
			f, err := a.Analyze(left, right, testRate, freqs)
			if err != nil {
				t.Fatalf("workers=%d: Analyze() error = %v", workers, err)
			}
			for i := range freqs {
				if f.DBLeft[i] != ref.DBLeft[i] || f.DBRight[i] != ref.DBRight[i] || f.Pan[i] != ref.Pan[i] {
					t.Fatalf("workers=%d run=%d: freq %d differs: %v/%v/%v vs %v/%v/%v",
						workers, run, i, f.DBLeft[i], f.DBRight[i], f.Pan[i],
						ref.DBLeft[i], ref.DBRight[i], ref.Pan[i])
				}
			}
			if f.SilentLeft != ref.SilentLeft || f.SilentRight != ref.SilentRight || f.Degenerate != ref.Degenerate {
				t.Fatalf("workers=%d: counters differ", workers)
			}
		}
	}
}

func TestBackendsAgree(t *testing.T) {
	freqs := bank.Default()
	left := testutil.DeterministicNoise(11, 0.5, testChunk)
	right := testutil.DeterministicNoise(12, 0.5, testChunk)

	ref, err := mustNew(t, WithBackend(transform.BackendAlgoFFT)).Analyze(left, right, testRate, freqs)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	for _, backend := range []transform.Backend{transform.BackendGonum, transform.BackendGoDSP} {
		t.Run(backend.String(), func(t *testing.T) {
			f, err := mustNew(t, WithBackend(backend)).Analyze(left, right, testRate, freqs)
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}
			testutil.RequireSliceNearlyEqual(t, f.DBLeft, ref.DBLeft, 1e-6)
			testutil.RequireSliceNearlyEqual(t, f.DBRight, ref.DBRight, 1e-6)
		})
	}
}

func TestBackendsAgreeOnOddChunkSizes(t *testing.T) {
	freqs := []float64{320, toneHz, 1280}
	algo := mustNew(t, WithBackend(transform.BackendAlgoFFT))
	gonum := mustNew(t, WithBackend(transform.BackendGonum))

	for _, n := range []int{1000, 2000, 3000} {
		left := testutil.DeterministicSine(toneHz, testRate, 0.01, n)
		right := testutil.DeterministicNoise(int64(n), 0.01, n)

		got, err := algo.Analyze(left, right, testRate, freqs)
		if err != nil {
			t.Fatalf("n=%d: Analyze() error = %v", n, err)
		}
		want, err := gonum.Analyze(left, right, testRate, freqs)
		if err != nil {
			t.Fatalf("n=%d: Analyze() error = %v", n, err)
		}
		testutil.RequireSliceNearlyEqual(t, got.DBLeft, want.DBLeft, 1e-9)
		testutil.RequireSliceNearlyEqual(t, got.DBRight, want.DBRight, 1e-9)
		testutil.RequireSliceNearlyEqual(t, got.Pan, want.Pan, 1e-9)
		if !(got.DBLeft[1] > got.DBLeft[0] && got.DBLeft[1] > got.DBLeft[2]) {
			t.Fatalf("n=%d: tone bin %v dB not above neighbours %v", n, got.DBLeft[1], got.DBLeft)
		}
	}
}

func TestDegenerateWaveletCounted(t *testing.T) {
	a := mustNew(t)
	noise := testutil.DeterministicNoise(5, 1, 64)

	f, err := a.Analyze(noise, noise, testRate, []float64{1000, 10 * testRate})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if f.Degenerate != 1 {
		t.Fatalf("Degenerate = %d, want 1", f.Degenerate)
	}
	if f.DBLeft[1] != FloorDB || f.Pan[1] != 0 {
		t.Fatalf("degenerate frequency = %v dB pan %v, want floor and 0", f.DBLeft[1], f.Pan[1])
	}
	requireFrameInRange(t, f)
}

func TestNyquistGuard(t *testing.T) {
	noise := testutil.DeterministicNoise(6, 1, 512)
	freqs := []float64{1000, 30000}

	if _, err := mustNew(t).Analyze(noise, noise, testRate, freqs); err != nil {
		t.Fatalf("above-Nyquist frequency rejected without guard: %v", err)
	}

	_, err := mustNew(t, WithNyquistGuard()).Analyze(noise, noise, testRate, freqs)
	if !errors.Is(err, ErrInvalidArgument) || !errors.Is(err, bank.ErrInvalidBank) {
		t.Fatalf("expected ErrInvalidArgument wrapping ErrInvalidBank, got %v", err)
	}
}

func TestAnalyzeValidation(t *testing.T) {
	a := mustNew(t)
	ok := testutil.Silence(64)
	freqs := []float64{100, 1000}

	tests := []struct {
		name        string
		left, right []float64
		rate        float64
		freqs       []float64
	}{
		{"empty chunk", nil, nil, testRate, freqs},
		{"length mismatch", ok, testutil.Silence(63), testRate, freqs},
		{"zero rate", ok, ok, 0, freqs},
		{"negative rate", ok, ok, -48000, freqs},
		{"nan rate", ok, ok, math.NaN(), freqs},
		{"inf rate", ok, ok, math.Inf(1), freqs},
		{"no frequencies", ok, ok, testRate, nil},
		{"zero frequency", ok, ok, testRate, []float64{100, 0}},
		{"negative frequency", ok, ok, testRate, []float64{-440}},
		{"nan frequency", ok, ok, testRate, []float64{math.NaN()}},
		{"inf frequency", ok, ok, testRate, []float64{math.Inf(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.Analyze(tt.left, tt.right, tt.rate, tt.freqs); !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("Analyze: expected ErrInvalidArgument, got %v", err)
			}
			if err := a.AnalyzeInto(NewFrame(0), tt.left, tt.right, tt.rate, tt.freqs); !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("AnalyzeInto: expected ErrInvalidArgument, got %v", err)
			}
		})
	}

	if err := a.AnalyzeInto(nil, ok, ok, testRate, freqs); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("nil frame: expected ErrInvalidArgument, got %v", err)
	}
	if s := a.CacheStats(); s.Hits+s.Misses != 0 {
		t.Fatalf("validation failures touched the transform cache: %+v", s)
	}
}

func TestAnalyzeIntoReusesFrame(t *testing.T) {
	a := mustNew(t)
	silence := testutil.Silence(128)

	f := NewFrame(0)
	if err := a.AnalyzeInto(f, silence, silence, testRate, []float64{100, 200, 300}); err != nil {
		t.Fatalf("AnalyzeInto() error = %v", err)
	}
	if f.Len() != 3 || f.SilentLeft != 3 {
		t.Fatalf("frame len=%d silent=%d, want 3/3", f.Len(), f.SilentLeft)
	}
	backing := &f.DBLeft[0]

	if err := a.AnalyzeInto(f, silence, silence, testRate, []float64{100, 200}); err != nil {
		t.Fatalf("AnalyzeInto() error = %v", err)
	}
	if f.Len() != 2 || f.SilentLeft != 2 || f.SilentRight != 2 {
		t.Fatalf("frame len=%d silent=%d/%d, want 2/2/2", f.Len(), f.SilentLeft, f.SilentRight)
	}
	if &f.DBLeft[0] != backing {
		t.Fatal("AnalyzeInto reallocated a frame with enough capacity")
	}
}

func TestVaryingChunkSizes(t *testing.T) {
	a := mustNew(t, WithCacheSize(2))
	freqs := []float64{250, 2500}

	for _, n := range []int{2048, 1024, 1000, 2048} {
		l, r := testutil.StereoTone(250, testRate, 0.5, 0.5, 0, n)
		f, err := a.Analyze(l, r, testRate, freqs)
		if err != nil {
			t.Fatalf("n=%d: Analyze() error = %v", n, err)
		}
		requireFrameInRange(t, f)
	}
	if s := a.CacheStats(); s.Lengths > 2 || s.Evictions == 0 {
		t.Fatalf("cache stats = %+v, want at most 2 lengths and some evictions", s)
	}
}

func TestNewOptions(t *testing.T) {
	if _, err := New(WithBackend(transform.Backend(99))); !errors.Is(err, transform.ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}

	a := mustNew(t, WithWorkers(0), WithCacheSize(-1), WithLogger(nil), nil)
	cfg := a.Config()
	def := DefaultConfig()
	if cfg.Workers != def.Workers || cfg.CacheSize != def.CacheSize || cfg.Logger == nil {
		t.Fatalf("invalid options changed config: %+v", cfg)
	}

	cfg = mustNew(t, WithWorkers(4), WithNyquistGuard(), WithBackend(transform.BackendGonum)).Config()
	if cfg.Workers != 4 || !cfg.NyquistGuard || cfg.Backend != transform.BackendGonum {
		t.Fatalf("options not applied: %+v", cfg)
	}
}

func TestFrameLayouts(t *testing.T) {
	f := NewFrame(2)
	f.DBLeft[0], f.DBLeft[1] = -10, -20
	f.DBRight[0], f.DBRight[1] = -30, -40
	f.Pan[0], f.Pan[1] = 45, -90

	levels := make([]float32, 4)
	if err := f.Levels(levels); err != nil {
		t.Fatalf("Levels() error = %v", err)
	}
	want := []float32{-10, -20, -30, -40}
	for i := range want {
		if levels[i] != want[i] {
			t.Fatalf("levels = %v, want %v", levels, want)
		}
	}

	angles := make([]float32, 2)
	if err := f.Angles(angles); err != nil {
		t.Fatalf("Angles() error = %v", err)
	}
	if angles[0] != 45 || angles[1] != -90 {
		t.Fatalf("angles = %v", angles)
	}

	if err := f.Levels(make([]float32, 3)); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Levels short buffer: expected ErrInvalidArgument, got %v", err)
	}
	if err := f.Angles(make([]float32, 3)); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Angles long buffer: expected ErrInvalidArgument, got %v", err)
	}
}

func TestPanAngle(t *testing.T) {
	tests := []struct {
		name        string
		left, right complex128
		want        float64
	}{
		{"both zero", 0, 0, 0},
		{"right zero", 1i, 0, 90},
		{"left zero", 0, 1i, -90},
		{"zero peak has phase 0", 1, 0, 0},
		{"magnitude ignored", 1i, 1e-7i, 0},
		{"in phase", 1, 1, 0},
		{"left leads 45", complex(1, 1), 1, 45},
		{"right leads 45", 1, complex(1, 1), -45},
		{"clamped", 1i, -1i, 90},
		{"wraps across pi", complex(-1, -0.01), complex(-1, 0.01), 1.1459},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := panAngle(tt.left, tt.right)
			if math.Abs(got-tt.want) > 1e-3 {
				t.Fatalf("panAngle = %v, want %v", got, tt.want)
			}
		})
	}
}
