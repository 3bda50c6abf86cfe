package transform

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/cwbudde/algo-cwt/internal/logging"
)

// Errors returned by transform constructors and methods.
var (
	ErrInvalidLength  = errors.New("transform: length must be > 0")
	ErrLengthMismatch = errors.New("transform: buffer length mismatch")
	ErrUnknownBackend = errors.New("transform: unknown backend")
)

// Transform is a fixed-length complex DFT. Implementations are not safe for
// concurrent use; see [Cache] for sharing them between workers.
type Transform interface {
	// Len returns the transform length.
	Len() int
	// Forward computes the forward DFT of src into dst.
	Forward(dst, src []complex128) error
	// Inverse computes the unnormalized inverse DFT of src into dst.
	Inverse(dst, src []complex128) error
	// Backend reports which library performs the transform.
	Backend() Backend
}

// Backend selects the FFT library behind a Transform.
type Backend int

const (
	BackendAlgoFFT Backend = iota
	BackendGonum
	BackendGoDSP
)

func (b Backend) String() string {
	switch b {
	case BackendAlgoFFT:
		return "algofft"
	case BackendGonum:
		return "gonum"
	case BackendGoDSP:
		return "godsp"
	default:
		return fmt.Sprintf("Backend(%d)", int(b))
	}
}

// Valid reports whether b names a known backend.
func (b Backend) Valid() bool {
	return b >= BackendAlgoFFT && b <= BackendGoDSP
}

// ParseBackend converts a backend name as printed by String.
func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "algofft", "algo-fft", "":
		return BackendAlgoFFT, nil
	case "gonum":
		return BackendGonum, nil
	case "godsp", "go-dsp":
		return BackendGoDSP, nil
	default:
		return BackendAlgoFFT, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// Option configures transform construction.
type Option func(*options)

type options struct {
	logger logging.Logger
}

// WithLogger reports backend fallbacks and cache activity to l.
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{logger: logging.NoOpLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// New prepares a transform of length n on the requested backend.
func New(backend Backend, n int, opts ...Option) (Transform, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, n)
	}

	o := applyOptions(opts)

	switch backend {
	case BackendAlgoFFT:
		if !isPowerOfTwo(n) {
			o.logger.Warn("algo-fft length is not a power of two, falling back to gonum", logging.Fields{
				"length": n,
			})
			return newGonum(n), nil
		}
		plan, err := algofft.NewPlan64(n)
		if err != nil {
			o.logger.Warn("algo-fft rejected length, falling back to gonum", logging.Fields{
				"length": n,
				"error":  err.Error(),
			})
			return newGonum(n), nil
		}
		return &algoFFT{plan: plan, n: n, scale: complex(float64(n), 0)}, nil
	case BackendGonum:
		return newGonum(n), nil
	case BackendGoDSP:
		return &goDSP{n: n, scale: complex(float64(n), 0)}, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownBackend, backend)
	}
}

// isPowerOfTwo reports whether n is a length algo-fft plans are trusted for.
// Some mixed-radix lengths plan without error but transform incorrectly.
func isPowerOfTwo(n int) bool {
	return n > 0 && bits.OnesCount(uint(n)) == 1
}

func checkLen(n int, dst, src []complex128) error {
	if len(dst) != n || len(src) != n {
		return fmt.Errorf("%w: dst=%d src=%d want=%d", ErrLengthMismatch, len(dst), len(src), n)
	}
	return nil
}

// algoFFT wraps an algo-fft plan. The plan's inverse is scaled by 1/N, so it
// is multiplied back to honour the unnormalized contract.
type algoFFT struct {
	plan  *algofft.Plan[complex128]
	n     int
	scale complex128
}

func (t *algoFFT) Len() int         { return t.n }
func (t *algoFFT) Backend() Backend { return BackendAlgoFFT }

func (t *algoFFT) Forward(dst, src []complex128) error {
	if err := checkLen(t.n, dst, src); err != nil {
		return err
	}
	if err := t.plan.Forward(dst, src); err != nil {
		return fmt.Errorf("transform: algo-fft forward: %w", err)
	}
	return nil
}

func (t *algoFFT) Inverse(dst, src []complex128) error {
	if err := checkLen(t.n, dst, src); err != nil {
		return err
	}
	if err := t.plan.Inverse(dst, src); err != nil {
		return fmt.Errorf("transform: algo-fft inverse: %w", err)
	}
	for i := range dst {
		dst[i] *= t.scale
	}
	return nil
}

// gonumFFT wraps gonum's complex FFT, whose Sequence is already unnormalized.
type gonumFFT struct {
	fft *fourier.CmplxFFT
	n   int
}

func newGonum(n int) *gonumFFT {
	return &gonumFFT{fft: fourier.NewCmplxFFT(n), n: n}
}

func (t *gonumFFT) Len() int         { return t.n }
func (t *gonumFFT) Backend() Backend { return BackendGonum }

func (t *gonumFFT) Forward(dst, src []complex128) error {
	if err := checkLen(t.n, dst, src); err != nil {
		return err
	}
	t.fft.Coefficients(dst, src)
	return nil
}

func (t *gonumFFT) Inverse(dst, src []complex128) error {
	if err := checkLen(t.n, dst, src); err != nil {
		return err
	}
	t.fft.Sequence(dst, src)
	return nil
}

// goDSP wraps mjibson/go-dsp. Its IFFT divides by N, which is undone here.
// go-dsp allocates its results, so this backend is the slowest of the three.
type goDSP struct {
	n     int
	scale complex128
}

func (t *goDSP) Len() int         { return t.n }
func (t *goDSP) Backend() Backend { return BackendGoDSP }

func (t *goDSP) Forward(dst, src []complex128) error {
	if err := checkLen(t.n, dst, src); err != nil {
		return err
	}
	copy(dst, fft.FFT(src))
	return nil
}

func (t *goDSP) Inverse(dst, src []complex128) error {
	if err := checkLen(t.n, dst, src); err != nil {
		return err
	}
	copy(dst, fft.IFFT(src))
	for i := range dst {
		dst[i] *= t.scale
	}
	return nil
}
