package cwt

import (
	"github.com/cwbudde/algo-cwt/dsp/transform"
	"github.com/cwbudde/algo-cwt/internal/logging"
)

// Level and pan limits of a Frame.
const (
	FloorDB          = -100.0
	CeilDB           = 0.0
	SilenceThreshold = 1e-5
	MaxPanDegrees    = 90.0
)

// Config holds analyzer settings.
type Config struct {
	Backend      transform.Backend
	Workers      int
	NyquistGuard bool
	CacheSize    int
	Logger       logging.Logger
}

// Option mutates analyzer configuration.
type Option func(*Config)

// DefaultConfig returns the single-threaded algo-fft configuration.
func DefaultConfig() Config {
	return Config{
		Backend:   transform.BackendAlgoFFT,
		Workers:   1,
		CacheSize: transform.DefaultCacheLengths,
		Logger:    logging.NoOpLogger{},
	}
}

// WithBackend selects the FFT library.
func WithBackend(b transform.Backend) Option {
	return func(cfg *Config) {
		cfg.Backend = b
	}
}

// WithWorkers splits the frequency loop across n goroutines. Values < 1 are
// ignored.
func WithWorkers(n int) Option {
	return func(cfg *Config) {
		if n >= 1 {
			cfg.Workers = n
		}
	}
}

// WithNyquistGuard rejects frequencies at or above half the sample rate.
func WithNyquistGuard() Option {
	return func(cfg *Config) {
		cfg.NyquistGuard = true
	}
}

// WithCacheSize sets how many chunk lengths keep prepared transforms.
// Values < 1 are ignored.
func WithCacheSize(n int) Option {
	return func(cfg *Config) {
		if n >= 1 {
			cfg.CacheSize = n
		}
	}
}

// WithLogger reports construction and transform fallbacks to l.
// A nil logger is ignored.
func WithLogger(l logging.Logger) Option {
	return func(cfg *Config) {
		if l != nil {
			cfg.Logger = l
		}
	}
}

// ApplyOptions applies opts to DefaultConfig.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
