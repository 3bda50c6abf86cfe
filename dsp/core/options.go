package core

import "fmt"

// ChunkConfig describes how a stereo stream is cut into analysis chunks.
type ChunkConfig struct {
	SampleRate float64
	ChunkSize  int
}

// DefaultChunkConfig returns the visualizer defaults: 2048 samples at 48 kHz.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		SampleRate: 48000,
		ChunkSize:  2048,
	}
}

// Duration returns the length of one chunk in seconds.
func (c ChunkConfig) Duration() float64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float64(c.ChunkSize) / c.SampleRate
}

// Validate reports whether the config can be analyzed.
func (c ChunkConfig) Validate() error {
	if c.SampleRate <= 0 || !IsFinite(c.SampleRate) {
		return fmt.Errorf("core: sample rate must be > 0: %v", c.SampleRate)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("core: chunk size must be > 0: %d", c.ChunkSize)
	}
	return nil
}
