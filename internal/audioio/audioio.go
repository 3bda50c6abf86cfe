// Package audioio loads stereo audio for analysis and cuts it into chunks.
package audioio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep/mp3"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Errors returned by the loaders.
var (
	ErrInvalidFile       = errors.New("audioio: invalid audio file")
	ErrUnsupportedFormat = errors.New("audioio: unsupported format")
	ErrNoAudio           = errors.New("audioio: no audio frames")
)

// Stereo is a decoded two-channel signal normalized to [-1, 1]. Mono
// sources are duplicated into both channels.
type Stereo struct {
	SampleRate float64
	Left       []float64
	Right      []float64
}

// Len returns the number of frames.
func (s *Stereo) Len() int {
	return len(s.Left)
}

// Duration returns the signal length in seconds.
func (s *Stereo) Duration() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(s.Len()) / s.SampleRate
}

// NumChunks returns how many chunks of size frames cover the signal. The
// last chunk may be partial.
func (s *Stereo) NumChunks(size int) int {
	if size <= 0 {
		return 0
	}
	return (s.Len() + size - 1) / size
}

// Chunk copies chunk i into left and right, which must have equal length
// (the chunk size). Frames past the end of the signal are zero.
func (s *Stereo) Chunk(i int, left, right []float64) bool {
	size := len(left)
	if size == 0 || len(right) != size || i < 0 || i >= s.NumChunks(size) {
		return false
	}
	start := i * size
	n := copy(left, s.Left[start:])
	copy(right, s.Right[start:])
	clear(left[n:])
	clear(right[n:])
	return true
}

// Tone synthesizes a stereo sine of the given duration. The right channel
// is shifted by panPhase radians relative to the left.
func Tone(freq, sampleRate, amplitude, panPhase float64, frames int) *Stereo {
	s := &Stereo{
		SampleRate: sampleRate,
		Left:       make([]float64, frames),
		Right:      make([]float64, frames),
	}
	step := 2 * math.Pi * freq / sampleRate
	for i := range s.Left {
		s.Left[i] = amplitude * math.Sin(step*float64(i))
		s.Right[i] = amplitude * math.Sin(step*float64(i)+panPhase)
	}
	return s
}

// Open decodes a .wav or .mp3 file.
func Open(path string) (*Stereo, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".wav" && ext != ".mp3" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audioio: could not open file: %w", err)
	}

	if ext == ".mp3" {
		// The decoder owns and closes f.
		return ReadMP3(f)
	}
	defer f.Close()
	return ReadWAV(f)
}

// ReadWAV decodes integer PCM WAV data.
func ReadWAV(r io.ReadSeeker) (*Stereo, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, ErrInvalidFile
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("audioio: could not read PCM buffer: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 {
		return nil, fmt.Errorf("%w: missing format", ErrInvalidFile)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = int(decoder.BitDepth)
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: bit depth %d", ErrInvalidFile, bitDepth)
	}

	return fromInterleaved(buf, float64(decoder.SampleRate), 1/float64(uint64(1)<<(bitDepth-1)))
}

func fromInterleaved(buf *audio.IntBuffer, sampleRate float64, scale float64) (*Stereo, error) {
	channels := buf.Format.NumChannels
	frames := len(buf.Data) / channels
	if frames == 0 {
		return nil, ErrNoAudio
	}

	s := &Stereo{
		SampleRate: sampleRate,
		Left:       make([]float64, frames),
		Right:      make([]float64, frames),
	}
	for i := 0; i < frames; i++ {
		l := float64(buf.Data[i*channels]) * scale
		r := l
		if channels > 1 {
			r = float64(buf.Data[i*channels+1]) * scale
		}
		s.Left[i], s.Right[i] = l, r
	}
	return s, nil
}

// ReadMP3 decodes an MP3 stream and closes rc.
func ReadMP3(rc io.ReadCloser) (*Stereo, error) {
	streamer, format, err := mp3.Decode(rc)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	defer streamer.Close()

	s := &Stereo{SampleRate: float64(format.SampleRate)}
	samples := make([][2]float64, 4096)
	for {
		n, ok := streamer.Stream(samples)
		for _, frame := range samples[:n] {
			s.Left = append(s.Left, frame[0])
			s.Right = append(s.Right, frame[1])
		}
		if !ok || n == 0 {
			break
		}
	}
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("audioio: mp3 stream: %w", err)
	}
	if s.Len() == 0 {
		return nil, ErrNoAudio
	}
	return s, nil
}

// WriteWAV encodes s as 16-bit stereo PCM.
func WriteWAV(w io.WriteSeeker, s *Stereo) error {
	const bitDepth = 16
	if s.Len() == 0 {
		return ErrNoAudio
	}
	if len(s.Right) != s.Len() {
		return fmt.Errorf("%w: channel lengths differ", ErrInvalidFile)
	}

	sampleRate := int(math.Round(s.SampleRate))
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: sampleRate},
		Data:           make([]int, 2*s.Len()),
		SourceBitDepth: bitDepth,
	}
	const full = 1 << (bitDepth - 1)
	for i := range s.Left {
		buf.Data[2*i] = quantize(s.Left[i], full)
		buf.Data[2*i+1] = quantize(s.Right[i], full)
	}

	encoder := wav.NewEncoder(w, sampleRate, bitDepth, 2, 1)
	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("audioio: data writing error: %w", err)
	}
	return encoder.Close()
}

func quantize(v float64, full int) int {
	q := int(math.Round(v * float64(full)))
	return max(-full, min(full-1, q))
}
