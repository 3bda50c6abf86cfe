// Command cwtscope prints per-chunk stereo level and pan statistics of an
// audio file, measured with the Morlet CWT analyzer.
//
// Usage:
//
//	cwtscope [flags] -in file.wav|file.mp3
//	cwtscope [flags] -tone 440 [-pan-phase 0.5]
//
// Examples:
//
//	cwtscope -in mix.wav
//	cwtscope -in song.mp3 -bank log -fmin 40 -fmax 16000 -n 48 -json
//	cwtscope -tone 1000 -pan-phase 1.2 -max-chunks 4
//	cwtscope -list
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-cwt/dsp/bank"
	"github.com/cwbudde/algo-cwt/dsp/core"
	"github.com/cwbudde/algo-cwt/dsp/cwt"
	"github.com/cwbudde/algo-cwt/dsp/transform"
	"github.com/cwbudde/algo-cwt/internal/audioio"
	"github.com/cwbudde/algo-cwt/internal/logging"
	framestats "github.com/cwbudde/algo-cwt/stats/frame"
	"github.com/cwbudde/algo-vecmath/cpu"
)

var errUsage = errors.New("cwtscope: no input (use -in or -tone)")

type options struct {
	in         string
	chunk      int
	bankKind   string
	fmin, fmax float64
	bins       int
	backend    string
	workers    int
	json       bool
	maxChunks  int
	verbose    bool
	list       bool
	strict     bool

	tone       float64
	panPhase   float64
	sampleRate float64
	seconds    float64
}

func main() {
	var o options
	def := core.DefaultChunkConfig()
	flag.StringVar(&o.in, "in", "", "input .wav or .mp3 file")
	flag.IntVar(&o.chunk, "chunk", def.ChunkSize, "chunk size in frames")
	flag.StringVar(&o.bankKind, "bank", "default", "frequency bank: default, log or linear")
	flag.Float64Var(&o.fmin, "fmin", 20, "lowest frequency for log/linear banks (Hz)")
	flag.Float64Var(&o.fmax, "fmax", 20000, "highest frequency for log/linear banks (Hz)")
	flag.IntVar(&o.bins, "n", 64, "number of frequencies for log/linear banks")
	flag.StringVar(&o.backend, "backend", "algofft", "FFT backend: algofft, gonum or godsp")
	flag.IntVar(&o.workers, "workers", 1, "goroutines per chunk")
	flag.BoolVar(&o.json, "json", false, "write one JSON object per chunk")
	flag.IntVar(&o.maxChunks, "max-chunks", 0, "stop after this many chunks (0 = all)")
	flag.BoolVar(&o.verbose, "v", false, "debug logging")
	flag.BoolVar(&o.list, "list", false, "print the frequency bank and exit")
	flag.BoolVar(&o.strict, "nyquist-guard", false, "reject bank frequencies at or above Nyquist")
	flag.Float64Var(&o.tone, "tone", 0, "synthesize a sine of this frequency instead of reading -in (Hz)")
	flag.Float64Var(&o.panPhase, "pan-phase", 0, "phase offset of the synthesized right channel (radians)")
	flag.Float64Var(&o.sampleRate, "rate", def.SampleRate, "sample rate of the synthesized tone, and of -list without -in (Hz)")
	flag.Float64Var(&o.seconds, "seconds", 1, "length of the synthesized tone (s)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: cwtscope [flags] -in file.wav|file.mp3\n\n")
		fmt.Fprintf(os.Stderr, "Prints per-chunk stereo level and pan statistics.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  cwtscope -in mix.wav\n")
		fmt.Fprintf(os.Stderr, "  cwtscope -in song.mp3 -bank log -n 48 -json\n")
		fmt.Fprintf(os.Stderr, "  cwtscope -tone 1000 -pan-phase 1.2 -max-chunks 4\n")
	}
	flag.Parse()

	logger := logging.NewDefaultLogger()
	if o.verbose {
		logger.SetLevel(logging.DebugLevel)
	}

	if err := run(o, os.Stdout, logger); err != nil {
		logger.Error(err, "cwtscope failed")
		if errors.Is(err, errUsage) {
			flag.Usage()
		}
		os.Exit(1)
	}
}

func run(o options, stdout io.Writer, logger logging.Logger) error {
	logger = logging.OrNoOp(logger)

	freqs, err := buildBank(o)
	if err != nil {
		return err
	}
	if o.list {
		rate := o.sampleRate
		if o.in != "" {
			signal, err := audioio.Open(o.in)
			if err != nil {
				return err
			}
			rate = signal.SampleRate
		}
		return printBank(stdout, freqs, rate)
	}

	signal, err := loadSignal(o)
	if err != nil {
		return err
	}
	chunkCfg := core.ChunkConfig{SampleRate: signal.SampleRate, ChunkSize: o.chunk}
	if err := chunkCfg.Validate(); err != nil {
		return err
	}

	backend, err := transform.ParseBackend(o.backend)
	if err != nil {
		return err
	}
	opts := []cwt.Option{
		cwt.WithBackend(backend),
		cwt.WithWorkers(o.workers),
		cwt.WithLogger(logger),
	}
	if o.strict {
		opts = append(opts, cwt.WithNyquistGuard())
	}
	analyzer, err := cwt.New(opts...)
	if err != nil {
		return err
	}

	hw := cpu.DetectFeatures()
	logger.Debug("cpu", logging.Fields{
		"arch": hw.Architecture,
		"sse2": hw.HasSSE2,
		"avx2": hw.HasAVX2,
	})

	if above := freqs.AboveNyquist(signal.SampleRate); above > 0 && !o.strict {
		logger.Warn("bank reaches above Nyquist; those frequencies alias", logging.Fields{
			"count":   above,
			"nyquist": signal.SampleRate / 2,
		})
	}
	logger.Info("analyzing", logging.Fields{
		"frames":      signal.Len(),
		"sample_rate": signal.SampleRate,
		"chunk":       chunkCfg.ChunkSize,
		"chunk_ms":    chunkCfg.Duration() * 1000,
		"bins":        len(freqs),
		"backend":     backend.String(),
	})

	var out reporter
	if o.json {
		out = newJSONReporter(stdout)
	} else {
		out = newTableReporter(stdout)
	}

	chunks := signal.NumChunks(chunkCfg.ChunkSize)
	if o.maxChunks > 0 {
		chunks = min(chunks, o.maxChunks)
	}

	left := make([]float64, chunkCfg.ChunkSize)
	right := make([]float64, chunkCfg.ChunkSize)
	frame := cwt.NewFrame(len(freqs))
	for i := 0; i < chunks; i++ {
		signal.Chunk(i, left, right)
		if err := analyzer.AnalyzeInto(frame, left, right, signal.SampleRate, freqs); err != nil {
			return fmt.Errorf("cwtscope: chunk %d: %w", i, err)
		}
		at := float64(i) * chunkCfg.Duration()
		if err := out.Report(i, at, frame, freqs, framestats.Calculate(frame, freqs)); err != nil {
			return err
		}
	}

	s := analyzer.CacheStats()
	logger.Debug("done", logging.Fields{
		"chunks":       chunks,
		"cache_hits":   s.Hits,
		"cache_misses": s.Misses,
	})
	return out.Flush()
}

func buildBank(o options) (bank.Bank, error) {
	switch o.bankKind {
	case "", "default":
		return bank.Default(), nil
	case "log":
		return bank.LogSpaced(o.fmin, o.fmax, o.bins)
	case "linear":
		return bank.Linear(o.fmin, o.fmax, o.bins)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", bank.ErrInvalidBank, o.bankKind)
	}
}

func loadSignal(o options) (*audioio.Stereo, error) {
	switch {
	case o.in != "":
		return audioio.Open(o.in)
	case o.tone > 0:
		frames := int(o.seconds * o.sampleRate)
		if frames <= 0 {
			return nil, fmt.Errorf("cwtscope: tone length must be > 0: %v s", o.seconds)
		}
		return audioio.Tone(o.tone, o.sampleRate, 0.5, o.panPhase, frames), nil
	default:
		return nil, errUsage
	}
}

func printBank(w io.Writer, freqs bank.Bank, sampleRate float64) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Index\tFrequency [Hz]\tAbove Nyquist\n"); err != nil {
		return err
	}
	for i, f := range freqs {
		if _, err := fmt.Fprintf(tw, "%d\t%.2f\t%t\n", i, f, f >= sampleRate/2); err != nil {
			return err
		}
	}
	return tw.Flush()
}

type reporter interface {
	Report(chunk int, at float64, f *cwt.Frame, freqs bank.Bank, s framestats.Stats) error
	Flush() error
}

type tableReporter struct {
	tw *tabwriter.Writer
}

func newTableReporter(w io.Writer) *tableReporter {
	return &tableReporter{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (r *tableReporter) Report(chunk int, at float64, _ *cwt.Frame, _ bank.Bank, s framestats.Stats) error {
	if chunk == 0 {
		if _, err := fmt.Fprintf(r.tw, "Chunk\tTime [s]\tL Peak [Hz]\tL Peak [dB]\tR Peak [Hz]\tR Peak [dB]\tBalance [dB]\tWidth [deg]\tCentroid [Hz]\n"); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(r.tw, "-----\t--------\t-----------\t-----------\t-----------\t-----------\t------------\t-----------\t-------------\n"); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(r.tw, "%d\t%.3f\t%s\t%.2f\t%s\t%.2f\t%.2f\t%.2f\t%.1f\n",
		chunk, at,
		peakFreq(s.Left), s.Left.PeakDB,
		peakFreq(s.Right), s.Right.PeakDB,
		s.Balance, s.Width, s.Centroid,
	)
	return err
}

func peakFreq(c framestats.ChannelStats) string {
	if c.PeakIndex < 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f", c.PeakFreq)
}

func (r *tableReporter) Flush() error {
	return r.tw.Flush()
}

type jsonReporter struct {
	enc *json.Encoder
}

// chunkRecord is one line of -json output.
type chunkRecord struct {
	Chunk   int              `json:"chunk"`
	Time    float64          `json:"time"`
	Freqs   []float64        `json:"freqs"`
	DBLeft  []float64        `json:"db_left"`
	DBRight []float64        `json:"db_right"`
	Pan     []float64        `json:"pan"`
	Stats   framestats.Stats `json:"stats"`
}

func newJSONReporter(w io.Writer) *jsonReporter {
	return &jsonReporter{enc: json.NewEncoder(w)}
}

func (r *jsonReporter) Report(chunk int, at float64, f *cwt.Frame, freqs bank.Bank, s framestats.Stats) error {
	return r.enc.Encode(chunkRecord{
		Chunk:   chunk,
		Time:    at,
		Freqs:   freqs,
		DBLeft:  f.DBLeft,
		DBRight: f.DBRight,
		Pan:     f.Pan,
		Stats:   s,
	})
}

func (r *jsonReporter) Flush() error {
	return nil
}
