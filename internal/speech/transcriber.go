package speech

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/speech_analyzer/internal/ports"
)

// DefaultMaxOutputLength — потолок токенов на выходе модели.
const DefaultMaxOutputLength = 1024

// wavHeaderSize совпадает с media.WAVHeaderSize.
const wavHeaderSize = 44

// Model — то, что грузится один раз на процесс.
type Model struct {
	Backend   STTBackend
	Tokenizer Tokenizer
	Name      string
}

// Loader дорогой: сеть, диск, словари.
type Loader func(ctx context.Context) (*Model, error)

type Transcriber struct {
	load            Loader
	resampler       Resampler
	maxOutputLength int
	log             *logger.ZapLogger

	mu    sync.Mutex
	model *Model
}

func NewTranscriber(load Loader, resampler Resampler, maxOutputLength int, log *logger.ZapLogger) *Transcriber {
	if maxOutputLength <= 0 {
		maxOutputLength = DefaultMaxOutputLength
	}
	return &Transcriber{
		load:            load,
		resampler:       resampler,
		maxOutputLength: maxOutputLength,
		log:             log,
	}
}

// Warmup грузит модель заранее, чтобы первый запрос не платил за загрузку.
func (t *Transcriber) Warmup(ctx context.Context) error {
	_, err := t.loaded(ctx)
	return err
}

// loaded: успешная загрузка запоминается навсегда, неудачная — нет.
func (t *Transcriber) loaded(ctx context.Context) (*Model, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.model != nil {
		return t.model, nil
	}

	start := time.Now()
	m, err := t.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load model: %v", ports.ErrTranscription, err)
	}
	if m == nil || m.Backend == nil || m.Tokenizer == nil {
		return nil, fmt.Errorf("%w: load model: incomplete model bundle", ports.ErrTranscription)
	}

	t.log.Log(logger.LogEntry{
		Level:   "info",
		Message: fmt.Sprintf("stt model %q loaded in %s", m.Name, time.Since(start).Round(time.Millisecond)),
	})
	t.model = m
	return m, nil
}

func (t *Transcriber) Transcribe(ctx context.Context, w ports.Waveform) (string, error) {
	st, err := os.Stat(w.Path)
	if err != nil {
		return "", fmt.Errorf("%w: read waveform: %v", ports.ErrTranscription, err)
	}
	if st.Size() == 0 {
		return "", fmt.Errorf("%w: empty waveform %s", ports.ErrTranscription, filepath.Base(w.Path))
	}

	m, err := t.loaded(ctx)
	if err != nil {
		return "", err
	}

	input, cleanup, err := t.prepare(ctx, w)
	if err != nil {
		return "", err
	}
	defer cleanup()

	raw, err := m.Backend.Generate(ctx, input)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ports.ErrTranscription, err)
	}

	text := capTokens(m.Tokenizer, stripControlTokens(raw), t.maxOutputLength)
	if text == "" {
		return "", fmt.Errorf("%w: model produced no output", ports.ErrTranscription)
	}
	return text, nil
}

// prepare отдаёт 16 кГц моно: либо исходник, либо временный ресемпл.
func (t *Transcriber) prepare(ctx context.Context, w ports.Waveform) (ports.Waveform, func(), error) {
	noop := func() {}

	if w.IsModelReady() {
		if err := checkSamples(w.Path); err != nil {
			return ports.Waveform{}, noop, err
		}
		return w, noop, nil
	}

	tmp, err := os.CreateTemp("", "waveform-*.wav")
	if err != nil {
		return ports.Waveform{}, noop, fmt.Errorf("%w: temp file: %v", ports.ErrTranscription, err)
	}
	tmp.Close()
	cleanup := func() { _ = os.Remove(tmp.Name()) }

	if err := t.resampler.ToWaveform(ctx, w.Path, tmp.Name()); err != nil {
		cleanup()
		return ports.Waveform{}, noop, fmt.Errorf("%w: resample %s: %v", ports.ErrTranscription, filepath.Base(w.Path), err)
	}
	if err := checkSamples(tmp.Name()); err != nil {
		cleanup()
		return ports.Waveform{}, noop, err
	}

	return ports.Waveform{
		Path:       tmp.Name(),
		SampleRate: ports.ModelSampleRate,
		Channels:   ports.ModelChannels,
		Duration:   w.Duration,
	}, cleanup, nil
}

func checkSamples(path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: read waveform: %v", ports.ErrTranscription, err)
	}
	if st.Size() <= wavHeaderSize {
		return fmt.Errorf("%w: waveform %s has no samples", ports.ErrTranscription, filepath.Base(path))
	}
	return nil
}
