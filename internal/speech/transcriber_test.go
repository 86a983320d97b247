package speech

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/speech_analyzer/internal/ports"
	"go.uber.org/zap"
)

// wordTokenizer: один токен — одно слово.
type wordTokenizer struct{}

func (wordTokenizer) Encode(text string) []int {
	ids := make([]int, len(strings.Fields(text)))
	for i := range ids {
		ids[i] = i
	}
	return ids
}

func (wordTokenizer) Decode(tokens []int) string {
	words := make([]string, len(tokens))
	for i, id := range tokens {
		words[i] = "w" + string(rune('0'+id%10))
	}
	return strings.Join(words, " ")
}

type fakeBackend struct {
	text  string
	err   error
	calls int
	seen  ports.Waveform
}

func (f *fakeBackend) Generate(_ context.Context, w ports.Waveform) (string, error) {
	f.calls++
	f.seen = w
	return f.text, f.err
}

type fakeResampler struct {
	calls   int
	payload []byte
}

func (f *fakeResampler) ToWaveform(_ context.Context, _, out string) error {
	f.calls++
	return os.WriteFile(out, f.payload, 0644)
}

func nopLogger() *logger.ZapLogger {
	return logger.NewZapLogger(zap.NewNop().Sugar())
}

func countingLoader(b STTBackend, loads *int) Loader {
	return func(context.Context) (*Model, error) {
		*loads++
		return &Model{Backend: b, Tokenizer: wordTokenizer{}, Name: "fake"}, nil
	}
}

func writeWav(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestTranscribeLoadsModelOnce(t *testing.T) {
	backend := &fakeBackend{text: "hello world"}
	loads := 0
	tr := NewTranscriber(countingLoader(backend, &loads), &fakeResampler{}, 1024, nopLogger())

	w := ports.Waveform{Path: writeWav(t, "sample.wav", 1000), SampleRate: 16000, Channels: 1}

	for i := 0; i < 3; i++ {
		text, err := tr.Transcribe(context.Background(), w)
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
		if text != "hello world" {
			t.Errorf("call %d: expected %q, got %q", i, "hello world", text)
		}
	}

	if loads != 1 {
		t.Errorf("model must be loaded once, loaded %d times", loads)
	}
	if backend.calls != 3 {
		t.Errorf("expected 3 generations, got %d", backend.calls)
	}
}

func TestWarmupThenTranscribe(t *testing.T) {
	loads := 0
	tr := NewTranscriber(countingLoader(&fakeBackend{text: "hi"}, &loads), &fakeResampler{}, 0, nopLogger())

	if err := tr.Warmup(context.Background()); err != nil {
		t.Fatalf("warmup: %v", err)
	}
	w := ports.Waveform{Path: writeWav(t, "a.wav", 100), SampleRate: 16000, Channels: 1}
	if _, err := tr.Transcribe(context.Background(), w); err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if loads != 1 {
		t.Errorf("expected single load, got %d", loads)
	}
}

func TestFailedLoadIsRetried(t *testing.T) {
	attempts := 0
	loader := func(context.Context) (*Model, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("network down")
		}
		return &Model{Backend: &fakeBackend{text: "ok"}, Tokenizer: wordTokenizer{}}, nil
	}
	tr := NewTranscriber(loader, &fakeResampler{}, 1024, nopLogger())

	if err := tr.Warmup(context.Background()); !errors.Is(err, ports.ErrTranscription) {
		t.Fatalf("expected ErrTranscription on failed load, got %v", err)
	}
	if err := tr.Warmup(context.Background()); err != nil {
		t.Fatalf("second load should succeed: %v", err)
	}
}

func TestTranscribeEmptyWaveform(t *testing.T) {
	backend := &fakeBackend{text: "never"}
	loads := 0
	tr := NewTranscriber(countingLoader(backend, &loads), &fakeResampler{}, 1024, nopLogger())

	_, err := tr.Transcribe(context.Background(), ports.Waveform{Path: writeWav(t, "empty.wav", 0)})
	if !errors.Is(err, ports.ErrTranscription) {
		t.Fatalf("expected ErrTranscription, got %v", err)
	}
	if backend.calls != 0 {
		t.Error("backend must not be called for empty input")
	}
}

func TestTranscribeMissingFile(t *testing.T) {
	loads := 0
	tr := NewTranscriber(countingLoader(&fakeBackend{}, &loads), &fakeResampler{}, 1024, nopLogger())

	_, err := tr.Transcribe(context.Background(), ports.Waveform{Path: filepath.Join(t.TempDir(), "nope.wav")})
	if !errors.Is(err, ports.ErrTranscription) {
		t.Fatalf("expected ErrTranscription, got %v", err)
	}
}

func TestTranscribeResamplesNativeAudio(t *testing.T) {
	backend := &fakeBackend{text: "resampled"}
	rs := &fakeResampler{payload: make([]byte, 2000)}
	loads := 0
	tr := NewTranscriber(countingLoader(backend, &loads), rs, 1024, nopLogger())

	in := writeWav(t, "native.mp3", 500)
	if _, err := tr.Transcribe(context.Background(), ports.Waveform{Path: in}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rs.calls != 1 {
		t.Fatalf("expected one resample, got %d", rs.calls)
	}
	if !backend.seen.IsModelReady() {
		t.Errorf("backend must receive 16kHz mono, got %+v", backend.seen)
	}
	if backend.seen.Path == in {
		t.Error("backend must receive the resampled copy")
	}
	if _, err := os.Stat(backend.seen.Path); !os.IsNotExist(err) {
		t.Error("temporary resampled file must be removed")
	}
}

func TestTranscribeSilentResample(t *testing.T) {
	backend := &fakeBackend{text: "x"}
	loads := 0
	tr := NewTranscriber(countingLoader(backend, &loads), &fakeResampler{payload: make([]byte, 44)}, 1024, nopLogger())

	_, err := tr.Transcribe(context.Background(), ports.Waveform{Path: writeWav(t, "s.wav", 44)})
	if !errors.Is(err, ports.ErrTranscription) {
		t.Fatalf("expected ErrTranscription, got %v", err)
	}
	if backend.calls != 0 {
		t.Error("backend must not run on a header-only waveform")
	}
}

func TestTranscribeStripsControlTokens(t *testing.T) {
	backend := &fakeBackend{text: "<|startoftranscript|><|en|><|transcribe|> Hello   there <|endoftext|>"}
	loads := 0
	tr := NewTranscriber(countingLoader(backend, &loads), &fakeResampler{}, 1024, nopLogger())

	w := ports.Waveform{Path: writeWav(t, "a.wav", 100), SampleRate: 16000, Channels: 1}
	text, err := tr.Transcribe(context.Background(), w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Hello there" {
		t.Errorf("expected %q, got %q", "Hello there", text)
	}
}

func TestTranscribeCapsOutput(t *testing.T) {
	backend := &fakeBackend{text: strings.Repeat("word ", 50)}
	loads := 0
	tr := NewTranscriber(countingLoader(backend, &loads), &fakeResampler{}, 5, nopLogger())

	w := ports.Waveform{Path: writeWav(t, "a.wav", 100), SampleRate: 16000, Channels: 1}
	text, err := tr.Transcribe(context.Background(), w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(strings.Fields(text)); n != 5 {
		t.Errorf("expected 5 tokens, got %d (%q)", n, text)
	}
}

func TestTranscribeNoOutput(t *testing.T) {
	cases := map[string]*fakeBackend{
		"only control tokens": {text: "<|endoftext|>"},
		"backend error":       {err: errors.New("503")},
	}

	for name, backend := range cases {
		loads := 0
		tr := NewTranscriber(countingLoader(backend, &loads), &fakeResampler{}, 1024, nopLogger())
		w := ports.Waveform{Path: writeWav(t, "a.wav", 100), SampleRate: 16000, Channels: 1}

		if _, err := tr.Transcribe(context.Background(), w); !errors.Is(err, ports.ErrTranscription) {
			t.Errorf("%s: expected ErrTranscription, got %v", name, err)
		}
	}
}
