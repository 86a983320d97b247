package speech

import (
	"context"

	"github.com/Vovarama1992/speech_analyzer/internal/ports"
)

// STTBackend — внешняя модель распознавания. На вход 16 кГц моно WAV.
type STTBackend interface {
	Generate(ctx context.Context, w ports.Waveform) (string, error)
}

// TTSClient — текст → голос (сохраняет mp3 в outPath).
type TTSClient interface {
	Synthesize(ctx context.Context, text, outPath string) error
}

// Tokenizer нужен только для ограничения длины вывода модели.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// Resampler приводит файл к 16 кГц моно.
type Resampler interface {
	ToWaveform(ctx context.Context, inPath, outPath string) error
}
