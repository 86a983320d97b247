package ports

import (
	"context"
	"time"
)

// UploadedFile — загруженный пользователем файл, уже лежащий в uploads/.
type UploadedFile struct {
	Name string // исходное имя из формы
	Ext  string // "wav", "mp4", ...
	Path string
	Size int64
}

// Waveform — аудио, которое идёт в распознавание.
// SampleRate == 0 значит "родная частота файла, ещё не ресемплили".
type Waveform struct {
	Path       string
	SampleRate int
	Channels   int
	Extracted  bool
	Duration   time.Duration
}

func (w Waveform) BaseName() string {
	return BaseName(w.Path)
}

// IsModelReady — уже 16 кГц моно, можно кормить модели как есть.
func (w Waveform) IsModelReady() bool {
	return w.SampleRate == ModelSampleRate && w.Channels == ModelChannels
}

const (
	ModelSampleRate = 16000
	ModelChannels   = 1
)

type MediaNormalizer interface {
	Normalize(ctx context.Context, inputPath, inputExt string) (Waveform, error)
}

// MediaToolchain — обёртка над ffmpeg/ffprobe.
type MediaToolchain interface {
	// ToWaveform пишет 16 кГц моно PCM WAV в outPath.
	ToWaveform(ctx context.Context, inPath, outPath string) error
	Duration(ctx context.Context, path string) (time.Duration, error)
}
