package ports

import "context"

const FluentMimeType = "audio/mp3"

// FluentAudio — синтезированная "гладкая" озвучка транскрипции.
type FluentAudio struct {
	Path     string
	Name     string
	MimeType string
	Size     int64
}

type Transcriber interface {
	Transcribe(ctx context.Context, w Waveform) (string, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text, outputBaseName string) (FluentAudio, error)
}

// FluentName — имя файла озвучки для базового имени.
func FluentName(baseName string) string {
	return baseName + "_fluent.mp3"
}
