package ports

import "errors"

// Ошибки пайплайна. Стадии оборачивают их через fmt.Errorf("%w: ...").
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrMediaDecode       = errors.New("media decode failed")
	ErrTranscription     = errors.New("transcription failed")
	ErrSynthesis         = errors.New("synthesis failed")
)
