package speech

import (
	"context"
	"fmt"

	"github.com/Vovarama1992/speech_analyzer/internal/config"
)

// NewModelLoader собирает бэкенд и токенизатор по конфигу.
// Сам по себе ничего не грузит — это делает Transcriber при первом обращении.
func NewModelLoader(cfg config.STTConfig) Loader {
	return func(ctx context.Context) (*Model, error) {
		tok, err := NewTiktokenTokenizer(cfg.TokenizerEncoding)
		if err != nil {
			return nil, err
		}

		switch cfg.Provider {
		case config.STTWhisper:
			return &Model{
				Backend:   NewWhisperBackend(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.WhisperModel),
				Tokenizer: tok,
				Name:      "whisper/" + cfg.WhisperModel,
			}, nil
		case config.STTDeepgram:
			return &Model{
				Backend:   NewDeepgramBackend(cfg.DeepgramKey, cfg.DeepgramModel, cfg.DeepgramLanguage),
				Tokenizer: tok,
				Name:      "deepgram/" + cfg.DeepgramModel,
			}, nil
		}

		return nil, fmt.Errorf("unknown stt provider %q", cfg.Provider)
	}
}
