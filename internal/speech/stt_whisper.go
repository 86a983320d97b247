package speech

import (
	"context"
	"fmt"

	"github.com/Vovarama1992/speech_analyzer/internal/ports"
	openai "github.com/sashabaranov/go-openai"
)

// WhisperBackend — любой OpenAI-совместимый /v1/audio/transcriptions
// (api.openai.com, faster-whisper-server, LocalAI и т.п.).
type WhisperBackend struct {
	client *openai.Client
	model  string
}

func NewWhisperBackend(apiKey, baseURL, model string) *WhisperBackend {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperBackend{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (b *WhisperBackend) Generate(ctx context.Context, w ports.Waveform) (string, error) {
	resp, err := b.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    b.model,
		FilePath: w.Path,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", fmt.Errorf("whisper request: %w", err)
	}
	return resp.Text, nil
}
