package speech

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAITTS — язык модель определяет по тексту сама, отдельного параметра нет.
type OpenAITTS struct {
	client *openai.Client
	voice  openai.SpeechVoice
}

func NewOpenAITTS(apiKey, baseURL, voice string) *OpenAITTS {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}
	return &OpenAITTS{
		client: openai.NewClientWithConfig(cfg),
		voice:  openai.SpeechVoice(voice),
	}
}

func (t *OpenAITTS) Synthesize(ctx context.Context, text, outPath string) error {
	resp, err := t.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          t.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return fmt.Errorf("openai tts: %w", err)
	}
	defer resp.Close()

	return writeFile(outPath, resp)
}
