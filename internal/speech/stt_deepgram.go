package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/Vovarama1992/speech_analyzer/internal/ports"
)

const deepgramURL = "https://api.deepgram.com/v1/listen"

type DeepgramBackend struct {
	apiKey   string
	model    string
	language string
	endpoint string
	client   *http.Client
}

func NewDeepgramBackend(apiKey, model, language string) *DeepgramBackend {
	if model == "" {
		model = "nova-2"
	}
	return &DeepgramBackend{
		apiKey:   apiKey,
		model:    model,
		language: language,
		endpoint: deepgramURL,
		client:   &http.Client{},
	}
}

func (c *DeepgramBackend) Generate(ctx context.Context, w ports.Waveform) (string, error) {
	data, err := os.ReadFile(w.Path)
	if err != nil {
		return "", fmt.Errorf("read audio file: %w", err)
	}

	q := url.Values{}
	q.Set("model", c.model)
	q.Set("smart_format", "true")
	if c.language != "" {
		q.Set("language", c.language)
	} else {
		q.Set("detect_language", "true")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"?"+q.Encode(), bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", "audio/wav")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepgram request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("deepgram error %d: %s", resp.StatusCode, body)
	}

	var parsed struct {
		Results struct {
			Channels []struct {
				Alternatives []struct {
					Transcript string `json:"transcript"`
				} `json:"alternatives"`
			} `json:"channels"`
		} `json:"results"`
	}

	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode deepgram: %w", err)
	}

	if len(parsed.Results.Channels) == 0 ||
		len(parsed.Results.Channels[0].Alternatives) == 0 {
		return "", fmt.Errorf("empty transcript")
	}

	return parsed.Results.Channels[0].Alternatives[0].Transcript, nil
}
