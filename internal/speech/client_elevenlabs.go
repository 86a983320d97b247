package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

const elevenLabsURL = "https://api.elevenlabs.io/v1/text-to-speech"

type ElevenLabsClient struct {
	apiKey   string
	voiceID  string
	modelID  string
	language string
	baseURL  string
	httpCli  *http.Client
}

func NewElevenLabsClient(apiKey, voiceID, modelID, language string) *ElevenLabsClient {
	return &ElevenLabsClient{
		apiKey:   apiKey,
		voiceID:  voiceID,
		modelID:  modelID,
		language: language,
		baseURL:  elevenLabsURL,
		httpCli:  http.DefaultClient,
	}
}

// TEXT → SPEECH
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text, outPath string) error {
	url := fmt.Sprintf("%s/%s", c.baseURL, c.voiceID)

	payload, err := json.Marshal(map[string]string{
		"text":          text,
		"model_id":      c.modelID,
		"language_code": c.language,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("elevenlabs error %d: %s", resp.StatusCode, string(b))
	}

	return writeFile(outPath, resp.Body)
}

func writeFile(outPath string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
