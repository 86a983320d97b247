package speech

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Vovarama1992/speech_analyzer/internal/ports"
)

// Synthesizer пишет озвучку в outputs/<base>_fluent.mp3.
type Synthesizer struct {
	tts       TTSClient
	outputDir string
}

func NewSynthesizer(tts TTSClient, outputDir string) *Synthesizer {
	return &Synthesizer{
		tts:       tts,
		outputDir: outputDir,
	}
}

func (s *Synthesizer) Synthesize(ctx context.Context, text, outputBaseName string) (ports.FluentAudio, error) {
	if strings.TrimSpace(text) == "" {
		return ports.FluentAudio{}, fmt.Errorf("%w: empty text", ports.ErrSynthesis)
	}

	// у загрузки ".wav" основа пустая, результат тогда просто "_fluent.mp3"
	base := outputBaseName
	if base != "" {
		base = filepath.Base(base)
	}
	name := ports.FluentName(base)
	outPath := filepath.Join(s.outputDir, name)

	if err := s.tts.Synthesize(ctx, text, outPath); err != nil {
		_ = os.Remove(outPath)
		return ports.FluentAudio{}, fmt.Errorf("%w: %v", ports.ErrSynthesis, err)
	}

	st, err := os.Stat(outPath)
	if err != nil {
		return ports.FluentAudio{}, fmt.Errorf("%w: %v", ports.ErrSynthesis, err)
	}
	if st.Size() == 0 {
		_ = os.Remove(outPath)
		return ports.FluentAudio{}, fmt.Errorf("%w: tts returned no audio", ports.ErrSynthesis)
	}

	return ports.FluentAudio{
		Path:     outPath,
		Name:     name,
		MimeType: ports.FluentMimeType,
		Size:     st.Size(),
	}, nil
}
