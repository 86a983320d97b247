package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/speech_analyzer/internal/ports"
)

type normalizer struct {
	tools ports.MediaToolchain
	log   *logger.ZapLogger
}

func NewNormalizer(tools ports.MediaToolchain, log *logger.ZapLogger) ports.MediaNormalizer {
	return &normalizer{tools: tools, log: log}
}

// Normalize: аудио отдаём как есть, из видео вытаскиваем дорожку в <base>.wav рядом с исходником.
func (n *normalizer) Normalize(ctx context.Context, inputPath, inputExt string) (ports.Waveform, error) {
	ext := ports.NormalizeExt(inputExt)

	switch {
	case ports.IsAudioExt(ext):
		w := ports.Waveform{Path: inputPath}
		w.Duration = n.probe(ctx, inputPath)
		return w, nil

	case ports.IsVideoExt(ext):
		out := filepath.Join(filepath.Dir(inputPath), ports.BaseName(inputPath)+".wav")

		if err := n.tools.ToWaveform(ctx, inputPath, out); err != nil {
			_ = os.Remove(out)
			return ports.Waveform{}, fmt.Errorf("%w: %s: %v", ports.ErrMediaDecode, filepath.Base(inputPath), err)
		}

		st, err := os.Stat(out)
		if err != nil {
			return ports.Waveform{}, fmt.Errorf("%w: stat extracted audio: %v", ports.ErrMediaDecode, err)
		}
		if st.Size() <= WAVHeaderSize {
			_ = os.Remove(out)
			return ports.Waveform{}, fmt.Errorf("%w: %s has no audio samples", ports.ErrMediaDecode, filepath.Base(inputPath))
		}

		return ports.Waveform{
			Path:       out,
			SampleRate: ports.ModelSampleRate,
			Channels:   ports.ModelChannels,
			Extracted:  true,
			Duration:   n.probe(ctx, out),
		}, nil
	}

	return ports.Waveform{}, fmt.Errorf("%w: %q", ports.ErrUnsupportedFormat, inputExt)
}

// длительность нужна только для отображения, поэтому ошибка не фатальна
func (n *normalizer) probe(ctx context.Context, path string) time.Duration {
	d, err := n.tools.Duration(ctx, path)
	if err != nil {
		n.log.Log(logger.LogEntry{Level: "warn", Message: "duration probe failed: " + filepath.Base(path), Error: err})
		return 0
	}
	return d
}
