package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// WAVHeaderSize — канонический заголовок PCM WAV без метаданных.
// Файл такого размера или меньше не содержит ни одного сэмпла.
const WAVHeaderSize = 44

type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
}

func NewFFmpeg(ffmpegPath, ffprobePath string) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpeg{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

// ToWaveform: первая аудиодорожка → 16 кГц моно s16le WAV.
// bitexact + без метаданных, чтобы одинаковый вход давал одинаковый выход.
func (f *FFmpeg) ToWaveform(ctx context.Context, inPath, outPath string) error {
	cmd := exec.CommandContext(ctx, f.ffmpegPath,
		"-nostdin", "-y",
		"-i", inPath,
		"-vn", "-map", "0:a:0",
		"-ac", "1", "-ar", "16000",
		"-c:a", "pcm_s16le",
		"-map_metadata", "-1",
		"-fflags", "+bitexact", "-flags:a", "+bitexact",
		"-f", "wav",
		outPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, lastLine(stderr.String()))
	}
	return nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

func parseSeconds(out []byte) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
}
