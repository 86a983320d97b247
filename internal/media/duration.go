package media

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

func (f *FFmpeg) Duration(ctx context.Context, path string) (time.Duration, error) {
	out, err := exec.CommandContext(ctx, f.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}

	sec, err := parseSeconds(out)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration %q: %w", string(out), err)
	}
	return time.Duration(sec * float64(time.Second)), nil
}
