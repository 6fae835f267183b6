package assets

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ProbeRunner runs ffprobe against a file and returns its JSON report.
type ProbeRunner func(ctx context.Context, path string, timeout time.Duration) (string, error)

// FFProbe reads media durations with ffprobe.
type FFProbe struct {
	Run     ProbeRunner
	Timeout time.Duration
}

// NewFFProbe constructs a Prober that shells out to ffprobe.
func NewFFProbe(timeout time.Duration) *FFProbe {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &FFProbe{Run: defaultProbeRunner, Timeout: timeout}
}

// Duration returns the container duration of the file at path in seconds.
func (p *FFProbe) Duration(ctx context.Context, path string) (float64, error) {
	if p == nil {
		return 0, errors.New("ffprobe not configured")
	}
	run := p.Run
	if run == nil {
		run = defaultProbeRunner
	}

	out, err := run(ctx, path, p.Timeout)
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}

	var payload struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		return 0, fmt.Errorf("parse ffprobe response: %w", err)
	}

	raw := strings.TrimSpace(payload.Format.Duration)
	if raw == "" {
		return 0, errors.New("ffprobe returned no duration")
	}
	duration, err := strconv.ParseFloat(raw, 64)
	if err != nil || duration < 0 {
		return 0, fmt.Errorf("ffprobe returned invalid duration %q", raw)
	}
	return duration, nil
}

func defaultProbeRunner(ctx context.Context, path string, timeout time.Duration) (string, error) {
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return "", context.DeadlineExceeded
	}
	return ffmpeg.ProbeWithTimeout(path, timeout, ffmpeg.KwArgs{})
}
