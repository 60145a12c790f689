package converter

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// DefaultDimensions is substituted when probing fails. Conversion must never
// fail solely because the probe did.
var DefaultDimensions = SourceDimensions{Width: 1280, Height: 720}

// Prober queries a video's native dimensions via ffprobe.
type Prober struct {
	ffprobePath string

	// probeOutput runs the inspection process and returns its stdout.
	// Replaced in tests to avoid a real ffprobe binary.
	probeOutput func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Compile-time verification that Prober implements DimensionProber.
var _ DimensionProber = (*Prober)(nil)

// NewProber creates a Prober. An empty ffprobePath falls back to "ffprobe"
// in PATH.
func NewProber(ffprobePath string) *Prober {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Prober{
		ffprobePath: ffprobePath,
		probeOutput: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		},
	}
}

// ProbeDimensions returns the dimensions of the first video stream in path.
// On any failure (process error, malformed or missing output) it returns
// DefaultDimensions instead of an error. One short-lived process per call,
// no retry.
func (p *Prober) ProbeDimensions(ctx context.Context, path string) SourceDimensions {
	out, err := p.probeOutput(ctx, p.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=p=0",
		path,
	)
	if err != nil {
		return DefaultDimensions
	}

	dims, err := parseDimensions(string(out))
	if err != nil {
		return DefaultDimensions
	}
	return dims
}

// parseDimensions parses ffprobe's "width,height" csv line.
func parseDimensions(out string) (SourceDimensions, error) {
	fields := strings.Split(strings.TrimSpace(out), ",")
	if len(fields) < 2 {
		return SourceDimensions{}, fmt.Errorf("expected width,height, got %q", out)
	}

	width, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return SourceDimensions{}, fmt.Errorf("parse width: %w", err)
	}
	height, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return SourceDimensions{}, fmt.Errorf("parse height: %w", err)
	}
	if width <= 0 || height <= 0 {
		return SourceDimensions{}, fmt.Errorf("non-positive dimensions %dx%d", width, height)
	}

	return SourceDimensions{Width: width, Height: height}, nil
}
