package converter

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

const (
	// maxEncodeAttempts bounds the bitrate search. Geometric backoff
	// converges in a few attempts for typical content without two-pass
	// analysis, so latency stays bounded at five encoder invocations.
	maxEncodeAttempts = 5

	// bitrateBackoff is applied between attempts when the artifact is
	// over budget.
	bitrateBackoff = 0.6
)

// EncoderConfig holds configuration for the FFmpeg encoders.
type EncoderConfig struct {
	// FFmpegPath is the path to the ffmpeg binary.
	// If empty, "ffmpeg" will be used (assumes it's in PATH).
	FFmpegPath string
}

// DefaultEncoderConfig returns an EncoderConfig with production defaults.
func DefaultEncoderConfig() EncoderConfig {
	return EncoderConfig{
		FFmpegPath: "ffmpeg",
	}
}

// FFmpegVideoEncoder implements VideoEncoder using the FFmpeg CLI.
//
// Encoders expose no direct "target final size" knob, so the byte ceiling is
// reached by searching: encode at a bitrate, measure the artifact, back off
// and re-encode while it is over budget.
type FFmpegVideoEncoder struct {
	config EncoderConfig

	// runEncode executes one encoder invocation. Exit status is the sole
	// success signal; standard streams are not parsed. Replaced in tests.
	runEncode func(ctx context.Context, name string, args ...string) error
}

// Compile-time verification that FFmpegVideoEncoder implements VideoEncoder.
var _ VideoEncoder = (*FFmpegVideoEncoder)(nil)

// NewFFmpegVideoEncoder creates a new FFmpeg-based video encoder.
func NewFFmpegVideoEncoder(cfg EncoderConfig) *FFmpegVideoEncoder {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	return &FFmpegVideoEncoder{
		config: cfg,
		runEncode: func(ctx context.Context, name string, args ...string) error {
			cmd := exec.CommandContext(ctx, name, args...)
			cmd.Stdout = nil // Discard stdout
			cmd.Stderr = nil // Discard stderr (FFmpeg outputs progress to stderr)
			return cmd.Run()
		},
	}
}

// EncodeVideo converts inputPath to a WebM sticker at outputPath, searching
// for a bitrate that fits c.MaxOutputBytes.
//
// The search starts at c.InitialBitrateKbps and multiplies by 0.6 after each
// oversized attempt, up to five attempts. An encoder process failure aborts
// immediately: a codec or filter rejection will not be fixed by retrying at
// a lower bitrate. When the budget is still exceeded after the final attempt
// the last artifact is left on disk and reported with Succeeded=false.
func (e *FFmpegVideoEncoder) EncodeVideo(ctx context.Context, inputPath, outputPath string, c SizeConstraints, targetW, targetH int) (VideoResult, error) {
	if err := validateInput(inputPath); err != nil {
		return VideoResult{}, err
	}

	bitrate := c.InitialBitrateKbps
	var lastSize int64

	for attempt := 1; attempt <= maxEncodeAttempts; attempt++ {
		args := buildVideoArgs(inputPath, outputPath, c, targetW, targetH, bitrate)

		if err := e.runEncode(ctx, e.config.FFmpegPath, args...); err != nil {
			if ctx.Err() != nil {
				return VideoResult{Attempts: attempt}, fmt.Errorf("encode cancelled: %w", ctx.Err())
			}
			return VideoResult{Attempts: attempt}, fmt.Errorf("ffmpeg execution failed: %w", err)
		}

		info, err := os.Stat(outputPath)
		if err != nil {
			return VideoResult{Attempts: attempt}, fmt.Errorf("stat output: %w", err)
		}
		lastSize = info.Size()

		if lastSize <= c.MaxOutputBytes {
			return VideoResult{Succeeded: true, SizeBytes: lastSize, Attempts: attempt}, nil
		}

		// Over budget: back off and overwrite on the next attempt.
		bitrate = int(float64(bitrate) * bitrateBackoff)
	}

	// Budget exhausted. The oversized artifact stays on disk.
	return VideoResult{Succeeded: false, SizeBytes: lastSize, Attempts: maxEncodeAttempts}, nil
}

// buildVideoArgs constructs the FFmpeg command arguments for one attempt.
// Icon encodes get a seamless-loop filter appended to the scale chain.
func buildVideoArgs(inputPath, outputPath string, c SizeConstraints, targetW, targetH, bitrateKbps int) []string {
	filter := fmt.Sprintf("scale=%d:%d,fps=%d", targetW, targetH, c.FrameRate)
	if c.FixedSquare {
		filter += ",loop=0:32767:0"
	}

	return []string{
		"-y", // Overwrite output files without asking
		"-i", inputPath,
		"-t", strconv.Itoa(int(c.MaxDuration.Seconds())),
		"-vf", filter,
		"-c:v", "libvpx-vp9",
		"-pix_fmt", "yuva420p", // Pixel format with alpha channel
		"-an", // No audio
		"-b:v", fmt.Sprintf("%dk", bitrateKbps),
		"-crf", "30",
		"-deadline", "good",
		"-auto-alt-ref", "0",
		outputPath,
	}
}

// validateInput checks if the input file exists and is readable.
func validateInput(inputPath string) error {
	info, err := os.Stat(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("input file does not exist: %s", inputPath)
		}
		return fmt.Errorf("failed to access input file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("input path is a directory, expected a file: %s", inputPath)
	}

	return nil
}
