package converter

import (
	"context"
	"fmt"
	"os/exec"
)

// FFmpegImageEncoder implements ImageEncoder using the FFmpeg CLI.
//
// Unlike the video path there is no size-fitting loop: still images at
// sticker resolution are assumed to fit the platform budget after resizing,
// so a single resize-and-reencode pass is performed and the output byte size
// is never verified.
type FFmpegImageEncoder struct {
	config EncoderConfig
	prober DimensionProber

	runEncode func(ctx context.Context, name string, args ...string) error
}

// Compile-time verification that FFmpegImageEncoder implements ImageEncoder.
var _ ImageEncoder = (*FFmpegImageEncoder)(nil)

// NewFFmpegImageEncoder creates a new FFmpeg-based image encoder.
// The prober supplies source dimensions for the proportional fit.
func NewFFmpegImageEncoder(cfg EncoderConfig, prober DimensionProber) *FFmpegImageEncoder {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	return &FFmpegImageEncoder{
		config: cfg,
		prober: prober,
		runEncode: func(ctx context.Context, name string, args ...string) error {
			cmd := exec.CommandContext(ctx, name, args...)
			cmd.Stdout = nil
			cmd.Stderr = nil
			return cmd.Run()
		},
	}
}

// EncodeImage resizes inputPath to sticker dimensions and writes it to
// outputPath in the requested format. Unreadable input, unsupported format
// and write failures all surface as a single error; the caller does not
// distinguish between them.
func (e *FFmpegImageEncoder) EncodeImage(ctx context.Context, inputPath, outputPath string, maxEdge int, fixedSquare bool, format ImageFormat) error {
	if err := validateInput(inputPath); err != nil {
		return err
	}

	src := e.prober.ProbeDimensions(ctx, inputPath)
	targetW, targetH := Plan(src.Width, src.Height, maxEdge, fixedSquare)

	args, err := buildImageArgs(inputPath, outputPath, targetW, targetH, format)
	if err != nil {
		return err
	}

	if err := e.runEncode(ctx, e.config.FFmpegPath, args...); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("encode cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("ffmpeg execution failed: %w", err)
	}

	return nil
}

// buildImageArgs constructs the FFmpeg arguments for a single-pass resize.
// Lanczos resampling matches the quality bar of the video scale path.
func buildImageArgs(inputPath, outputPath string, targetW, targetH int, format ImageFormat) ([]string, error) {
	args := []string{
		"-y",
		"-i", inputPath,
		"-vf", fmt.Sprintf("scale=%d:%d:flags=lanczos", targetW, targetH),
		"-frames:v", "1",
	}

	switch format {
	case FormatWebP:
		args = append(args, "-c:v", "libwebp", "-quality", "95")
	case FormatPNG:
		args = append(args, "-c:v", "png")
	default:
		return nil, fmt.Errorf("unsupported image format: %q", format)
	}

	return append(args, outputPath), nil
}
