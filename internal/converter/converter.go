package converter

import (
	"context"
)

// Kind identifies the type of source asset.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Role determines which size constraints apply to an asset.
type Role string

const (
	// RoleSticker is a regular sticker bounded to a 512px max edge.
	RoleSticker Role = "sticker"
	// RoleIcon is a fixed 100x100 sticker-set icon with a tighter byte budget.
	RoleIcon Role = "icon"
)

// ImageFormat is the output container for the image path.
// Video output is always WebM and carries no format hint.
type ImageFormat string

const (
	FormatWebP ImageFormat = "webp"
	FormatPNG  ImageFormat = "png"
)

// SourceDimensions holds the native width and height of an input asset.
type SourceDimensions struct {
	Width  int
	Height int
}

// VideoResult is the outcome of a bitrate-search encode.
// Succeeded is false when every attempt produced an artifact over budget;
// SizeBytes then reports the size of the last attempt, which remains on disk.
type VideoResult struct {
	Succeeded bool
	SizeBytes int64
	Attempts  int
}

// VideoEncoder produces a size-budgeted WebM sticker from a source video.
type VideoEncoder interface {
	// EncodeVideo writes outputPath at targetW x targetH, retrying at
	// decreasing bitrates until the artifact fits c.MaxOutputBytes or the
	// attempt ceiling is reached. A non-nil error means the encode process
	// itself failed and no further attempts were made.
	EncodeVideo(ctx context.Context, inputPath, outputPath string, c SizeConstraints, targetW, targetH int) (VideoResult, error)
}

// ImageEncoder produces a resized still-image sticker in a single pass.
type ImageEncoder interface {
	EncodeImage(ctx context.Context, inputPath, outputPath string, maxEdge int, fixedSquare bool, format ImageFormat) error
}

// DimensionProber reports the native dimensions of a media file.
// Implementations never fail: on any probe error they return defaults.
type DimensionProber interface {
	ProbeDimensions(ctx context.Context, path string) SourceDimensions
}
