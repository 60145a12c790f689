package storage

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// SourceKey builds the object key for an uploaded source file.
// Sources are grouped per batch and prefixed with the asset index so
// duplicate file names within a batch cannot collide.
func SourceKey(batchID uuid.UUID, index int, fileName string) string {
	return fmt.Sprintf("uploads/%s/%d_%s", batchID, index, path.Base(fileName))
}

// OutputKey builds the object key for a converted sticker artifact.
func OutputKey(batchID uuid.UUID, fileName string) string {
	return fmt.Sprintf("stickers/%s/%s", batchID, path.Base(fileName))
}

// ContentTypeFor maps a converted file name to its MIME type.
func ContentTypeFor(fileName string) string {
	switch strings.ToLower(path.Ext(fileName)) {
	case ".webm":
		return "video/webm"
	case ".webp":
		return "image/webp"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
