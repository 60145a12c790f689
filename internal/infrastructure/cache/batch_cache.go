package cache

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/PupsWorldPeace/TeleSticker/internal/domain/model"
)

// BatchCache defines the interface for caching batch metadata.
// Implementations should handle serialization/deserialization transparently.
type BatchCache interface {
	// Get retrieves a batch from cache by ID.
	// Returns nil, nil if the batch is not found in cache (cache miss).
	Get(ctx context.Context, batchID uuid.UUID) (*model.Batch, error)

	// Set stores a batch in cache with the specified TTL.
	Set(ctx context.Context, batch *model.Batch, ttl time.Duration) error

	// Delete removes a batch from cache by ID.
	// Returns nil if the batch was not in cache.
	Delete(ctx context.Context, batchID uuid.UUID) error
}
