package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/PupsWorldPeace/TeleSticker/internal/domain/model"
)

// BatchRepository defines the interface for batch persistence operations.
// Implementations should be provided by the infrastructure layer (e.g., PostgreSQL).
type BatchRepository interface {
	// Create persists a new batch entity.
	// Returns error if the batch already exists or persistence fails.
	Create(ctx context.Context, batch *model.Batch) error

	// GetByID retrieves a batch by its unique identifier.
	// Returns nil and ErrBatchNotFound if the batch does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Batch, error)

	// GetByUserID retrieves all batches belonging to a user.
	// Returns empty slice if no batches exist for the user.
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*model.Batch, error)

	// Update persists changes to an existing batch entity, including
	// per-asset results and counters.
	// Returns ErrBatchNotFound if the batch does not exist.
	Update(ctx context.Context, batch *model.Batch) error

	// UpdateStatus updates only the status field of a batch.
	// This is optimized for status transitions without full entity update.
	// Returns ErrBatchNotFound if the batch does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.Status) error
}
