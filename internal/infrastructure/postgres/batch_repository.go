package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/PupsWorldPeace/TeleSticker/internal/domain/model"
	"github.com/PupsWorldPeace/TeleSticker/internal/domain/repository"
)

// DBTX is an interface that abstracts pgxpool.Pool and pgx.Tx for testability.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// BatchRepository implements repository.BatchRepository using PostgreSQL.
// Assets and per-asset results are stored as JSONB alongside the batch row;
// they are only ever read and written as a unit.
type BatchRepository struct {
	db DBTX
}

// NewBatchRepository creates a new BatchRepository instance.
func NewBatchRepository(db DBTX) *BatchRepository {
	return &BatchRepository{db: db}
}

// Create persists a new batch entity.
func (r *BatchRepository) Create(ctx context.Context, batch *model.Batch) error {
	const query = `
		INSERT INTO batches (id, user_id, title, status, assets, results, processed, failed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	assets, results, err := marshalJSONColumns(batch)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query,
		batch.ID,
		batch.UserID,
		batch.Title,
		batch.Status.String(),
		assets,
		results,
		batch.Processed,
		batch.Failed,
		batch.CreatedAt,
		batch.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrDuplicateBatch
		}
		return fmt.Errorf("failed to create batch: %w", err)
	}

	return nil
}

// GetByID retrieves a batch by its unique identifier.
func (r *BatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Batch, error) {
	const query = `
		SELECT id, user_id, title, status, assets, results, processed, failed, created_at, updated_at
		FROM batches
		WHERE id = $1
	`

	batch, err := scanBatch(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrBatchNotFound
		}
		return nil, fmt.Errorf("failed to get batch by ID: %w", err)
	}

	return batch, nil
}

// GetByUserID retrieves all batches belonging to a user.
func (r *BatchRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*model.Batch, error) {
	const query = `
		SELECT id, user_id, title, status, assets, results, processed, failed, created_at, updated_at
		FROM batches
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches by user ID: %w", err)
	}
	defer rows.Close()

	var batches []*model.Batch
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		batches = append(batches, batch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating batches: %w", err)
	}

	return batches, nil
}

// Update persists changes to an existing batch entity.
func (r *BatchRepository) Update(ctx context.Context, batch *model.Batch) error {
	const query = `
		UPDATE batches
		SET title = $2, status = $3, assets = $4, results = $5, processed = $6, failed = $7, updated_at = $8
		WHERE id = $1
	`

	assets, results, err := marshalJSONColumns(batch)
	if err != nil {
		return err
	}

	batch.UpdatedAt = time.Now()

	tag, err := r.db.Exec(ctx, query,
		batch.ID,
		batch.Title,
		batch.Status.String(),
		assets,
		results,
		batch.Processed,
		batch.Failed,
		batch.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update batch: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrBatchNotFound
	}

	return nil
}

// UpdateStatus updates only the status field of a batch.
func (r *BatchRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.Status) error {
	const query = `
		UPDATE batches
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, status.String(), time.Now())
	if err != nil {
		return fmt.Errorf("failed to update batch status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrBatchNotFound
	}

	return nil
}

// marshalJSONColumns serializes the assets and results JSONB columns.
func marshalJSONColumns(batch *model.Batch) ([]byte, []byte, error) {
	assets, err := json.Marshal(batch.Assets)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal assets: %w", err)
	}

	results, err := json.Marshal(batch.Results)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal results: %w", err)
	}

	return assets, results, nil
}

// scanBatch scans a single row into a Batch model.
func scanBatch(row pgx.Row) (*model.Batch, error) {
	var (
		batch   model.Batch
		status  string
		assets  []byte
		results []byte
	)

	err := row.Scan(
		&batch.ID,
		&batch.UserID,
		&batch.Title,
		&status,
		&assets,
		&results,
		&batch.Processed,
		&batch.Failed,
		&batch.CreatedAt,
		&batch.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	batch.Status = model.Status(status)
	if len(assets) > 0 {
		if err := json.Unmarshal(assets, &batch.Assets); err != nil {
			return nil, fmt.Errorf("failed to unmarshal assets: %w", err)
		}
	}
	if len(results) > 0 {
		if err := json.Unmarshal(results, &batch.Results); err != nil {
			return nil, fmt.Errorf("failed to unmarshal results: %w", err)
		}
	}

	return &batch, nil
}

// Compile-time verification that BatchRepository implements repository.BatchRepository.
var _ repository.BatchRepository = (*BatchRepository)(nil)
