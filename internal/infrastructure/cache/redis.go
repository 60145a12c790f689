package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/PupsWorldPeace/TeleSticker/internal/domain/model"
)

const (
	// batchCacheKeyPrefix is the prefix for batch cache keys in Redis.
	batchCacheKeyPrefix = "batch:"
)

// batchJSON is the JSON representation of a Batch for caching.
// Using an explicit struct avoids coupling to domain model's JSON tags.
type batchJSON struct {
	ID        string              `json:"id"`
	UserID    string              `json:"user_id"`
	Title     string              `json:"title"`
	Status    string              `json:"status"`
	Assets    []model.Asset       `json:"assets"`
	Results   []model.AssetResult `json:"results,omitempty"`
	Processed int                 `json:"processed"`
	Failed    int                 `json:"failed"`
	CreatedAt string              `json:"created_at"`
	UpdatedAt string              `json:"updated_at"`
}

// RedisBatchCache implements BatchCache using Redis as the backing store.
type RedisBatchCache struct {
	client *redis.Client
}

var _ BatchCache = (*RedisBatchCache)(nil)

// NewRedisBatchCache creates a new Redis-backed batch cache.
func NewRedisBatchCache(client *redis.Client) *RedisBatchCache {
	return &RedisBatchCache{
		client: client,
	}
}

// Get retrieves a batch from Redis cache.
// Returns nil, nil on cache miss.
func (c *RedisBatchCache) Get(ctx context.Context, batchID uuid.UUID) (*model.Batch, error) {
	key := c.buildKey(batchID)

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	batch, err := c.deserialize(data)
	if err != nil {
		return nil, fmt.Errorf("deserialize batch: %w", err)
	}

	return batch, nil
}

// Set stores a batch in Redis cache with the specified TTL.
func (c *RedisBatchCache) Set(ctx context.Context, batch *model.Batch, ttl time.Duration) error {
	key := c.buildKey(batch.ID)

	data, err := c.serialize(batch)
	if err != nil {
		return fmt.Errorf("serialize batch: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Delete removes a batch from Redis cache.
func (c *RedisBatchCache) Delete(ctx context.Context, batchID uuid.UUID) error {
	key := c.buildKey(batchID)

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}

// buildKey constructs the Redis key for a batch.
func (c *RedisBatchCache) buildKey(batchID uuid.UUID) string {
	return batchCacheKeyPrefix + batchID.String()
}

// serialize converts a Batch to JSON bytes.
func (c *RedisBatchCache) serialize(batch *model.Batch) ([]byte, error) {
	b := batchJSON{
		ID:        batch.ID.String(),
		UserID:    batch.UserID.String(),
		Title:     batch.Title,
		Status:    batch.Status.String(),
		Assets:    batch.Assets,
		Results:   batch.Results,
		Processed: batch.Processed,
		Failed:    batch.Failed,
		CreatedAt: batch.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt: batch.UpdatedAt.Format(time.RFC3339Nano),
	}
	return json.Marshal(b)
}

// deserialize converts JSON bytes to a Batch.
func (c *RedisBatchCache) deserialize(data []byte) (*model.Batch, error) {
	var b batchJSON
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(b.ID)
	if err != nil {
		return nil, fmt.Errorf("parse batch ID: %w", err)
	}

	userID, err := uuid.Parse(b.UserID)
	if err != nil {
		return nil, fmt.Errorf("parse user ID: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	updatedAt, err := time.Parse(time.RFC3339Nano, b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &model.Batch{
		ID:        id,
		UserID:    userID,
		Title:     b.Title,
		Status:    model.Status(b.Status),
		Assets:    b.Assets,
		Results:   b.Results,
		Processed: b.Processed,
		Failed:    b.Failed,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}
