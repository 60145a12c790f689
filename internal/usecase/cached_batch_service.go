package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/PupsWorldPeace/TeleSticker/internal/domain/model"
	"github.com/PupsWorldPeace/TeleSticker/internal/infrastructure/cache"
	"github.com/PupsWorldPeace/TeleSticker/internal/infrastructure/metrics"
)

// CachedBatchServiceConfig holds configuration for CachedBatchService.
type CachedBatchServiceConfig struct {
	// CacheTTL is the TTL for cached batch metadata.
	CacheTTL time.Duration
}

// DefaultCachedBatchServiceConfig returns the default configuration.
func DefaultCachedBatchServiceConfig() CachedBatchServiceConfig {
	return CachedBatchServiceConfig{
		CacheTTL: 5 * time.Minute,
	}
}

// cachedBatchService wraps BatchService with caching capabilities.
// It implements the decorator pattern to add caching without modifying the original service.
type cachedBatchService struct {
	delegate BatchService
	cache    cache.BatchCache
	sfGroup  singleflight.Group

	cacheTTL time.Duration
}

// NewCachedBatchService creates a new CachedBatchService wrapping the provided BatchService.
func NewCachedBatchService(
	delegate BatchService,
	batchCache cache.BatchCache,
	cfg CachedBatchServiceConfig,
) BatchService {
	return &cachedBatchService{
		delegate: delegate,
		cache:    batchCache,
		cacheTTL: cfg.CacheTTL,
	}
}

// CreateBatch delegates to the underlying service.
// No caching for create operations - the batch is immediately returned.
func (s *cachedBatchService) CreateBatch(ctx context.Context, input CreateBatchInput) (*CreateBatchOutput, error) {
	return s.delegate.CreateBatch(ctx, input)
}

// TriggerProcess invalidates the cache and delegates to the underlying service.
// Cache invalidation happens before processing to ensure stale data is not
// served during the transition to PROCESSING status.
func (s *cachedBatchService) TriggerProcess(ctx context.Context, batchID uuid.UUID) error {
	if err := s.cache.Delete(ctx, batchID); err != nil {
		// Cache invalidation failure is non-critical
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpDelete, metrics.CacheStatusError, metrics.CacheTypeRedis).Inc()
		slog.Warn("failed to invalidate cache on trigger process",
			"batch_id", batchID,
			"error", err,
		)
	} else {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpDelete, metrics.CacheStatusSuccess, metrics.CacheTypeRedis).Inc()
	}

	return s.delegate.TriggerProcess(ctx, batchID)
}

// GetBatch retrieves batch information with caching.
// Uses singleflight to prevent cache stampede on concurrent requests for the same batch.
func (s *cachedBatchService) GetBatch(ctx context.Context, batchID uuid.UUID) (*model.Batch, error) {
	key := batchID.String()
	result, err, shared := s.sfGroup.Do(key, func() (any, error) {
		return s.getBatchWithCache(ctx, batchID)
	})

	if shared {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightShared).Inc()
	} else {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightInitiated).Inc()
	}

	if err != nil {
		return nil, err
	}

	return result.(*model.Batch), nil
}

// GetResultURLs delegates to the underlying service.
// Presigned URLs are time-limited and must not be cached.
func (s *cachedBatchService) GetResultURLs(ctx context.Context, batchID uuid.UUID) ([]ResultURL, error) {
	return s.delegate.GetResultURLs(ctx, batchID)
}

// getBatchWithCache implements the cache-aside pattern.
func (s *cachedBatchService) getBatchWithCache(ctx context.Context, batchID uuid.UUID) (*model.Batch, error) {
	batch, err := s.cache.Get(ctx, batchID)
	if err != nil {
		// Fall back to the database on cache errors
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusError, metrics.CacheTypeRedis).Inc()
		slog.Warn("cache get failed, falling back to database",
			"batch_id", batchID,
			"error", err,
		)
	}

	if batch != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusHit, metrics.CacheTypeRedis).Inc()
		return batch, nil
	}

	if err == nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusMiss, metrics.CacheTypeRedis).Inc()
	}

	batch, err = s.delegate.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, batch, s.cacheTTL); err != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusError, metrics.CacheTypeRedis).Inc()
		slog.Warn("failed to cache batch",
			"batch_id", batchID,
			"error", err,
		)
	} else {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusSuccess, metrics.CacheTypeRedis).Inc()
	}

	return batch, nil
}

// InvalidateCache removes a batch from the cache.
func (s *cachedBatchService) InvalidateCache(ctx context.Context, batchID uuid.UUID) error {
	return s.cache.Delete(ctx, batchID)
}
