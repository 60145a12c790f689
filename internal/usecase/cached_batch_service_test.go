package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/PupsWorldPeace/TeleSticker/internal/domain/model"
	"github.com/PupsWorldPeace/TeleSticker/internal/domain/repository"
)

// delegateBatchService records calls while serving canned responses.
type delegateBatchService struct {
	batch          *model.Batch
	getBatchCalls  int
	triggerCalls   int
	getBatchErr    error
	triggerProcErr error
}

func (d *delegateBatchService) CreateBatch(ctx context.Context, input CreateBatchInput) (*CreateBatchOutput, error) {
	return &CreateBatchOutput{Batch: d.batch}, nil
}

func (d *delegateBatchService) TriggerProcess(ctx context.Context, batchID uuid.UUID) error {
	d.triggerCalls++
	return d.triggerProcErr
}

func (d *delegateBatchService) GetBatch(ctx context.Context, batchID uuid.UUID) (*model.Batch, error) {
	d.getBatchCalls++
	if d.getBatchErr != nil {
		return nil, d.getBatchErr
	}
	return d.batch, nil
}

func (d *delegateBatchService) GetResultURLs(ctx context.Context, batchID uuid.UUID) ([]ResultURL, error) {
	return []ResultURL{{Index: 0, Succeeded: true, URL: "http://example.com/dl"}}, nil
}

func cachedTestBatch(t *testing.T) *model.Batch {
	t.Helper()
	batch, err := model.NewBatch(uuid.New(), "Cats", validAssets())
	if err != nil {
		t.Fatalf("NewBatch: %v", err)
	}
	return batch
}

func TestCachedBatchService_GetBatch_CacheHit(t *testing.T) {
	batch := cachedTestBatch(t)
	delegate := &delegateBatchService{batch: batch}

	batchCache := &mockBatchCache{
		getFn: func(ctx context.Context, batchID uuid.UUID) (*model.Batch, error) {
			return batch, nil
		},
	}

	svc := NewCachedBatchService(delegate, batchCache, DefaultCachedBatchServiceConfig())

	got, err := svc.GetBatch(context.Background(), batch.ID)
	if err != nil {
		t.Fatalf("GetBatch() unexpected error = %v", err)
	}

	if got.ID != batch.ID {
		t.Errorf("ID = %v, want %v", got.ID, batch.ID)
	}
	if delegate.getBatchCalls != 0 {
		t.Errorf("delegate called %d times on cache hit, want 0", delegate.getBatchCalls)
	}
}

func TestCachedBatchService_GetBatch_CacheMiss(t *testing.T) {
	batch := cachedTestBatch(t)
	delegate := &delegateBatchService{batch: batch}

	var cachedBatch *model.Batch
	var cachedTTL time.Duration
	batchCache := &mockBatchCache{
		getFn: func(ctx context.Context, batchID uuid.UUID) (*model.Batch, error) {
			return nil, nil // miss
		},
		setFn: func(ctx context.Context, b *model.Batch, ttl time.Duration) error {
			cachedBatch = b
			cachedTTL = ttl
			return nil
		},
	}

	svc := NewCachedBatchService(delegate, batchCache, CachedBatchServiceConfig{CacheTTL: 2 * time.Minute})

	got, err := svc.GetBatch(context.Background(), batch.ID)
	if err != nil {
		t.Fatalf("GetBatch() unexpected error = %v", err)
	}

	if got.ID != batch.ID {
		t.Errorf("ID = %v, want %v", got.ID, batch.ID)
	}
	if delegate.getBatchCalls != 1 {
		t.Errorf("delegate called %d times on cache miss, want 1", delegate.getBatchCalls)
	}
	if cachedBatch == nil || cachedBatch.ID != batch.ID {
		t.Error("expected batch to be stored in cache after miss")
	}
	if cachedTTL != 2*time.Minute {
		t.Errorf("cache TTL = %v, want 2m", cachedTTL)
	}
}

func TestCachedBatchService_GetBatch_CacheErrorFallsBack(t *testing.T) {
	batch := cachedTestBatch(t)
	delegate := &delegateBatchService{batch: batch}

	batchCache := &mockBatchCache{
		getFn: func(ctx context.Context, batchID uuid.UUID) (*model.Batch, error) {
			return nil, errors.New("redis down")
		},
	}

	svc := NewCachedBatchService(delegate, batchCache, DefaultCachedBatchServiceConfig())

	got, err := svc.GetBatch(context.Background(), batch.ID)
	if err != nil {
		t.Fatalf("GetBatch() unexpected error = %v", err)
	}

	if got.ID != batch.ID {
		t.Errorf("ID = %v, want %v", got.ID, batch.ID)
	}
	if delegate.getBatchCalls != 1 {
		t.Errorf("delegate called %d times, want 1", delegate.getBatchCalls)
	}
}

func TestCachedBatchService_GetBatch_DelegateError(t *testing.T) {
	delegate := &delegateBatchService{getBatchErr: repository.ErrBatchNotFound}

	svc := NewCachedBatchService(delegate, &mockBatchCache{}, DefaultCachedBatchServiceConfig())

	_, err := svc.GetBatch(context.Background(), uuid.New())
	if !errors.Is(err, repository.ErrBatchNotFound) {
		t.Errorf("error = %v, want ErrBatchNotFound", err)
	}
}

func TestCachedBatchService_TriggerProcess_InvalidatesCache(t *testing.T) {
	batch := cachedTestBatch(t)
	delegate := &delegateBatchService{batch: batch}

	deleteCalled := false
	batchCache := &mockBatchCache{
		deleteFn: func(ctx context.Context, batchID uuid.UUID) error {
			deleteCalled = true
			if batchID != batch.ID {
				t.Errorf("invalidated batch %v, want %v", batchID, batch.ID)
			}
			return nil
		},
	}

	svc := NewCachedBatchService(delegate, batchCache, DefaultCachedBatchServiceConfig())

	if err := svc.TriggerProcess(context.Background(), batch.ID); err != nil {
		t.Fatalf("TriggerProcess() unexpected error = %v", err)
	}

	if !deleteCalled {
		t.Error("expected cache invalidation before trigger")
	}
	if delegate.triggerCalls != 1 {
		t.Errorf("delegate trigger calls = %d, want 1", delegate.triggerCalls)
	}
}

func TestCachedBatchService_TriggerProcess_CacheDeleteErrorIgnored(t *testing.T) {
	batch := cachedTestBatch(t)
	delegate := &delegateBatchService{batch: batch}

	batchCache := &mockBatchCache{
		deleteFn: func(ctx context.Context, batchID uuid.UUID) error {
			return errors.New("redis down")
		},
	}

	svc := NewCachedBatchService(delegate, batchCache, DefaultCachedBatchServiceConfig())

	if err := svc.TriggerProcess(context.Background(), batch.ID); err != nil {
		t.Fatalf("TriggerProcess() should ignore cache delete failure, got %v", err)
	}
	if delegate.triggerCalls != 1 {
		t.Errorf("delegate trigger calls = %d, want 1", delegate.triggerCalls)
	}
}

func TestCachedBatchService_GetResultURLs_Delegates(t *testing.T) {
	batch := cachedTestBatch(t)
	delegate := &delegateBatchService{batch: batch}

	svc := NewCachedBatchService(delegate, &mockBatchCache{}, DefaultCachedBatchServiceConfig())

	urls, err := svc.GetResultURLs(context.Background(), batch.ID)
	if err != nil {
		t.Fatalf("GetResultURLs() unexpected error = %v", err)
	}
	if len(urls) != 1 || urls[0].URL == "" {
		t.Errorf("urls = %+v, want delegate response", urls)
	}
}
