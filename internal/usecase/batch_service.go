package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/PupsWorldPeace/TeleSticker/internal/domain/model"
	"github.com/PupsWorldPeace/TeleSticker/internal/domain/repository"
	"github.com/PupsWorldPeace/TeleSticker/internal/infrastructure/storage"
)

var (
	// ErrBatchAlreadyCompleted is returned when attempting to process a batch that has already completed.
	ErrBatchAlreadyCompleted = errors.New("batch processing has already completed")
)

// CreateBatchInput contains the input parameters for creating a batch.
type CreateBatchInput struct {
	UserID uuid.UUID
	Title  string
	Assets []model.Asset
}

// CreateBatchOutput contains the result of creating a batch.
// UploadURLs are presigned URLs in asset order; the client uploads each
// source file directly to object storage before triggering processing.
type CreateBatchOutput struct {
	Batch      *model.Batch
	UploadURLs []string
}

// ResultURL is a presigned download link for one converted asset.
type ResultURL struct {
	Index     int    `json:"index"`
	Succeeded bool   `json:"succeeded"`
	URL       string `json:"url,omitempty"`
}

// BatchService defines the interface for sticker batch business logic operations.
type BatchService interface {
	// CreateBatch creates batch metadata and returns presigned upload URLs
	// for each source asset.
	CreateBatch(ctx context.Context, input CreateBatchInput) (*CreateBatchOutput, error)

	// TriggerProcess initiates conversion for an uploaded batch.
	// This operation is idempotent - calling it on an already processing batch returns nil.
	TriggerProcess(ctx context.Context, batchID uuid.UUID) error

	// GetBatch retrieves batch information by ID.
	GetBatch(ctx context.Context, batchID uuid.UUID) (*model.Batch, error)

	// GetResultURLs returns presigned download URLs for the converted assets
	// of a READY batch, in asset order. Failed assets carry no URL.
	GetResultURLs(ctx context.Context, batchID uuid.UUID) ([]ResultURL, error)
}

// BatchServiceConfig holds configuration for BatchService.
type BatchServiceConfig struct {
	UploadURLExpiry   time.Duration
	DownloadURLExpiry time.Duration
}

// DefaultBatchServiceConfig returns the default configuration.
func DefaultBatchServiceConfig() BatchServiceConfig {
	return BatchServiceConfig{
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: 1 * time.Hour,
	}
}

type batchService struct {
	repo    repository.BatchRepository
	storage repository.ObjectStorage
	queue   repository.MessageQueue

	uploadURLExpiry   time.Duration
	downloadURLExpiry time.Duration
}

// NewBatchService creates a new BatchService instance.
func NewBatchService(
	repo repository.BatchRepository,
	store repository.ObjectStorage,
	queue repository.MessageQueue,
	cfg BatchServiceConfig,
) BatchService {
	return &batchService{
		repo:              repo,
		storage:           store,
		queue:             queue,
		uploadURLExpiry:   cfg.UploadURLExpiry,
		downloadURLExpiry: cfg.DownloadURLExpiry,
	}
}

// CreateBatch creates batch metadata and generates presigned upload URLs
// for every asset in the batch.
func (s *batchService) CreateBatch(ctx context.Context, input CreateBatchInput) (*CreateBatchOutput, error) {
	batch, err := model.NewBatch(input.UserID, input.Title, input.Assets)
	if err != nil {
		return nil, err
	}

	uploadURLs := make([]string, len(batch.Assets))
	for i, asset := range batch.Assets {
		key := storage.SourceKey(batch.ID, i, asset.FileName)

		uploadURL, err := s.storage.GeneratePresignedUploadURL(ctx, key, s.uploadURLExpiry)
		if err != nil {
			return nil, fmt.Errorf("generate presigned upload URL: %w", err)
		}

		batch.SetSourceKey(i, key)
		uploadURLs[i] = uploadURL
	}

	if err := s.repo.Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}

	return &CreateBatchOutput{
		Batch:      batch,
		UploadURLs: uploadURLs,
	}, nil
}

// TriggerProcess initiates async conversion for a batch.
// Idempotency: returns nil if the batch is already processing.
func (s *batchService) TriggerProcess(ctx context.Context, batchID uuid.UUID) error {
	batch, err := s.repo.GetByID(ctx, batchID)
	if err != nil {
		return err
	}

	if batch.Status == model.StatusProcessing {
		return nil
	}

	if batch.Status == model.StatusReady || batch.Status == model.StatusFailed {
		return ErrBatchAlreadyCompleted
	}

	if err := batch.TransitionTo(model.StatusProcessing); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, batch); err != nil {
		return fmt.Errorf("update batch status: %w", err)
	}

	task := repository.ConvertTask{
		BatchID: batch.ID,
	}

	if err := s.queue.PublishConvertTask(ctx, task); err != nil {
		return fmt.Errorf("publish convert task: %w", err)
	}

	return nil
}

// GetBatch retrieves batch information by ID.
func (s *batchService) GetBatch(ctx context.Context, batchID uuid.UUID) (*model.Batch, error) {
	return s.repo.GetByID(ctx, batchID)
}

// GetResultURLs generates presigned download URLs for converted assets.
// Only READY batches have downloadable results.
func (s *batchService) GetResultURLs(ctx context.Context, batchID uuid.UUID) ([]ResultURL, error) {
	batch, err := s.repo.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}

	if batch.Status != model.StatusReady {
		return nil, fmt.Errorf("batch %s is not ready: %s", batchID, batch.Status)
	}

	urls := make([]ResultURL, len(batch.Results))
	for i, result := range batch.Results {
		urls[i] = ResultURL{Index: i, Succeeded: result.Succeeded}
		if !result.Succeeded || result.OutputKey == "" {
			continue
		}

		downloadURL, err := s.storage.GeneratePresignedDownloadURL(ctx, result.OutputKey, s.downloadURLExpiry)
		if err != nil {
			return nil, fmt.Errorf("generate presigned download URL: %w", err)
		}
		urls[i].URL = downloadURL
	}

	return urls, nil
}
