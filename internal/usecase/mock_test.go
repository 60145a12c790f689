package usecase

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/PupsWorldPeace/TeleSticker/internal/converter"
	"github.com/PupsWorldPeace/TeleSticker/internal/domain/model"
	"github.com/PupsWorldPeace/TeleSticker/internal/domain/repository"
)

// mockBatchRepository provides a configurable mock for BatchRepository.
type mockBatchRepository struct {
	createFn       func(ctx context.Context, batch *model.Batch) error
	getByIDFn      func(ctx context.Context, id uuid.UUID) (*model.Batch, error)
	getByUserIDFn  func(ctx context.Context, userID uuid.UUID) ([]*model.Batch, error)
	updateFn       func(ctx context.Context, batch *model.Batch) error
	updateStatusFn func(ctx context.Context, id uuid.UUID, status model.Status) error
}

func (m *mockBatchRepository) Create(ctx context.Context, batch *model.Batch) error {
	if m.createFn != nil {
		return m.createFn(ctx, batch)
	}
	return nil
}

func (m *mockBatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Batch, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockBatchRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*model.Batch, error) {
	if m.getByUserIDFn != nil {
		return m.getByUserIDFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockBatchRepository) Update(ctx context.Context, batch *model.Batch) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, batch)
	}
	return nil
}

func (m *mockBatchRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.Status) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status)
	}
	return nil
}

// mockObjectStorage provides a configurable mock for ObjectStorage.
type mockObjectStorage struct {
	generatePresignedUploadURLFn   func(ctx context.Context, key string, expiry time.Duration) (string, error)
	generatePresignedDownloadURLFn func(ctx context.Context, key string, expiry time.Duration) (string, error)
	uploadFn                       func(ctx context.Context, key string, reader io.Reader, contentType string) error
	downloadFn                     func(ctx context.Context, key string) (io.ReadCloser, error)
	deleteFn                       func(ctx context.Context, key string) error
	existsFn                       func(ctx context.Context, key string) (bool, error)
}

func (m *mockObjectStorage) GeneratePresignedUploadURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if m.generatePresignedUploadURLFn != nil {
		return m.generatePresignedUploadURLFn(ctx, key, expiry)
	}
	return "http://example.com/upload", nil
}

func (m *mockObjectStorage) GeneratePresignedDownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if m.generatePresignedDownloadURLFn != nil {
		return m.generatePresignedDownloadURLFn(ctx, key, expiry)
	}
	return "http://example.com/download", nil
}

func (m *mockObjectStorage) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, key, reader, contentType)
	}
	return nil
}

func (m *mockObjectStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if m.downloadFn != nil {
		return m.downloadFn(ctx, key)
	}
	return nil, nil
}

func (m *mockObjectStorage) Delete(ctx context.Context, key string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key)
	}
	return nil
}

func (m *mockObjectStorage) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

// mockMessageQueue provides a configurable mock for MessageQueue.
type mockMessageQueue struct {
	publishConvertTaskFn  func(ctx context.Context, task repository.ConvertTask) error
	consumeConvertTasksFn func(ctx context.Context, handler func(task repository.ConvertTask) error) error
}

func (m *mockMessageQueue) PublishConvertTask(ctx context.Context, task repository.ConvertTask) error {
	if m.publishConvertTaskFn != nil {
		return m.publishConvertTaskFn(ctx, task)
	}
	return nil
}

func (m *mockMessageQueue) ConsumeConvertTasks(ctx context.Context, handler func(task repository.ConvertTask) error) error {
	if m.consumeConvertTasksFn != nil {
		return m.consumeConvertTasksFn(ctx, handler)
	}
	return nil
}

func (m *mockMessageQueue) Close() error {
	return nil
}

// mockVideoEncoder provides a configurable mock for converter.VideoEncoder.
type mockVideoEncoder struct {
	encodeVideoFn func(ctx context.Context, inputPath, outputPath string, c converter.SizeConstraints, targetW, targetH int) (converter.VideoResult, error)
}

func (m *mockVideoEncoder) EncodeVideo(ctx context.Context, inputPath, outputPath string, c converter.SizeConstraints, targetW, targetH int) (converter.VideoResult, error) {
	if m.encodeVideoFn != nil {
		return m.encodeVideoFn(ctx, inputPath, outputPath, c, targetW, targetH)
	}
	return converter.VideoResult{Succeeded: true, Attempts: 1}, nil
}

// mockImageEncoder provides a configurable mock for converter.ImageEncoder.
type mockImageEncoder struct {
	encodeImageFn func(ctx context.Context, inputPath, outputPath string, maxEdge int, fixedSquare bool, format converter.ImageFormat) error
}

func (m *mockImageEncoder) EncodeImage(ctx context.Context, inputPath, outputPath string, maxEdge int, fixedSquare bool, format converter.ImageFormat) error {
	if m.encodeImageFn != nil {
		return m.encodeImageFn(ctx, inputPath, outputPath, maxEdge, fixedSquare, format)
	}
	return nil
}

// mockProber provides a configurable mock for converter.DimensionProber.
type mockProber struct {
	probeFn func(ctx context.Context, path string) converter.SourceDimensions
}

func (m *mockProber) ProbeDimensions(ctx context.Context, path string) converter.SourceDimensions {
	if m.probeFn != nil {
		return m.probeFn(ctx, path)
	}
	return converter.SourceDimensions{Width: 1280, Height: 720}
}

// mockBatchCache provides a configurable mock for cache.BatchCache.
type mockBatchCache struct {
	getFn    func(ctx context.Context, batchID uuid.UUID) (*model.Batch, error)
	setFn    func(ctx context.Context, batch *model.Batch, ttl time.Duration) error
	deleteFn func(ctx context.Context, batchID uuid.UUID) error
}

func (m *mockBatchCache) Get(ctx context.Context, batchID uuid.UUID) (*model.Batch, error) {
	if m.getFn != nil {
		return m.getFn(ctx, batchID)
	}
	return nil, nil
}

func (m *mockBatchCache) Set(ctx context.Context, batch *model.Batch, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, batch, ttl)
	}
	return nil
}

func (m *mockBatchCache) Delete(ctx context.Context, batchID uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, batchID)
	}
	return nil
}
