package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/PupsWorldPeace/TeleSticker/internal/converter"
	"github.com/PupsWorldPeace/TeleSticker/internal/domain/model"
	"github.com/PupsWorldPeace/TeleSticker/internal/domain/repository"
	"github.com/PupsWorldPeace/TeleSticker/internal/infrastructure/cache"
	"github.com/PupsWorldPeace/TeleSticker/internal/infrastructure/metrics"
	"github.com/PupsWorldPeace/TeleSticker/internal/infrastructure/storage"
)

const (
	// DefaultMaxRetries is the default maximum number of retry attempts before marking a batch as failed.
	DefaultMaxRetries = 3
)

// ConvertServiceConfig holds configuration for ConvertService.
type ConvertServiceConfig struct {
	// WorkDir is the base directory for temporary files during conversion.
	WorkDir string
	// MaxRetries is the maximum number of retry attempts before marking the batch as failed.
	MaxRetries int
}

// DefaultConvertServiceConfig returns the default configuration.
func DefaultConvertServiceConfig() ConvertServiceConfig {
	return ConvertServiceConfig{
		WorkDir:    os.TempDir(),
		MaxRetries: DefaultMaxRetries,
	}
}

// ConvertService defines the interface for sticker conversion operations.
type ConvertService interface {
	// ProcessTask handles a conversion task from the message queue.
	// Returns nil on success or permanent failure (max retries exceeded).
	// Returns error for transient failures that should trigger a retry.
	ProcessTask(ctx context.Context, task repository.ConvertTask) error
}

type convertService struct {
	repo    repository.BatchRepository
	storage repository.ObjectStorage
	video   converter.VideoEncoder
	image   converter.ImageEncoder
	probe   converter.DimensionProber
	cache   cache.BatchCache

	workDir    string
	maxRetries int
}

// NewConvertService creates a new ConvertService instance.
// batchCache may be nil; when set, cached batch entries are invalidated
// after every status change so the API does not serve stale status.
func NewConvertService(
	repo repository.BatchRepository,
	store repository.ObjectStorage,
	video converter.VideoEncoder,
	image converter.ImageEncoder,
	probe converter.DimensionProber,
	batchCache cache.BatchCache,
	cfg ConvertServiceConfig,
) ConvertService {
	return &convertService{
		repo:       repo,
		storage:    store,
		video:      &instrumentedVideoEncoder{inner: video},
		image:      image,
		probe:      probe,
		cache:      batchCache,
		workDir:    cfg.WorkDir,
		maxRetries: cfg.MaxRetries,
	}
}

// ProcessTask handles a conversion task.
// It downloads the batch's source files, runs every asset through the
// converter in submission order, uploads the converted artifacts, and updates
// the batch status in the database.
func (s *convertService) ProcessTask(ctx context.Context, task repository.ConvertTask) error {
	// Check if max retries exceeded - mark as failed and return nil (ack the message)
	if task.RetryCount >= s.maxRetries {
		if err := s.markBatchFailed(ctx, task.BatchID); err != nil {
			slog.Error("failed to mark batch as failed",
				"batch_id", task.BatchID,
				"retry_count", task.RetryCount,
				"error", err,
			)
			// Still return nil to ack the message.
			// The batch remains in PROCESSING state, which is acceptable.
			return nil
		}
		metrics.BatchesTotal.WithLabelValues(metrics.BatchOutcomeFailed).Inc()
		return nil
	}

	batch, err := s.repo.GetByID(ctx, task.BatchID)
	if err != nil {
		return fmt.Errorf("get batch: %w", err)
	}

	workDir, err := s.createWorkDir(batch.ID)
	if err != nil {
		return fmt.Errorf("create work directory: %w", err)
	}
	defer s.cleanup(workDir)

	assets, err := s.downloadSources(ctx, batch, workDir)
	if err != nil {
		return fmt.Errorf("download sources: %w", err)
	}

	orch := converter.NewOrchestrator(s.video, s.image, s.probe, converter.OrchestratorConfig{
		OutputDir:  filepath.Join(workDir, "out"),
		OnProgress: progressLogger(batch.ID),
	})

	summary, err := orch.Run(ctx, assets)
	if err != nil {
		return fmt.Errorf("run conversion: %w", err)
	}

	results, err := s.uploadOutputs(ctx, batch, summary)
	if err != nil {
		return fmt.Errorf("upload outputs: %w", err)
	}

	if err := s.finishBatch(ctx, batch, results); err != nil {
		return fmt.Errorf("update batch status: %w", err)
	}

	return nil
}

// createWorkDir creates a temporary directory for processing a specific batch.
func (s *convertService) createWorkDir(batchID uuid.UUID) (string, error) {
	workDir := filepath.Join(s.workDir, "telesticker", batchID.String())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}
	return workDir, nil
}

// cleanup removes the temporary working directory.
func (s *convertService) cleanup(workDir string) {
	_ = os.RemoveAll(workDir)
}

// downloadSources downloads every source file of the batch from object
// storage and builds the converter asset list in batch order.
func (s *convertService) downloadSources(ctx context.Context, batch *model.Batch, workDir string) ([]converter.Asset, error) {
	srcDir := filepath.Join(workDir, "src")
	if err := os.MkdirAll(srcDir, 0755); err != nil {
		return nil, fmt.Errorf("create source directory: %w", err)
	}

	assets := make([]converter.Asset, 0, len(batch.Assets))
	for i, a := range batch.Assets {
		localPath := filepath.Join(srcDir, fmt.Sprintf("%d_%s", i, filepath.Base(a.FileName)))
		if err := s.downloadFile(ctx, a.SourceKey, localPath); err != nil {
			return nil, fmt.Errorf("download asset %d (%s): %w", i, a.FileName, err)
		}

		assets = append(assets, converter.Asset{
			Name:      a.FileName,
			Kind:      converter.Kind(a.Kind),
			Role:      converter.Role(a.Role),
			Format:    converter.ImageFormat(a.Format),
			InputPath: localPath,
		})
	}

	return assets, nil
}

// downloadFile downloads a single object from storage to a local file.
func (s *convertService) downloadFile(ctx context.Context, key, localPath string) error {
	reader, err := s.storage.Download(ctx, key)
	if err != nil {
		return fmt.Errorf("storage download: %w", err)
	}
	defer func() { _ = reader.Close() }()

	file, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create local file: %w", err)
	}

	if _, err := io.Copy(file, reader); err != nil {
		_ = file.Close()
		return fmt.Errorf("copy to local file: %w", err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("close local file: %w", err)
	}

	return nil
}

// uploadOutputs uploads converted artifacts and maps the run summary onto
// domain results. Failed conversions, including oversized artifacts left on
// disk, are never uploaded.
func (s *convertService) uploadOutputs(ctx context.Context, batch *model.Batch, summary *converter.Summary) ([]model.AssetResult, error) {
	results := make([]model.AssetResult, 0, len(summary.Results))
	for _, r := range summary.Results {
		outcome := metrics.OutcomeFailure
		if r.Succeeded {
			outcome = metrics.OutcomeSuccess
		}
		metrics.ConversionsTotal.WithLabelValues(string(r.Asset.Kind), string(r.Asset.Role), outcome).Inc()

		result := model.AssetResult{
			Succeeded: r.Succeeded,
			SizeBytes: r.SizeBytes,
			Message:   r.Message,
		}

		if r.Succeeded {
			key := storage.OutputKey(batch.ID, filepath.Base(r.OutputPath))
			if err := s.uploadFile(ctx, r.OutputPath, key); err != nil {
				return nil, fmt.Errorf("upload %s: %w", filepath.Base(r.OutputPath), err)
			}
			result.OutputKey = key
		}

		results = append(results, result)
	}

	return results, nil
}

// uploadFile uploads a single local file to object storage.
func (s *convertService) uploadFile(ctx context.Context, localPath, key string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := s.storage.Upload(ctx, key, file, storage.ContentTypeFor(localPath)); err != nil {
		return fmt.Errorf("storage upload: %w", err)
	}

	return nil
}

// finishBatch records per-asset results and transitions the batch to its
// terminal status. A batch with at least one converted asset is READY even
// when other assets failed.
func (s *convertService) finishBatch(ctx context.Context, batch *model.Batch, results []model.AssetResult) error {
	if batch.Status != model.StatusProcessing {
		// Batch is not in the expected state. Don't fight it.
		return nil
	}

	batch.SetResults(results)

	target := model.StatusFailed
	outcome := metrics.BatchOutcomeFailed
	if batch.AnyConverted() {
		target = model.StatusReady
		outcome = metrics.BatchOutcomeReady
	}

	if err := batch.TransitionTo(target); err != nil {
		return fmt.Errorf("transition to %s: %w", target, err)
	}

	if err := s.repo.Update(ctx, batch); err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	s.invalidateCache(ctx, batch.ID)

	metrics.BatchesTotal.WithLabelValues(outcome).Inc()
	return nil
}

// markBatchFailed updates the batch status to FAILED.
func (s *convertService) markBatchFailed(ctx context.Context, batchID uuid.UUID) error {
	batch, err := s.repo.GetByID(ctx, batchID)
	if err != nil {
		return fmt.Errorf("get batch: %w", err)
	}

	// Only transition if in PROCESSING state
	if batch.Status != model.StatusProcessing {
		return nil
	}

	if err := batch.TransitionTo(model.StatusFailed); err != nil {
		return fmt.Errorf("transition to failed: %w", err)
	}

	if err := s.repo.Update(ctx, batch); err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	s.invalidateCache(ctx, batch.ID)

	return nil
}

// invalidateCache drops the cached batch entry after a status change.
// Failures are logged and ignored; the cache entry expires on its own.
func (s *convertService) invalidateCache(ctx context.Context, batchID uuid.UUID) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Delete(ctx, batchID); err != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpDelete, metrics.CacheStatusError, metrics.CacheTypeRedis).Inc()
		slog.Warn("failed to invalidate batch cache",
			"batch_id", batchID,
			"error", err,
		)
		return
	}
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpDelete, metrics.CacheStatusSuccess, metrics.CacheTypeRedis).Inc()
}

// progressLogger returns a ProgressFunc that logs per-asset progress.
func progressLogger(batchID uuid.UUID) converter.ProgressFunc {
	return func(ev converter.ProgressEvent) {
		if ev.Phase == converter.PhaseStarted {
			slog.Info("asset conversion started",
				"batch_id", batchID,
				"index", ev.Index,
				"name", ev.Asset.Name,
				"kind", ev.Asset.Kind,
				"role", ev.Asset.Role,
			)
			return
		}

		if ev.Succeeded {
			slog.Info("asset conversion finished",
				"batch_id", batchID,
				"index", ev.Index,
				"name", ev.Asset.Name,
			)
		} else {
			slog.Warn("asset conversion failed",
				"batch_id", batchID,
				"index", ev.Index,
				"name", ev.Asset.Name,
				"reason", ev.Message,
			)
		}
	}
}

// instrumentedVideoEncoder records encode attempt counts around the wrapped encoder.
type instrumentedVideoEncoder struct {
	inner converter.VideoEncoder
}

func (e *instrumentedVideoEncoder) EncodeVideo(ctx context.Context, inputPath, outputPath string, c converter.SizeConstraints, targetW, targetH int) (converter.VideoResult, error) {
	result, err := e.inner.EncodeVideo(ctx, inputPath, outputPath, c, targetW, targetH)
	if result.Attempts > 0 {
		metrics.EncodeAttempts.Observe(float64(result.Attempts))
	}
	return result, err
}

var _ converter.VideoEncoder = (*instrumentedVideoEncoder)(nil)
