package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/PupsWorldPeace/TeleSticker/internal/config"
	"github.com/PupsWorldPeace/TeleSticker/internal/converter"
	"github.com/PupsWorldPeace/TeleSticker/internal/domain/repository"
	"github.com/PupsWorldPeace/TeleSticker/internal/infrastructure/cache"
	"github.com/PupsWorldPeace/TeleSticker/internal/infrastructure/postgres"
	"github.com/PupsWorldPeace/TeleSticker/internal/infrastructure/queue"
	"github.com/PupsWorldPeace/TeleSticker/internal/infrastructure/storage"
	"github.com/PupsWorldPeace/TeleSticker/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Ensure the work directory exists
	if err := os.MkdirAll(cfg.Worker.WorkDir, 0755); err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}

	// Initialize infrastructure clients
	pgClient, err := postgres.NewClient(ctx, postgres.DefaultClientConfig(cfg.Database.DSN()))
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pgClient.Close()
	logger.Info("connected to PostgreSQL")

	storageClient, err := storage.NewClient(ctx, storage.ClientConfig{
		Endpoint:  cfg.MinIO.Endpoint,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to MinIO: %w", err)
	}
	logger.Info("connected to MinIO")

	queueClient, err := queue.NewClient(ctx, queue.DefaultClientConfig(cfg.RabbitMQ.URL()))
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer queueClient.Close()
	logger.Info("connected to RabbitMQ")

	// Redis client for batch cache invalidation
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("connected to Redis")

	// Initialize converter components
	prober := converter.NewProber(cfg.FFmpeg.FFprobePath)
	encoderCfg := converter.EncoderConfig{FFmpegPath: cfg.FFmpeg.FFmpegPath}
	videoEncoder := converter.NewFFmpegVideoEncoder(encoderCfg)
	imageEncoder := converter.NewFFmpegImageEncoder(encoderCfg, prober)

	// Initialize repository and service
	batchRepo := postgres.NewBatchRepository(pgClient.Pool())
	batchCache := cache.NewRedisBatchCache(redisClient)
	convertSvc := usecase.NewConvertService(
		batchRepo,
		storageClient,
		videoEncoder,
		imageEncoder,
		prober,
		batchCache,
		usecase.ConvertServiceConfig{
			WorkDir:    cfg.Worker.WorkDir,
			MaxRetries: cfg.Worker.MaxRetries,
		},
	)

	// Setup signal handling for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// WaitGroup to track in-flight tasks
	var wg sync.WaitGroup

	// Start consuming messages in a goroutine
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting worker, consuming convert tasks")
		err := queueClient.ConsumeConvertTasks(ctx, func(task repository.ConvertTask) error {
			wg.Add(1)
			defer wg.Done()

			logger.Info("processing task",
				slog.String("batch_id", task.BatchID.String()),
				slog.Int("retry_count", task.RetryCount),
			)

			if err := convertSvc.ProcessTask(ctx, task); err != nil {
				logger.Error("task processing failed",
					slog.String("batch_id", task.BatchID.String()),
					slog.Int("retry_count", task.RetryCount),
					slog.String("error", err.Error()),
				)
				return err
			}

			logger.Info("task completed successfully",
				slog.String("batch_id", task.BatchID.String()),
			)
			return nil
		})
		if err != nil && ctx.Err() == nil {
			errCh <- fmt.Errorf("consumer error: %w", err)
		}
	}()

	// Wait for shutdown signal or error
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down worker", slog.String("signal", sig.String()))
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownTimeout)
	defer shutdownCancel()

	// Cancel the main context to stop consuming new messages
	cancel()

	// Wait for in-flight tasks to complete (or timeout)
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("all in-flight tasks completed")
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout exceeded, some tasks may not have completed")
	}

	logger.Info("worker stopped")
	return nil
}
