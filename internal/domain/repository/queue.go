package repository

import (
	"context"

	"github.com/google/uuid"
)

// ConvertTask represents a sticker batch conversion job message.
type ConvertTask struct {
	BatchID    uuid.UUID `json:"batch_id"`
	RetryCount int       `json:"retry_count"`
}

// MessageQueue defines the interface for message queue operations.
// Implementations should be provided by the infrastructure layer (e.g., RabbitMQ).
type MessageQueue interface {
	// PublishConvertTask sends a conversion task to the queue.
	// Used by the API server to trigger async batch processing.
	PublishConvertTask(ctx context.Context, task ConvertTask) error

	// ConsumeConvertTasks starts consuming conversion tasks from the queue.
	// The handler function is called for each received task.
	// Used by the worker service; blocks until the context is cancelled.
	ConsumeConvertTasks(ctx context.Context, handler func(task ConvertTask) error) error

	// Close gracefully closes the connection to the message queue.
	Close() error
}
