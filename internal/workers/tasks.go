// internal/workers/tasks.go
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/resell-orders/internal/core/domain"
	"github.com/ammerola/resell-orders/internal/core/ports"
)

// Task types
const (
	TypeLowStockAlert    = "stock:low_alert"
	TypeCleanupMovements = "cleanup:stock_movements"
)

// Queue names
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// alertDedupWindow suppresses identical alerts enqueued close together
const alertDedupWindow = 10 * time.Minute

// Enqueuer is the part of *asynq.Client used to publish tasks
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// NewLowStockAlertTask creates the task carrying a low-stock alert
func NewLowStockAlertTask(alert domain.LowStockAlert) (*asynq.Task, error) {
	payload, err := json.Marshal(alert)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal low stock alert: %w", err)
	}
	return asynq.NewTask(TypeLowStockAlert, payload,
		asynq.Queue(QueueCritical),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second)), nil
}

// NewCleanupMovementsTask creates the ledger pruning task
func NewCleanupMovementsTask() *asynq.Task {
	return asynq.NewTask(TypeCleanupMovements, nil,
		asynq.Queue(QueueLow),
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute))
}

// TaskPublisher publishes domain events as asynq tasks
type TaskPublisher struct {
	client Enqueuer
	logger *slog.Logger
}

// Statically assert that *TaskPublisher implements the EventPublisher interface.
var _ ports.EventPublisher = (*TaskPublisher)(nil)

// NewTaskPublisher creates a publisher on top of an asynq client
func NewTaskPublisher(client Enqueuer, logger *slog.Logger) *TaskPublisher {
	return &TaskPublisher{
		client: client,
		logger: logger.With(slog.String("component", "task_publisher")),
	}
}

// PublishLowStock enqueues a low-stock alert. A duplicate of an alert
// still pending is not an error.
func (p *TaskPublisher) PublishLowStock(ctx context.Context, alert domain.LowStockAlert) error {
	task, err := NewLowStockAlertTask(alert)
	if err != nil {
		return err
	}

	info, err := p.client.EnqueueContext(ctx, task, asynq.Unique(alertDedupWindow))
	if err != nil {
		if errors.Is(err, asynq.ErrDuplicateTask) {
			p.logger.DebugContext(ctx, "low stock alert already queued",
				slog.String("product_id", alert.ProductID.String()))
			return nil
		}
		return fmt.Errorf("failed to enqueue low stock alert: %w", err)
	}

	p.logger.InfoContext(ctx, "low stock alert queued",
		slog.String("task_id", info.ID),
		slog.String("product_id", alert.ProductID.String()),
		slog.Int("count", alert.Count))
	return nil
}
