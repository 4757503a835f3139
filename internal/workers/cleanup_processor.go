// internal/workers/cleanup_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/resell-orders/internal/core/ports"
)

// CleanupProcessor handles ledger cleanup tasks
type CleanupProcessor struct {
	service   ports.InventoryService
	retention time.Duration
	logger    *slog.Logger
}

// NewCleanupProcessor creates a new cleanup processor
func NewCleanupProcessor(service ports.InventoryService, retention time.Duration, logger *slog.Logger) *CleanupProcessor {
	return &CleanupProcessor{
		service:   service,
		retention: retention,
		logger:    logger.With(slog.String("processor", "cleanup")),
	}
}

// PruneMovements removes stock movements older than the retention period
func (p *CleanupProcessor) PruneMovements(ctx context.Context, t *asynq.Task) error {
	p.logger.InfoContext(ctx, "pruning stock movements",
		slog.Duration("retention", p.retention))

	removed, err := p.service.PruneMovements(ctx, p.retention)
	if err != nil {
		return fmt.Errorf("failed to prune stock movements: %w", err)
	}

	p.logger.InfoContext(ctx, "stock movements pruned",
		slog.Int64("rows_deleted", removed))
	return nil
}
