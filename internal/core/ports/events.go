// internal/core/ports/events.go
package ports

import (
	"context"

	"github.com/ammerola/resell-orders/internal/core/domain"
)

// EventPublisher hands domain events to background workers
type EventPublisher interface {
	PublishLowStock(ctx context.Context, alert domain.LowStockAlert) error
}
