// internal/core/ports/order_service.go
package ports

import (
	"context"

	"github.com/ammerola/resell-orders/internal/core/domain"
	"github.com/google/uuid"
)

// OrderService defines the application service port for orders.
// Every mutation keeps inventory counts consistent with the stored
// line items of live orders.
type OrderService interface {
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	EditOrder(ctx context.Context, id uuid.UUID, patch *domain.OrderPatch) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.OrderView, error)
	ListOrders(ctx context.Context, params OrderListParams) (*OrderListResult, error)
}

// OrderListResult holds the result of listing orders
type OrderListResult struct {
	Items      []*domain.Order `json:"items"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalCount int64           `json:"total_count"`
	TotalPages int             `json:"total_pages"`
}
