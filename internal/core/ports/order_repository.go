// internal/core/ports/order_repository.go
package ports

import (
	"context"
	"time"

	"github.com/ammerola/resell-orders/internal/core/domain"
	"github.com/google/uuid"
)

// OrderRepository defines the persistence port for orders.
// Find methods return (nil, nil) when the order does not exist.
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	// FindForUpdate loads the order and holds it against concurrent
	// mutation until the surrounding unit of work ends.
	FindForUpdate(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	Insert(ctx context.Context, order *domain.Order) error
	UpdateByID(ctx context.Context, order *domain.Order) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params OrderListParams) ([]*domain.Order, int64, error)
}

// OrderListParams holds parameters for listing orders
type OrderListParams struct {
	Status        domain.OrderStatus
	OwnerID       *uuid.UUID
	AssigneeID    *uuid.UUID
	Search        string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	SortBy        string
	SortOrder     string
	Page          int
	PageSize      int
}

// Normalize fills pagination and sort defaults
func (p *OrderListParams) Normalize() {
	normalizePage(&p.Page, &p.PageSize)
	switch p.SortBy {
	case "created_at", "updated_at", "delivery_date", "status", "customer_name":
	default:
		p.SortBy = "created_at"
	}
	if p.SortOrder != "asc" {
		p.SortOrder = "desc"
	}
}

// Offset returns the row offset of the requested page
func (p OrderListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Page size bounds shared by every list endpoint
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

func normalizePage(page, size *int) {
	if *page < 1 {
		*page = 1
	}
	if *size < 1 {
		*size = DefaultPageSize
	}
	if *size > MaxPageSize {
		*size = MaxPageSize
	}
}
