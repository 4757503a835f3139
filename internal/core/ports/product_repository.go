// internal/core/ports/product_repository.go
package ports

import (
	"context"

	"github.com/ammerola/resell-orders/internal/core/domain"
	"github.com/google/uuid"
)

// ProductRepository is the read side of the catalog
type ProductRepository interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error)
	Upsert(ctx context.Context, product *domain.Product) error
}
