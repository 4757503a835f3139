// internal/adapters/memory/product_repository.go
package memory

import (
	"context"
	"time"

	"github.com/ammerola/resell-orders/internal/core/domain"
	"github.com/ammerola/resell-orders/internal/core/ports"
	"github.com/google/uuid"
)

// ProductRepository implements ports.ProductRepository in memory
type ProductRepository struct {
	store *Store
}

// Statically assert that *ProductRepository implements the ProductRepository interface.
var _ ports.ProductRepository = (*ProductRepository)(nil)

// FindByIDs returns the products that exist, keyed by id
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error) {
	result := make(map[uuid.UUID]*domain.Product, len(ids))
	err := view(r.store, nil, func(st *state) error {
		for _, id := range ids {
			if p, ok := st.products[id]; ok {
				c := *p
				result[id] = &c
			}
		}
		return nil
	})
	return result, err
}

// Upsert inserts or replaces a catalog entry
func (r *ProductRepository) Upsert(ctx context.Context, product *domain.Product) error {
	return view(r.store, nil, func(st *state) error {
		now := time.Now().UTC()
		p := *product
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
			product.ID = p.ID
		}
		if existing, ok := st.products[p.ID]; ok {
			p.CreatedAt = existing.CreatedAt
		} else if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		p.UpdatedAt = now
		st.products[p.ID] = &p
		return nil
	})
}
