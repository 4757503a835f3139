// internal/adapters/memory/order_repository.go
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ammerola/resell-orders/internal/core/domain"
	"github.com/ammerola/resell-orders/internal/core/ports"
	"github.com/google/uuid"
)

// OrderRepository implements ports.OrderRepository in memory
type OrderRepository struct {
	store *Store
	tx    *state
}

// Statically assert that *OrderRepository implements the OrderRepository interface.
var _ ports.OrderRepository = (*OrderRepository)(nil)

// FindByID returns a copy of the order, or nil when absent
func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var found *domain.Order
	err := view(r.store, r.tx, func(st *state) error {
		if o, ok := st.orders[id]; ok {
			found = o.Clone()
		}
		return nil
	})
	return found, err
}

// FindForUpdate is FindByID; units of work are already serialized
func (r *OrderRepository) FindForUpdate(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return r.FindByID(ctx, id)
}

// Insert stores a new order
func (r *OrderRepository) Insert(ctx context.Context, order *domain.Order) error {
	return view(r.store, r.tx, func(st *state) error {
		if _, exists := st.orders[order.ID]; exists {
			return fmt.Errorf("order %s already exists", order.ID)
		}
		st.orders[order.ID] = order.Clone()
		return nil
	})
}

// UpdateByID replaces a stored order
func (r *OrderRepository) UpdateByID(ctx context.Context, order *domain.Order) error {
	return view(r.store, r.tx, func(st *state) error {
		if _, exists := st.orders[order.ID]; !exists {
			return domain.ErrOrderNotFound
		}
		st.orders[order.ID] = order.Clone()
		return nil
	})
}

// DeleteByID removes an order
func (r *OrderRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return view(r.store, r.tx, func(st *state) error {
		if _, exists := st.orders[id]; !exists {
			return domain.ErrOrderNotFound
		}
		delete(st.orders, id)
		return nil
	})
}

// List filters, sorts and paginates orders
func (r *OrderRepository) List(ctx context.Context, params ports.OrderListParams) ([]*domain.Order, int64, error) {
	params.Normalize()

	var matched []*domain.Order
	err := view(r.store, r.tx, func(st *state) error {
		for _, o := range st.orders {
			if matches(o, params) {
				matched = append(matched, o.Clone())
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if params.SortOrder == "desc" {
			a, b = b, a
		}
		if lessBy(a, b, params.SortBy) {
			return true
		}
		if lessBy(b, a, params.SortBy) {
			return false
		}
		return a.ID.String() < b.ID.String()
	})

	total := int64(len(matched))
	start := params.Offset()
	if start >= len(matched) {
		return []*domain.Order{}, total, nil
	}
	end := start + params.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func matches(o *domain.Order, p ports.OrderListParams) bool {
	if p.Status != "" && o.Status != p.Status {
		return false
	}
	if p.OwnerID != nil && o.OwnerID != *p.OwnerID {
		return false
	}
	if p.AssigneeID != nil && (o.AssigneeID == nil || *o.AssigneeID != *p.AssigneeID) {
		return false
	}
	if p.CreatedAfter != nil && o.CreatedAt.Before(*p.CreatedAfter) {
		return false
	}
	if p.CreatedBefore != nil && !o.CreatedAt.Before(*p.CreatedBefore) {
		return false
	}
	if p.Search != "" {
		q := strings.ToLower(p.Search)
		if !strings.Contains(strings.ToLower(o.Customer.Name), q) &&
			!strings.Contains(strings.ToLower(o.Customer.Phone), q) {
			return false
		}
	}
	return true
}

func lessBy(a, b *domain.Order, field string) bool {
	switch field {
	case "updated_at":
		return a.UpdatedAt.Before(b.UpdatedAt)
	case "status":
		return a.Status < b.Status
	case "customer_name":
		return a.Customer.Name < b.Customer.Name
	case "delivery_date":
		if a.DeliveryDate == nil || b.DeliveryDate == nil {
			return a.DeliveryDate == nil && b.DeliveryDate != nil
		}
		return a.DeliveryDate.Before(*b.DeliveryDate)
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}
