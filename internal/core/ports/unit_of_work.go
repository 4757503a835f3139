// internal/core/ports/unit_of_work.go
package ports

import "context"

// Stores groups the repositories bound to one unit of work
type Stores struct {
	Orders    OrderRepository
	Inventory InventoryRepository
}

// UnitOfWork runs fn so that every write made through stores commits
// together or not at all. A non-nil error from fn rolls everything back
// and is returned unchanged.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}
