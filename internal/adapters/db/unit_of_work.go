// internal/adapters/db/unit_of_work.go
package db

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/ammerola/resell-orders/internal/core/ports"
)

// UnitOfWork runs work against repositories bound to one transaction
type UnitOfWork struct {
	db     *Database
	logger *slog.Logger
}

// Statically assert that *UnitOfWork implements the UnitOfWork interface.
var _ ports.UnitOfWork = (*UnitOfWork)(nil)

// NewUnitOfWork creates a transactional unit of work
func NewUnitOfWork(db *Database, logger *slog.Logger) *UnitOfWork {
	return &UnitOfWork{db: db, logger: logger}
}

// Do runs fn in a transaction; the order row lock taken by FindForUpdate
// serializes concurrent mutations of the same order
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, stores ports.Stores) error) error {
	return u.db.Transaction(ctx, func(tx pgx.Tx) error {
		return fn(ctx, ports.Stores{
			Orders:    NewOrderRepository(tx, u.logger),
			Inventory: NewInventoryRepository(tx, u.logger),
		})
	})
}
