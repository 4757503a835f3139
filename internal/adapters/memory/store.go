// internal/adapters/memory/store.go
package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ammerola/resell-orders/internal/core/domain"
	"github.com/ammerola/resell-orders/internal/core/ports"
	"github.com/google/uuid"
)

// state is one version of the store's data. Stored values are never
// mutated in place; writers replace the pointer, so a shallow map copy is
// enough to snapshot it.
type state struct {
	orders         map[uuid.UUID]*domain.Order
	inventory      map[uuid.UUID]*domain.InventoryRecord
	products       map[uuid.UUID]*domain.Product
	purchases      map[uuid.UUID]*domain.Purchase
	movements      []domain.StockMovement
	nextMovementID int64
}

func newState() *state {
	return &state{
		orders:    make(map[uuid.UUID]*domain.Order),
		inventory: make(map[uuid.UUID]*domain.InventoryRecord),
		products:  make(map[uuid.UUID]*domain.Product),
		purchases: make(map[uuid.UUID]*domain.Purchase),
	}
}

func (s *state) clone() *state {
	c := &state{
		orders:         make(map[uuid.UUID]*domain.Order, len(s.orders)),
		inventory:      make(map[uuid.UUID]*domain.InventoryRecord, len(s.inventory)),
		products:       make(map[uuid.UUID]*domain.Product, len(s.products)),
		purchases:      make(map[uuid.UUID]*domain.Purchase, len(s.purchases)),
		movements:      append([]domain.StockMovement(nil), s.movements...),
		nextMovementID: s.nextMovementID,
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.inventory {
		c.inventory[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.purchases {
		c.purchases[k] = v
	}
	return c
}

// Store is an in-process implementation of the order, inventory and
// product stores. Units of work run one at a time against a private copy
// of the data that replaces the live copy only when fn succeeds.
type Store struct {
	mu     sync.Mutex
	data   *state
	logger *slog.Logger
}

// Statically assert that *Store implements the UnitOfWork interface.
var _ ports.UnitOfWork = (*Store)(nil)

// NewStore creates an empty store
func NewStore(logger *slog.Logger) *Store {
	return &Store{
		data:   newState(),
		logger: logger.With(slog.String("repository", "memory")),
	}
}

// Do runs fn against a snapshot and publishes it on success
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, stores ports.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	stores := ports.Stores{
		Orders:    &OrderRepository{tx: snapshot},
		Inventory: &InventoryRepository{tx: snapshot, logger: s.logger},
	}

	if err := fn(ctx, stores); err != nil {
		s.logger.DebugContext(ctx, "unit of work rolled back", slog.String("error", err.Error()))
		return err
	}

	s.data = snapshot
	return nil
}

// Orders returns an order repository operating on committed data
func (s *Store) Orders() *OrderRepository {
	return &OrderRepository{store: s}
}

// Inventory returns an inventory repository operating on committed data
func (s *Store) Inventory() *InventoryRepository {
	return &InventoryRepository{store: s, logger: s.logger}
}

// Products returns the catalog repository
func (s *Store) Products() *ProductRepository {
	return &ProductRepository{store: s}
}

// Movements returns a copy of the stock ledger
func (s *Store) Movements() []domain.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.StockMovement(nil), s.data.movements...)
}

// view runs fn on the unit-of-work snapshot when tx is set, otherwise on
// the committed data under the store lock.
func view(store *Store, tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	return fn(store.data)
}
