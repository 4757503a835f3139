// internal/adapters/memory/inventory_repository.go
package memory

import (
	"context"
	"log/slog"
	"time"

	"github.com/ammerola/resell-orders/internal/core/domain"
	"github.com/ammerola/resell-orders/internal/core/ports"
	"github.com/google/uuid"
)

// InventoryRepository implements ports.InventoryRepository in memory
type InventoryRepository struct {
	store  *Store
	tx     *state
	logger *slog.Logger
}

// Statically assert that *InventoryRepository implements the InventoryRepository interface.
var _ ports.InventoryRepository = (*InventoryRepository)(nil)

// FindByProductID returns the record, or nil when absent
func (r *InventoryRepository) FindByProductID(ctx context.Context, productID uuid.UUID) (*domain.InventoryRecord, error) {
	var found *domain.InventoryRecord
	err := view(r.store, r.tx, func(st *state) error {
		if rec, ok := st.inventory[productID]; ok {
			c := *rec
			found = &c
		}
		return nil
	})
	return found, err
}

// FindByProductIDs returns the records that exist, keyed by product id
func (r *InventoryRepository) FindByProductIDs(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]*domain.InventoryRecord, error) {
	result := make(map[uuid.UUID]*domain.InventoryRecord, len(productIDs))
	err := view(r.store, r.tx, func(st *state) error {
		for _, id := range productIDs {
			if rec, ok := st.inventory[id]; ok {
				c := *rec
				result[id] = &c
			}
		}
		return nil
	})
	return result, err
}

// BulkIncrement validates the whole batch first and applies it only when
// every entry can be applied.
func (r *InventoryRepository) BulkIncrement(ctx context.Context, batch domain.AdjustmentBatch) ([]domain.StockLevel, error) {
	if batch.Empty() {
		return nil, nil
	}

	var levels []domain.StockLevel
	err := view(r.store, r.tx, func(st *state) error {
		var failed []domain.FailedAdjustment
		for _, d := range batch.Deltas {
			rec, ok := st.inventory[d.ProductID]
			if !ok {
				failed = append(failed, domain.FailedAdjustment{
					ProductID: d.ProductID,
					Delta:     d.Delta,
					Reason:    domain.FailureProductNotFound,
				})
				continue
			}
			if !batch.AllowNegative && d.Delta < 0 && rec.Count+d.Delta < 0 {
				count := rec.Count
				failed = append(failed, domain.FailedAdjustment{
					ProductID: d.ProductID,
					Delta:     d.Delta,
					Reason:    domain.FailureInsufficientStock,
					Count:     &count,
				})
			}
		}
		if len(failed) > 0 {
			return &domain.InventoryApplicationError{
				OrderID: batch.OrderID,
				Failed:  failed,
				Valid:   len(batch.Deltas) - len(failed),
			}
		}

		now := time.Now().UTC()
		levels = make([]domain.StockLevel, 0, len(batch.Deltas))
		for _, d := range batch.Deltas {
			updated := *st.inventory[d.ProductID]
			updated.Count += d.Delta
			updated.UpdatedAt = now
			st.inventory[d.ProductID] = &updated
			levels = append(levels, domain.StockLevel{ProductID: d.ProductID, Count: updated.Count})
			st.appendMovement(d.ProductID, orderRef(batch.OrderID), d.Delta, batch.Reason, now)
		}
		return nil
	})
	if err != nil {
		r.logger.DebugContext(ctx, "stock batch rejected",
			slog.String("order_id", batch.OrderID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}
	return levels, nil
}

// RecordPurchase adds purchased units, creating the record on first intake
func (r *InventoryRepository) RecordPurchase(ctx context.Context, purchase *domain.Purchase) (*domain.InventoryRecord, error) {
	var result *domain.InventoryRecord
	err := view(r.store, r.tx, func(st *state) error {
		if _, ok := st.products[purchase.ProductID]; !ok {
			return domain.ErrProductNotFound
		}

		now := time.Now().UTC()
		rec := &domain.InventoryRecord{
			ProductID: purchase.ProductID,
			OwnerID:   purchase.OwnerID,
			CreatedAt: now,
		}
		if existing, ok := st.inventory[purchase.ProductID]; ok {
			c := *existing
			rec = &c
		}
		rec.Count += purchase.Count
		rec.SalePrice = purchase.SalePrice
		rec.UpdatedAt = now
		st.inventory[purchase.ProductID] = rec

		p := *purchase
		st.purchases[p.ID] = &p
		st.appendMovement(purchase.ProductID, nil, purchase.Count, domain.ReasonPurchase, now)

		c := *rec
		result = &c
		return nil
	})
	return result, err
}

// PruneMovements drops ledger rows created before the cutoff
func (r *InventoryRepository) PruneMovements(ctx context.Context, before time.Time) (int64, error) {
	var removed int64
	err := view(r.store, r.tx, func(st *state) error {
		kept := st.movements[:0:0]
		for _, m := range st.movements {
			if m.CreatedAt.Before(before) {
				removed++
				continue
			}
			kept = append(kept, m)
		}
		st.movements = kept
		return nil
	})
	return removed, err
}

func (s *state) appendMovement(productID uuid.UUID, orderID *uuid.UUID, delta int, reason domain.MovementReason, at time.Time) {
	s.nextMovementID++
	s.movements = append(s.movements, domain.StockMovement{
		ID:        s.nextMovementID,
		ProductID: productID,
		OrderID:   orderID,
		Delta:     delta,
		Reason:    reason,
		CreatedAt: at,
	})
}

func orderRef(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
