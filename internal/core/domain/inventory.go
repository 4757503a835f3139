// internal/core/domain/inventory.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryRecord is the stock counter of a single product
type InventoryRecord struct {
	ProductID uuid.UUID       `json:"product_id"`
	OwnerID   uuid.UUID       `json:"owner_id"`
	Count     int             `json:"count"`
	SalePrice decimal.Decimal `json:"sale_price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// StockItem is a stock record joined with its catalog entry
type StockItem struct {
	InventoryRecord
	Product *Product `json:"product,omitempty"`
}

// StockDelta is a signed adjustment to one product's count
type StockDelta struct {
	ProductID uuid.UUID `json:"product_id"`
	Delta     int       `json:"delta"`
}

// StockLevel is a product's count after a batch was applied
type StockLevel struct {
	ProductID uuid.UUID `json:"product_id"`
	Count     int       `json:"count"`
}

// MovementReason labels a stock movement in the ledger
type MovementReason string

// Movement reasons
const (
	ReasonOrderCreated     MovementReason = "order_created"
	ReasonOrderEdited      MovementReason = "order_edited"
	ReasonOrderCancelled   MovementReason = "order_cancelled"
	ReasonOrderReactivated MovementReason = "order_reactivated"
	ReasonOrderDeleted     MovementReason = "order_deleted"
	ReasonPurchase         MovementReason = "purchase"
)

// AdjustmentBatch is the unit handed to the inventory store. Deltas are
// applied together or not at all.
type AdjustmentBatch struct {
	OrderID       uuid.UUID
	Reason        MovementReason
	Deltas        []StockDelta
	AllowNegative bool
}

// Empty reports whether the batch has nothing to apply
func (b AdjustmentBatch) Empty() bool {
	return len(b.Deltas) == 0
}

// StockMovement is one ledger row
type StockMovement struct {
	ID        int64          `json:"id"`
	ProductID uuid.UUID      `json:"product_id"`
	OrderID   *uuid.UUID     `json:"order_id,omitempty"`
	Delta     int            `json:"delta"`
	Reason    MovementReason `json:"reason"`
	CreatedAt time.Time      `json:"created_at"`
}

// Purchase is a stock intake event for a product
type Purchase struct {
	ID             uuid.UUID       `json:"id"`
	ProductID      uuid.UUID       `json:"product_id"`
	OwnerID        uuid.UUID       `json:"owner_id"`
	Count          int             `json:"count"`
	PurchasedPrice decimal.Decimal `json:"purchased_price"`
	SalePrice      decimal.Decimal `json:"sale_price"`
	CreatedAt      time.Time       `json:"created_at"`
}

// PurchaseItem is a purchase joined with its catalog entry
type PurchaseItem struct {
	Purchase
	Product *Product `json:"product,omitempty"`
}

// Validate checks the purchase fields
func (p *Purchase) Validate() error {
	if p.ProductID == uuid.Nil {
		return fmt.Errorf("%w: product_id is required", ErrInvalidPurchase)
	}
	if p.OwnerID == uuid.Nil {
		return fmt.Errorf("%w: owner_id is required", ErrInvalidPurchase)
	}
	if p.Count <= 0 {
		return fmt.Errorf("%w: count must be positive", ErrInvalidPurchase)
	}
	if p.Count > MaxQuantity {
		return fmt.Errorf("%w: count exceeds %d", ErrInvalidPurchase, MaxQuantity)
	}
	if p.PurchasedPrice.IsNegative() {
		return fmt.Errorf("%w: purchased_price cannot be negative", ErrInvalidPurchase)
	}
	if p.SalePrice.IsNegative() {
		return fmt.Errorf("%w: sale_price cannot be negative", ErrInvalidPurchase)
	}
	return nil
}

// PrepareForStorage fills identifiers and timestamps
func (p *Purchase) PrepareForStorage() {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
}

// LowStockAlert is raised when a product's count drops to or below a threshold
type LowStockAlert struct {
	ProductID uuid.UUID `json:"product_id"`
	OrderID   uuid.UUID `json:"order_id,omitempty"`
	Count     int       `json:"count"`
	Threshold int       `json:"threshold"`
}
