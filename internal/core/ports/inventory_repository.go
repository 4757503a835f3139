// internal/core/ports/inventory_repository.go
package ports

import (
	"context"
	"time"

	"github.com/ammerola/resell-orders/internal/core/domain"
	"github.com/google/uuid"
)

// InventoryRepository defines the persistence port for stock counters and
// purchase history. Find methods return (nil, nil) when nothing matches.
type InventoryRepository interface {
	FindByProductID(ctx context.Context, productID uuid.UUID) (*domain.InventoryRecord, error)
	FindByProductIDs(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]*domain.InventoryRecord, error)
	// FindStockItem returns the record joined with its catalog entry
	FindStockItem(ctx context.Context, productID uuid.UUID) (*domain.StockItem, error)
	ListStock(ctx context.Context, params StockListParams) ([]*domain.StockItem, int64, error)

	// BulkIncrement applies every delta of the batch or none of them.
	// On failure it returns *domain.InventoryApplicationError listing the
	// entries that could not be applied.
	BulkIncrement(ctx context.Context, batch domain.AdjustmentBatch) ([]domain.StockLevel, error)

	// RecordPurchase adds purchased units to the product's counter,
	// creating the record on first intake.
	RecordPurchase(ctx context.Context, purchase *domain.Purchase) (*domain.InventoryRecord, error)
	FindPurchaseByID(ctx context.Context, id uuid.UUID) (*domain.PurchaseItem, error)
	ListPurchases(ctx context.Context, params PurchaseListParams) ([]*domain.PurchaseItem, int64, error)

	// PruneMovements removes ledger rows older than before
	PruneMovements(ctx context.Context, before time.Time) (int64, error)
}

// Catalog fields a stock or purchase search may target
const (
	SearchByName  = "name"
	SearchByColor = "color"
	SearchBySmell = "smell"
	SearchBySlug  = "slug"
)

func normalizeSearchField(field string) string {
	switch field {
	case SearchByName, SearchByColor, SearchBySmell, SearchBySlug:
		return field
	}
	return SearchByName
}

// StockListParams holds parameters for listing stock records
type StockListParams struct {
	OwnerID     *uuid.UUID
	ProductType domain.ProductType
	// Search matches SearchField of the catalog entry, case-insensitively
	Search      string
	SearchField string
	// MaxCount keeps records whose count is at or below it
	MaxCount  *int
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// Normalize fills pagination and sort defaults. Stock is listed scarcest
// first unless asked otherwise.
func (p *StockListParams) Normalize() {
	normalizePage(&p.Page, &p.PageSize)
	p.SearchField = normalizeSearchField(p.SearchField)
	switch p.SortBy {
	case "count", "sale_price", "updated_at", "name":
	default:
		p.SortBy = "count"
	}
	if p.SortOrder != "desc" {
		p.SortOrder = "asc"
	}
}

// Offset returns the row offset of the requested page
func (p StockListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PurchaseListParams holds parameters for listing purchase history
type PurchaseListParams struct {
	OwnerID       *uuid.UUID
	ProductID     *uuid.UUID
	Search        string
	SearchField   string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	SortBy        string
	SortOrder     string
	Page          int
	PageSize      int
}

// Normalize fills pagination and sort defaults; newest purchases first
func (p *PurchaseListParams) Normalize() {
	normalizePage(&p.Page, &p.PageSize)
	p.SearchField = normalizeSearchField(p.SearchField)
	switch p.SortBy {
	case "created_at", "count", "purchased_price", "sale_price", "name":
	default:
		p.SortBy = "created_at"
	}
	if p.SortOrder != "asc" {
		p.SortOrder = "desc"
	}
}

// Offset returns the row offset of the requested page
func (p PurchaseListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}
