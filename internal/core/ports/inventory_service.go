// internal/core/ports/inventory_service.go
package ports

import (
	"context"
	"time"

	"github.com/ammerola/resell-orders/internal/core/domain"
	"github.com/google/uuid"
)

// InventoryService defines the application service port for stock intake
// and lookups.
type InventoryService interface {
	RecordPurchase(ctx context.Context, purchase *domain.Purchase) (*domain.InventoryRecord, error)
	GetStock(ctx context.Context, productID uuid.UUID) (*domain.StockItem, error)
	ListStock(ctx context.Context, params StockListParams) (*StockListResult, error)
	GetPurchase(ctx context.Context, id uuid.UUID) (*domain.PurchaseItem, error)
	ListPurchases(ctx context.Context, params PurchaseListParams) (*PurchaseListResult, error)
	PruneMovements(ctx context.Context, olderThan time.Duration) (int64, error)
}

// StockListResult holds a page of stock records
type StockListResult struct {
	Items      []*domain.StockItem `json:"items"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	TotalCount int64               `json:"total_count"`
	TotalPages int                 `json:"total_pages"`
}

// PurchaseListResult holds a page of purchase history
type PurchaseListResult struct {
	Items      []*domain.PurchaseItem `json:"items"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"page_size"`
	TotalCount int64                  `json:"total_count"`
	TotalPages int                    `json:"total_pages"`
}
