// internal/core/services/inventory.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ammerola/resell-orders/internal/core/domain"
	"github.com/ammerola/resell-orders/internal/core/ports"
	"github.com/google/uuid"
)

// InventoryService handles stock intake and lookups
type InventoryService struct {
	uow    ports.UnitOfWork
	repo   ports.InventoryRepository
	cache  ports.CacheRepository
	logger *slog.Logger
}

// Statically assert that *InventoryService implements the InventoryService interface.
var _ ports.InventoryService = (*InventoryService)(nil)

// NewInventoryService creates a new inventory service. cache may be nil.
func NewInventoryService(uow ports.UnitOfWork, repo ports.InventoryRepository, cache ports.CacheRepository,
	logger *slog.Logger) *InventoryService {
	return &InventoryService{
		uow:    uow,
		repo:   repo,
		cache:  cache,
		logger: logger.With(slog.String("service", "inventory")),
	}
}

// RecordPurchase adds purchased units to a product's stock and sets its
// sale price
func (s *InventoryService) RecordPurchase(ctx context.Context, purchase *domain.Purchase) (*domain.InventoryRecord, error) {
	if purchase == nil {
		return nil, fmt.Errorf("validation failed: %w", domain.ErrInvalidPurchase)
	}
	if err := purchase.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	purchase.PrepareForStorage()

	var record *domain.InventoryRecord
	err := s.uow.Do(ctx, func(ctx context.Context, stores ports.Stores) error {
		var err error
		record, err = stores.Inventory.RecordPurchase(ctx, purchase)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record purchase: %w", err)
	}

	s.logger.InfoContext(ctx, "purchase recorded",
		slog.String("purchase_id", purchase.ID.String()),
		slog.String("product_id", purchase.ProductID.String()),
		slog.Int("count", purchase.Count),
		slog.Int("stock", record.Count))

	// cached order views carry the old sale price
	if s.cache != nil {
		if err := s.cache.DeletePattern(ctx, orderCachePattern); err != nil {
			s.logger.WarnContext(ctx, "failed to invalidate order views",
				slog.String("error", err.Error()))
		}
	}

	return record, nil
}

// GetStock returns the inventory record of a product with its catalog entry
func (s *InventoryService) GetStock(ctx context.Context, productID uuid.UUID) (*domain.StockItem, error) {
	item, err := s.repo.FindStockItem(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stock: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}
	return item, nil
}

// ListStock returns a filtered page of stock records
func (s *InventoryService) ListStock(ctx context.Context, params ports.StockListParams) (*ports.StockListResult, error) {
	params.Normalize()

	items, total, err := s.repo.ListStock(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock: %w", err)
	}
	if items == nil {
		items = []*domain.StockItem{}
	}

	return &ports.StockListResult{
		Items:      items,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: total,
		TotalPages: totalPages(total, params.PageSize),
	}, nil
}

// GetPurchase returns one purchase with its catalog entry
func (s *InventoryService) GetPurchase(ctx context.Context, id uuid.UUID) (*domain.PurchaseItem, error) {
	item, err := s.repo.FindPurchaseByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrPurchaseNotFound, id)
	}
	return item, nil
}

// ListPurchases returns a filtered page of purchase history
func (s *InventoryService) ListPurchases(ctx context.Context, params ports.PurchaseListParams) (*ports.PurchaseListResult, error) {
	params.Normalize()

	items, total, err := s.repo.ListPurchases(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	if items == nil {
		items = []*domain.PurchaseItem{}
	}

	return &ports.PurchaseListResult{
		Items:      items,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: total,
		TotalPages: totalPages(total, params.PageSize),
	}, nil
}

// PruneMovements removes ledger rows older than olderThan
func (s *InventoryService) PruneMovements(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("retention must be positive, got %s", olderThan)
	}

	cutoff := time.Now().UTC().Add(-olderThan)
	removed, err := s.repo.PruneMovements(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune stock movements: %w", err)
	}

	s.logger.InfoContext(ctx, "pruned stock movements",
		slog.Int64("removed", removed),
		slog.Time("before", cutoff))

	return removed, nil
}
