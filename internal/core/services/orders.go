// internal/core/services/orders.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ammerola/resell-orders/internal/core/domain"
	"github.com/ammerola/resell-orders/internal/core/ports"
	"github.com/google/uuid"
)

// OrderServiceParams holds the dependencies of OrderService.
// Cache and Publisher are optional.
type OrderServiceParams struct {
	UnitOfWork ports.UnitOfWork
	Orders     ports.OrderRepository
	Products   ports.ProductRepository
	Inventory  ports.InventoryRepository
	Cache      ports.CacheRepository
	Publisher  ports.EventPublisher
	Config     OrderServiceConfig
	Logger     *slog.Logger
}

// OrderService is the order–inventory reconciliation engine. Every
// mutation applies its stock batch and its order write in one unit of
// work, inventory first.
type OrderService struct {
	uow       ports.UnitOfWork
	orders    ports.OrderRepository
	products  ports.ProductRepository
	inventory ports.InventoryRepository
	cache     ports.CacheRepository
	publisher ports.EventPublisher
	config    OrderServiceConfig
	logger    *slog.Logger
}

// Statically assert that *OrderService implements the OrderService interface.
var _ ports.OrderService = (*OrderService)(nil)

// NewOrderService creates a new order service
func NewOrderService(p OrderServiceParams) *OrderService {
	if p.Config.NegativePolicy == "" {
		p.Config.NegativePolicy = NegativeReject
	}
	return &OrderService{
		uow:       p.UnitOfWork,
		orders:    p.Orders,
		products:  p.Products,
		inventory: p.Inventory,
		cache:     p.Cache,
		publisher: p.Publisher,
		config:    p.Config,
		logger:    p.Logger.With(slog.String("service", "orders")),
	}
}

// CreateOrder reserves stock for the order's line items and stores it
// with status added.
func (s *OrderService) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, fmt.Errorf("validation failed: %w", domain.ErrEmptyLineItems)
	}
	if err := order.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	created := order.Clone()
	created.ID = uuid.Nil
	created.Status = domain.StatusAdded
	created.CreatedAt = time.Time{}
	created.PrepareForStorage()

	deltas := domain.ComputeDeltas(domain.TransitionCreate, nil, domain.MergeLineItems(created.LineItems))

	var levels []domain.StockLevel
	err := s.uow.Do(ctx, func(ctx context.Context, stores ports.Stores) error {
		var err error
		levels, err = s.applyDeltas(ctx, stores.Inventory, created.ID, domain.ReasonOrderCreated, deltas)
		if err != nil {
			return err
		}
		if err := stores.Orders.Insert(ctx, created); err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logFailure(ctx, "create order failed", created.ID, err)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", created.ID.String()),
		slog.Int("line_items", len(created.LineItems)),
		slog.Int("adjustments", len(deltas)))

	s.afterCommit(ctx, created.ID, deltas, levels)
	return created, nil
}

// EditOrder applies a partial update. A line-item change and a status
// change in the same patch are reconciled as two consecutive transitions
// against the stored order and applied as a single stock batch.
func (s *OrderService) EditOrder(ctx context.Context, id uuid.UUID, patch *domain.OrderPatch) (*domain.Order, error) {
	if patch == nil {
		patch = &domain.OrderPatch{}
	}
	if err := patch.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var (
		updated *domain.Order
		deltas  []domain.StockDelta
		levels  []domain.StockLevel
	)
	err := s.uow.Do(ctx, func(ctx context.Context, stores ports.Stores) error {
		current, err := stores.Orders.FindForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load order: %w", err)
		}
		if current == nil {
			return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
		}

		if patch.Status != nil {
			if err := current.Status.CanTransitionTo(*patch.Status); err != nil {
				return err
			}
		}

		var reason domain.MovementReason
		deltas, reason = planEdit(current, patch)

		next := current.Clone()
		patch.ApplyTo(next)

		levels, err = s.applyDeltas(ctx, stores.Inventory, id, reason, deltas)
		if err != nil {
			return err
		}
		if err := stores.Orders.UpdateByID(ctx, next); err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		updated = next
		return nil
	})
	if err != nil {
		s.logFailure(ctx, "edit order failed", id, err)
		return nil, fmt.Errorf("failed to edit order: %w", err)
	}

	s.logger.InfoContext(ctx, "order edited",
		slog.String("order_id", id.String()),
		slog.String("status", string(updated.Status)),
		slog.Int("adjustments", len(deltas)))

	s.invalidate(ctx, id)
	s.afterCommit(ctx, id, deltas, levels)
	return updated, nil
}

// DeleteOrder restocks the order's current line items, whatever its
// status, and removes it.
func (s *OrderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	err := s.uow.Do(ctx, func(ctx context.Context, stores ports.Stores) error {
		current, err := stores.Orders.FindForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load order: %w", err)
		}
		if current == nil {
			return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
		}

		deltas := domain.ComputeDeltas(domain.TransitionDelete, domain.MergeLineItems(current.LineItems), nil)
		if _, err := s.applyDeltas(ctx, stores.Inventory, id, domain.ReasonOrderDeleted, deltas); err != nil {
			return err
		}
		if err := stores.Orders.DeleteByID(ctx, id); err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logFailure(ctx, "delete order failed", id, err)
		return fmt.Errorf("failed to delete order: %w", err)
	}

	s.logger.InfoContext(ctx, "order deleted", slog.String("order_id", id.String()))
	s.invalidate(ctx, id)
	return nil
}

// GetOrder returns the order joined with catalog and price data
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.OrderView, error) {
	key := OrderCacheKey(id)
	if s.cache != nil {
		var cached domain.OrderView
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, ports.ErrCacheMiss) {
			s.logger.WarnContext(ctx, "order cache read failed",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}

	ids := productIDs(order.LineItems)
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	records, err := s.inventory.FindByProductIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}

	view := domain.BuildOrderView(order, products, records)

	if s.cache != nil {
		if err := s.cache.SetWithTTL(ctx, key, view, s.config.CacheTTL); err != nil {
			s.logger.WarnContext(ctx, "order cache write failed",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
	}

	return view, nil
}

// ListOrders returns a filtered page of orders
func (s *OrderService) ListOrders(ctx context.Context, params ports.OrderListParams) (*ports.OrderListResult, error) {
	params.Normalize()

	orders, total, err := s.orders.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if orders == nil {
		orders = []*domain.Order{}
	}

	return &ports.OrderListResult{
		Items:      orders,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: total,
		TotalPages: totalPages(total, params.PageSize),
	}, nil
}

// planEdit computes the single batch for an edit. Step one diffs the line
// items unless the order is cancelled and so holds no reservation. Step
// two applies the status transition over the post-step-one items.
func planEdit(current *domain.Order, patch *domain.OrderPatch) ([]domain.StockDelta, domain.MovementReason) {
	before := domain.MergeLineItems(current.LineItems)
	after := before
	reason := domain.ReasonOrderEdited

	var steps [][]domain.StockDelta
	if patch.ChangesLineItems() {
		after = domain.MergeLineItems(patch.LineItems)
		if current.Status != domain.StatusCancelled {
			steps = append(steps, domain.ComputeDeltas(domain.TransitionEdit, before, after))
		}
	}

	if patch.Status != nil {
		wasCancelled := current.Status == domain.StatusCancelled
		willBeCancelled := *patch.Status == domain.StatusCancelled
		switch {
		case !wasCancelled && willBeCancelled:
			steps = append(steps, domain.ComputeDeltas(domain.TransitionCancel, after, nil))
			reason = domain.ReasonOrderCancelled
		case wasCancelled && !willBeCancelled:
			steps = append(steps, domain.ComputeDeltas(domain.TransitionReactivate, after, nil))
			reason = domain.ReasonOrderReactivated
		}
	}

	return domain.CombineDeltas(steps...), reason
}

func (s *OrderService) applyDeltas(ctx context.Context, inv ports.InventoryRepository, orderID uuid.UUID,
	reason domain.MovementReason, deltas []domain.StockDelta) ([]domain.StockLevel, error) {
	batch := domain.AdjustmentBatch{
		OrderID:       orderID,
		Reason:        reason,
		Deltas:        deltas,
		AllowNegative: s.config.NegativePolicy == NegativeAllow,
	}
	if batch.Empty() {
		return nil, nil
	}

	levels, err := inv.BulkIncrement(ctx, batch)
	if err != nil {
		var appErr *domain.InventoryApplicationError
		if errors.As(err, &appErr) {
			appErr.OrderID = orderID
			return nil, appErr
		}
		return nil, fmt.Errorf("failed to apply stock batch: %w", err)
	}
	return levels, nil
}

// afterCommit publishes low-stock alerts for products this batch
// decremented. Failures are logged only; the order change is committed.
func (s *OrderService) afterCommit(ctx context.Context, orderID uuid.UUID, deltas []domain.StockDelta, levels []domain.StockLevel) {
	if s.publisher == nil || len(levels) == 0 {
		return
	}

	decremented := make(map[uuid.UUID]bool, len(deltas))
	for _, d := range deltas {
		if d.Delta < 0 {
			decremented[d.ProductID] = true
		}
	}

	for _, level := range levels {
		if !decremented[level.ProductID] || level.Count > s.config.LowStockThreshold {
			continue
		}
		alert := domain.LowStockAlert{
			ProductID: level.ProductID,
			OrderID:   orderID,
			Count:     level.Count,
			Threshold: s.config.LowStockThreshold,
		}
		if err := s.publisher.PublishLowStock(ctx, alert); err != nil {
			s.logger.WarnContext(ctx, "failed to publish low stock alert",
				slog.String("product_id", level.ProductID.String()),
				slog.String("error", err.Error()))
		}
	}
}

func (s *OrderService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, OrderCacheKey(id)); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate order cache",
			slog.String("order_id", id.String()),
			slog.String("error", err.Error()))
	}
}

func (s *OrderService) logFailure(ctx context.Context, msg string, id uuid.UUID, err error) {
	level := slog.LevelError
	switch domain.KindOf(err) {
	case domain.KindValidation, domain.KindNotFound, domain.KindInventoryApplication:
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, msg,
		slog.String("order_id", id.String()),
		slog.String("kind", string(domain.KindOf(err))),
		slog.String("error", err.Error()))
}

const orderCachePattern = "order:*"

// OrderCacheKey is the cache key of an order view
func OrderCacheKey(id uuid.UUID) string {
	return "order:" + id.String()
}

func productIDs(items []domain.LineItem) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}
	return ids
}
