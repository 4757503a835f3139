package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/resell-orders/internal/adapters/memory"
	"github.com/ammerola/resell-orders/internal/core/domain"
	"github.com/ammerola/resell-orders/internal/core/ports"
	"github.com/ammerola/resell-orders/test/helpers"
)

func newStoreWithStock(t *testing.T, counts map[uuid.UUID]int) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore(helpers.TestLogger())

	for id, count := range counts {
		require.NoError(t, store.Products().Upsert(ctx, helpers.CreateTestProduct(func(p *domain.Product) {
			p.ID = id
		})))
		_, err := store.Inventory().RecordPurchase(ctx, helpers.CreateTestPurchase(id, count))
		require.NoError(t, err)
	}
	return store
}

func countOf(t *testing.T, store *memory.Store, id uuid.UUID) int {
	t.Helper()
	rec, err := store.Inventory().FindByProductID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, rec)
	return rec.Count
}

func TestStore_Do_CommitsOnSuccess(t *testing.T) {
	p := uuid.New()
	store := newStoreWithStock(t, map[uuid.UUID]int{p: 10})
	order := helpers.CreateTestOrder(func(o *domain.Order) {
		o.LineItems = []domain.LineItem{{ProductID: p, Qty: 3}}
	})

	err := store.Do(context.Background(), func(ctx context.Context, s ports.Stores) error {
		_, err := s.Inventory.BulkIncrement(ctx, domain.AdjustmentBatch{
			OrderID: order.ID,
			Reason:  domain.ReasonOrderCreated,
			Deltas:  []domain.StockDelta{{ProductID: p, Delta: -3}},
		})
		if err != nil {
			return err
		}
		return s.Orders.Insert(ctx, order)
	})
	require.NoError(t, err)

	assert.Equal(t, 7, countOf(t, store, p))
	stored, err := store.Orders().FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, order.LineItems, stored.LineItems)
}

func TestStore_Do_RollsBackOnError(t *testing.T) {
	p := uuid.New()
	store := newStoreWithStock(t, map[uuid.UUID]int{p: 10})
	order := helpers.CreateTestOrder()
	boom := errors.New("boom")

	err := store.Do(context.Background(), func(ctx context.Context, s ports.Stores) error {
		_, err := s.Inventory.BulkIncrement(ctx, domain.AdjustmentBatch{
			Deltas: []domain.StockDelta{{ProductID: p, Delta: -4}},
		})
		require.NoError(t, err)
		require.NoError(t, s.Orders.Insert(ctx, order))
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, 10, countOf(t, store, p))
	stored, err := store.Orders().FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestStore_Do_CancelledContext(t *testing.T) {
	store := memory.NewStore(helpers.TestLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := store.Do(ctx, func(ctx context.Context, s ports.Stores) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestInventoryRepository_BulkIncrement(t *testing.T) {
	p, q := uuid.New(), uuid.New()
	missing := uuid.New()

	tests := []struct {
		name          string
		deltas        []domain.StockDelta
		allowNegative bool
		wantFailed    map[uuid.UUID]domain.FailureReason
		wantCounts    map[uuid.UUID]int
	}{
		{
			name:       "applies_all_entries",
			deltas:     []domain.StockDelta{{ProductID: p, Delta: -2}, {ProductID: q, Delta: 5}},
			wantCounts: map[uuid.UUID]int{p: 3, q: 6},
		},
		{
			name:       "insufficient_stock_rejects_whole_batch",
			deltas:     []domain.StockDelta{{ProductID: p, Delta: -6}, {ProductID: q, Delta: -1}},
			wantFailed: map[uuid.UUID]domain.FailureReason{p: domain.FailureInsufficientStock},
			wantCounts: map[uuid.UUID]int{p: 5, q: 1},
		},
		{
			name:       "unknown_product_rejects_whole_batch",
			deltas:     []domain.StockDelta{{ProductID: p, Delta: -1}, {ProductID: missing, Delta: 2}},
			wantFailed: map[uuid.UUID]domain.FailureReason{missing: domain.FailureProductNotFound},
			wantCounts: map[uuid.UUID]int{p: 5, q: 1},
		},
		{
			name:          "allow_policy_goes_negative",
			deltas:        []domain.StockDelta{{ProductID: q, Delta: -3}},
			allowNegative: true,
			wantCounts:    map[uuid.UUID]int{p: 5, q: -2},
		},
		{
			name:       "restock_never_fails_on_count",
			deltas:     []domain.StockDelta{{ProductID: q, Delta: 100}},
			wantCounts: map[uuid.UUID]int{p: 5, q: 101},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStoreWithStock(t, map[uuid.UUID]int{p: 5, q: 1})

			levels, err := store.Inventory().BulkIncrement(context.Background(), domain.AdjustmentBatch{
				Reason:        domain.ReasonOrderEdited,
				Deltas:        tt.deltas,
				AllowNegative: tt.allowNegative,
			})

			if tt.wantFailed != nil {
				var appErr *domain.InventoryApplicationError
				require.ErrorAs(t, err, &appErr)
				require.Len(t, appErr.Failed, len(tt.wantFailed))
				for _, f := range appErr.Failed {
					assert.Equal(t, tt.wantFailed[f.ProductID], f.Reason)
				}
				assert.Equal(t, len(tt.deltas)-len(tt.wantFailed), appErr.Valid)
				assert.Nil(t, levels)
			} else {
				require.NoError(t, err)
				assert.Len(t, levels, len(tt.deltas))
			}

			for id, want := range tt.wantCounts {
				assert.Equal(t, want, countOf(t, store, id))
			}
		})
	}
}

func TestInventoryRepository_RecordPurchase(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(helpers.TestLogger())
	product := helpers.CreateTestProduct()
	require.NoError(t, store.Products().Upsert(ctx, product))

	first := helpers.CreateTestPurchase(product.ID, 4)
	rec, err := store.Inventory().RecordPurchase(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, 4, rec.Count)
	assert.Equal(t, first.OwnerID, rec.OwnerID)

	second := helpers.CreateTestPurchase(product.ID, 6)
	second.SalePrice = decimal.NewFromInt(99)
	rec, err = store.Inventory().RecordPurchase(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, 10, rec.Count)
	assert.True(t, decimal.NewFromInt(99).Equal(rec.SalePrice))
	assert.Equal(t, first.OwnerID, rec.OwnerID, "owner is set on first intake only")

	_, err = store.Inventory().RecordPurchase(ctx, helpers.CreateTestPurchase(uuid.New(), 1))
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	movements := store.Movements()
	require.Len(t, movements, 2)
	assert.Equal(t, domain.ReasonPurchase, movements[1].Reason)
	assert.Nil(t, movements[1].OrderID)
}

func TestInventoryRepository_PruneMovements(t *testing.T) {
	p := uuid.New()
	store := newStoreWithStock(t, map[uuid.UUID]int{p: 3})
	require.Len(t, store.Movements(), 1)

	removed, err := store.Inventory().PruneMovements(context.Background(), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, removed)

	removed, err = store.Inventory().PruneMovements(context.Background(), time.Now().Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Empty(t, store.Movements())
}

func TestOrderRepository_List(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(helpers.TestLogger())
	owner := uuid.New()
	assignee := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)

	for i, name := range []string{"Alice", "Bob", "Carol", "alina"} {
		order := helpers.CreateTestOrder(func(o *domain.Order) {
			o.Customer.Name = name
			o.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			if i%2 == 0 {
				o.OwnerID = owner
			}
			if i == 1 {
				o.AssigneeID = &assignee
				o.Status = domain.StatusCancelled
			}
		})
		require.NoError(t, store.Orders().Insert(ctx, order))
	}

	tests := []struct {
		name      string
		params    ports.OrderListParams
		wantNames []string
		wantTotal int64
	}{
		{
			name:      "default_sort_newest_first",
			params:    ports.OrderListParams{},
			wantNames: []string{"alina", "Carol", "Bob", "Alice"},
			wantTotal: 4,
		},
		{
			name:      "search_is_case_insensitive",
			params:    ports.OrderListParams{Search: "AL", SortOrder: "asc"},
			wantNames: []string{"Alice", "alina"},
			wantTotal: 2,
		},
		{
			name:      "owner_filter",
			params:    ports.OrderListParams{OwnerID: &owner, SortOrder: "asc"},
			wantNames: []string{"Alice", "Carol"},
			wantTotal: 2,
		},
		{
			name:      "assignee_and_status_filter",
			params:    ports.OrderListParams{AssigneeID: &assignee, Status: domain.StatusCancelled},
			wantNames: []string{"Bob"},
			wantTotal: 1,
		},
		{
			name:      "pagination",
			params:    ports.OrderListParams{Page: 2, PageSize: 3, SortOrder: "asc"},
			wantNames: []string{"alina"},
			wantTotal: 4,
		},
		{
			name:      "page_past_end",
			params:    ports.OrderListParams{Page: 5, PageSize: 3},
			wantNames: []string{},
			wantTotal: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, total, err := store.Orders().List(ctx, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)

			names := make([]string, 0, len(orders))
			for _, o := range orders {
				names = append(names, o.Customer.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestOrderRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(helpers.TestLogger())
	order := helpers.CreateTestOrder()
	require.NoError(t, store.Orders().Insert(ctx, order))

	order.LineItems[0].Qty = 50
	loaded, err := store.Orders().FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.NotEqual(t, 50, loaded.LineItems[0].Qty)

	loaded.Customer.Name = "changed"
	again, err := store.Orders().FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "changed", again.Customer.Name)

	assert.ErrorIs(t, store.Orders().DeleteByID(ctx, uuid.New()), domain.ErrOrderNotFound)
}
