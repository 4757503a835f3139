// test/benchmarks/helpers.go
package benchmarks

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/ammerola/resell-orders/internal/adapters/memory"
	"github.com/ammerola/resell-orders/internal/core/domain"
	"github.com/ammerola/resell-orders/internal/core/services"
	"github.com/ammerola/resell-orders/test/helpers"
)

// benchEngine is an order service over a memory store with a stocked catalog
type benchEngine struct {
	store    *memory.Store
	service  *services.OrderService
	products []uuid.UUID
}

func newBenchEngine(b *testing.B, numProducts, stock int) *benchEngine {
	b.Helper()
	ctx := context.Background()
	store := memory.NewStore(helpers.TestLogger())

	products := make([]uuid.UUID, 0, numProducts)
	for i := 0; i < numProducts; i++ {
		p := helpers.CreateTestProduct()
		if err := store.Products().Upsert(ctx, p); err != nil {
			b.Fatal(err)
		}
		if _, err := store.Inventory().RecordPurchase(ctx, helpers.CreateTestPurchase(p.ID, stock)); err != nil {
			b.Fatal(err)
		}
		products = append(products, p.ID)
	}

	cfg := services.DefaultOrderServiceConfig()
	cfg.NegativePolicy = services.NegativeAllow

	return &benchEngine{
		store: store,
		service: services.NewOrderService(services.OrderServiceParams{
			UnitOfWork: store,
			Orders:     store.Orders(),
			Products:   store.Products(),
			Inventory:  store.Inventory(),
			Config:     cfg,
			Logger:     helpers.TestLogger(),
		}),
		products: products,
	}
}

// lineItems spreads n line items over the catalog starting at offset
func (e *benchEngine) lineItems(offset, n int) []domain.LineItem {
	items := make([]domain.LineItem, n)
	for i := range items {
		items[i] = domain.LineItem{ProductID: e.products[(offset+i)%len(e.products)], Qty: 1 + i%3}
	}
	return items
}

func (e *benchEngine) order(offset, n int) *domain.Order {
	return helpers.CreateTestOrder(func(o *domain.Order) {
		o.LineItems = e.lineItems(offset, n)
	})
}
