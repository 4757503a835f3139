// internal/adapters/memory/stock_listing.go
package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/ammerola/resell-orders/internal/core/domain"
	"github.com/ammerola/resell-orders/internal/core/ports"
	"github.com/google/uuid"
)

// FindStockItem returns the record joined with its product, or nil when absent
func (r *InventoryRepository) FindStockItem(ctx context.Context, productID uuid.UUID) (*domain.StockItem, error) {
	var found *domain.StockItem
	err := view(r.store, r.tx, func(st *state) error {
		found = st.stockItem(productID)
		return nil
	})
	return found, err
}

// ListStock filters, sorts and paginates stock records
func (r *InventoryRepository) ListStock(ctx context.Context, params ports.StockListParams) ([]*domain.StockItem, int64, error) {
	params.Normalize()

	var matched []*domain.StockItem
	err := view(r.store, r.tx, func(st *state) error {
		for id := range st.inventory {
			item := st.stockItem(id)
			if item != nil && stockMatches(item, params) {
				matched = append(matched, item)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if c := compareStock(a, b, params.SortBy); c != 0 {
			return (c < 0) == (params.SortOrder == "asc")
		}
		return a.ProductID.String() < b.ProductID.String()
	})
	return paginate(matched, params.Offset(), params.PageSize), int64(len(matched)), nil
}

// FindPurchaseByID returns the purchase joined with its product, or nil when absent
func (r *InventoryRepository) FindPurchaseByID(ctx context.Context, id uuid.UUID) (*domain.PurchaseItem, error) {
	var found *domain.PurchaseItem
	err := view(r.store, r.tx, func(st *state) error {
		found = st.purchaseItem(id)
		return nil
	})
	return found, err
}

// ListPurchases filters, sorts and paginates purchase history
func (r *InventoryRepository) ListPurchases(ctx context.Context, params ports.PurchaseListParams) ([]*domain.PurchaseItem, int64, error) {
	params.Normalize()

	var matched []*domain.PurchaseItem
	err := view(r.store, r.tx, func(st *state) error {
		for id := range st.purchases {
			item := st.purchaseItem(id)
			if item != nil && purchaseMatches(item, params) {
				matched = append(matched, item)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if c := comparePurchases(a, b, params.SortBy); c != 0 {
			return (c < 0) == (params.SortOrder == "asc")
		}
		return a.ID.String() < b.ID.String()
	})
	return paginate(matched, params.Offset(), params.PageSize), int64(len(matched)), nil
}

// stockItem joins a record with its product. Records whose product is gone
// are skipped, as the inner join does in Postgres.
func (s *state) stockItem(productID uuid.UUID) *domain.StockItem {
	rec, ok := s.inventory[productID]
	if !ok {
		return nil
	}
	product, ok := s.products[productID]
	if !ok {
		return nil
	}
	p := *product
	return &domain.StockItem{InventoryRecord: *rec, Product: &p}
}

func (s *state) purchaseItem(id uuid.UUID) *domain.PurchaseItem {
	purchase, ok := s.purchases[id]
	if !ok {
		return nil
	}
	product, ok := s.products[purchase.ProductID]
	if !ok {
		return nil
	}
	p := *product
	return &domain.PurchaseItem{Purchase: *purchase, Product: &p}
}

func stockMatches(item *domain.StockItem, p ports.StockListParams) bool {
	if p.OwnerID != nil && item.OwnerID != *p.OwnerID {
		return false
	}
	if p.ProductType != "" && item.Product.Type != p.ProductType {
		return false
	}
	if p.MaxCount != nil && item.Count > *p.MaxCount {
		return false
	}
	return catalogMatches(item.Product, p.SearchField, p.Search)
}

func purchaseMatches(item *domain.PurchaseItem, p ports.PurchaseListParams) bool {
	if p.OwnerID != nil && item.OwnerID != *p.OwnerID {
		return false
	}
	if p.ProductID != nil && item.ProductID != *p.ProductID {
		return false
	}
	if p.CreatedAfter != nil && item.CreatedAt.Before(*p.CreatedAfter) {
		return false
	}
	if p.CreatedBefore != nil && !item.CreatedAt.Before(*p.CreatedBefore) {
		return false
	}
	return catalogMatches(item.Product, p.SearchField, p.Search)
}

func catalogMatches(product *domain.Product, field, search string) bool {
	search = strings.TrimSpace(search)
	if search == "" {
		return true
	}
	var value string
	switch field {
	case ports.SearchByColor:
		value = product.Color
	case ports.SearchBySmell:
		value = product.Smell
	case ports.SearchBySlug:
		value = product.Slug
	default:
		value = product.Name
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(search))
}

func compareStock(a, b *domain.StockItem, field string) int {
	switch field {
	case "sale_price":
		return a.SalePrice.Cmp(b.SalePrice)
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case "name":
		return strings.Compare(a.Product.Name, b.Product.Name)
	default:
		return a.Count - b.Count
	}
}

func comparePurchases(a, b *domain.PurchaseItem, field string) int {
	switch field {
	case "count":
		return a.Count - b.Count
	case "purchased_price":
		return a.PurchasedPrice.Cmp(b.PurchasedPrice)
	case "sale_price":
		return a.SalePrice.Cmp(b.SalePrice)
	case "name":
		return strings.Compare(a.Product.Name, b.Product.Name)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func paginate[T any](items []T, offset, size int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + size
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
