// internal/core/domain/product.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductType represents the catalog product family
type ProductType string

// Product type constants
const (
	ProductPerfume   ProductType = "perfume"
	ProductMuskambar ProductType = "muskambar"
)

// IsValid checks if the product type is known
func (t ProductType) IsValid() bool {
	return t == ProductPerfume || t == ProductMuskambar
}

// Season represents the season a scent is marketed for
type Season string

// Season constants
const (
	SeasonWinter Season = "winter"
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
)

// Gender represents the target audience
type Gender string

// Gender constants
const (
	GenderBoy  Gender = "boy"
	GenderGirl Gender = "girl"
)

// Product is an immutable catalog entry
type Product struct {
	ID          uuid.UUID   `json:"id"`
	Type        ProductType `json:"type"`
	Name        string      `json:"name"`
	Color       string      `json:"color"`
	Smell       string      `json:"smell"`
	Season      Season      `json:"season"`
	Gender      Gender      `json:"gender"`
	Persistence int         `json:"persistence"`
	Slug        string      `json:"slug"`
	OwnerID     uuid.UUID   `json:"owner_id"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// OrderLineView is a line item joined with catalog and pricing data
type OrderLineView struct {
	ProductID uuid.UUID       `json:"product_id"`
	Qty       int             `json:"qty"`
	Product   *Product        `json:"product,omitempty"`
	SalePrice decimal.Decimal `json:"sale_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// OrderView is the display projection of an order
type OrderView struct {
	Order
	Lines []OrderLineView `json:"lines"`
	Total decimal.Decimal `json:"total"`
	Items map[string]int  `json:"items"`
}

// BuildOrderView joins an order with its products and inventory records.
// Missing catalog entries leave Product nil and price zero.
func BuildOrderView(order *Order, products map[uuid.UUID]*Product, records map[uuid.UUID]*InventoryRecord) *OrderView {
	view := &OrderView{
		Order: *order,
		Lines: make([]OrderLineView, 0, len(order.LineItems)),
		Total: decimal.Zero,
		Items: make(map[string]int),
	}

	for _, item := range order.LineItems {
		line := OrderLineView{
			ProductID: item.ProductID,
			Qty:       item.Qty,
			Product:   products[item.ProductID],
			SalePrice: decimal.Zero,
		}
		if rec, ok := records[item.ProductID]; ok && rec != nil {
			line.SalePrice = rec.SalePrice
		}
		line.LineTotal = line.SalePrice.Mul(decimal.NewFromInt(int64(item.Qty)))
		view.Total = view.Total.Add(line.LineTotal)
		view.Lines = append(view.Lines, line)
	}

	for id, qty := range MergeLineItems(order.LineItems) {
		view.Items[id.String()] = qty
	}

	return view
}
