// internal/seed/seed.go
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/resell-orders/internal/core/domain"
	"github.com/ammerola/resell-orders/internal/core/ports"
)

// Catalog is a seed file: products plus the stock bought for each
type Catalog struct {
	OwnerID  uuid.UUID     `json:"owner_id"`
	Products []CatalogItem `json:"products"`
}

// CatalogItem is one product and its opening purchase
type CatalogItem struct {
	Product        domain.Product  `json:"product"`
	Count          int             `json:"count"`
	PurchasedPrice decimal.Decimal `json:"purchased_price"`
	SalePrice      decimal.Decimal `json:"sale_price"`
}

// Result summarises a seeding run
type Result struct {
	Products  int         `json:"products"`
	Purchases int         `json:"purchases"`
	Units     int         `json:"units"`
	Failed    []uuid.UUID `json:"failed,omitempty"`
}

// LoadCatalog reads a JSON catalog from path
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return DecodeCatalog(f)
}

// DecodeCatalog parses a JSON catalog
func DecodeCatalog(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if c.OwnerID == uuid.Nil {
		return nil, fmt.Errorf("catalog owner_id is required")
	}
	return &c, nil
}

// Seeder writes a catalog through the product repository and the
// inventory service so purchases leave stock movements behind.
type Seeder struct {
	products  ports.ProductRepository
	inventory ports.InventoryService
	logger    *slog.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(products ports.ProductRepository, inventory ports.InventoryService, logger *slog.Logger) *Seeder {
	return &Seeder{
		products:  products,
		inventory: inventory,
		logger:    logger.With(slog.String("component", "seeder")),
	}
}

// Run upserts every product and records its purchase. A failing item is
// logged and skipped; a cancelled context stops the run.
func (s *Seeder) Run(ctx context.Context, c *Catalog) (*Result, error) {
	res := &Result{}
	for i := range c.Products {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		item := c.Products[i]
		product := item.Product
		if product.ID == uuid.Nil {
			product.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte("resell-orders/"+product.Slug))
		}
		if product.OwnerID == uuid.Nil {
			product.OwnerID = c.OwnerID
		}

		if err := s.products.Upsert(ctx, &product); err != nil {
			s.logger.ErrorContext(ctx, "failed to upsert product",
				slog.String("slug", product.Slug),
				slog.String("error", err.Error()))
			res.Failed = append(res.Failed, product.ID)
			continue
		}
		res.Products++

		if item.Count <= 0 {
			continue
		}

		_, err := s.inventory.RecordPurchase(ctx, &domain.Purchase{
			ProductID:      product.ID,
			OwnerID:        product.OwnerID,
			Count:          item.Count,
			PurchasedPrice: item.PurchasedPrice,
			SalePrice:      item.SalePrice,
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to record purchase",
				slog.String("product_id", product.ID.String()),
				slog.String("error", err.Error()))
			res.Failed = append(res.Failed, product.ID)
			continue
		}
		res.Purchases++
		res.Units += item.Count
	}

	s.logger.InfoContext(ctx, "seeding completed",
		slog.Int("products", res.Products),
		slog.Int("purchases", res.Purchases),
		slog.Int("units", res.Units),
		slog.Int("failed", len(res.Failed)))

	return res, nil
}

// DemoCatalog is a small catalog for local development
func DemoCatalog(owner uuid.UUID) *Catalog {
	item := func(typ domain.ProductType, name, slug string, season domain.Season, gender domain.Gender, count int, bought, sale string) CatalogItem {
		return CatalogItem{
			Product: domain.Product{
				Type:        typ,
				Name:        name,
				Slug:        slug,
				Season:      season,
				Gender:      gender,
				Persistence: 3,
			},
			Count:          count,
			PurchasedPrice: decimal.RequireFromString(bought),
			SalePrice:      decimal.RequireFromString(sale),
		}
	}

	return &Catalog{
		OwnerID: owner,
		Products: []CatalogItem{
			item(domain.ProductPerfume, "Amber Night", "amber-night", domain.SeasonWinter, domain.GenderBoy, 12, "18.50", "35.00"),
			item(domain.ProductPerfume, "Cherry Blossom", "cherry-blossom", domain.SeasonSpring, domain.GenderGirl, 8, "15.00", "29.99"),
			item(domain.ProductPerfume, "Sea Salt", "sea-salt", domain.SeasonSummer, domain.GenderBoy, 5, "12.00", "24.00"),
			item(domain.ProductMuskambar, "White Musk", "white-musk", domain.SeasonAutumn, domain.GenderGirl, 20, "6.00", "14.50"),
			item(domain.ProductMuskambar, "Oud Amber", "oud-amber", domain.SeasonWinter, domain.GenderBoy, 3, "9.75", "22.00"),
		},
	}
}
