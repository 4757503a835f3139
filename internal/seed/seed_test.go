package seed_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/resell-orders/internal/adapters/memory"
	"github.com/ammerola/resell-orders/internal/core/domain"
	"github.com/ammerola/resell-orders/internal/core/services"
	"github.com/ammerola/resell-orders/internal/seed"
	"github.com/ammerola/resell-orders/test/helpers"
	"github.com/ammerola/resell-orders/test/mocks"
)

func TestSeeder_Run_MemoryStore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(helpers.TestLogger())
	inventory := services.NewInventoryService(store, store.Inventory(), nil, helpers.TestLogger())
	seeder := seed.NewSeeder(store.Products(), inventory, helpers.TestLogger())

	owner := uuid.New()
	catalog := seed.DemoCatalog(owner)

	res, err := seeder.Run(ctx, catalog)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Products)
	assert.Equal(t, 5, res.Purchases)
	assert.Equal(t, 48, res.Units)
	assert.Empty(t, res.Failed)

	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("resell-orders/amber-night"))
	rec, err := inventory.GetStock(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 12, rec.Count)
	assert.Equal(t, owner, rec.OwnerID)

	// product ids are stable, so a second run adds stock to the same rows
	_, err = seeder.Run(ctx, catalog)
	require.NoError(t, err)
	rec, err = inventory.GetStock(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 24, rec.Count)
}

func TestSeeder_Run_SkipsFailedItems(t *testing.T) {
	ctrl := gomock.NewController(t)
	products := mocks.NewMockProductRepository(ctrl)
	inventory := mocks.NewMockInventoryService(ctrl)
	seeder := seed.NewSeeder(products, inventory, helpers.TestLogger())

	catalog := &seed.Catalog{
		OwnerID: uuid.New(),
		Products: []seed.CatalogItem{
			{Product: domain.Product{Slug: "broken"}, Count: 1},
			{Product: domain.Product{Slug: "no-stock"}},
			{Product: domain.Product{Slug: "rejected"}, Count: 2},
		},
	}

	gomock.InOrder(
		products.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(errors.New("boom")),
		products.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil),
		products.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil),
	)
	inventory.EXPECT().RecordPurchase(gomock.Any(), gomock.Any()).Return(nil, domain.ErrProductNotFound)

	res, err := seeder.Run(context.Background(), catalog)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Products)
	assert.Equal(t, 0, res.Purchases)
	assert.Len(t, res.Failed, 2)
}

func TestSeeder_Run_StopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	seeder := seed.NewSeeder(mocks.NewMockProductRepository(ctrl), mocks.NewMockInventoryService(ctrl), helpers.TestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := seeder.Run(ctx, seed.DemoCatalog(uuid.New()))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecodeCatalog(t *testing.T) {
	owner := uuid.New()

	tests := []struct {
		name    string
		input   string
		wantErr string
		check   func(t *testing.T, c *seed.Catalog)
	}{
		{
			name: "valid_catalog",
			input: `{"owner_id":"` + owner.String() + `","products":[
				{"product":{"type":"perfume","name":"Rose","slug":"rose"},"count":4,"purchased_price":"3.50","sale_price":"9.00"}]}`,
			check: func(t *testing.T, c *seed.Catalog) {
				require.Len(t, c.Products, 1)
				assert.Equal(t, owner, c.OwnerID)
				assert.Equal(t, "rose", c.Products[0].Product.Slug)
				assert.Equal(t, 4, c.Products[0].Count)
				assert.Equal(t, "9", c.Products[0].SalePrice.String())
			},
		},
		{
			name:    "missing_owner",
			input:   `{"products":[]}`,
			wantErr: "owner_id is required",
		},
		{
			name:    "unknown_field",
			input:   `{"owner_id":"` + owner.String() + `","extra":true}`,
			wantErr: "failed to decode catalog",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := seed.DecodeCatalog(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}
