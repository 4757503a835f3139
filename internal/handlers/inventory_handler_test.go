// internal/handlers/inventory_handler_test.go
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/resell-orders/internal/core/domain"
	"github.com/ammerola/resell-orders/internal/core/ports"
	"github.com/ammerola/resell-orders/internal/handlers"
	"github.com/ammerola/resell-orders/test/helpers"
	"github.com/ammerola/resell-orders/test/mocks"
)

func TestInventoryHandler_RecordPurchase(t *testing.T) {
	productID := uuid.New()
	ownerID := uuid.New()

	tests := []struct {
		name           string
		body           string
		setupMocks     func(*mocks.MockInventoryService)
		expectedStatus int
		validateBody   func(*testing.T, []byte)
	}{
		{
			name: "records_purchase",
			body: fmt.Sprintf(`{"product_id":%q,"owner_id":%q,"count":5,"purchased_price":"10.5","sale_price":"19.99"}`,
				productID, ownerID),
			setupMocks: func(m *mocks.MockInventoryService) {
				m.EXPECT().RecordPurchase(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, p *domain.Purchase) (*domain.InventoryRecord, error) {
						assert.Equal(t, productID, p.ProductID)
						assert.Equal(t, 5, p.Count)
						assert.True(t, decimal.RequireFromString("19.99").Equal(p.SalePrice))
						return &domain.InventoryRecord{ProductID: productID, OwnerID: ownerID, Count: 5, SalePrice: p.SalePrice}, nil
					})
			},
			expectedStatus: http.StatusCreated,
			validateBody: func(t *testing.T, body []byte) {
				var rec domain.InventoryRecord
				require.NoError(t, json.Unmarshal(body, &rec))
				assert.Equal(t, 5, rec.Count)
				assert.Equal(t, productID, rec.ProductID)
			},
		},
		{
			name:           "missing_sale_price",
			body:           fmt.Sprintf(`{"product_id":%q,"owner_id":%q,"count":5}`, productID, ownerID),
			setupMocks:     func(m *mocks.MockInventoryService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "invalid_count",
			body: fmt.Sprintf(`{"product_id":%q,"owner_id":%q,"count":0,"sale_price":"1"}`, productID, ownerID),
			setupMocks: func(m *mocks.MockInventoryService) {
				m.EXPECT().RecordPurchase(gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("validation failed: %w", fmt.Errorf("%w: count must be positive", domain.ErrInvalidPurchase)))
			},
			expectedStatus: http.StatusBadRequest,
			validateBody: func(t *testing.T, body []byte) {
				var resp handlers.ErrorResponse
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, "invalid_purchase", resp.Code)
			},
		},
		{
			name: "unknown_product",
			body: fmt.Sprintf(`{"product_id":%q,"owner_id":%q,"count":1,"sale_price":"1"}`, productID, ownerID),
			setupMocks: func(m *mocks.MockInventoryService) {
				m.EXPECT().RecordPurchase(gomock.Any(), gomock.Any()).Return(nil, domain.ErrProductNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalid_product_id",
			body:           `{"product_id":"abc","owner_id":"def","count":1,"sale_price":"1"}`,
			setupMocks:     func(m *mocks.MockInventoryService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockService := mocks.NewMockInventoryService(ctrl)
			handler := handlers.NewInventoryHandler(mockService, helpers.TestLogger())
			tt.setupMocks(mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/purchases", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			handler.RecordPurchase(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.validateBody != nil {
				tt.validateBody(t, w.Body.Bytes())
			}
		})
	}
}

func TestInventoryHandler_GetStock(t *testing.T) {
	productID := uuid.New()

	tests := []struct {
		name           string
		id             string
		setupMocks     func(*mocks.MockInventoryService)
		expectedStatus int
	}{
		{
			name: "returns_record",
			id:   productID.String(),
			setupMocks: func(m *mocks.MockInventoryService) {
				m.EXPECT().GetStock(gomock.Any(), productID).Return(&domain.StockItem{
					InventoryRecord: domain.InventoryRecord{ProductID: productID, Count: 3},
					Product:         &domain.Product{ID: productID, Name: "Sea Salt"},
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid_uuid_format",
			id:             "nope",
			setupMocks:     func(m *mocks.MockInventoryService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "not_found",
			id:   productID.String(),
			setupMocks: func(m *mocks.MockInventoryService) {
				m.EXPECT().GetStock(gomock.Any(), productID).Return(nil, domain.ErrProductNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "service_error",
			id:   productID.String(),
			setupMocks: func(m *mocks.MockInventoryService) {
				m.EXPECT().GetStock(gomock.Any(), productID).Return(nil, errors.New("database connection failed"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockService := mocks.NewMockInventoryService(ctrl)
			handler := handlers.NewInventoryHandler(mockService, helpers.TestLogger())
			tt.setupMocks(mockService)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/"+tt.id, nil)
			req.SetPathValue("productId", tt.id)
			w := httptest.NewRecorder()

			handler.GetStock(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestInventoryHandler_ListStock(t *testing.T) {
	owner := uuid.New()

	tests := []struct {
		name           string
		query          string
		setupMocks     func(*mocks.MockInventoryService)
		expectedStatus int
	}{
		{
			name:  "passes_filters_through",
			query: "?owner_id=" + owner.String() + "&product_type=perfume&search=amber&search_field=smell&max_count=3&sort=name&order=desc&page=2&limit=5",
			setupMocks: func(m *mocks.MockInventoryService) {
				m.EXPECT().ListStock(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, p ports.StockListParams) (*ports.StockListResult, error) {
						require.NotNil(t, p.OwnerID)
						assert.Equal(t, owner, *p.OwnerID)
						assert.Equal(t, domain.ProductPerfume, p.ProductType)
						assert.Equal(t, "amber", p.Search)
						assert.Equal(t, "smell", p.SearchField)
						require.NotNil(t, p.MaxCount)
						assert.Equal(t, 3, *p.MaxCount)
						assert.Equal(t, "name", p.SortBy)
						assert.Equal(t, "desc", p.SortOrder)
						assert.Equal(t, 2, p.Page)
						assert.Equal(t, 5, p.PageSize)
						return &ports.StockListResult{Items: []*domain.StockItem{}}, nil
					})
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "no_filters",
			query: "",
			setupMocks: func(m *mocks.MockInventoryService) {
				m.EXPECT().ListStock(gomock.Any(), ports.StockListParams{}).
					Return(&ports.StockListResult{Items: []*domain.StockItem{}}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid_product_type",
			query:          "?product_type=candle",
			setupMocks:     func(m *mocks.MockInventoryService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid_max_count",
			query:          "?max_count=-1",
			setupMocks:     func(m *mocks.MockInventoryService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid_owner",
			query:          "?owner_id=42",
			setupMocks:     func(m *mocks.MockInventoryService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "service_error",
			query: "",
			setupMocks: func(m *mocks.MockInventoryService) {
				m.EXPECT().ListStock(gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockService := mocks.NewMockInventoryService(ctrl)
			handler := handlers.NewInventoryHandler(mockService, helpers.TestLogger())
			tt.setupMocks(mockService)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory"+tt.query, nil)
			w := httptest.NewRecorder()

			handler.ListStock(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestInventoryHandler_ListPurchases(t *testing.T) {
	product := uuid.New()

	tests := []struct {
		name           string
		query          string
		setupMocks     func(*mocks.MockInventoryService)
		expectedStatus int
	}{
		{
			name:  "passes_filters_through",
			query: "?product_id=" + product.String() + "&created_after=2026-01-01T00:00:00Z&created_before=2026-02-01T00:00:00Z&sort=purchased_price&order=asc",
			setupMocks: func(m *mocks.MockInventoryService) {
				m.EXPECT().ListPurchases(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, p ports.PurchaseListParams) (*ports.PurchaseListResult, error) {
						require.NotNil(t, p.ProductID)
						assert.Equal(t, product, *p.ProductID)
						assert.Nil(t, p.OwnerID)
						require.NotNil(t, p.CreatedAfter)
						require.NotNil(t, p.CreatedBefore)
						assert.True(t, p.CreatedAfter.Before(*p.CreatedBefore))
						assert.Equal(t, "purchased_price", p.SortBy)
						assert.Equal(t, "asc", p.SortOrder)
						return &ports.PurchaseListResult{Items: []*domain.PurchaseItem{}}, nil
					})
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid_product",
			query:          "?product_id=abc",
			setupMocks:     func(m *mocks.MockInventoryService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid_date",
			query:          "?created_before=tomorrow",
			setupMocks:     func(m *mocks.MockInventoryService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "service_error",
			query: "",
			setupMocks: func(m *mocks.MockInventoryService) {
				m.EXPECT().ListPurchases(gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockService := mocks.NewMockInventoryService(ctrl)
			handler := handlers.NewInventoryHandler(mockService, helpers.TestLogger())
			tt.setupMocks(mockService)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/purchases"+tt.query, nil)
			w := httptest.NewRecorder()

			handler.ListPurchases(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestInventoryHandler_GetPurchase(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name           string
		id             string
		setupMocks     func(*mocks.MockInventoryService)
		expectedStatus int
	}{
		{
			name: "returns_purchase",
			id:   id.String(),
			setupMocks: func(m *mocks.MockInventoryService) {
				m.EXPECT().GetPurchase(gomock.Any(), id).
					Return(&domain.PurchaseItem{Purchase: domain.Purchase{ID: id, Count: 2}}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid_uuid_format",
			id:             "nope",
			setupMocks:     func(m *mocks.MockInventoryService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "not_found",
			id:   id.String(),
			setupMocks: func(m *mocks.MockInventoryService) {
				m.EXPECT().GetPurchase(gomock.Any(), id).Return(nil, domain.ErrPurchaseNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockService := mocks.NewMockInventoryService(ctrl)
			handler := handlers.NewInventoryHandler(mockService, helpers.TestLogger())
			tt.setupMocks(mockService)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/purchases/"+tt.id, nil)
			req.SetPathValue("id", tt.id)
			w := httptest.NewRecorder()

			handler.GetPurchase(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRoutes_InventoryListings(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockInventoryService(ctrl)
	mux := http.NewServeMux()
	handlers.Routes{
		Orders:    handlers.NewOrderHandler(mocks.NewMockOrderService(ctrl), helpers.TestLogger()),
		Inventory: handlers.NewInventoryHandler(mockService, helpers.TestLogger()),
	}.Register(mux)

	mockService.EXPECT().ListStock(gomock.Any(), gomock.Any()).
		Return(&ports.StockListResult{Items: []*domain.StockItem{}}, nil)
	mockService.EXPECT().ListPurchases(gomock.Any(), gomock.Any()).
		Return(&ports.PurchaseListResult{Items: []*domain.PurchaseItem{}}, nil)

	for _, path := range []string{"/api/v1/inventory", "/api/v1/purchases"} {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
