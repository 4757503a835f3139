// internal/handlers/orders_handler_test.go
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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/resell-orders/internal/core/domain"
	"github.com/ammerola/resell-orders/internal/core/ports"
	"github.com/ammerola/resell-orders/internal/handlers"
	"github.com/ammerola/resell-orders/test/helpers"
	"github.com/ammerola/resell-orders/test/mocks"
)

func decodeError(t *testing.T, body []byte) handlers.ErrorResponse {
	t.Helper()
	var response handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &response))
	return response
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	productID := uuid.New()
	ownerID := uuid.New()
	created := helpers.CreateTestOrder(func(o *domain.Order) {
		o.OwnerID = ownerID
		o.LineItems = []domain.LineItem{{ProductID: productID, Qty: 2}}
	})

	validBody := map[string]interface{}{
		"line_items": []map[string]interface{}{{"product_id": productID, "qty": 2}},
		"name":       "Dana",
		"phone":      "0501234567",
		"owner_id":   ownerID,
	}

	tests := []struct {
		name           string
		body           interface{}
		setupMocks     func(*mocks.MockOrderService)
		expectedStatus int
		validateBody   func(*testing.T, []byte)
	}{
		{
			name: "creates_order",
			body: validBody,
			setupMocks: func(m *mocks.MockOrderService) {
				m.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, o *domain.Order) (*domain.Order, error) {
						assert.Equal(t, []domain.LineItem{{ProductID: productID, Qty: 2}}, o.LineItems)
						assert.Equal(t, "Dana", o.Customer.Name)
						assert.Equal(t, ownerID, o.OwnerID)
						return created, nil
					})
			},
			expectedStatus: http.StatusCreated,
			validateBody: func(t *testing.T, body []byte) {
				var response domain.Order
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, created.ID, response.ID)
				assert.Equal(t, domain.StatusAdded, response.Status)
			},
		},
		{
			name:           "malformed_json",
			body:           "{not json",
			setupMocks:     func(m *mocks.MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
			validateBody: func(t *testing.T, body []byte) {
				assert.Equal(t, "invalid_body", decodeError(t, body).Code)
			},
		},
		{
			name: "unknown_field",
			body: map[string]interface{}{"owner_id": ownerID, "phone": "1", "discount": 5},
			setupMocks: func(m *mocks.MockOrderService) {
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing_owner",
			body:           map[string]interface{}{"phone": "0501234567", "line_items": validBody["line_items"]},
			setupMocks:     func(m *mocks.MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
			validateBody: func(t *testing.T, body []byte) {
				assert.Contains(t, decodeError(t, body).Error, "owner_id")
			},
		},
		{
			name: "empty_line_items_from_service",
			body: map[string]interface{}{"phone": "0501234567", "owner_id": ownerID, "line_items": []interface{}{}},
			setupMocks: func(m *mocks.MockOrderService) {
				m.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("validation failed: %w", domain.ErrEmptyLineItems))
			},
			expectedStatus: http.StatusBadRequest,
			validateBody: func(t *testing.T, body []byte) {
				resp := decodeError(t, body)
				assert.Equal(t, "empty_line_items", resp.Code)
				assert.Equal(t, domain.KindValidation, resp.Kind)
			},
		},
		{
			name: "insufficient_stock_lists_failures",
			body: validBody,
			setupMocks: func(m *mocks.MockOrderService) {
				count := 1
				m.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("failed to create order: %w",
					&domain.InventoryApplicationError{Failed: []domain.FailedAdjustment{
						{ProductID: productID, Delta: -2, Reason: domain.FailureInsufficientStock, Count: &count},
					}}))
			},
			expectedStatus: http.StatusConflict,
			validateBody: func(t *testing.T, body []byte) {
				resp := decodeError(t, body)
				assert.Equal(t, domain.KindInventoryApplication, resp.Kind)
				require.Len(t, resp.Failed, 1)
				assert.Equal(t, productID, resp.Failed[0].ProductID)
				assert.Equal(t, 1, *resp.Failed[0].Count)
			},
		},
		{
			name: "internal_error_hides_details",
			body: validBody,
			setupMocks: func(m *mocks.MockOrderService) {
				m.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return(nil, errors.New("pq: connection refused"))
			},
			expectedStatus: http.StatusInternalServerError,
			validateBody: func(t *testing.T, body []byte) {
				resp := decodeError(t, body)
				assert.Equal(t, "Failed to create order", resp.Error)
				assert.Equal(t, "internal_error", resp.Code)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockService := mocks.NewMockOrderService(ctrl)
			handler := handlers.NewOrderHandler(mockService, helpers.TestLogger())
			tt.setupMocks(mockService)

			var payload []byte
			if s, ok := tt.body.(string); ok {
				payload = []byte(s)
			} else {
				var err error
				payload, err = json.Marshal(tt.body)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.CreateOrder(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.validateBody != nil {
				tt.validateBody(t, w.Body.Bytes())
			}
		})
	}
}

func TestOrderHandler_GetOrder(t *testing.T) {
	order := helpers.CreateTestOrder()

	tests := []struct {
		name           string
		id             string
		setupMocks     func(*mocks.MockOrderService)
		expectedStatus int
	}{
		{
			name: "returns_view",
			id:   order.ID.String(),
			setupMocks: func(m *mocks.MockOrderService) {
				m.EXPECT().GetOrder(gomock.Any(), order.ID).
					Return(domain.BuildOrderView(order, nil, nil), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid_uuid_format",
			id:             "not-a-uuid",
			setupMocks:     func(m *mocks.MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "not_found",
			id:   order.ID.String(),
			setupMocks: func(m *mocks.MockOrderService) {
				m.EXPECT().GetOrder(gomock.Any(), order.ID).
					Return(nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, order.ID))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockService := mocks.NewMockOrderService(ctrl)
			handler := handlers.NewOrderHandler(mockService, helpers.TestLogger())
			tt.setupMocks(mockService)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+tt.id, nil)
			req.SetPathValue("id", tt.id)
			w := httptest.NewRecorder()

			handler.GetOrder(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestOrderHandler_ListOrders(t *testing.T) {
	owner := uuid.New()

	tests := []struct {
		name           string
		query          string
		setupMocks     func(*mocks.MockOrderService)
		expectedStatus int
	}{
		{
			name:  "passes_filters_through",
			query: "?status=accepted&owner_id=" + owner.String() + "&search=dana&page=2&limit=5&sort=status&order=asc",
			setupMocks: func(m *mocks.MockOrderService) {
				m.EXPECT().ListOrders(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, p ports.OrderListParams) (*ports.OrderListResult, error) {
						assert.Equal(t, domain.StatusAccepted, p.Status)
						require.NotNil(t, p.OwnerID)
						assert.Equal(t, owner, *p.OwnerID)
						assert.Equal(t, "dana", p.Search)
						assert.Equal(t, 2, p.Page)
						assert.Equal(t, 5, p.PageSize)
						assert.Equal(t, "status", p.SortBy)
						assert.Equal(t, "asc", p.SortOrder)
						return &ports.OrderListResult{Items: []*domain.Order{}, Page: 2, PageSize: 5}, nil
					})
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "created_range",
			query: "?created_after=2026-01-01T00:00:00Z&created_before=2026-02-01T00:00:00Z",
			setupMocks: func(m *mocks.MockOrderService) {
				m.EXPECT().ListOrders(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, p ports.OrderListParams) (*ports.OrderListResult, error) {
						require.NotNil(t, p.CreatedAfter)
						require.NotNil(t, p.CreatedBefore)
						assert.True(t, p.CreatedAfter.Before(*p.CreatedBefore))
						return &ports.OrderListResult{Items: []*domain.Order{}}, nil
					})
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid_status",
			query:          "?status=lost",
			setupMocks:     func(m *mocks.MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid_assignee",
			query:          "?assignee_id=42",
			setupMocks:     func(m *mocks.MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid_date",
			query:          "?created_after=yesterday",
			setupMocks:     func(m *mocks.MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "service_error",
			query: "",
			setupMocks: func(m *mocks.MockOrderService) {
				m.EXPECT().ListOrders(gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockService := mocks.NewMockOrderService(ctrl)
			handler := handlers.NewOrderHandler(mockService, helpers.TestLogger())
			tt.setupMocks(mockService)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/orders"+tt.query, nil)
			w := httptest.NewRecorder()

			handler.ListOrders(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestOrderHandler_EditOrder(t *testing.T) {
	id := uuid.New()
	cancelled := domain.StatusCancelled

	tests := []struct {
		name           string
		body           string
		setupMocks     func(*mocks.MockOrderService)
		expectedStatus int
	}{
		{
			name: "cancels_order",
			body: `{"status":"cancelled"}`,
			setupMocks: func(m *mocks.MockOrderService) {
				m.EXPECT().EditOrder(gomock.Any(), id, &domain.OrderPatch{Status: &cancelled}).
					Return(helpers.CreateTestOrder(func(o *domain.Order) {
						o.ID = id
						o.Status = cancelled
					}), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "sold_is_final",
			body: `{"status":"cancelled"}`,
			setupMocks: func(m *mocks.MockOrderService) {
				m.EXPECT().EditOrder(gomock.Any(), id, gomock.Any()).
					Return(nil, fmt.Errorf("failed to edit order: %w", domain.ErrInvalidStatusTransition))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed_body",
			body:           `{"line_items": "three"}`,
			setupMocks:     func(m *mocks.MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing_product",
			body: `{"line_items":[{"product_id":"` + uuid.NewString() + `","qty":1}]}`,
			setupMocks: func(m *mocks.MockOrderService) {
				m.EXPECT().EditOrder(gomock.Any(), id, gomock.Any()).Return(nil,
					&domain.InventoryApplicationError{Failed: []domain.FailedAdjustment{
						{ProductID: uuid.New(), Delta: -1, Reason: domain.FailureProductNotFound},
					}})
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockService := mocks.NewMockOrderService(ctrl)
			handler := handlers.NewOrderHandler(mockService, helpers.TestLogger())
			tt.setupMocks(mockService)

			req := httptest.NewRequest(http.MethodPatch, "/api/v1/orders/"+id.String(), bytes.NewBufferString(tt.body))
			req.SetPathValue("id", id.String())
			w := httptest.NewRecorder()

			handler.EditOrder(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestOrderHandler_DeleteOrder(t *testing.T) {
	id := uuid.New()

	t.Run("no_content", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockService := mocks.NewMockOrderService(ctrl)
		mockService.EXPECT().DeleteOrder(gomock.Any(), id).Return(nil)
		handler := handlers.NewOrderHandler(mockService, helpers.TestLogger())

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/orders/"+id.String(), nil)
		req.SetPathValue("id", id.String())
		w := httptest.NewRecorder()

		handler.DeleteOrder(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.Bytes())
	})

	t.Run("not_found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockService := mocks.NewMockOrderService(ctrl)
		mockService.EXPECT().DeleteOrder(gomock.Any(), id).Return(domain.ErrOrderNotFound)
		handler := handlers.NewOrderHandler(mockService, helpers.TestLogger())

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/orders/"+id.String(), nil)
		req.SetPathValue("id", id.String())
		w := httptest.NewRecorder()

		handler.DeleteOrder(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "order_not_found", decodeError(t, w.Body.Bytes()).Code)
	})
}
