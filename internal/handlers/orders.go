// internal/handlers/orders.go
package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/resell-orders/internal/core/domain"
	"github.com/ammerola/resell-orders/internal/core/ports"
)

// OrderHandler handles order HTTP requests
type OrderHandler struct {
	service ports.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(service ports.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "orders")),
	}
}

// CreateOrder handles POST /api/v1/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondBadRequest(w, h.logger, "invalid_body", "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondBadRequest(w, h.logger, "invalid_request", err.Error())
		return
	}

	order, err := h.service.CreateOrder(ctx, req.ToDomain())
	if err != nil {
		respondError(w, r, h.logger, "Failed to create order", err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, order)
}

// GetOrder handles GET /api/v1/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	view, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, "Failed to retrieve order", err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, view)
}

// ListOrders handles GET /api/v1/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	params, err := parseOrderListParams(r)
	if err != nil {
		respondBadRequest(w, h.logger, "invalid_query", err.Error())
		return
	}

	result, err := h.service.ListOrders(r.Context(), params)
	if err != nil {
		respondError(w, r, h.logger, "Failed to list orders", err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// EditOrder handles PATCH /api/v1/orders/{id}
func (h *OrderHandler) EditOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var patch domain.OrderPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondBadRequest(w, h.logger, "invalid_body", "Invalid request body: "+err.Error())
		return
	}

	order, err := h.service.EditOrder(r.Context(), id, &patch)
	if err != nil {
		respondError(w, r, h.logger, "Failed to edit order", err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, order)
}

// DeleteOrder handles DELETE /api/v1/orders/{id}
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteOrder(r.Context(), id); err != nil {
		respondError(w, r, h.logger, "Failed to delete order", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *OrderHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondBadRequest(w, h.logger, "invalid_id", "Invalid order ID format")
		return uuid.Nil, false
	}
	return id, true
}

// parseOrderListParams parses the list query string. Paging and sort
// defaults are applied by the service.
func parseOrderListParams(r *http.Request) (ports.OrderListParams, error) {
	q := r.URL.Query()
	params := ports.OrderListParams{
		Search:    strings.TrimSpace(q.Get("search")),
		SortBy:    q.Get("sort"),
		SortOrder: q.Get("order"),
	}

	if status := q.Get("status"); status != "" {
		params.Status = domain.OrderStatus(status)
		if !params.Status.IsValid() {
			return params, fmt.Errorf("invalid status %q", status)
		}
	}

	if err := parseUUIDs(q, map[string]**uuid.UUID{
		"owner_id":    &params.OwnerID,
		"assignee_id": &params.AssigneeID,
	}); err != nil {
		return params, err
	}
	if err := parseTimes(q, map[string]**time.Time{
		"created_after":  &params.CreatedAfter,
		"created_before": &params.CreatedBefore,
	}); err != nil {
		return params, err
	}
	params.Page, params.PageSize = parsePaging(q)

	return params, nil
}

func parseUUIDs(q url.Values, dests map[string]**uuid.UUID) error {
	for key, dest := range dests {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid %s", key)
		}
		*dest = &id
	}
	return nil
}

func parseTimes(q url.Values, dests map[string]**time.Time) error {
	for key, dest := range dests {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("invalid %s, expected RFC3339", key)
		}
		*dest = &ts
	}
	return nil
}

// parsePaging ignores malformed values; the service applies defaults
func parsePaging(q url.Values) (page, limit int) {
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 {
		limit = l
	}
	return page, limit
}

// Request DTOs

// LineItemRequest is one entry of an order's line items
type LineItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Qty       int       `json:"qty"`
}

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	LineItems     []LineItemRequest `json:"line_items"`
	Name          string            `json:"name"`
	Phone         string            `json:"phone"`
	Location      string            `json:"location,omitempty"`
	OwnerID       uuid.UUID         `json:"owner_id"`
	AssigneeID    *uuid.UUID        `json:"assignee_id,omitempty"`
	PaymentMethod string            `json:"payment_method,omitempty"`
	DeliveryDate  *time.Time        `json:"delivery_date,omitempty"`
}

// Validate checks the fields the domain does not own. Line items are
// validated by the order service.
func (r *CreateOrderRequest) Validate() error {
	if r.OwnerID == uuid.Nil {
		return fmt.Errorf("owner_id is required")
	}
	if strings.TrimSpace(r.Phone) == "" {
		return fmt.Errorf("phone is required")
	}
	return nil
}

// ToDomain converts the request to a domain model
func (r *CreateOrderRequest) ToDomain() *domain.Order {
	order := &domain.Order{
		LineItems: make([]domain.LineItem, 0, len(r.LineItems)),
		Customer: domain.Customer{
			Name:     r.Name,
			Phone:    r.Phone,
			Location: r.Location,
		},
		OwnerID:       r.OwnerID,
		AssigneeID:    r.AssigneeID,
		PaymentMethod: domain.PaymentMethod(r.PaymentMethod),
		DeliveryDate:  r.DeliveryDate,
	}
	for _, item := range r.LineItems {
		order.LineItems = append(order.LineItems, domain.LineItem{ProductID: item.ProductID, Qty: item.Qty})
	}
	return order
}
