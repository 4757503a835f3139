// internal/handlers/inventory.go
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
	"github.com/shopspring/decimal"

	"github.com/ammerola/resell-orders/internal/core/domain"
	"github.com/ammerola/resell-orders/internal/core/ports"
)

// InventoryHandler handles stock intake and lookup requests
type InventoryHandler struct {
	service ports.InventoryService
	logger  *slog.Logger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(service ports.InventoryService, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "inventory")),
	}
}

// RecordPurchase handles POST /api/v1/purchases
func (h *InventoryHandler) RecordPurchase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RecordPurchaseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondBadRequest(w, h.logger, "invalid_body", "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondBadRequest(w, h.logger, "invalid_request", err.Error())
		return
	}

	record, err := h.service.RecordPurchase(ctx, req.ToDomain())
	if err != nil {
		respondError(w, r, h.logger, "Failed to record purchase", err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, record)
}

// GetStock handles GET /api/v1/inventory/{productId}
func (h *InventoryHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(r.PathValue("productId"))
	if err != nil {
		respondBadRequest(w, h.logger, "invalid_id", "Invalid product ID format")
		return
	}

	item, err := h.service.GetStock(r.Context(), productID)
	if err != nil {
		respondError(w, r, h.logger, "Failed to retrieve stock", err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, item)
}

// ListStock handles GET /api/v1/inventory
func (h *InventoryHandler) ListStock(w http.ResponseWriter, r *http.Request) {
	params, err := parseStockListParams(r.URL.Query())
	if err != nil {
		respondBadRequest(w, h.logger, "invalid_query", err.Error())
		return
	}

	result, err := h.service.ListStock(r.Context(), params)
	if err != nil {
		respondError(w, r, h.logger, "Failed to list stock", err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// GetPurchase handles GET /api/v1/purchases/{id}
func (h *InventoryHandler) GetPurchase(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondBadRequest(w, h.logger, "invalid_id", "Invalid purchase ID format")
		return
	}

	purchase, err := h.service.GetPurchase(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, "Failed to retrieve purchase", err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, purchase)
}

// ListPurchases handles GET /api/v1/purchases
func (h *InventoryHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	params, err := parsePurchaseListParams(r.URL.Query())
	if err != nil {
		respondBadRequest(w, h.logger, "invalid_query", err.Error())
		return
	}

	result, err := h.service.ListPurchases(r.Context(), params)
	if err != nil {
		respondError(w, r, h.logger, "Failed to list purchases", err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

func parseStockListParams(q url.Values) (ports.StockListParams, error) {
	params := ports.StockListParams{
		Search:      strings.TrimSpace(q.Get("search")),
		SearchField: q.Get("search_field"),
		SortBy:      q.Get("sort"),
		SortOrder:   q.Get("order"),
	}

	if t := q.Get("product_type"); t != "" {
		params.ProductType = domain.ProductType(t)
		if !params.ProductType.IsValid() {
			return params, fmt.Errorf("invalid product_type %q", t)
		}
	}
	if raw := q.Get("max_count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return params, fmt.Errorf("invalid max_count")
		}
		params.MaxCount = &n
	}
	if err := parseUUIDs(q, map[string]**uuid.UUID{"owner_id": &params.OwnerID}); err != nil {
		return params, err
	}
	params.Page, params.PageSize = parsePaging(q)

	return params, nil
}

func parsePurchaseListParams(q url.Values) (ports.PurchaseListParams, error) {
	params := ports.PurchaseListParams{
		Search:      strings.TrimSpace(q.Get("search")),
		SearchField: q.Get("search_field"),
		SortBy:      q.Get("sort"),
		SortOrder:   q.Get("order"),
	}

	if err := parseUUIDs(q, map[string]**uuid.UUID{
		"owner_id":   &params.OwnerID,
		"product_id": &params.ProductID,
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

// RecordPurchaseRequest represents the request body for a stock intake
type RecordPurchaseRequest struct {
	ProductID      uuid.UUID        `json:"product_id"`
	OwnerID        uuid.UUID        `json:"owner_id"`
	Count          int              `json:"count"`
	PurchasedPrice decimal.Decimal  `json:"purchased_price"`
	SalePrice      *decimal.Decimal `json:"sale_price"`
}

// Validate checks presence of the fields the domain cannot default
func (r *RecordPurchaseRequest) Validate() error {
	if r.SalePrice == nil {
		return fmt.Errorf("sale_price is required")
	}
	return nil
}

// ToDomain converts the request to a domain model
func (r *RecordPurchaseRequest) ToDomain() *domain.Purchase {
	p := &domain.Purchase{
		ProductID:      r.ProductID,
		OwnerID:        r.OwnerID,
		Count:          r.Count,
		PurchasedPrice: r.PurchasedPrice,
	}
	if r.SalePrice != nil {
		p.SalePrice = *r.SalePrice
	}
	return p
}
