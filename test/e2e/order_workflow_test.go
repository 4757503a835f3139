//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/ammerola/resell-orders/internal/adapters/db"
	redis_a "github.com/ammerola/resell-orders/internal/adapters/redis_adapter"
	"github.com/ammerola/resell-orders/internal/core/domain"
	"github.com/ammerola/resell-orders/internal/core/services"
	"github.com/ammerola/resell-orders/internal/handlers"
	"github.com/ammerola/resell-orders/internal/handlers/middleware"
	"github.com/ammerola/resell-orders/internal/pkg/logger"
	"github.com/ammerola/resell-orders/internal/seed"
	"github.com/ammerola/resell-orders/test/helpers"
)

type OrderE2ESuite struct {
	suite.Suite
	server    *httptest.Server
	client    *http.Client
	baseURL   string
	testDB    *helpers.TestDB
	testRedis *helpers.TestRedis
	seeder    *seed.Seeder
	owner     uuid.UUID
}

func (s *OrderE2ESuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.testRedis = helpers.SetupTestRedis(s.T())
	s.owner = uuid.New()

	s.server = s.startTestServer()
	s.client = &http.Client{Timeout: 10 * time.Second}
	s.baseURL = s.server.URL + handlers.APIPrefix
}

func (s *OrderE2ESuite) TearDownSuite() {
	s.server.Close()
}

func (s *OrderE2ESuite) TestOrderLifecycle() {
	product := s.stockedProduct(10)

	// 1. Create an order for 3 units
	resp := s.makeRequest(http.MethodPost, "/orders", s.orderBody(product, 3))
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var created domain.Order
	s.decodeResponse(resp, &created)
	s.Equal(domain.StatusAdded, created.Status)
	s.Equal(7, s.stock(product))

	// 2. Read it back as a priced view
	resp = s.makeRequest(http.MethodGet, "/orders/"+created.ID.String(), nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var view domain.OrderView
	s.decodeResponse(resp, &view)
	s.Equal("60", view.Total.String())
	s.Equal(3, view.Items[product.String()])

	// 3. Raise the quantity to 5
	resp = s.makeRequest(http.MethodPatch, "/orders/"+created.ID.String(), map[string]interface{}{
		"line_items": []map[string]interface{}{{"product_id": product, "qty": 5}},
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	s.Equal(5, s.stock(product))

	// the cached view was invalidated by the edit
	resp = s.makeRequest(http.MethodGet, "/orders/"+created.ID.String(), nil)
	s.decodeResponse(resp, &view)
	s.Equal("100", view.Total.String())

	// 4. Cancel restocks
	resp = s.makeRequest(http.MethodPatch, "/orders/"+created.ID.String(), map[string]interface{}{
		"status": domain.StatusCancelled,
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	s.Equal(10, s.stock(product))

	// 5. Reactivate reserves again
	resp = s.makeRequest(http.MethodPatch, "/orders/"+created.ID.String(), map[string]interface{}{
		"status": domain.StatusAccepted,
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	s.Equal(5, s.stock(product))

	// 6. Delete returns the units
	resp = s.makeRequest(http.MethodDelete, "/orders/"+created.ID.String(), nil)
	s.Require().Equal(http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
	s.Equal(10, s.stock(product))

	resp = s.makeRequest(http.MethodGet, "/orders/"+created.ID.String(), nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func (s *OrderE2ESuite) TestInsufficientStockIsRejected() {
	product := s.stockedProduct(2)

	resp := s.makeRequest(http.MethodPost, "/orders", s.orderBody(product, 3))
	s.Require().Equal(http.StatusConflict, resp.StatusCode)

	var body handlers.ErrorResponse
	s.decodeResponse(resp, &body)
	s.Equal(domain.KindInventoryApplication, body.Kind)
	s.Require().Len(body.Failed, 1)
	s.Equal(domain.FailureInsufficientStock, body.Failed[0].Reason)
	s.Equal(2, s.stock(product))
}

func (s *OrderE2ESuite) TestSoldOrderCannotBeCancelled() {
	product := s.stockedProduct(4)

	resp := s.makeRequest(http.MethodPost, "/orders", s.orderBody(product, 1))
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var created domain.Order
	s.decodeResponse(resp, &created)

	resp = s.makeRequest(http.MethodPatch, "/orders/"+created.ID.String(), map[string]interface{}{"status": domain.StatusSold})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.makeRequest(http.MethodPatch, "/orders/"+created.ID.String(), map[string]interface{}{"status": domain.StatusCancelled})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
	s.Equal(3, s.stock(product))
}

func (s *OrderE2ESuite) TestConcurrentOrdersNeverOversell() {
	product := s.stockedProduct(5)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		statuses = map[int]int{}
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			body, _ := json.Marshal(s.orderBody(product, 1))
			resp, err := s.client.Post(s.baseURL+"/orders", "application/json", bytes.NewReader(body))
			if err != nil {
				return
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			mu.Lock()
			statuses[resp.StatusCode]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	s.Equal(5, statuses[http.StatusCreated])
	s.Equal(5, statuses[http.StatusConflict])
	s.Equal(0, s.stock(product))
}

func (s *OrderE2ESuite) TestListOrdersFiltersByStatus() {
	product := s.stockedProduct(6)
	owner := uuid.New()

	for i := 0; i < 3; i++ {
		body := s.orderBody(product, 1)
		body["owner_id"] = owner
		resp := s.makeRequest(http.MethodPost, "/orders", body)
		s.Require().Equal(http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp := s.makeRequest(http.MethodGet, fmt.Sprintf("/orders?owner_id=%s&status=added&limit=2", owner), nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var list struct {
		Items      []domain.Order `json:"items"`
		TotalCount int64          `json:"total_count"`
		TotalPages int            `json:"total_pages"`
	}
	s.decodeResponse(resp, &list)
	s.Len(list.Items, 2)
	s.Equal(int64(3), list.TotalCount)
	s.Equal(2, list.TotalPages)
}

func (s *OrderE2ESuite) TestHealthCheck() {
	resp, err := s.client.Get(s.server.URL + "/health")
	s.Require().NoError(err)
	s.Equal(http.StatusOK, resp.StatusCode)

	var health map[string]interface{}
	s.decodeResponse(resp, &health)
	s.Equal("healthy", health["status"])

	services := health["services"].(map[string]interface{})
	s.Contains(services, "database")
	s.Contains(services, "redis")
}

// Helper methods

func (s *OrderE2ESuite) startTestServer() *httptest.Server {
	log := helpers.TestLogger()
	database := s.testDB.Database
	pool := database.Pool()

	uow := db.NewUnitOfWork(database, log)
	orders := db.NewOrderRepository(pool, log)
	inventory := db.NewInventoryRepository(pool, log)
	products := db.NewProductRepository(pool, log)
	cache := redis_a.NewCache(s.testRedis.Client, time.Minute, log)

	orderService := services.NewOrderService(services.OrderServiceParams{
		UnitOfWork: uow,
		Orders:     orders,
		Products:   products,
		Inventory:  inventory,
		Cache:      cache,
		Config:     services.DefaultOrderServiceConfig(),
		Logger:     log,
	})
	inventoryService := services.NewInventoryService(uow, inventory, cache, log)
	s.seeder = seed.NewSeeder(products, inventoryService, log)

	cfg := helpers.LoadTestConfig()
	mux := http.NewServeMux()
	handlers.Routes{
		Orders:    handlers.NewOrderHandler(orderService, log),
		Inventory: handlers.NewInventoryHandler(inventoryService, log),
		Health:    handlers.NewHealthHandler(database, s.testRedis.Client, nil, cfg, log),
	}.Register(mux)

	appLogger := logger.New(logger.Config{Level: "error", Writer: io.Discard})
	return httptest.NewServer(middleware.Chain(mux,
		middleware.RequestID(middleware.RequestIDHeader),
		middleware.Logger(appLogger),
		middleware.Recovery(log),
	))
}

// stockedProduct creates a catalog entry priced at 20 and buys count units
// through the API
func (s *OrderE2ESuite) stockedProduct(count int) uuid.UUID {
	id := uuid.New()
	_, err := s.seeder.Run(context.Background(), &seed.Catalog{
		OwnerID: s.owner,
		Products: []seed.CatalogItem{{
			Product: domain.Product{ID: id, Type: domain.ProductPerfume, Name: "E2E " + id.String()[:8], Slug: "e2e-" + id.String()},
		}},
	})
	s.Require().NoError(err)

	resp := s.makeRequest(http.MethodPost, "/purchases", map[string]interface{}{
		"product_id":      id,
		"owner_id":        s.owner,
		"count":           count,
		"purchased_price": "8.00",
		"sale_price":      "20.00",
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	return id
}

func (s *OrderE2ESuite) stock(product uuid.UUID) int {
	resp := s.makeRequest(http.MethodGet, "/inventory/"+product.String(), nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var rec domain.InventoryRecord
	s.decodeResponse(resp, &rec)
	return rec.Count
}

func (s *OrderE2ESuite) orderBody(product uuid.UUID, qty int) map[string]interface{} {
	return map[string]interface{}{
		"line_items":     []map[string]interface{}{{"product_id": product, "qty": qty}},
		"name":           "E2E Customer",
		"phone":          "+15550100",
		"owner_id":       s.owner,
		"payment_method": domain.PaymentCash,
	}
}

func (s *OrderE2ESuite) makeRequest(method, path string, body interface{}) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		s.Require().NoError(err)
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reqBody)
	s.Require().NoError(err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	s.Require().NoError(err)

	return resp
}

func (s *OrderE2ESuite) decodeResponse(resp *http.Response, v interface{}) {
	defer resp.Body.Close()
	err := json.NewDecoder(resp.Body).Decode(v)
	s.NoError(err)
}

func TestOrderE2ESuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	suite.Run(t, new(OrderE2ESuite))
}
