// internal/handlers/routes.go
package handlers

import "net/http"

// APIPrefix is the versioned path prefix of every business route
const APIPrefix = "/api/v1"

// Routes groups the HTTP handlers served by the API
type Routes struct {
	Orders    *OrderHandler
	Inventory *InventoryHandler
	Health    *HealthHandler
}

// Register mounts the routes on mux using method-specific patterns.
// Health is optional.
func (rt Routes) Register(mux *http.ServeMux) {
	if rt.Health != nil {
		mux.HandleFunc("GET /health", rt.Health.Health)
		mux.HandleFunc("GET /ready", rt.Health.Readiness)
		mux.HandleFunc("GET "+APIPrefix+"/health", rt.Health.Health)
	}

	mux.HandleFunc("POST "+APIPrefix+"/orders", rt.Orders.CreateOrder)
	mux.HandleFunc("GET "+APIPrefix+"/orders", rt.Orders.ListOrders)
	mux.HandleFunc("GET "+APIPrefix+"/orders/{id}", rt.Orders.GetOrder)
	mux.HandleFunc("PATCH "+APIPrefix+"/orders/{id}", rt.Orders.EditOrder)
	mux.HandleFunc("DELETE "+APIPrefix+"/orders/{id}", rt.Orders.DeleteOrder)

	mux.HandleFunc("POST "+APIPrefix+"/purchases", rt.Inventory.RecordPurchase)
	mux.HandleFunc("GET "+APIPrefix+"/purchases", rt.Inventory.ListPurchases)
	mux.HandleFunc("GET "+APIPrefix+"/purchases/{id}", rt.Inventory.GetPurchase)
	mux.HandleFunc("GET "+APIPrefix+"/inventory", rt.Inventory.ListStock)
	mux.HandleFunc("GET "+APIPrefix+"/inventory/{productId}", rt.Inventory.GetStock)
}
