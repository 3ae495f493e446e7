package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/auth"
)

// NewRouter wires every route. Metrics are registered on reg and served
// from /metrics.
func NewRouter(handlers *Handlers, authHandlers *AuthHandlers, jwtService *auth.JWTService, reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()

	authn := middleware.NewAuthenticator(jwtService)
	private := func(h http.HandlerFunc) http.Handler { return authn.Protect(h) }
	admin := func(h http.HandlerFunc) http.Handler { return authn.AdminOnly(h) }

	mux.HandleFunc("GET /health", Health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	// Products
	mux.HandleFunc("GET /api/products", handlers.GetProducts)
	mux.HandleFunc("GET /api/products/top", handlers.GetTopProducts)
	mux.HandleFunc("GET /api/products/{id}", handlers.GetProduct)
	mux.Handle("POST /api/products", admin(handlers.CreateProduct))
	mux.Handle("PUT /api/products/{id}", admin(handlers.UpdateProduct))
	mux.Handle("DELETE /api/products/{id}", admin(handlers.DeleteProduct))
	mux.Handle("POST /api/products/{id}/reviews", private(handlers.CreateProductReview))

	// Orders
	mux.Handle("POST /api/orders", private(handlers.CreateOrder))
	mux.Handle("GET /api/orders/myorders", private(handlers.GetMyOrders))
	mux.Handle("GET /api/orders", admin(handlers.GetAllOrders))
	mux.Handle("GET /api/orders/{id}", private(handlers.GetOrder))
	mux.Handle("PUT /api/orders/{id}/pay", private(handlers.PayOrder))
	mux.Handle("PUT /api/orders/{id}/deliver", admin(handlers.DeliverOrder))

	// Users
	mux.HandleFunc("POST /api/users", authHandlers.Register)
	mux.HandleFunc("POST /api/users/login", authHandlers.Login)
	mux.HandleFunc("POST /api/users/refresh", authHandlers.Refresh)
	mux.HandleFunc("POST /api/users/logout", authHandlers.Logout)
	mux.Handle("GET /api/users/profile", private(authHandlers.Profile))

	metrics := middleware.NewMetrics(reg)
	return middleware.Logging(metrics.Middleware(mux))
}
