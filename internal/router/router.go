package router

import (
	"net/http"

	"prepline/internal/handler"
	"prepline/internal/middleware"
	"prepline/internal/model"
	"prepline/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	authHandler *handler.AuthHandler,
	productHandler *handler.ProductHandler,
	orderHandler *handler.OrderHandler,
	dashboardHandler *handler.DashboardHandler,
	statsHandler *handler.StatsHandler,
	auth service.AuthService,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Real-time channel. Dashboards connect before logging in on shared
	// tablets, so the socket itself is open; it only ever pushes refresh
	// hints, never order data.
	r.Get("/ws", dashboardHandler.Subscribe)

	r.Post("/api/login", authHandler.Login)
	r.Post("/api/logout", authHandler.Logout)

	// Everything below requires a valid session.
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionAuth(auth, logger))

		// Till: browse the menu and place orders.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(auth, model.PageTill, logger))
			r.Get("/api/products", productHandler.Menu)
			r.Post("/api/orders", orderHandler.Create)
		})

		// Preparation stations: per-category board and advance, gated on
		// the permission for that specific category.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireDashboardPermission(auth, logger))
			r.Get("/api/dashboard/{category}", dashboardHandler.Board)
			r.Post("/api/dashboard/{category}/advance", dashboardHandler.Advance)
		})

		// Back office.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(auth, model.PageAdmin, logger))

			r.Get("/api/orders", orderHandler.ListAll)
			r.Get("/api/orders/{id}", orderHandler.Detail)
			r.Put("/api/orders/{id}", orderHandler.Update)
			r.Delete("/api/orders/{id}", orderHandler.Delete)

			r.Post("/api/products/{id}/restock", productHandler.Restock)
			r.Put("/api/products/{id}", productHandler.Update)
			r.Delete("/api/products/{id}", productHandler.Delete)

			r.Get("/api/stats", statsHandler.Snapshot)
			r.Post("/api/debug/reset", statsHandler.Reset)
		})
	})

	return r
}
