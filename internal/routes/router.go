package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fleet-analytics/modernity/internal/api"
	"fleet-analytics/modernity/internal/logging"
	"fleet-analytics/modernity/internal/middleware"
)

// RegisterRoutes builds the read-only HTTP API over deps.
func RegisterRoutes(deps *api.Dependencies, upSince time.Time) http.Handler {
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.InFlightMiddleware(deps.Metrics))
	r.Use(middleware.MetricsMiddleware(deps.Metrics))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Get("/health", api.HealthCheckHandler(deps.Repo.Airlines, deps.Repo.SyncHistory, upSince))
	r.Handle("/metrics", promhttp.Handler())

	handlers := api.NewHandlers(deps.Services.Warehouse)
	RegisterAPIRoutes(r, handlers, middleware.NewRateLimiter(5, 20, "127.0.0.1", "::1"))

	logging.Info("Router initialized", "routes", []string{"/health", "/airlines", "/clusters/{cluster_id}", "/regions/summary", "/metrics"})
	return r
}
