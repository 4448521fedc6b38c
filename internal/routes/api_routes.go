package routes

import (
	"github.com/go-chi/chi/v5"

	"fleet-analytics/modernity/internal/api"
	"fleet-analytics/modernity/internal/middleware"
)

// RegisterAPIRoutes registers the warehouse read endpoints behind the rate limiter.
func RegisterAPIRoutes(r chi.Router, handlers *api.Handlers, limiter *middleware.RateLimiter) {
	r.Group(func(public chi.Router) {
		public.Use(limiter.Middleware)

		public.Get("/airlines", handlers.ListAirlinesHandler())
		public.Get("/clusters/{cluster_id}", handlers.ClusterAirlinesHandler())
		public.Get("/regions/summary", handlers.RegionSummaryHandler())
	})
}
