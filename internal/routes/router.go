package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"infinite-experiment/logbook/internal/api"
	"infinite-experiment/logbook/internal/config"
	"infinite-experiment/logbook/internal/logging"
	"infinite-experiment/logbook/internal/middleware"
)

// RegisterRoutes builds the service router. gatherer backs /metrics.
func RegisterRoutes(deps *api.Dependencies, cfg config.ServerConfig, gatherer prometheus.Gatherer, upSince time.Time) http.Handler {
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", middleware.UserIDHeader},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Get("/healthCheck", api.HealthCheckHandler(deps.DB, upSince))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	handlers := api.NewHandlers(deps)
	RegisterAPIRoutes(r, deps, handlers, middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst))

	logging.Info("Router initialized", "allowed_origins", cfg.AllowedOrigins)
	return r
}
