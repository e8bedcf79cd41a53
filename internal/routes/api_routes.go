package routes

import (
	"github.com/go-chi/chi/v5"

	"infinite-experiment/logbook/internal/api"
	"infinite-experiment/logbook/internal/middleware"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
func RegisterAPIRoutes(r chi.Router, deps *api.Dependencies, handlers *api.Handlers, limiter *middleware.RateLimiter) {
	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.InFlightMiddleware(deps.Metrics, "/api/v1"))
		v1.Use(middleware.UserIDMiddleware)
		v1.Use(limiter.Middleware)

		v1.Get("/columns", handlers.ListColumns())
		v1.Get("/aircraft", handlers.ListAircraft())

		v1.Route("/logbook", func(logbook chi.Router) {
			logbook.Get("/", handlers.ListLogbook())
			logbook.Delete("/", handlers.DeleteLogbook())
			logbook.Post("/import", handlers.ImportLogbook())
			logbook.Get("/scorecard", handlers.GetScorecard())

			logbook.Get("/{id}", handlers.GetLogbookEntry())
			logbook.Patch("/{id}", handlers.UpdateLogbookEntry())
			logbook.Delete("/{id}", handlers.DeleteLogbookEntry())
		})
	})
}
