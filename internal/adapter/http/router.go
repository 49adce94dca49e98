package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/jobledger/internal/adapter/http/handler"
	"github.com/iho/jobledger/internal/adapter/http/middleware"
	"github.com/iho/jobledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	JobHandler       *handler.JobHandler
	CalcHandler      *handler.CalcHandler
	SchemaHandler    *handler.SchemaHandler
	SettingsHandler  *handler.SettingsHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	Logger           zerolog.Logger
	RateLimiter      *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Jobs and their ledger records
		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", cfg.JobHandler.Create)
			r.Get("/", cfg.JobHandler.List)
			r.Get("/{id}", cfg.JobHandler.Get)
			r.Put("/{id}", cfg.JobHandler.Update)
			r.Get("/{id}/ledger", cfg.JobHandler.GetLedger)

			r.Post("/{id}/change-orders", cfg.JobHandler.AddChangeOrder)
			r.Post("/{id}/purchases", cfg.JobHandler.AddPurchase)
			r.Post("/{id}/labor-entries", cfg.JobHandler.AddLaborEntry)
			r.Post("/{id}/travel-entries", cfg.JobHandler.AddTravelEntry)
			r.Post("/{id}/payments", cfg.JobHandler.AddPayment)

			r.Get("/{id}/profit", cfg.CalcHandler.CalculateJob)
			r.Post("/{id}/finalize", cfg.CalcHandler.Finalize)
			r.Get("/{id}/snapshots", cfg.CalcHandler.ListSnapshots)
		})

		// Snapshots
		r.Get("/snapshots/{snapshotID}", cfg.CalcHandler.GetSnapshot)

		// Ad-hoc calculator
		r.Post("/calc/profit", cfg.CalcHandler.CalculateAdHoc)

		// Bucket schemas
		r.Route("/schemas", func(r chi.Router) {
			r.Post("/", cfg.SchemaHandler.Create)
			r.Get("/", cfg.SchemaHandler.List)
			r.Post("/validate", cfg.SchemaHandler.Validate)
			r.Get("/{id}", cfg.SchemaHandler.Get)
			r.Put("/{id}", cfg.SchemaHandler.Update)
			r.Delete("/{id}", cfg.SchemaHandler.Delete)
			r.Post("/{id}/default", cfg.SchemaHandler.SetDefault)
		})

		// Org settings
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", cfg.SettingsHandler.Get)
			r.Put("/", cfg.SettingsHandler.Update)
		})
	})

	return r
}
