package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/paidup/paidup/internal/infrastructure/monitoring/logging"
	"github.com/paidup/paidup/internal/infrastructure/monitoring/prometheus"
	"github.com/paidup/paidup/internal/interfaces/http/handlers"
	"github.com/paidup/paidup/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware the route tree needs.
type RouterConfig struct {
	ClaimHandler  *handlers.ClaimHandler
	HealthHandler *handlers.HealthHandler

	Logger  logging.Logger
	Metrics *prometheus.Metrics

	CORS      *middleware.CORSConfig
	RateLimit *middleware.RateLimitConfig
	Logging   *middleware.LoggingConfig
}

// NewRouter builds the HTTP route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	if cfg.Logger != nil {
		logCfg := middleware.DefaultLoggingConfig()
		if cfg.Logging != nil {
			logCfg = *cfg.Logging
		}
		r.Use(middleware.RequestLogging(cfg.Logger, logCfg))
	}
	if cfg.RateLimit != nil {
		r.Use(middleware.RateLimit(*cfg.RateLimit))
	}
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}

	r.Route("/api/v1", func(api chi.Router) {
		registerClaimRoutes(api, cfg.ClaimHandler)
	})

	return r
}

func registerClaimRoutes(r chi.Router, h *handlers.ClaimHandler) {
	if h == nil {
		return
	}
	r.Route("/claims", func(cr chi.Router) {
		cr.Get("/", h.List)
		cr.Post("/", h.Create)

		cr.Route("/{claimID}", func(item chi.Router) {
			item.Get("/", h.Get)
			item.Put("/", h.Update)
			item.Delete("/", h.Delete)

			item.Post("/interest", h.CalculateInterest)
			item.Post("/timeline/validate", h.ValidateTimeline)
			item.Post("/recommendation", h.Recommend)

			item.Post("/deadlines/sync", h.SyncDeadlines)
			item.Get("/deadlines", h.ListDeadlines)
			item.Post("/deadlines/{deadlineID}/dismiss", h.DismissDeadline)
			item.Post("/deadlines/{deadlineID}/done", h.CompleteDeadline)

			item.Post("/documents/{documentType}", h.GenerateDocument)
			item.Post("/documents/form_n1/n1.pdf", h.FillN1)
		})
	})
}
