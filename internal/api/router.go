// Package api provides the HTTP API for TrekAtlas.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/trekatlas/trekatlas/internal/api/handler"
	"github.com/trekatlas/trekatlas/internal/api/middleware"
	"github.com/trekatlas/trekatlas/internal/auth"
	"github.com/trekatlas/trekatlas/internal/provider/resilience"
	"github.com/trekatlas/trekatlas/internal/trek"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	Tokens      *auth.TokenService
	TrekService *trek.Service
	DB          handler.Pinger
	Registry    *resilience.Registry
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "trekatlas-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS)
	r.Use(middleware.ContentTypeJSON)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.DB, cfg.Registry)
	trekHandler := handler.NewTrekHandler(cfg.TrekService, cfg.Logger)
	adminHandler := handler.NewAdminHandler(cfg.TrekService, cfg.Logger)

	authMiddleware := middleware.Auth(cfg.Tokens)

	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit)
	adminRateLimit := middleware.RateLimitByIP(middleware.AdminRateLimit)

	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public); detailed status requires a token.
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// Public trek catalog.
		r.Route("/treks", func(r chi.Router) {
			r.With(standardRateLimit).Get("/", trekHandler.ListTreks)

			r.Route("/{trekId}", func(r chi.Router) {
				r.With(standardRateLimit).Get("/", trekHandler.GetTrek)
				r.With(standardRateLimit).Get("/data", trekHandler.GetTrekData)
				r.With(standardRateLimit).Get("/camera", trekHandler.GetCamera)

				// Profile and stats recompute over the full route.
				r.With(expensiveRateLimit).Get("/profile", trekHandler.GetProfile)
				r.With(expensiveRateLimit).Get("/stats", trekHandler.GetStats)
			})
		})

		// Admin endpoints (authenticated, admin role).
		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RequireAdmin)
			r.Use(adminRateLimit)
			r.Use(middleware.RequireJSON)

			r.Post("/treks", adminHandler.CreateTrek)
			r.Route("/treks/{trekId}", func(r chi.Router) {
				r.Put("/", adminHandler.UpdateTrek)
				r.Delete("/", adminHandler.DeleteTrek)
				r.Put("/data", adminHandler.PutTrekData)
			})
			r.Post("/cache/invalidate", adminHandler.InvalidateCache)
		})
	})

	return r
}
