// Package api implements the REST API for the paint catalog and contact
// form, including the operator admin endpoints.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/olkipaint/backend/internal/auth"
	"github.com/olkipaint/backend/internal/mediastore"
	"github.com/olkipaint/backend/internal/storage"
)

// RouterConfig carries the dependencies of the HTTP router.
type RouterConfig struct {
	Queries      storage.Querier
	DB           Pinger
	Publisher    EventPublisher
	Media        mediastore.Store
	MediaBaseURL string
	JWT          *auth.JWTService
	Admin        auth.AdminConfig
	Limiter      *auth.RateLimiter
	Logger       zerolog.Logger
}

// NewRouter builds the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) chi.Router {
	products := NewProductHandler(cfg.Queries, cfg.MediaBaseURL)
	contacts := NewContactHandler(cfg.Queries, cfg.Publisher, cfg.Limiter)
	admin := NewAdminHandler(cfg.Queries, cfg.JWT, cfg.Admin, cfg.Limiter)
	media := NewMediaHandler(cfg.Queries, cfg.Media, products)
	health := NewHealthHandler(cfg.DB)

	requireAuth := auth.BearerJWT(cfg.JWT)

	r := chi.NewRouter()
	r.Use(chimiddleware.StripSlashes)
	r.Use(CorrelationIDMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware)
	r.Use(RecoverMiddleware)
	r.Use(MetricsMiddleware)

	r.Get("/healthz", health.Live)
	r.Get("/readyz", health.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", products.List)
		r.Post("/", products.Create)
		r.Get("/featured", products.Featured)
		r.Get("/{id}", products.Get)
		r.Put("/{id}", products.Update)
		r.Patch("/{id}", products.Patch)
		r.Delete("/{id}", products.Delete)
		r.With(requireAuth).Post("/{id}/image", media.UploadProductImage)
	})

	r.Route("/api/contacts", func(r chi.Router) {
		r.Post("/", contacts.Create)
		r.Get("/", contacts.List)
		r.Get("/{id}", contacts.Get)
		r.Put("/{id}", contacts.Update)
		r.Patch("/{id}", contacts.Patch)
		r.Delete("/{id}", contacts.Delete)
	})

	r.Post("/api/v1/auth/login", admin.Login)
	r.With(requireAuth).Get("/api/v1/admin/stats", admin.Stats)

	r.Get("/media/*", media.ServeMedia)

	return r
}
