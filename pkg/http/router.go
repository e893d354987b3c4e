package http

import (
	"time"

	"shortlink/pkg/logging"
	"shortlink/pkg/middleware"

	"github.com/go-chi/chi/v5"
)

// SetupRoutes wires the full API surface: link management plus the redirect
// catch-all. The static /links routes take precedence over /{code}.
func SetupRoutes(r *chi.Mux, handler *Handler, logger *logging.Logger, requestTimeout time.Duration) {
	r.Use(middleware.CorrelationID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", handler.Healthz)
	r.Get("/links", handler.ListLinks)
	r.Post("/links", handler.CreateLink)
	r.Delete("/links", handler.DeleteLink)
	r.Get("/links/{code}", handler.GetLink)
	r.Get("/{code}", handler.Redirect)
}

// SetupRedirectRoutes wires only the hot path, for the standalone redirect
// server.
func SetupRedirectRoutes(r *chi.Mux, handler *Handler, logger *logging.Logger, requestTimeout time.Duration) {
	r.Use(middleware.CorrelationID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", handler.Healthz)
	r.Get("/{code}", handler.Redirect)
}
