package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) SetupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORSMiddleware)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(10 * time.Second))
		r.Get("/healthz", h.Healthz)
		r.Get("/readyz", h.Readyz)
	})

	r.Route("/api/extensions", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Get("/", h.ListExtensions)
		r.Post("/", h.AddExtension)
		r.Delete("/", h.DeleteExtensions)
		r.Post("/validate", h.ValidateExtension)
		r.Get("/{id}", h.GetExtension)
		r.Patch("/{id}", h.UpdateExtension)
		r.Delete("/{id}", h.DeleteExtension)
	})

	r.Route("/api/events", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Get("/", h.ListEvents)
		r.Get("/errors", h.GetRecentErrors)
		r.Delete("/", h.CleanupEvents)
	})

	return r
}
