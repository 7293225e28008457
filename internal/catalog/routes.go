package catalog

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes attaches product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}
