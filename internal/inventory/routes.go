package inventory

import (
	"github.com/go-chi/chi/v5"

	"github.com/warungledger/warungledger/internal/catalog"
)

// MountRoutes attaches inventory routes. The low-stock listing is served by
// the catalog handler since it is a product projection.
func (h *Handler) MountRoutes(r chi.Router, products *catalog.Handler) {
	r.Post("/adjust", h.Adjust)
	r.Get("/movements", h.ListMovements)
	r.Get("/low-stock", products.LowStock)
}
