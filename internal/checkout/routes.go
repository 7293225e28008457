package checkout

import "github.com/go-chi/chi/v5"

// MountRoutes attaches checkout routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/checkout", h.Checkout)
	r.Get("/orders", h.ListOrders)
}
