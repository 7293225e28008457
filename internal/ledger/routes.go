package ledger

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes attaches bookkeeping routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ledger", h.ListEntries)
	r.Get("/trial-balance", h.TrialBalance)
}
