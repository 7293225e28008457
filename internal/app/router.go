package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/warungledger/warungledger/internal/analytics"
	"github.com/warungledger/warungledger/internal/catalog"
	"github.com/warungledger/warungledger/internal/checkout"
	"github.com/warungledger/warungledger/internal/inventory"
	"github.com/warungledger/warungledger/internal/ledger"
	"github.com/warungledger/warungledger/internal/observability"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	CatalogHandler   *catalog.Handler
	CheckoutHandler  *checkout.Handler
	InventoryHandler *inventory.Handler
	LedgerHandler    *ledger.Handler
	AnalyticsHandler *analytics.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/products", params.CatalogHandler.MountRoutes)
	params.CheckoutHandler.MountRoutes(r)
	r.Route("/inventory", func(r chi.Router) {
		params.InventoryHandler.MountRoutes(r, params.CatalogHandler)
	})
	r.Route("/bookkeeping", params.LedgerHandler.MountRoutes)
	r.Route("/analytics", params.AnalyticsHandler.MountRoutes)

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
