package analytics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warungledger/warungledger/internal/platform/httpx"
	"github.com/warungledger/warungledger/internal/shared"
)

// Handler serves reporting endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the analytics handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches analytics routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/sales-summary", h.SalesSummary)
	r.Get("/top-products", h.TopProducts)
	r.Get("/stock-valuation", h.StockValuation)
}

// SalesSummary handles GET /analytics/sales-summary.
func (h *Handler) SalesSummary(w http.ResponseWriter, r *http.Request) {
	start, end, err := reportRange(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Date", err.Error())
		return
	}
	summary, err := h.service.SalesSummary(r.Context(), start, end)
	if err != nil {
		h.logger.Error("sales summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

// TopProducts handles GET /analytics/top-products.
func (h *Handler) TopProducts(w http.ResponseWriter, r *http.Request) {
	start, end, err := reportRange(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Date", err.Error())
		return
	}
	products, err := h.service.TopProducts(r.Context(), start, end, shared.LimitParam(r, 10, 100))
	if err != nil {
		h.logger.Error("top products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if products == nil {
		products = []TopProduct{}
	}
	httpx.JSON(w, http.StatusOK, products)
}

// StockValuation handles GET /analytics/stock-valuation.
func (h *Handler) StockValuation(w http.ResponseWriter, r *http.Request) {
	valuation, err := h.service.StockValuation(r.Context())
	if err != nil {
		h.logger.Error("stock valuation", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, valuation)
}

// reportRange parses optional start_date/end_date query params. Absent
// params leave the bound open, so an unranged call aggregates all orders.
// The end date is extended to the final instant of its day.
func reportRange(r *http.Request) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if raw := r.URL.Query().Get("start_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, nil, err
		}
		start = &parsed
	}
	if raw := r.URL.Query().Get("end_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, nil, err
		}
		dayEnd := parsed.Add(24*time.Hour - time.Nanosecond)
		end = &dayEnd
	}
	return start, end, nil
}
