package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/warungledger/warungledger/internal/platform/httpx"
	"github.com/warungledger/warungledger/internal/shared"
)

// Handler serves product endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs the catalog handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

type createProductRequest struct {
	SKU       string  `json:"sku" validate:"required,max=64"`
	Name      string  `json:"name" validate:"required,max=200"`
	Category  *string `json:"category,omitempty" validate:"omitempty,max=100"`
	SellPrice int64   `json:"sell_price" validate:"gte=0"`
	CostPrice int64   `json:"cost_price" validate:"gte=0"`
	StockQty  int64   `json:"stock_qty" validate:"gte=0"`
	MinStock  int64   `json:"min_stock" validate:"gte=0"`
}

type productResponse struct {
	ID        int64     `json:"id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Category  *string   `json:"category,omitempty"`
	SellPrice int64     `json:"sell_price"`
	CostPrice int64     `json:"cost_price"`
	StockQty  int64     `json:"stock_qty"`
	MinStock  int64     `json:"min_stock"`
	LowStock  bool      `json:"low_stock"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toProductResponse(p Product) productResponse {
	return productResponse{
		ID:        p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		Category:  p.Category,
		SellPrice: int64(p.SellPrice),
		CostPrice: int64(p.CostPrice),
		StockQty:  p.StockQty,
		MinStock:  p.MinStock,
		LowStock:  p.LowStock(),
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
	}
}

// Create handles POST /products.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	product, err := h.service.Create(r.Context(), CreateInput{
		SKU:       req.SKU,
		Name:      req.Name,
		Category:  req.Category,
		SellPrice: shared.Cents(req.SellPrice),
		CostPrice: shared.Cents(req.CostPrice),
		StockQty:  req.StockQty,
		MinStock:  req.MinStock,
	})
	if err != nil {
		if errors.Is(err, ErrSKUTaken) {
			httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrDuplicate, req.SKU))
			return
		}
		h.logger.Error("create product", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toProductResponse(product))
}

// List handles GET /products.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		LowStockOnly:    r.URL.Query().Get("low_stock_only") == "true",
		IncludeInactive: r.URL.Query().Get("include_inactive") == "true",
	}
	products, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	httpx.JSON(w, http.StatusOK, out)
}

// Get handles GET /products/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "id must be a positive integer")
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		var notFound *ProductNotFoundError
		if errors.As(err, &notFound) {
			httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrNotFound, notFound.Error()))
			return
		}
		h.logger.Error("get product", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toProductResponse(product))
}

// LowStock handles GET /inventory/low-stock.
func (h *Handler) LowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.LowStock(r.Context())
	if err != nil {
		h.logger.Error("list low stock", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	httpx.JSON(w, http.StatusOK, out)
}
