package checkout

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/warungledger/warungledger/internal/catalog"
	"github.com/warungledger/warungledger/internal/inventory"
	"github.com/warungledger/warungledger/internal/platform/db"
	"github.com/warungledger/warungledger/internal/platform/httpx"
	"github.com/warungledger/warungledger/internal/shared"
)

// Handler serves checkout and order endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs the checkout handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

type checkoutItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int64 `json:"quantity" validate:"required"`
}

type checkoutRequest struct {
	Items         []checkoutItemRequest `json:"items" validate:"required,min=1,dive"`
	Discount      int64                 `json:"discount" validate:"gte=0"`
	Tax           int64                 `json:"tax" validate:"gte=0"`
	PaymentMethod string                `json:"payment_method,omitempty" validate:"omitempty,oneof=cash credit qris transfer"`
}

type receiptItemResponse struct {
	ProductID   int64        `json:"product_id"`
	ProductName string       `json:"product_name"`
	Quantity    int64        `json:"quantity"`
	UnitPrice   shared.Cents `json:"unit_price"`
	LineTotal   shared.Cents `json:"line_total"`
}

type receiptResponse struct {
	OrderNumber   string                `json:"order_number"`
	CreatedAt     time.Time             `json:"created_at"`
	PaymentMethod string                `json:"payment_method"`
	Subtotal      shared.Cents          `json:"subtotal"`
	Discount      shared.Cents          `json:"discount"`
	Tax           shared.Cents          `json:"tax"`
	Total         shared.Cents          `json:"total"`
	TotalDisplay  string                `json:"total_display"`
	COGS          shared.Cents          `json:"cogs"`
	GrossProfit   shared.Cents          `json:"gross_profit"`
	Items         []receiptItemResponse `json:"items"`
}

func toReceiptResponse(r Receipt) receiptResponse {
	items := make([]receiptItemResponse, 0, len(r.Items))
	for _, line := range r.Items {
		items = append(items, receiptItemResponse{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitSellPrice,
			LineTotal:   line.LineTotal,
		})
	}
	return receiptResponse{
		OrderNumber:   r.OrderNumber,
		CreatedAt:     r.CreatedAt,
		PaymentMethod: r.PaymentMethod,
		Subtotal:      r.Subtotal,
		Discount:      r.Discount,
		Tax:           r.Tax,
		Total:         r.Total,
		TotalDisplay:  r.TotalDisplay,
		COGS:          r.COGS,
		GrossProfit:   r.GrossProfit,
		Items:         items,
	}
}

type orderResponse struct {
	ID            int64        `json:"id"`
	OrderNumber   string       `json:"order_number"`
	CreatedAt     time.Time    `json:"created_at"`
	PaymentMethod string       `json:"payment_method"`
	Subtotal      shared.Cents `json:"subtotal"`
	Discount      shared.Cents `json:"discount"`
	Tax           shared.Cents `json:"tax"`
	Total         shared.Cents `json:"total"`
	COGS          shared.Cents `json:"cogs"`
	GrossProfit   shared.Cents `json:"gross_profit"`
}

// Checkout handles POST /checkout.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	input := CheckoutInput{
		Discount:      shared.Cents(req.Discount),
		Tax:           shared.Cents(req.Tax),
		PaymentMethod: req.PaymentMethod,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, CartLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	receipt, err := h.service.Checkout(r.Context(), input)
	if err != nil {
		h.respondCheckoutError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toReceiptResponse(receipt))
}

func (h *Handler) respondCheckoutError(w http.ResponseWriter, err error) {
	var notFound *catalog.ProductNotFoundError
	var insufficient *inventory.InsufficientStockError
	switch {
	case errors.As(err, &notFound):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrNotFound, notFound.Error()))
	case errors.As(err, &insufficient):
		httpx.Problem(w, http.StatusBadRequest, "Insufficient Stock", insufficient.Error())
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrInvalidAmount):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
	case errors.Is(err, db.ErrTxConflict):
		httpx.Problem(w, http.StatusConflict, "Transaction Conflict", "checkout could not be completed due to concurrent activity, please retry")
	default:
		h.logger.Error("checkout", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

// ListOrders handles GET /orders.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context(), shared.LimitParam(r, 50, 500))
	if err != nil {
		h.logger.Error("list orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderResponse{
			ID:            o.ID,
			OrderNumber:   o.OrderNumber,
			CreatedAt:     o.CreatedAt,
			PaymentMethod: o.PaymentMethod,
			Subtotal:      o.Subtotal,
			Discount:      o.Discount,
			Tax:           o.Tax,
			Total:         o.Total,
			COGS:          o.COGS,
			GrossProfit:   o.GrossProfit,
		})
	}
	httpx.JSON(w, http.StatusOK, out)
}
