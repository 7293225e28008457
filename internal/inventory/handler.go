package inventory

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/warungledger/warungledger/internal/catalog"
	"github.com/warungledger/warungledger/internal/platform/httpx"
	"github.com/warungledger/warungledger/internal/shared"
)

// Handler serves inventory endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs the inventory handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

type adjustRequest struct {
	ProductID           int64  `json:"product_id" validate:"required,gt=0"`
	QuantityChange      int64  `json:"quantity_change" validate:"required"`
	Reason              string `json:"reason,omitempty" validate:"omitempty,max=500"`
	CounterpartyAccount string `json:"counterparty_account,omitempty" validate:"omitempty,max=100"`
}

type movementResponse struct {
	ID             int64        `json:"id"`
	ProductID      int64        `json:"product_id"`
	MovementType   MovementType `json:"movement_type"`
	QuantityChange int64        `json:"quantity_change"`
	BeforeQty      int64        `json:"before_qty"`
	AfterQty       int64        `json:"after_qty"`
	Reason         *string      `json:"reason,omitempty"`
	RefType        *string      `json:"ref_type,omitempty"`
	RefID          *string      `json:"ref_id,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

func toMovementResponse(m Movement) movementResponse {
	return movementResponse{
		ID:             m.ID,
		ProductID:      m.ProductID,
		MovementType:   m.Type,
		QuantityChange: m.QuantityChange,
		BeforeQty:      m.BeforeQty,
		AfterQty:       m.AfterQty,
		Reason:         m.Reason,
		RefType:        m.RefType,
		RefID:          m.RefID,
		CreatedAt:      m.CreatedAt,
	}
}

// Adjust handles POST /inventory/adjust.
func (h *Handler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	movement, err := h.service.Adjust(r.Context(), AdjustmentInput{
		ProductID:           req.ProductID,
		QuantityChange:      req.QuantityChange,
		Reason:              req.Reason,
		CounterpartyAccount: req.CounterpartyAccount,
	})
	if err != nil {
		h.respondAdjustError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toMovementResponse(movement))
}

func (h *Handler) respondAdjustError(w http.ResponseWriter, err error) {
	var notFound *catalog.ProductNotFoundError
	var insufficient *InsufficientStockError
	switch {
	case errors.As(err, &notFound):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrNotFound, notFound.Error()))
	case errors.As(err, &insufficient):
		httpx.Problem(w, http.StatusBadRequest, "Insufficient Stock", insufficient.Error())
	case errors.Is(err, ErrInvalidAdjustment):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
	default:
		h.logger.Error("adjust stock", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

// ListMovements handles GET /inventory/movements.
func (h *Handler) ListMovements(w http.ResponseWriter, r *http.Request) {
	filter := MovementFilter{Limit: shared.LimitParam(r, 100, 500)}
	if raw := r.URL.Query().Get("product_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "product_id must be a positive integer")
			return
		}
		filter.ProductID = &id
	}
	movements, err := h.service.ListMovements(r.Context(), filter)
	if err != nil {
		h.logger.Error("list movements", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]movementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, toMovementResponse(m))
	}
	httpx.JSON(w, http.StatusOK, out)
}
