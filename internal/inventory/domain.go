package inventory

import (
	"errors"
	"fmt"
	"time"
)

// MovementType enumerates supported stock movements.
type MovementType string

const (
	// MovementSale records a checkout decrement.
	MovementSale MovementType = "SALE"
	// MovementRestock records a positive manual adjustment.
	MovementRestock MovementType = "RESTOCK"
	// MovementAdjustment records a negative manual adjustment.
	MovementAdjustment MovementType = "ADJUSTMENT"
)

// Movement is an immutable record of one stock quantity change. after_qty is
// always before_qty + quantity_change, and the movements of a product form a
// running total equal to its current stock_qty.
type Movement struct {
	ID             int64
	ProductID      int64
	Type           MovementType
	QuantityChange int64
	BeforeQty      int64
	AfterQty       int64
	Reason         *string
	RefType        *string
	RefID          *string
	CreatedAt      time.Time
}

// AdjustmentInput describes a manual stock correction.
type AdjustmentInput struct {
	ProductID           int64
	QuantityChange      int64
	Reason              string
	CounterpartyAccount string
}

// MovementFilter narrows movement listings.
type MovementFilter struct {
	ProductID *int64
	Limit     int
}

// ErrInvalidAdjustment indicates a zero quantity change.
var ErrInvalidAdjustment = errors.New("inventory: quantity change must be non zero")

// InsufficientStockError reports a movement that would drive stock negative.
type InsufficientStockError struct {
	ProductID int64
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("inventory: insufficient stock for product %d: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}
