package checkout

import (
	"errors"
	"time"

	"github.com/warungledger/warungledger/internal/shared"
)

// PaymentMethodCredit routes the receipt side of the sale to Accounts
// Receivable instead of Cash.
const PaymentMethodCredit = "credit"

// CartLine is one requested (product, quantity) pair.
type CartLine struct {
	ProductID int64
	Quantity  int64
}

// CheckoutInput carries one validated checkout request.
type CheckoutInput struct {
	Items         []CartLine
	Discount      shared.Cents
	Tax           shared.Cents
	PaymentMethod string
}

// OrderLine snapshots unit prices at order creation time. Historical orders
// never change when catalog prices change.
type OrderLine struct {
	ProductID     int64
	ProductName   string
	Quantity      int64
	UnitSellPrice shared.Cents
	UnitCostPrice shared.Cents
	LineTotal     shared.Cents
	LineCost      shared.Cents
}

// Order is an immutable record of one completed checkout.
type Order struct {
	ID            int64
	OrderNumber   string
	CreatedAt     time.Time
	PaymentMethod string
	Subtotal      shared.Cents
	Discount      shared.Cents
	Tax           shared.Cents
	Total         shared.Cents
	COGS          shared.Cents
	GrossProfit   shared.Cents
	Lines         []OrderLine
}

// Receipt is returned to the caller after a committed checkout.
type Receipt struct {
	OrderNumber   string
	CreatedAt     time.Time
	PaymentMethod string
	Subtotal      shared.Cents
	Discount      shared.Cents
	Tax           shared.Cents
	Total         shared.Cents
	COGS          shared.Cents
	GrossProfit   shared.Cents
	TotalDisplay  string
	Items         []OrderLine
}

var (
	// ErrEmptyCart indicates a checkout without items.
	ErrEmptyCart = errors.New("checkout: cart is empty")
	// ErrInvalidQuantity indicates a requested quantity of zero or less.
	ErrInvalidQuantity = errors.New("checkout: quantity must be positive")
	// ErrInvalidAmount indicates a negative discount or tax.
	ErrInvalidAmount = errors.New("checkout: discount and tax must be >= 0")
)
