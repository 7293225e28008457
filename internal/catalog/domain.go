package catalog

import (
	"errors"
	"fmt"
	"time"

	"github.com/warungledger/warungledger/internal/shared"
)

// Product is a sellable catalog item. Stock is only mutated by the checkout
// and adjustment engines; products are deactivated, never deleted.
type Product struct {
	ID        int64
	SKU       string
	Name      string
	Category  *string
	SellPrice shared.Cents
	CostPrice shared.Cents
	StockQty  int64
	MinStock  int64
	IsActive  bool
	CreatedAt time.Time
}

// LowStock reports whether the product is at or below its minimum level.
func (p Product) LowStock() bool {
	return p.StockQty <= p.MinStock
}

// ErrSKUTaken indicates a duplicate SKU on create.
var ErrSKUTaken = errors.New("catalog: sku already in use")

// ProductNotFoundError identifies a missing or inactive product.
type ProductNotFoundError struct {
	ID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("catalog: product %d not found", e.ID)
}

// ListFilter narrows product listings.
type ListFilter struct {
	LowStockOnly    bool
	IncludeInactive bool
}

// CreateInput carries a validated product create request.
type CreateInput struct {
	SKU       string
	Name      string
	Category  *string
	SellPrice shared.Cents
	CostPrice shared.Cents
	StockQty  int64
	MinStock  int64
}
