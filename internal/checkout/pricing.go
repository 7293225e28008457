package checkout

import (
	"fmt"

	"github.com/warungledger/warungledger/internal/catalog"
	"github.com/warungledger/warungledger/internal/shared"
)

// PricedCart holds the totals of one cart priced against a product snapshot.
type PricedCart struct {
	Lines       []OrderLine
	Subtotal    shared.Cents
	Discount    shared.Cents
	Tax         shared.Cents
	Total       shared.Cents
	COGS        shared.Cents
	GrossProfit shared.Cents
}

// PriceCart computes line totals, discount/tax application and the weighted
// cost basis for a cart. Unit prices are snapshotted from the given products
// at call time. Duplicate product lines are merged. Pure: no side effects.
//
// Total is clamped at zero when the discount exceeds the subtotal; gross
// profit is not clamped and may be negative.
func PriceCart(products map[int64]catalog.Product, items []CartLine, discount, tax shared.Cents) (PricedCart, error) {
	if len(items) == 0 {
		return PricedCart{}, ErrEmptyCart
	}
	if discount < 0 || tax < 0 {
		return PricedCart{}, ErrInvalidAmount
	}

	qtyByProduct := make(map[int64]int64, len(items))
	order := make([]int64, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return PricedCart{}, fmt.Errorf("%w: product %d requested %d", ErrInvalidQuantity, item.ProductID, item.Quantity)
		}
		if _, seen := qtyByProduct[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		qtyByProduct[item.ProductID] += item.Quantity
	}

	cart := PricedCart{Discount: discount, Tax: tax}
	for _, productID := range order {
		product, ok := products[productID]
		if !ok {
			return PricedCart{}, &catalog.ProductNotFoundError{ID: productID}
		}
		qty := qtyByProduct[productID]
		line := OrderLine{
			ProductID:     product.ID,
			ProductName:   product.Name,
			Quantity:      qty,
			UnitSellPrice: product.SellPrice,
			UnitCostPrice: product.CostPrice,
			LineTotal:     product.SellPrice.MulQty(qty),
			LineCost:      product.CostPrice.MulQty(qty),
		}
		cart.Subtotal += line.LineTotal
		cart.COGS += line.LineCost
		cart.Lines = append(cart.Lines, line)
	}

	cart.Total = cart.Subtotal - discount + tax
	if cart.Total < 0 {
		cart.Total = 0
	}
	cart.GrossProfit = cart.Total - cart.COGS
	return cart, nil
}
