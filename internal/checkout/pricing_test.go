package checkout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/warungledger/warungledger/internal/catalog"
)

func testProducts() map[int64]catalog.Product {
	return map[int64]catalog.Product{
		1: {ID: 1, SKU: "SKU-A", Name: "Americano", SellPrice: 5000, CostPrice: 3000, StockQty: 10},
		2: {ID: 2, SKU: "SKU-B", Name: "Croissant", SellPrice: 18000, CostPrice: 7000, StockQty: 5},
	}
}

func TestPriceCartTotals(t *testing.T) {
	cart, err := PriceCart(testProducts(), []CartLine{{ProductID: 1, Quantity: 2}}, 2000, 1000)
	require.NoError(t, err)

	require.EqualValues(t, 10000, cart.Subtotal)
	require.EqualValues(t, 9000, cart.Total)
	require.EqualValues(t, 6000, cart.COGS)
	require.EqualValues(t, 3000, cart.GrossProfit)
	require.Len(t, cart.Lines, 1)
	require.EqualValues(t, 2, cart.Lines[0].Quantity)
	require.EqualValues(t, 5000, cart.Lines[0].UnitSellPrice)
	require.EqualValues(t, 10000, cart.Lines[0].LineTotal)
}

func TestPriceCartMergesDuplicateLines(t *testing.T) {
	cart, err := PriceCart(testProducts(), []CartLine{
		{ProductID: 1, Quantity: 1},
		{ProductID: 2, Quantity: 1},
		{ProductID: 1, Quantity: 2},
	}, 0, 0)
	require.NoError(t, err)

	require.Len(t, cart.Lines, 2)
	require.EqualValues(t, 1, cart.Lines[0].ProductID)
	require.EqualValues(t, 3, cart.Lines[0].Quantity)
	require.EqualValues(t, 2, cart.Lines[1].ProductID)
	require.EqualValues(t, 33000, cart.Subtotal)
}

func TestPriceCartClampsTotalAtZero(t *testing.T) {
	cart, err := PriceCart(testProducts(), []CartLine{{ProductID: 1, Quantity: 1}}, 99999, 0)
	require.NoError(t, err)

	require.EqualValues(t, 0, cart.Total)
	require.EqualValues(t, -3000, cart.GrossProfit)
}

func TestPriceCartRejectsBadInput(t *testing.T) {
	_, err := PriceCart(testProducts(), nil, 0, 0)
	require.ErrorIs(t, err, ErrEmptyCart)

	_, err = PriceCart(testProducts(), []CartLine{{ProductID: 1, Quantity: 0}}, 0, 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = PriceCart(testProducts(), []CartLine{{ProductID: 1, Quantity: -2}}, 0, 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = PriceCart(testProducts(), []CartLine{{ProductID: 1, Quantity: 1}}, -1, 0)
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = PriceCart(testProducts(), []CartLine{{ProductID: 99, Quantity: 1}}, 0, 0)
	var notFound *catalog.ProductNotFoundError
	require.True(t, errors.As(err, &notFound))
	require.EqualValues(t, 99, notFound.ID)
}
