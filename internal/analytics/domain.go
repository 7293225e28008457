package analytics

import (
	"time"

	"github.com/warungledger/warungledger/internal/shared"
)

// SalesSummary aggregates completed orders, optionally bounded by date.
type SalesSummary struct {
	StartDate     *time.Time   `json:"start_date,omitempty"`
	EndDate       *time.Time   `json:"end_date,omitempty"`
	OrderCount    int64        `json:"order_count"`
	ItemsSold     int64        `json:"items_sold"`
	GrossSales    shared.Cents `json:"gross_sales"`
	Discounts     shared.Cents `json:"discounts"`
	Taxes         shared.Cents `json:"taxes"`
	NetRevenue    shared.Cents `json:"net_revenue"`
	COGS          shared.Cents `json:"cogs"`
	GrossProfit   shared.Cents `json:"gross_profit"`
	AvgOrderValue shared.Cents `json:"avg_order_value"`
}

// AverageOrderValue divides net revenue across orders, zero when no orders.
func AverageOrderValue(net shared.Cents, orders int64) shared.Cents {
	if orders == 0 {
		return 0
	}
	return net / shared.Cents(orders)
}

// TopProduct ranks a product by quantity sold, revenue as tiebreak.
type TopProduct struct {
	ProductID    int64        `json:"product_id"`
	ProductName  string       `json:"product_name"`
	QuantitySold int64        `json:"quantity_sold"`
	Revenue      shared.Cents `json:"revenue"`
}

// ValuationRow is the on-hand value of one product at cost and at retail.
type ValuationRow struct {
	ProductID   int64        `json:"product_id"`
	SKU         string       `json:"sku"`
	Name        string       `json:"name"`
	StockQty    int64        `json:"stock_qty"`
	CostPrice   shared.Cents `json:"cost_price"`
	SellPrice   shared.Cents `json:"sell_price"`
	CostValue   shared.Cents `json:"cost_value"`
	RetailValue shared.Cents `json:"retail_value"`
}

// StockValuation is the per-product breakdown plus catalog-wide totals.
type StockValuation struct {
	Rows            []ValuationRow `json:"rows"`
	ActiveProducts  int64          `json:"active_products"`
	TotalUnits      int64          `json:"total_units"`
	CostValue       shared.Cents   `json:"inventory_cost_value"`
	RetailValue     shared.Cents   `json:"inventory_retail_value"`
	PotentialMargin shared.Cents   `json:"potential_margin"`
}
