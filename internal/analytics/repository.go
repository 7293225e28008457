package analytics

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository runs the reporting aggregations. Nil date bounds aggregate over
// the full history.
type Repository interface {
	SalesSummary(ctx context.Context, start, end *time.Time) (SalesSummary, error)
	TopProducts(ctx context.Context, start, end *time.Time, limit int) ([]TopProduct, error)
	StockValuation(ctx context.Context) (StockValuation, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns a Postgres-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) SalesSummary(ctx context.Context, start, end *time.Time) (SalesSummary, error) {
	summary := SalesSummary{StartDate: start, EndDate: end}

	query := `SELECT COUNT(*),
	COALESCE(SUM(subtotal), 0),
	COALESCE(SUM(discount), 0),
	COALESCE(SUM(tax), 0),
	COALESCE(SUM(total), 0),
	COALESCE(SUM(cogs), 0),
	COALESCE(SUM(gross_profit), 0)
FROM orders`
	query, args := appendOrderDateFilters(query, nil, start, end, "created_at")
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&summary.OrderCount,
		&summary.GrossSales,
		&summary.Discounts,
		&summary.Taxes,
		&summary.NetRevenue,
		&summary.COGS,
		&summary.GrossProfit,
	)
	if err != nil {
		return SalesSummary{}, err
	}

	itemsQuery := `SELECT COALESCE(SUM(oi.quantity), 0)
FROM order_items oi JOIN orders o ON o.id = oi.order_id`
	itemsQuery, itemsArgs := appendOrderDateFilters(itemsQuery, nil, start, end, "o.created_at")
	if err := r.db.QueryRow(ctx, itemsQuery, itemsArgs...).Scan(&summary.ItemsSold); err != nil {
		return SalesSummary{}, err
	}

	summary.AvgOrderValue = AverageOrderValue(summary.NetRevenue, summary.OrderCount)
	return summary, nil
}

func (r *repository) TopProducts(ctx context.Context, start, end *time.Time, limit int) ([]TopProduct, error) {
	query := `SELECT oi.product_id, p.name,
	SUM(oi.quantity) AS qty,
	SUM(oi.line_total) AS revenue
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
JOIN products p ON p.id = oi.product_id`
	query, args := appendOrderDateFilters(query, nil, start, end, "o.created_at")
	args = append(args, limit)
	query += ` GROUP BY oi.product_id, p.name
ORDER BY qty DESC, revenue DESC, oi.product_id ASC
LIMIT $` + strconv.Itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TopProduct
	for rows.Next() {
		var tp TopProduct
		if err := rows.Scan(&tp.ProductID, &tp.ProductName, &tp.QuantitySold, &tp.Revenue); err != nil {
			return nil, err
		}
		out = append(out, tp)
	}
	return out, rows.Err()
}

func (r *repository) StockValuation(ctx context.Context) (StockValuation, error) {
	rows, err := r.db.Query(ctx, `SELECT id, sku, name, stock_qty, cost_price, sell_price,
	stock_qty * cost_price AS cost_value,
	stock_qty * sell_price AS retail_value
FROM products WHERE is_active ORDER BY cost_value DESC, id ASC`)
	if err != nil {
		return StockValuation{}, err
	}
	defer rows.Close()
	var result StockValuation
	for rows.Next() {
		var row ValuationRow
		if err := rows.Scan(&row.ProductID, &row.SKU, &row.Name, &row.StockQty, &row.CostPrice, &row.SellPrice, &row.CostValue, &row.RetailValue); err != nil {
			return StockValuation{}, err
		}
		result.ActiveProducts++
		result.TotalUnits += row.StockQty
		result.CostValue += row.CostValue
		result.RetailValue += row.RetailValue
		result.Rows = append(result.Rows, row)
	}
	result.PotentialMargin = result.RetailValue - result.CostValue
	return result, rows.Err()
}

func appendOrderDateFilters(query string, args []any, start, end *time.Time, column string) (string, []any) {
	conj := " WHERE "
	if start != nil {
		args = append(args, *start)
		query += conj + column + " >= $" + strconv.Itoa(len(args))
		conj = " AND "
	}
	if end != nil {
		args = append(args, *end)
		query += conj + column + " <= $" + strconv.Itoa(len(args))
	}
	return query, args
}
