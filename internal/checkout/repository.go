package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warungledger/warungledger/internal/catalog"
	"github.com/warungledger/warungledger/internal/inventory"
	"github.com/warungledger/warungledger/internal/ledger"
	"github.com/warungledger/warungledger/internal/platform/db"
)

// Repository encapsulates DB operations for checkouts and order listings.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListOrders(ctx context.Context, limit int) ([]Order, error)
}

// TxRepository exposes the operations of one checkout transaction. Product
// and journal access is duplicated here rather than borrowed from the other
// repositories so every write shares this transaction.
type TxRepository interface {
	GetProductsForUpdate(ctx context.Context, ids []int64) (map[int64]catalog.Product, error)
	NextOrderNumber(ctx context.Context, day time.Time) (string, error)
	InsertOrder(ctx context.Context, o Order) (Order, error)
	InsertOrderLines(ctx context.Context, orderID int64, lines []OrderLine) error
	UpdateProductStock(ctx context.Context, id int64, stockQty int64) error
	InsertMovement(ctx context.Context, m inventory.Movement) error
	PostJournal(ctx context.Context, lines []ledger.LineInput) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns a Postgres-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

func (r *repository) ListOrders(ctx context.Context, limit int) ([]Order, error) {
	rows, err := r.db.Query(ctx, `SELECT id, order_number, created_at, payment_method, subtotal, discount, tax, total, cogs, gross_profit
FROM orders ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.CreatedAt, &o.PaymentMethod, &o.Subtotal, &o.Discount, &o.Tax, &o.Total, &o.COGS, &o.GrossProfit); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

type txRepository struct {
	tx pgx.Tx
}

// GetProductsForUpdate locks the product rows in ascending id order so
// concurrent checkouts touching the same products cannot deadlock.
func (r *txRepository) GetProductsForUpdate(ctx context.Context, ids []int64) (map[int64]catalog.Product, error) {
	rows, err := r.tx.Query(ctx, `SELECT id, sku, name, category, sell_price, cost_price, stock_qty, min_stock, is_active, created_at
FROM products WHERE id = ANY($1) AND is_active ORDER BY id ASC FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := make(map[int64]catalog.Product, len(ids))
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Category, &p.SellPrice, &p.CostPrice, &p.StockQty, &p.MinStock, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, err
		}
		products[p.ID] = p
	}
	return products, rows.Err()
}

// NextOrderNumber allocates the next number from the per-day counter row.
// The row lock taken by the upsert serializes allocation, so two concurrent
// checkouts can never draw the same number.
func (r *txRepository) NextOrderNumber(ctx context.Context, day time.Time) (string, error) {
	var seq int64
	err := r.tx.QueryRow(ctx, `INSERT INTO order_counters (day, seq) VALUES ($1, 1)
ON CONFLICT (day) DO UPDATE SET seq = order_counters.seq + 1
RETURNING seq`, day.Format("2006-01-02")).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%s-%06d", day.Format("20060102"), seq), nil
}

func (r *txRepository) InsertOrder(ctx context.Context, o Order) (Order, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO orders (order_number, payment_method, subtotal, discount, tax, total, cogs, gross_profit)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id, created_at`,
		o.OrderNumber, o.PaymentMethod, o.Subtotal, o.Discount, o.Tax, o.Total, o.COGS, o.GrossProfit)
	if err := row.Scan(&o.ID, &o.CreatedAt); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *txRepository) InsertOrderLines(ctx context.Context, orderID int64, lines []OrderLine) error {
	for _, line := range lines {
		if _, err := r.tx.Exec(ctx, `INSERT INTO order_items (order_id, product_id, quantity, unit_price, cost_price, line_total, line_cost_total)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			orderID, line.ProductID, line.Quantity, line.UnitSellPrice, line.UnitCostPrice, line.LineTotal, line.LineCost); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) UpdateProductStock(ctx context.Context, id int64, stockQty int64) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE products SET stock_qty=$2 WHERE id=$1`, id, stockQty)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return &catalog.ProductNotFoundError{ID: id}
	}
	return nil
}

func (r *txRepository) InsertMovement(ctx context.Context, m inventory.Movement) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO inventory_movements (product_id, movement_type, quantity_change, before_qty, after_qty, reason, ref_type, ref_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		m.ProductID, m.Type, m.QuantityChange, m.BeforeQty, m.AfterQty, m.Reason, m.RefType, m.RefID)
	return err
}

func (r *txRepository) PostJournal(ctx context.Context, lines []ledger.LineInput) error {
	return ledger.PostLines(ctx, r.tx, lines)
}
