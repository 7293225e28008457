package inventory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warungledger/warungledger/internal/catalog"
	"github.com/warungledger/warungledger/internal/ledger"
	"github.com/warungledger/warungledger/internal/platform/db"
)

// Repository encapsulates DB operations for inventory movements.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error)
}

// TxRepository exposes methods available within a transaction.
type TxRepository interface {
	GetProductForUpdate(ctx context.Context, id int64) (catalog.Product, error)
	UpdateProductStock(ctx context.Context, id int64, stockQty int64) error
	InsertMovement(ctx context.Context, m Movement) (Movement, error)
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

func (r *repository) ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error) {
	query := `SELECT id, product_id, movement_type, quantity_change, before_qty, after_qty, reason, ref_type, ref_id, created_at
FROM inventory_movements`
	args := make([]any, 0, 2)
	if filter.ProductID != nil {
		args = append(args, *filter.ProductID)
		query += ` WHERE product_id = $1`
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		if len(args) == 1 {
			query += ` LIMIT $1`
		} else {
			query += ` LIMIT $2`
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var movements []Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Type, &m.QuantityChange, &m.BeforeQty, &m.AfterQty, &m.Reason, &m.RefType, &m.RefID, &m.CreatedAt); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetProductForUpdate(ctx context.Context, id int64) (catalog.Product, error) {
	row := r.tx.QueryRow(ctx, `SELECT id, sku, name, category, sell_price, cost_price, stock_qty, min_stock, is_active, created_at
FROM products WHERE id=$1 AND is_active FOR UPDATE`, id)
	var p catalog.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Category, &p.SellPrice, &p.CostPrice, &p.StockQty, &p.MinStock, &p.IsActive, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Product{}, &catalog.ProductNotFoundError{ID: id}
		}
		return catalog.Product{}, err
	}
	return p, nil
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

func (r *txRepository) InsertMovement(ctx context.Context, m Movement) (Movement, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO inventory_movements (product_id, movement_type, quantity_change, before_qty, after_qty, reason, ref_type, ref_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id, created_at`,
		m.ProductID, m.Type, m.QuantityChange, m.BeforeQty, m.AfterQty, m.Reason, m.RefType, m.RefID)
	if err := row.Scan(&m.ID, &m.CreatedAt); err != nil {
		return Movement{}, err
	}
	return m, nil
}

func (r *txRepository) PostJournal(ctx context.Context, lines []ledger.LineInput) error {
	return ledger.PostLines(ctx, r.tx, lines)
}
