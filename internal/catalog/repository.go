package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository encapsulates DB operations for products.
type Repository interface {
	Create(ctx context.Context, in CreateInput) (Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	List(ctx context.Context, filter ListFilter) ([]Product, error)
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns a Postgres-backed Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const productColumns = `id, sku, name, category, sell_price, cost_price, stock_qty, min_stock, is_active, created_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Category, &p.SellPrice, &p.CostPrice, &p.StockQty, &p.MinStock, &p.IsActive, &p.CreatedAt)
	return p, err
}

func (r *repository) Create(ctx context.Context, in CreateInput) (Product, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO products (sku, name, category, sell_price, cost_price, stock_qty, min_stock)
VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING `+productColumns,
		in.SKU, in.Name, in.Category, in.SellPrice, in.CostPrice, in.StockQty, in.MinStock)
	p, err := scanProduct(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Product{}, ErrSKUTaken
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1 AND is_active`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, &ProductNotFoundError{ID: id}
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	conds := make([]string, 0, 2)
	if !filter.IncludeInactive {
		conds = append(conds, "is_active")
	}
	if filter.LowStockOnly {
		conds = append(conds, "stock_qty <= min_stock")
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY name ASC"

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&count)
	return count, err
}
