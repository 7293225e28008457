package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LowStockScanJob reports products at or below their minimum stock level. It
// runs after checkouts that push a product under its threshold and on a
// nightly cron over the whole catalog.
type LowStockScanJob struct {
	Pool   *pgxpool.Pool
	Logger *slog.Logger
	clock  func() time.Time
}

// NewLowStockScanJob initialises the low-stock scan handler.
func NewLowStockScanJob(pool *pgxpool.Pool, logger *slog.Logger) *LowStockScanJob {
	return &LowStockScanJob{
		Pool:   pool,
		Logger: logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the low-stock scan.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("low stock scan: handler not configured")
	}
	var payload LowStockScanPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	start := j.now()
	logger := j.logger()
	logger.Info("starting low stock scan", slog.Int("scoped_products", len(payload.ProductIDs)))

	query := `SELECT id, sku, name, stock_qty, min_stock FROM products
WHERE is_active AND stock_qty <= min_stock`
	args := []any{}
	if len(payload.ProductIDs) > 0 {
		query += ` AND id = ANY($1)`
		args = append(args, payload.ProductIDs)
	}
	query += ` ORDER BY stock_qty - min_stock ASC`

	rows, err := j.Pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("scan failed", slog.Any("error", err))
		return err
	}
	defer rows.Close()

	flagged := 0
	for rows.Next() {
		var id, stockQty, minStock int64
		var sku, name string
		if err := rows.Scan(&id, &sku, &name, &stockQty, &minStock); err != nil {
			return err
		}
		flagged++
		logger.Warn("product below minimum stock",
			slog.Int64("product_id", id),
			slog.String("sku", sku),
			slog.String("name", name),
			slog.Int64("stock_qty", stockQty),
			slog.Int64("min_stock", minStock),
		)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	logger.Info("completed low stock scan",
		slog.Int("flagged", flagged),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *LowStockScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLowStockScan))
	}
	return slog.Default().With(slog.String("job", TaskLowStockScan))
}

func (j *LowStockScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
