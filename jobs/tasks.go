package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLowStockScan re-checks products flagged at or below minimum stock.
	TaskLowStockScan = "inventory:low_stock_scan"
	// TaskReportWarmup pre-computes the daily reports into the cache.
	TaskReportWarmup = "reports:warmup"
)

// LowStockScanPayload scopes a scan to specific products. An empty list scans
// the whole catalog.
type LowStockScanPayload struct {
	ProductIDs []int64 `json:"product_ids,omitempty"`
}

// NewLowStockScanTask constructs a low-stock scan task.
func NewLowStockScanTask(payload LowStockScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, data), nil
}

// NewReportWarmupTask constructs a report warmup task.
func NewReportWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskReportWarmup, nil)
}
