package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/warungledger/warungledger/internal/analytics"
)

// ReportWarmupJob pre-computes the common reports so the first dashboard hit
// of the day is served from cache.
type ReportWarmupJob struct {
	Reports *analytics.Service
	Logger  *slog.Logger
	clock   func() time.Time
}

// NewReportWarmupJob initialises the warmup handler.
func NewReportWarmupJob(reports *analytics.Service, logger *slog.Logger) *ReportWarmupJob {
	return &ReportWarmupJob{
		Reports: reports,
		Logger:  logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the warmup.
func (j *ReportWarmupJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("report warmup: handler not configured")
	}
	now := j.now()
	logger := j.logger()

	// The dashboard's first hits are the unranged reports.
	if _, err := j.Reports.SalesSummary(ctx, nil, nil); err != nil {
		logger.Error("warm sales summary", slog.Any("error", err))
		return err
	}
	if _, err := j.Reports.TopProducts(ctx, nil, nil, 10); err != nil {
		logger.Error("warm top products", slog.Any("error", err))
		return err
	}
	if _, err := j.Reports.StockValuation(ctx); err != nil {
		logger.Error("warm stock valuation", slog.Any("error", err))
		return err
	}
	logger.Info("reports warmed", slog.Duration("duration", time.Since(now)))
	return nil
}

func (j *ReportWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReportWarmup))
}

func (j *ReportWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
