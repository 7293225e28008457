package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/warungledger/warungledger/internal/analytics"
	"github.com/warungledger/warungledger/internal/app"
	"github.com/warungledger/warungledger/internal/catalog"
	"github.com/warungledger/warungledger/internal/checkout"
	"github.com/warungledger/warungledger/internal/inventory"
	"github.com/warungledger/warungledger/internal/ledger"
	"github.com/warungledger/warungledger/internal/observability"
	"github.com/warungledger/warungledger/internal/platform/cache"
	"github.com/warungledger/warungledger/internal/platform/db"
	"github.com/warungledger/warungledger/internal/shared"
	"github.com/warungledger/warungledger/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, reports will not be cached", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	if err := ledger.EnsureAccounts(ctx, pool); err != nil {
		logger.Error("ensure accounts", slog.Any("error", err))
		os.Exit(1)
	}
	catalogRepo := catalog.NewRepository(pool)
	if cfg.SeedCatalog {
		if err := catalog.Bootstrap(ctx, logger, catalogRepo); err != nil {
			logger.Error("seed catalog", slog.Any("error", err))
			os.Exit(1)
		}
	}

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool)
	reportCache := analytics.NewCache(redisClient, cfg.CacheTTL)

	jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	catalogService := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	inventoryService := inventory.NewService(inventory.NewRepository(pool), auditLogger, reportCache, metrics.AdjustmentsTotal)
	inventoryHandler := inventory.NewHandler(logger, inventoryService)

	checkoutService := checkout.NewService(checkout.NewRepository(pool), auditLogger, reportCache, jobClient, metrics.CheckoutsTotal, metrics.CheckoutConflicts)
	checkoutHandler := checkout.NewHandler(logger, checkoutService)

	ledgerService := ledger.NewService(ledger.NewRepository(pool))
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	analyticsService := analytics.NewService(analytics.NewRepository(pool), reportCache)
	analyticsHandler := analytics.NewHandler(logger, analyticsService)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		CatalogHandler:   catalogHandler,
		CheckoutHandler:  checkoutHandler,
		InventoryHandler: inventoryHandler,
		LedgerHandler:    ledgerHandler,
		AnalyticsHandler: analyticsHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
