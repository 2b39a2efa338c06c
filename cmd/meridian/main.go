package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meridian-ops/meridian/internal/app"
	"github.com/meridian-ops/meridian/internal/coa"
	"github.com/meridian-ops/meridian/internal/ledger"
	"github.com/meridian-ops/meridian/internal/observability"
	"github.com/meridian-ops/meridian/internal/platform/cache"
	"github.com/meridian-ops/meridian/internal/platform/db"
	"github.com/meridian-ops/meridian/internal/reports"
	"github.com/meridian-ops/meridian/internal/shared"
	"github.com/meridian-ops/meridian/internal/voucher"
	"github.com/meridian-ops/meridian/jobs"
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
		logger.Warn("redis unavailable, report cache disabled", slog.Any("error", err))
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

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool)
	reportCache := reports.NewCache(redisClient, logger, cfg.ReportCacheTTL)

	accountRepo := coa.NewRepository(pool)
	accountService := coa.NewService(accountRepo)
	accountHandler := coa.NewHandler(logger, accountService)

	ledgerService := ledger.NewService(ledger.NewReadStore(pool))
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	voucherRepo := voucher.NewRepository(pool)
	voucherService := voucher.NewService(voucherRepo, auditLogger, reportCache, metrics)
	voucherHandler := voucher.NewHandler(logger, voucherService)

	reportService := reports.NewService(reports.NewRepository(pool), reportCache)
	reportHandler := reports.NewHandler(logger, reportService)

	var jobHandler *jobs.Handler
	if redisClient != nil {
		inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		jobHandler = jobs.NewHandler(inspector, logger)
	}

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		AccountHandler: accountHandler,
		LedgerHandler:  ledgerHandler,
		VoucherHandler: voucherHandler,
		ReportHandler:  reportHandler,
		JobHandler:     jobHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("meridian listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
