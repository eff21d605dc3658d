package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/oswork-erp/oswork-erp/internal/app"
	"github.com/oswork-erp/oswork-erp/internal/audit"
	audithttp "github.com/oswork-erp/oswork-erp/internal/audit/http"
	"github.com/oswork-erp/oswork-erp/internal/brands"
	brandshttp "github.com/oswork-erp/oswork-erp/internal/brands/http"
	"github.com/oswork-erp/oswork-erp/internal/insights"
	insightshttp "github.com/oswork-erp/oswork-erp/internal/insights/http"
	"github.com/oswork-erp/oswork-erp/internal/orders"
	ordershttp "github.com/oswork-erp/oswork-erp/internal/orders/http"
	"github.com/oswork-erp/oswork-erp/internal/periods"
	periodshttp "github.com/oswork-erp/oswork-erp/internal/periods/http"
	"github.com/oswork-erp/oswork-erp/internal/platform/cache"
	"github.com/oswork-erp/oswork-erp/internal/platform/db"
	"github.com/oswork-erp/oswork-erp/internal/settings"
	settingshttp "github.com/oswork-erp/oswork-erp/internal/settings/http"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, settings cache disabled", slog.Any("error", err))
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

	settingsRepo := settings.NewRepository(dbpool)
	settingsService := settings.NewService(settingsRepo, redisClient, cfg.SettingsCacheTTL, logger)
	settingsHandler := settingshttp.NewHandler(logger, settingsService)

	brandRepo := brands.NewRepository(dbpool)
	brandService := brands.NewService(brandRepo)
	brandHandler := brandshttp.NewHandler(logger, brandService)

	periodRepo := periods.NewRepository(dbpool)
	periodService := periods.NewService(periodRepo)
	periodHandler := periodshttp.NewHandler(logger, periodService)

	orderRepo := orders.NewRepository(dbpool)
	orderService := orders.NewService(orderRepo, periodService, brandService, settingsService)
	if strategy := periods.Strategy(strings.ToUpper(cfg.PeriodStrategy)); strategy == periods.StrategyMonthly {
		orderService.WithStrategy(strategy)
	}
	orderHandler := ordershttp.NewHandler(logger, orderService)

	auditRepo := audit.NewRepository(dbpool)
	auditService := audit.NewService(auditRepo)
	auditHandler := audithttp.NewHandler(logger, auditService)

	insightsRepo := insights.NewPGRepository(dbpool)
	insightsService := insights.NewService(insightsRepo)
	insightsHandler := insightshttp.NewHandler(logger, insightsService)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		OrdersHandler:   orderHandler,
		PeriodsHandler:  periodHandler,
		BrandsHandler:   brandHandler,
		SettingsHandler: settingsHandler,
		AuditHandler:    auditHandler,
		InsightsHandler: insightsHandler,
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
