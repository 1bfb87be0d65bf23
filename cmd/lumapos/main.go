package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumapos/lumapos/internal/app"
	"github.com/lumapos/lumapos/internal/catalog"
	"github.com/lumapos/lumapos/internal/importer"
	"github.com/lumapos/lumapos/internal/observability"
	"github.com/lumapos/lumapos/internal/platform/cache"
	"github.com/lumapos/lumapos/internal/platform/db"
	"github.com/lumapos/lumapos/internal/sales"
	"github.com/lumapos/lumapos/internal/users"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		logger.Error("ensure schema", slog.Any("error", err))
		os.Exit(1)
	}

	var catalogCache *catalog.Cache
	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisDialTimeout)
	if err != nil {
		logger.Warn("redis unavailable, product cache disabled", slog.Any("error", err))
	} else {
		catalogCache = catalog.NewCache(redisClient, cfg.CacheTTL)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()

	catalogRepo := catalog.NewRepository(pool)
	catalogService := catalog.NewService(catalogRepo, catalogCache, logger)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	salesRepo := sales.NewRepository(pool)
	salesService := sales.NewService(salesRepo, catalogService, logger, func(decimal.Decimal) {
		metrics.SaleRecorded()
	})
	salesHandler := sales.NewHandler(logger, salesService)

	importService := importer.NewService(catalogService, logger, cfg.ImportPreviewTTL, metrics.ImportRow)
	importHandler := importer.NewHandler(logger, importService)

	userRepo := users.NewRepository(pool)
	userService := users.NewService(userRepo)
	userHandler := users.NewHandler(logger, userService)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		CatalogHandler:  catalogHandler,
		SalesHandler:    salesHandler,
		ImporterHandler: importHandler,
		UsersHandler:    userHandler,
		Metrics:         metrics,
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
