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

	"github.com/meridian-erp/meridian/internal/app"
	"github.com/meridian-erp/meridian/internal/catalog"
	"github.com/meridian-erp/meridian/internal/docform"
	"github.com/meridian-erp/meridian/internal/forms"
	"github.com/meridian-erp/meridian/internal/gateway"
	"github.com/meridian-erp/meridian/internal/platform/cache"
	"github.com/meridian-erp/meridian/jobs"
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

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		// Sessions degrade to memory-only and the catalog to fetch-per-open.
		logger.Warn("redis unavailable", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	registry := docform.DefaultRegistry()
	if cfg.DocTypesPath != "" {
		registry, err = docform.LoadRegistry(cfg.DocTypesPath)
		if err != nil {
			logger.Error("load document types", slog.Any("error", err))
			os.Exit(1)
		}
	}

	catalogClient := catalog.NewClient(cfg.MasterdataBaseURL, cfg.MasterdataAPIKey, cfg.UpstreamTimeout)
	catalogService := catalog.NewService(catalogClient, catalog.NewCache(redisClient, cfg.CatalogTTL), logger)

	erpClient := gateway.NewClient(cfg.ERPBaseURL, cfg.ERPAPIKey, cfg.UpstreamTimeout, logger)

	store := forms.NewStore(redisClient, cfg.DraftTTL, logger)
	formsService := forms.NewService(registry, catalogService, erpClient, store, logger)
	formsHandler := forms.NewHandler(logger, formsService)

	var jobHandler *jobs.Handler
	if redisClient != nil {
		inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		jobHandler = jobs.NewHandler(inspector, logger)
	}

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		FormsHandler: formsHandler,
		Registry:     registry,
		JobHandler:   jobHandler,
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
