package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/celtis-pos/cmd/celtis/cli"
	"github.com/odyssey-erp/celtis-pos/internal/app"
	"github.com/odyssey-erp/celtis-pos/internal/catalog"
	"github.com/odyssey-erp/celtis-pos/internal/i18n"
	"github.com/odyssey-erp/celtis-pos/internal/observability"
	"github.com/odyssey-erp/celtis-pos/internal/pos"
	poshttp "github.com/odyssey-erp/celtis-pos/internal/pos/http"
	"github.com/odyssey-erp/celtis-pos/internal/toast"
	"github.com/odyssey-erp/celtis-pos/internal/view"
	"github.com/odyssey-erp/celtis-pos/jobs"
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
	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB}

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		jobsCLI := cli.NewJobsCLI(redisOpts)
		code := jobsCLI.Run(ctx, os.Args[2:], cli.CommandOptions{})
		if err := jobsCLI.Close(); err != nil {
			logger.Warn("jobs cli close", slog.Any("error", err))
		}
		os.Exit(code)
	}

	if err := serve(ctx, cfg, logger, redisOpts); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *app.Config, logger *slog.Logger, redisOpts asynq.RedisClientOpt) error {
	storage, err := app.OpenStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := storage.Close(); err != nil {
			logger.Warn("storage close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	products := catalog.NewStore(ctx, storage.KV, catalog.Options{
		Logger:   logger,
		Recorder: metrics,
		Timeout:  cfg.StorageTimeout,
	})
	sales := pos.NewStore(ctx, pos.NewRepository(storage.KV), pos.Options{
		Logger:     logger,
		Recorder:   metrics,
		TaxRateBps: cfg.TaxRateBps,
		Timeout:    cfg.StorageTimeout,
	})
	translator := i18n.NewTranslator(ctx, storage.KV, i18n.Options{
		Logger:  logger,
		Default: i18n.Locale(cfg.DefaultLocale),
		Timeout: cfg.StorageTimeout,
	})
	toasts := toast.NewCenter()
	defer toasts.Close()

	templates, err := view.NewEngine()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger: logger,
		Config: cfg,
		RegisterHandler: poshttp.NewHandler(poshttp.Deps{
			Logger:     logger,
			Sales:      sales,
			Catalog:    products,
			Translator: translator,
			Toasts:     toasts,
			Templates:  templates,
			Currency:   cfg.Currency,
		}),
		CatalogHandler: catalog.NewHandler(logger, products),
		JobHandler:     jobs.NewHandler(inspector, storage.KV, logger),
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("storage", storage.Driver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
