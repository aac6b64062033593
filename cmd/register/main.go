// Command register runs the till in a terminal against the configured
// storage backend.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/odyssey-erp/celtis-pos/internal/app"
	"github.com/odyssey-erp/celtis-pos/internal/catalog"
	"github.com/odyssey-erp/celtis-pos/internal/i18n"
	"github.com/odyssey-erp/celtis-pos/internal/pos"
	"github.com/odyssey-erp/celtis-pos/internal/toast"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping register startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	// stdout belongs to the register screen
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.LogLevel = "warn"
	}
	logger := app.NewLoggerTo(os.Stderr, cfg)

	storage, err := app.OpenStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("open storage", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := storage.Close(); err != nil {
			logger.Warn("storage close", slog.Any("error", err))
		}
	}()

	toasts := toast.NewCenter()
	defer toasts.Close()

	register := NewRegister(Deps{
		Sales: pos.NewStore(ctx, pos.NewRepository(storage.KV), pos.Options{
			Logger:     logger,
			TaxRateBps: cfg.TaxRateBps,
			Timeout:    cfg.StorageTimeout,
		}),
		Catalog: catalog.NewStore(ctx, storage.KV, catalog.Options{Logger: logger, Timeout: cfg.StorageTimeout}),
		Translator: i18n.NewTranslator(ctx, storage.KV, i18n.Options{
			Logger:  logger,
			Default: i18n.Locale(cfg.DefaultLocale),
			Timeout: cfg.StorageTimeout,
		}),
		Toasts:   toasts,
		Currency: cfg.Currency,
	}, os.Stdin, os.Stdout)

	if err := register.Run(ctx); err != nil {
		logger.Error("register stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
