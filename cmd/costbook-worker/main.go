package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"costbook/internal/amqp"
	"costbook/internal/config"
	applog "costbook/internal/log"
	"costbook/internal/storage"
	"costbook/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: applog.ComponentWorker})
	applog.SetDefault(logger)

	logger.Info("Starting costbook-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open cost store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	exportWorker := worker.NewExportWorker(store, cfg.ExportPath, cfg.ExportBatchSize)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Drain anything added while the worker was offline.
	if err := exportWorker.CatchUp(ctx); err != nil {
		logger.Error("Export catch-up failed", "error", err)
		os.Exit(1)
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		g.Go(func() error {
			return amqp.ConsumeCostAddedWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
				func(msg *amqp.CostAddedMessage) error {
					return exportWorker.HandleCostAdded(ctx, msg)
				})
		})
		logger.Info("Consuming cost added events",
			"exchange", cfg.AMQPExchange,
			"queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled, polling for unexported costs",
			"interval", cfg.ExportInterval.String())
	}

	// Periodic sweep catches records whose events were lost.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.ExportInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := exportWorker.CatchUp(ctx); err != nil {
					logger.Error("Export sweep failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
