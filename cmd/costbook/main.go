package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"costbook/internal/amqp"
	"costbook/internal/config"
	apphttp "costbook/internal/http"
	applog "costbook/internal/log"
	"costbook/internal/rates"
	"costbook/internal/reports"
	"costbook/internal/services"
	"costbook/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

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

	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			publisher = client
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	costService := services.NewCostService(store, publisher)
	defer costService.Close()

	rateCache := rates.NewCache(rates.NewHTTPFetcher(), cfg.RatesURL)
	aggregator := reports.NewAggregator(store)

	srv := apphttp.NewServer(":"+cfg.Port, costService, aggregator, rateCache, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting costbook server", "port", cfg.Port, "rates_url", cfg.RatesURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
