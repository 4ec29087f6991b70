package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"money-manager/internal/amqp"
	"money-manager/internal/analytics"
	"money-manager/internal/backend"
	"money-manager/internal/cache"
	"money-manager/internal/config"
	"money-manager/internal/currency"
	apphttp "money-manager/internal/http"
	"money-manager/internal/log"
	"money-manager/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: log.ComponentApp,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", log.FieldError, err)
			}
		}()
	}

	table, err := loadRates(cfg)
	if err != nil {
		logger.Error("Failed to load exchange rates", log.FieldError, err, "rates_file", cfg.RatesFile)
		os.Exit(1)
	}

	manager := cache.NewManager(logger)
	manager.StartCleanup(cfg.CacheCleanupInterval)
	defer manager.Stop()

	svc := analytics.NewService(result.Store, currency.NewNormalizer(table), analytics.Options{
		DisplayCurrency: cfg.DisplayCurrency,
		CacheSize:       cfg.CacheSize,
		CacheTTL:        cfg.CacheTTL,
		KeyMode:         cfg.KeyMode(),
		Location:        cfg.Location(),
	}, manager, logger)

	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()

		ratesWorker := worker.NewRatesWorker(table, manager.PurgeAll, logger)
		go func() {
			if err := ratesWorker.Run(ctx, client); err != nil {
				logger.Error("Rates worker stopped", log.FieldError, err)
			}
		}()
	} else {
		logger.Info("AMQP disabled - exchange rates are static", "base", table.Snapshot().Base)
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		RequestsPerMinute: cfg.RequestsPerMinute,
		Logger:            logger,
	})
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	}()

	logger.Info("Starting money-manager server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		log.FieldCurrency, cfg.DisplayCurrency,
		log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}

// loadRates reads RATES_FILE, or starts with an identity table in the
// display currency.
func loadRates(cfg *config.Config) (*currency.Table, error) {
	if cfg.RatesFile == "" {
		return currency.NewTable(currency.NewRates(cfg.DisplayCurrency, nil)), nil
	}
	return currency.LoadTable(cfg.RatesFile)
}
