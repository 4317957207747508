package main

import (
	"context"
	"errors"
	"os"

	"paghetta/internal/amqp"
	"paghetta/internal/backend"
	"paghetta/internal/cli"
	"paghetta/internal/config"
	apphttp "paghetta/internal/http"
	applog "paghetta/internal/log"
	"paghetta/internal/metrics"
	"paghetta/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	if err := run(logger, cfg); err != nil {
		logger.Error("Server stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(logger *applog.Logger, cfg *config.Config) error {
	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	prices, err := config.LoadPriceTable(cfg.PriceTableFile)
	if err != nil {
		return err
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	store, err := backend.NewOpener(logger.WithComponent(applog.ComponentBackend).Logger).Open(ctx, backendCfg)
	if err != nil {
		return err
	}

	m := metrics.New()
	opts := []services.Option{
		services.WithMetrics(m),
		services.WithRecentLimit(cfg.RecentLimit),
	}

	var notifier *amqp.Client
	if cfg.AMQPURL != "" {
		notifier, err = amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// Chores are still recorded; only the notification is lost.
			logger.WithComponent(applog.ComponentAMQP).Warn("AMQP unavailable, chore notifications disabled", applog.FieldError, err)
		} else {
			opts = append(opts, services.WithNotifier(notifier))
			logger.WithComponent(applog.ComponentAMQP).Info("Publishing chore.recorded messages",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	svc := services.NewChoreService(store.Store, prices, opts...)
	srv := apphttp.NewServer(":"+cfg.Port, svc,
		apphttp.WithLogger(logger),
		apphttp.WithMetrics(m),
		apphttp.WithCurrency(cfg.CurrencySymbol),
		apphttp.WithRateLimit(cfg.RateLimitPerMinute),
		apphttp.WithTrustedProxies(cfg.TrustedProxies))

	logger.Info("Starting paghetta server",
		applog.FieldOperation, applog.OpStartup,
		"port", cfg.Port,
		"backend", backendCfg.Kind,
		"tasks", prices.Len(),
		"recent_limit", cfg.RecentLimit)

	return cli.Serve(ctx, logger, srv, cfg.ShutdownTimeout, func() error {
		var errs []error
		if notifier != nil {
			errs = append(errs, notifier.Close())
		}
		errs = append(errs, store.Close())
		return errors.Join(errs...)
	})
}
