package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"kharcha/internal/amqp"
	"kharcha/internal/auth"
	"kharcha/internal/cli"
	apphttp "kharcha/internal/http"
	applog "kharcha/internal/log"
	"kharcha/internal/metrics"
	"kharcha/internal/services"
	"kharcha/internal/views"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(applog.ComponentHTTP)

	result := cli.OpenStore(context.Background(), logger.Logger, cfg)
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Failed to close store", "error", err)
		}
	}()

	m := metrics.New()
	opts := []services.Option{services.WithRecorder(m)}

	// Events are optional: without a broker the worker only sees the cron sweep.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, events disabled", "error", err)
		} else {
			defer amqpClient.Close()
			opts = append(opts, services.WithPublisher(amqpClient))
			logger.Info("AMQP publisher ready", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL, cfg.VerifyTTL)
	accounts := services.NewAccountService(result.Store, tokens, cfg.BaseURL, opts...)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:     ":" + cfg.Port,
		Accounts: accounts,
		Services: views.Services{
			Expenses: services.NewExpenseService(result.Store, opts...),
			Budgets:  services.NewBudgetService(result.Store, opts...),
			Profiles: services.NewProfileService(result.Store, opts...),
		},
		Store:              result.Store,
		Metrics:            m,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		SessionCacheSize:   cfg.CacheSize,
		SessionCacheTTL:    cfg.CacheTTL,
		SecureCookies:      cfg.SecureCookies,
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting kharcha server", "port", cfg.Port, "backend", cfg.DataBackend, "base_url", cfg.BaseURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
