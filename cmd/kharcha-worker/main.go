package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"kharcha/internal/amqp"
	"kharcha/internal/cache"
	"kharcha/internal/cli"
	applog "kharcha/internal/log"
	"kharcha/internal/metrics"
	"kharcha/internal/notify"
	"kharcha/internal/sheets/google"
	"kharcha/internal/worker"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(applog.ComponentWorker)
	logger.Info("Starting kharcha-worker")

	result := cli.OpenStore(context.Background(), logger.Logger, cfg)
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Failed to close store", "error", err)
		}
	}()

	m := metrics.New()
	opts := []worker.Option{worker.WithRecorder(m), worker.WithLogger(logger.Logger)}

	notifier := notify.Fanout{notify.NewLog(logger.WithComponent(applog.ComponentNotify).Logger)}
	if cfg.TelegramEnabled() {
		tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			logger.Error("Failed to initialize Telegram notifier", "error", err)
			os.Exit(1)
		}
		notifier = append(notifier, tg)
		logger.Info("Telegram alerts enabled", "chat_id", cfg.TelegramChatID)
	}

	alerts := worker.NewAlerts(result.Store, notifier, cfg.AlertThreshold, opts...)
	caches := cache.NewManager()
	caches.Register("alerts_sent", alerts.Sent())
	caches.StartCleanup(time.Hour)

	var metricsSrv *http.Server
	if cfg.WorkerMetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", m.Handler())
		metricsSrv = &http.Server{Addr: cfg.WorkerMetricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server error", "error", err, "addr", cfg.WorkerMetricsAddr)
			}
		}()
	}

	scheduler := worker.NewScheduler(opts...)
	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func(ctx context.Context) {
		scheduler.Stop()
		caches.Stop()
		if metricsSrv != nil {
			if err := metricsSrv.Shutdown(ctx); err != nil {
				logger.Error("Metrics server shutdown error", "error", err)
			}
		}
	})

	if _, err := scheduler.Add("alert-sweep", cfg.AlertSweepSchedule, alerts.Sweep); err != nil {
		logger.Error("Failed to schedule alert sweep", "error", err)
		os.Exit(1)
	}

	if cfg.SheetsEnabled() {
		client, err := google.New(ctx, google.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		export := worker.NewExport(result.Store, client, opts...)
		if _, err := scheduler.Add("sheets-export", cfg.ExportSchedule, export.PreviousMonth); err != nil {
			logger.Error("Failed to schedule export", "error", err)
			os.Exit(1)
		}
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID, "schedule", cfg.ExportSchedule)
	} else {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}
	scheduler.Start(ctx)

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, relying on the scheduled sweep", "error", err)
		} else {
			defer client.Close()
			consumer := worker.NewConsumer(client, alerts.HandleEvent, opts...)
			go func() {
				if err := consumer.Run(ctx); err != nil {
					logger.Error("Event consumption stopped", "error", err)
				}
			}()
		}
	}

	// Catch up on anything missed while the worker was down.
	if err := alerts.Sweep(ctx); err != nil {
		logger.Error("Startup alert sweep failed", "error", err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
