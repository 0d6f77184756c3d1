package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fairshare/internal/amqp"
	"fairshare/internal/backend"
	"fairshare/internal/cli"
	"fairshare/internal/export"
	"fairshare/internal/export/sheets"
	"fairshare/internal/log"
	"fairshare/internal/metrics"
	"fairshare/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := log.WithComponent(cli.SetupLogger(cfg), log.ComponentWorker)

	logger.Info("Starting fairshare-worker")

	ctx := context.Background()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(log.WithComponent(logger, log.ComponentBackend))
	result, err := factory.CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "type", backendCfg.Type)
		os.Exit(1)
	}

	var exporters []export.SummaryExporter

	fileExporter, err := export.NewFileExporter(cfg.ExportDir)
	if err != nil {
		logger.Error("Failed to initialize file exporter", "error", err, "dir", cfg.ExportDir)
		os.Exit(1)
	}
	exporters = append(exporters, fileExporter)

	if cfg.SheetsExportEnabled() {
		sheetsExporter, err := sheets.New(ctx, sheets.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsFile: cfg.GoogleCredentialsFile,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets exporter", "error", err)
			os.Exit(1)
		}
		exporters = append(exporters, sheetsExporter)
		logger.Info("Google Sheets export enabled",
			"spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	// AMQP is optional for the worker; without it only the periodic
	// export runs.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
	}

	reg := metrics.NewRegistry()
	exportWorker := worker.NewExportWorker(result.Store, exporters, reg)

	// Export once at startup so the targets reflect current state even
	// before the first change notification.
	if err := exportWorker.ExportOnce(ctx); err != nil {
		logger.Warn("Startup export failed", "error", err)
	}

	runCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", "error", err)
			}
		}
	})

	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		return exportWorker.RunPeriodic(gctx, cfg.ExportInterval)
	})

	if amqpClient != nil {
		g.Go(func() error {
			return amqpClient.ConsumeLedgerChanged(gctx, func(msg *amqp.LedgerChangedMessage) error {
				return exportWorker.HandleChangeMessage(gctx, msg)
			})
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}

	<-done
	logger.Info("Worker stopped gracefully")
}
