package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scadenze/internal/amqp"
	"scadenze/internal/backend"
	"scadenze/internal/cli"
	"scadenze/internal/log"
	"scadenze/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger("info")
	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.LogLevel != "info" {
		logger = cli.SetupLogger(cfg.LogLevel)
	}
	logger = logger.WithComponent(log.ComponentWorker)

	logger.Info("Starting scadenze-worker", log.FieldOperation, log.OpStartup)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exporter, err := backend.NewRecapExporter(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize recap exporter", log.FieldError, err)
		os.Exit(1)
	}

	// The broker may come up after the worker in compose setups.
	amqpClient, err := amqp.NewClientWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	exportWorker := worker.NewExportWorker(repo, exporter)

	go func() {
		err := amqpClient.ConsumeRecapExport(ctx, func(msg *amqp.RecapExportMessage) error {
			return exportWorker.HandleExportMessage(ctx, msg)
		})
		if err != nil && err != context.Canceled {
			logger.Error("Message consumption failed", log.FieldError, err)
		}
		cancel()
	}()

	// Periodic digest scan enqueues every plan's previous month.
	ticker := time.NewTicker(cfg.DigestInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := worker.RunDigestScan(ctx, repo, amqpClient, time.Now()); err != nil {
					logger.Error("Digest scan failed", log.FieldError, err, log.FieldOperation, log.OpDigest)
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Info("Shutting down worker...", log.FieldOperation, log.OpShutdown)
	cancel()

	select {
	case <-shutdownCtx.Done():
		logger.Warn("Shutdown timeout reached")
	case <-time.After(5 * time.Second):
		logger.Info("Worker shutdown complete")
	}
}
