package main

import (
	"context"
	"errors"
	"os"
	"time"

	"contas/internal/amqp"
	"contas/internal/cli"
	"contas/internal/log"
	"contas/internal/services"
	"contas/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting contas-worker", "interval", cfg.WorkerInterval.String())

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	// Without AMQP the worker still closes statements, it just cannot
	// publish alerts.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	billingService := services.NewBillingService(sqliteRepo, amqpClient)
	billingWorker := worker.NewBillingWorker(sqliteRepo, billingService, amqpClient)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	if err := billingWorker.Run(ctx, cfg.WorkerInterval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Billing worker stopped", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
