package main

import (
	"context"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetbuddy/internal/amqp"
	"budgetbuddy/internal/cli"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/worker"
)

const (
	dedupeTTL     = 24 * time.Hour
	pruneInterval = time.Hour
)

func main() {
	os.Exit(run())
}

func run() int {
	cli.LoadEnvFile()

	cfg := cli.LoadAndValidateConfig(log.Default(log.ComponentApp))
	logger := cli.SetupLogger(cfg.LogLevel).WithComponent(log.ComponentWorker)

	if !cfg.AlertsEnabled() {
		logger.Error("AMQP_URL is required to consume budget alerts")
		return 1
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		return 1
	}
	defer client.Close()

	alerts := worker.NewAlertWorker(worker.NewLogNotifier(logger), dedupeTTL)
	logger.Info("Starting budget-alerts worker", "queue", cfg.AMQPQueue, log.FieldOperation, log.OpStartup)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeBudgetAlerts(gctx, alerts.HandleAlert)
	})
	g.Go(func() error {
		ticker := time.NewTicker(pruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := alerts.Prune(); n > 0 {
					logger.Debug("Pruned delivered alerts", log.FieldCount, n)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Alert consumption failed", log.FieldError, err)
		return 1
	}
	logger.Info("Worker stopped gracefully", log.FieldOperation, log.OpShutdown)
	return 0
}
