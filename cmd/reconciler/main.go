package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	awsclient "github.com/plateful/tax-reporter/internal/client/aws"
	"github.com/plateful/tax-reporter/internal/client/logsearch"
	"github.com/plateful/tax-reporter/internal/client/orderbus"
	"github.com/plateful/tax-reporter/internal/config"
	"github.com/plateful/tax-reporter/internal/logger"
	"github.com/plateful/tax-reporter/internal/replay"
)

// Application holds the dependencies of the Lambda handler.
type Application struct {
	engine *replay.Engine
	local  bool
}

// HandleRequest runs one reconciliation pass.
func (app *Application) HandleRequest(ctx context.Context) error {
	logger.Info("Starting reconciliation run")

	results, err := app.engine.Run(ctx)
	if err != nil {
		logger.Error("Reconciliation run failed", zap.Error(err))
		return fmt.Errorf("reconciliation run failed: %w", err)
	}

	logger.Info("Reconciliation results",
		zap.Int("scanned", results.Scanned),
		zap.Int("replayed", results.Replayed),
		zap.Int("ignored", results.Ignored),
		zap.Int("failed", results.Failed))

	// Deployed runs have nowhere durable to drop a file; failed orders are
	// already in the structured logs.
	if app.local && len(results.FailedOrders) > 0 {
		if err := writeFailedOrders("failed_orders.csv", results.FailedOrders); err != nil {
			logger.Error("Failed to write failed-orders export", zap.Error(err))
		}
	}

	return nil
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: error loading .env file: %v. Proceeding with environment variables.", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.InitLogger(cfg.Stage)
	logger.Info("Cold start: initializing reconciler", zap.String("stage", cfg.Stage))
	defer func() {
		_ = logger.Sync()
	}()

	ctx := context.Background()

	if cfg.IsDeployed() {
		secretsClient, err := awsclient.NewSecretsManagerClient(ctx)
		if err != nil {
			logger.Fatal("Failed to initialize Secrets Manager client", zap.Error(err))
		}
		if err := cfg.ResolveSecrets(ctx, secretsClient); err != nil {
			logger.Fatal("Failed to resolve secrets", zap.Error(err))
		}
	}

	search := logsearch.NewClient(cfg.LogSearchURL, cfg.LogSearchAPIKey, cfg.LogSearchUser, cfg.LogSearchPass)
	eventBus := orderbus.NewClient(cfg.OrderBusBaseURL)

	engine := replay.NewEngine(search, eventBus, replay.Options{
		ActionIndex:     cfg.ActionIndex,
		TraceIndex:      cfg.TraceIndex,
		AppName:         cfg.AppName,
		ActionFilter:    cfg.ActionFilter,
		FailureCode:     cfg.FailureCode,
		OrderEventTopic: cfg.OrderEventTopic,
		Workers:         cfg.Workers,
	})

	app := &Application{engine: engine, local: !cfg.IsDeployed()}

	if cfg.IsDeployed() {
		lambda.Start(app.HandleRequest)
	} else {
		if err := app.HandleRequest(ctx); err != nil {
			logger.Fatal("Reconciliation failed", zap.Error(err))
		}
	}
}

func writeFailedOrders(path string, failed []replay.FailedOrder) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"order_id", "event"}); err != nil {
		return err
	}
	for _, fo := range failed {
		if err := w.Write([]string{fo.OrderID, fo.Event}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	logger.Info("Wrote failed-orders export", zap.String("path", path), zap.Int("count", len(failed)))
	return nil
}
