package main

import (
	"context"
	"encoding/csv"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	awsclient "github.com/plateful/tax-reporter/internal/client/aws"
	"github.com/plateful/tax-reporter/internal/client/orderbus"
	"github.com/plateful/tax-reporter/internal/client/taxcalc"
	"github.com/plateful/tax-reporter/internal/config"
	"github.com/plateful/tax-reporter/internal/logger"
	"github.com/plateful/tax-reporter/internal/store"
	"github.com/plateful/tax-reporter/internal/tax"
)

// ProcessingResults counts the outcome of one reporting batch.
type ProcessingResults struct {
	Total    int
	Reported int
	Skipped  int
	Failed   int

	FailedOrderIDs []string
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
	defer func() {
		_ = logger.Sync()
	}()

	orderIDs := os.Args[1:]
	if len(orderIDs) == 0 {
		logger.Fatal("No order ids given; pass one or more order ids as arguments")
	}

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

	orderStore, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to order database", zap.Error(err))
	}
	defer orderStore.Close()

	calculator := taxcalc.NewClient(cfg.TaxCalcBaseURL, cfg.TaxCalcToken)
	reportBus := orderbus.NewClient(cfg.TaxBusBaseURL)
	service := tax.NewService(orderStore, calculator, reportBus, cfg.ReportTopic)

	results := ProcessingResults{Total: len(orderIDs)}
	for _, raw := range orderIDs {
		orderID, err := uuid.Parse(raw)
		if err != nil {
			logger.Error("Invalid order id", zap.String("orderId", raw), zap.Error(err))
			results.Failed++
			results.FailedOrderIDs = append(results.FailedOrderIDs, raw)
			continue
		}

		_, err = service.Report(ctx, orderID)
		switch {
		case errors.Is(err, tax.ErrOrderSkipped):
			logger.Info("Order skipped", zap.String("orderId", raw))
			results.Skipped++
		case err != nil:
			logger.Error("Failed to report order", zap.String("orderId", raw), zap.Error(err))
			results.Failed++
			results.FailedOrderIDs = append(results.FailedOrderIDs, raw)
		default:
			results.Reported++
		}
	}

	logger.Info("Reporting batch finished",
		zap.Int("total", results.Total),
		zap.Int("reported", results.Reported),
		zap.Int("skipped", results.Skipped),
		zap.Int("failed", results.Failed))

	if len(results.FailedOrderIDs) > 0 {
		if err := writeFailedOrders("failed_orders.csv", results.FailedOrderIDs); err != nil {
			logger.Error("Failed to write failed-orders export", zap.Error(err))
		}
	}

	if results.Failed > 0 {
		os.Exit(1)
	}
}

func writeFailedOrders(path string, orderIDs []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"order_id"}); err != nil {
		return err
	}
	for _, id := range orderIDs {
		if err := w.Write([]string{id}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	logger.Info("Wrote failed-orders export", zap.String("path", path), zap.Int("count", len(orderIDs)))
	return nil
}
