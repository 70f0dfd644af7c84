package config

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/plateful/tax-reporter/internal/client/aws"
)

// Config holds everything the reporter and reconciler binaries need. Values
// come from the environment; secrets are overlaid from Secrets Manager in
// deployed stages.
type Config struct {
	Stage   string `env:"STAGE" envDefault:"local"`
	Workers int    `env:"WORKERS" envDefault:"8"`

	DatabaseURL string `env:"DATABASE_URL"`

	TaxCalcBaseURL string `env:"TAXCALC_BASE_URL"`
	TaxCalcToken   string `env:"TAXCALC_TOKEN"`

	// The bus bridges are named after the topic they carry, not the service
	// behind them: the order bus carries order events into the tax service,
	// the tax bus carries tax reports into the order service.
	OrderBusBaseURL string `env:"ORDER_BUS_BASE_URL"`
	TaxBusBaseURL   string `env:"TAX_BUS_BASE_URL"`

	LogSearchURL    string `env:"LOG_SEARCH_URL"`
	LogSearchAPIKey string `env:"LOG_SEARCH_API_KEY"`
	LogSearchUser   string `env:"LOG_SEARCH_USER"`
	LogSearchPass   string `env:"LOG_SEARCH_PASS"`

	ActionIndex  string `env:"ACTION_INDEX" envDefault:"action-oms-*"`
	TraceIndex   string `env:"TRACE_INDEX" envDefault:"trace-*"`
	AppName      string `env:"APP_NAME" envDefault:"tax-service"`
	ActionFilter string `env:"ACTION_FILTER" envDefault:"topic:order-events"`
	FailureCode  string `env:"FAILURE_CODE" envDefault:"TAX_REPORT_FAILED"`

	ReportTopic     string `env:"REPORT_TOPIC" envDefault:"tax-report-event"`
	OrderEventTopic string `env:"ORDER_EVENT_TOPIC" envDefault:"order-events"`
}

// IsDeployed reports whether the process runs in an AWS stage rather than on a
// developer machine.
func (c *Config) IsDeployed() bool {
	return c.Stage == "prod" || c.Stage == "dev"
}

// Load parses the environment into a Config and validates the stage.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	switch cfg.Stage {
	case "prod", "dev", "local":
	default:
		return nil, fmt.Errorf("invalid STAGE %q, must be prod, dev or local", cfg.Stage)
	}

	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("WORKERS must be positive, got %d", cfg.Workers)
	}

	return cfg, nil
}

// ResolveSecrets overlays sensitive values from Secrets Manager. Each secret
// is addressed by an ARN env var and falls back to the plain env var already
// parsed into the config, so local runs work without AWS access.
func (c *Config) ResolveSecrets(ctx context.Context, sm *aws.SecretsManagerClient) error {
	dbURL, err := sm.GetSecretString(ctx, "DATABASE_URL_SECRET_ARN", "DATABASE_URL")
	if err != nil {
		return fmt.Errorf("resolving database URL: %w", err)
	}
	c.DatabaseURL = dbURL

	token, err := sm.GetSecretString(ctx, "TAXCALC_TOKEN_SECRET_ARN", "TAXCALC_TOKEN")
	if err != nil {
		return fmt.Errorf("resolving tax service token: %w", err)
	}
	c.TaxCalcToken = token

	apiKey, err := sm.GetSecretString(ctx, "LOG_SEARCH_API_KEY_SECRET_ARN", "LOG_SEARCH_API_KEY")
	if err == nil {
		c.LogSearchAPIKey = apiKey
	}

	pass, err := sm.GetSecretString(ctx, "LOG_SEARCH_PASS_SECRET_ARN", "LOG_SEARCH_PASS")
	if err == nil {
		c.LogSearchPass = pass
	}

	return nil
}
