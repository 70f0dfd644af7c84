package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plateful/tax-reporter/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STAGE", "local")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Stage)
	assert.False(t, cfg.IsDeployed())
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "action-oms-*", cfg.ActionIndex)
	assert.Equal(t, "trace-*", cfg.TraceIndex)
	assert.Equal(t, "tax-service", cfg.AppName)
	assert.Equal(t, "TAX_REPORT_FAILED", cfg.FailureCode)
	assert.Equal(t, "tax-report-event", cfg.ReportTopic)
	assert.Equal(t, "order-events", cfg.OrderEventTopic)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STAGE", "prod")
	t.Setenv("WORKERS", "16")
	t.Setenv("DATABASE_URL", "postgres://localhost/orders")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Stage)
	assert.True(t, cfg.IsDeployed())
	assert.Equal(t, 16, cfg.Workers)
	assert.Equal(t, "postgres://localhost/orders", cfg.DatabaseURL)
}

func TestLoadRejectsInvalidStage(t *testing.T) {
	t.Setenv("STAGE", "staging")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STAGE")
}

func TestLoadRejectsNonPositiveWorkers(t *testing.T) {
	t.Setenv("WORKERS", "0")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WORKERS")
}
