package config_test

import (
	"testing"
	"time"

	"go-payroll/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("PORT", "")
	t.Setenv("RESOLVE_CACHE_TTL", "")
	t.Setenv("IDEMPOTENCY_LOCK_TTL", "")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, 10*time.Minute, cfg.Payroll.ResolveCacheTTL)
	assert.Equal(t, 2*time.Minute, cfg.Payroll.IdempotencyLockTTL)
	assert.True(t, cfg.Statutory.EPFRate.IsZero())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("PAYROLL_BUILD_CONCURRENCY", "8")
	t.Setenv("STATUTORY_EPF_RATE", "10")
	t.Setenv("IDEMPOTENCY_LOCK_TTL", "5m")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Payroll.BuildConcurrency)
	assert.Equal(t, 5*time.Minute, cfg.Payroll.IdempotencyLockTTL)
	assert.Equal(t, "10", cfg.Statutory.EPFRate.String())
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("OUTBOX_POLL_INTERVAL", "soon")

	_, err := config.Load()

	assert.Error(t, err)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()

	assert.Error(t, err)
}
