package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("API_KEY", "  secret  ")
	t.Setenv("DATABASE_TYPE", "sqlite")
	t.Setenv("RATE_LIMIT_ENABLED", "yes")
	t.Setenv("RATE_LIMIT_WRITE_BURST", "not-a-number")

	cfg := Load()

	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 20, cfg.RateLimit.WriteBurst)
	assert.NoError(t, cfg.Validate())
}

func TestValidateRequiresAPIKey(t *testing.T) {
	cfg := Config{APIKey: "   "}
	assert.ErrorIs(t, cfg.Validate(), ErrMissingAPIKey)
}

func TestReportingConfigHolder(t *testing.T) {
	holder, err := NewStaticReportingConfig(ReportingConfig{})
	require.NoError(t, err)
	assert.Equal(t, "UTC", holder.Get().Timezone)
	assert.Equal(t, "UTC", holder.Location().String())

	require.NoError(t, holder.Store(ReportingConfig{Timezone: "America/Sao_Paulo"}))
	assert.Equal(t, "America/Sao_Paulo", holder.Location().String())

	assert.Error(t, holder.Store(ReportingConfig{Timezone: "Mars/Olympus"}))
	assert.Equal(t, "America/Sao_Paulo", holder.Location().String())
}

func TestNilReportingHolderFallsBackToUTC(t *testing.T) {
	var holder *ReportingConfigHolder
	assert.Equal(t, "UTC", holder.Location().String())
}
