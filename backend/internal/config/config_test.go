package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"DATABASE_URL", "LISTEN_ADDR", "JWT_SECRET", "JWT_TTL",
		"MARKET_REFRESH_SCHEDULE", "ALPHA_VANTAGE_API_KEY",
		"ALPHA_VANTAGE_BASE_URL", "QUOTE_REQUEST_TIMEOUT", "LOG_LEVEL",
	} {
		// Setenv registers the restore, Unsetenv clears the variable so
		// the envDefault tags apply.
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "@every 2m", cfg.MarketRefreshSchedule)
	assert.Equal(t, "https://www.alphavantage.co", cfg.AlphaVantageBaseURL)
	assert.Equal(t, 10*time.Second, cfg.QuoteRequestTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Contains(t, cfg.DatabaseURL, "investrack")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9999")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("JWT_TTL", "not-a-duration")

	_, err := Load()
	assert.Error(t, err)
}
