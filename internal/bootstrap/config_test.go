package bootstrap

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("AUTH_SITE_SECRET", "test-secret")
	t.Setenv("AUTH_TIMEOUT", "600")
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "test-secret", cfg.Auth.SiteSecret)
	assert.Equal(t, int64(600), cfg.Auth.Timeout)
	assert.Equal(t, ":9999", cfg.HTTP.Addr)
	// Sanitize normalises the log level
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
}

func TestInitLoggerLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus", ""} {
		logger := InitLogger(level)
		require.NotNil(t, logger, "level %q", level)
	}

	// Unknown levels fall back to info: debug must be filtered out
	logger := InitLogger("bogus")
	assert.False(t, logger.Enabled(t.Context(), slog.LevelDebug))
	assert.True(t, logger.Enabled(t.Context(), slog.LevelInfo))
}
