package papp_test

import (
	"testing"

	"github.com/advdv/phttp/papp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseEnvDefaults(t *testing.T) {
	t.Setenv("PHTTP_PORT", "8080")

	env, err := papp.ParseEnv[papp.BaseEnvironment]()()
	require.NoError(t, err)

	assert.Equal(t, 8080, env.Port)
	assert.Equal(t, "phttp", env.ServiceName)
	assert.Equal(t, zapcore.InfoLevel, env.LogLevel)
	assert.True(t, env.LogResponses)
	assert.Equal(t, "500-599", env.LogErrorStatuses)
	assert.True(t, env.CORSEnabled)
	assert.Equal(t, "*", env.CORSAllowedOrigins)
	assert.False(t, env.AuthEnabled)
	assert.Equal(t, []string{"/health", "/login"}, env.AuthSkipPaths)
	assert.Equal(t, "Authorization", env.AuthHeaderName)
	assert.False(t, env.RateLimitEnabled)
	assert.Equal(t, 100, env.RateLimitMaxRequests)
	assert.Equal(t, 60, env.RateLimitWindowSeconds)
	assert.True(t, env.MetricsEnabled)
	assert.Equal(t, "stdout", env.TracingExporter)
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("PHTTP_PORT", "9090")
	t.Setenv("PHTTP_LOG_LEVEL", "debug")
	t.Setenv("PHTTP_AUTH_ENABLED", "true")
	t.Setenv("PHTTP_AUTH_SKIP_PATHS", "/status,/public")
	t.Setenv("PHTTP_RATE_LIMIT_MAX_REQUESTS", "5")

	env, err := papp.ParseEnv[papp.BaseEnvironment]()()
	require.NoError(t, err)

	assert.Equal(t, 9090, env.Port)
	assert.Equal(t, zapcore.DebugLevel, env.LogLevel)
	assert.True(t, env.AuthEnabled)
	assert.Equal(t, []string{"/status", "/public"}, env.AuthSkipPaths)
	assert.Equal(t, 5, env.RateLimitMaxRequests)
}

func TestParseEnvBadPort(t *testing.T) {
	t.Setenv("PHTTP_PORT", "not-a-port")

	_, err := papp.ParseEnv[papp.BaseEnvironment]()()
	require.ErrorContains(t, err, "failed to parse environment")
}

func TestValidateErrorStatuses(t *testing.T) {
	t.Run("valid single codes", func(t *testing.T) {
		require.NoError(t, papp.ValidateErrorStatuses("500,504", 500, 504))
	})

	t.Run("valid range covering all required", func(t *testing.T) {
		require.NoError(t, papp.ValidateErrorStatuses("500-599", 500, 504))
	})

	t.Run("valid mixed format", func(t *testing.T) {
		require.NoError(t, papp.ValidateErrorStatuses("500,502-505", 500, 504))
	})

	t.Run("missing 500", func(t *testing.T) {
		err := papp.ValidateErrorStatuses("502-504", 500, 504)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing: [500]")
		assert.Contains(t, err.Error(), "recommended value: \"500-599\"")
	})

	t.Run("empty string fails parsing", func(t *testing.T) {
		err := papp.ValidateErrorStatuses("", 500)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse")
	})

	t.Run("invalid format fails parsing", func(t *testing.T) {
		err := papp.ValidateErrorStatuses("not-a-number", 500)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse")
	})

	t.Run("no required codes always passes", func(t *testing.T) {
		require.NoError(t, papp.ValidateErrorStatuses("500"))
	})

	t.Run("open-ended range", func(t *testing.T) {
		require.NoError(t, papp.ValidateErrorStatuses("500-", 500, 504, 599))
	})
}

func TestDefaultRequiredErrorStatuses(t *testing.T) {
	assert.Contains(t, papp.DefaultRequiredErrorStatuses, 500)
	assert.Len(t, papp.DefaultRequiredErrorStatuses, 1)
}
