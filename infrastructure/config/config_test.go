package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, EnvDev, cfg.Environment)
	assert.Equal(t, "local", cfg.PRRef)
	assert.Equal(t, 10, cfg.RateLimitMax)
	assert.Equal(t, time.Hour, cfg.RateLimitWindow)
	assert.Equal(t, 12*time.Second, cfg.GenerationTimeout)
	assert.False(t, cfg.HasStore())
	assert.False(t, cfg.HasGeneration())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "preview")
	t.Setenv("PR_REF", "pr-123")
	t.Setenv("STORE_BASE_ID", "base123")
	t.Setenv("STORE_API_KEY", "key")
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("RATE_LIMIT_WINDOW_MINUTES", "30")
	t.Setenv("GENERATION_TIMEOUT_MS", "5000")
	t.Setenv("ENABLE_CORS", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "preview", cfg.Environment)
	assert.Equal(t, "pr-123", cfg.PRRef)
	assert.Equal(t, 5, cfg.RateLimitMax)
	assert.Equal(t, 30*time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 5*time.Second, cfg.GenerationTimeout)
	assert.False(t, cfg.EnableCORS)
	assert.True(t, cfg.HasStore())
}

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Environment:     EnvDev,
			RateLimitMax:    10,
			RateLimitWindow: time.Hour,
		}
	}

	t.Run("dev needs no credentials", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("unknown environment rejected", func(t *testing.T) {
		cfg := base()
		cfg.Environment = "staging"
		assert.Error(t, cfg.Validate())
	})

	t.Run("production requires store and generation credentials", func(t *testing.T) {
		cfg := base()
		cfg.Environment = EnvProd
		require.Error(t, cfg.Validate())

		cfg.StoreBaseID = "base123"
		cfg.StoreAPIKey = "key"
		require.Error(t, cfg.Validate())

		cfg.GenerationEndpoint = "https://gen.example.com"
		cfg.GenerationAPIKey = "key"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("rate limit must be positive", func(t *testing.T) {
		cfg := base()
		cfg.RateLimitMax = 0
		assert.Error(t, cfg.Validate())
	})
}
