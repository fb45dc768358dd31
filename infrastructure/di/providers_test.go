package di

import (
	"context"
	"testing"
	"time"

	"cvwizard-backend/infrastructure/config"
	"cvwizard-backend/infrastructure/generation"
	"cvwizard-backend/infrastructure/persistence/memory"
	"cvwizard-backend/infrastructure/persistence/recordstore"
	apperrors "cvwizard-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProvideGenerator(t *testing.T) {
	logger := zap.NewNop()

	t.Run("configured returns a live client", func(t *testing.T) {
		cfg := &config.Config{
			Environment:        config.EnvDev,
			GenerationEndpoint: "https://gen.example.com",
			GenerationAPIKey:   "key",
			GenerationModel:    "text-gen-1",
			GenerationTimeout:  5 * time.Second,
		}

		gen, err := ProvideGenerator(cfg, logger)
		require.NoError(t, err)
		assert.IsType(t, &generation.Client{}, gen)
	})

	t.Run("unconfigured outside production serves fallback only", func(t *testing.T) {
		cfg := &config.Config{Environment: config.EnvDev}

		gen, err := ProvideGenerator(cfg, logger)
		require.NoError(t, err)

		_, genErr := gen.Generate(context.Background(), generation.Request{Prompt: "hello"})
		require.Error(t, genErr)

		var typed *generation.Error
		require.ErrorAs(t, genErr, &typed)
		assert.Equal(t, 503, typed.Status)
	})

	t.Run("unconfigured in production fails", func(t *testing.T) {
		cfg := &config.Config{Environment: config.EnvProd}

		_, err := ProvideGenerator(cfg, logger)
		assert.Error(t, err)
	})
}

func TestProvideRecordStore(t *testing.T) {
	logger := zap.NewNop()
	metrics := ProvideMetrics(ProvideRegistry())

	t.Run("configured returns the HTTP client", func(t *testing.T) {
		cfg := &config.Config{
			Environment:  config.EnvDev,
			PRRef:        "local",
			StoreBaseURL: "https://store.example.com",
			StoreBaseID:  "base123",
			StoreAPIKey:  "key",
		}

		store, err := ProvideRecordStore(cfg, metrics, logger)
		require.NoError(t, err)
		assert.IsType(t, &recordstore.Client{}, store)
	})

	t.Run("unconfigured outside production falls back to memory", func(t *testing.T) {
		cfg := &config.Config{Environment: config.EnvDev, PRRef: "local"}

		store, err := ProvideRecordStore(cfg, metrics, logger)
		require.NoError(t, err)
		assert.IsType(t, &memory.RecordStore{}, store)
	})

	t.Run("unconfigured in production fails", func(t *testing.T) {
		cfg := &config.Config{Environment: config.EnvProd}

		_, err := ProvideRecordStore(cfg, metrics, logger)
		assert.Error(t, err)
	})
}

func TestInitializeContainer(t *testing.T) {
	cfg := &config.Config{
		ServerAddress:        ":0",
		Environment:          config.EnvDev,
		PRRef:                "local",
		StoreProfileTable:    "profiles",
		StoreEducationTable:  "education",
		StoreExperienceTable: "experience",
		GenerationTimeout:    time.Second,
		RateLimitMax:         10,
		RateLimitWindow:      time.Hour,
		LogLevel:             "info",
	}

	container, err := InitializeContainer(cfg)
	require.NoError(t, err)
	require.NotNil(t, container)
	assert.NotNil(t, container.Router)
	assert.NotNil(t, container.ProfileService)
	assert.NotNil(t, container.GenerationService)
}

func TestProvideGenerator_MissingModel(t *testing.T) {
	cfg := &config.Config{
		Environment:        config.EnvDev,
		GenerationEndpoint: "https://gen.example.com",
		GenerationAPIKey:   "key",
	}

	_, err := ProvideGenerator(cfg, zap.NewNop())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfiguration))
}
