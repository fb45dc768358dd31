package di

import (
	"context"
	"fmt"

	"cvwizard-backend/application/services"
	"cvwizard-backend/infrastructure/config"
	"cvwizard-backend/infrastructure/generation"
	"cvwizard-backend/infrastructure/persistence/abstractions"
	"cvwizard-backend/infrastructure/persistence/memory"
	"cvwizard-backend/infrastructure/persistence/recordstore"
	"cvwizard-backend/interfaces/http/rest"
	"cvwizard-backend/interfaces/http/rest/handlers"
	"cvwizard-backend/pkg/auth"
	apperrors "cvwizard-backend/pkg/errors"
	"cvwizard-backend/pkg/observability"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config            *config.Config
	Logger            *zap.Logger
	Registry          *prometheus.Registry
	Metrics           *observability.Metrics
	Store             abstractions.RecordStore
	Generator         services.Generator
	RateLimiter       auth.RateLimiter
	Breaker           *gobreaker.CircuitBreaker
	ProfileService    *services.ProfileService
	GenerationService *services.GenerationService
	ErrorHandler      *apperrors.ErrorHandler
	Router            *rest.Router
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	zapCfg.Level = level

	return zapCfg.Build()
}

// ProvideRegistry creates the metrics registry
func ProvideRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// ProvideMetrics creates metrics instance
func ProvideMetrics(registry *prometheus.Registry) *observability.Metrics {
	return observability.NewMetrics(registry)
}

// ProvideRecordStore creates the record store. Outside production the
// in-memory store backs local development when no credentials are set.
func ProvideRecordStore(cfg *config.Config, metrics *observability.Metrics, logger *zap.Logger) (abstractions.RecordStore, error) {
	if !cfg.HasStore() {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("record store credentials are required in production")
		}
		logger.Warn("Record store credentials not set, using in-memory store",
			zap.String("environment", cfg.Environment),
		)
		return memory.NewRecordStore(cfg.Environment, cfg.PRRef), nil
	}

	client, err := recordstore.NewClient(recordstore.Config{
		BaseURL: cfg.StoreBaseURL,
		BaseID:  cfg.StoreBaseID,
		APIKey:  cfg.StoreAPIKey,
		Env:     cfg.Environment,
		PRRef:   cfg.PRRef,
	}, logger)
	if err != nil {
		return nil, err
	}
	client.OnRetry(func() {
		metrics.StoreRetries.Inc()
	})
	return client, nil
}

// ProvideGenerator creates the text-generation client. When the service
// is not configured outside production, a disabled generator stands in
// and every request falls back to the canned template.
func ProvideGenerator(cfg *config.Config, logger *zap.Logger) (services.Generator, error) {
	if !cfg.HasGeneration() {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("generation credentials are required in production")
		}
		logger.Warn("Generation service not configured, serving fallback text only")
		return disabledGenerator{}, nil
	}

	return generation.NewClient(generation.Config{
		Endpoint: cfg.GenerationEndpoint,
		APIKey:   cfg.GenerationAPIKey,
		Model:    cfg.GenerationModel,
		Timeout:  cfg.GenerationTimeout,
	}, logger)
}

// disabledGenerator always fails so the service serves fallback text
type disabledGenerator struct{}

func (disabledGenerator) Generate(ctx context.Context, req generation.Request) (generation.Result, error) {
	return generation.Result{}, &generation.Error{Status: 503, Message: "generation service not configured"}
}

// ProvideRateLimiter creates the sliding-window rate limiter
func ProvideRateLimiter(cfg *config.Config) auth.RateLimiter {
	return auth.NewSlidingWindowLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
}

// ProvideBreaker creates the circuit breaker guarding generation calls
func ProvideBreaker(logger *zap.Logger) *gobreaker.CircuitBreaker {
	return services.NewGenerationBreaker(logger)
}

// ProvideTables maps configured table names to the profile service
func ProvideTables(cfg *config.Config) services.Tables {
	return services.Tables{
		Profiles:   cfg.StoreProfileTable,
		Education:  cfg.StoreEducationTable,
		Experience: cfg.StoreExperienceTable,
	}
}

// ProvideProfileService creates the profile service
func ProvideProfileService(store abstractions.RecordStore, tables services.Tables, logger *zap.Logger) *services.ProfileService {
	return services.NewProfileService(store, tables, logger)
}

// ProvideGenerationService creates the generation service
func ProvideGenerationService(
	cfg *config.Config,
	profiles *services.ProfileService,
	generator services.Generator,
	limiter auth.RateLimiter,
	breaker *gobreaker.CircuitBreaker,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *services.GenerationService {
	return services.NewGenerationService(
		profiles,
		generator,
		limiter,
		breaker,
		metrics,
		logger,
		cfg.RateLimitMax,
		cfg.RateLimitWindow,
	)
}

// ProvideErrorHandler creates the HTTP error handler
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *apperrors.ErrorHandler {
	return apperrors.NewErrorHandler(logger, !cfg.IsProduction())
}

// ProvideProfileHandler creates the profile HTTP handler
func ProvideProfileHandler(service *services.ProfileService, errorHandler *apperrors.ErrorHandler, logger *zap.Logger) *handlers.ProfileHandler {
	return handlers.NewProfileHandler(service, errorHandler, logger)
}

// ProvideGenerateHandler creates the generation HTTP handler
func ProvideGenerateHandler(service *services.GenerationService, errorHandler *apperrors.ErrorHandler, logger *zap.Logger) *handlers.GenerateHandler {
	return handlers.NewGenerateHandler(service, errorHandler, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	cfg *config.Config,
	profileHandler *handlers.ProfileHandler,
	generateHandler *handlers.GenerateHandler,
	metrics *observability.Metrics,
	registry *prometheus.Registry,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(profileHandler, generateHandler, metrics, registry, logger, rest.Options{
		// Secure cookies everywhere except plain-HTTP local development
		SecureCookies: !cfg.IsDevelopment(),
		EnableCORS:    cfg.EnableCORS,
	})
}
