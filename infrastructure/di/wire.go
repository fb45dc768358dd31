//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"cvwizard-backend/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideRegistry,
	ProvideMetrics,
	ProvideRecordStore,
	ProvideGenerator,
	ProvideRateLimiter,
	ProvideBreaker,
	ProvideTables,
	ProvideProfileService,
	ProvideGenerationService,
	ProvideErrorHandler,
	ProvideProfileHandler,
	ProvideGenerateHandler,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
