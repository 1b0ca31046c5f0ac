//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"slidecanvas/application/services"
	"slidecanvas/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogLevel,
	ProvideLogger,
	ProvideErrorHandler,
	ProvideMetrics,
	ProvideTracing,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideDomainConfig,
	ProvideProjectRepository,
	ProvideEventBus,
	ProvideEventPublisher,
	ProvideEngines,
	ProvideTemplateCatalog,
	ProvideRenderer,
	services.NewProjectService,
	services.NewPresentationService,
	services.NewTemplateService,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container. The cleanup function
// releases the store, flushes traces and syncs the logger.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil
}
