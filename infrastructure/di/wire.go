//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"archive-backend/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideStore,
	ProvideEventPublisher,
	ProvideObjectStore,
	ProvideTranslator,
	ProvideMetadataFetcher,
	ProvideArchiveModule,
	ProvideDashboardModule,
	ProvideAuthModule,
	ProvideStorageModule,
	ProvideUtilsModule,
	ProvideRegistry,
	ProvideAuthorizationPolicy,
	ProvideTracer,
	ProvideCollector,
	ProvideRecorder,
	ProvideDispatcher,
	ProvideLambdaHandler,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil
}
