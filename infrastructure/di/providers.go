// Package di wires the application with google/wire.
package di

import (
	"context"
	"fmt"

	"archive-backend/application/actions"
	"archive-backend/application/dispatch"
	"archive-backend/application/modules/archive"
	"archive-backend/application/modules/auth"
	"archive-backend/application/modules/dashboard"
	"archive-backend/application/modules/storage"
	"archive-backend/application/modules/utils"
	"archive-backend/application/ports"
	"archive-backend/infrastructure/config"
	"archive-backend/infrastructure/messaging/eventbridge"
	"archive-backend/infrastructure/persistence/dynamodb"
	"archive-backend/infrastructure/scraper"
	s3store "archive-backend/infrastructure/storage/s3"
	"archive-backend/infrastructure/translation"
	"archive-backend/interfaces/http/rest"
	lambdaadapter "archive-backend/interfaces/lambda"
	"archive-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ProvideLogger creates the logger for the environment at LOG_LEVEL
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}

// ProvideAWSConfig creates AWS configuration. A local DynamoDB endpoint gets static credentials.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.DynamoDBEndpoint != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if cfg.EnableTracing {
		awsv2.AWSV2Instrumentor(&awsCfg.APIOptions)
	}
	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})
}

// ProvideStore creates the store adapter
func ProvideStore(client *awsdynamodb.Client, logger *zap.Logger) ports.Store {
	return dynamodb.NewStore(client, logger)
}

// ProvideEventPublisher publishes to EventBridge, or drops events when no bus is configured
func ProvideEventPublisher(awsCfg aws.Config, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if cfg.EventBusName == "" {
		return ports.NopPublisher{}
	}
	return eventbridge.NewPublisher(awseventbridge.NewFromConfig(awsCfg), cfg.EventBusName, logger)
}

// ProvideObjectStore creates the image bucket store
func ProvideObjectStore(awsCfg aws.Config, cfg *config.Config, logger *zap.Logger) ports.ObjectStore {
	return s3store.NewStore(awss3.NewFromConfig(awsCfg), cfg.ImageBucket, cfg.AWSRegion, cfg.PublicAssetBaseURL, logger)
}

// ProvideTranslator creates the translation client
func ProvideTranslator(cfg *config.Config, logger *zap.Logger) ports.Translator {
	return translation.NewClient(cfg.Translation.APIURL, cfg.Translation.APIKey, cfg.Translation.Model, logger)
}

// ProvideMetadataFetcher creates the site metadata scraper
func ProvideMetadataFetcher() ports.MetadataFetcher {
	return scraper.NewFetcher()
}

// ProvideArchiveModule creates the article module
func ProvideArchiveModule(store ports.Store, events ports.EventPublisher, cfg *config.Config, logger *zap.Logger) *archive.Module {
	return archive.NewModule(store, events, archive.Config{
		Table:                    cfg.Tables.Articles,
		PathnameIndex:            cfg.Tables.PathnameIndex,
		StatusPublishedDateIndex: cfg.Tables.StatusPublishedDateIndex,
		StatusUpdatedDateIndex:   cfg.Tables.StatusUpdatedDateIndex,
		GSI1PublishedDateIndex:   cfg.Tables.GSI1PublishedDateIndex,
		GSI1UpdatedDateIndex:     cfg.Tables.GSI1UpdatedDateIndex,
	}, logger.Named("archive"))
}

// ProvideDashboardModule creates the bookmark module
func ProvideDashboardModule(store ports.Store, cfg *config.Config, logger *zap.Logger) *dashboard.Module {
	return dashboard.NewModule(store, cfg.Tables.Bookmarks, logger.Named("dashboard"))
}

// ProvideAuthModule creates the session module
func ProvideAuthModule(store ports.Store, cfg *config.Config, logger *zap.Logger) *auth.Module {
	return auth.NewModule(store, cfg.Tables.Sessions, cfg.Tables.SessionIndex, logger.Named("auth"), nil)
}

// ProvideStorageModule creates the image module
func ProvideStorageModule(objects ports.ObjectStore, logger *zap.Logger) *storage.Module {
	return storage.NewModule(objects, logger.Named("storage"))
}

// ProvideUtilsModule creates the helper module
func ProvideUtilsModule(translator ports.Translator, fetcher ports.MetadataFetcher, logger *zap.Logger) *utils.Module {
	return utils.NewModule(translator, fetcher, logger.Named("utils"))
}

// ProvideRegistry registers every module's actions and fails unless the catalog is fully covered
func ProvideRegistry(
	archiveModule *archive.Module,
	dashboardModule *dashboard.Module,
	authModule *auth.Module,
	storageModule *storage.Module,
	utilsModule *utils.Module,
) (*actions.Registry, error) {
	registry, err := actions.NewRegistry(
		archiveModule.Actions(),
		dashboardModule.Actions(),
		authModule.Actions(),
		storageModule.Actions(),
		utilsModule.Actions(),
	)
	if err != nil {
		return nil, err
	}
	if err := registry.Complete(); err != nil {
		return nil, err
	}
	return registry, nil
}

// ProvideAuthorizationPolicy allows the configured admin ids
func ProvideAuthorizationPolicy(cfg *config.Config) dispatch.AuthorizationPolicy {
	return dispatch.NewAllowList(cfg.AdminUserIDs...)
}

// ProvideTracer returns nil when tracing is disabled
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	if !cfg.EnableTracing {
		return nil
	}
	return observability.NewTracer("archive")
}

// ProvideCollector creates the Prometheus collector
func ProvideCollector() *observability.Collector {
	return observability.NewCollector("archive")
}

// ProvideRecorder always feeds the collector and adds CloudWatch when metrics are enabled
func ProvideRecorder(awsCfg aws.Config, cfg *config.Config, collector *observability.Collector, logger *zap.Logger) observability.Recorder {
	if !cfg.EnableMetrics {
		return collector
	}
	cw := observability.NewMetrics(cfg.MetricsNamespace, cloudwatch.NewFromConfig(awsCfg), logger)
	return observability.MultiRecorder{collector, cw}
}

// ProvideDispatcher creates the action dispatcher with the auth module as its verifier
func ProvideDispatcher(
	registry *actions.Registry,
	authModule *auth.Module,
	policy dispatch.AuthorizationPolicy,
	tracer *observability.Tracer,
	recorder observability.Recorder,
	logger *zap.Logger,
) *dispatch.Dispatcher {
	return dispatch.NewDispatcher(registry, authModule, policy, logger.Named("dispatch"),
		dispatch.WithTracer(tracer),
		dispatch.WithRecorder(recorder),
	)
}

// ProvideLambdaHandler creates the API Gateway adapter
func ProvideLambdaHandler(dispatcher *dispatch.Dispatcher, logger *zap.Logger) *lambdaadapter.Handler {
	return lambdaadapter.NewHandler(dispatcher, logger)
}

// ProvideRouter creates the local HTTP router
func ProvideRouter(handler *lambdaadapter.Handler, collector *observability.Collector, logger *zap.Logger) *rest.Router {
	return rest.NewRouter(handler, collector.Handler(), logger)
}
