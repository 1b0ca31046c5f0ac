package di

import (
	"context"
	"fmt"

	"slidecanvas/application/ports"
	"slidecanvas/application/render"
	domainconfig "slidecanvas/domain/config"
	"slidecanvas/infrastructure/config"
	"slidecanvas/infrastructure/messaging"
	"slidecanvas/infrastructure/messaging/eventbridge"
	"slidecanvas/infrastructure/persistence/decorators"
	"slidecanvas/infrastructure/persistence/dynamodb"
	"slidecanvas/infrastructure/persistence/memory"
	"slidecanvas/infrastructure/persistence/sqlite"
	"slidecanvas/infrastructure/presentation"
	"slidecanvas/infrastructure/templates"
	pkgerrors "slidecanvas/pkg/errors"
	"slidecanvas/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ProvideLogLevel parses the configured level into an adjustable level, so a
// config reload can change verbosity without rebuilding the logger.
func ProvideLogLevel(cfg *config.Config) (zap.AtomicLevel, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(cfg.Logging.Level)); err != nil {
		return zap.AtomicLevel{}, fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
	}
	return zap.NewAtomicLevelAt(lvl), nil
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, func(), error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = level

	logger, err := zcfg.Build(zap.Fields(zap.String("environment", string(cfg.Environment))))
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// ProvideErrorHandler creates the HTTP error handler. Stack traces are only
// exposed outside production.
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, !cfg.IsProduction())
}

// ProvideMetrics creates the Prometheus collector
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	return observability.NewCollector(cfg.Observability.MetricsNamespace)
}

// ProvideTracing installs the OTLP exporter when tracing is enabled. The
// provider is nil otherwise and spans go to the no-op global tracer.
func ProvideTracing(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	if !cfg.Observability.EnableTracing {
		return nil, func() {}, nil
	}
	tp, err := observability.InitTracing(ctx, cfg.Observability.ServiceName, string(cfg.Environment), cfg.Observability.OTLPEndpoint)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Tracing enabled", zap.String("endpoint", cfg.Observability.OTLPEndpoint))
	cleanup := func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWS.Region),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideDomainConfig exposes the canvas policy
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	if cfg.Domain == nil {
		return domainconfig.LoadDomainConfig(string(cfg.Environment))
	}
	return cfg.Domain
}

// ProvideProjectRepository opens the configured store and wraps it with
// tracing, metrics and, when enabled, a circuit breaker.
func ProvideProjectRepository(
	ctx context.Context,
	cfg *config.Config,
	domainCfg *domainconfig.DomainConfig,
	client *awsdynamodb.Client,
	collector *observability.Collector,
	logger *zap.Logger,
) (ports.ProjectRepository, func(), error) {
	var (
		repo    ports.ProjectRepository
		cleanup = func() {}
	)
	switch cfg.Storage.Driver {
	case "sqlite":
		store, err := sqlite.Open(ctx, cfg.Storage.SQLitePath, domainCfg, logger)
		if err != nil {
			return nil, nil, err
		}
		repo = store
		cleanup = func() {
			if err := store.Close(); err != nil {
				logger.Warn("Failed to close project store", zap.Error(err))
			}
		}
	case "dynamodb":
		repo = dynamodb.NewProjectRepository(client, cfg.Storage.TableName, domainCfg, logger)
	default:
		repo = memory.NewProjectRepository(domainCfg)
	}
	logger.Info("Project store ready", zap.String("driver", cfg.Storage.Driver))

	repo = decorators.NewInstrumentedRepository(repo, cfg.Storage.Driver, collector)
	if cfg.Breaker.Enabled {
		repo = decorators.NewBreakerRepository(repo, decorators.BreakerConfig{
			Name:             "project-store",
			MaxRequests:      cfg.Breaker.MaxRequests,
			Interval:         cfg.Breaker.Interval,
			Timeout:          cfg.Breaker.Timeout,
			FailureThreshold: cfg.Breaker.FailureThreshold,
			MinRequests:      cfg.Breaker.MinRequests,
		}, collector, logger)
	}
	return repo, cleanup, nil
}

// ProvideEventBus creates the in-process bus every batch is delivered to
func ProvideEventBus(cfg *config.Config, logger *zap.Logger) *messaging.MemoryBus {
	return messaging.NewMemoryBus(cfg.Events.HistorySize, logger)
}

// ProvideEventPublisher fans events out to the bus and, with the eventbridge
// driver, to EventBridge.
func ProvideEventPublisher(
	cfg *config.Config,
	bus *messaging.MemoryBus,
	client *awseventbridge.Client,
	collector *observability.Collector,
	logger *zap.Logger,
) ports.EventPublisher {
	var external ports.EventPublisher
	if cfg.Events.Driver == "eventbridge" {
		external = eventbridge.NewPublisher(client, cfg.Events.EventBusName, logger)
	}
	return messaging.NewDispatcher(bus, external, collector, logger)
}

// ProvideEngines lists the presentation engines. Registration order breaks
// recommendation ties.
func ProvideEngines(cfg *config.Config) []ports.PresentationEngine {
	return []ports.PresentationEngine{
		presentation.NewRevealAdapter(cfg.Presentation.RevealAssets),
		presentation.NewImpressAdapter(cfg.Presentation.ImpressAssets),
	}
}

// ProvideTemplateCatalog loads the built-in templates
func ProvideTemplateCatalog() (ports.TemplateCatalog, error) {
	return templates.Builtin()
}

// ProvideRenderer creates the canvas renderer used for snapshots
func ProvideRenderer(domainCfg *domainconfig.DomainConfig) *render.Renderer {
	return render.NewRenderer(domainCfg)
}
