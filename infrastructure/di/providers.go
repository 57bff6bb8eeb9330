package di

import (
	"context"

	cmdbus "flowbuilder/application/commands/bus"
	commandhandlers "flowbuilder/application/commands/handlers"
	"flowbuilder/application/mapper"
	"flowbuilder/application/ports"
	"flowbuilder/application/queries"
	querybus "flowbuilder/application/queries/bus"
	queryhandlers "flowbuilder/application/queries/handlers"
	"flowbuilder/application/services"
	domainconfig "flowbuilder/domain/config"
	"flowbuilder/infrastructure/config"
	"flowbuilder/infrastructure/messaging"
	"flowbuilder/infrastructure/observability"
	dynamorepo "flowbuilder/infrastructure/persistence/dynamodb"
	memoryrepo "flowbuilder/infrastructure/persistence/memory"
	"flowbuilder/infrastructure/planner"
	"flowbuilder/infrastructure/realtime"
	"flowbuilder/pkg/auth"
	pkgobservability "flowbuilder/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
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

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideWorkflowRepository picks the history store. Development runs on the
// in-memory store so the server comes up without any AWS credentials.
func ProvideWorkflowRepository(
	client *awsdynamodb.Client,
	cfg *config.Config,
	logger *zap.Logger,
) ports.WorkflowRepository {
	if cfg.IsDevelopment() {
		return memoryrepo.NewWorkflowRepository()
	}
	return dynamorepo.NewWorkflowRepository(client, cfg.DynamoDBTable, cfg.IndexName, logger)
}

// ProvideEventPublisher creates the domain event publisher
func ProvideEventPublisher(
	client *awseventbridge.Client,
	cfg *config.Config,
	logger *zap.Logger,
) ports.EventPublisher {
	if cfg.EventBusName == "" || cfg.IsDevelopment() {
		return messaging.NoopPublisher{}
	}
	return messaging.NewEventBridgePublisher(client, cfg.EventBusName, logger)
}

// ProvideCanvasNotifier creates the realtime canvas push channel. Without a
// WebSocket endpoint configured, updates are simply not pushed; clients poll.
func ProvideCanvasNotifier(
	awsCfg aws.Config,
	dynamoClient *awsdynamodb.Client,
	cfg *config.Config,
	logger *zap.Logger,
) ports.CanvasNotifier {
	if cfg.RealtimeEndpoint == "" {
		return realtime.NoopNotifier{}
	}
	apiClient := apigatewaymanagementapi.NewFromConfig(awsCfg, func(o *apigatewaymanagementapi.Options) {
		o.BaseEndpoint = aws.String(cfg.RealtimeEndpoint)
	})
	return realtime.NewAPIGatewayNotifier(apiClient, dynamoClient, cfg.ConnectionsTable, logger)
}

// ProvideMetricsRecorder creates the metrics sink
func ProvideMetricsRecorder(
	client *awscloudwatch.Client,
	cfg *config.Config,
	logger *zap.Logger,
) ports.MetricsRecorder {
	if !cfg.EnableMetrics {
		return observability.NoopRecorder{}
	}
	return observability.NewCloudWatchRecorder(client, cfg.Environment, logger)
}

// ProvideDomainConfig builds domain constraints from runtime configuration
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	dc := domainconfig.DefaultDomainConfig()
	if cfg.CanvasSettleDelay > 0 {
		dc.CanvasSettleDelay = cfg.CanvasSettleDelay
	}
	return dc
}

// ProvideGraphStore creates the authoritative in-memory graph store
func ProvideGraphStore(
	dc *domainconfig.DomainConfig,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *services.GraphStore {
	return services.NewGraphStore(dc, publisher, logger)
}

// ProvideCanvasSync creates the canvas synchronization mediator
func ProvideCanvasSync(
	store *services.GraphStore,
	notifier ports.CanvasNotifier,
	dc *domainconfig.DomainConfig,
	logger *zap.Logger,
) *services.CanvasSync {
	return services.NewCanvasSync(store, notifier, dc.CanvasSettleDelay, logger)
}

// ProvideMapper creates the payload-to-graph mapper
func ProvideMapper() *mapper.Mapper {
	return mapper.NewMapper()
}

// ProvidePlanner creates the planner backend client
func ProvidePlanner(cfg *config.Config, logger *zap.Logger) ports.Planner {
	return planner.NewHTTPPlanner(cfg.PlannerURL, cfg.PlannerTimeout, logger)
}

// ProvideWorkflowService creates the prompt orchestration service
func ProvideWorkflowService(
	store *services.GraphStore,
	sync *services.CanvasSync,
	m *mapper.Mapper,
	p ports.Planner,
	history ports.WorkflowRepository,
	metrics ports.MetricsRecorder,
	logger *zap.Logger,
) *services.WorkflowService {
	return services.NewWorkflowService(store, sync, m, p, history, metrics, logger)
}

// ProvideCommandBus creates the command bus with all graph commands registered
func ProvideCommandBus(
	store *services.GraphStore,
	sync *services.CanvasSync,
	workflow *services.WorkflowService,
	logger *zap.Logger,
) (*cmdbus.CommandBus, error) {
	commandBus := cmdbus.NewCommandBus(
		cmdbus.LoggingMiddleware(&busLogger{logger.Sugar()}),
		cmdbus.ValidationMiddleware(),
	)

	handler := commandhandlers.NewGraphCommandHandler(store, sync, workflow, logger)
	if err := handler.Register(commandBus); err != nil {
		return nil, err
	}
	return commandBus, nil
}

// ProvideQueryBus creates the query bus. The static catalog lookups get a
// caching wrapper on top of metrics; live graph reads get metrics only.
func ProvideQueryBus(
	store *services.GraphStore,
	history ports.WorkflowRepository,
	cache ports.Cache,
	metrics ports.MetricsRecorder,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()

	handler := queryhandlers.NewGraphQueryHandler(store, history)
	measured := querybus.NewMetricsMiddleware(metrics).Wrap(handler)
	cached := querybus.NewCachingMiddleware(cache, 300).Wrap(measured)

	static := []querybus.Query{
		queries.ListTemplatesQuery{},
		queries.ListSchemasQuery{},
		queries.GetSchemaQuery{},
	}
	live := []querybus.Query{
		queries.GetGraphQuery{},
		queries.GetNodeQuery{},
		queries.GetSelectionQuery{},
		queries.ListHistoryQuery{},
		queries.ValidateGraphQuery{},
	}

	for _, q := range static {
		if err := queryBus.Register(q, cached); err != nil {
			return nil, err
		}
	}
	for _, q := range live {
		if err := queryBus.Register(q, measured); err != nil {
			return nil, err
		}
	}
	return queryBus, nil
}

// ProvideTracer creates the X-Ray tracer, nil when tracing is disabled
func ProvideTracer(cfg *config.Config) *pkgobservability.Tracer {
	if !cfg.EnableTracing {
		return nil
	}
	return pkgobservability.NewTracer("flowbuilder")
}

// ProvideJWTValidator creates the token validator
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	secret := cfg.JWTSecret
	if secret == "" && cfg.IsDevelopment() {
		secret = "development-secret"
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: secret,
		Issuer:    cfg.JWTIssuer,
	})
}

// ProvideQueryCache creates the in-memory cache backing the query bus
func ProvideQueryCache() ports.Cache {
	return NewQueryCache()
}

// busLogger adapts a zap sugared logger to the command bus logging interface
type busLogger struct {
	s *zap.SugaredLogger
}

func (l *busLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}

func (l *busLogger) Error(msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, keysAndValues...)
}
