package di

import (
	cmdbus "flowbuilder/application/commands/bus"
	"flowbuilder/application/ports"
	querybus "flowbuilder/application/queries/bus"
	"flowbuilder/application/services"
	"flowbuilder/infrastructure/config"
	"flowbuilder/pkg/auth"
	"flowbuilder/pkg/observability"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Store      *services.GraphStore
	Sync       *services.CanvasSync
	Workflow   *services.WorkflowService
	History    ports.WorkflowRepository
	CommandBus *cmdbus.CommandBus
	QueryBus   *querybus.QueryBus
	Cache      ports.Cache
	Validator  *auth.JWTValidator
	Tracer     *observability.Tracer
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideWorkflowRepository,
	ProvideEventPublisher,
	ProvideCanvasNotifier,
	ProvideMetricsRecorder,
	ProvideDomainConfig,
	ProvideGraphStore,
	ProvideCanvasSync,
	ProvideMapper,
	ProvidePlanner,
	ProvideWorkflowService,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideTracer,
	ProvideJWTValidator,
	ProvideQueryCache,
	wire.Struct(new(Container), "*"),
)
