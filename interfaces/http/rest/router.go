package rest

import (
	"net/http"
	"time"

	"flowbuilder/application/commands/bus"
	qrybus "flowbuilder/application/queries/bus"
	"flowbuilder/application/ports"
	"flowbuilder/application/services"
	"flowbuilder/interfaces/http/rest/handlers"
	custommw "flowbuilder/interfaces/http/rest/middleware"
	"flowbuilder/pkg/auth"
	"flowbuilder/pkg/common"
	pkgerrors "flowbuilder/pkg/errors"
	"flowbuilder/pkg/observability"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RouterDeps carries everything the HTTP surface needs
type RouterDeps struct {
	CommandBus *bus.CommandBus
	QueryBus   *qrybus.QueryBus
	Workflow   *services.WorkflowService
	Sync       *services.CanvasSync
	History    ports.WorkflowRepository
	Validator  *auth.JWTValidator
	Tracer     *observability.Tracer
	Logger     *zap.Logger

	// Requests per minute; zero falls back to the middleware defaults
	IPRateLimit   int
	UserRateLimit int
}

// NewRouter builds the chi router with the full API surface
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommw.Logger(deps.Logger))
	r.Use(pkgerrors.NewErrorHandler(deps.Logger, false).Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	if deps.Tracer != nil {
		r.Use(custommw.Trace(deps.Tracer))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	r.Get("/ready", func(w http.ResponseWriter, _ *http.Request) {
		common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	chatHandler := handlers.NewChatHandler(deps.Workflow, deps.QueryBus, deps.Logger)
	workflowHandler := handlers.NewWorkflowHandler(deps.CommandBus, deps.QueryBus, deps.Workflow, deps.Logger)
	nodeHandler := handlers.NewNodeHandler(deps.CommandBus, deps.QueryBus, deps.Workflow, deps.Logger)
	edgeHandler := handlers.NewEdgeHandler(deps.CommandBus, deps.QueryBus, deps.Logger)
	canvasHandler := handlers.NewCanvasHandler(deps.Sync, deps.Logger)
	historyHandler := handlers.NewHistoryHandler(deps.CommandBus, deps.QueryBus, deps.History, deps.Logger)
	catalogHandler := handlers.NewCatalogHandler(deps.QueryBus, deps.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(custommw.Authenticate(deps.Validator, deps.IPRateLimit, deps.UserRateLimit, deps.Logger))

		r.Post("/chat", chatHandler.HandleMessage)

		r.Route("/workflow", func(r chi.Router) {
			r.Get("/", workflowHandler.GetWorkflow)
			r.Post("/clear", workflowHandler.ClearSession)
			r.Put("/name", workflowHandler.Rename)
			r.Get("/validate", workflowHandler.Validate)
		})

		r.Route("/nodes", func(r chi.Router) {
			r.Post("/", nodeHandler.DropNode)
			r.Get("/{nodeID}", nodeHandler.GetNode)
			r.Patch("/{nodeID}/config", nodeHandler.UpdateConfig)
			r.Put("/{nodeID}/position", nodeHandler.Move)
			r.Delete("/{nodeID}", nodeHandler.Delete)
			r.Post("/{nodeID}/select", nodeHandler.Select)
		})

		r.Route("/selection", func(r chi.Router) {
			r.Get("/", nodeHandler.GetSelection)
			r.Delete("/", nodeHandler.ClearSelection)
		})

		r.Route("/edges", func(r chi.Router) {
			r.Post("/", edgeHandler.Connect)
			r.Delete("/{edgeID}", edgeHandler.Delete)
		})

		r.Route("/canvas", func(r chi.Router) {
			r.Post("/changes", canvasHandler.ReportChanges)
			r.Post("/edges", canvasHandler.ReportEdgesAfterDelete)
		})

		r.Route("/workflows", func(r chi.Router) {
			r.Get("/", historyHandler.List)
			r.Post("/", historyHandler.Save)
			r.Post("/{workflowID}/restore", historyHandler.Restore)
			r.Patch("/{workflowID}", historyHandler.Update)
			r.Delete("/{workflowID}", historyHandler.Delete)
		})

		r.Get("/templates", catalogHandler.ListTemplates)
		r.Route("/schemas", func(r chi.Router) {
			r.Get("/", catalogHandler.ListSchemas)
			r.Get("/{kind}", catalogHandler.GetSchema)
		})
	})

	return r
}
