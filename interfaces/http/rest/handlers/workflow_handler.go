package handlers

import (
	"net/http"

	"flowbuilder/application/commands"
	cmdbus "flowbuilder/application/commands/bus"
	"flowbuilder/application/queries"
	qrybus "flowbuilder/application/queries/bus"
	"flowbuilder/application/services"
	"flowbuilder/pkg/common"
	"flowbuilder/pkg/utils"

	"go.uber.org/zap"
)

// WorkflowHandler serves the current canvas workflow: the full graph, its
// display name, the session lifecycle, and structural validation.
type WorkflowHandler struct {
	commandBus *cmdbus.CommandBus
	queryBus   *qrybus.QueryBus
	workflow   *services.WorkflowService
	logger     *zap.Logger
}

// NewWorkflowHandler creates a new workflow handler
func NewWorkflowHandler(
	commandBus *cmdbus.CommandBus,
	queryBus *qrybus.QueryBus,
	workflow *services.WorkflowService,
	logger *zap.Logger,
) *WorkflowHandler {
	return &WorkflowHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		workflow:   workflow,
		logger:     logger,
	}
}

// RenameWorkflowRequest changes the workflow display name
type RenameWorkflowRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// GetWorkflow processes GET /api/v1/workflow
func (h *WorkflowHandler) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	graph, err := h.queryBus.Ask(r.Context(), queries.GetGraphQuery{})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, graph)
}

// ClearSession processes POST /api/v1/workflow/clear. The response carries
// the fresh session token so the client can hand it to the planner on the
// next turn.
func (h *WorkflowHandler) ClearSession(w http.ResponseWriter, r *http.Request) {
	token := h.workflow.ClearSession(r.Context())
	common.RespondJSON(w, http.StatusOK, map[string]string{
		"sessionToken": token,
	})
}

// Rename processes PUT /api/v1/workflow/name
func (h *WorkflowHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req RenameWorkflowRequest
	if err := common.ParseJSONBody(r, &req, 4*1024); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	if err := h.commandBus.Send(r.Context(), commands.RenameWorkflowCommand{Name: req.Name}); err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"name": req.Name})
}

// Validate processes GET /api/v1/workflow/validate
func (h *WorkflowHandler) Validate(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ValidateGraphQuery{})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}
