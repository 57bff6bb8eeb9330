package handlers

import (
	"net/http"

	"flowbuilder/application/commands"
	cmdbus "flowbuilder/application/commands/bus"
	"flowbuilder/application/dto"
	"flowbuilder/application/queries"
	qrybus "flowbuilder/application/queries/bus"
	"flowbuilder/application/services"
	"flowbuilder/domain/core/valueobjects"
	"flowbuilder/pkg/common"
	"flowbuilder/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NodeHandler serves node-level operations: palette drops, config editing,
// repositioning, deletion, and the selection that backs the config form.
type NodeHandler struct {
	commandBus *cmdbus.CommandBus
	queryBus   *qrybus.QueryBus
	workflow   *services.WorkflowService
	logger     *zap.Logger
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(
	commandBus *cmdbus.CommandBus,
	queryBus *qrybus.QueryBus,
	workflow *services.WorkflowService,
	logger *zap.Logger,
) *NodeHandler {
	return &NodeHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		workflow:   workflow,
		logger:     logger,
	}
}

// DropNodeRequest creates a node from a palette drop
type DropNodeRequest struct {
	Kind string  `json:"kind" validate:"required"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// UpdateConfigRequest merges a partial config patch into a node
type UpdateConfigRequest struct {
	Config map[string]interface{} `json:"config" validate:"required"`
}

// MoveNodeRequest repositions a node on the canvas
type MoveNodeRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DropNode processes POST /api/v1/nodes. The created node is returned in
// canvas wire format so the client can render it immediately.
func (h *NodeHandler) DropNode(w http.ResponseWriter, r *http.Request) {
	var req DropNodeRequest
	if err := common.ParseJSONBody(r, &req, 16*1024); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	node, err := h.workflow.DropNode(r.Context(), req.Kind, valueobjects.NewPosition(req.X, req.Y))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, dto.NodeToCanvas(node, false))
}

// GetNode processes GET /api/v1/nodes/{nodeID}
func (h *NodeHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")

	result, err := h.queryBus.Ask(r.Context(), queries.GetNodeQuery{NodeID: nodeID})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// UpdateConfig processes PATCH /api/v1/nodes/{nodeID}/config
func (h *NodeHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")

	var req UpdateConfigRequest
	if err := common.ParseJSONBody(r, &req, 256*1024); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	cmd := commands.UpdateNodeConfigCommand{NodeID: nodeID, Patch: req.Config}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		respondError(w, h.logger, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetNodeQuery{NodeID: nodeID})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// Move processes PUT /api/v1/nodes/{nodeID}/position
func (h *NodeHandler) Move(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")

	var req MoveNodeRequest
	if err := common.ParseJSONBody(r, &req, 4*1024); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	cmd := commands.MoveNodeCommand{NodeID: nodeID, X: req.X, Y: req.Y}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"id": nodeID,
		"position": map[string]float64{
			"x": req.X,
			"y": req.Y,
		},
	})
}

// Delete processes DELETE /api/v1/nodes/{nodeID}. Connected edges cascade.
func (h *NodeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")

	if err := h.commandBus.Send(r.Context(), commands.DeleteNodeCommand{NodeID: nodeID}); err != nil {
		respondError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Select processes POST /api/v1/nodes/{nodeID}/select and responds with the
// config form payload for the newly selected node
func (h *NodeHandler) Select(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")

	if err := h.commandBus.Send(r.Context(), commands.SelectNodeCommand{NodeID: nodeID}); err != nil {
		respondError(w, h.logger, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetSelectionQuery{})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// GetSelection processes GET /api/v1/selection
func (h *NodeHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetSelectionQuery{})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// ClearSelection processes DELETE /api/v1/selection
func (h *NodeHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	if err := h.commandBus.Send(r.Context(), commands.ClearSelectionCommand{}); err != nil {
		respondError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
