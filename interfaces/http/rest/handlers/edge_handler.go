package handlers

import (
	"net/http"

	"flowbuilder/application/commands"
	cmdbus "flowbuilder/application/commands/bus"
	"flowbuilder/application/dto"
	"flowbuilder/application/queries"
	qrybus "flowbuilder/application/queries/bus"
	"flowbuilder/pkg/common"
	"flowbuilder/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// EdgeHandler serves edge connections and the explicit per-edge delete
// control. Connecting onto an occupied condition sub-port replaces the
// occupant, so the response always carries the full surviving edge list.
type EdgeHandler struct {
	commandBus *cmdbus.CommandBus
	queryBus   *qrybus.QueryBus
	logger     *zap.Logger
}

// NewEdgeHandler creates a new edge handler
func NewEdgeHandler(commandBus *cmdbus.CommandBus, queryBus *qrybus.QueryBus, logger *zap.Logger) *EdgeHandler {
	return &EdgeHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
	}
}

// ConnectRequest creates an edge between two nodes
type ConnectRequest struct {
	Source       string `json:"source" validate:"required"`
	Target       string `json:"target" validate:"required"`
	SourceHandle string `json:"sourceHandle,omitempty"`
}

// Connect processes POST /api/v1/edges
func (h *EdgeHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req ConnectRequest
	if err := common.ParseJSONBody(r, &req, 4*1024); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	cmd := commands.ConnectNodesCommand{
		SourceID:     req.Source,
		TargetID:     req.Target,
		SourceHandle: req.SourceHandle,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		respondError(w, h.logger, err)
		return
	}

	edges, err := h.currentEdges(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, edges)
}

// Delete processes DELETE /api/v1/edges/{edgeID} and responds with the
// surviving edge list
func (h *EdgeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	edgeID := chi.URLParam(r, "edgeID")

	if err := h.commandBus.Send(r.Context(), commands.DeleteEdgeCommand{EdgeID: edgeID}); err != nil {
		respondError(w, h.logger, err)
		return
	}

	edges, err := h.currentEdges(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, edges)
}

func (h *EdgeHandler) currentEdges(r *http.Request) ([]dto.CanvasEdge, error) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetGraphQuery{})
	if err != nil {
		return nil, err
	}
	graph, ok := result.(dto.CanvasGraph)
	if !ok {
		return nil, nil
	}
	return graph.Edges, nil
}
