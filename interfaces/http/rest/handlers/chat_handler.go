package handlers

import (
	"net/http"

	"flowbuilder/application/queries"
	"flowbuilder/application/queries/bus"
	"flowbuilder/application/services"
	"flowbuilder/pkg/common"
	"flowbuilder/pkg/utils"

	"go.uber.org/zap"
)

// ChatHandler serves the conversational entry point. A prompt turn can come
// back with a new graph, in which case the updated canvas state rides along in
// the response so the client renders without a second round trip.
type ChatHandler struct {
	workflow *services.WorkflowService
	queryBus *bus.QueryBus
	logger   *zap.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(workflow *services.WorkflowService, queryBus *bus.QueryBus, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		workflow: workflow,
		queryBus: queryBus,
		logger:   logger,
	}
}

// ChatRequest is one prompt from the user
type ChatRequest struct {
	Message string `json:"message" validate:"required,min=1,max=4000"`
}

// ChatResponse is the outcome of one prompt turn
type ChatResponse struct {
	Applied    bool        `json:"applied"`
	Discarded  bool        `json:"discarded,omitempty"`
	UsedParser bool        `json:"usedParser,omitempty"`
	NodeCount  int         `json:"nodeCount"`
	EdgeCount  int         `json:"edgeCount"`
	Graph      interface{} `json:"graph,omitempty"`
}

// HandleMessage processes POST /api/v1/chat
func (h *ChatHandler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := common.ParseJSONBody(r, &req, 64*1024); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	result, err := h.workflow.HandlePrompt(r.Context(), req.Message)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	resp := ChatResponse{
		Applied:    result.Applied,
		Discarded:  result.Discarded,
		UsedParser: result.UsedParser,
		NodeCount:  result.NodeCount,
		EdgeCount:  result.EdgeCount,
	}

	if result.Applied {
		graph, err := h.queryBus.Ask(r.Context(), queries.GetGraphQuery{})
		if err != nil {
			respondError(w, h.logger, err)
			return
		}
		resp.Graph = graph
	}

	common.RespondJSON(w, http.StatusOK, resp)
}
