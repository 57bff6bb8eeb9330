package handlers

import (
	"net/http"
	"strconv"

	"flowbuilder/application/commands"
	cmdbus "flowbuilder/application/commands/bus"
	"flowbuilder/application/ports"
	"flowbuilder/application/queries"
	qrybus "flowbuilder/application/queries/bus"
	"flowbuilder/domain/core/aggregates"
	"flowbuilder/pkg/auth"
	"flowbuilder/pkg/common"
	"flowbuilder/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// HistoryHandler serves the saved-workflow history: listing, saving the
// current canvas, restoring onto the canvas, and managing stored entries.
type HistoryHandler struct {
	commandBus *cmdbus.CommandBus
	queryBus   *qrybus.QueryBus
	history    ports.WorkflowRepository
	logger     *zap.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(
	commandBus *cmdbus.CommandBus,
	queryBus *qrybus.QueryBus,
	history ports.WorkflowRepository,
	logger *zap.Logger,
) *HistoryHandler {
	return &HistoryHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		history:    history,
		logger:     logger,
	}
}

// UpdateHistoryRequest renames or pins a stored workflow. Both fields are
// optional; absent fields are left unchanged.
type UpdateHistoryRequest struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Pinned *bool   `json:"pinned,omitempty"`
}

// List processes GET /api/v1/workflows
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			respondBadRequest(w, "Invalid limit parameter")
			return
		}
	} else if r.URL.Query().Get("page_size") != "" {
		limit = common.ExtractPaginationParams(r).PageSize
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListHistoryQuery{
		UserID: user.UserID,
		Limit:  limit,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// Save processes POST /api/v1/workflows, snapshotting the current canvas
func (h *HistoryHandler) Save(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if err := h.commandBus.Send(r.Context(), commands.SaveWorkflowCommand{UserID: user.UserID}); err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, map[string]string{"status": "saved"})
}

// Restore processes POST /api/v1/workflows/{workflowID}/restore, loading a
// stored workflow onto the canvas as an external update
func (h *HistoryHandler) Restore(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	workflowID := chi.URLParam(r, "workflowID")

	cmd := commands.RestoreWorkflowCommand{UserID: user.UserID, WorkflowID: workflowID}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		respondError(w, h.logger, err)
		return
	}

	graph, err := h.queryBus.Ask(r.Context(), queries.GetGraphQuery{})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, graph)
}

// Update processes PATCH /api/v1/workflows/{workflowID}
func (h *HistoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	workflowID := aggregates.WorkflowID(chi.URLParam(r, "workflowID"))

	var req UpdateHistoryRequest
	if err := common.ParseJSONBody(r, &req, 4*1024); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	if req.Name == nil && req.Pinned == nil {
		respondBadRequest(w, "Nothing to update")
		return
	}

	if req.Name != nil {
		if err := h.history.Rename(r.Context(), user.UserID, workflowID, *req.Name); err != nil {
			respondError(w, h.logger, err)
			return
		}
	}
	if req.Pinned != nil {
		if err := h.history.SetPinned(r.Context(), user.UserID, workflowID, *req.Pinned); err != nil {
			respondError(w, h.logger, err)
			return
		}
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Delete processes DELETE /api/v1/workflows/{workflowID}
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	workflowID := aggregates.WorkflowID(chi.URLParam(r, "workflowID"))

	if err := h.history.Delete(r.Context(), user.UserID, workflowID); err != nil {
		respondError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
