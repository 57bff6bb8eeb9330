package handlers

import (
	"net/http"
	"time"

	"flowbuilder/application/services"
	"flowbuilder/domain/core/aggregates"
	"flowbuilder/domain/core/entities"
	"flowbuilder/domain/core/valueobjects"
	"flowbuilder/pkg/common"

	"go.uber.org/zap"
)

// CanvasHandler receives change reports from connected canvases. Reports go
// through the sync mediator, which drops echoes of updates the server itself
// pushed and debounces drag storms before touching the store.
type CanvasHandler struct {
	sync   *services.CanvasSync
	logger *zap.Logger
}

// NewCanvasHandler creates a new canvas handler
func NewCanvasHandler(sync *services.CanvasSync, logger *zap.Logger) *CanvasHandler {
	return &CanvasHandler{
		sync:   sync,
		logger: logger,
	}
}

// CanvasNodeReport is one node as the canvas renders it
type CanvasNodeReport struct {
	ID       string `json:"id"`
	Position struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"position"`
	Data struct {
		Label       string                 `json:"label"`
		NodeType    string                 `json:"nodeType"`
		Description string                 `json:"description"`
		Config      map[string]interface{} `json:"config"`
	} `json:"data"`
}

// CanvasEdgeReport is one edge as the canvas renders it
type CanvasEdgeReport struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
}

// CanvasChangesRequest is a full-graph change report
type CanvasChangesRequest struct {
	WorkflowName string             `json:"workflowName"`
	Nodes        []CanvasNodeReport `json:"nodes"`
	Edges        []CanvasEdgeReport `json:"edges"`
}

// CanvasEdgesRequest is the exact edge list surviving a keyboard delete
type CanvasEdgesRequest struct {
	Edges []CanvasEdgeReport `json:"edges"`
}

// ReportChanges processes POST /api/v1/canvas/changes. The report is accepted
// and applied asynchronously after the debounce window, so the response is
// 202 rather than the resulting graph.
func (h *CanvasHandler) ReportChanges(w http.ResponseWriter, r *http.Request) {
	var req CanvasChangesRequest
	if err := common.ParseJSONBody(r, &req, 4*1024*1024); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	nodes, err := reportToNodes(req.Nodes)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.sync.ReportCanvasGraph(req.WorkflowName, nodes, reportToEdges(req.Edges))
	common.RespondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// ReportEdgesAfterDelete processes POST /api/v1/canvas/edges, the keyboard
// multi-delete path where the canvas computes the surviving edge set itself
func (h *CanvasHandler) ReportEdgesAfterDelete(w http.ResponseWriter, r *http.Request) {
	var req CanvasEdgesRequest
	if err := common.ParseJSONBody(r, &req, 1024*1024); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	if err := h.sync.ReportEdgesAfterDelete(r.Context(), reportToEdges(req.Edges)); err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "applied"})
}

// reportToNodes rebuilds domain nodes from a canvas report
func reportToNodes(reports []CanvasNodeReport) ([]*entities.Node, error) {
	nodes := make([]*entities.Node, 0, len(reports))
	for _, rep := range reports {
		id, err := valueobjects.NewNodeIDFromString(rep.ID)
		if err != nil {
			return nil, err
		}
		node, err := entities.ReconstructNode(
			id,
			valueobjects.KindFromString(rep.Data.NodeType),
			rep.Data.Label,
			rep.Data.Description,
			valueobjects.NewPosition(rep.Position.X, rep.Position.Y),
			rep.Data.Config,
		)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// reportToEdges rebuilds domain edges from a canvas report. Blank entries are
// skipped rather than rejected; a mid-drag report can carry half-built edges.
func reportToEdges(reports []CanvasEdgeReport) []aggregates.Edge {
	edges := make([]aggregates.Edge, 0, len(reports))
	now := time.Now()
	for _, rep := range reports {
		if rep.Source == "" || rep.Target == "" {
			continue
		}
		sourceID, err := valueobjects.NewNodeIDFromString(rep.Source)
		if err != nil {
			continue
		}
		targetID, err := valueobjects.NewNodeIDFromString(rep.Target)
		if err != nil {
			continue
		}
		edges = append(edges, aggregates.Edge{
			ID:           rep.ID,
			SourceID:     sourceID,
			TargetID:     targetID,
			SourceHandle: rep.SourceHandle,
			CreatedAt:    now,
		})
	}
	return edges
}
