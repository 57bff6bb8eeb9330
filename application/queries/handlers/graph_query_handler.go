package handlers

import (
	"context"
	"fmt"

	"flowbuilder/application/dto"
	"flowbuilder/application/mapper"
	"flowbuilder/application/ports"
	"flowbuilder/application/queries"
	"flowbuilder/application/queries/bus"
	"flowbuilder/application/services"
	"flowbuilder/domain/core/valueobjects"
	"flowbuilder/domain/schema"
	pkgerrors "flowbuilder/pkg/errors"
)

// NodeResult is one node with its config and field schema
type NodeResult struct {
	Node   dto.CanvasNode `json:"node"`
	Schema schema.Schema  `json:"schema"`
}

// SelectionResult is the config form payload: the selected node, or nothing
type SelectionResult struct {
	Selected bool        `json:"selected"`
	Node     *NodeResult `json:"node,omitempty"`
}

// TemplateResult is one report template in catalog listing format
type TemplateResult struct {
	Key   string   `json:"key"`
	Steps []string `json:"steps"`
	Kinds []string `json:"kinds"`
}

// HistoryEntry is one saved workflow in list format
type HistoryEntry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	NodeCount int    `json:"nodeCount"`
	EdgeCount int    `json:"edgeCount"`
	Pinned    bool   `json:"pinned"`
	UpdatedAt string `json:"updatedAt"`
}

// GraphValidationResult reports referential problems without failing
type GraphValidationResult struct {
	Valid         bool     `json:"valid"`
	DanglingEdges []string `json:"danglingEdges,omitempty"`
}

// GraphQueryHandler serves all read queries from the store and the static
// catalogs
type GraphQueryHandler struct {
	store   *services.GraphStore
	history ports.WorkflowRepository
}

// NewGraphQueryHandler creates the handler
func NewGraphQueryHandler(store *services.GraphStore, history ports.WorkflowRepository) *GraphQueryHandler {
	return &GraphQueryHandler{
		store:   store,
		history: history,
	}
}

// Register wires every query this handler serves onto the bus
func (h *GraphQueryHandler) Register(b *bus.QueryBus) error {
	for _, q := range []bus.Query{
		queries.GetGraphQuery{},
		queries.GetNodeQuery{},
		queries.GetSelectionQuery{},
		queries.ListTemplatesQuery{},
		queries.ListSchemasQuery{},
		queries.GetSchemaQuery{},
		queries.ListHistoryQuery{},
		queries.ValidateGraphQuery{},
	} {
		if err := b.Register(q, h); err != nil {
			return err
		}
	}
	return nil
}

// Handle dispatches on the concrete query type
func (h *GraphQueryHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	switch q := query.(type) {
	case queries.GetGraphQuery:
		workflow := h.store.Workflow()
		return dto.WorkflowToCanvas(workflow, h.store.SelectedNode(), h.store.Generation()), nil

	case queries.GetNodeQuery:
		return h.nodeResult(q.NodeID)

	case queries.GetSelectionQuery:
		selected := h.store.SelectedNode()
		if selected == "" {
			return SelectionResult{}, nil
		}
		node, err := h.nodeResult(selected)
		if err != nil {
			return nil, err
		}
		return SelectionResult{Selected: true, Node: node}, nil

	case queries.ListTemplatesQuery:
		keys := mapper.TemplateKeys()
		out := make([]TemplateResult, 0, len(keys))
		for _, key := range keys {
			steps, _ := mapper.Template(key)
			result := TemplateResult{Key: key}
			for _, step := range steps {
				result.Steps = append(result.Steps, step.Title)
				result.Kinds = append(result.Kinds, step.Kind.String())
			}
			out = append(out, result)
		}
		return out, nil

	case queries.ListSchemasQuery:
		return schema.All(), nil

	case queries.GetSchemaQuery:
		kind := valueobjects.NodeKind(q.Kind)
		if !kind.IsValid() {
			return nil, pkgerrors.NewNotFoundError("schema")
		}
		return schema.ForKind(kind)

	case queries.ListHistoryQuery:
		limit := q.Limit
		if limit == 0 {
			limit = 50
		}
		summaries, err := h.history.ListByUserID(ctx, q.UserID, limit)
		if err != nil {
			return nil, err
		}
		out := make([]HistoryEntry, 0, len(summaries))
		for _, s := range summaries {
			out = append(out, HistoryEntry{
				ID:        s.ID.String(),
				Name:      s.Name,
				NodeCount: s.NodeCount,
				EdgeCount: s.EdgeCount,
				Pinned:    s.Pinned,
				UpdatedAt: s.UpdatedAt,
			})
		}
		return out, nil

	case queries.ValidateGraphQuery:
		workflow := h.store.Workflow()
		dangling := workflow.DanglingEdges()
		result := GraphValidationResult{Valid: len(dangling) == 0}
		for _, e := range dangling {
			result.DanglingEdges = append(result.DanglingEdges, e.ID)
		}
		return result, nil

	default:
		return nil, fmt.Errorf("unsupported query type %T", query)
	}
}

func (h *GraphQueryHandler) nodeResult(nodeID string) (*NodeResult, error) {
	id, err := valueobjects.NewNodeIDFromString(nodeID)
	if err != nil {
		return nil, pkgerrors.NewValidationError("invalid node id")
	}
	node, err := h.store.Workflow().Node(id)
	if err != nil {
		return nil, err
	}
	fieldSchema, err := schema.ForKind(node.Kind())
	if err != nil {
		return nil, err
	}
	return &NodeResult{
		Node:   dto.NodeToCanvas(node, nodeID == h.store.SelectedNode()),
		Schema: fieldSchema,
	}, nil
}
