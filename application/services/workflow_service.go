package services

import (
	"context"
	"strings"
	"time"

	"flowbuilder/application/mapper"
	"flowbuilder/application/ports"
	"flowbuilder/domain/core/aggregates"
	"flowbuilder/domain/core/entities"
	"flowbuilder/domain/core/valueobjects"
	pkgerrors "flowbuilder/pkg/errors"

	"go.uber.org/zap"
)

// WorkflowService orchestrates the prompt-to-graph flow: it asks the planner
// for a raw payload, maps it into domain nodes and edges, and applies the
// result through the canvas sync so open canvases update without echo loops.
// It also fronts the workflow history repository.
type WorkflowService struct {
	store   *GraphStore
	sync    *CanvasSync
	mapper  *mapper.Mapper
	planner ports.Planner
	history ports.WorkflowRepository
	metrics ports.MetricsRecorder
	logger  *zap.Logger
}

// NewWorkflowService creates the orchestration service
func NewWorkflowService(
	store *GraphStore,
	sync *CanvasSync,
	m *mapper.Mapper,
	planner ports.Planner,
	history ports.WorkflowRepository,
	metrics ports.MetricsRecorder,
	logger *zap.Logger,
) *WorkflowService {
	return &WorkflowService{
		store:   store,
		sync:    sync,
		mapper:  m,
		planner: planner,
		history: history,
		metrics: metrics,
		logger:  logger,
	}
}

// ChatResult is the outcome of one prompt turn
type ChatResult struct {
	Applied    bool
	Discarded  bool
	UsedParser bool
	NodeCount  int
	EdgeCount  int
}

// HandlePrompt runs one conversational turn. The store generation is captured
// before the planner call so a clear-session racing the response wins: the
// stale graph is discarded instead of resurrecting the old session.
func (s *WorkflowService) HandlePrompt(ctx context.Context, prompt string) (*ChatResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, pkgerrors.NewValidationError("prompt cannot be empty")
	}

	generation := s.store.Generation()
	sessionToken := s.store.SessionToken()
	started := time.Now()

	var (
		name       string
		nodes      []*entities.Node
		edges      []aggregates.Edge
		usedParser bool
	)

	raw, err := s.planner.Plan(ctx, prompt, sessionToken)
	switch {
	case err != nil:
		s.logger.Warn("Planner unavailable, falling back to text parsing",
			zap.Error(err),
		)
		nodes, edges = mapper.ParseWorkflowText(prompt)
		name = s.store.Workflow().Name()
		usedParser = true
	case raw == nil || (len(raw.Nodes) == 0 && raw.ReportType == "" && raw.Name == ""):
		// Conversational reply with no graph payload
		return &ChatResult{}, nil
	default:
		nodes, edges = s.mapper.MapWorkflow(*raw)
		name = raw.Name
		if name == "" {
			name = s.store.Workflow().Name()
		}
	}

	if s.metrics != nil {
		s.metrics.Timing(ctx, "planner.turn_ms", float64(time.Since(started).Milliseconds()))
		s.metrics.Count(ctx, "mapper.nodes_mapped", float64(len(nodes)))
	}

	applied, err := s.sync.ApplyExternalGraphIfCurrent(ctx, generation, name, nodes, edges, SourcePlanner)
	if err != nil {
		return nil, err
	}

	return &ChatResult{
		Applied:    applied,
		Discarded:  !applied && generation != s.store.Generation(),
		UsedParser: usedParser,
		NodeCount:  len(nodes),
		EdgeCount:  len(edges),
	}, nil
}

// DropNode creates a node from a palette drop at the given position
func (s *WorkflowService) DropNode(ctx context.Context, kind string, pos valueobjects.Position) (*entities.Node, error) {
	nodeKind := valueobjects.KindFromString(kind)
	label := defaultLabel(nodeKind)

	node, err := entities.NewNode(valueobjects.NewTimestampID(), nodeKind, label, pos)
	if err != nil {
		return nil, err
	}
	if err := s.store.AddNode(ctx, node); err != nil {
		return nil, err
	}
	return node, nil
}

// SaveToHistory snapshots the current graph into the history repository
func (s *WorkflowService) SaveToHistory(ctx context.Context, userID string) (aggregates.WorkflowID, error) {
	workflow := s.store.Workflow()
	if workflow.NodeCount() == 0 {
		return aggregates.WorkflowID(""), pkgerrors.NewValidationError("cannot save an empty workflow")
	}
	if err := s.history.Save(ctx, userID, workflow); err != nil {
		return aggregates.WorkflowID(""), err
	}
	if s.metrics != nil {
		s.metrics.Count(ctx, "history.saved", 1)
	}
	return workflow.ID(), nil
}

// RestoreFromHistory loads a stored workflow and applies it as an external
// update, so the canvas treats it exactly like a planner response
func (s *WorkflowService) RestoreFromHistory(ctx context.Context, userID string, id aggregates.WorkflowID) error {
	stored, err := s.history.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	_, err = s.sync.ApplyExternalGraph(ctx, stored.Name(), stored.Nodes(), stored.Edges(), SourceHistory)
	return err
}

// ClearSession wipes the graph and starts a fresh conversational session.
// Returns the new session token.
func (s *WorkflowService) ClearSession(ctx context.Context) string {
	return s.store.Clear(ctx)
}

// defaultLabel gives a palette-dropped node a readable starting label
func defaultLabel(kind valueobjects.NodeKind) string {
	name := kind.String()
	if name == "" {
		return "Step"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
