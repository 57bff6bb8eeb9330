package services

import (
	"context"
	"sync"

	"flowbuilder/application/ports"
	"flowbuilder/domain/config"
	"flowbuilder/domain/core/aggregates"
	"flowbuilder/domain/core/entities"
	"flowbuilder/domain/core/valueobjects"
	"flowbuilder/domain/events"
	pkgerrors "flowbuilder/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChangeKind identifies what mutated in the store
type ChangeKind string

const (
	ChangeReplaced      ChangeKind = "graph_replaced"
	ChangeCleared       ChangeKind = "graph_cleared"
	ChangeNodeAdded     ChangeKind = "node_added"
	ChangeNodeUpdated   ChangeKind = "node_updated"
	ChangeNodeMoved     ChangeKind = "node_moved"
	ChangeNodeRemoved   ChangeKind = "node_removed"
	ChangeEdgeAdded     ChangeKind = "edge_added"
	ChangeEdgeRemoved   ChangeKind = "edge_removed"
	ChangeEdgesReplaced ChangeKind = "edges_replaced"
	ChangeSelection     ChangeKind = "selection_changed"
	ChangeRenamed       ChangeKind = "renamed"
)

// Change describes a single store mutation for subscribers
type Change struct {
	Kind       ChangeKind
	Source     string
	NodeID     string
	EdgeIDs    []string
	Generation int
}

// Subscriber receives store change notifications. Callbacks run synchronously
// after the mutation commits, outside the store lock.
type Subscriber func(Change)

// GraphStore holds the single authoritative in-memory workflow graph. All
// mutations go through it; the canvas, the planner sync loop and the HTTP
// handlers are all just clients. A generation counter guards against stale
// async planner responses landing after the user cleared the graph.
type GraphStore struct {
	mu           sync.RWMutex
	workflow     *aggregates.Workflow
	selectedNode string
	sessionToken string
	generation   int
	subscribers  []Subscriber
	cfg          *config.DomainConfig
	publisher    ports.EventPublisher
	logger       *zap.Logger
}

// NewGraphStore creates a store seeded with an empty workflow
func NewGraphStore(cfg *config.DomainConfig, publisher ports.EventPublisher, logger *zap.Logger) *GraphStore {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &GraphStore{
		workflow:     aggregates.NewWorkflowWithConfig(cfg.DefaultWorkflowName, cfg),
		sessionToken: uuid.New().String(),
		cfg:          cfg,
		publisher:    publisher,
		logger:       logger,
	}
}

// Subscribe registers a change listener
func (s *GraphStore) Subscribe(fn Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Generation returns the current store generation. Callers snapshot it before
// launching async work and pass it back to ReplaceAllIfCurrent.
func (s *GraphStore) Generation() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// SessionToken returns the conversational session token
func (s *GraphStore) SessionToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionToken
}

// Workflow returns a deep copy of the current graph
func (s *GraphStore) Workflow() *aggregates.Workflow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// SelectedNode returns the currently selected node id, empty when none
func (s *GraphStore) SelectedNode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedNode
}

// ReplaceAll swaps in a full new graph. Returns false without touching
// anything when the incoming graph deep-equals the current one, so echoed
// payloads do not ripple back to subscribers.
func (s *GraphStore) ReplaceAll(ctx context.Context, name string, nodes []*entities.Node, edges []aggregates.Edge, source string) (bool, error) {
	s.mu.Lock()
	changed, err := s.workflow.ReplaceAll(name, nodes, edges, source)
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	if !changed {
		s.mu.Unlock()
		return false, nil
	}
	if s.selectedNode != "" && !s.workflow.HasNode(mustNodeID(s.selectedNode)) {
		s.selectedNode = ""
	}
	gen := s.generation
	subs, evts := s.drainLocked()
	s.mu.Unlock()

	s.publish(ctx, evts)
	s.notify(subs, Change{Kind: ChangeReplaced, Source: source, Generation: gen})
	return true, nil
}

// ReplaceAllIfCurrent applies ReplaceAll only when the store generation still
// matches the one the caller captured. A stale generation means the user
// cleared or reset the session while the planner was thinking; the response
// is discarded.
func (s *GraphStore) ReplaceAllIfCurrent(ctx context.Context, generation int, name string, nodes []*entities.Node, edges []aggregates.Edge, source string) (bool, error) {
	s.mu.RLock()
	current := s.generation
	s.mu.RUnlock()

	if generation != current {
		if s.logger != nil {
			s.logger.Info("Discarding stale graph replacement",
				zap.Int("response_generation", generation),
				zap.Int("store_generation", current),
				zap.String("source", source),
			)
		}
		return false, nil
	}
	return s.ReplaceAll(ctx, name, nodes, edges, source)
}

// Clear resets the store to an empty workflow under a fresh session token and
// bumps the generation so in-flight planner responses get dropped.
func (s *GraphStore) Clear(ctx context.Context) string {
	s.mu.Lock()
	token := uuid.New().String()
	s.workflow = aggregates.NewWorkflowWithConfig(s.cfg.DefaultWorkflowName, s.cfg)
	s.sessionToken = token
	s.selectedNode = ""
	s.generation++
	gen := s.generation
	wfID := s.workflow.ID().String()
	ts := s.workflow.LastModified()
	subs := append([]Subscriber(nil), s.subscribers...)
	s.mu.Unlock()

	s.publish(ctx, []events.DomainEvent{events.NewWorkflowCleared(wfID, token, ts)})
	s.notify(subs, Change{Kind: ChangeCleared, Generation: gen})
	return token
}

// Rename changes the workflow display name
func (s *GraphStore) Rename(ctx context.Context, name string) error {
	s.mu.Lock()
	if err := s.workflow.Rename(name); err != nil {
		s.mu.Unlock()
		return err
	}
	gen := s.generation
	subs, evts := s.drainLocked()
	s.mu.Unlock()

	s.publish(ctx, evts)
	s.notify(subs, Change{Kind: ChangeRenamed, Generation: gen})
	return nil
}

// AddNode appends a node to the graph
func (s *GraphStore) AddNode(ctx context.Context, node *entities.Node) error {
	s.mu.Lock()
	if err := s.workflow.AddNode(node); err != nil {
		s.mu.Unlock()
		return err
	}
	gen := s.generation
	subs, evts := s.drainLocked()
	s.mu.Unlock()

	s.publish(ctx, evts)
	s.notify(subs, Change{Kind: ChangeNodeAdded, NodeID: node.ID().String(), Generation: gen})
	return nil
}

// MergeNodeConfig applies a partial config patch to one node
func (s *GraphStore) MergeNodeConfig(ctx context.Context, nodeID string, patch map[string]interface{}) error {
	id, err := valueobjects.NewNodeIDFromString(nodeID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if err := s.workflow.MergeNodeConfig(id, patch); err != nil {
		s.mu.Unlock()
		return err
	}
	gen := s.generation
	subs, evts := s.drainLocked()
	s.mu.Unlock()

	s.publish(ctx, evts)
	s.notify(subs, Change{Kind: ChangeNodeUpdated, NodeID: nodeID, Generation: gen})
	return nil
}

// MoveNode repositions one node on the canvas
func (s *GraphStore) MoveNode(ctx context.Context, nodeID string, pos valueobjects.Position) error {
	id, err := valueobjects.NewNodeIDFromString(nodeID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if err := s.workflow.MoveNode(id, pos); err != nil {
		s.mu.Unlock()
		return err
	}
	gen := s.generation
	subs, _ := s.drainLocked()
	s.mu.Unlock()

	s.notify(subs, Change{Kind: ChangeNodeMoved, NodeID: nodeID, Generation: gen})
	return nil
}

// RemoveNode deletes a node and cascades to its connected edges. Returns the
// ids of the edges that were removed along with the node.
func (s *GraphStore) RemoveNode(ctx context.Context, nodeID string) ([]string, error) {
	id, err := valueobjects.NewNodeIDFromString(nodeID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	removedEdges, err := s.workflow.RemoveNode(id)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if s.selectedNode == nodeID {
		s.selectedNode = ""
	}
	gen := s.generation
	subs, evts := s.drainLocked()
	s.mu.Unlock()

	s.publish(ctx, evts)
	s.notify(subs, Change{Kind: ChangeNodeRemoved, NodeID: nodeID, EdgeIDs: removedEdges, Generation: gen})
	return removedEdges, nil
}

// Connect creates an edge between two nodes. For condition sources the handle
// names the branch; a second edge from the same handle replaces the first.
func (s *GraphStore) Connect(ctx context.Context, sourceID, targetID, sourceHandle string) (*aggregates.Edge, error) {
	src, err := valueobjects.NewNodeIDFromString(sourceID)
	if err != nil {
		return nil, err
	}
	tgt, err := valueobjects.NewNodeIDFromString(targetID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	edge, err := s.workflow.Connect(src, tgt, sourceHandle)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	gen := s.generation
	subs, evts := s.drainLocked()
	s.mu.Unlock()

	s.publish(ctx, evts)
	s.notify(subs, Change{Kind: ChangeEdgeAdded, EdgeIDs: []string{edge.ID}, Generation: gen})
	return edge, nil
}

// RemoveEdge deletes a single edge by id
func (s *GraphStore) RemoveEdge(ctx context.Context, edgeID string) error {
	s.mu.Lock()
	if err := s.workflow.RemoveEdge(edgeID); err != nil {
		s.mu.Unlock()
		return err
	}
	gen := s.generation
	subs, evts := s.drainLocked()
	s.mu.Unlock()

	s.publish(ctx, evts)
	s.notify(subs, Change{Kind: ChangeEdgeRemoved, EdgeIDs: []string{edgeID}, Generation: gen})
	return nil
}

// ReplaceEdges adopts the exact edge list computed by the canvas after a
// multi-delete, instead of diffing against the current set
func (s *GraphStore) ReplaceEdges(ctx context.Context, edges []aggregates.Edge) error {
	s.mu.Lock()
	if err := s.workflow.ReplaceEdges(edges); err != nil {
		s.mu.Unlock()
		return err
	}
	ids := make([]string, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.ID)
	}
	gen := s.generation
	subs, evts := s.drainLocked()
	s.mu.Unlock()

	s.publish(ctx, evts)
	s.notify(subs, Change{Kind: ChangeEdgesReplaced, EdgeIDs: ids, Generation: gen})
	return nil
}

// SelectNode marks a node as selected, opening its config form. Selecting an
// unknown node is an error; selecting the same node again is a no-op.
func (s *GraphStore) SelectNode(nodeID string) error {
	id, err := valueobjects.NewNodeIDFromString(nodeID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if !s.workflow.HasNode(id) {
		s.mu.Unlock()
		return pkgerrors.NewNotFoundError("node")
	}
	if s.selectedNode == nodeID {
		s.mu.Unlock()
		return nil
	}
	s.selectedNode = nodeID
	gen := s.generation
	subs := append([]Subscriber(nil), s.subscribers...)
	s.mu.Unlock()

	s.notify(subs, Change{Kind: ChangeSelection, NodeID: nodeID, Generation: gen})
	return nil
}

// ClearSelection drops the current selection
func (s *GraphStore) ClearSelection() {
	s.mu.Lock()
	if s.selectedNode == "" {
		s.mu.Unlock()
		return
	}
	s.selectedNode = ""
	gen := s.generation
	subs := append([]Subscriber(nil), s.subscribers...)
	s.mu.Unlock()

	s.notify(subs, Change{Kind: ChangeSelection, Generation: gen})
}

// snapshotLocked deep-copies the current workflow. Caller holds at least a
// read lock.
func (s *GraphStore) snapshotLocked() *aggregates.Workflow {
	nodes := s.workflow.Nodes()
	copied := make([]*entities.Node, 0, len(nodes))
	for _, n := range nodes {
		copied = append(copied, n.Clone())
	}
	snapshot, err := aggregates.ReconstructWorkflow(
		s.workflow.ID(),
		s.workflow.Name(),
		copied,
		s.workflow.Edges(),
		s.workflow.LastModified(),
	)
	if err != nil {
		// Reconstruction of an already-valid graph cannot fail
		return aggregates.NewWorkflowWithConfig(s.cfg.DefaultWorkflowName, s.cfg)
	}
	return snapshot
}

// drainLocked collects pending domain events and the subscriber list. Caller
// holds the write lock.
func (s *GraphStore) drainLocked() ([]Subscriber, []events.DomainEvent) {
	evts := s.workflow.GetUncommittedEvents()
	s.workflow.MarkEventsAsCommitted()
	subs := append([]Subscriber(nil), s.subscribers...)
	return subs, evts
}

func (s *GraphStore) notify(subs []Subscriber, change Change) {
	for _, fn := range subs {
		fn(change)
	}
}

func (s *GraphStore) publish(ctx context.Context, evts []events.DomainEvent) {
	if s.publisher == nil || len(evts) == 0 {
		return
	}
	if err := s.publisher.PublishBatch(ctx, evts); err != nil && s.logger != nil {
		s.logger.Warn("Failed to publish domain events",
			zap.Int("count", len(evts)),
			zap.Error(err),
		)
	}
}

func mustNodeID(id string) valueobjects.NodeID {
	nodeID, err := valueobjects.NewNodeIDFromString(id)
	if err != nil {
		return valueobjects.NodeID{}
	}
	return nodeID
}
