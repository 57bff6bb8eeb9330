package aggregates

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"flowbuilder/domain/config"
	"flowbuilder/domain/core/entities"
	"flowbuilder/domain/core/valueobjects"
	"flowbuilder/domain/events"
	pkgerrors "flowbuilder/pkg/errors"
)

// WorkflowID represents a unique workflow identifier
type WorkflowID string

// NewWorkflowID creates a new random WorkflowID
func NewWorkflowID() WorkflowID {
	return WorkflowID(uuid.New().String())
}

// String returns the string representation
func (id WorkflowID) String() string {
	return string(id)
}

// Condition node output handles. Only condition nodes expose sub-ports;
// every other kind connects from its single default handle.
const (
	HandleIf   = "if"
	HandleElse = "else"
)

// Edge is a directed connection between two workflow steps. Visual styling
// (stroke, animation) is derived at the transport layer, never stored here.
type Edge struct {
	ID           string
	SourceID     valueobjects.NodeID
	TargetID     valueobjects.NodeID
	SourceHandle string
	CreatedAt    time.Time
}

// Workflow is the aggregate root holding the authoritative node/edge graph.
// It enforces the referential invariant: every edge's source and target
// resolve to a node present in the same workflow.
type Workflow struct {
	id           WorkflowID
	name         string
	nodes        []*entities.Node
	nodeIndex    map[string]*entities.Node
	edges        []Edge
	lastModified time.Time
	version      int
	cfg          *config.DomainConfig
	events       []events.DomainEvent
}

// NewWorkflow creates an empty workflow aggregate
func NewWorkflow(name string) *Workflow {
	return NewWorkflowWithConfig(name, config.DefaultDomainConfig())
}

// NewWorkflowWithConfig creates an empty workflow with explicit domain rules
func NewWorkflowWithConfig(name string, cfg *config.DomainConfig) *Workflow {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if name == "" {
		name = cfg.DefaultWorkflowName
	}
	return &Workflow{
		id:           NewWorkflowID(),
		name:         name,
		nodes:        []*entities.Node{},
		nodeIndex:    map[string]*entities.Node{},
		edges:        []Edge{},
		lastModified: time.Now(),
		version:      1,
		cfg:          cfg,
		events:       []events.DomainEvent{},
	}
}

// ReconstructWorkflow rebuilds an aggregate from persisted state
func ReconstructWorkflow(id WorkflowID, name string, nodes []*entities.Node, edges []Edge, lastModified time.Time) (*Workflow, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("workflow id required")
	}
	w := NewWorkflow(name)
	w.id = id
	w.lastModified = lastModified
	w.events = []events.DomainEvent{}
	if err := w.adopt(nodes, edges); err != nil {
		return nil, err
	}
	return w, nil
}

// ID returns the workflow's unique identifier
func (w *Workflow) ID() WorkflowID { return w.id }

// Name returns the workflow's display name
func (w *Workflow) Name() string { return w.name }

// LastModified returns the timestamp of the last mutation
func (w *Workflow) LastModified() time.Time { return w.lastModified }

// NodeCount returns the number of nodes
func (w *Workflow) NodeCount() int { return len(w.nodes) }

// EdgeCount returns the number of edges
func (w *Workflow) EdgeCount() int { return len(w.edges) }

// Nodes returns the nodes in insertion order. Copies preserve encapsulation.
func (w *Workflow) Nodes() []*entities.Node {
	out := make([]*entities.Node, len(w.nodes))
	for i, n := range w.nodes {
		out[i] = n.Clone()
	}
	return out
}

// Edges returns a copy of the edge list in insertion order
func (w *Workflow) Edges() []Edge {
	out := make([]Edge, len(w.edges))
	copy(out, w.edges)
	return out
}

// Node retrieves a node by id
func (w *Workflow) Node(id valueobjects.NodeID) (*entities.Node, error) {
	n, ok := w.nodeIndex[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("node")
	}
	return n, nil
}

// HasNode checks node presence without an error
func (w *Workflow) HasNode(id valueobjects.NodeID) bool {
	_, ok := w.nodeIndex[id.String()]
	return ok
}

// Rename changes the workflow's display name
func (w *Workflow) Rename(name string) error {
	if name == "" {
		return pkgerrors.NewValidationError("workflow name cannot be empty")
	}
	if name == w.name {
		return nil
	}
	old := w.name
	w.name = name
	w.touch()
	w.addEvent(events.NewWorkflowRenamed(w.id.String(), old, name, w.lastModified))
	return nil
}

// ReplaceAll atomically swaps name, nodes and edges. Returns false without
// raising an event when the incoming graph is deep-equal to the current one,
// so echoed canvas flushes never produce a second update cycle.
func (w *Workflow) ReplaceAll(name string, nodes []*entities.Node, edges []Edge, source string) (bool, error) {
	if name == "" {
		name = w.name
	}
	if len(nodes) > w.cfg.MaxNodesPerWorkflow {
		return false, pkgerrors.NewValidationError("maximum nodes exceeded")
	}
	if len(edges) > w.cfg.MaxEdgesPerWorkflow {
		return false, pkgerrors.NewValidationError("maximum edges exceeded")
	}

	if name == w.name && w.sameGraph(nodes, edges) {
		return false, nil
	}

	if err := w.adopt(nodes, edges); err != nil {
		return false, err
	}
	w.name = name
	w.touch()
	w.addEvent(events.NewWorkflowReplaced(w.id.String(), w.name, source, len(w.nodes), len(w.edges), w.lastModified))
	return true, nil
}

// AddNode inserts a new node (palette drop)
func (w *Workflow) AddNode(node *entities.Node) error {
	if node == nil {
		return pkgerrors.NewValidationError("node cannot be nil")
	}
	if _, exists := w.nodeIndex[node.ID().String()]; exists {
		return pkgerrors.NewConflictError("node already exists in workflow")
	}
	if len(w.nodes) >= w.cfg.MaxNodesPerWorkflow {
		return pkgerrors.NewValidationError("maximum nodes reached")
	}

	w.nodes = append(w.nodes, node)
	w.nodeIndex[node.ID().String()] = node
	w.touch()
	w.addEvent(events.NewNodeAdded(w.id.String(), node.ID(), node.Kind(), node.Label(), w.lastModified))
	return nil
}

// MergeNodeConfig merges a partial patch into one node's config bag, leaving
// every other node untouched.
func (w *Workflow) MergeNodeConfig(id valueobjects.NodeID, patch map[string]interface{}) error {
	node, err := w.Node(id)
	if err != nil {
		return err
	}
	if err := node.MergeConfig(patch, w.cfg); err != nil {
		return err
	}

	fields := make([]string, 0, len(patch))
	for k := range patch {
		fields = append(fields, k)
	}
	w.touch()
	w.addEvent(events.NewNodeConfigUpdated(w.id.String(), id, fields, w.lastModified))
	return nil
}

// MoveNode updates a node's canvas position
func (w *Workflow) MoveNode(id valueobjects.NodeID, pos valueobjects.Position) error {
	node, err := w.Node(id)
	if err != nil {
		return err
	}
	if node.Position().Equals(pos) {
		return nil
	}
	node.MoveTo(pos)
	w.touch()
	return nil
}

// RemoveNode removes the node and cascades to every edge referencing it as
// source or target, keeping the referential invariant intact. Returns the
// removed edge ids.
func (w *Workflow) RemoveNode(id valueobjects.NodeID) ([]string, error) {
	if _, ok := w.nodeIndex[id.String()]; !ok {
		return nil, pkgerrors.NewNotFoundError("node")
	}

	removedEdges := []string{}
	kept := w.edges[:0]
	for _, e := range w.edges {
		if e.SourceID.Equals(id) || e.TargetID.Equals(id) {
			removedEdges = append(removedEdges, e.ID)
			continue
		}
		kept = append(kept, e)
	}
	w.edges = kept

	for i, n := range w.nodes {
		if n.ID().Equals(id) {
			w.nodes = append(w.nodes[:i], w.nodes[i+1:]...)
			break
		}
	}
	delete(w.nodeIndex, id.String())

	w.touch()
	w.addEvent(events.NewNodeRemoved(w.id.String(), id, removedEdges, w.lastModified))
	return removedEdges, nil
}

// Connect draws an edge between two existing nodes. For condition sources the
// handle names the branch; with SingleEdgePerHandle set, a second connection
// from the same handle replaces the previous one instead of accumulating.
func (w *Workflow) Connect(sourceID, targetID valueobjects.NodeID, sourceHandle string) (*Edge, error) {
	source, err := w.Node(sourceID)
	if err != nil {
		return nil, pkgerrors.NewValidationError("edge source does not exist")
	}
	if !w.HasNode(targetID) {
		return nil, pkgerrors.NewValidationError("edge target does not exist")
	}
	if !w.cfg.AllowSelfConnections && sourceID.Equals(targetID) {
		return nil, pkgerrors.NewValidationError("cannot connect node to itself")
	}
	if len(w.edges) >= w.cfg.MaxEdgesPerWorkflow {
		return nil, pkgerrors.NewValidationError("maximum edges reached")
	}

	if sourceHandle != "" && source.Kind() != valueobjects.KindCondition {
		sourceHandle = ""
	}
	if w.cfg.SingleEdgePerHandle && source.Kind() == valueobjects.KindCondition && sourceHandle != "" {
		kept := w.edges[:0]
		for _, e := range w.edges {
			if e.SourceID.Equals(sourceID) && e.SourceHandle == sourceHandle {
				continue
			}
			kept = append(kept, e)
		}
		w.edges = kept
	}

	edge := Edge{
		ID:           w.uniqueEdgeID(sourceID, targetID),
		SourceID:     sourceID,
		TargetID:     targetID,
		SourceHandle: sourceHandle,
		CreatedAt:    time.Now(),
	}
	w.edges = append(w.edges, edge)
	w.touch()
	w.addEvent(events.NewNodesConnected(w.id.String(), edge.ID, sourceID, targetID, sourceHandle, w.lastModified))
	return &edge, nil
}

// RemoveEdge deletes a single edge by id
func (w *Workflow) RemoveEdge(edgeID string) error {
	for i, e := range w.edges {
		if e.ID == edgeID {
			w.edges = append(w.edges[:i], w.edges[i+1:]...)
			w.touch()
			w.addEvent(events.NewEdgeRemoved(w.id.String(), edgeID, w.lastModified))
			return nil
		}
	}
	return pkgerrors.NewNotFoundError("edge")
}

// ReplaceEdges swaps the whole edge list. Canvas-side multi-select deletion
// computes the surviving list itself; adopting that exact list avoids racing
// a recomputation against an in-flight update.
func (w *Workflow) ReplaceEdges(edges []Edge) error {
	for _, e := range edges {
		if !w.HasNode(e.SourceID) || !w.HasNode(e.TargetID) {
			return pkgerrors.NewValidationError(fmt.Sprintf("edge %s references a missing node", e.ID))
		}
	}
	w.edges = make([]Edge, len(edges))
	copy(w.edges, edges)
	w.touch()
	return nil
}

// Validate ensures graph invariants: unique node ids and no dangling edges
func (w *Workflow) Validate() error {
	seen := make(map[string]struct{}, len(w.nodes))
	for _, n := range w.nodes {
		id := n.ID().String()
		if _, dup := seen[id]; dup {
			return pkgerrors.NewConflictError("duplicate node id: " + id)
		}
		seen[id] = struct{}{}
	}
	for _, e := range w.edges {
		if _, ok := seen[e.SourceID.String()]; !ok {
			return pkgerrors.NewValidationError("edge references non-existent source node")
		}
		if _, ok := seen[e.TargetID.String()]; !ok {
			return pkgerrors.NewValidationError("edge references non-existent target node")
		}
	}
	return nil
}

// DanglingEdges returns edges whose endpoints are missing. Advisory only:
// callers decide whether to drop or report them.
func (w *Workflow) DanglingEdges() []Edge {
	var out []Edge
	for _, e := range w.edges {
		if !w.HasNode(e.SourceID) || !w.HasNode(e.TargetID) {
			out = append(out, e)
		}
	}
	return out
}

// GetUncommittedEvents returns all uncommitted domain events
func (w *Workflow) GetUncommittedEvents() []events.DomainEvent {
	out := make([]events.DomainEvent, len(w.events))
	copy(out, w.events)
	return out
}

// MarkEventsAsCommitted clears the uncommitted events
func (w *Workflow) MarkEventsAsCommitted() {
	w.events = []events.DomainEvent{}
}

// Private helpers

func (w *Workflow) addEvent(event events.DomainEvent) {
	w.events = append(w.events, event)
}

func (w *Workflow) touch() {
	w.lastModified = time.Now()
	w.version++
}

// adopt installs the given node/edge lists, deduplicating node ids
// (last-write-wins: a later duplicate evicts the earlier node in place) and
// dropping dangling edges when the domain config says so.
func (w *Workflow) adopt(nodes []*entities.Node, edges []Edge) error {
	index := make(map[string]*entities.Node, len(nodes))
	ordered := make([]*entities.Node, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		id := n.ID().String()
		if prev, dup := index[id]; dup {
			for i, existing := range ordered {
				if existing == prev {
					ordered[i] = n
					break
				}
			}
			index[id] = n
			continue
		}
		index[id] = n
		ordered = append(ordered, n)
	}

	adoptedEdges := make([]Edge, 0, len(edges))
	for _, e := range edges {
		_, srcOK := index[e.SourceID.String()]
		_, tgtOK := index[e.TargetID.String()]
		if !srcOK || !tgtOK {
			if w.cfg.DropDanglingEdges {
				continue
			}
			return pkgerrors.NewValidationError(fmt.Sprintf("edge %s references a missing node", e.ID))
		}
		adoptedEdges = append(adoptedEdges, e)
	}

	w.nodes = ordered
	w.nodeIndex = index
	w.edges = adoptedEdges
	return nil
}

// sameGraph reports deep equality with the current node/edge state
func (w *Workflow) sameGraph(nodes []*entities.Node, edges []Edge) bool {
	if len(nodes) != len(w.nodes) || len(edges) != len(w.edges) {
		return false
	}
	for i, n := range nodes {
		if n == nil || !w.nodes[i].Equals(n) {
			return false
		}
	}
	for i, e := range edges {
		cur := w.edges[i]
		if e.ID != cur.ID || !e.SourceID.Equals(cur.SourceID) ||
			!e.TargetID.Equals(cur.TargetID) || e.SourceHandle != cur.SourceHandle {
			return false
		}
	}
	return true
}

// uniqueEdgeID builds a readable edge id, suffixing a timestamp when the plain
// form already exists (repeat connections between the same pair).
func (w *Workflow) uniqueEdgeID(sourceID, targetID valueobjects.NodeID) string {
	id := fmt.Sprintf("e-%s-%s", sourceID.String(), targetID.String())
	for _, e := range w.edges {
		if e.ID == id {
			return fmt.Sprintf("%s-%d", id, time.Now().UnixNano())
		}
	}
	return id
}
