package services

import (
	"context"
	"sync"
	"time"

	"flowbuilder/application/ports"
	"flowbuilder/domain/core/aggregates"
	"flowbuilder/domain/core/entities"

	"go.uber.org/zap"
)

// SyncState is the canvas synchronization state
type SyncState int

const (
	// StateIdle means no synchronization is in flight
	StateIdle SyncState = iota

	// StateApplyingExternalUpdate means an authoritative graph is being
	// pushed to the canvas; change reports arriving now are echoes
	StateApplyingExternalUpdate

	// StatePropagatingLocalEdit means a canvas edit is being written to the
	// store; outbound notifications are suppressed so the edit does not
	// bounce back to its origin
	StatePropagatingLocalEdit
)

func (s SyncState) String() string {
	switch s {
	case StateApplyingExternalUpdate:
		return "applying_external_update"
	case StatePropagatingLocalEdit:
		return "propagating_local_edit"
	default:
		return "idle"
	}
}

// Graph replacement sources, recorded on the domain event
const (
	SourcePlanner = "planner"
	SourceCanvas  = "canvas"
	SourceHistory = "history"
)

// CanvasSync mediates between the authoritative store and connected canvases.
// It breaks the update loop with an explicit state machine: external updates
// put it in StateApplyingExternalUpdate until the canvas settles, and canvas
// change reports observed in that window are discarded as echoes. Canvas
// reports are debounced so drag storms collapse into one store write.
type CanvasSync struct {
	store    *GraphStore
	notifier ports.CanvasNotifier
	logger   *zap.Logger

	settleDelay time.Duration

	mu          sync.Mutex
	state       SyncState
	settleTimer *time.Timer

	pendingMu      sync.Mutex
	pendingName    string
	pendingNodes   []*entities.Node
	pendingEdges   []aggregates.Edge
	pendingPresent bool
	debounceTimer  *time.Timer
}

// NewCanvasSync wires a sync mediator to the store. Store changes that did
// not originate on a canvas are forwarded to connected clients.
func NewCanvasSync(store *GraphStore, notifier ports.CanvasNotifier, settleDelay time.Duration, logger *zap.Logger) *CanvasSync {
	if settleDelay <= 0 {
		settleDelay = 100 * time.Millisecond
	}
	cs := &CanvasSync{
		store:       store,
		notifier:    notifier,
		logger:      logger,
		settleDelay: settleDelay,
		state:       StateIdle,
	}
	store.Subscribe(cs.onStoreChange)
	return cs
}

// State returns the current synchronization state
func (cs *CanvasSync) State() SyncState {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.state
}

// ApplyExternalGraph pushes an authoritative graph (planner response or
// history restore) into the store and holds the echo guard until the canvas
// has had time to settle.
func (cs *CanvasSync) ApplyExternalGraph(ctx context.Context, name string, nodes []*entities.Node, edges []aggregates.Edge, source string) (bool, error) {
	cs.enterApplying()

	changed, err := cs.store.ReplaceAll(ctx, name, nodes, edges, source)
	if err != nil {
		cs.enterIdle()
		return false, err
	}
	if !changed {
		cs.enterIdle()
		return false, nil
	}

	cs.scheduleSettle()
	return true, nil
}

// ApplyExternalGraphIfCurrent is ApplyExternalGraph guarded by the store
// generation captured before the async planner call started
func (cs *CanvasSync) ApplyExternalGraphIfCurrent(ctx context.Context, generation int, name string, nodes []*entities.Node, edges []aggregates.Edge, source string) (bool, error) {
	cs.enterApplying()

	changed, err := cs.store.ReplaceAllIfCurrent(ctx, generation, name, nodes, edges, source)
	if err != nil || !changed {
		cs.enterIdle()
		return changed, err
	}

	cs.scheduleSettle()
	return true, nil
}

// ReportCanvasGraph records a full-graph change report from the canvas.
// Reports observed while an external update is settling are echoes and get
// dropped; the rest are debounced and flushed to the store after the settle
// delay with no further activity.
func (cs *CanvasSync) ReportCanvasGraph(name string, nodes []*entities.Node, edges []aggregates.Edge) {
	cs.mu.Lock()
	if cs.state == StateApplyingExternalUpdate {
		cs.mu.Unlock()
		if cs.logger != nil {
			cs.logger.Debug("Dropping echoed canvas report during external update")
		}
		return
	}
	cs.mu.Unlock()

	cs.pendingMu.Lock()
	cs.pendingName = name
	cs.pendingNodes = nodes
	cs.pendingEdges = edges
	cs.pendingPresent = true
	if cs.debounceTimer != nil {
		cs.debounceTimer.Stop()
	}
	cs.debounceTimer = time.AfterFunc(cs.settleDelay, cs.flushPending)
	cs.pendingMu.Unlock()
}

// Flush forces any debounced canvas report into the store immediately
func (cs *CanvasSync) Flush() {
	cs.pendingMu.Lock()
	if cs.debounceTimer != nil {
		cs.debounceTimer.Stop()
		cs.debounceTimer = nil
	}
	cs.pendingMu.Unlock()
	cs.flushPending()
}

// DeleteEdge removes one edge through the explicit delete control on its
// label. The surviving edge list is pushed to connected canvases.
func (cs *CanvasSync) DeleteEdge(ctx context.Context, edgeID string) error {
	cs.enterPropagating()
	defer cs.enterIdle()

	if err := cs.store.RemoveEdge(ctx, edgeID); err != nil {
		return err
	}
	return cs.notifyEdges(ctx)
}

// ReportEdgesAfterDelete handles the canvas keyboard multi-delete path: the
// canvas computes the exact surviving edge list and the store adopts it
// verbatim, then every connected client gets that same list.
func (cs *CanvasSync) ReportEdgesAfterDelete(ctx context.Context, edges []aggregates.Edge) error {
	cs.mu.Lock()
	if cs.state == StateApplyingExternalUpdate {
		cs.mu.Unlock()
		return nil
	}
	cs.mu.Unlock()

	cs.enterPropagating()
	defer cs.enterIdle()

	if err := cs.store.ReplaceEdges(ctx, edges); err != nil {
		return err
	}
	return cs.notifyEdges(ctx)
}

// flushPending writes the debounced canvas report to the store
func (cs *CanvasSync) flushPending() {
	cs.pendingMu.Lock()
	if !cs.pendingPresent {
		cs.pendingMu.Unlock()
		return
	}
	name := cs.pendingName
	nodes := cs.pendingNodes
	edges := cs.pendingEdges
	cs.pendingPresent = false
	cs.pendingMu.Unlock()

	cs.mu.Lock()
	if cs.state == StateApplyingExternalUpdate {
		cs.mu.Unlock()
		return
	}
	cs.state = StatePropagatingLocalEdit
	cs.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := cs.store.ReplaceAll(ctx, name, nodes, edges, SourceCanvas); err != nil && cs.logger != nil {
		cs.logger.Warn("Failed to apply canvas report", zap.Error(err))
	}

	cs.enterIdle()
}

// onStoreChange forwards non-canvas mutations to connected clients. While a
// local edit is propagating the notification is suppressed, because the
// canvas that made the edit already renders the result.
func (cs *CanvasSync) onStoreChange(change Change) {
	cs.mu.Lock()
	suppressed := cs.state == StatePropagatingLocalEdit
	cs.mu.Unlock()

	if suppressed || cs.notifier == nil {
		return
	}
	if change.Kind == ChangeReplaced && change.Source == SourceCanvas {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	workflowID := cs.store.Workflow().ID().String()

	var err error
	switch change.Kind {
	case ChangeEdgeRemoved, ChangeEdgesReplaced:
		err = cs.notifier.NotifyEdgesReplaced(ctx, workflowID, cs.currentEdgeIDs())
	default:
		err = cs.notifier.NotifyGraphReplaced(ctx, workflowID)
	}
	if err != nil && cs.logger != nil {
		cs.logger.Warn("Failed to notify canvases",
			zap.String("change", string(change.Kind)),
			zap.Error(err),
		)
	}
}

func (cs *CanvasSync) notifyEdges(ctx context.Context) error {
	if cs.notifier == nil {
		return nil
	}
	workflowID := cs.store.Workflow().ID().String()
	return cs.notifier.NotifyEdgesReplaced(ctx, workflowID, cs.currentEdgeIDs())
}

func (cs *CanvasSync) currentEdgeIDs() []string {
	edges := cs.store.Workflow().Edges()
	ids := make([]string, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.ID)
	}
	return ids
}

func (cs *CanvasSync) enterApplying() {
	cs.mu.Lock()
	cs.state = StateApplyingExternalUpdate
	if cs.settleTimer != nil {
		cs.settleTimer.Stop()
		cs.settleTimer = nil
	}
	cs.mu.Unlock()
}

func (cs *CanvasSync) enterPropagating() {
	cs.mu.Lock()
	cs.state = StatePropagatingLocalEdit
	cs.mu.Unlock()
}

func (cs *CanvasSync) enterIdle() {
	cs.mu.Lock()
	cs.state = StateIdle
	if cs.settleTimer != nil {
		cs.settleTimer.Stop()
		cs.settleTimer = nil
	}
	cs.mu.Unlock()
}

// scheduleSettle returns the machine to idle once the canvas has had the
// settle delay to re-render without generating fresh reports
func (cs *CanvasSync) scheduleSettle() {
	cs.mu.Lock()
	if cs.settleTimer != nil {
		cs.settleTimer.Stop()
	}
	cs.settleTimer = time.AfterFunc(cs.settleDelay, func() {
		cs.mu.Lock()
		if cs.state == StateApplyingExternalUpdate {
			cs.state = StateIdle
		}
		cs.settleTimer = nil
		cs.mu.Unlock()
	})
	cs.mu.Unlock()
}
