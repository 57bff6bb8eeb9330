package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flowbuilder/application/mapper"
	"flowbuilder/application/ports"
	"flowbuilder/domain/config"
	"flowbuilder/domain/core/aggregates"
	"flowbuilder/domain/core/entities"
	"flowbuilder/domain/core/valueobjects"
)

// stubPlanner returns a canned payload or error, and can block until released
// to simulate a slow backend.
type stubPlanner struct {
	payload *mapper.RawWorkflow
	err     error
	release chan struct{}
}

func (p *stubPlanner) Plan(ctx context.Context, prompt, sessionToken string) (*mapper.RawWorkflow, error) {
	if p.release != nil {
		<-p.release
	}
	return p.payload, p.err
}

func newTestService(t *testing.T, planner ports.Planner) (*WorkflowService, *GraphStore) {
	t.Helper()
	store := NewGraphStore(config.DefaultDomainConfig(), nil, zap.NewNop())
	cs := NewCanvasSync(store, nil, 10*time.Millisecond, zap.NewNop())
	svc := NewWorkflowService(store, cs, mapper.NewMapper(), planner, nil, nil, zap.NewNop())
	return svc, store
}

func TestWorkflowService_HandlePrompt_AppliesPlannerGraph(t *testing.T) {
	// Arrange
	planner := &stubPlanner{payload: &mapper.RawWorkflow{
		Name:       "AP Aging",
		ReportType: "AP_AGING",
	}}
	svc, store := newTestService(t, planner)

	// Act
	result, err := svc.HandlePrompt(context.Background(), "build an ap aging report")

	// Assert
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.False(t, result.UsedParser)
	assert.Equal(t, 6, result.NodeCount)
	assert.Equal(t, 5, result.EdgeCount)
	assert.Equal(t, "AP Aging", store.Workflow().Name())
	assert.Equal(t, 6, store.Workflow().NodeCount())
}

func TestWorkflowService_HandlePrompt_EmptyPrompt(t *testing.T) {
	// Arrange
	svc, _ := newTestService(t, &stubPlanner{})

	// Act
	_, err := svc.HandlePrompt(context.Background(), "   ")

	// Assert
	assert.Error(t, err)
}

func TestWorkflowService_HandlePrompt_ConversationalReply(t *testing.T) {
	// Arrange: planner answered with prose, no graph
	svc, store := newTestService(t, &stubPlanner{payload: &mapper.RawWorkflow{}})

	// Act
	result, err := svc.HandlePrompt(context.Background(), "what can you do?")

	// Assert
	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.Zero(t, result.NodeCount)
	assert.Equal(t, 0, store.Workflow().NodeCount())
}

func TestWorkflowService_HandlePrompt_PlannerDownFallsBackToParser(t *testing.T) {
	// Arrange
	planner := &stubPlanner{err: errors.New("connection refused")}
	svc, store := newTestService(t, planner)

	// Act
	result, err := svc.HandlePrompt(context.Background(), "wait 2 days then email a reminder")

	// Assert: the keyword parser produced trigger, delay and email steps
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.True(t, result.UsedParser)
	assert.Equal(t, 3, result.NodeCount)
	assert.Equal(t, 3, store.Workflow().NodeCount())
}

func TestWorkflowService_HandlePrompt_ClearDuringPlanDiscardsResponse(t *testing.T) {
	// Arrange: the planner stalls while the user clears the session
	planner := &stubPlanner{
		payload: &mapper.RawWorkflow{Name: "Late", ReportType: "DSO"},
		release: make(chan struct{}),
	}
	svc, store := newTestService(t, planner)

	type outcome struct {
		result *ChatResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := svc.HandlePrompt(context.Background(), "build a dso report")
		done <- outcome{result, err}
	}()

	// Act: clear while the plan is in flight, then release the planner
	time.Sleep(5 * time.Millisecond)
	svc.ClearSession(context.Background())
	close(planner.release)
	out := <-done
	require.NoError(t, out.err)
	result := out.result

	// Assert: the stale response never lands
	assert.False(t, result.Applied)
	assert.True(t, result.Discarded)
	assert.Equal(t, 0, store.Workflow().NodeCount())
	assert.Equal(t, "New Workflow", store.Workflow().Name())
}

func TestWorkflowService_DropNode_AddsNodeWithDefaults(t *testing.T) {
	// Arrange
	svc, store := newTestService(t, &stubPlanner{})

	// Act
	node, err := svc.DropNode(context.Background(), "email", valueobjects.NewPosition(300, 200))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, valueobjects.KindEmail, node.Kind())
	assert.Equal(t, "Email", node.Label())
	assert.Equal(t, valueobjects.NewPosition(300, 200), node.Position())
	assert.Equal(t, 1, store.Workflow().NodeCount())
}

func TestWorkflowService_DropNode_UnknownKindFallsBack(t *testing.T) {
	// Arrange
	svc, _ := newTestService(t, &stubPlanner{})

	// Act
	node, err := svc.DropNode(context.Background(), "flux_capacitor", valueobjects.NewPosition(0, 0))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, valueobjects.DefaultKind, node.Kind())
}

func TestWorkflowService_SaveToHistory_RejectsEmptyGraph(t *testing.T) {
	// Arrange
	store := NewGraphStore(config.DefaultDomainConfig(), nil, zap.NewNop())
	cs := NewCanvasSync(store, nil, 10*time.Millisecond, zap.NewNop())
	history := &stubHistory{}
	svc := NewWorkflowService(store, cs, mapper.NewMapper(), &stubPlanner{}, history, nil, zap.NewNop())

	// Act
	_, err := svc.SaveToHistory(context.Background(), "user-1")

	// Assert
	assert.Error(t, err)
	assert.Zero(t, history.saves)
}

func TestWorkflowService_SaveAndRestoreRoundTrip(t *testing.T) {
	// Arrange
	store := NewGraphStore(config.DefaultDomainConfig(), nil, zap.NewNop())
	cs := NewCanvasSync(store, nil, 10*time.Millisecond, zap.NewNop())
	history := &stubHistory{}
	svc := NewWorkflowService(store, cs, mapper.NewMapper(), &stubPlanner{}, history, nil, zap.NewNop())

	nodes := []*entities.Node{testNode(t, "a", valueobjects.KindTrigger)}
	_, err := store.ReplaceAll(context.Background(), "Flow To Save", nodes, nil, SourceCanvas)
	require.NoError(t, err)

	id, err := svc.SaveToHistory(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, history.saves)

	svc.ClearSession(context.Background())
	require.Equal(t, 0, store.Workflow().NodeCount())

	// Act
	err = svc.RestoreFromHistory(context.Background(), "user-1", id)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Flow To Save", store.Workflow().Name())
	assert.Equal(t, 1, store.Workflow().NodeCount())
}

// stubHistory counts repository calls
type stubHistory struct {
	saves  int
	stored *aggregates.Workflow
}

func (h *stubHistory) Save(ctx context.Context, userID string, workflow *aggregates.Workflow) error {
	h.saves++
	h.stored = workflow
	return nil
}

func (h *stubHistory) GetByID(ctx context.Context, userID string, id aggregates.WorkflowID) (*aggregates.Workflow, error) {
	if h.stored == nil {
		return nil, errors.New("not found")
	}
	return h.stored, nil
}

func (h *stubHistory) ListByUserID(ctx context.Context, userID string, limit int) ([]ports.WorkflowSummary, error) {
	return nil, nil
}

func (h *stubHistory) Rename(ctx context.Context, userID string, id aggregates.WorkflowID, name string) error {
	return nil
}

func (h *stubHistory) SetPinned(ctx context.Context, userID string, id aggregates.WorkflowID, pinned bool) error {
	return nil
}

func (h *stubHistory) Delete(ctx context.Context, userID string, id aggregates.WorkflowID) error {
	return nil
}
