package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flowbuilder/application/commands"
	"flowbuilder/application/commands/bus"
	"flowbuilder/application/mapper"
	"flowbuilder/application/services"
	"flowbuilder/domain/config"
	"flowbuilder/domain/core/entities"
	"flowbuilder/domain/core/valueobjects"
)

type fixedPlanner struct {
	payload *mapper.RawWorkflow
}

func (p *fixedPlanner) Plan(ctx context.Context, prompt, sessionToken string) (*mapper.RawWorkflow, error) {
	return p.payload, nil
}

func newHandlerFixture(t *testing.T) (*GraphCommandHandler, *services.GraphStore) {
	t.Helper()
	store := services.NewGraphStore(config.DefaultDomainConfig(), nil, zap.NewNop())
	sync := services.NewCanvasSync(store, nil, 10*time.Millisecond, zap.NewNop())
	workflow := services.NewWorkflowService(
		store, sync, mapper.NewMapper(),
		&fixedPlanner{payload: &mapper.RawWorkflow{Name: "DSO Flow", ReportType: "DSO"}},
		nil, nil, zap.NewNop(),
	)
	return NewGraphCommandHandler(store, sync, workflow, zap.NewNop()), store
}

func seedNode(t *testing.T, store *services.GraphStore, id string, kind valueobjects.NodeKind) {
	t.Helper()
	nodeID, err := valueobjects.NewNodeIDFromString(id)
	require.NoError(t, err)
	node, err := entities.ReconstructNode(nodeID, kind, id, "", valueobjects.NewPosition(0, 0), map[string]interface{}{"name": id})
	require.NoError(t, err)
	require.NoError(t, store.AddNode(context.Background(), node))
}

func TestGraphCommandHandler_Register_AllCommands(t *testing.T) {
	// Arrange
	handler, _ := newHandlerFixture(t)
	b := bus.NewCommandBus()

	// Act
	err := handler.Register(b)

	// Assert: every command type dispatches without a missing-handler error
	require.NoError(t, err)
	assert.NoError(t, b.Send(context.Background(), commands.ClearSelectionCommand{}))
}

func TestGraphCommandHandler_Handle_SubmitPrompt(t *testing.T) {
	// Arrange
	handler, store := newHandlerFixture(t)

	// Act
	err := handler.Handle(context.Background(), commands.SubmitPromptCommand{Prompt: "build a dso report"})

	// Assert: the fixed planner's DSO template landed
	require.NoError(t, err)
	assert.Equal(t, "DSO Flow", store.Workflow().Name())
	assert.Equal(t, 4, store.Workflow().NodeCount())
}

func TestGraphCommandHandler_Handle_DropNode(t *testing.T) {
	// Arrange
	handler, store := newHandlerFixture(t)

	// Act
	err := handler.Handle(context.Background(), commands.DropNodeCommand{Kind: "email", X: 120, Y: 340})

	// Assert
	require.NoError(t, err)
	wf := store.Workflow()
	require.Equal(t, 1, wf.NodeCount())
	node := wf.Nodes()[0]
	assert.Equal(t, valueobjects.KindEmail, node.Kind())
	assert.Equal(t, valueobjects.NewPosition(120, 340), node.Position())
}

func TestGraphCommandHandler_Handle_UpdateNodeConfig_ValidPatch(t *testing.T) {
	// Arrange
	handler, store := newHandlerFixture(t)
	seedNode(t, store, "n1", valueobjects.KindDelay)

	// Act
	err := handler.Handle(context.Background(), commands.UpdateNodeConfigCommand{
		NodeID: "n1",
		Patch:  map[string]interface{}{"delayAmount": 5, "delayUnit": "hours"},
	})

	// Assert
	require.NoError(t, err)
	node := store.Workflow().Nodes()[0]
	assert.Equal(t, 5, node.Config()["delayAmount"])
	assert.Equal(t, "hours", node.Config()["delayUnit"])
}

func TestGraphCommandHandler_Handle_UpdateNodeConfig_RejectedBySchema(t *testing.T) {
	// Arrange
	handler, store := newHandlerFixture(t)
	seedNode(t, store, "n1", valueobjects.KindDelay)

	// Act: a field the delay schema does not know
	err := handler.Handle(context.Background(), commands.UpdateNodeConfigCommand{
		NodeID: "n1",
		Patch:  map[string]interface{}{"emailSubject": "wrong form"},
	})

	// Assert: rejected, config untouched
	require.Error(t, err)
	_, present := store.Workflow().Nodes()[0].Config()["emailSubject"]
	assert.False(t, present)
}

func TestGraphCommandHandler_Handle_MoveAndDeleteNode(t *testing.T) {
	// Arrange
	handler, store := newHandlerFixture(t)
	seedNode(t, store, "n1", valueobjects.KindCode)

	// Act & Assert: move
	require.NoError(t, handler.Handle(context.Background(), commands.MoveNodeCommand{NodeID: "n1", X: 50, Y: 60}))
	assert.Equal(t, valueobjects.NewPosition(50, 60), store.Workflow().Nodes()[0].Position())

	// Act & Assert: delete
	require.NoError(t, handler.Handle(context.Background(), commands.DeleteNodeCommand{NodeID: "n1"}))
	assert.Equal(t, 0, store.Workflow().NodeCount())
}

func TestGraphCommandHandler_Handle_ConnectAndDeleteEdge(t *testing.T) {
	// Arrange
	handler, store := newHandlerFixture(t)
	seedNode(t, store, "a", valueobjects.KindTrigger)
	seedNode(t, store, "b", valueobjects.KindCode)

	// Act
	err := handler.Handle(context.Background(), commands.ConnectNodesCommand{SourceID: "a", TargetID: "b"})

	// Assert
	require.NoError(t, err)
	require.Equal(t, 1, store.Workflow().EdgeCount())
	edgeID := store.Workflow().Edges()[0].ID

	// Act: delete through the explicit edge control
	err = handler.Handle(context.Background(), commands.DeleteEdgeCommand{EdgeID: edgeID})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 0, store.Workflow().EdgeCount())
}

func TestGraphCommandHandler_Handle_SelectionLifecycle(t *testing.T) {
	// Arrange
	handler, store := newHandlerFixture(t)
	seedNode(t, store, "n1", valueobjects.KindCode)

	// Act & Assert
	require.NoError(t, handler.Handle(context.Background(), commands.SelectNodeCommand{NodeID: "n1"}))
	assert.Equal(t, "n1", store.SelectedNode())

	require.NoError(t, handler.Handle(context.Background(), commands.ClearSelectionCommand{}))
	assert.Empty(t, store.SelectedNode())
}

func TestGraphCommandHandler_Handle_ClearSession(t *testing.T) {
	// Arrange
	handler, store := newHandlerFixture(t)
	seedNode(t, store, "n1", valueobjects.KindCode)
	oldToken := store.SessionToken()

	// Act
	err := handler.Handle(context.Background(), commands.ClearSessionCommand{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 0, store.Workflow().NodeCount())
	assert.NotEqual(t, oldToken, store.SessionToken())
}

func TestGraphCommandHandler_Handle_Rename(t *testing.T) {
	// Arrange
	handler, store := newHandlerFixture(t)

	// Act
	err := handler.Handle(context.Background(), commands.RenameWorkflowCommand{Name: "Quarter Close"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Quarter Close", store.Workflow().Name())
}
