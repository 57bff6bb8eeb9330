package aggregates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowbuilder/domain/config"
	"flowbuilder/domain/core/entities"
	"flowbuilder/domain/core/valueobjects"
)

func mustID(t *testing.T, id string) valueobjects.NodeID {
	t.Helper()
	nodeID, err := valueobjects.NewNodeIDFromString(id)
	require.NoError(t, err)
	return nodeID
}

func buildNode(t *testing.T, id string, kind valueobjects.NodeKind) *entities.Node {
	t.Helper()
	node, err := entities.ReconstructNode(mustID(t, id), kind, id, "", valueobjects.NewPosition(0, 0), map[string]interface{}{"name": id})
	require.NoError(t, err)
	return node
}

func buildWorkflow(t *testing.T, ids ...string) *Workflow {
	t.Helper()
	w := NewWorkflow("Test Flow")
	for _, id := range ids {
		require.NoError(t, w.AddNode(buildNode(t, id, valueobjects.KindCode)))
	}
	return w
}

func TestWorkflow_Connect_Success(t *testing.T) {
	// Arrange
	w := buildWorkflow(t, "a", "b")

	// Act
	edge, err := w.Connect(mustID(t, "a"), mustID(t, "b"), "")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "e-a-b", edge.ID)
	assert.Equal(t, "a", edge.SourceID.String())
	assert.Equal(t, "b", edge.TargetID.String())
	assert.Equal(t, 1, w.EdgeCount())
}

func TestWorkflow_Connect_MissingEndpoints(t *testing.T) {
	// Arrange
	w := buildWorkflow(t, "a")

	// Act & Assert
	_, err := w.Connect(mustID(t, "ghost"), mustID(t, "a"), "")
	assert.Error(t, err)

	_, err = w.Connect(mustID(t, "a"), mustID(t, "ghost"), "")
	assert.Error(t, err)
	assert.Equal(t, 0, w.EdgeCount())
}

func TestWorkflow_Connect_SelfConnectionRejected(t *testing.T) {
	// Arrange
	w := buildWorkflow(t, "a")

	// Act
	_, err := w.Connect(mustID(t, "a"), mustID(t, "a"), "")

	// Assert
	assert.Error(t, err)
}

func TestWorkflow_Connect_HandleReplacesPreviousEdge(t *testing.T) {
	// Arrange: a condition with both branches wired
	w := NewWorkflow("Branching")
	require.NoError(t, w.AddNode(buildNode(t, "cond", valueobjects.KindCondition)))
	require.NoError(t, w.AddNode(buildNode(t, "x", valueobjects.KindCode)))
	require.NoError(t, w.AddNode(buildNode(t, "y", valueobjects.KindCode)))

	_, err := w.Connect(mustID(t, "cond"), mustID(t, "x"), HandleIf)
	require.NoError(t, err)
	_, err = w.Connect(mustID(t, "cond"), mustID(t, "y"), HandleElse)
	require.NoError(t, err)

	// Act: rewire the if branch
	edge, err := w.Connect(mustID(t, "cond"), mustID(t, "y"), HandleIf)

	// Assert: the else branch survives, the old if edge is replaced
	require.NoError(t, err)
	assert.Equal(t, "y", edge.TargetID.String())
	require.Equal(t, 2, w.EdgeCount())
	for _, e := range w.Edges() {
		if e.SourceHandle == HandleIf {
			assert.Equal(t, "y", e.TargetID.String())
		}
	}
}

func TestWorkflow_Connect_HandleClearedForNonConditionSource(t *testing.T) {
	// Arrange
	w := buildWorkflow(t, "a", "b")

	// Act: a stray handle on a plain node
	edge, err := w.Connect(mustID(t, "a"), mustID(t, "b"), HandleIf)

	// Assert
	require.NoError(t, err)
	assert.Empty(t, edge.SourceHandle)
}

func TestWorkflow_Connect_RepeatConnectionGetsUniqueID(t *testing.T) {
	// Arrange
	w := buildWorkflow(t, "a", "b")

	first, err := w.Connect(mustID(t, "a"), mustID(t, "b"), "")
	require.NoError(t, err)

	// Act
	second, err := w.Connect(mustID(t, "a"), mustID(t, "b"), "")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "e-a-b", first.ID)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestWorkflow_RemoveNode_CascadesToEdges(t *testing.T) {
	// Arrange: a -> b -> c
	w := buildWorkflow(t, "a", "b", "c")
	_, err := w.Connect(mustID(t, "a"), mustID(t, "b"), "")
	require.NoError(t, err)
	_, err = w.Connect(mustID(t, "b"), mustID(t, "c"), "")
	require.NoError(t, err)

	// Act
	removed, err := w.RemoveNode(mustID(t, "b"))

	// Assert
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"e-a-b", "e-b-c"}, removed)
	assert.Equal(t, 2, w.NodeCount())
	assert.Equal(t, 0, w.EdgeCount())
	require.NoError(t, w.Validate())
}

func TestWorkflow_RemoveNode_NotFound(t *testing.T) {
	// Arrange
	w := buildWorkflow(t, "a")

	// Act
	_, err := w.RemoveNode(mustID(t, "ghost"))

	// Assert
	assert.Error(t, err)
}

func TestWorkflow_ReplaceAll_DeepEqualShortCircuit(t *testing.T) {
	// Arrange
	w := NewWorkflow("Flow")
	nodes := []*entities.Node{buildNode(t, "a", valueobjects.KindTrigger)}
	changed, err := w.ReplaceAll("Flow", nodes, nil, "planner")
	require.NoError(t, err)
	require.True(t, changed)
	eventsBefore := len(w.GetUncommittedEvents())

	// Act: same graph again
	replay := []*entities.Node{buildNode(t, "a", valueobjects.KindTrigger)}
	changed, err = w.ReplaceAll("Flow", replay, nil, "canvas")

	// Assert: no change, no new event
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, w.GetUncommittedEvents(), eventsBefore)
}

func TestWorkflow_ReplaceAll_DescriptionChangeIsNotANoOp(t *testing.T) {
	// Arrange
	w := NewWorkflow("Flow")
	original, err := entities.ReconstructNode(mustID(t, "a"), valueobjects.KindCode, "Step", "old description", valueobjects.NewPosition(0, 0), nil)
	require.NoError(t, err)
	changed, err := w.ReplaceAll("Flow", []*entities.Node{original}, nil, "planner")
	require.NoError(t, err)
	require.True(t, changed)

	// Act: the same graph with only the description rewritten
	updated, err := entities.ReconstructNode(mustID(t, "a"), valueobjects.KindCode, "Step", "new description", valueobjects.NewPosition(0, 0), nil)
	require.NoError(t, err)
	changed, err = w.ReplaceAll("Flow", []*entities.Node{updated}, nil, "planner")

	// Assert: not short-circuited as identical
	require.NoError(t, err)
	assert.True(t, changed)
	node, err := w.Node(mustID(t, "a"))
	require.NoError(t, err)
	assert.Equal(t, "new description", node.Description())
}

func TestWorkflow_ReplaceAll_DeduplicatesNodeIDs(t *testing.T) {
	// Arrange
	w := NewWorkflow("Flow")
	first := buildNode(t, "a", valueobjects.KindTrigger)
	second, err := entities.ReconstructNode(mustID(t, "a"), valueobjects.KindCode, "replacement", "", valueobjects.NewPosition(10, 10), nil)
	require.NoError(t, err)

	// Act: a later duplicate evicts the earlier node in place
	changed, err := w.ReplaceAll("Flow", []*entities.Node{first, second}, nil, "canvas")

	// Assert
	require.NoError(t, err)
	assert.True(t, changed)
	require.Equal(t, 1, w.NodeCount())
	node, err := w.Node(mustID(t, "a"))
	require.NoError(t, err)
	assert.Equal(t, "replacement", node.Label())
}

func TestWorkflow_ReplaceAll_DropsDanglingEdges(t *testing.T) {
	// Arrange
	w := NewWorkflow("Flow")
	nodes := []*entities.Node{
		buildNode(t, "a", valueobjects.KindTrigger),
		buildNode(t, "b", valueobjects.KindCode),
	}
	edges := []Edge{
		{ID: "e-a-b", SourceID: mustID(t, "a"), TargetID: mustID(t, "b")},
		{ID: "e-a-ghost", SourceID: mustID(t, "a"), TargetID: mustID(t, "ghost")},
	}

	// Act
	changed, err := w.ReplaceAll("Flow", nodes, edges, "planner")

	// Assert: the dangling edge is silently dropped
	require.NoError(t, err)
	assert.True(t, changed)
	require.Equal(t, 1, w.EdgeCount())
	assert.Equal(t, "e-a-b", w.Edges()[0].ID)
	assert.Empty(t, w.DanglingEdges())
}

func TestWorkflow_ReplaceAll_EmptyNameKeepsCurrent(t *testing.T) {
	// Arrange
	w := NewWorkflow("Keep Me")

	// Act
	changed, err := w.ReplaceAll("", []*entities.Node{buildNode(t, "a", valueobjects.KindTrigger)}, nil, "canvas")

	// Assert
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "Keep Me", w.Name())
}

func TestWorkflow_ReplaceEdges_RejectsMissingNodes(t *testing.T) {
	// Arrange
	w := buildWorkflow(t, "a", "b")

	// Act
	err := w.ReplaceEdges([]Edge{{ID: "e-a-ghost", SourceID: mustID(t, "a"), TargetID: mustID(t, "ghost")}})

	// Assert
	assert.Error(t, err)
	assert.Equal(t, 0, w.EdgeCount())
}

func TestWorkflow_Rename(t *testing.T) {
	// Arrange
	w := NewWorkflow("Old Name")

	// Act & Assert
	require.NoError(t, w.Rename("New Name"))
	assert.Equal(t, "New Name", w.Name())
	assert.Error(t, w.Rename(""))

	// Renaming to the same name raises no event
	w.MarkEventsAsCommitted()
	require.NoError(t, w.Rename("New Name"))
	assert.Empty(t, w.GetUncommittedEvents())
}

func TestWorkflow_DefaultNameApplied(t *testing.T) {
	// Act
	w := NewWorkflow("")

	// Assert
	assert.Equal(t, "New Workflow", w.Name())
}

func TestWorkflow_MergeNodeConfig_LeavesOthersUntouched(t *testing.T) {
	// Arrange
	w := buildWorkflow(t, "a", "b")

	// Act
	err := w.MergeNodeConfig(mustID(t, "a"), map[string]interface{}{"code": "return 1"})

	// Assert
	require.NoError(t, err)
	a, err := w.Node(mustID(t, "a"))
	require.NoError(t, err)
	assert.Equal(t, "return 1", a.Config()["code"])

	b, err := w.Node(mustID(t, "b"))
	require.NoError(t, err)
	_, touched := b.Config()["code"]
	assert.False(t, touched)
}

func TestWorkflow_MergeNodeConfig_HonorsWorkflowFieldLimit(t *testing.T) {
	// Arrange: a workflow tuned to two config fields per node
	cfg := config.DefaultDomainConfig()
	cfg.MaxConfigFields = 2
	w := NewWorkflowWithConfig("Flow", cfg)
	require.NoError(t, w.AddNode(buildNode(t, "a", valueobjects.KindCode)))
	eventsBefore := len(w.GetUncommittedEvents())

	// Act: the node already carries one field, so a two-field patch overflows
	err := w.MergeNodeConfig(mustID(t, "a"), map[string]interface{}{"code": "x", "timeout": 3})

	// Assert: rejected, config untouched, no update event raised
	require.Error(t, err)
	node, nodeErr := w.Node(mustID(t, "a"))
	require.NoError(t, nodeErr)
	assert.Len(t, node.Config(), 1)
	assert.Len(t, w.GetUncommittedEvents(), eventsBefore)

	require.NoError(t, w.MergeNodeConfig(mustID(t, "a"), map[string]interface{}{"code": "x"}))
}
