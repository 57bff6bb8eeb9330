package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowbuilder/domain/core/aggregates"
	"flowbuilder/domain/core/entities"
	"flowbuilder/domain/core/valueobjects"
)

func edge(t *testing.T, id, source, target, handle string) aggregates.Edge {
	t.Helper()
	src, err := valueobjects.NewNodeIDFromString(source)
	require.NoError(t, err)
	tgt, err := valueobjects.NewNodeIDFromString(target)
	require.NoError(t, err)
	return aggregates.Edge{ID: id, SourceID: src, TargetID: tgt, SourceHandle: handle}
}

func TestEdgeToCanvas_BranchStyling(t *testing.T) {
	// Act
	plain := EdgeToCanvas(edge(t, "e1", "a", "b", ""))
	ifEdge := EdgeToCanvas(edge(t, "e2", "cond", "x", aggregates.HandleIf))
	elseEdge := EdgeToCanvas(edge(t, "e3", "cond", "y", aggregates.HandleElse))

	// Assert: neutral stroke and no label for plain edges
	assert.Empty(t, plain.Label)
	assert.Equal(t, "#b1b1b7", plain.Style.Stroke)
	assert.True(t, plain.Animated)

	// Branch edges carry their label and color
	assert.Equal(t, "✓ IF", ifEdge.Label)
	assert.Equal(t, "#0916cc", ifEdge.Style.Stroke)
	assert.Equal(t, "✗ ELSE", elseEdge.Label)
	assert.Equal(t, "#ef4444", elseEdge.Style.Stroke)
}

func TestNodeToCanvas_CarriesKindAndConfig(t *testing.T) {
	// Arrange
	id, err := valueobjects.NewNodeIDFromString("n1")
	require.NoError(t, err)
	node, err := entities.ReconstructNode(
		id, valueobjects.KindEmail, "Send Email", "notifies the vendor",
		valueobjects.NewPosition(120, 80),
		map[string]interface{}{"name": "Send Email", "emailSubject": "Reminder"},
	)
	require.NoError(t, err)

	// Act
	out := NodeToCanvas(node, true)

	// Assert
	assert.Equal(t, "n1", out.ID)
	assert.Equal(t, "custom", out.Type)
	assert.Equal(t, 120.0, out.Position.X)
	assert.Equal(t, 80.0, out.Position.Y)
	assert.Equal(t, "Send Email", out.Data.Label)
	assert.Equal(t, "email", out.Data.NodeType)
	assert.Equal(t, "notifies the vendor", out.Data.Description)
	assert.Equal(t, "Reminder", out.Data.Config["emailSubject"])
	assert.True(t, out.Selected)
}

func TestWorkflowToCanvas_MarksOnlySelectedNode(t *testing.T) {
	// Arrange
	w := aggregates.NewWorkflow("Flow")
	for _, id := range []string{"a", "b"} {
		nodeID, err := valueobjects.NewNodeIDFromString(id)
		require.NoError(t, err)
		node, err := entities.NewNode(nodeID, valueobjects.KindCode, id, valueobjects.NewPosition(0, 0))
		require.NoError(t, err)
		require.NoError(t, w.AddNode(node))
	}

	// Act
	graph := WorkflowToCanvas(w, "b", 7)

	// Assert
	assert.Equal(t, w.ID().String(), graph.WorkflowID)
	assert.Equal(t, "Flow", graph.WorkflowName)
	assert.Equal(t, 7, graph.Version)
	require.Len(t, graph.Nodes, 2)
	assert.False(t, graph.Nodes[0].Selected)
	assert.True(t, graph.Nodes[1].Selected)
}
