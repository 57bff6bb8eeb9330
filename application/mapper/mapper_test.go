package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowbuilder/domain/core/valueobjects"
)

func TestMapNodes_EmptyPayload_SynthesizesFromTemplate(t *testing.T) {
	// Arrange
	m := NewMapper()

	// Act
	nodes := m.MapNodes(nil, "", "AP_AGING")

	// Assert
	require.Len(t, nodes, 6)
	assert.Equal(t, "step_1", nodes[0].ID().String())
	assert.Equal(t, "Fetch Purchase Invoices", nodes[0].Label())
	assert.Equal(t, valueobjects.KindParser, nodes[0].Kind())
	assert.Equal(t, "step_6", nodes[5].ID().String())
	assert.Equal(t, "Export Excel", nodes[5].Label())
	assert.Equal(t, valueobjects.KindExport, nodes[5].Kind())

	// Steps are stacked in a single column
	assert.Equal(t, valueobjects.StackedPosition(0), nodes[0].Position())
	assert.Equal(t, valueobjects.StackedPosition(5), nodes[5].Position())
}

func TestMapNodes_EmptyPayload_NoTemplate_ReturnsEmpty(t *testing.T) {
	// Arrange
	m := NewMapper()

	// Act
	nodes := m.MapNodes(nil, "Some Random Flow", "")

	// Assert
	assert.Empty(t, nodes)
}

func TestMapNodes_PreservesCountAndUniqueIDs(t *testing.T) {
	// Arrange
	m := NewMapper()
	raw := []RawNode{
		{ID: "a", Title: "Fetch Invoices"},
		{ID: "a", Title: "Fetch Again"},       // duplicate id
		{ID: "undefined", Title: "Broken ID"}, // serialized undefined
		{Title: "No ID At All"},
	}

	// Act
	nodes := m.MapNodes(raw, "", "")

	// Assert
	require.Len(t, nodes, 4)
	seen := map[string]bool{}
	for _, n := range nodes {
		assert.False(t, seen[n.ID().String()], "id %s appears twice", n.ID().String())
		seen[n.ID().String()] = true
	}
	assert.Equal(t, "a", nodes[0].ID().String())
	assert.Equal(t, "step_2", nodes[1].ID().String())
	assert.Equal(t, "step_3", nodes[2].ID().String())
	assert.Equal(t, "step_4", nodes[3].ID().String())
}

func TestMapNodes_FallbackIDCollisionGetsNextSuffix(t *testing.T) {
	// Arrange: the third node duplicates "step_3", and its first fallback
	// candidate "step_3_2" is already claimed by the first node.
	m := NewMapper()
	raw := []RawNode{
		{ID: "step_3_2", Title: "Claims The Fallback"},
		{ID: "step_3", Title: "Original"},
		{ID: "step_3", Title: "Duplicate"},
	}

	// Act
	nodes := m.MapNodes(raw, "", "")

	// Assert: the synthesized id keeps advancing past claimed candidates
	require.Len(t, nodes, 3)
	assert.Equal(t, "step_3_2", nodes[0].ID().String())
	assert.Equal(t, "step_3", nodes[1].ID().String())
	assert.Equal(t, "step_3_3", nodes[2].ID().String())
}

func TestMapNodes_LabelPriority(t *testing.T) {
	// Arrange
	m := NewMapper()
	raw := []RawNode{
		{ID: "n1", Title: "From Title", Name: "From Name", Label: "From Label"},
		{ID: "n2", Name: "From Name", Label: "From Label"},
		{ID: "n3", Label: "From Label"},
		{ID: "n4"},
	}

	// Act
	nodes := m.MapNodes(raw, "", "")

	// Assert
	require.Len(t, nodes, 4)
	assert.Equal(t, "From Title", nodes[0].Label())
	assert.Equal(t, "From Name", nodes[1].Label())
	assert.Equal(t, "From Label", nodes[2].Label())
	assert.Equal(t, "Step 4", nodes[3].Label())
}

func TestMapNodes_TemplateEnrichesBareNodes(t *testing.T) {
	// Arrange: nodes with no labels, lined up against a known template
	m := NewMapper()
	raw := []RawNode{{}, {}, {}, {}}

	// Act
	nodes := m.MapNodes(raw, "DSO Report", "")

	// Assert: positional enrichment from the DSO template
	require.Len(t, nodes, 4)
	assert.Equal(t, "Fetch Sales Invoices", nodes[0].Label())
	assert.Equal(t, valueobjects.KindParser, nodes[0].Kind())
	assert.Equal(t, "Calculate DSO", nodes[2].Label())
	assert.Equal(t, valueobjects.KindAging, nodes[2].Kind())
}

func TestMapNodes_ExplicitKnownKindWins(t *testing.T) {
	// Arrange
	m := NewMapper()
	raw := []RawNode{
		{ID: "n1", NodeType: "matcher", Title: "Fetch Something"},
		{ID: "n2", Type: "custom", Title: "Fetch Something"},
		{ID: "n3", Title: "Mystery Step"},
	}

	// Act
	nodes := m.MapNodes(raw, "", "")

	// Assert
	require.Len(t, nodes, 3)
	assert.Equal(t, valueobjects.KindMatcher, nodes[0].Kind())
	// "custom" is a renderer tag, not a kind; the label decides
	assert.Equal(t, valueobjects.KindParser, nodes[1].Kind())
	assert.Equal(t, valueobjects.DefaultKind, nodes[2].Kind())
}

func TestMapNodes_PositionPassthroughAndFallback(t *testing.T) {
	// Arrange
	m := NewMapper()
	raw := []RawNode{
		{ID: "n1", Position: &RawPosition{X: 420, Y: 99}},
		{ID: "n2"},
	}

	// Act
	nodes := m.MapNodes(raw, "", "")

	// Assert
	require.Len(t, nodes, 2)
	assert.Equal(t, valueobjects.NewPosition(420, 99), nodes[0].Position())
	assert.Equal(t, valueobjects.StackedPosition(1), nodes[1].Position())
}

func TestMapNodes_ConfigSeedingAndLayering(t *testing.T) {
	// Arrange
	m := NewMapper()
	raw := []RawNode{{
		ID:          "n1",
		Title:       "Send Email",
		Description: "notify the vendor",
		Params:      map[string]interface{}{"emailSubject": "from params", "retries": 3},
		Config:      map[string]interface{}{"emailSubject": "from config"},
	}}

	// Act
	nodes := m.MapNodes(raw, "", "")

	// Assert: name seeds first, params layer on, explicit config wins
	require.Len(t, nodes, 1)
	cfg := nodes[0].Config()
	assert.Equal(t, "Send Email", cfg["name"])
	assert.Equal(t, "notify the vendor", cfg["description"])
	assert.Equal(t, "from config", cfg["emailSubject"])
	assert.Equal(t, 3, cfg["retries"])
}

func TestMapEdges_RepairsMissingAndUndefinedIDs(t *testing.T) {
	// Arrange
	m := NewMapper()
	raw := []RawEdge{
		{ID: "e-1", Source: "a", Target: "b"},
		{ID: "", Source: "b", Target: "c"},
		{ID: "undefined", Source: "c", Target: "d"},
	}

	// Act
	edges := m.MapEdges(raw, nil)

	// Assert
	require.Len(t, edges, 3)
	assert.Equal(t, "e-1", edges[0].ID)
	assert.NotEmpty(t, edges[1].ID)
	assert.NotEqual(t, "undefined", edges[2].ID)
	assert.NotEqual(t, edges[1].ID, edges[2].ID)
	assert.Equal(t, "b", edges[1].SourceID.String())
	assert.Equal(t, "c", edges[1].TargetID.String())
}

func TestMapEdges_SkipsEdgesWithMissingEndpoints(t *testing.T) {
	// Arrange
	m := NewMapper()
	raw := []RawEdge{
		{Source: "", Target: "b"},
		{Source: "a", Target: ""},
		{Source: "a", Target: "b", SourceHandle: "if"},
	}

	// Act
	edges := m.MapEdges(raw, nil)

	// Assert
	require.Len(t, edges, 1)
	assert.Equal(t, "a", edges[0].SourceID.String())
	assert.Equal(t, "if", edges[0].SourceHandle)
}

func TestMapEdges_NoEdges_ChainsNodesLinearly(t *testing.T) {
	// Arrange
	m := NewMapper()
	nodes := m.MapNodes(nil, "", "AP_DUPLICATE")
	require.Len(t, nodes, 4)

	// Act
	edges := m.MapEdges(nil, nodes)

	// Assert
	require.Len(t, edges, 3)
	assert.Equal(t, "e-step_1-step_2", edges[0].ID)
	assert.Equal(t, "e-step_3-step_4", edges[2].ID)
	for i, e := range edges {
		assert.Equal(t, nodes[i].ID(), e.SourceID)
		assert.Equal(t, nodes[i+1].ID(), e.TargetID)
	}
}

func TestMapEdges_NoEdges_SingleNode_NoChain(t *testing.T) {
	// Arrange
	m := NewMapper()
	nodes := m.MapNodes([]RawNode{{ID: "only"}}, "", "")

	// Act
	edges := m.MapEdges(nil, nodes)

	// Assert
	assert.Empty(t, edges)
}

func TestMapWorkflow_FullSparsePayload(t *testing.T) {
	// Arrange: report type only, no nodes, no edges
	m := NewMapper()
	raw := RawWorkflow{Name: "AR Aging Report", ReportType: "AR_AGING"}

	// Act
	nodes, edges := m.MapWorkflow(raw)

	// Assert: full template graph with a linear chain
	require.Len(t, nodes, 6)
	require.Len(t, edges, 5)
	assert.Equal(t, "Fetch Sales Invoices", nodes[0].Label())
	assert.Equal(t, nodes[0].ID(), edges[0].SourceID)
	assert.Equal(t, nodes[5].ID(), edges[4].TargetID)
}
