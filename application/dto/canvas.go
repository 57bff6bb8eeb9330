package dto

import (
	"flowbuilder/domain/core/aggregates"
	"flowbuilder/domain/core/entities"
)

// Canvas wire shapes. These mirror what the canvas renderer consumes: one
// custom node type whose data bag carries the kind and config, and styled
// edges whose stroke encodes the condition branch.

const (
	canvasNodeType = "custom"
	canvasEdgeType = "custom"

	strokeNeutral = "#b1b1b7"
	strokeIf      = "#0916cc"
	strokeElse    = "#ef4444"

	labelIf   = "✓ IF"
	labelElse = "✗ ELSE"
)

// CanvasPosition is an x/y point on the canvas
type CanvasPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CanvasNodeData is the payload the custom node renderer reads
type CanvasNodeData struct {
	Label       string                 `json:"label"`
	NodeType    string                 `json:"nodeType"`
	Description string                 `json:"description,omitempty"`
	Config      map[string]interface{} `json:"config"`
}

// CanvasNode is a node in canvas wire format
type CanvasNode struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Position CanvasPosition `json:"position"`
	Data     CanvasNodeData `json:"data"`
	Selected bool           `json:"selected,omitempty"`
}

// CanvasEdgeStyle styles an edge's stroke
type CanvasEdgeStyle struct {
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
}

// CanvasEdge is an edge in canvas wire format
type CanvasEdge struct {
	ID           string          `json:"id"`
	Source       string          `json:"source"`
	Target       string          `json:"target"`
	SourceHandle string          `json:"sourceHandle,omitempty"`
	Type         string          `json:"type"`
	Animated     bool            `json:"animated"`
	Label        string          `json:"label,omitempty"`
	Style        CanvasEdgeStyle `json:"style"`
}

// CanvasGraph is a full graph in canvas wire format
type CanvasGraph struct {
	WorkflowID   string       `json:"workflowId"`
	WorkflowName string       `json:"workflowName"`
	Nodes        []CanvasNode `json:"nodes"`
	Edges        []CanvasEdge `json:"edges"`
	Version      int          `json:"version"`
}

// NodeToCanvas converts a domain node to its canvas representation
func NodeToCanvas(n *entities.Node, selected bool) CanvasNode {
	pos := n.Position()
	return CanvasNode{
		ID:   n.ID().String(),
		Type: canvasNodeType,
		Position: CanvasPosition{
			X: pos.X,
			Y: pos.Y,
		},
		Data: CanvasNodeData{
			Label:       n.Label(),
			NodeType:    n.Kind().String(),
			Description: n.Description(),
			Config:      n.Config(),
		},
		Selected: selected,
	}
}

// EdgeToCanvas converts a domain edge to its canvas representation. Edges
// leaving a condition node's sub-ports get branch labels and stroke colors;
// everything else gets the neutral animated stroke.
func EdgeToCanvas(e aggregates.Edge) CanvasEdge {
	out := CanvasEdge{
		ID:           e.ID,
		Source:       e.SourceID.String(),
		Target:       e.TargetID.String(),
		SourceHandle: e.SourceHandle,
		Type:         canvasEdgeType,
		Animated:     true,
		Style: CanvasEdgeStyle{
			Stroke:      strokeNeutral,
			StrokeWidth: 2,
		},
	}

	switch e.SourceHandle {
	case aggregates.HandleIf:
		out.Label = labelIf
		out.Style.Stroke = strokeIf
	case aggregates.HandleElse:
		out.Label = labelElse
		out.Style.Stroke = strokeElse
	}

	return out
}

// NodesToCanvas converts a node list, marking the selected node if any
func NodesToCanvas(nodes []*entities.Node, selectedID string) []CanvasNode {
	out := make([]CanvasNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, NodeToCanvas(n, selectedID != "" && n.ID().String() == selectedID))
	}
	return out
}

// EdgesToCanvas converts an edge list
func EdgesToCanvas(edges []aggregates.Edge) []CanvasEdge {
	out := make([]CanvasEdge, 0, len(edges))
	for _, e := range edges {
		out = append(out, EdgeToCanvas(e))
	}
	return out
}

// WorkflowToCanvas converts a full workflow aggregate
func WorkflowToCanvas(w *aggregates.Workflow, selectedID string, version int) CanvasGraph {
	return CanvasGraph{
		WorkflowID:   w.ID().String(),
		WorkflowName: w.Name(),
		Nodes:        NodesToCanvas(w.Nodes(), selectedID),
		Edges:        EdgesToCanvas(w.Edges()),
		Version:      version,
	}
}
