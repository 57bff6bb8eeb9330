package mapper

import (
	"fmt"
	"time"

	"flowbuilder/domain/core/aggregates"
	"flowbuilder/domain/core/entities"
	"flowbuilder/domain/core/valueobjects"
)

// RawPosition is an optional position carried on a backend node payload
type RawPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RawNode is a node as the planner backend sends it. Every field is
// optional; the mapper fills whatever is missing.
type RawNode struct {
	ID          string                 `json:"id,omitempty"`
	Title       string                 `json:"title,omitempty"`
	Name        string                 `json:"name,omitempty"`
	Label       string                 `json:"label,omitempty"`
	NodeType    string                 `json:"node_type,omitempty"`
	Type        string                 `json:"type,omitempty"`
	Description string                 `json:"description,omitempty"`
	Position    *RawPosition           `json:"position,omitempty"`
	Params      map[string]interface{} `json:"params,omitempty"`
	Config      map[string]interface{} `json:"config,omitempty"`
}

// RawEdge is an edge as the planner backend sends it
type RawEdge struct {
	ID           string `json:"id,omitempty"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
}

// RawWorkflow is the planner's full graph payload
type RawWorkflow struct {
	Name       string    `json:"name,omitempty"`
	ReportType string    `json:"report_type,omitempty"`
	Nodes      []RawNode `json:"nodes,omitempty"`
	Edges      []RawEdge `json:"edges,omitempty"`
}

// Mapper converts planner payloads into domain nodes and edges. It never
// fails: sparse payloads are filled from the template catalog and keyword
// heuristics, and malformed fragments are repaired rather than rejected.
type Mapper struct{}

// NewMapper creates a payload mapper
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapWorkflow maps a full planner payload into nodes and edges
func (m *Mapper) MapWorkflow(raw RawWorkflow) ([]*entities.Node, []aggregates.Edge) {
	nodes := m.MapNodes(raw.Nodes, raw.Name, raw.ReportType)
	edges := m.MapEdges(raw.Edges, nodes)
	return nodes, edges
}

// MapNodes converts raw planner nodes into domain nodes. When the payload
// carries no nodes at all, the resolved report template supplies the full
// step sequence. Otherwise each raw node is mapped positionally: missing ids
// become step_{i+1}, missing labels come from the template or a generic
// fallback, and kinds come from the template entry when one lines up,
// else from keyword inference over the label.
func (m *Mapper) MapNodes(raw []RawNode, workflowName, reportType string) []*entities.Node {
	template, hasTemplate := LookupTemplate(reportType, workflowName)

	if len(raw) == 0 {
		if !hasTemplate {
			return []*entities.Node{}
		}
		nodes := make([]*entities.Node, 0, len(template))
		for i, step := range template {
			node, err := entities.ReconstructNode(
				valueobjects.NewStepID(i+1),
				step.Kind,
				step.Title,
				"",
				valueobjects.StackedPosition(i),
				map[string]interface{}{"name": step.Title},
			)
			if err != nil {
				continue
			}
			nodes = append(nodes, node)
		}
		return nodes
	}

	nodes := make([]*entities.Node, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	for i, rn := range raw {
		var templateStep *TemplateNode
		if hasTemplate && i < len(template) {
			templateStep = &template[i]
		}

		id := uniqueNodeID(seen, rn.ID, i)
		label := nodeLabel(rn, templateStep, i)
		kind := nodeKind(rn, templateStep, label)
		pos := nodePosition(rn, i)
		cfg := nodeConfig(rn, label)

		node, err := entities.ReconstructNode(id, kind, label, rn.Description, pos, cfg)
		if err != nil {
			continue
		}
		nodes = append(nodes, node)
	}

	return nodes
}

// MapEdges converts raw planner edges into domain edges. Sources and targets
// are kept verbatim; only the edge id is repaired when the backend omits it
// or serializes a literal "undefined". When the payload carries nodes but no
// edges, the steps are chained linearly in order.
func (m *Mapper) MapEdges(raw []RawEdge, nodes []*entities.Node) []aggregates.Edge {
	now := time.Now()

	if len(raw) == 0 {
		if len(nodes) < 2 {
			return []aggregates.Edge{}
		}
		edges := make([]aggregates.Edge, 0, len(nodes)-1)
		for i := 0; i < len(nodes)-1; i++ {
			src := nodes[i].ID()
			tgt := nodes[i+1].ID()
			edges = append(edges, aggregates.Edge{
				ID:        fmt.Sprintf("e-%s-%s", src.String(), tgt.String()),
				SourceID:  src,
				TargetID:  tgt,
				CreatedAt: now,
			})
		}
		return edges
	}

	edges := make([]aggregates.Edge, 0, len(raw))
	for i, re := range raw {
		if re.Source == "" || re.Target == "" {
			continue
		}
		src, err := valueobjects.NewNodeIDFromString(re.Source)
		if err != nil {
			continue
		}
		tgt, err := valueobjects.NewNodeIDFromString(re.Target)
		if err != nil {
			continue
		}

		id := re.ID
		if id == "" || id == "undefined" {
			id = fmt.Sprintf("e-%s-%s-%d-%d", re.Source, re.Target, i, now.UnixNano())
		}

		edges = append(edges, aggregates.Edge{
			ID:           id,
			SourceID:     src,
			TargetID:     tgt,
			SourceHandle: re.SourceHandle,
			CreatedAt:    now,
		})
	}

	return edges
}

// uniqueNodeID resolves a raw id against already-claimed ids. Missing ids and
// duplicates both get a synthesized positional id so the output always holds
// one node per input entry.
func uniqueNodeID(seen map[string]bool, rawID string, index int) valueobjects.NodeID {
	id := rawID
	if id == "" || id == "undefined" || seen[id] {
		id = valueobjects.NewStepID(index + 1).String()
	}
	for suffix := 2; seen[id]; suffix++ {
		id = fmt.Sprintf("%s_%d", valueobjects.NewStepID(index+1).String(), suffix)
	}
	seen[id] = true

	nodeID, err := valueobjects.NewNodeIDFromString(id)
	if err != nil {
		nodeID = valueobjects.NewStepID(index + 1)
	}
	return nodeID
}

func nodeLabel(rn RawNode, templateStep *TemplateNode, index int) string {
	switch {
	case rn.Title != "":
		return rn.Title
	case rn.Name != "":
		return rn.Name
	case rn.Label != "":
		return rn.Label
	case templateStep != nil:
		return templateStep.Title
	default:
		return fmt.Sprintf("Step %d", index+1)
	}
}

func nodeKind(rn RawNode, templateStep *TemplateNode, label string) valueobjects.NodeKind {
	rawType := rn.NodeType
	if rawType == "" {
		rawType = rn.Type
	}
	if templateStep != nil {
		return templateStep.Kind
	}
	return ResolveKind(rawType, label)
}

func nodePosition(rn RawNode, index int) valueobjects.Position {
	if rn.Position != nil {
		return valueobjects.NewPosition(rn.Position.X, rn.Position.Y)
	}
	return valueobjects.StackedPosition(index)
}

// nodeConfig seeds the config bag with the display name, then layers the
// planner's params and any explicit config on top
func nodeConfig(rn RawNode, label string) map[string]interface{} {
	cfg := map[string]interface{}{"name": label}
	if rn.Description != "" {
		cfg["description"] = rn.Description
	}
	for k, v := range rn.Params {
		cfg[k] = v
	}
	for k, v := range rn.Config {
		cfg[k] = v
	}
	return cfg
}
