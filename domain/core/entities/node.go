package entities

import (
	"strings"

	"flowbuilder/domain/config"
	"flowbuilder/domain/core/valueobjects"
	pkgerrors "flowbuilder/pkg/errors"
)

// Node is one workflow step. It is a configuration record only: the kind
// selects a config field schema and a canvas icon, and the config bag holds
// whatever that schema allows. Nothing here is ever executed.
type Node struct {
	// Private fields ensure encapsulation
	id          valueobjects.NodeID
	kind        valueobjects.NodeKind
	label       string
	description string
	position    valueobjects.Position
	cfg         map[string]interface{}
}

// NewNode creates a node with business rule validation
func NewNode(id valueobjects.NodeID, kind valueobjects.NodeKind, label string, position valueobjects.Position) (*Node, error) {
	return NewNodeWithConfig(id, kind, label, position, config.DefaultDomainConfig())
}

// NewNodeWithConfig creates a node validated against the given domain configuration
func NewNodeWithConfig(id valueobjects.NodeID, kind valueobjects.NodeKind, label string, position valueobjects.Position, cfg *config.DomainConfig) (*Node, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("node id cannot be empty")
	}
	if !kind.IsValid() {
		kind = valueobjects.DefaultKind
	}

	label = strings.TrimSpace(label)
	if label == "" {
		label = id.String()
	}
	if len(label) > cfg.MaxLabelLength {
		label = label[:cfg.MaxLabelLength]
	}

	return &Node{
		id:       id,
		kind:     kind,
		label:    label,
		position: position,
		cfg:      map[string]interface{}{"name": label},
	}, nil
}

// ReconstructNode rebuilds a node from stored or client-supplied data without
// re-seeding defaults. The config bag is adopted verbatim.
func ReconstructNode(
	id valueobjects.NodeID,
	kind valueobjects.NodeKind,
	label string,
	description string,
	position valueobjects.Position,
	cfgBag map[string]interface{},
) (*Node, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("node id cannot be empty")
	}
	if !kind.IsValid() {
		kind = valueobjects.DefaultKind
	}
	if cfgBag == nil {
		cfgBag = map[string]interface{}{}
	}

	return &Node{
		id:          id,
		kind:        kind,
		label:       label,
		description: description,
		position:    position,
		cfg:         cfgBag,
	}, nil
}

// ID returns the node's unique identifier
func (n *Node) ID() valueobjects.NodeID {
	return n.id
}

// Kind returns the node's type tag
func (n *Node) Kind() valueobjects.NodeKind {
	return n.kind
}

// Label returns the display name
func (n *Node) Label() string {
	return n.label
}

// Description returns the optional step description
func (n *Node) Description() string {
	return n.description
}

// Position returns the node's canvas position
func (n *Node) Position() valueobjects.Position {
	return n.position
}

// MoveTo moves the node to a new position
func (n *Node) MoveTo(position valueobjects.Position) {
	n.position = position
}

// Relabel changes the display name
func (n *Node) Relabel(label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return pkgerrors.NewValidationError("label cannot be empty")
	}
	n.label = label
	return nil
}

// MergeConfig merges a partial patch into the config bag, validated against
// the given domain configuration. Only the supplied keys change. The patch
// is staged into a copy first, so a rejected merge leaves the bag exactly as
// it was.
func (n *Node) MergeConfig(patch map[string]interface{}, cfg *config.DomainConfig) error {
	if len(patch) == 0 {
		return nil
	}
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	merged := make(map[string]interface{}, len(n.cfg)+len(patch))
	for k, v := range n.cfg {
		merged[k] = v
	}
	for k, v := range patch {
		if k == "" {
			return pkgerrors.NewValidationError("config field name cannot be empty")
		}
		merged[k] = v
	}
	if len(merged) > cfg.MaxConfigFields {
		return pkgerrors.NewValidationError("too many config fields")
	}

	n.cfg = merged
	return nil
}

// Config returns a copy of the config bag to maintain encapsulation
func (n *Node) Config() map[string]interface{} {
	out := make(map[string]interface{}, len(n.cfg))
	for k, v := range n.cfg {
		out[k] = v
	}
	return out
}

// ConfigValue returns a single config field
func (n *Node) ConfigValue(key string) (interface{}, bool) {
	v, ok := n.cfg[key]
	return v, ok
}

// Equals reports whether two nodes carry identical identity, layout and
// configuration. Used by the store's deep-equal short-circuit.
func (n *Node) Equals(other *Node) bool {
	if other == nil {
		return false
	}
	if !n.id.Equals(other.id) || n.kind != other.kind || n.label != other.label {
		return false
	}
	if n.description != other.description {
		return false
	}
	if !n.position.Equals(other.position) {
		return false
	}
	if len(n.cfg) != len(other.cfg) {
		return false
	}
	for k, v := range n.cfg {
		ov, ok := other.cfg[k]
		if !ok || !looseEqual(v, ov) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the node
func (n *Node) Clone() *Node {
	return &Node{
		id:          n.id,
		kind:        n.kind,
		label:       n.label,
		description: n.description,
		position:    n.position,
		cfg:         n.Config(),
	}
}

// looseEqual compares config values the way JSON round-trips them: scalars by
// value, string slices element-wise. Nested maps fall back to pointer-free
// shallow comparison of their printable form.
func looseEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch av := a.(type) {
	case []string:
		bv, ok := b.([]string)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !looseEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]interface{}:
		bv, ok := b.(map[string]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			if !looseEqual(v, bv[k]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
