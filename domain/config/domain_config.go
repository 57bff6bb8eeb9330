package config

import "time"

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Graph constraints
	MaxNodesPerWorkflow int
	MaxEdgesPerWorkflow int
	DefaultWorkflowName string

	// Node constraints
	MaxLabelLength  int
	MaxConfigFields int

	// Edge constraints
	AllowSelfConnections bool
	// One outgoing edge per condition handle ("if"/"else"); connecting a
	// second edge from the same handle replaces the first.
	SingleEdgePerHandle bool

	// Sync behaviour
	CanvasSettleDelay time.Duration

	// Validation settings
	DropDanglingEdges bool
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxNodesPerWorkflow: 500,
		MaxEdgesPerWorkflow: 2000,
		DefaultWorkflowName: "New Workflow",

		MaxLabelLength:  200,
		MaxConfigFields: 64,

		AllowSelfConnections: false,
		SingleEdgePerHandle:  true,

		CanvasSettleDelay: 100 * time.Millisecond,

		DropDanglingEdges: true,
	}
}
