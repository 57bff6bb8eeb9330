package commands

import (
	pkgerrors "flowbuilder/pkg/errors"
)

// SubmitPromptCommand runs one conversational turn against the planner
type SubmitPromptCommand struct {
	Prompt string
}

// Validate checks the command
func (c SubmitPromptCommand) Validate() error {
	if c.Prompt == "" {
		return pkgerrors.NewValidationError("prompt is required")
	}
	return nil
}

// DropNodeCommand creates a node from a palette drop
type DropNodeCommand struct {
	Kind string
	X    float64
	Y    float64
}

// Validate checks the command
func (c DropNodeCommand) Validate() error {
	if c.Kind == "" {
		return pkgerrors.NewValidationError("node kind is required")
	}
	return nil
}

// UpdateNodeConfigCommand merges a partial config patch into one node
type UpdateNodeConfigCommand struct {
	NodeID string
	Patch  map[string]interface{}
}

// Validate checks the command
func (c UpdateNodeConfigCommand) Validate() error {
	if c.NodeID == "" {
		return pkgerrors.NewValidationError("node id is required")
	}
	if len(c.Patch) == 0 {
		return pkgerrors.NewValidationError("config patch cannot be empty")
	}
	return nil
}

// MoveNodeCommand repositions a node on the canvas
type MoveNodeCommand struct {
	NodeID string
	X      float64
	Y      float64
}

// Validate checks the command
func (c MoveNodeCommand) Validate() error {
	if c.NodeID == "" {
		return pkgerrors.NewValidationError("node id is required")
	}
	return nil
}

// DeleteNodeCommand removes a node and its connected edges
type DeleteNodeCommand struct {
	NodeID string
}

// Validate checks the command
func (c DeleteNodeCommand) Validate() error {
	if c.NodeID == "" {
		return pkgerrors.NewValidationError("node id is required")
	}
	return nil
}

// ConnectNodesCommand creates an edge between two nodes
type ConnectNodesCommand struct {
	SourceID     string
	TargetID     string
	SourceHandle string
}

// Validate checks the command
func (c ConnectNodesCommand) Validate() error {
	if c.SourceID == "" || c.TargetID == "" {
		return pkgerrors.NewValidationError("source and target ids are required")
	}
	return nil
}

// DeleteEdgeCommand removes one edge via its explicit delete control
type DeleteEdgeCommand struct {
	EdgeID string
}

// Validate checks the command
func (c DeleteEdgeCommand) Validate() error {
	if c.EdgeID == "" {
		return pkgerrors.NewValidationError("edge id is required")
	}
	return nil
}

// SelectNodeCommand opens a node's config form
type SelectNodeCommand struct {
	NodeID string
}

// Validate checks the command
func (c SelectNodeCommand) Validate() error {
	if c.NodeID == "" {
		return pkgerrors.NewValidationError("node id is required")
	}
	return nil
}

// ClearSelectionCommand closes the config form
type ClearSelectionCommand struct{}

// Validate checks the command
func (c ClearSelectionCommand) Validate() error { return nil }

// ClearSessionCommand wipes the graph and starts a new session
type ClearSessionCommand struct{}

// Validate checks the command
func (c ClearSessionCommand) Validate() error { return nil }

// RenameWorkflowCommand changes the workflow display name
type RenameWorkflowCommand struct {
	Name string
}

// Validate checks the command
func (c RenameWorkflowCommand) Validate() error {
	if c.Name == "" {
		return pkgerrors.NewValidationError("name is required")
	}
	return nil
}

// SaveWorkflowCommand snapshots the current graph into history
type SaveWorkflowCommand struct {
	UserID string
}

// Validate checks the command
func (c SaveWorkflowCommand) Validate() error {
	if c.UserID == "" {
		return pkgerrors.NewValidationError("user id is required")
	}
	return nil
}

// RestoreWorkflowCommand loads a stored workflow onto the canvas
type RestoreWorkflowCommand struct {
	UserID     string
	WorkflowID string
}

// Validate checks the command
func (c RestoreWorkflowCommand) Validate() error {
	if c.UserID == "" {
		return pkgerrors.NewValidationError("user id is required")
	}
	if c.WorkflowID == "" {
		return pkgerrors.NewValidationError("workflow id is required")
	}
	return nil
}
