package queries

import (
	pkgerrors "flowbuilder/pkg/errors"
)

// GetGraphQuery fetches the full current graph in canvas wire format
type GetGraphQuery struct{}

// Validate checks the query
func (q GetGraphQuery) Validate() error { return nil }

// GetNodeQuery fetches one node with its config
type GetNodeQuery struct {
	NodeID string
}

// Validate checks the query
func (q GetNodeQuery) Validate() error {
	if q.NodeID == "" {
		return pkgerrors.NewValidationError("node id is required")
	}
	return nil
}

// GetSelectionQuery fetches the selected node and its field schema, which is
// everything the config form needs to render
type GetSelectionQuery struct{}

// Validate checks the query
func (q GetSelectionQuery) Validate() error { return nil }

// ListTemplatesQuery lists the report template catalog
type ListTemplatesQuery struct{}

// Validate checks the query
func (q ListTemplatesQuery) Validate() error { return nil }

// ListSchemasQuery lists the per-kind config field schemas
type ListSchemasQuery struct{}

// Validate checks the query
func (q ListSchemasQuery) Validate() error { return nil }

// GetSchemaQuery fetches the field schema for one node kind
type GetSchemaQuery struct {
	Kind string
}

// Validate checks the query
func (q GetSchemaQuery) Validate() error {
	if q.Kind == "" {
		return pkgerrors.NewValidationError("kind is required")
	}
	return nil
}

// ListHistoryQuery lists a user's saved workflows, newest first
type ListHistoryQuery struct {
	UserID string
	Limit  int
}

// Validate checks the query
func (q ListHistoryQuery) Validate() error {
	if q.UserID == "" {
		return pkgerrors.NewValidationError("user id is required")
	}
	if q.Limit < 0 {
		return pkgerrors.NewValidationError("limit cannot be negative")
	}
	return nil
}

// ValidateGraphQuery reports referential problems in the current graph
type ValidateGraphQuery struct{}

// Validate checks the query
func (q ValidateGraphQuery) Validate() error { return nil }
