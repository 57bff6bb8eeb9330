package ports

import (
	"context"

	"flowbuilder/application/mapper"
	"flowbuilder/domain/core/aggregates"
	"flowbuilder/domain/events"
)

// WorkflowRepository defines the interface for workflow history persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type WorkflowRepository interface {
	// Save persists a workflow snapshot (create or update)
	Save(ctx context.Context, userID string, workflow *aggregates.Workflow) error

	// GetByID retrieves a workflow by its ID
	GetByID(ctx context.Context, userID string, id aggregates.WorkflowID) (*aggregates.Workflow, error)

	// ListByUserID retrieves workflow summaries for a user, newest first
	ListByUserID(ctx context.Context, userID string, limit int) ([]WorkflowSummary, error)

	// Rename updates a stored workflow's display name
	Rename(ctx context.Context, userID string, id aggregates.WorkflowID, name string) error

	// SetPinned pins or unpins a stored workflow
	SetPinned(ctx context.Context, userID string, id aggregates.WorkflowID, pinned bool) error

	// Delete removes a stored workflow
	Delete(ctx context.Context, userID string, id aggregates.WorkflowID) error
}

// WorkflowSummary is a history list entry. The full graph is only loaded on
// demand via GetByID.
type WorkflowSummary struct {
	ID        aggregates.WorkflowID
	Name      string
	NodeCount int
	EdgeCount int
	Pinned    bool
	UpdatedAt string
}

// Planner defines the interface to the conversational backend that turns a
// prompt into a raw workflow payload
type Planner interface {
	// Plan sends the prompt and returns the raw graph payload
	Plan(ctx context.Context, prompt string, sessionToken string) (*mapper.RawWorkflow, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// CanvasNotifier pushes authoritative graph updates to connected canvases
type CanvasNotifier interface {
	// NotifyGraphReplaced tells connected clients to re-render the full graph
	NotifyGraphReplaced(ctx context.Context, workflowID string) error

	// NotifyEdgesReplaced tells connected clients the exact surviving edge set
	NotifyEdgesReplaced(ctx context.Context, workflowID string, edgeIDs []string) error
}

// MetricsRecorder records operational counters and timings
type MetricsRecorder interface {
	// Count increments a named counter
	Count(ctx context.Context, name string, value float64)

	// Timing records a duration in milliseconds
	Timing(ctx context.Context, name string, ms float64)
}

// Cache defines the interface for caching query results
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}
