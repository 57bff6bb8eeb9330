package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"flowbuilder/application/ports"
	"flowbuilder/domain/core/aggregates"
	pkgerrors "flowbuilder/pkg/errors"
)

// WorkflowRepository is an in-memory workflow history, used in development
// and tests where DynamoDB is not available
type WorkflowRepository struct {
	mu    sync.RWMutex
	items map[string]map[string]*record // userID -> workflowID -> record
}

type record struct {
	workflow  *aggregates.Workflow
	pinned    bool
	updatedAt time.Time
}

// NewWorkflowRepository creates an empty in-memory repository
func NewWorkflowRepository() *WorkflowRepository {
	return &WorkflowRepository{
		items: make(map[string]map[string]*record),
	}
}

// Save stores a workflow snapshot
func (r *WorkflowRepository) Save(ctx context.Context, userID string, workflow *aggregates.Workflow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.items[userID] == nil {
		r.items[userID] = make(map[string]*record)
	}
	existing := r.items[userID][workflow.ID().String()]
	pinned := false
	if existing != nil {
		pinned = existing.pinned
	}
	r.items[userID][workflow.ID().String()] = &record{
		workflow:  workflow,
		pinned:    pinned,
		updatedAt: time.Now(),
	}
	return nil
}

// GetByID fetches a stored workflow
func (r *WorkflowRepository) GetByID(ctx context.Context, userID string, id aggregates.WorkflowID) (*aggregates.Workflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec := r.items[userID][id.String()]
	if rec == nil {
		return nil, pkgerrors.NewNotFoundError("workflow")
	}
	return rec.workflow, nil
}

// ListByUserID lists stored workflows newest first
func (r *WorkflowRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]ports.WorkflowSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recs := make([]*record, 0, len(r.items[userID]))
	for _, rec := range r.items[userID] {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].updatedAt.After(recs[j].updatedAt)
	})

	out := make([]ports.WorkflowSummary, 0, len(recs))
	for _, rec := range recs {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, ports.WorkflowSummary{
			ID:        rec.workflow.ID(),
			Name:      rec.workflow.Name(),
			NodeCount: rec.workflow.NodeCount(),
			EdgeCount: rec.workflow.EdgeCount(),
			Pinned:    rec.pinned,
			UpdatedAt: rec.updatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

// Rename changes a stored workflow's name
func (r *WorkflowRepository) Rename(ctx context.Context, userID string, id aggregates.WorkflowID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.items[userID][id.String()]
	if rec == nil {
		return pkgerrors.NewNotFoundError("workflow")
	}
	if err := rec.workflow.Rename(name); err != nil {
		return err
	}
	rec.updatedAt = time.Now()
	return nil
}

// SetPinned pins or unpins a stored workflow
func (r *WorkflowRepository) SetPinned(ctx context.Context, userID string, id aggregates.WorkflowID, pinned bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.items[userID][id.String()]
	if rec == nil {
		return pkgerrors.NewNotFoundError("workflow")
	}
	rec.pinned = pinned
	return nil
}

// Delete removes a stored workflow
func (r *WorkflowRepository) Delete(ctx context.Context, userID string, id aggregates.WorkflowID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.items[userID][id.String()] == nil {
		return pkgerrors.NewNotFoundError("workflow")
	}
	delete(r.items[userID], id.String())
	return nil
}
