package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowbuilder/domain/core/aggregates"
	"flowbuilder/domain/core/entities"
	"flowbuilder/domain/core/valueobjects"
)

func sampleWorkflow(t *testing.T, name string) *aggregates.Workflow {
	t.Helper()
	w := aggregates.NewWorkflow(name)
	id, err := valueobjects.NewNodeIDFromString("a")
	require.NoError(t, err)
	node, err := entities.NewNode(id, valueobjects.KindTrigger, "Trigger", valueobjects.NewPosition(0, 0))
	require.NoError(t, err)
	require.NoError(t, w.AddNode(node))
	return w
}

func TestWorkflowRepository_SaveAndGetByID(t *testing.T) {
	// Arrange
	repo := NewWorkflowRepository()
	w := sampleWorkflow(t, "Saved")

	// Act
	require.NoError(t, repo.Save(context.Background(), "user-1", w))
	got, err := repo.GetByID(context.Background(), "user-1", w.ID())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Saved", got.Name())
	assert.Equal(t, 1, got.NodeCount())
}

func TestWorkflowRepository_GetByID_WrongUser(t *testing.T) {
	// Arrange: history is scoped per user
	repo := NewWorkflowRepository()
	w := sampleWorkflow(t, "Private")
	require.NoError(t, repo.Save(context.Background(), "user-1", w))

	// Act
	_, err := repo.GetByID(context.Background(), "user-2", w.ID())

	// Assert
	assert.Error(t, err)
}

func TestWorkflowRepository_ListByUserID_LimitApplied(t *testing.T) {
	// Arrange
	repo := NewWorkflowRepository()
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Save(context.Background(), "user-1", sampleWorkflow(t, "Flow")))
	}

	// Act
	summaries, err := repo.ListByUserID(context.Background(), "user-1", 3)

	// Assert
	require.NoError(t, err)
	assert.Len(t, summaries, 3)
}

func TestWorkflowRepository_SetPinned_SurvivesResave(t *testing.T) {
	// Arrange
	repo := NewWorkflowRepository()
	w := sampleWorkflow(t, "Pinnable")
	require.NoError(t, repo.Save(context.Background(), "user-1", w))
	require.NoError(t, repo.SetPinned(context.Background(), "user-1", w.ID(), true))

	// Act: saving the same workflow again keeps the pin
	require.NoError(t, repo.Save(context.Background(), "user-1", w))
	summaries, err := repo.ListByUserID(context.Background(), "user-1", 0)

	// Assert
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.True(t, summaries[0].Pinned)
}

func TestWorkflowRepository_RenameAndDelete(t *testing.T) {
	// Arrange
	repo := NewWorkflowRepository()
	w := sampleWorkflow(t, "Old Name")
	require.NoError(t, repo.Save(context.Background(), "user-1", w))

	// Act & Assert: rename
	require.NoError(t, repo.Rename(context.Background(), "user-1", w.ID(), "New Name"))
	got, err := repo.GetByID(context.Background(), "user-1", w.ID())
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Name())

	// Act & Assert: delete
	require.NoError(t, repo.Delete(context.Background(), "user-1", w.ID()))
	_, err = repo.GetByID(context.Background(), "user-1", w.ID())
	assert.Error(t, err)

	// Deleting again is a not-found
	assert.Error(t, repo.Delete(context.Background(), "user-1", w.ID()))
}
