package handlers

import (
	"context"
	"fmt"

	"flowbuilder/application/commands"
	"flowbuilder/application/commands/bus"
	"flowbuilder/application/services"
	"flowbuilder/domain/core/aggregates"
	"flowbuilder/domain/core/valueobjects"
	"flowbuilder/domain/schema"

	"go.uber.org/zap"
)

// GraphCommandHandler executes graph mutation commands against the store and
// the canvas sync mediator
type GraphCommandHandler struct {
	store    *services.GraphStore
	sync     *services.CanvasSync
	workflow *services.WorkflowService
	logger   *zap.Logger
}

// NewGraphCommandHandler creates the handler
func NewGraphCommandHandler(
	store *services.GraphStore,
	sync *services.CanvasSync,
	workflow *services.WorkflowService,
	logger *zap.Logger,
) *GraphCommandHandler {
	return &GraphCommandHandler{
		store:    store,
		sync:     sync,
		workflow: workflow,
		logger:   logger,
	}
}

// Register wires every command this handler serves onto the bus
func (h *GraphCommandHandler) Register(b *bus.CommandBus) error {
	for _, cmd := range []bus.Command{
		commands.SubmitPromptCommand{},
		commands.DropNodeCommand{},
		commands.UpdateNodeConfigCommand{},
		commands.MoveNodeCommand{},
		commands.DeleteNodeCommand{},
		commands.ConnectNodesCommand{},
		commands.DeleteEdgeCommand{},
		commands.SelectNodeCommand{},
		commands.ClearSelectionCommand{},
		commands.ClearSessionCommand{},
		commands.RenameWorkflowCommand{},
		commands.SaveWorkflowCommand{},
		commands.RestoreWorkflowCommand{},
	} {
		if err := b.Register(cmd, h); err != nil {
			return err
		}
	}
	return nil
}

// Handle dispatches on the concrete command type
func (h *GraphCommandHandler) Handle(ctx context.Context, cmd bus.Command) error {
	switch c := cmd.(type) {
	case commands.SubmitPromptCommand:
		_, err := h.workflow.HandlePrompt(ctx, c.Prompt)
		return err

	case commands.DropNodeCommand:
		_, err := h.workflow.DropNode(ctx, c.Kind, valueobjects.NewPosition(c.X, c.Y))
		return err

	case commands.UpdateNodeConfigCommand:
		node, err := h.store.Workflow().Node(mustID(c.NodeID))
		if err != nil {
			return err
		}
		if err := schema.ValidatePatch(node.Kind(), c.Patch); err != nil {
			return err
		}
		return h.store.MergeNodeConfig(ctx, c.NodeID, c.Patch)

	case commands.MoveNodeCommand:
		return h.store.MoveNode(ctx, c.NodeID, valueobjects.NewPosition(c.X, c.Y))

	case commands.DeleteNodeCommand:
		_, err := h.store.RemoveNode(ctx, c.NodeID)
		return err

	case commands.ConnectNodesCommand:
		_, err := h.store.Connect(ctx, c.SourceID, c.TargetID, c.SourceHandle)
		return err

	case commands.DeleteEdgeCommand:
		return h.sync.DeleteEdge(ctx, c.EdgeID)

	case commands.SelectNodeCommand:
		return h.store.SelectNode(c.NodeID)

	case commands.ClearSelectionCommand:
		h.store.ClearSelection()
		return nil

	case commands.ClearSessionCommand:
		h.workflow.ClearSession(ctx)
		return nil

	case commands.RenameWorkflowCommand:
		return h.store.Rename(ctx, c.Name)

	case commands.SaveWorkflowCommand:
		_, err := h.workflow.SaveToHistory(ctx, c.UserID)
		return err

	case commands.RestoreWorkflowCommand:
		return h.workflow.RestoreFromHistory(ctx, c.UserID, aggregates.WorkflowID(c.WorkflowID))

	default:
		return fmt.Errorf("unsupported command type %T", cmd)
	}
}

func mustID(id string) valueobjects.NodeID {
	nodeID, _ := valueobjects.NewNodeIDFromString(id)
	return nodeID
}
