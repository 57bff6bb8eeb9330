package events

import (
	"time"

	"flowbuilder/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// WorkflowReplaced is raised when the whole graph is swapped out by a chat
// response, a history load, or a canvas flush.
type WorkflowReplaced struct {
	BaseEvent
	WorkflowName string `json:"workflow_name"`
	NodeCount    int    `json:"node_count"`
	EdgeCount    int    `json:"edge_count"`
	Source       string `json:"source"`
}

// NewWorkflowReplaced creates a WorkflowReplaced event
func NewWorkflowReplaced(workflowID, name, source string, nodeCount, edgeCount int, timestamp time.Time) WorkflowReplaced {
	return WorkflowReplaced{
		BaseEvent: BaseEvent{
			AggregateID: workflowID,
			EventType:   "workflow.replaced",
			Timestamp:   timestamp,
			Version:     1,
		},
		WorkflowName: name,
		NodeCount:    nodeCount,
		EdgeCount:    edgeCount,
		Source:       source,
	}
}

// WorkflowCleared is raised when the editor is reset to an empty workflow
type WorkflowCleared struct {
	BaseEvent
	SessionToken string `json:"session_token"`
}

// NewWorkflowCleared creates a WorkflowCleared event
func NewWorkflowCleared(workflowID, sessionToken string, timestamp time.Time) WorkflowCleared {
	return WorkflowCleared{
		BaseEvent: BaseEvent{
			AggregateID: workflowID,
			EventType:   "workflow.cleared",
			Timestamp:   timestamp,
			Version:     1,
		},
		SessionToken: sessionToken,
	}
}

// NodeAdded is raised when a node is dropped onto the canvas
type NodeAdded struct {
	BaseEvent
	NodeID valueobjects.NodeID   `json:"node_id"`
	Kind   valueobjects.NodeKind `json:"kind"`
	Label  string                `json:"label"`
}

// NewNodeAdded creates a NodeAdded event
func NewNodeAdded(workflowID string, nodeID valueobjects.NodeID, kind valueobjects.NodeKind, label string, timestamp time.Time) NodeAdded {
	return NodeAdded{
		BaseEvent: BaseEvent{
			AggregateID: workflowID,
			EventType:   "workflow.node_added",
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID: nodeID,
		Kind:   kind,
		Label:  label,
	}
}

// NodeConfigUpdated is raised when a node's config bag receives a patch
type NodeConfigUpdated struct {
	BaseEvent
	NodeID valueobjects.NodeID `json:"node_id"`
	Fields []string            `json:"fields"`
}

// NewNodeConfigUpdated creates a NodeConfigUpdated event
func NewNodeConfigUpdated(workflowID string, nodeID valueobjects.NodeID, fields []string, timestamp time.Time) NodeConfigUpdated {
	return NodeConfigUpdated{
		BaseEvent: BaseEvent{
			AggregateID: workflowID,
			EventType:   "workflow.node_config_updated",
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID: nodeID,
		Fields: fields,
	}
}

// NodeRemoved is raised when a node is deleted; RemovedEdges lists the edge
// ids that were cascade-deleted with it.
type NodeRemoved struct {
	BaseEvent
	NodeID       valueobjects.NodeID `json:"node_id"`
	RemovedEdges []string            `json:"removed_edges"`
}

// NewNodeRemoved creates a NodeRemoved event
func NewNodeRemoved(workflowID string, nodeID valueobjects.NodeID, removedEdges []string, timestamp time.Time) NodeRemoved {
	return NodeRemoved{
		BaseEvent: BaseEvent{
			AggregateID: workflowID,
			EventType:   "workflow.node_removed",
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID:       nodeID,
		RemovedEdges: removedEdges,
	}
}

// NodesConnected is raised when an edge is drawn between two nodes
type NodesConnected struct {
	BaseEvent
	EdgeID       string              `json:"edge_id"`
	SourceID     valueobjects.NodeID `json:"source_id"`
	TargetID     valueobjects.NodeID `json:"target_id"`
	SourceHandle string              `json:"source_handle,omitempty"`
}

// NewNodesConnected creates a NodesConnected event
func NewNodesConnected(workflowID, edgeID string, sourceID, targetID valueobjects.NodeID, sourceHandle string, timestamp time.Time) NodesConnected {
	return NodesConnected{
		BaseEvent: BaseEvent{
			AggregateID: workflowID,
			EventType:   "workflow.nodes_connected",
			Timestamp:   timestamp,
			Version:     1,
		},
		EdgeID:       edgeID,
		SourceID:     sourceID,
		TargetID:     targetID,
		SourceHandle: sourceHandle,
	}
}

// EdgeRemoved is raised when an edge is deleted on its own
type EdgeRemoved struct {
	BaseEvent
	EdgeID string `json:"edge_id"`
}

// NewEdgeRemoved creates an EdgeRemoved event
func NewEdgeRemoved(workflowID, edgeID string, timestamp time.Time) EdgeRemoved {
	return EdgeRemoved{
		BaseEvent: BaseEvent{
			AggregateID: workflowID,
			EventType:   "workflow.edge_removed",
			Timestamp:   timestamp,
			Version:     1,
		},
		EdgeID: edgeID,
	}
}

// WorkflowRenamed is raised when the workflow's display name changes
type WorkflowRenamed struct {
	BaseEvent
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

// NewWorkflowRenamed creates a WorkflowRenamed event
func NewWorkflowRenamed(workflowID, oldName, newName string, timestamp time.Time) WorkflowRenamed {
	return WorkflowRenamed{
		BaseEvent: BaseEvent{
			AggregateID: workflowID,
			EventType:   "workflow.renamed",
			Timestamp:   timestamp,
			Version:     1,
		},
		OldName: oldName,
		NewName: newName,
	}
}
