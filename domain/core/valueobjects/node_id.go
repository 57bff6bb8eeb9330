package valueobjects

import (
	"errors"
	"fmt"
	"time"
)

// NodeID is a value object identifying a workflow step.
// Backend payloads may supply arbitrary string ids, so unlike a UUID-backed
// identifier the only hard rule is non-emptiness; missing ids are synthesized
// deterministically so they stay stable across re-renders of the same graph.
type NodeID struct {
	value string
}

// NewStepID derives an id from a 1-based position index ("step_1", "step_2"...).
// Used when a backend node arrives without an id.
func NewStepID(index int) NodeID {
	return NodeID{value: fmt.Sprintf("step_%d", index)}
}

// NewTimestampID derives an id from the current wall clock, for nodes created
// interactively (palette drops). Uniqueness holds within one editing session.
func NewTimestampID() NodeID {
	return NodeID{value: fmt.Sprintf("node-%d", time.Now().UnixNano())}
}

// NewNodeIDFromString wraps an existing id
func NewNodeIDFromString(id string) (NodeID, error) {
	if id == "" {
		return NodeID{}, errors.New("node ID cannot be empty")
	}
	return NodeID{value: id}, nil
}

// String returns the string representation of the NodeID
func (id NodeID) String() string {
	return id.value
}

// Equals checks if two NodeIDs are equal
func (id NodeID) Equals(other NodeID) bool {
	return id.value == other.value
}

// IsZero checks if the NodeID is the zero value
func (id NodeID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id NodeID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *NodeID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("NodeID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}
