package valueobjects

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
)

const maxIDLength = 128

// NodeID is a value object representing a unique node identifier
// Value objects are immutable and have no identity beyond their value
type NodeID struct {
	value string
}

// NewNodeID creates a new random NodeID
func NewNodeID() NodeID {
	return NodeID{value: uuid.New().String()}
}

// NewNodeIDFromString creates a NodeID from an existing string
func NewNodeIDFromString(id string) (NodeID, error) {
	if err := validateID("node", id); err != nil {
		return NodeID{}, err
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
	return json.Marshal(id.value)
}

// UnmarshalJSON implements json.Unmarshaler
func (id *NodeID) UnmarshalJSON(data []byte) error {
	return unmarshalID(data, &id.value)
}

// ConnectionID identifies a connection between two nodes
type ConnectionID struct {
	value string
}

// NewConnectionID creates a new random ConnectionID
func NewConnectionID() ConnectionID {
	return ConnectionID{value: uuid.New().String()}
}

// NewConnectionIDFromString creates a ConnectionID from an existing string
func NewConnectionIDFromString(id string) (ConnectionID, error) {
	if err := validateID("connection", id); err != nil {
		return ConnectionID{}, err
	}
	return ConnectionID{value: id}, nil
}

func (id ConnectionID) String() string { return id.value }
func (id ConnectionID) Equals(other ConnectionID) bool { return id.value == other.value }
func (id ConnectionID) IsZero() bool { return id.value == "" }

// MarshalJSON implements json.Marshaler
func (id ConnectionID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

// UnmarshalJSON implements json.Unmarshaler
func (id *ConnectionID) UnmarshalJSON(data []byte) error {
	return unmarshalID(data, &id.value)
}

// ProjectID identifies a saved canvas project
type ProjectID struct {
	value string
}

// NewProjectID creates a new random ProjectID
func NewProjectID() ProjectID {
	return ProjectID{value: uuid.New().String()}
}

// NewProjectIDFromString creates a ProjectID from an existing string
func NewProjectIDFromString(id string) (ProjectID, error) {
	if err := validateID("project", id); err != nil {
		return ProjectID{}, err
	}
	return ProjectID{value: id}, nil
}

func (id ProjectID) String() string { return id.value }
func (id ProjectID) Equals(other ProjectID) bool { return id.value == other.value }
func (id ProjectID) IsZero() bool { return id.value == "" }

// MarshalJSON implements json.Marshaler
func (id ProjectID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

// UnmarshalJSON implements json.Unmarshaler
func (id *ProjectID) UnmarshalJSON(data []byte) error {
	return unmarshalID(data, &id.value)
}

// validateID accepts any non-blank identifier. Identifiers coming from saved
// documents and templates are not required to be UUIDs.
func validateID(kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New(kind + " ID cannot be empty")
	}
	if len(id) > maxIDLength {
		return errors.New(kind + " ID is too long")
	}
	return nil
}

func unmarshalID(data []byte, dst *string) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("ID must be a string")
	}
	*dst = s
	return nil
}
