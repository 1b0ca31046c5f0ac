package events

import (
	"time"

	"slidecanvas/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// Event type names
const (
	TypeNodeCreated           = "node.created"
	TypeNodeUpdated           = "node.updated"
	TypeNodeMoved             = "node.moved"
	TypeNodeDeleted           = "node.deleted"
	TypeConnectionCreated     = "connection.created"
	TypeConnectionDeleted     = "connection.deleted"
	TypePresentationGenerated = "presentation.generated"
)

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

func newBase(aggregateID valueobjects.ProjectID, eventType string, version int, timestamp time.Time) BaseEvent {
	return BaseEvent{
		AggregateID: aggregateID.String(),
		EventType:   eventType,
		Timestamp:   timestamp,
		Version:     version,
	}
}

// Node Events

// NodeCreated is raised when a node is placed on the canvas
type NodeCreated struct {
	BaseEvent
	NodeID   valueobjects.NodeID `json:"node_id"`
	NodeType string              `json:"node_type"`
	Position valueobjects.Point  `json:"position"`
}

// NewNodeCreated creates a NodeCreated event
func NewNodeCreated(projectID valueobjects.ProjectID, version int, nodeID valueobjects.NodeID, nodeType string, position valueobjects.Point, timestamp time.Time) NodeCreated {
	return NodeCreated{
		BaseEvent: newBase(projectID, TypeNodeCreated, version, timestamp),
		NodeID:    nodeID,
		NodeType:  nodeType,
		Position:  position,
	}
}

// NodeUpdated is raised when node fields are changed through an update
type NodeUpdated struct {
	BaseEvent
	NodeID valueobjects.NodeID `json:"node_id"`
	Fields []string            `json:"fields"`
}

// NewNodeUpdated creates a NodeUpdated event
func NewNodeUpdated(projectID valueobjects.ProjectID, version int, nodeID valueobjects.NodeID, fields []string, timestamp time.Time) NodeUpdated {
	return NodeUpdated{
		BaseEvent: newBase(projectID, TypeNodeUpdated, version, timestamp),
		NodeID:    nodeID,
		Fields:    fields,
	}
}

// NodeMoved is raised when a drag gesture ends
type NodeMoved struct {
	BaseEvent
	NodeID      valueobjects.NodeID `json:"node_id"`
	OldPosition valueobjects.Point  `json:"old_position"`
	NewPosition valueobjects.Point  `json:"new_position"`
}

// NewNodeMoved creates a NodeMoved event
func NewNodeMoved(projectID valueobjects.ProjectID, version int, nodeID valueobjects.NodeID, oldPos, newPos valueobjects.Point, timestamp time.Time) NodeMoved {
	return NodeMoved{
		BaseEvent:   newBase(projectID, TypeNodeMoved, version, timestamp),
		NodeID:      nodeID,
		OldPosition: oldPos,
		NewPosition: newPos,
	}
}

// NodeDeleted is raised when a node and its incident connections are removed
type NodeDeleted struct {
	BaseEvent
	NodeID               valueobjects.NodeID         `json:"node_id"`
	RemovedConnectionIDs []valueobjects.ConnectionID `json:"removed_connection_ids,omitempty"`
}

// NewNodeDeleted creates a NodeDeleted event
func NewNodeDeleted(projectID valueobjects.ProjectID, version int, nodeID valueobjects.NodeID, removed []valueobjects.ConnectionID, timestamp time.Time) NodeDeleted {
	return NodeDeleted{
		BaseEvent:            newBase(projectID, TypeNodeDeleted, version, timestamp),
		NodeID:               nodeID,
		RemovedConnectionIDs: removed,
	}
}

// Connection Events

// ConnectionCreated is raised when two nodes are connected
type ConnectionCreated struct {
	BaseEvent
	ConnectionID   valueobjects.ConnectionID `json:"connection_id"`
	StartNodeID    valueobjects.NodeID       `json:"start_node_id"`
	EndNodeID      valueobjects.NodeID       `json:"end_node_id"`
	ConnectionType string                    `json:"connection_type"`
}

// NewConnectionCreated creates a ConnectionCreated event
func NewConnectionCreated(projectID valueobjects.ProjectID, version int, connID valueobjects.ConnectionID, start, end valueobjects.NodeID, connType string, timestamp time.Time) ConnectionCreated {
	return ConnectionCreated{
		BaseEvent:      newBase(projectID, TypeConnectionCreated, version, timestamp),
		ConnectionID:   connID,
		StartNodeID:    start,
		EndNodeID:      end,
		ConnectionType: connType,
	}
}

// ConnectionDeleted is raised when a connection is removed explicitly
type ConnectionDeleted struct {
	BaseEvent
	ConnectionID valueobjects.ConnectionID `json:"connection_id"`
}

// NewConnectionDeleted creates a ConnectionDeleted event
func NewConnectionDeleted(projectID valueobjects.ProjectID, version int, connID valueobjects.ConnectionID, timestamp time.Time) ConnectionDeleted {
	return ConnectionDeleted{
		BaseEvent:    newBase(projectID, TypeConnectionDeleted, version, timestamp),
		ConnectionID: connID,
	}
}

// Presentation Events

// PresentationGenerated is raised after a deck has been rendered
type PresentationGenerated struct {
	BaseEvent
	EngineID   string `json:"engine_id"`
	SlideCount int    `json:"slide_count"`
	FlowStyle  string `json:"flow_style"`
	Bytes      int    `json:"bytes"`
}

// NewPresentationGenerated creates a PresentationGenerated event
func NewPresentationGenerated(projectID valueobjects.ProjectID, version int, engineID string, slideCount int, flowStyle string, size int, timestamp time.Time) PresentationGenerated {
	return PresentationGenerated{
		BaseEvent:  newBase(projectID, TypePresentationGenerated, version, timestamp),
		EngineID:   engineID,
		SlideCount: slideCount,
		FlowStyle:  flowStyle,
		Bytes:      size,
	}
}
