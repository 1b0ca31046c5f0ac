package entities

import (
	"fmt"
	"time"

	"slidecanvas/domain/core/valueobjects"
	pkgerrors "slidecanvas/pkg/errors"
)

// ConnectionType distinguishes narrative flow links from cross references
type ConnectionType string

const (
	ConnectionTypeFlow      ConnectionType = "flow"
	ConnectionTypeReference ConnectionType = "reference"
)

// IsValid reports whether t is a known connection type.
func (t ConnectionType) IsValid() bool {
	return t == ConnectionTypeFlow || t == ConnectionTypeReference
}

// ArrowHead controls how the end of a connection is drawn
type ArrowHead string

const (
	ArrowHeadArrow ArrowHead = "arrow"
	ArrowHeadNone  ArrowHead = "none"
)

// ConnectionStyle describes how a connection is stroked
type ConnectionStyle struct {
	Color string    `json:"color" yaml:"color"`
	Width float64   `json:"width" yaml:"width"`
	Dash  []float64 `json:"dash,omitempty" yaml:"dash,omitempty"`
	Arrow ArrowHead `json:"arrow" yaml:"arrow"`
}

// DefaultConnectionStyle returns the stroke used when none is given.
func DefaultConnectionStyle() ConnectionStyle {
	return ConnectionStyle{Color: "#4a90d9", Width: 2, Arrow: ArrowHeadArrow}
}

// withDefaults fills unset fields from DefaultConnectionStyle.
func (s ConnectionStyle) withDefaults() ConnectionStyle {
	def := DefaultConnectionStyle()
	if s.Color == "" {
		s.Color = def.Color
	}
	if s.Width <= 0 {
		s.Width = def.Width
	}
	if s.Arrow == "" {
		s.Arrow = def.Arrow
	}
	s.Dash = append([]float64(nil), s.Dash...)
	return s
}

// Connection is a directed link from a start node to an end node
type Connection struct {
	id             valueobjects.ConnectionID
	startNodeID    valueobjects.NodeID
	endNodeID      valueobjects.NodeID
	connectionType ConnectionType
	style          ConnectionStyle
	createdAt      time.Time
}

// NewConnection creates a connection with validation. Self-loops are rejected.
func NewConnection(
	id valueobjects.ConnectionID,
	start, end valueobjects.NodeID,
	connectionType ConnectionType,
	style ConnectionStyle,
) (*Connection, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("connection ID is required")
	}
	if start.IsZero() || end.IsZero() {
		return nil, pkgerrors.NewValidationError("connection endpoints are required")
	}
	if start.Equals(end) {
		return nil, pkgerrors.NewValidationError("cannot connect a node to itself").
			WithCode(pkgerrors.CodeSelfLoop)
	}
	if connectionType == "" {
		connectionType = ConnectionTypeFlow
	}
	if !connectionType.IsValid() {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("unknown connection type %q", connectionType))
	}

	return &Connection{
		id:             id,
		startNodeID:    start,
		endNodeID:      end,
		connectionType: connectionType,
		style:          style.withDefaults(),
		createdAt:      time.Now(),
	}, nil
}

func (c *Connection) ID() valueobjects.ConnectionID    { return c.id }
func (c *Connection) StartNodeID() valueobjects.NodeID { return c.startNodeID }
func (c *Connection) EndNodeID() valueobjects.NodeID   { return c.endNodeID }
func (c *Connection) Type() ConnectionType             { return c.connectionType }
func (c *Connection) CreatedAt() time.Time             { return c.createdAt }

// Style returns a copy of the connection style
func (c *Connection) Style() ConnectionStyle {
	s := c.style
	s.Dash = append([]float64(nil), c.style.Dash...)
	return s
}

// Touches reports whether the node is either endpoint.
func (c *Connection) Touches(nodeID valueobjects.NodeID) bool {
	return c.startNodeID.Equals(nodeID) || c.endNodeID.Equals(nodeID)
}

// Links reports whether the connection joins a and b in either direction.
func (c *Connection) Links(a, b valueobjects.NodeID) bool {
	return (c.startNodeID.Equals(a) && c.endNodeID.Equals(b)) ||
		(c.startNodeID.Equals(b) && c.endNodeID.Equals(a))
}

// Clone returns an independent copy of the connection.
func (c *Connection) Clone() *Connection {
	out := *c
	out.style = c.Style()
	return &out
}

// ConnectionData is the serialized form of a connection
type ConnectionData struct {
	ID          string          `json:"id" yaml:"id"`
	StartNodeID string          `json:"start_node_id" yaml:"start_node_id"`
	EndNodeID   string          `json:"end_node_id" yaml:"end_node_id"`
	Type        ConnectionType  `json:"type" yaml:"type"`
	Style       ConnectionStyle `json:"style" yaml:"style"`
	CreatedAt   time.Time       `json:"created_at,omitempty" yaml:"-"`
}

// Snapshot returns the serialized form of the connection.
func (c *Connection) Snapshot() ConnectionData {
	return ConnectionData{
		ID:          c.id.String(),
		StartNodeID: c.startNodeID.String(),
		EndNodeID:   c.endNodeID.String(),
		Type:        c.connectionType,
		Style:       c.Style(),
		CreatedAt:   c.createdAt,
	}
}

// ReconstructConnection rebuilds a connection from its serialized form.
func ReconstructConnection(data ConnectionData) (*Connection, error) {
	id, err := valueobjects.NewConnectionIDFromString(data.ID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	start, err := valueobjects.NewNodeIDFromString(data.StartNodeID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	end, err := valueobjects.NewNodeIDFromString(data.EndNodeID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	conn, err := NewConnection(id, start, end, data.Type, data.Style)
	if err != nil {
		return nil, err
	}
	if !data.CreatedAt.IsZero() {
		conn.createdAt = data.CreatedAt
	}
	return conn, nil
}
