package entities

import (
	"fmt"
	"reflect"
	"time"

	"slidecanvas/domain/core/valueobjects"
	pkgerrors "slidecanvas/pkg/errors"
)

// NodeType is the kind of presentation unit a node holds
type NodeType string

const (
	NodeTypeText    NodeType = "text"
	NodeTypeImage   NodeType = "image"
	NodeTypeCode    NodeType = "code"
	NodeTypeHeading NodeType = "heading"
	NodeTypeList    NodeType = "list"
	NodeTypeTable   NodeType = "table"
	NodeTypeChart   NodeType = "chart"
)

// AllNodeTypes lists every node type in toolbar order.
var AllNodeTypes = []NodeType{
	NodeTypeText, NodeTypeHeading, NodeTypeImage, NodeTypeCode,
	NodeTypeList, NodeTypeTable, NodeTypeChart,
}

// IsValid reports whether t is a known node type.
func (t NodeType) IsValid() bool {
	for _, known := range AllNodeTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseNodeType validates a node type name.
func ParseNodeType(s string) (NodeType, error) {
	t := NodeType(s)
	if !t.IsValid() {
		return "", pkgerrors.NewValidationError(fmt.Sprintf("unknown node type %q", s))
	}
	return t, nil
}

// Content is the payload of a node. Which fields are meaningful depends on
// the node type.
type Content struct {
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	// heading
	Level int `json:"level,omitempty" yaml:"level,omitempty"`

	// image
	URL     string `json:"url,omitempty" yaml:"url,omitempty"`
	Alt     string `json:"alt,omitempty" yaml:"alt,omitempty"`
	Caption string `json:"caption,omitempty" yaml:"caption,omitempty"`

	// code
	Code     string `json:"code,omitempty" yaml:"code,omitempty"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	// list
	Items   []string `json:"items,omitempty" yaml:"items,omitempty"`
	Ordered bool     `json:"ordered,omitempty" yaml:"ordered,omitempty"`

	// table
	Headers []string   `json:"headers,omitempty" yaml:"headers,omitempty"`
	Rows    [][]string `json:"rows,omitempty" yaml:"rows,omitempty"`

	// chart
	ChartType string    `json:"chart_type,omitempty" yaml:"chart_type,omitempty"`
	Labels    []string  `json:"labels,omitempty" yaml:"labels,omitempty"`
	Values    []float64 `json:"values,omitempty" yaml:"values,omitempty"`
}

// IsZero reports whether no content field is set.
func (c Content) IsZero() bool {
	return reflect.ValueOf(c).IsZero()
}

// Length approximates the amount of text the content carries.
func (c Content) Length() int {
	n := len(c.Text) + len(c.URL) + len(c.Alt) + len(c.Caption) + len(c.Code)
	for _, item := range c.Items {
		n += len(item)
	}
	for _, h := range c.Headers {
		n += len(h)
	}
	for _, row := range c.Rows {
		for _, cell := range row {
			n += len(cell)
		}
	}
	for _, l := range c.Labels {
		n += len(l)
	}
	return n
}

func (c Content) clone() Content {
	out := c
	out.Items = append([]string(nil), c.Items...)
	out.Headers = append([]string(nil), c.Headers...)
	out.Labels = append([]string(nil), c.Labels...)
	out.Values = append([]float64(nil), c.Values...)
	if c.Rows != nil {
		out.Rows = make([][]string, len(c.Rows))
		for i, row := range c.Rows {
			out.Rows[i] = append([]string(nil), row...)
		}
	}
	return out
}

// DefaultContent returns the placeholder content a new node of type t gets.
func DefaultContent(t NodeType) Content {
	switch t {
	case NodeTypeHeading:
		return Content{Text: "New Heading", Level: 1}
	case NodeTypeImage:
		return Content{Alt: "Image", Caption: ""}
	case NodeTypeCode:
		return Content{Code: "// your code here", Language: "javascript"}
	case NodeTypeList:
		return Content{Items: []string{"Item 1", "Item 2", "Item 3"}}
	case NodeTypeTable:
		return Content{
			Headers: []string{"Column 1", "Column 2"},
			Rows:    [][]string{{"", ""}, {"", ""}},
		}
	case NodeTypeChart:
		return Content{ChartType: "bar", Labels: []string{"A", "B", "C"}, Values: []float64{3, 5, 2}}
	default:
		return Content{Text: "New text"}
	}
}

// Style holds optional visual overrides for a node
type Style struct {
	BackgroundColor string  `json:"background_color,omitempty" yaml:"background_color,omitempty"`
	BorderColor     string  `json:"border_color,omitempty" yaml:"border_color,omitempty"`
	TextAlign       string  `json:"text_align,omitempty" yaml:"text_align,omitempty"`
	FontSize        float64 `json:"font_size,omitempty" yaml:"font_size,omitempty"`
}

// IsZero reports whether no style field is set.
func (s Style) IsZero() bool {
	return s == Style{}
}

// DefaultStyle returns the style a new node of type t gets.
func DefaultStyle(t NodeType) Style {
	s := Style{
		BackgroundColor: "#ffffff",
		BorderColor:     "#d0d7de",
		TextAlign:       "left",
		FontSize:        16,
	}
	switch t {
	case NodeTypeHeading:
		s.TextAlign = "center"
		s.FontSize = 32
	case NodeTypeCode:
		s.BackgroundColor = "#1e1e1e"
		s.BorderColor = "#3c3c3c"
		s.FontSize = 14
	case NodeTypeImage, NodeTypeChart:
		s.TextAlign = "center"
	}
	return s
}

// Node is a placed presentation unit on the canvas
type Node struct {
	id        valueobjects.NodeID
	nodeType  NodeType
	position  valueobjects.Point
	size      valueobjects.Size
	content   Content
	style     Style
	order     *int
	createdAt time.Time
	updatedAt time.Time
	version   int
}

// NewNode creates a node with validation
func NewNode(
	id valueobjects.NodeID,
	nodeType NodeType,
	position valueobjects.Point,
	size valueobjects.Size,
	content Content,
	style Style,
) (*Node, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("node ID is required")
	}
	if !nodeType.IsValid() {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("unknown node type %q", nodeType))
	}
	if !position.IsFinite() {
		return nil, pkgerrors.NewValidationError("node position must be finite").
			WithCode(pkgerrors.CodeInvalidPosition)
	}
	if err := size.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Node{
		id:        id,
		nodeType:  nodeType,
		position:  position,
		size:      size,
		content:   content.clone(),
		style:     style,
		createdAt: now,
		updatedAt: now,
		version:   1,
	}, nil
}

// ID returns the node's identifier
func (n *Node) ID() valueobjects.NodeID { return n.id }

// Type returns the node type
func (n *Node) Type() NodeType { return n.nodeType }

// Position returns the top-left corner in world space
func (n *Node) Position() valueobjects.Point { return n.position }

// Size returns the node dimensions
func (n *Node) Size() valueobjects.Size { return n.size }

// Content returns a copy of the node content
func (n *Node) Content() Content { return n.content.clone() }

// Style returns the node style
func (n *Node) Style() Style { return n.style }

// Order returns the explicit ordering hint, if any
func (n *Node) Order() (int, bool) {
	if n.order == nil {
		return 0, false
	}
	return *n.order, true
}

func (n *Node) CreatedAt() time.Time { return n.createdAt }
func (n *Node) UpdatedAt() time.Time { return n.updatedAt }
func (n *Node) Version() int         { return n.version }

// Bounds returns the world-space bounding rectangle.
func (n *Node) Bounds() valueobjects.Rect {
	return valueobjects.Rect{X: n.position.X, Y: n.position.Y, Width: n.size.Width, Height: n.size.Height}
}

// Center returns the world-space centre point.
func (n *Node) Center() valueobjects.Point {
	return n.Bounds().Center()
}

// ContainsPoint reports whether a world point hits the node.
func (n *Node) ContainsPoint(p valueobjects.Point) bool {
	return n.Bounds().Contains(p)
}

// MoveTo moves the node to a new position
func (n *Node) MoveTo(position valueobjects.Point) error {
	if !position.IsFinite() {
		return pkgerrors.NewValidationError("node position must be finite").
			WithCode(pkgerrors.CodeInvalidPosition)
	}
	n.position = position
	n.touch()
	return nil
}

// Resize changes the node dimensions
func (n *Node) Resize(size valueobjects.Size) error {
	if err := size.Validate(); err != nil {
		return err
	}
	n.size = size
	n.touch()
	return nil
}

// ChangeType switches the node type, keeping its content
func (n *Node) ChangeType(t NodeType) error {
	if !t.IsValid() {
		return pkgerrors.NewValidationError(fmt.Sprintf("unknown node type %q", t))
	}
	n.nodeType = t
	n.touch()
	return nil
}

// UpdateContent replaces the node content
func (n *Node) UpdateContent(content Content) {
	n.content = content.clone()
	n.touch()
}

// UpdateStyle replaces the node style
func (n *Node) UpdateStyle(style Style) {
	n.style = style
	n.touch()
}

// SetOrder sets or clears (nil) the explicit ordering hint
func (n *Node) SetOrder(order *int) {
	if order == nil {
		n.order = nil
	} else {
		v := *order
		n.order = &v
	}
	n.touch()
}

// Clone returns an independent copy of the node.
func (n *Node) Clone() *Node {
	c := *n
	c.content = n.content.clone()
	if n.order != nil {
		v := *n.order
		c.order = &v
	}
	return &c
}

func (n *Node) touch() {
	n.updatedAt = time.Now()
	n.version++
}

// NodeData is the serialized form of a node
type NodeData struct {
	ID        string             `json:"id" yaml:"id"`
	Type      NodeType           `json:"type" yaml:"type"`
	Position  valueobjects.Point `json:"position" yaml:"position"`
	Size      valueobjects.Size  `json:"size" yaml:"size"`
	Content   Content            `json:"content" yaml:"content"`
	Style     Style              `json:"style" yaml:"style"`
	Order     *int               `json:"order,omitempty" yaml:"order,omitempty"`
	CreatedAt time.Time          `json:"created_at,omitempty" yaml:"-"`
	UpdatedAt time.Time          `json:"updated_at,omitempty" yaml:"-"`
	Version   int                `json:"version,omitempty" yaml:"-"`
}

// Snapshot returns the serialized form of the node.
func (n *Node) Snapshot() NodeData {
	data := NodeData{
		ID:        n.id.String(),
		Type:      n.nodeType,
		Position:  n.position,
		Size:      n.size,
		Content:   n.content.clone(),
		Style:     n.style,
		CreatedAt: n.createdAt,
		UpdatedAt: n.updatedAt,
		Version:   n.version,
	}
	if n.order != nil {
		v := *n.order
		data.Order = &v
	}
	return data
}

// ReconstructNode rebuilds a node from its serialized form, enforcing the
// same invariants as NewNode.
func ReconstructNode(data NodeData) (*Node, error) {
	id, err := valueobjects.NewNodeIDFromString(data.ID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	node, err := NewNode(id, data.Type, data.Position, data.Size, data.Content, data.Style)
	if err != nil {
		return nil, err
	}
	if data.Order != nil {
		v := *data.Order
		node.order = &v
	}
	if !data.CreatedAt.IsZero() {
		node.createdAt = data.CreatedAt
	}
	if !data.UpdatedAt.IsZero() {
		node.updatedAt = data.UpdatedAt
	}
	if data.Version > 0 {
		node.version = data.Version
	}
	return node, nil
}
