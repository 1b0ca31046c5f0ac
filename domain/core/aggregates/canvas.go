package aggregates

import (
	"fmt"
	"time"

	"slidecanvas/domain/config"
	"slidecanvas/domain/core/entities"
	"slidecanvas/domain/core/valueobjects"
	"slidecanvas/domain/events"
	pkgerrors "slidecanvas/pkg/errors"
)

// NodeSpec describes a node to create. Zero-valued optional fields are filled
// with the defaults for the node type.
type NodeSpec struct {
	ID       string
	Type     entities.NodeType
	Position valueobjects.Point
	Size     *valueobjects.Size
	Content  *entities.Content
	Style    *entities.Style
	Order    *int
}

// NodeUpdate is a shallow patch; nil fields are left untouched.
type NodeUpdate struct {
	Type       *entities.NodeType
	Position   *valueobjects.Point
	Size       *valueobjects.Size
	Content    *entities.Content
	Style      *entities.Style
	Order      *int
	ClearOrder bool
}

// IsEmpty reports whether the update changes nothing.
func (u NodeUpdate) IsEmpty() bool {
	return u.Type == nil && u.Position == nil && u.Size == nil && u.Content == nil &&
		u.Style == nil && u.Order == nil && !u.ClearOrder
}

// ConnectionSpec describes a connection to create
type ConnectionSpec struct {
	ID    string
	Type  entities.ConnectionType
	Style *entities.ConnectionStyle
}

// CanvasData is the serialized node and connection set of a canvas
type CanvasData struct {
	Nodes       []entities.NodeData       `json:"nodes" yaml:"nodes"`
	Connections []entities.ConnectionData `json:"connections" yaml:"connections"`
}

// Canvas owns the nodes, connections and selection of one project.
// Nodes are stored arena style: a slice in paint order (last is topmost) and
// an id index into it. Callers only ever receive copies.
//
// A Canvas is not safe for concurrent use.
type Canvas struct {
	projectID valueobjects.ProjectID
	cfg       *config.DomainConfig

	nodes     []*entities.Node
	nodeIndex map[valueobjects.NodeID]int

	connections []*entities.Connection
	connIndex   map[valueobjects.ConnectionID]int

	selection []valueobjects.NodeID
	selected  map[valueobjects.NodeID]struct{}

	version int
	events  []events.DomainEvent
}

// NewCanvas creates an empty canvas for a project
func NewCanvas(projectID valueobjects.ProjectID, cfg *config.DomainConfig) *Canvas {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &Canvas{
		projectID: projectID,
		cfg:       cfg,
		nodeIndex: make(map[valueobjects.NodeID]int),
		connIndex: make(map[valueobjects.ConnectionID]int),
		selected:  make(map[valueobjects.NodeID]struct{}),
		events:    []events.DomainEvent{},
	}
}

// ProjectID returns the owning project
func (c *Canvas) ProjectID() valueobjects.ProjectID { return c.projectID }

// Config returns the domain rules the canvas enforces
func (c *Canvas) Config() *config.DomainConfig { return c.cfg }

// Version counts committed mutations
func (c *Canvas) Version() int { return c.version }

// NodeCount returns the number of nodes
func (c *Canvas) NodeCount() int { return len(c.nodes) }

// ConnectionCount returns the number of connections
func (c *Canvas) ConnectionCount() int { return len(c.connections) }

// CreateNode validates the NodeSpec, fills type defaults and places the node on
// top of the paint order.
func (c *Canvas) CreateNode(spec NodeSpec) (*entities.Node, error) {
	node, err := c.buildNode(spec)
	if err != nil {
		return nil, err
	}
	c.insertNode(node)
	c.bump()
	c.addEvent(events.NewNodeCreated(c.projectID, c.version, node.ID(), string(node.Type()), node.Position(), time.Now()))
	return node.Clone(), nil
}

func (c *Canvas) buildNode(spec NodeSpec) (*entities.Node, error) {
	if c.cfg.MaxNodes > 0 && len(c.nodes) >= c.cfg.MaxNodes {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("canvas is limited to %d nodes", c.cfg.MaxNodes)).
			WithCode(pkgerrors.CodeLimitExceeded)
	}
	if spec.Type == "" {
		spec.Type = entities.NodeTypeText
	}
	if !spec.Type.IsValid() {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("unknown node type %q", spec.Type))
	}

	id := valueobjects.NewNodeID()
	if spec.ID != "" {
		parsed, err := valueobjects.NewNodeIDFromString(spec.ID)
		if err != nil {
			return nil, pkgerrors.NewValidationError(err.Error())
		}
		if _, exists := c.nodeIndex[parsed]; exists {
			return nil, pkgerrors.NewConflictError(fmt.Sprintf("node %s already exists", spec.ID)).
				WithCode(pkgerrors.CodeDuplicateID)
		}
		id = parsed
	}

	var size valueobjects.Size
	if spec.Size != nil {
		size = *spec.Size
	} else {
		d := c.cfg.DefaultSize(string(spec.Type))
		size = valueobjects.Size{Width: d.Width, Height: d.Height}
	}
	content := entities.DefaultContent(spec.Type)
	if spec.Content != nil {
		content = *spec.Content
	}
	if err := c.checkContent(content); err != nil {
		return nil, err
	}
	style := entities.DefaultStyle(spec.Type)
	if spec.Style != nil {
		style = *spec.Style
	}

	node, err := entities.NewNode(id, spec.Type, spec.Position, size, content, style)
	if err != nil {
		return nil, err
	}
	if spec.Order != nil {
		node.SetOrder(spec.Order)
	}
	return node, nil
}

func (c *Canvas) checkContent(content entities.Content) error {
	if c.cfg.MaxContentLength > 0 && content.Length() > c.cfg.MaxContentLength {
		return pkgerrors.NewValidationError(fmt.Sprintf("content exceeds %d characters", c.cfg.MaxContentLength)).
			WithCode(pkgerrors.CodeLimitExceeded)
	}
	return nil
}

func (c *Canvas) insertNode(node *entities.Node) {
	c.nodeIndex[node.ID()] = len(c.nodes)
	c.nodes = append(c.nodes, node)
}

// UpdateNode shallow-merges the non-nil fields of the update. An unknown id
// yields a NotFound error and no change; so does any invalid field.
func (c *Canvas) UpdateNode(id valueobjects.NodeID, update NodeUpdate) (*entities.Node, error) {
	node, ok := c.lookup(id)
	if !ok {
		return nil, pkgerrors.NewNotFoundError("node")
	}

	// Validate everything before touching the node.
	if update.Type != nil && !update.Type.IsValid() {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("unknown node type %q", *update.Type))
	}
	if update.Position != nil && !update.Position.IsFinite() {
		return nil, pkgerrors.NewValidationError("node position must be finite").
			WithCode(pkgerrors.CodeInvalidPosition)
	}
	if update.Size != nil {
		if err := update.Size.Validate(); err != nil {
			return nil, err
		}
	}
	if update.Content != nil {
		if err := c.checkContent(*update.Content); err != nil {
			return nil, err
		}
	}
	if update.IsEmpty() {
		return node.Clone(), nil
	}

	var fields []string
	if update.Type != nil {
		_ = node.ChangeType(*update.Type)
		fields = append(fields, "type")
	}
	if update.Position != nil {
		_ = node.MoveTo(*update.Position)
		fields = append(fields, "position")
	}
	if update.Size != nil {
		_ = node.Resize(*update.Size)
		fields = append(fields, "size")
	}
	if update.Content != nil {
		node.UpdateContent(*update.Content)
		fields = append(fields, "content")
	}
	if update.Style != nil {
		node.UpdateStyle(*update.Style)
		fields = append(fields, "style")
	}
	if update.ClearOrder {
		node.SetOrder(nil)
		fields = append(fields, "order")
	} else if update.Order != nil {
		node.SetOrder(update.Order)
		fields = append(fields, "order")
	}

	c.bump()
	c.addEvent(events.NewNodeUpdated(c.projectID, c.version, id, fields, time.Now()))
	return node.Clone(), nil
}

// DeleteNode removes a node together with every connection that references
// it, and drops it from the selection. Returns false for an unknown id.
func (c *Canvas) DeleteNode(id valueobjects.NodeID) bool {
	idx, ok := c.nodeIndex[id]
	if !ok {
		return false
	}

	removed := c.removeConnectionsWhere(func(conn *entities.Connection) bool {
		return conn.Touches(id)
	})

	c.nodes = append(c.nodes[:idx], c.nodes[idx+1:]...)
	delete(c.nodeIndex, id)
	for i := idx; i < len(c.nodes); i++ {
		c.nodeIndex[c.nodes[i].ID()] = i
	}
	c.Deselect(id)

	c.bump()
	c.addEvent(events.NewNodeDeleted(c.projectID, c.version, id, removed, time.Now()))
	return true
}

// DeleteSelected deletes every selected node and returns how many went.
func (c *Canvas) DeleteSelected() int {
	ids := c.Selection()
	count := 0
	for _, id := range ids {
		if c.DeleteNode(id) {
			count++
		}
	}
	c.ClearSelection()
	return count
}

// DuplicateNode copies a node under a fresh id, shifted by offset.
func (c *Canvas) DuplicateNode(id valueobjects.NodeID, offset valueobjects.Point) (*entities.Node, error) {
	src, ok := c.lookup(id)
	if !ok {
		return nil, pkgerrors.NewNotFoundError("node")
	}
	return c.CreateNode(specFrom(src, offset))
}

// DuplicateSelected copies every selected node, and the connections running
// between them, then selects the copies.
func (c *Canvas) DuplicateSelected(offset valueobjects.Point) ([]*entities.Node, error) {
	ids := c.Selection()
	if c.cfg.MaxNodes > 0 && len(c.nodes)+len(ids) > c.cfg.MaxNodes {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("canvas is limited to %d nodes", c.cfg.MaxNodes)).
			WithCode(pkgerrors.CodeLimitExceeded)
	}

	mapping := make(map[valueobjects.NodeID]valueobjects.NodeID, len(ids))
	copies := make([]*entities.Node, 0, len(ids))
	for _, id := range ids {
		src, ok := c.lookup(id)
		if !ok {
			continue
		}
		dup, err := c.CreateNode(specFrom(src, offset))
		if err != nil {
			return copies, err
		}
		mapping[id] = dup.ID()
		copies = append(copies, dup)
	}

	for _, conn := range c.Connections() {
		start, okStart := mapping[conn.StartNodeID()]
		end, okEnd := mapping[conn.EndNodeID()]
		if !okStart || !okEnd {
			continue
		}
		style := conn.Style()
		if _, err := c.Connect(start, end, ConnectionSpec{Type: conn.Type(), Style: &style}); err != nil {
			return copies, err
		}
	}

	c.ClearSelection()
	for _, n := range copies {
		c.Select(n.ID(), true)
	}
	return copies, nil
}

func specFrom(src *entities.Node, offset valueobjects.Point) NodeSpec {
	size := src.Size()
	content := src.Content()
	style := src.Style()
	spec := NodeSpec{
		Type:     src.Type(),
		Position: src.Position().Add(offset),
		Size:     &size,
		Content:  &content,
		Style:    &style,
	}
	if order, ok := src.Order(); ok {
		spec.Order = &order
	}
	return spec
}

// Node returns a copy of the node with the given id.
func (c *Canvas) Node(id valueobjects.NodeID) (*entities.Node, bool) {
	node, ok := c.lookup(id)
	if !ok {
		return nil, false
	}
	return node.Clone(), true
}

// HasNode reports whether the id is on the canvas.
func (c *Canvas) HasNode(id valueobjects.NodeID) bool {
	_, ok := c.nodeIndex[id]
	return ok
}

// Nodes returns copies of all nodes in paint order (bottom first).
func (c *Canvas) Nodes() []*entities.Node {
	out := make([]*entities.Node, len(c.nodes))
	for i, n := range c.nodes {
		out[i] = n.Clone()
	}
	return out
}

// NodeAt returns the topmost node whose bounds contain the world point, or nil.
func (c *Canvas) NodeAt(p valueobjects.Point) *entities.Node {
	for i := len(c.nodes) - 1; i >= 0; i-- {
		if c.nodes[i].ContainsPoint(p) {
			return c.nodes[i].Clone()
		}
	}
	return nil
}

// Bounds returns the smallest rectangle enclosing every node, or the zero
// rectangle for an empty canvas.
func (c *Canvas) Bounds() valueobjects.Rect {
	if len(c.nodes) == 0 {
		return valueobjects.Rect{}
	}
	bounds := c.nodes[0].Bounds()
	for _, n := range c.nodes[1:] {
		bounds = bounds.Union(n.Bounds())
	}
	return bounds
}

// MoveNode repositions a node without recording an event. Drag gestures call
// it every frame and finish with CommitMove.
func (c *Canvas) MoveNode(id valueobjects.NodeID, position valueobjects.Point) error {
	node, ok := c.lookup(id)
	if !ok {
		return pkgerrors.NewNotFoundError("node")
	}
	return node.MoveTo(position)
}

// CommitMove records a node.moved event for a finished drag that started at
// from. Returns false when the node is unknown or did not move.
func (c *Canvas) CommitMove(id valueobjects.NodeID, from valueobjects.Point) bool {
	node, ok := c.lookup(id)
	if !ok || node.Position().Equals(from) {
		return false
	}
	c.bump()
	c.addEvent(events.NewNodeMoved(c.projectID, c.version, id, from, node.Position(), time.Now()))
	return true
}

// Connect creates a connection from start to end. Unknown endpoints give a
// NotFound error, a self-loop a validation error and an existing connection
// between the pair, in either direction, a conflict. Nothing changes on error.
func (c *Canvas) Connect(start, end valueobjects.NodeID, spec ConnectionSpec) (*entities.Connection, error) {
	if !c.HasNode(start) || !c.HasNode(end) {
		return nil, pkgerrors.NewNotFoundError("node")
	}
	if start.Equals(end) {
		return nil, pkgerrors.NewValidationError("cannot connect a node to itself").
			WithCode(pkgerrors.CodeSelfLoop)
	}
	if c.HasConnectionBetween(start, end) {
		return nil, pkgerrors.NewConflictError("connection already exists").
			WithCode(pkgerrors.CodeConnectionExists)
	}
	if c.cfg.MaxConnections > 0 && len(c.connections) >= c.cfg.MaxConnections {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("canvas is limited to %d connections", c.cfg.MaxConnections)).
			WithCode(pkgerrors.CodeLimitExceeded)
	}

	id := valueobjects.NewConnectionID()
	if spec.ID != "" {
		parsed, err := valueobjects.NewConnectionIDFromString(spec.ID)
		if err != nil {
			return nil, pkgerrors.NewValidationError(err.Error())
		}
		if _, exists := c.connIndex[parsed]; exists {
			return nil, pkgerrors.NewConflictError(fmt.Sprintf("connection %s already exists", spec.ID)).
				WithCode(pkgerrors.CodeDuplicateID)
		}
		id = parsed
	}
	style := entities.DefaultConnectionStyle()
	if spec.Style != nil {
		style = *spec.Style
	}

	conn, err := entities.NewConnection(id, start, end, spec.Type, style)
	if err != nil {
		return nil, err
	}
	c.insertConnection(conn)
	c.bump()
	c.addEvent(events.NewConnectionCreated(c.projectID, c.version, conn.ID(), start, end, string(conn.Type()), time.Now()))
	return conn.Clone(), nil
}

func (c *Canvas) insertConnection(conn *entities.Connection) {
	c.connIndex[conn.ID()] = len(c.connections)
	c.connections = append(c.connections, conn)
}

// HasConnectionBetween reports whether a and b are connected in either direction.
func (c *Canvas) HasConnectionBetween(a, b valueobjects.NodeID) bool {
	for _, conn := range c.connections {
		if conn.Links(a, b) {
			return true
		}
	}
	return false
}

// RemoveConnection deletes one connection. Returns false for an unknown id.
func (c *Canvas) RemoveConnection(id valueobjects.ConnectionID) bool {
	if _, ok := c.connIndex[id]; !ok {
		return false
	}
	c.removeConnectionsWhere(func(conn *entities.Connection) bool {
		return conn.ID().Equals(id)
	})
	c.bump()
	c.addEvent(events.NewConnectionDeleted(c.projectID, c.version, id, time.Now()))
	return true
}

func (c *Canvas) removeConnectionsWhere(match func(*entities.Connection) bool) []valueobjects.ConnectionID {
	var removed []valueobjects.ConnectionID
	kept := c.connections[:0]
	for _, conn := range c.connections {
		if match(conn) {
			removed = append(removed, conn.ID())
			delete(c.connIndex, conn.ID())
			continue
		}
		kept = append(kept, conn)
	}
	for i := len(kept); i < len(c.connections); i++ {
		c.connections[i] = nil
	}
	c.connections = kept
	for i, conn := range c.connections {
		c.connIndex[conn.ID()] = i
	}
	return removed
}

// Connection returns a copy of the connection with the given id.
func (c *Canvas) Connection(id valueobjects.ConnectionID) (*entities.Connection, bool) {
	idx, ok := c.connIndex[id]
	if !ok {
		return nil, false
	}
	return c.connections[idx].Clone(), true
}

// Connections returns copies of all connections in creation order.
func (c *Canvas) Connections() []*entities.Connection {
	out := make([]*entities.Connection, len(c.connections))
	for i, conn := range c.connections {
		out[i] = conn.Clone()
	}
	return out
}

// ConnectionsFor returns the connections touching a node.
func (c *Canvas) ConnectionsFor(id valueobjects.NodeID) []*entities.Connection {
	var out []*entities.Connection
	for _, conn := range c.connections {
		if conn.Touches(id) {
			out = append(out, conn.Clone())
		}
	}
	return out
}

// Select adds a node to the selection. Without additive the selection is
// replaced. Unknown ids are ignored.
func (c *Canvas) Select(id valueobjects.NodeID, additive bool) bool {
	if !c.HasNode(id) {
		return false
	}
	if !additive {
		c.ClearSelection()
	}
	if _, ok := c.selected[id]; ok {
		return true
	}
	c.selected[id] = struct{}{}
	c.selection = append(c.selection, id)
	return true
}

// Deselect removes a node from the selection.
func (c *Canvas) Deselect(id valueobjects.NodeID) {
	if _, ok := c.selected[id]; !ok {
		return
	}
	delete(c.selected, id)
	for i, sel := range c.selection {
		if sel.Equals(id) {
			c.selection = append(c.selection[:i], c.selection[i+1:]...)
			break
		}
	}
}

// ClearSelection empties the selection.
func (c *Canvas) ClearSelection() {
	c.selection = nil
	c.selected = make(map[valueobjects.NodeID]struct{})
}

// IsSelected reports whether the node is selected.
func (c *Canvas) IsSelected(id valueobjects.NodeID) bool {
	_, ok := c.selected[id]
	return ok
}

// Selection returns the selected ids in selection order.
func (c *Canvas) Selection() []valueobjects.NodeID {
	return append([]valueobjects.NodeID(nil), c.selection...)
}

// Snapshot serializes the nodes and connections.
func (c *Canvas) Snapshot() CanvasData {
	data := CanvasData{
		Nodes:       make([]entities.NodeData, len(c.nodes)),
		Connections: make([]entities.ConnectionData, len(c.connections)),
	}
	for i, n := range c.nodes {
		data.Nodes[i] = n.Snapshot()
	}
	for i, conn := range c.connections {
		data.Connections[i] = conn.Snapshot()
	}
	return data
}

// RestoreCanvas rebuilds a canvas from serialized data. Invalid nodes and
// duplicate node ids are errors. Connections that dangle, loop on one node or
// repeat an already connected pair are dropped and counted.
func RestoreCanvas(projectID valueobjects.ProjectID, cfg *config.DomainConfig, data CanvasData) (*Canvas, int, error) {
	c := NewCanvas(projectID, cfg)

	for _, nd := range data.Nodes {
		node, err := entities.ReconstructNode(nd)
		if err != nil {
			return nil, 0, fmt.Errorf("node %q: %w", nd.ID, err)
		}
		if c.HasNode(node.ID()) {
			return nil, 0, pkgerrors.NewValidationError(fmt.Sprintf("duplicate node id %q", nd.ID)).
				WithCode(pkgerrors.CodeDuplicateID)
		}
		c.insertNode(node)
	}

	dropped := 0
	for _, cd := range data.Connections {
		conn, err := entities.ReconstructConnection(cd)
		if err != nil {
			dropped++
			continue
		}
		if !c.HasNode(conn.StartNodeID()) || !c.HasNode(conn.EndNodeID()) ||
			c.HasConnectionBetween(conn.StartNodeID(), conn.EndNodeID()) {
			dropped++
			continue
		}
		if _, dup := c.connIndex[conn.ID()]; dup {
			dropped++
			continue
		}
		c.insertConnection(conn)
	}
	return c, dropped, nil
}

// Clone returns a deep copy of the canvas without pending events.
func (c *Canvas) Clone() *Canvas {
	out := NewCanvas(c.projectID, c.cfg)
	for _, n := range c.nodes {
		out.insertNode(n.Clone())
	}
	for _, conn := range c.connections {
		out.insertConnection(conn.Clone())
	}
	for _, id := range c.selection {
		out.selected[id] = struct{}{}
		out.selection = append(out.selection, id)
	}
	out.version = c.version
	return out
}

func (c *Canvas) lookup(id valueobjects.NodeID) (*entities.Node, bool) {
	idx, ok := c.nodeIndex[id]
	if !ok {
		return nil, false
	}
	return c.nodes[idx], true
}

func (c *Canvas) bump() {
	c.version++
}

func (c *Canvas) addEvent(event events.DomainEvent) {
	c.events = append(c.events, event)
}

// GetUncommittedEvents returns events that haven't been persisted yet
func (c *Canvas) GetUncommittedEvents() []events.DomainEvent {
	return c.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (c *Canvas) MarkEventsAsCommitted() {
	c.events = []events.DomainEvent{}
}
