package interaction

import (
	"fmt"
	"strings"

	"slidecanvas/application/ports"
	"slidecanvas/domain/core/aggregates"
	"slidecanvas/domain/core/valueobjects"
	pkgerrors "slidecanvas/pkg/errors"
)

// State is the interaction mode of the canvas
type State string

const (
	StateIdle         State = "idle"
	StatePanning      State = "panning"
	StateDraggingNode State = "dragging-node"
	StateConnecting   State = "connecting"
)

// Options tune pointer handling
type Options struct {
	SnapToGrid bool
	GridSize   float64
}

// Controller is the canvas interaction state machine. It turns pointer,
// wheel and keyboard input (screen coordinates) into viewport changes and
// canvas mutations.
//
// A Controller is not safe for concurrent use.
type Controller struct {
	canvas   *aggregates.Canvas
	viewport *ViewportController
	notifier ports.Notifier
	opts     Options

	state       State
	connectMode bool

	pendingStart valueobjects.NodeID

	dragNode   valueobjects.NodeID
	dragOffset valueobjects.Point
	dragOrigin valueobjects.Point

	panLast valueobjects.Point
	hover   valueobjects.NodeID
}

// NewController wires the state machine to a canvas and viewport
func NewController(canvas *aggregates.Canvas, viewport *ViewportController, notifier ports.Notifier, opts Options) *Controller {
	if opts.GridSize <= 0 {
		opts.GridSize = canvas.Config().GridSize
	}
	return &Controller{
		canvas:   canvas,
		viewport: viewport,
		notifier: notifier,
		opts:     opts,
		state:    StateIdle,
	}
}

// State returns the current interaction state
func (c *Controller) State() State { return c.state }

// ConnectMode reports whether connect mode is toggled on
func (c *Controller) ConnectMode() bool { return c.connectMode }

// Viewport returns the viewport controller
func (c *Controller) Viewport() *ViewportController { return c.viewport }

// PendingStart returns the recorded start node while connecting.
func (c *Controller) PendingStart() (valueobjects.NodeID, bool) {
	return c.pendingStart, !c.pendingStart.IsZero()
}

// Hovered returns the node under the pointer while idle.
func (c *Controller) Hovered() (valueobjects.NodeID, bool) {
	return c.hover, !c.hover.IsZero()
}

// SetSnapToGrid toggles grid snapping while dragging
func (c *Controller) SetSnapToGrid(enabled bool) { c.opts.SnapToGrid = enabled }

func (c *Controller) toWorld(p valueobjects.Point) valueobjects.Point {
	return c.viewport.Viewport().ScreenToWorld(p)
}

// PointerDown handles a primary button press at a screen point.
func (c *Controller) PointerDown(p valueobjects.Point, shift bool) {
	world := c.toWorld(p)
	hit := c.canvas.NodeAt(world)

	if c.state == StateConnecting {
		if hit == nil {
			c.exitConnectMode()
			return
		}
		c.connectClick(hit.ID())
		return
	}
	if c.state != StateIdle {
		return
	}

	if hit == nil {
		c.canvas.ClearSelection()
		c.state = StatePanning
		c.panLast = p
		return
	}

	if !(shift && c.canvas.IsSelected(hit.ID())) {
		c.canvas.Select(hit.ID(), shift)
	}
	c.state = StateDraggingNode
	c.dragNode = hit.ID()
	c.dragOrigin = hit.Position()
	c.dragOffset = world.Sub(hit.Position())
}

// connectClick records the start node or completes a connection from it.
func (c *Controller) connectClick(id valueobjects.NodeID) {
	start, ok := c.PendingStart()
	if !ok {
		c.pendingStart = id
		c.canvas.Select(id, false)
		return
	}
	if start.Equals(id) {
		return
	}

	_, err := c.canvas.Connect(start, id, aggregates.ConnectionSpec{})
	c.pendingStart = valueobjects.NodeID{}
	switch {
	case err == nil:
		c.canvas.ClearSelection()
	case pkgerrors.HasCode(err, pkgerrors.CodeConnectionExists):
		c.notify(ports.NotifyWarning, pkgerrors.CodeConnectionExists, "Connection already exists")
	default:
		c.notify(ports.NotifyWarning, codeOf(err), err.Error())
	}
}

// PointerMove handles pointer motion at a screen point.
func (c *Controller) PointerMove(p valueobjects.Point) {
	switch c.state {
	case StatePanning:
		delta := p.Sub(c.panLast)
		c.panLast = p
		c.viewport.Pan(delta.X, delta.Y)

	case StateDraggingNode:
		pos := c.toWorld(p).Sub(c.dragOffset)
		cfg := c.canvas.Config()
		pos = valueobjects.SnapToGrid(pos, c.opts.GridSize, cfg.SnapThreshold, c.opts.SnapToGrid)
		if err := c.canvas.MoveNode(c.dragNode, pos); err != nil {
			c.notify(ports.NotifyWarning, codeOf(err), err.Error())
			c.endDrag()
		}

	case StateIdle:
		if hit := c.canvas.NodeAt(c.toWorld(p)); hit != nil {
			c.hover = hit.ID()
		} else {
			c.hover = valueobjects.NodeID{}
		}
	}
}

// PointerUp handles a button release.
func (c *Controller) PointerUp(p valueobjects.Point) {
	switch c.state {
	case StateDraggingNode:
		c.canvas.CommitMove(c.dragNode, c.dragOrigin)
		c.endDrag()
	case StatePanning:
		c.state = StateIdle
	}
}

func (c *Controller) endDrag() {
	c.dragNode = valueobjects.NodeID{}
	c.state = StateIdle
}

// Wheel zooms around the cursor by one zoom step per event, in any state.
// Negative deltaY zooms in.
func (c *Controller) Wheel(p valueobjects.Point, deltaY float64) {
	if deltaY == 0 {
		return
	}
	step := c.canvas.Config().ZoomStep
	factor := step
	if deltaY > 0 {
		factor = 1 / step
	}
	focus := p
	c.viewport.ZoomBy(factor, &focus)
}

// ToggleConnectMode enters or leaves connect mode.
func (c *Controller) ToggleConnectMode() {
	if c.connectMode {
		c.exitConnectMode()
		return
	}
	if c.state == StateDraggingNode {
		c.PointerUp(valueobjects.Point{})
	}
	c.connectMode = true
	c.pendingStart = valueobjects.NodeID{}
	c.state = StateConnecting
}

func (c *Controller) exitConnectMode() {
	c.connectMode = false
	c.pendingStart = valueobjects.NodeID{}
	c.state = StateIdle
}

// KeyDown handles Escape, Delete and Backspace.
func (c *Controller) KeyDown(key string) {
	switch strings.ToLower(key) {
	case "escape", "esc":
		switch c.state {
		case StateConnecting:
			c.exitConnectMode()
		case StateDraggingNode:
			// Abandon the drag and put the node back.
			_ = c.canvas.MoveNode(c.dragNode, c.dragOrigin)
			c.endDrag()
		default:
			c.canvas.ClearSelection()
		}
	case "delete", "backspace":
		if c.state == StateIdle {
			if n := c.canvas.DeleteSelected(); n > 0 {
				c.notify(ports.NotifyInfo, "", fmt.Sprintf("Deleted %d node(s)", n))
			}
			c.hover = valueobjects.NodeID{}
		}
	}
}

func (c *Controller) notify(level ports.NotificationLevel, code, message string) {
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(ports.Notification{Level: level, Code: code, Message: message})
}

func codeOf(err error) string {
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		return appErr.Code
	}
	return ""
}
