package interaction

import (
	"fmt"

	"slidecanvas/domain/core/valueobjects"
	pkgerrors "slidecanvas/pkg/errors"
)

// EventKind names a serialized input event
type EventKind string

const (
	EventPointerDown   EventKind = "pointerdown"
	EventPointerMove   EventKind = "pointermove"
	EventPointerUp     EventKind = "pointerup"
	EventWheel         EventKind = "wheel"
	EventKeyDown       EventKind = "keydown"
	EventToggleConnect EventKind = "toggle-connect"
	EventResize        EventKind = "resize"
)

// Event is a host input event in screen coordinates. It is the wire form
// used to replay a recorded interaction.
type Event struct {
	Kind   EventKind `json:"kind" yaml:"kind" validate:"required"`
	X      float64   `json:"x,omitempty" yaml:"x,omitempty"`
	Y      float64   `json:"y,omitempty" yaml:"y,omitempty"`
	DeltaY float64   `json:"delta_y,omitempty" yaml:"delta_y,omitempty"`
	Key    string    `json:"key,omitempty" yaml:"key,omitempty"`
	Shift  bool      `json:"shift,omitempty" yaml:"shift,omitempty"`
	Width  float64   `json:"width,omitempty" yaml:"width,omitempty"`
	Height float64   `json:"height,omitempty" yaml:"height,omitempty"`
}

// Dispatch routes a serialized event to the matching handler.
func (c *Controller) Dispatch(e Event) error {
	p := valueobjects.Point{X: e.X, Y: e.Y}
	switch e.Kind {
	case EventPointerDown:
		c.PointerDown(p, e.Shift)
	case EventPointerMove:
		c.PointerMove(p)
	case EventPointerUp:
		c.PointerUp(p)
	case EventWheel:
		c.Wheel(p, e.DeltaY)
	case EventKeyDown:
		c.KeyDown(e.Key)
	case EventToggleConnect:
		c.ToggleConnectMode()
	case EventResize:
		c.viewport.Resize(e.Width, e.Height)
	default:
		return pkgerrors.NewValidationError(fmt.Sprintf("unknown event kind %q", e.Kind))
	}
	return nil
}

// Replay dispatches events in order, stopping at the first invalid one.
func (c *Controller) Replay(events []Event) error {
	for i, e := range events {
		if err := c.Dispatch(e); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}
	return nil
}
