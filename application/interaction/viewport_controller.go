package interaction

import (
	"time"

	"slidecanvas/domain/config"
	"slidecanvas/domain/core/valueobjects"
)

// FrameScheduler runs a callback on the host's next animation frame
type FrameScheduler interface {
	RequestFrame(fn func(now time.Time))
}

// ViewportController owns the live viewport and its eased transitions.
// Each new transition bumps a generation counter; a running animation stops
// scheduling frames as soon as it sees a newer generation.
type ViewportController struct {
	viewport  valueobjects.Viewport
	cfg       *config.DomainConfig
	scheduler FrameScheduler

	generation uint64
	animating  bool
	listeners  []func(valueobjects.Viewport)
}

// NewViewportController creates a controller. A nil scheduler makes every
// transition instant.
func NewViewportController(initial valueobjects.Viewport, cfg *config.DomainConfig, scheduler FrameScheduler) *ViewportController {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if initial.Scale == 0 {
		initial.Scale = 1
	}
	initial.Scale = valueobjects.ClampScale(initial.Scale, cfg.MinZoom, cfg.MaxZoom)
	return &ViewportController{viewport: initial, cfg: cfg, scheduler: scheduler}
}

// Viewport returns the current viewport
func (c *ViewportController) Viewport() valueobjects.Viewport { return c.viewport }

// Animating reports whether an eased transition is in flight
func (c *ViewportController) Animating() bool { return c.animating }

// OnChange registers a callback invoked after every viewport change.
func (c *ViewportController) OnChange(fn func(valueobjects.Viewport)) {
	c.listeners = append(c.listeners, fn)
}

// Cancel stops any running animation where it is.
func (c *ViewportController) Cancel() {
	c.generation++
	c.animating = false
}

// SetViewport replaces the viewport immediately.
func (c *ViewportController) SetViewport(v valueobjects.Viewport) {
	c.Cancel()
	v.Scale = valueobjects.ClampScale(v.Scale, c.cfg.MinZoom, c.cfg.MaxZoom)
	c.set(v)
}

// Pan translates the viewport by a screen-space delta.
func (c *ViewportController) Pan(dx, dy float64) {
	c.Cancel()
	c.set(c.viewport.Pan(dx, dy))
}

// Resize follows the drawing surface size.
func (c *ViewportController) Resize(width, height float64) {
	c.set(c.viewport.Resize(width, height))
}

// ZoomTo changes the scale, keeping the world point under focus (screen
// coordinates) fixed. With animated set the change is eased over the
// configured duration, and the focus stays fixed on every frame.
func (c *ViewportController) ZoomTo(target float64, focus *valueobjects.Point, animated bool) {
	target = valueobjects.ClampScale(target, c.cfg.MinZoom, c.cfg.MaxZoom)
	from := c.viewport
	var anchor *valueobjects.Point
	if focus != nil {
		f := *focus
		anchor = &f
	}

	if !animated {
		c.Cancel()
		c.set(from.ZoomTo(target, anchor, c.cfg.MinZoom, c.cfg.MaxZoom))
		return
	}
	c.animate(func(progress float64) valueobjects.Viewport {
		scale := from.Scale + (target-from.Scale)*progress
		return from.ZoomTo(scale, anchor, c.cfg.MinZoom, c.cfg.MaxZoom)
	})
}

// ZoomBy multiplies the scale by factor around focus, instantly.
func (c *ViewportController) ZoomBy(factor float64, focus *valueobjects.Point) {
	c.ZoomTo(c.viewport.Scale*factor, focus, false)
}

// FitToBounds frames a world rectangle with the configured padding.
func (c *ViewportController) FitToBounds(bounds valueobjects.Rect, animated bool) {
	from := c.viewport
	to := from.FitTo(bounds, c.cfg.FitPadding, c.cfg.MinZoom, c.cfg.MaxZoom)
	if !animated {
		c.Cancel()
		c.set(to)
		return
	}
	c.animate(func(progress float64) valueobjects.Viewport {
		return from.Lerp(to, progress)
	})
}

func (c *ViewportController) animate(frame func(progress float64) valueobjects.Viewport) {
	c.generation++
	gen := c.generation
	duration := c.cfg.ZoomAnimationDuration

	if c.scheduler == nil || duration <= 0 {
		c.animating = false
		c.set(frame(1))
		return
	}

	c.animating = true
	var start time.Time
	var step func(now time.Time)
	step = func(now time.Time) {
		if gen != c.generation {
			return
		}
		if start.IsZero() {
			start = now
		}
		t := float64(now.Sub(start)) / float64(duration)
		progress := EaseOutCubic(t)
		if t >= 1 {
			c.animating = false
		}
		// The surface may have been resized mid-flight.
		v := frame(progress)
		v.Width, v.Height = c.viewport.Width, c.viewport.Height
		c.set(v)
		if c.animating {
			c.scheduler.RequestFrame(step)
		}
	}
	c.scheduler.RequestFrame(step)
}

func (c *ViewportController) set(v valueobjects.Viewport) {
	c.viewport = v
	for _, fn := range c.listeners {
		fn(v)
	}
}

// EaseOutCubic decelerates towards t = 1.
func EaseOutCubic(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	u := 1 - t
	return 1 - u*u*u
}
