package valueobjects

import "math"

// Viewport maps between screen pixels and world coordinates. X and Y are the
// screen-space translation of the world origin; Width and Height mirror the
// drawing surface in pixels. Viewport is a value: every operation returns a
// new Viewport.
type Viewport struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Scale  float64 `json:"scale"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewViewport returns an untransformed viewport of the given pixel size.
func NewViewport(width, height float64) Viewport {
	return Viewport{Scale: 1, Width: math.Max(width, 0), Height: math.Max(height, 0)}
}

// ScreenToWorld converts a screen point to world space.
func (v Viewport) ScreenToWorld(p Point) Point {
	return Point{X: (p.X - v.X) / v.Scale, Y: (p.Y - v.Y) / v.Scale}
}

// WorldToScreen converts a world point to screen space.
func (v Viewport) WorldToScreen(p Point) Point {
	return Point{X: p.X*v.Scale + v.X, Y: p.Y*v.Scale + v.Y}
}

// WorldRectToScreen converts a world rectangle to screen space.
func (v Viewport) WorldRectToScreen(r Rect) Rect {
	tl := v.WorldToScreen(Point{X: r.X, Y: r.Y})
	return Rect{X: tl.X, Y: tl.Y, Width: r.Width * v.Scale, Height: r.Height * v.Scale}
}

// HasArea reports whether the viewport covers any pixels.
func (v Viewport) HasArea() bool {
	return v.Width > 0 && v.Height > 0 && v.Scale > 0
}

// Center returns the screen-space centre of the viewport.
func (v Viewport) Center() Point {
	return Point{X: v.Width / 2, Y: v.Height / 2}
}

// VisibleWorldRect returns the world-space rectangle currently on screen.
func (v Viewport) VisibleWorldRect() Rect {
	if !v.HasArea() {
		return Rect{}
	}
	tl := v.ScreenToWorld(Point{})
	return Rect{X: tl.X, Y: tl.Y, Width: v.Width / v.Scale, Height: v.Height / v.Scale}
}

// ClampScale limits scale to [min, max].
func ClampScale(scale, min, max float64) float64 {
	if math.IsNaN(scale) {
		return min
	}
	return math.Max(min, math.Min(max, scale))
}

// ZoomTo sets the scale, clamped to [min, max]. With a focus point (screen
// space) the world point under the focus stays fixed; without one the zoom
// is anchored at the viewport centre.
func (v Viewport) ZoomTo(target float64, focus *Point, min, max float64) Viewport {
	anchor := v.Center()
	if focus != nil {
		anchor = *focus
	}
	world := v.ScreenToWorld(anchor)

	next := v
	next.Scale = ClampScale(target, min, max)
	next.X = anchor.X - world.X*next.Scale
	next.Y = anchor.Y - world.Y*next.Scale
	return next
}

// Pan translates the viewport by a screen-space delta.
func (v Viewport) Pan(dx, dy float64) Viewport {
	v.X += dx
	v.Y += dy
	return v
}

// Resize updates the pixel dimensions, keeping the transform.
func (v Viewport) Resize(width, height float64) Viewport {
	v.Width = math.Max(width, 0)
	v.Height = math.Max(height, 0)
	return v
}

// FitTo centres bounds in the viewport with padding, choosing the largest
// scale within [min, max] that shows all of it. Empty bounds or a viewport
// without area leave v unchanged.
func (v Viewport) FitTo(bounds Rect, padding, min, max float64) Viewport {
	if bounds.IsZero() || !v.HasArea() {
		return v
	}
	availW := math.Max(v.Width-2*padding, 1)
	availH := math.Max(v.Height-2*padding, 1)

	scale := max
	if bounds.Width > 0 {
		scale = math.Min(scale, availW/bounds.Width)
	}
	if bounds.Height > 0 {
		scale = math.Min(scale, availH/bounds.Height)
	}

	next := v
	next.Scale = ClampScale(scale, min, max)
	c := bounds.Center()
	next.X = v.Width/2 - c.X*next.Scale
	next.Y = v.Height/2 - c.Y*next.Scale
	return next
}

// Lerp interpolates the transform between v and to; t is clamped to [0, 1].
// Pixel dimensions are taken from to.
func (v Viewport) Lerp(to Viewport, t float64) Viewport {
	t = math.Max(0, math.Min(1, t))
	return Viewport{
		X:      v.X + (to.X-v.X)*t,
		Y:      v.Y + (to.Y-v.Y)*t,
		Scale:  v.Scale + (to.Scale-v.Scale)*t,
		Width:  to.Width,
		Height: to.Height,
	}
}

// Equals compares two viewports within floating point tolerance.
func (v Viewport) Equals(o Viewport) bool {
	const tol = 1e-6
	return math.Abs(v.X-o.X) < tol && math.Abs(v.Y-o.Y) < tol &&
		math.Abs(v.Scale-o.Scale) < tol &&
		v.Width == o.Width && v.Height == o.Height
}
