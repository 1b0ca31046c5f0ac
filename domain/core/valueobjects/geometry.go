package valueobjects

import (
	"fmt"
	"math"

	pkgerrors "slidecanvas/pkg/errors"
)

const epsilon = 1e-9

// Point is a 2D coordinate, in world or screen space depending on context.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NewPoint creates a point with validation
func NewPoint(x, y float64) (Point, error) {
	if !isValidCoordinate(x) || !isValidCoordinate(y) {
		return Point{}, pkgerrors.NewValidationError("invalid coordinates: must be finite numbers").
			WithCode(pkgerrors.CodeInvalidPosition)
	}
	return Point{X: x, Y: y}, nil
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return isValidCoordinate(p.X) && isValidCoordinate(p.Y)
}

// Add returns p translated by o.
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub returns the vector from o to p.
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

// Scale multiplies both coordinates by f.
func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// DistanceTo calculates the Euclidean distance to another point
func (p Point) DistanceTo(other Point) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

// Equals checks if two points are equal
func (p Point) Equals(other Point) bool {
	return math.Abs(p.X-other.X) < epsilon && math.Abs(p.Y-other.Y) < epsilon
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Size holds node dimensions. A valid size has strictly positive sides.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// NewSize creates a size with validation
func NewSize(width, height float64) (Size, error) {
	s := Size{Width: width, Height: height}
	if err := s.Validate(); err != nil {
		return Size{}, err
	}
	return s, nil
}

// Validate enforces width > 0 and height > 0.
func (s Size) Validate() error {
	if !isValidCoordinate(s.Width) || !isValidCoordinate(s.Height) || s.Width <= 0 || s.Height <= 0 {
		return pkgerrors.NewValidationError(
			fmt.Sprintf("invalid size %gx%g: width and height must be positive", s.Width, s.Height),
		).WithCode(pkgerrors.CodeInvalidSize)
	}
	return nil
}

// IsZero reports whether the size is unset.
func (s Size) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectFromPoints returns the smallest rectangle containing every point.
func RectFromPoints(points ...Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

func (r Rect) Right() float64 { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// IsZero reports whether r is the zero rectangle.
func (r Rect) IsZero() bool {
	return r == Rect{}
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Intersects reports whether the two rectangles overlap or touch.
func (r Rect) Intersects(o Rect) bool {
	return r.X <= o.Right() && o.X <= r.Right() && r.Y <= o.Bottom() && o.Y <= r.Bottom()
}

// Union returns the smallest rectangle containing both.
func (r Rect) Union(o Rect) Rect {
	return RectFromPoints(
		Point{X: r.X, Y: r.Y}, Point{X: r.Right(), Y: r.Bottom()},
		Point{X: o.X, Y: o.Y}, Point{X: o.Right(), Y: o.Bottom()},
	)
}

// Expand grows the rectangle by pad on every side.
func (r Rect) Expand(pad float64) Rect {
	return Rect{X: r.X - pad, Y: r.Y - pad, Width: r.Width + 2*pad, Height: r.Height + 2*pad}
}

// isValidCoordinate checks if a coordinate is a valid finite number
func isValidCoordinate(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
