package valueobjects

import "math"

// SnapToGrid pulls each axis onto the nearest grid multiple only when it is
// within threshold*gridSize of it; points further away are returned as is.
func SnapToGrid(p Point, gridSize, threshold float64, enabled bool) Point {
	if !enabled || gridSize <= 0 {
		return p
	}
	return Point{
		X: snapValue(p.X, gridSize, threshold),
		Y: snapValue(p.Y, gridSize, threshold),
	}
}

func snapValue(v, gridSize, threshold float64) float64 {
	nearest := math.Round(v/gridSize) * gridSize
	if math.Abs(v-nearest) <= threshold*gridSize {
		return nearest
	}
	return v
}

// GridLines holds the screen-space positions of the grid lines to draw.
type GridLines struct {
	Vertical   []float64
	Horizontal []float64
	// Step is the world-space distance between drawn lines.
	Step float64
}

// Count returns the total number of lines.
func (g GridLines) Count() int {
	return len(g.Vertical) + len(g.Horizontal)
}

// GridLines computes the grid for the current viewport. Nothing is drawn when
// the on-screen spacing falls below minSpacing; otherwise the step doubles
// until the total line count fits within maxLines.
func (v Viewport) GridLines(gridSize, minSpacing float64, maxLines int) GridLines {
	if !v.HasArea() || gridSize <= 0 || maxLines <= 0 {
		return GridLines{}
	}
	if gridSize*v.Scale < minSpacing {
		return GridLines{}
	}

	const maxDoublings = 64
	step := gridSize
	fits := false
	for i := 0; i < maxDoublings; i++ {
		s := step * v.Scale
		if lineCount(v.X, v.Width, s)+lineCount(v.Y, v.Height, s) <= maxLines {
			fits = true
			break
		}
		step *= 2
	}
	if !fits {
		return GridLines{}
	}

	s := step * v.Scale
	return GridLines{
		Vertical:   linePositions(v.X, v.Width, s),
		Horizontal: linePositions(v.Y, v.Height, s),
		Step:       step,
	}
}

// lineRange returns the indices i for which 0 <= origin + i*spacing <= extent.
func lineRange(origin, extent, spacing float64) (int, int) {
	lo := int(math.Ceil(-origin / spacing))
	hi := int(math.Floor((extent - origin) / spacing))
	return lo, hi
}

func lineCount(origin, extent, spacing float64) int {
	lo, hi := lineRange(origin, extent, spacing)
	if hi < lo {
		return 0
	}
	return hi - lo + 1
}

func linePositions(origin, extent, spacing float64) []float64 {
	lo, hi := lineRange(origin, extent, spacing)
	if hi < lo {
		return nil
	}
	out := make([]float64, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, origin+float64(i)*spacing)
	}
	return out
}
