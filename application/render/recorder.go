package render

import "slidecanvas/domain/core/valueobjects"

// Recorder is a Surface that keeps every draw call. It backs headless
// rendering and dry runs.
type Recorder struct {
	Width, Height float64
	Clears        int
	GridLines     [][2]valueobjects.Point
	Connections   []ConnectionShape
	Nodes         []NodeShape
}

func (r *Recorder) Clear(width, height float64) {
	r.Width, r.Height = width, height
	r.Clears++
	r.GridLines = nil
	r.Connections = nil
	r.Nodes = nil
}

func (r *Recorder) DrawGridLine(from, to valueobjects.Point) {
	r.GridLines = append(r.GridLines, [2]valueobjects.Point{from, to})
}

func (r *Recorder) DrawConnection(c ConnectionShape) { r.Connections = append(r.Connections, c) }

func (r *Recorder) DrawNode(n NodeShape) { r.Nodes = append(r.Nodes, n) }

// Calls returns the number of draw calls since the last Clear.
func (r *Recorder) Calls() int {
	return len(r.GridLines) + len(r.Connections) + len(r.Nodes)
}
