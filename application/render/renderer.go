// Package render draws a canvas scene through a Surface. Geometry (culling,
// screen transforms, connection paths) lives here; the Surface only knows how
// to put primitives on pixels.
package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"slidecanvas/domain/config"
	"slidecanvas/domain/core/aggregates"
	"slidecanvas/domain/core/entities"
	"slidecanvas/domain/core/valueobjects"
	"slidecanvas/domain/services"
)

// Surface is a 2D drawing target in screen pixels
type Surface interface {
	Clear(width, height float64)
	DrawGridLine(from, to valueobjects.Point)
	DrawConnection(c ConnectionShape)
	DrawNode(n NodeShape)
}

// NodeShape is a node projected to screen space
type NodeShape struct {
	ID       string
	Type     entities.NodeType
	Rect     valueobjects.Rect
	Label    string
	Style    entities.Style
	Selected bool
	Hovered  bool
}

// ConnectionShape is a routed connection projected to screen space
type ConnectionShape struct {
	ID         string
	Start      valueobjects.Point
	Control1   valueobjects.Point
	Control2   valueobjects.Point
	End        valueobjects.Point
	ArrowLeft  valueobjects.Point
	ArrowRight valueobjects.Point
	Arrow      bool
	Style      entities.ConnectionStyle
}

// Options control what a frame includes
type Options struct {
	ShowGrid bool
	GridSize float64
	Hovered  valueobjects.NodeID
}

// Stats counts what a frame drew and what it skipped
type Stats struct {
	Skipped           bool `json:"skipped"`
	GridLines         int  `json:"grid_lines"`
	NodesDrawn        int  `json:"nodes_drawn"`
	NodesCulled       int  `json:"nodes_culled"`
	NodesTooSmall     int  `json:"nodes_too_small"`
	ConnectionsDrawn  int  `json:"connections_drawn"`
	ConnectionsCulled int  `json:"connections_culled"`
}

// Renderer projects the scene and issues draw calls
type Renderer struct {
	cfg    *config.DomainConfig
	router *services.ConnectionRouter
}

// NewRenderer creates a renderer
func NewRenderer(cfg *config.DomainConfig) *Renderer {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &Renderer{cfg: cfg, router: services.NewConnectionRouter(cfg)}
}

// Render draws the grid, then connections, then nodes in paint order.
// A viewport without area draws nothing at all.
func (r *Renderer) Render(surface Surface, canvas *aggregates.Canvas, viewport valueobjects.Viewport, opts Options) Stats {
	if !viewport.HasArea() {
		return Stats{Skipped: true}
	}
	var stats Stats
	surface.Clear(viewport.Width, viewport.Height)

	if opts.ShowGrid {
		gridSize := opts.GridSize
		if gridSize <= 0 {
			gridSize = r.cfg.GridSize
		}
		grid := viewport.GridLines(gridSize, r.cfg.MinGridSpacing, r.cfg.MaxGridLines)
		for _, x := range grid.Vertical {
			surface.DrawGridLine(valueobjects.Point{X: x, Y: 0}, valueobjects.Point{X: x, Y: viewport.Height})
		}
		for _, y := range grid.Horizontal {
			surface.DrawGridLine(valueobjects.Point{X: 0, Y: y}, valueobjects.Point{X: viewport.Width, Y: y})
		}
		stats.GridLines = grid.Count()
	}

	visible := viewport.VisibleWorldRect()
	nodes := canvas.Nodes()
	byID := make(map[valueobjects.NodeID]*entities.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID()] = n
	}

	for _, conn := range canvas.Connections() {
		start, ok1 := byID[conn.StartNodeID()]
		end, ok2 := byID[conn.EndNodeID()]
		if !ok1 || !ok2 {
			continue
		}
		path := r.router.RouteConnection(conn, start, end)
		if !path.IsVisible(visible) {
			stats.ConnectionsCulled++
			continue
		}
		surface.DrawConnection(project(viewport, path, conn.Style()))
		stats.ConnectionsDrawn++
	}

	for _, n := range nodes {
		if !n.Bounds().Intersects(visible) {
			stats.NodesCulled++
			continue
		}
		rect := viewport.WorldRectToScreen(n.Bounds())
		if rect.Width < r.cfg.MinVisiblePixels && rect.Height < r.cfg.MinVisiblePixels {
			stats.NodesTooSmall++
			continue
		}
		surface.DrawNode(NodeShape{
			ID:       n.ID().String(),
			Type:     n.Type(),
			Rect:     rect,
			Label:    Label(n),
			Style:    n.Style(),
			Selected: canvas.IsSelected(n.ID()),
			Hovered:  !opts.Hovered.IsZero() && opts.Hovered.Equals(n.ID()),
		})
		stats.NodesDrawn++
	}
	return stats
}

func project(v valueobjects.Viewport, p services.Path, style entities.ConnectionStyle) ConnectionShape {
	return ConnectionShape{
		ID:         p.ConnectionID,
		Start:      v.WorldToScreen(p.Start.Point),
		Control1:   v.WorldToScreen(p.Control1),
		Control2:   v.WorldToScreen(p.Control2),
		End:        v.WorldToScreen(p.End.Point),
		ArrowLeft:  v.WorldToScreen(p.ArrowLeft),
		ArrowRight: v.WorldToScreen(p.ArrowRight),
		Arrow:      p.Arrow,
		Style:      style,
	}
}

const maxLabelRunes = 40

// Label is the one-line caption drawn inside a node.
func Label(n *entities.Node) string {
	c := n.Content()
	var s string
	switch n.Type() {
	case entities.NodeTypeImage:
		s = firstNonEmpty(c.Alt, c.Caption, c.URL, "Image")
	case entities.NodeTypeCode:
		s = firstLine(c.Code)
		if c.Language != "" {
			s = fmt.Sprintf("[%s] %s", c.Language, s)
		}
	case entities.NodeTypeList:
		if len(c.Items) > 0 {
			s = fmt.Sprintf("• %s (%d items)", c.Items[0], len(c.Items))
		}
	case entities.NodeTypeTable:
		s = fmt.Sprintf("Table %d×%d", len(c.Rows), len(c.Headers))
	case entities.NodeTypeChart:
		s = fmt.Sprintf("%s chart", firstNonEmpty(c.ChartType, "bar"))
	default:
		s = firstLine(c.Text)
	}
	return truncate(s, maxLabelRunes)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}
