// Package svg draws canvas frames as standalone SVG documents. It backs the
// snapshot endpoint and the CLI snapshot command.
package svg

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"slidecanvas/application/render"
	"slidecanvas/domain/core/entities"
	"slidecanvas/domain/core/valueobjects"

	svgo "github.com/ajstarks/svgo"
)

// ContentType is the media type of finished snapshots
const ContentType = "image/svg+xml"

const (
	canvasBackground = "#f6f8fa"
	gridStroke       = "#e1e4e8"
	selectedStroke   = "#0969da"
	hoveredStroke    = "#54aeff"
	labelPadding     = 8
)

// Surface is a render.Surface that buffers one SVG frame. Clear starts a new
// document; Finish closes it and hands out the bytes.
type Surface struct {
	buf    bytes.Buffer
	canvas *svgo.SVG
	open   bool
}

var _ render.Surface = (*Surface)(nil)

// NewSurface creates an empty surface
func NewSurface() *Surface {
	s := &Surface{}
	s.canvas = svgo.New(&s.buf)
	return s
}

func (s *Surface) Clear(width, height float64) {
	s.buf.Reset()
	w, h := px(width), px(height)
	s.canvas.Start(w, h)
	s.canvas.Rect(0, 0, w, h, "fill:"+color(canvasBackground, canvasBackground))
	s.open = true
}

func (s *Surface) DrawGridLine(from, to valueobjects.Point) {
	s.canvas.Line(px(from.X), px(from.Y), px(to.X), px(to.Y), "stroke:"+gridStroke+";stroke-width:1")
}

func (s *Surface) DrawConnection(c render.ConnectionShape) {
	def := entities.DefaultConnectionStyle()
	stroke := color(c.Style.Color, def.Color)
	width := c.Style.Width
	if width <= 0 {
		width = def.Width
	}

	style := fmt.Sprintf("fill:none;stroke:%s;stroke-width:%s", stroke, num(width))
	if len(c.Style.Dash) > 0 {
		parts := make([]string, len(c.Style.Dash))
		for i, d := range c.Style.Dash {
			parts[i] = num(d)
		}
		style += ";stroke-dasharray:" + strings.Join(parts, ",")
	}
	d := fmt.Sprintf("M%d,%d C%d,%d %d,%d %d,%d",
		px(c.Start.X), px(c.Start.Y),
		px(c.Control1.X), px(c.Control1.Y),
		px(c.Control2.X), px(c.Control2.Y),
		px(c.End.X), px(c.End.Y))
	s.canvas.Path(d, style)

	if c.Arrow {
		xs := []int{px(c.End.X), px(c.ArrowLeft.X), px(c.ArrowRight.X)}
		ys := []int{px(c.End.Y), px(c.ArrowLeft.Y), px(c.ArrowRight.Y)}
		s.canvas.Polygon(xs, ys, "fill:"+stroke)
	}
}

func (s *Surface) DrawNode(n render.NodeShape) {
	def := entities.DefaultStyle(n.Type)
	fill := color(n.Style.BackgroundColor, def.BackgroundColor)
	stroke := color(n.Style.BorderColor, def.BorderColor)
	strokeWidth := 1
	switch {
	case n.Selected:
		stroke, strokeWidth = selectedStroke, 3
	case n.Hovered:
		stroke, strokeWidth = hoveredStroke, 2
	}

	x, y, w, h := px(n.Rect.X), px(n.Rect.Y), px(n.Rect.Width), px(n.Rect.Height)
	s.canvas.Roundrect(x, y, w, h, 6, 6,
		fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%d", fill, stroke, strokeWidth))

	if n.Label == "" {
		return
	}
	fontSize := n.Style.FontSize
	if fontSize <= 0 {
		fontSize = def.FontSize
	}
	textFill := "#24292f"
	if n.Type == entities.NodeTypeCode {
		textFill = "#d4d4d4"
	}
	tx, anchor := x+labelPadding, "start"
	switch n.Style.TextAlign {
	case "center":
		tx, anchor = x+w/2, "middle"
	case "right":
		tx, anchor = x+w-labelPadding, "end"
	}
	s.canvas.Text(tx, y+h/2, n.Label,
		fmt.Sprintf("fill:%s;font-family:sans-serif;font-size:%spx;text-anchor:%s;dominant-baseline:middle",
			textFill, num(fontSize), anchor))
}

// Finish closes the document. It is safe to call more than once.
func (s *Surface) Finish() []byte {
	if s.open {
		s.canvas.End()
		s.open = false
	}
	return s.buf.Bytes()
}

// WriteTo closes the document and copies it to w
func (s *Surface) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(s.Finish())
	return int64(n), err
}

func px(v float64) int { return int(math.Round(v)) }

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// color keeps a user supplied colour only if it cannot break out of the
// style attribute.
func color(v, fallback string) string {
	if v == "" {
		return fallback
	}
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '#', r == '.', r == ',', r == '(', r == ')', r == ' ', r == '%':
		default:
			return fallback
		}
	}
	return v
}
