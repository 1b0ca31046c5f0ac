package services

import (
	"math"

	"slidecanvas/domain/config"
	"slidecanvas/domain/core/entities"
	"slidecanvas/domain/core/valueobjects"
)

// Anchor names the spot on a node border where a connection attaches
type Anchor string

const (
	AnchorTop    Anchor = "top"
	AnchorRight  Anchor = "right"
	AnchorBottom Anchor = "bottom"
	AnchorLeft   Anchor = "left"
	AnchorCenter Anchor = "center"
)

// normal is the outward direction of the anchor.
func (a Anchor) normal() valueobjects.Point {
	switch a {
	case AnchorTop:
		return valueobjects.Point{X: 0, Y: -1}
	case AnchorRight:
		return valueobjects.Point{X: 1, Y: 0}
	case AnchorBottom:
		return valueobjects.Point{X: 0, Y: 1}
	case AnchorLeft:
		return valueobjects.Point{X: -1, Y: 0}
	default:
		return valueobjects.Point{}
	}
}

// AnchorPoint is a resolved anchor in world space
type AnchorPoint struct {
	Anchor Anchor             `json:"anchor"`
	Point  valueobjects.Point `json:"point"`
}

// Path is the drawable geometry of one connection: a cubic bezier from
// Start to End plus a two-segment arrowhead at End.
type Path struct {
	ConnectionID string             `json:"connection_id,omitempty"`
	Start        AnchorPoint        `json:"start"`
	End          AnchorPoint        `json:"end"`
	Control1     valueobjects.Point `json:"control1"`
	Control2     valueobjects.Point `json:"control2"`
	ArrowLeft    valueobjects.Point `json:"arrow_left"`
	ArrowRight   valueobjects.Point `json:"arrow_right"`
	Arrow        bool               `json:"arrow"`
}

// PointAt evaluates the curve at t in [0, 1].
func (p Path) PointAt(t float64) valueobjects.Point {
	t = math.Max(0, math.Min(1, t))
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return valueobjects.Point{
		X: a*p.Start.Point.X + b*p.Control1.X + c*p.Control2.X + d*p.End.Point.X,
		Y: a*p.Start.Point.Y + b*p.Control1.Y + c*p.Control2.Y + d*p.End.Point.Y,
	}
}

// Bounds returns the box around the control polygon and arrowhead. A bezier
// never leaves the hull of its control points, so this box contains the
// whole drawn connection.
func (p Path) Bounds() valueobjects.Rect {
	points := []valueobjects.Point{p.Start.Point, p.Control1, p.Control2, p.End.Point}
	if p.Arrow {
		points = append(points, p.ArrowLeft, p.ArrowRight)
	}
	return valueobjects.RectFromPoints(points...)
}

// IsVisible reports whether any part of the path can fall inside view.
func (p Path) IsVisible(view valueobjects.Rect) bool {
	return p.Bounds().Intersects(view)
}

// ConnectionRouter computes connection geometry from node placement
type ConnectionRouter struct {
	cfg *config.DomainConfig
}

// NewConnectionRouter creates a router using the configured curve and arrow
// parameters
func NewConnectionRouter(cfg *config.DomainConfig) *ConnectionRouter {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &ConnectionRouter{cfg: cfg}
}

// OptimalPoints picks the anchors on the sides of start and end that face
// each other. Horizontal distance between centres dominating gives
// right/left anchors, otherwise bottom/top.
func (r *ConnectionRouter) OptimalPoints(start, end *entities.Node) (AnchorPoint, AnchorPoint) {
	sc, ec := start.Center(), end.Center()
	dx, dy := ec.X-sc.X, ec.Y-sc.Y

	var from, to Anchor
	switch {
	case dx == 0 && dy == 0:
		from, to = AnchorCenter, AnchorCenter
	case math.Abs(dx) > math.Abs(dy):
		if dx > 0 {
			from, to = AnchorRight, AnchorLeft
		} else {
			from, to = AnchorLeft, AnchorRight
		}
	default:
		if dy > 0 {
			from, to = AnchorBottom, AnchorTop
		} else {
			from, to = AnchorTop, AnchorBottom
		}
	}
	return resolveAnchor(start, from), resolveAnchor(end, to)
}

func resolveAnchor(n *entities.Node, a Anchor) AnchorPoint {
	b := n.Bounds()
	c := b.Center()
	var p valueobjects.Point
	switch a {
	case AnchorTop:
		p = valueobjects.Point{X: c.X, Y: b.Y}
	case AnchorRight:
		p = valueobjects.Point{X: b.Right(), Y: c.Y}
	case AnchorBottom:
		p = valueobjects.Point{X: c.X, Y: b.Bottom()}
	case AnchorLeft:
		p = valueobjects.Point{X: b.X, Y: c.Y}
	default:
		p = c
	}
	return AnchorPoint{Anchor: a, Point: p}
}

// Route builds the bezier between the optimal anchors. Control points sit
// along each anchor's outward normal at min(distance*factor, cap).
func (r *ConnectionRouter) Route(start, end *entities.Node) Path {
	from, to := r.OptimalPoints(start, end)

	dist := from.Point.DistanceTo(to.Point)
	offset := math.Min(dist*r.cfg.ControlOffsetFactor, r.cfg.MaxControlOffset)

	path := Path{
		Start:    from,
		End:      to,
		Control1: from.Point.Add(from.Anchor.normal().Scale(offset)),
		Control2: to.Point.Add(to.Anchor.normal().Scale(offset)),
		Arrow:    true,
	}
	path.ArrowLeft, path.ArrowRight = r.arrowHead(path)
	return path
}

// RouteConnection routes a stored connection and applies its arrow style.
func (r *ConnectionRouter) RouteConnection(conn *entities.Connection, start, end *entities.Node) Path {
	path := r.Route(start, end)
	path.ConnectionID = conn.ID().String()
	path.Arrow = conn.Style().Arrow != entities.ArrowHeadNone
	return path
}

// arrowHead returns the far ends of the two arrow segments drawn back from
// the end point at ±ArrowAngle around the end tangent.
func (r *ConnectionRouter) arrowHead(p Path) (valueobjects.Point, valueobjects.Point) {
	tip := p.End.Point
	dir := tip.Sub(p.Control2)
	if dir.X == 0 && dir.Y == 0 {
		dir = tip.Sub(p.Start.Point)
	}
	if dir.X == 0 && dir.Y == 0 {
		return tip, tip
	}

	angle := math.Atan2(dir.Y, dir.X)
	spread := r.cfg.ArrowAngleDegrees * math.Pi / 180
	length := r.cfg.ArrowLength

	left := valueobjects.Point{
		X: tip.X - length*math.Cos(angle-spread),
		Y: tip.Y - length*math.Sin(angle-spread),
	}
	right := valueobjects.Point{
		X: tip.X - length*math.Cos(angle+spread),
		Y: tip.Y - length*math.Sin(angle+spread),
	}
	return left, right
}
