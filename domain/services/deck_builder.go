package services

import (
	"sort"

	"slidecanvas/domain/core/entities"
	"slidecanvas/domain/core/valueobjects"
)

// Slide is the engine-neutral record handed to a presentation engine
type Slide struct {
	ID         string             `json:"id"`
	Index      int                `json:"index"`
	Type       entities.NodeType  `json:"type"`
	Content    entities.Content   `json:"content"`
	Style      entities.Style     `json:"style"`
	Background string             `json:"background"`
	Transition string             `json:"transition"`
	Position   valueobjects.Point `json:"position"`
	Size       valueobjects.Size  `json:"size"`
}

// SlideLink is a connection between two slides, by slide id
type SlideLink struct {
	From string                  `json:"from"`
	To   string                  `json:"to"`
	Type entities.ConnectionType `json:"type"`
}

// Deck is an ordered slide sequence plus the links between slides
type Deck struct {
	Title       string      `json:"title"`
	Slides      []Slide     `json:"slides"`
	Connections []SlideLink `json:"connections"`
	FlowStyle   FlowStyle   `json:"flow_style"`
}

// DeckOptions are the project-level presentation settings
type DeckOptions struct {
	Title      string
	Background string
	Transition string
}

// DeckBuilder turns a canvas graph into an ordered deck
type DeckBuilder struct {
	analyzer *FlowAnalyzer
}

// NewDeckBuilder creates a deck builder
func NewDeckBuilder(analyzer *FlowAnalyzer) *DeckBuilder {
	if analyzer == nil {
		analyzer = NewFlowAnalyzer()
	}
	return &DeckBuilder{analyzer: analyzer}
}

// Order returns the presentation order: nodes with an explicit order hint
// first, ascending by hint, then the rest in connection flow order.
func (b *DeckBuilder) Order(nodes []*entities.Node, connections []*entities.Connection) []*entities.Node {
	ordered := b.analyzer.SortByConnectionFlow(nodes, connections)
	sort.SliceStable(ordered, func(i, j int) bool {
		oi, hasI := ordered[i].Order()
		oj, hasJ := ordered[j].Order()
		switch {
		case hasI && hasJ:
			return oi < oj
		case hasI:
			return true
		default:
			return false
		}
	})
	return ordered
}

// Build produces the deck for the nodes and connections.
func (b *DeckBuilder) Build(nodes []*entities.Node, connections []*entities.Connection, opts DeckOptions) Deck {
	ordered := b.Order(nodes, connections)
	flow := b.analyzer.AnalyzeConnectionFlow(nodes, connections)

	deck := Deck{
		Title:       opts.Title,
		Slides:      make([]Slide, 0, len(ordered)),
		Connections: make([]SlideLink, 0, len(connections)),
		FlowStyle:   flow.Style,
	}
	present := make(map[valueobjects.NodeID]struct{}, len(nodes))
	for i, n := range ordered {
		present[n.ID()] = struct{}{}
		style := n.Style()
		background := opts.Background
		if style.BackgroundColor != "" {
			background = style.BackgroundColor
		}
		deck.Slides = append(deck.Slides, Slide{
			ID:         n.ID().String(),
			Index:      i,
			Type:       n.Type(),
			Content:    n.Content(),
			Style:      style,
			Background: background,
			Transition: opts.Transition,
			Position:   n.Position(),
			Size:       n.Size(),
		})
	}
	for _, c := range connections {
		_, okFrom := present[c.StartNodeID()]
		_, okTo := present[c.EndNodeID()]
		if !okFrom || !okTo {
			continue
		}
		deck.Connections = append(deck.Connections, SlideLink{
			From: c.StartNodeID().String(),
			To:   c.EndNodeID().String(),
			Type: c.Type(),
		})
	}
	return deck
}
