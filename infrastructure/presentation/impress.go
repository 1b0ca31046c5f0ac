package presentation

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"math"
	"strings"

	"slidecanvas/application/ports"
	"slidecanvas/domain/core/entities"
	"slidecanvas/domain/core/valueobjects"
	"slidecanvas/domain/services"
)

const impressPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>.step{width:900px;padding:40px;}{{if .Background}} body{background:{{.Background}};}{{end}}</style>
</head>
<body class="impress-not-supported">
<div id="impress" data-transition-duration="1000">
{{- range .Steps}}
<div id="{{.ID}}" class="step" data-x="{{.X}}" data-y="{{.Y}}"{{with .Links}} data-links="{{.}}"{{end}}>
{{.Body}}
</div>
{{- end}}
{{- with .Overview}}
<div id="overview" class="step" data-x="{{.X}}" data-y="{{.Y}}" data-scale="{{.Scale}}"></div>
{{- end}}
</div>
<script src="{{.AssetBase}}/js/impress.js"></script>
<script>impress().init();</script>
</body>
</html>
`

// DefaultImpressAssets is where the Impress runtime is loaded from
const DefaultImpressAssets = "https://cdn.jsdelivr.net/gh/impress/impress.js@2.0.0"

// stepSpread maps canvas units to Impress pixels; canvas nodes are a fifth
// of a step wide.
const stepSpread = 5.0

// ImpressAdapter renders decks as Impress steps placed where the nodes sit
// on the canvas, so branching layouts stay spatial.
type ImpressAdapter struct {
	assetBase string
	body      *template.Template
	page      *template.Template
}

var _ ports.PresentationEngine = (*ImpressAdapter)(nil)

// NewImpressAdapter creates the engine. An empty assetBase uses the CDN.
func NewImpressAdapter(assetBase string) *ImpressAdapter {
	if assetBase == "" {
		assetBase = DefaultImpressAssets
	}
	return &ImpressAdapter{
		assetBase: assetBase,
		body:      newBodyTemplate(false),
		page:      template.Must(template.New("impress").Parse(impressPage)),
	}
}

// Capabilities describes a spatial engine without table or chart support
func (a *ImpressAdapter) Capabilities() services.EngineCapabilities {
	return services.EngineCapabilities{
		ID:   "impress",
		Name: "Impress",
		SupportedTypes: []entities.NodeType{
			entities.NodeTypeText,
			entities.NodeTypeHeading,
			entities.NodeTypeImage,
			entities.NodeTypeCode,
			entities.NodeTypeList,
		},
		Features: services.EngineFeatures{
			Overview:  true,
			CustomCSS: true,
			Spatial:   true,
		},
	}
}

func (a *ImpressAdapter) ContentType() string { return ContentTypeHTML }

type impressStep struct {
	renderedSlide
	X, Y  int
	Links string
}

type impressOverview struct {
	X, Y  int
	Scale float64
}

// Render produces the page. Steps follow deck order; their coordinates come
// from the canvas.
func (a *ImpressAdapter) Render(ctx context.Context, deck services.Deck) ([]byte, error) {
	slides, err := renderSlides(ctx, a.body, deck)
	if err != nil {
		return nil, err
	}

	links := make(map[string][]string)
	for _, l := range deck.Connections {
		links[l.From] = append(links[l.From], l.To)
	}

	steps := make([]impressStep, len(slides))
	var bounds valueobjects.Rect
	for i, s := range slides {
		center := valueobjects.Point{X: s.Position.X + s.Size.Width/2, Y: s.Position.Y + s.Size.Height/2}
		steps[i] = impressStep{
			renderedSlide: s,
			X:             int(math.Round(center.X * stepSpread)),
			Y:             int(math.Round(center.Y * stepSpread)),
			Links:         strings.Join(links[s.ID], " "),
		}
		r := valueobjects.Rect{X: s.Position.X, Y: s.Position.Y, Width: s.Size.Width, Height: s.Size.Height}
		if i == 0 {
			bounds = r
		} else {
			bounds = bounds.Union(r)
		}
	}

	var overview *impressOverview
	if len(steps) > 1 {
		c := bounds.Center()
		// A step is 900px wide at scale 1
		scale := math.Max(bounds.Width, bounds.Height) * stepSpread / 900
		overview = &impressOverview{
			X:     int(math.Round(c.X * stepSpread)),
			Y:     int(math.Round(c.Y * stepSpread)),
			Scale: math.Max(1, math.Round(scale*10)/10),
		}
	}

	background := ""
	if len(deck.Slides) > 0 {
		background = cssValue(deck.Slides[0].Background)
	}

	var buf bytes.Buffer
	err = a.page.Execute(&buf, struct {
		Title      string
		AssetBase  string
		Background template.CSS
		Steps      []impressStep
		Overview   *impressOverview
	}{deck.Title, a.assetBase, template.CSS(background), steps, overview})
	if err != nil {
		return nil, fmt.Errorf("failed to render impress page: %w", err)
	}
	return buf.Bytes(), nil
}
