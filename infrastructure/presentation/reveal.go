package presentation

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"slidecanvas/application/ports"
	"slidecanvas/domain/core/entities"
	"slidecanvas/domain/services"
)

const revealPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="{{.AssetBase}}/dist/reveal.css">
<link rel="stylesheet" href="{{.AssetBase}}/dist/theme/white.css">
</head>
<body>
<div class="reveal"><div class="slides">
{{- range .Slides}}
<section id="{{.ID}}" data-transition="{{.Transition}}"{{with .Background}} data-background-color="{{.}}"{{end}}>
{{.Body}}
</section>
{{- end}}
</div></div>
<script src="{{.AssetBase}}/dist/reveal.js"></script>
<script>Reveal.initialize({hash: true, overview: true, transition: {{.Transition}}});</script>
</body>
</html>
`

// DefaultRevealAssets is where the Reveal runtime is loaded from
const DefaultRevealAssets = "https://cdn.jsdelivr.net/npm/reveal.js@5"

// RevealAdapter renders decks as horizontal Reveal sections in deck order
type RevealAdapter struct {
	assetBase string
	body      *template.Template
	page      *template.Template
}

var _ ports.PresentationEngine = (*RevealAdapter)(nil)

// NewRevealAdapter creates the engine. An empty assetBase uses the CDN.
func NewRevealAdapter(assetBase string) *RevealAdapter {
	if assetBase == "" {
		assetBase = DefaultRevealAssets
	}
	return &RevealAdapter{
		assetBase: assetBase,
		body:      newBodyTemplate(true),
		page:      template.Must(template.New("reveal").Parse(revealPage)),
	}
}

// Capabilities describes a linear engine that renders every node type
func (a *RevealAdapter) Capabilities() services.EngineCapabilities {
	return services.EngineCapabilities{
		ID:             "reveal",
		Name:           "Reveal",
		SupportedTypes: append([]entities.NodeType(nil), entities.AllNodeTypes...),
		Features: services.EngineFeatures{
			Overview:  true,
			Fragments: true,
			CustomCSS: true,
			Linear:    true,
		},
	}
}

func (a *RevealAdapter) ContentType() string { return ContentTypeHTML }

// Render produces the page
func (a *RevealAdapter) Render(ctx context.Context, deck services.Deck) ([]byte, error) {
	slides, err := renderSlides(ctx, a.body, deck)
	if err != nil {
		return nil, err
	}
	transition := "slide"
	if len(deck.Slides) > 0 && deck.Slides[0].Transition != "" {
		transition = deck.Slides[0].Transition
	}

	var buf bytes.Buffer
	err = a.page.Execute(&buf, struct {
		Title      string
		AssetBase  string
		Transition string
		Slides     []renderedSlide
	}{deck.Title, a.assetBase, transition, slides})
	if err != nil {
		return nil, fmt.Errorf("failed to render reveal page: %w", err)
	}
	return buf.Bytes(), nil
}
