// Package presentation holds the HTML presentation engines. Each engine
// turns an ordered deck into one standalone page.
package presentation

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"slidecanvas/domain/core/entities"
	"slidecanvas/domain/services"
)

// ContentTypeHTML is the media type of every rendered deck
const ContentTypeHTML = "text/html; charset=utf-8"

// bodyTemplates renders the inner markup of one slide by node type. Both
// engines share it; they differ only in the page around the slides.
const bodyTemplates = `
{{define "text"}}<div class="text"{{styleAttr .Style}}>{{paragraphs .Content.Text}}</div>{{end}}

{{define "heading"}}{{headingTag .Content.Level .Content.Text .Style}}{{end}}

{{define "image"}}<figure{{styleAttr .Style}}>
  <img src="{{.Content.URL}}" alt="{{.Content.Alt}}">
  {{- with .Content.Caption}}<figcaption>{{.}}</figcaption>{{end}}
</figure>{{end}}

{{define "code"}}<pre{{styleAttr .Style}}><code{{with .Content.Language}} class="language-{{.}}"{{end}}>{{.Content.Code}}</code></pre>{{end}}

{{define "list"}}{{if .Content.Ordered}}<ol{{styleAttr .Style}}>{{else}}<ul{{styleAttr .Style}}>{{end}}
  {{- range .Content.Items}}<li{{fragment}}>{{.}}</li>{{end}}
{{if .Content.Ordered}}</ol>{{else}}</ul>{{end}}{{end}}

{{define "table"}}<table{{styleAttr .Style}}>
  {{- with .Content.Headers}}<thead><tr>{{range .}}<th>{{.}}</th>{{end}}</tr></thead>{{end}}
  <tbody>{{range .Content.Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}</tbody>
</table>{{end}}

{{define "chart"}}<figure class="chart chart-{{.Content.ChartType}}"{{styleAttr .Style}}>
  <table>
    {{- range $i, $label := .Content.Labels}}<tr><th>{{$label}}</th><td>{{index $.Content.Values $i}}</td></tr>{{end}}
  </table>
</figure>{{end}}
`

// newBodyTemplate parses the per-type slide bodies. fragments marks list
// items as stepwise reveals.
func newBodyTemplate(fragments bool) *template.Template {
	funcs := template.FuncMap{
		"paragraphs": paragraphs,
		"headingTag": headingTag,
		"styleAttr":  styleAttr,
		"fragment": func() template.HTMLAttr {
			if fragments {
				return ` class="fragment"`
			}
			return ""
		},
	}
	return template.Must(template.New("slides").Funcs(funcs).Parse(bodyTemplates))
}

func renderBody(t *template.Template, slide services.Slide) (template.HTML, error) {
	name := string(slide.Type)
	if t.Lookup(name) == nil {
		name = string(entities.NodeTypeText)
	}
	if slide.Type == entities.NodeTypeChart && len(slide.Content.Values) < len(slide.Content.Labels) {
		values := make([]float64, len(slide.Content.Labels))
		copy(values, slide.Content.Values)
		slide.Content.Values = values
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, slide); err != nil {
		return "", fmt.Errorf("failed to render %s slide %s: %w", slide.Type, slide.ID, err)
	}
	return template.HTML(buf.String()), nil
}

// renderedSlide is a slide plus its finished inner markup
type renderedSlide struct {
	services.Slide
	Body template.HTML
}

func renderSlides(ctx context.Context, t *template.Template, deck services.Deck) ([]renderedSlide, error) {
	out := make([]renderedSlide, 0, len(deck.Slides))
	for _, s := range deck.Slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		body, err := renderBody(t, s)
		if err != nil {
			return nil, err
		}
		out = append(out, renderedSlide{Slide: s, Body: body})
	}
	return out, nil
}

func paragraphs(text string) template.HTML {
	var b strings.Builder
	for _, p := range strings.Split(strings.TrimSpace(text), "\n\n") {
		if p == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(template.HTMLEscapeString(p), "\n", "<br>"))
		b.WriteString("</p>")
	}
	return template.HTML(b.String())
}

func headingTag(level int, text string, style entities.Style) template.HTML {
	if level < 1 || level > 6 {
		level = 1
	}
	return template.HTML(fmt.Sprintf("<h%d%s>%s</h%d>",
		level, styleAttr(style), template.HTMLEscapeString(text), level))
}

// styleAttr renders a node style as an inline style attribute. Values are
// escaped and restricted to characters valid in colours, lengths and keywords.
func styleAttr(style entities.Style) template.HTMLAttr {
	var decls []string
	if v := cssValue(style.BackgroundColor); v != "" {
		decls = append(decls, "background-color:"+v)
	}
	if v := cssValue(style.BorderColor); v != "" {
		decls = append(decls, "border:2px solid "+v)
	}
	if v := cssValue(style.TextAlign); v != "" {
		decls = append(decls, "text-align:"+v)
	}
	if style.FontSize > 0 {
		decls = append(decls, fmt.Sprintf("font-size:%gpx", style.FontSize))
	}
	if len(decls) == 0 {
		return ""
	}
	return template.HTMLAttr(` style="` + strings.Join(decls, ";") + `"`)
}

func cssValue(v string) string {
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '#', r == '-', r == '.', r == '%', r == ',', r == '(', r == ')', r == ' ':
		default:
			return ""
		}
	}
	return v
}
