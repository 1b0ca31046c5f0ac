package services

import (
	"context"
	"fmt"

	"slidecanvas/application/ports"
	"slidecanvas/domain/core/aggregates"
	"slidecanvas/domain/core/entities"
	"slidecanvas/domain/core/valueobjects"
	pkgerrors "slidecanvas/pkg/errors"

	"go.uber.org/zap"
)

// TemplateService places catalogue templates onto project canvases
type TemplateService struct {
	catalog  ports.TemplateCatalog
	projects *ProjectService
	logger   *zap.Logger
}

// NewTemplateService creates a new template service
func NewTemplateService(catalog ports.TemplateCatalog, projects *ProjectService, logger *zap.Logger) *TemplateService {
	return &TemplateService{catalog: catalog, projects: projects, logger: logger}
}

// List returns the catalogue
func (s *TemplateService) List() []ports.TemplateInfo {
	return s.catalog.List()
}

// Apply places a template with its origin at the given world point and
// returns the created nodes.
func (s *TemplateService) Apply(ctx context.Context, projectID, name string, origin valueobjects.Point) ([]*entities.Node, error) {
	tmpl, ok := s.catalog.Get(name)
	if !ok {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("template %q", name))
	}

	var created []*entities.Node
	_, err := s.projects.Mutate(ctx, projectID, "ApplyTemplate", func(p *aggregates.Project) error {
		var err error
		created, err = ApplyTemplate(p.Canvas(), tmpl, origin)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Template applied",
		zap.String("projectID", projectID),
		zap.String("template", name),
		zap.Int("nodes", len(created)),
	)
	return created, nil
}

// ApplyTemplate adds a template's nodes and connections to canvas. Every
// placeholder gets a fresh node id. The whole template is checked before
// anything is added, so a rejected template leaves the canvas untouched.
func ApplyTemplate(canvas *aggregates.Canvas, tmpl ports.Template, origin valueobjects.Point) ([]*entities.Node, error) {
	ids, err := checkTemplate(canvas, tmpl)
	if err != nil {
		return nil, err
	}

	created := make([]*entities.Node, 0, len(tmpl.Nodes))
	for _, n := range tmpl.Nodes {
		node, err := canvas.CreateNode(templateNodeSpec(n, ids[n.Ref], origin))
		if err != nil {
			return nil, fmt.Errorf("template node %q: %w", n.Ref, err)
		}
		created = append(created, node)
	}
	for _, c := range tmpl.Connections {
		spec := aggregates.ConnectionSpec{Type: entities.ConnectionType(c.Type)}
		if _, err := canvas.Connect(ids[c.From], ids[c.To], spec); err != nil {
			return nil, fmt.Errorf("template connection %s->%s: %w", c.From, c.To, err)
		}
	}
	return created, nil
}

func templateNodeSpec(n ports.TemplateNode, id valueobjects.NodeID, origin valueobjects.Point) aggregates.NodeSpec {
	spec := aggregates.NodeSpec{
		ID:       id.String(),
		Type:     entities.NodeType(n.Type),
		Position: origin.Add(valueobjects.Point{X: n.X, Y: n.Y}),
		Content:  n.Content,
		Style:    n.Style,
		Order:    n.Order,
	}
	if n.Width != 0 || n.Height != 0 {
		spec.Size = &valueobjects.Size{Width: n.Width, Height: n.Height}
	}
	return spec
}

// checkTemplate validates a template against the canvas and assigns a
// fresh id to every placeholder.
func checkTemplate(canvas *aggregates.Canvas, tmpl ports.Template) (map[string]valueobjects.NodeID, error) {
	cfg := canvas.Config()
	if canvas.NodeCount()+len(tmpl.Nodes) > cfg.MaxNodes ||
		canvas.ConnectionCount()+len(tmpl.Connections) > cfg.MaxConnections {
		return nil, pkgerrors.NewValidationError("template does not fit on the canvas").
			WithCode(pkgerrors.CodeLimitExceeded)
	}

	ids := make(map[string]valueobjects.NodeID, len(tmpl.Nodes))
	for _, n := range tmpl.Nodes {
		if n.Ref == "" {
			return nil, pkgerrors.NewValidationError("template node without placeholder")
		}
		if _, dup := ids[n.Ref]; dup {
			return nil, pkgerrors.NewValidationError(fmt.Sprintf("placeholder %q declared twice", n.Ref)).
				WithCode(pkgerrors.CodeDuplicateID)
		}
		if _, err := entities.ParseNodeType(n.Type); err != nil {
			return nil, err
		}
		if n.Width != 0 || n.Height != 0 {
			if err := (valueobjects.Size{Width: n.Width, Height: n.Height}).Validate(); err != nil {
				return nil, err
			}
		}
		if n.Content != nil && n.Content.Length() > cfg.MaxContentLength {
			return nil, pkgerrors.NewValidationError(fmt.Sprintf("placeholder %q content is too long", n.Ref)).
				WithCode(pkgerrors.CodeLimitExceeded)
		}
		ids[n.Ref] = valueobjects.NewNodeID()
	}

	pairs := make(map[[2]string]struct{}, len(tmpl.Connections))
	for _, c := range tmpl.Connections {
		for _, ref := range []string{c.From, c.To} {
			if _, ok := ids[ref]; !ok {
				return nil, pkgerrors.NewValidationError(fmt.Sprintf("connection references unknown placeholder %q", ref)).
					WithCode(pkgerrors.CodeUnknownPlaceholder)
			}
		}
		if c.From == c.To {
			return nil, pkgerrors.NewValidationError(fmt.Sprintf("placeholder %q connects to itself", c.From)).
				WithCode(pkgerrors.CodeSelfLoop)
		}
		if c.Type != "" && !entities.ConnectionType(c.Type).IsValid() {
			return nil, pkgerrors.NewValidationError(fmt.Sprintf("unknown connection type %q", c.Type))
		}
		key := [2]string{c.From, c.To}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if _, dup := pairs[key]; dup {
			return nil, pkgerrors.NewConflictError(fmt.Sprintf("placeholders %q and %q are connected twice", c.From, c.To)).
				WithCode(pkgerrors.CodeConnectionExists)
		}
		pairs[key] = struct{}{}
	}
	return ids, nil
}
