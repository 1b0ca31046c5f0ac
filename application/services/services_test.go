package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"slidecanvas/application/ports"
	"slidecanvas/domain/core/aggregates"
	"slidecanvas/domain/core/entities"
	"slidecanvas/domain/core/valueobjects"
	"slidecanvas/domain/events"
	domainservices "slidecanvas/domain/services"
	"slidecanvas/infrastructure/messaging"
	"slidecanvas/infrastructure/persistence/memory"
	pkgerrors "slidecanvas/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEngine struct {
	caps  domainservices.EngineCapabilities
	err   error
	decks []domainservices.Deck
}

func (e *fakeEngine) Capabilities() domainservices.EngineCapabilities { return e.caps }
func (e *fakeEngine) ContentType() string                             { return "text/plain" }

func (e *fakeEngine) Render(ctx context.Context, deck domainservices.Deck) ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.decks = append(e.decks, deck)
	titles := make([]string, len(deck.Slides))
	for i, s := range deck.Slides {
		titles[i] = s.Content.Text
	}
	return []byte(strings.Join(titles, "|")), nil
}

func linearEngine() *fakeEngine {
	return &fakeEngine{caps: domainservices.EngineCapabilities{
		ID:             "linear",
		Name:           "Linear",
		SupportedTypes: []entities.NodeType{entities.NodeTypeText, entities.NodeTypeHeading},
		Features:       domainservices.EngineFeatures{Linear: true},
	}}
}

func spatialEngine() *fakeEngine {
	return &fakeEngine{caps: domainservices.EngineCapabilities{
		ID:             "spatial",
		Name:           "Spatial",
		SupportedTypes: []entities.NodeType{entities.NodeTypeText, entities.NodeTypeHeading},
		Features:       domainservices.EngineFeatures{Spatial: true},
	}}
}

type fixture struct {
	ctx      context.Context
	repo     *memory.ProjectRepository
	bus      *messaging.MemoryBus
	projects *ProjectService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := memory.NewProjectRepository(nil)
	bus := messaging.NewMemoryBus(100, zap.NewNop())
	return &fixture{
		ctx:      context.Background(),
		repo:     repo,
		bus:      bus,
		projects: NewProjectService(repo, bus, nil, zap.NewNop()),
	}
}

func (f *fixture) project(t *testing.T) *aggregates.Project {
	t.Helper()
	p, err := f.projects.CreateProject(f.ctx, CreateProjectCommand{Name: "Launch"})
	require.NoError(t, err)
	return p
}

func (f *fixture) text(t *testing.T, projectID, text string, x float64) *entities.Node {
	t.Helper()
	n, err := f.projects.CreateNode(f.ctx, projectID, aggregates.NodeSpec{
		Type:     entities.NodeTypeText,
		Position: valueobjects.Point{X: x},
		Content:  &entities.Content{Text: text},
	})
	require.NoError(t, err)
	return n
}

func eventTypes(es []events.DomainEvent) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.GetEventType()
	}
	return out
}

func TestProjectService_CreateProjectValidates(t *testing.T) {
	f := newFixture(t)

	_, err := f.projects.CreateProject(f.ctx, CreateProjectCommand{Name: ""})
	assert.True(t, pkgerrors.IsValidation(err))

	p := f.project(t)
	assert.Equal(t, 1, p.Version())

	list, err := f.projects.ListProjects(f.ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Launch", list[0].Name)
}

func TestProjectService_MutationsPersistAndPublish(t *testing.T) {
	f := newFixture(t)
	p := f.project(t)
	id := p.ID().String()

	a := f.text(t, id, "A", 0)
	b := f.text(t, id, "B", 400)
	conn, err := f.projects.Connect(f.ctx, id, a.ID().String(), b.ID().String(), aggregates.ConnectionSpec{})
	require.NoError(t, err)

	moved, err := f.projects.MoveNode(f.ctx, id, a.ID().String(), valueobjects.Point{X: 20, Y: 40})
	require.NoError(t, err)
	assert.Equal(t, valueobjects.Point{X: 20, Y: 40}, moved.Position())

	require.NoError(t, f.projects.RemoveConnection(f.ctx, id, conn.ID().String()))

	stored, err := f.projects.GetProject(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Canvas().NodeCount())
	assert.Equal(t, 0, stored.Canvas().ConnectionCount())
	assert.Equal(t, 6, stored.Version())

	assert.Equal(t, []string{
		events.TypeNodeCreated,
		events.TypeNodeCreated,
		events.TypeConnectionCreated,
		events.TypeNodeMoved,
		events.TypeConnectionDeleted,
	}, eventTypes(f.bus.EventsFor(id)))
}

func TestProjectService_FailedMutationIsNotSaved(t *testing.T) {
	f := newFixture(t)
	p := f.project(t)
	id := p.ID().String()
	a := f.text(t, id, "A", 0)

	_, err := f.projects.Connect(f.ctx, id, a.ID().String(), a.ID().String(), aggregates.ConnectionSpec{})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeSelfLoop))

	stored, err := f.projects.GetProject(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Version())
	assert.Len(t, f.bus.EventsFor(id), 1)
}

func TestProjectService_NotFound(t *testing.T) {
	f := newFixture(t)
	p := f.project(t)
	id := p.ID().String()
	missing := valueobjects.NewNodeID().String()

	_, err := f.projects.MoveNode(f.ctx, id, missing, valueobjects.Point{})
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.True(t, pkgerrors.IsNotFound(f.projects.DeleteNode(f.ctx, id, missing)))
	assert.True(t, pkgerrors.IsNotFound(f.projects.RemoveConnection(f.ctx, id, valueobjects.NewConnectionID().String())))

	_, err = f.projects.GetProject(f.ctx, valueobjects.NewProjectID().String())
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestProjectService_DeleteNodeCascades(t *testing.T) {
	f := newFixture(t)
	p := f.project(t)
	id := p.ID().String()
	a := f.text(t, id, "A", 0)
	b := f.text(t, id, "B", 400)
	_, err := f.projects.Connect(f.ctx, id, a.ID().String(), b.ID().String(), aggregates.ConnectionSpec{})
	require.NoError(t, err)

	require.NoError(t, f.projects.DeleteNode(f.ctx, id, a.ID().String()))
	stored, err := f.projects.GetProject(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Canvas().NodeCount())
	assert.Equal(t, 0, stored.Canvas().ConnectionCount())
}

func TestProjectService_ImportDropsInvalidConnections(t *testing.T) {
	f := newFixture(t)
	source, err := aggregates.NewProject("Imported", nil)
	require.NoError(t, err)
	n, err := source.Canvas().CreateNode(aggregates.NodeSpec{Type: entities.NodeTypeText})
	require.NoError(t, err)

	doc := source.Serialize()
	doc.ID = ""
	doc.Connections = append(doc.Connections, entities.ConnectionData{
		ID:          valueobjects.NewConnectionID().String(),
		StartNodeID: n.ID().String(),
		EndNodeID:   valueobjects.NewNodeID().String(),
		Type:        entities.ConnectionTypeFlow,
	})

	imported, err := f.projects.ImportProject(f.ctx, doc)
	require.NoError(t, err)
	assert.NotEqual(t, source.ID(), imported.ID())
	assert.Equal(t, 1, imported.DroppedConnections())
	assert.Equal(t, 0, imported.Canvas().ConnectionCount())
	assert.Equal(t, 1, imported.Version())
}

func TestProjectService_StaleWriteSurfacesConflict(t *testing.T) {
	f := newFixture(t)
	p := f.project(t)

	stale, err := f.repo.FindByID(f.ctx, p.ID())
	require.NoError(t, err)
	_, err = f.projects.RenameProject(f.ctx, p.ID().String(), "Renamed")
	require.NoError(t, err)

	err = f.repo.Save(f.ctx, stale)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeVersionConflict))
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, []events.DomainEvent) error {
	return errors.New("broker unreachable")
}

func TestProjectService_PublishFailureIsNotFatal(t *testing.T) {
	repo := memory.NewProjectRepository(nil)
	svc := NewProjectService(repo, failingPublisher{}, nil, zap.NewNop())
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, CreateProjectCommand{Name: "Resilient"})
	require.NoError(t, err)
	_, err = svc.CreateNode(ctx, p.ID().String(), aggregates.NodeSpec{Type: entities.NodeTypeHeading})
	require.NoError(t, err)

	stored, err := svc.GetProject(ctx, p.ID().String())
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Canvas().NodeCount())
}

func TestPresentationService_RecommendsAndGenerates(t *testing.T) {
	f := newFixture(t)
	linear, spatial := linearEngine(), spatialEngine()
	svc, err := NewPresentationService([]ports.PresentationEngine{linear, spatial}, f.bus, zap.NewNop())
	require.NoError(t, err)

	p := f.project(t)
	id := p.ID().String()
	a := f.text(t, id, "Intro", 0)
	b := f.text(t, id, "Body", 400)
	c := f.text(t, id, "Close", 800)
	_, err = f.projects.Connect(f.ctx, id, a.ID().String(), b.ID().String(), aggregates.ConnectionSpec{})
	require.NoError(t, err)
	_, err = f.projects.Connect(f.ctx, id, b.ID().String(), c.ID().String(), aggregates.ConnectionSpec{})
	require.NoError(t, err)

	stored, err := f.projects.GetProject(f.ctx, id)
	require.NoError(t, err)

	rec, err := svc.Recommend(stored)
	require.NoError(t, err)
	assert.Equal(t, "linear", rec.EngineID)
	assert.Equal(t, domainservices.ReasonConnectionAware, rec.Reason)

	out, err := svc.Generate(f.ctx, stored, GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "linear", out.EngineID)
	assert.Equal(t, 3, out.SlideCount)
	assert.Equal(t, "Intro|Body|Close", string(out.Document))
	assert.Equal(t, []string{a.ID().String(), b.ID().String(), c.ID().String()}, svc.Order(stored))

	generated := f.bus.EventsFor(id)
	last := generated[len(generated)-1]
	require.Equal(t, events.TypePresentationGenerated, last.GetEventType())
	assert.Equal(t, "linear", last.(events.PresentationGenerated).EngineID)
}

func TestPresentationService_EngineChoice(t *testing.T) {
	f := newFixture(t)
	svc, err := NewPresentationService([]ports.PresentationEngine{linearEngine(), spatialEngine()}, nil, zap.NewNop())
	require.NoError(t, err)

	p := f.project(t)
	f.text(t, p.ID().String(), "Only", 0)
	stored, err := f.projects.GetProject(f.ctx, p.ID().String())
	require.NoError(t, err)

	out, err := svc.Generate(f.ctx, stored, GenerateOptions{EngineID: "spatial"})
	require.NoError(t, err)
	assert.Equal(t, "spatial", out.EngineID)

	settings := stored.Settings()
	settings.PreferredEngine = "spatial"
	require.NoError(t, stored.UpdateSettings(settings))
	out, err = svc.Generate(f.ctx, stored, GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "spatial", out.EngineID)

	_, err = svc.Generate(f.ctx, stored, GenerateOptions{EngineID: "keynote"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnknownEngine))
}

func TestPresentationService_UnsupportedNodesAreIssues(t *testing.T) {
	f := newFixture(t)
	svc, err := NewPresentationService([]ports.PresentationEngine{linearEngine()}, nil, zap.NewNop())
	require.NoError(t, err)

	p := f.project(t)
	f.text(t, p.ID().String(), "Text", 0)
	chart, err := f.projects.CreateNode(f.ctx, p.ID().String(), aggregates.NodeSpec{Type: entities.NodeTypeChart})
	require.NoError(t, err)
	stored, err := f.projects.GetProject(f.ctx, p.ID().String())
	require.NoError(t, err)

	issues, err := svc.Validate(stored, "linear")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, chart.ID().String(), issues[0].NodeID)

	out, err := svc.Generate(f.ctx, stored, GenerateOptions{})
	require.NoError(t, err)
	assert.Len(t, out.Issues, 1)
	assert.Equal(t, 2, out.SlideCount)
}

func TestPresentationService_RenderFailure(t *testing.T) {
	f := newFixture(t)
	broken := linearEngine()
	broken.err = errors.New("template exploded")
	svc, err := NewPresentationService([]ports.PresentationEngine{broken}, nil, zap.NewNop())
	require.NoError(t, err)

	p := f.project(t)
	_, err = svc.Generate(f.ctx, p, GenerateOptions{})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeInternal))
}

func TestPresentationService_DuplicateEngine(t *testing.T) {
	_, err := NewPresentationService([]ports.PresentationEngine{linearEngine(), linearEngine()}, nil, zap.NewNop())
	require.Error(t, err)
}

type mapCatalog map[string]ports.Template

func (c mapCatalog) List() []ports.TemplateInfo {
	var out []ports.TemplateInfo
	for _, t := range c {
		out = append(out, t.TemplateInfo)
	}
	return out
}

func (c mapCatalog) Get(name string) (ports.Template, bool) {
	t, ok := c[name]
	return t, ok
}

func pairTemplate() ports.Template {
	return ports.Template{
		TemplateInfo: ports.TemplateInfo{Name: "pair"},
		Nodes: []ports.TemplateNode{
			{Ref: "title", Type: "heading", X: 0, Y: 0, Content: &entities.Content{Text: "Title"}},
			{Ref: "body", Type: "text", X: 0, Y: 200},
		},
		Connections: []ports.TemplateConnection{{From: "title", To: "body"}},
	}
}

func TestTemplateService_ApplyOffsetsAndConnects(t *testing.T) {
	f := newFixture(t)
	svc := NewTemplateService(mapCatalog{"pair": pairTemplate()}, f.projects, zap.NewNop())
	p := f.project(t)

	created, err := svc.Apply(f.ctx, p.ID().String(), "pair", valueobjects.Point{X: 100, Y: 50})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, valueobjects.Point{X: 100, Y: 50}, created[0].Position())
	assert.Equal(t, valueobjects.Point{X: 100, Y: 250}, created[1].Position())
	assert.NotEqual(t, "title", created[0].ID().String())

	stored, err := f.projects.GetProject(f.ctx, p.ID().String())
	require.NoError(t, err)
	assert.True(t, stored.Canvas().HasConnectionBetween(created[0].ID(), created[1].ID()))

	// A second application gets fresh ids
	again, err := svc.Apply(f.ctx, p.ID().String(), "pair", valueobjects.Point{})
	require.NoError(t, err)
	assert.NotEqual(t, created[0].ID(), again[0].ID())
}

func TestTemplateService_UnknownTemplate(t *testing.T) {
	f := newFixture(t)
	svc := NewTemplateService(mapCatalog{}, f.projects, zap.NewNop())
	p := f.project(t)

	_, err := svc.Apply(f.ctx, p.ID().String(), "missing", valueobjects.Point{})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestApplyTemplate_RejectsBeforeMutating(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(tmpl *ports.Template)
		code   string
	}{
		{
			name:   "unknown placeholder",
			mutate: func(tmpl *ports.Template) { tmpl.Connections[0].To = "ghost" },
			code:   pkgerrors.CodeUnknownPlaceholder,
		},
		{
			name:   "self loop",
			mutate: func(tmpl *ports.Template) { tmpl.Connections[0].To = "title" },
			code:   pkgerrors.CodeSelfLoop,
		},
		{
			name:   "duplicate placeholder",
			mutate: func(tmpl *ports.Template) { tmpl.Nodes[1].Ref = "title" },
			code:   pkgerrors.CodeDuplicateID,
		},
		{
			name: "reverse duplicate pair",
			mutate: func(tmpl *ports.Template) {
				tmpl.Connections = append(tmpl.Connections, ports.TemplateConnection{From: "body", To: "title"})
			},
			code: pkgerrors.CodeConnectionExists,
		},
		{
			name:   "invalid node type",
			mutate: func(tmpl *ports.Template) { tmpl.Nodes[1].Type = "video" },
		},
		{
			name:   "invalid size",
			mutate: func(tmpl *ports.Template) { tmpl.Nodes[1].Width = -10; tmpl.Nodes[1].Height = 10 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project, err := aggregates.NewProject("Templates", nil)
			require.NoError(t, err)
			tmpl := pairTemplate()
			tmpl.Nodes = append([]ports.TemplateNode(nil), tmpl.Nodes...)
			tmpl.Connections = append([]ports.TemplateConnection(nil), tmpl.Connections...)
			tt.mutate(&tmpl)

			_, err = ApplyTemplate(project.Canvas(), tmpl, valueobjects.Point{})
			require.Error(t, err)
			if tt.code != "" {
				assert.True(t, pkgerrors.HasCode(err, tt.code), "got %v", err)
			}
			assert.Equal(t, 0, project.Canvas().NodeCount())
			assert.Empty(t, project.GetUncommittedEvents())
		})
	}
}
