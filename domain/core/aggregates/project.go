package aggregates

import (
	"fmt"
	"strings"
	"time"

	"slidecanvas/domain/config"
	"slidecanvas/domain/core/entities"
	"slidecanvas/domain/core/valueobjects"
	"slidecanvas/domain/events"
	pkgerrors "slidecanvas/pkg/errors"
)

const maxProjectNameLength = 200

// Transitions supported between slides
var Transitions = []string{"none", "fade", "slide", "convex", "concave", "zoom"}

// Settings are per-project editor and presentation preferences
type Settings struct {
	GridSize        float64 `json:"grid_size" yaml:"grid_size"`
	SnapToGrid      bool    `json:"snap_to_grid" yaml:"snap_to_grid"`
	ShowGrid        bool    `json:"show_grid" yaml:"show_grid"`
	Transition      string  `json:"transition" yaml:"transition"`
	Background      string  `json:"background" yaml:"background"`
	PreferredEngine string  `json:"preferred_engine,omitempty" yaml:"preferred_engine,omitempty"`
}

// DefaultSettings returns the settings a new project starts with.
func DefaultSettings(cfg *config.DomainConfig) Settings {
	return Settings{
		GridSize:   cfg.GridSize,
		SnapToGrid: true,
		ShowGrid:   true,
		Transition: "slide",
		Background: "#ffffff",
	}
}

// Validate checks the settings values
func (s Settings) Validate() error {
	if s.GridSize <= 0 {
		return pkgerrors.NewValidationError("grid size must be positive")
	}
	for _, t := range Transitions {
		if s.Transition == t {
			return nil
		}
	}
	return pkgerrors.NewValidationError(fmt.Sprintf("unknown transition %q", s.Transition))
}

// Project is the unit of persistence: a named canvas with its committed
// viewport and settings.
type Project struct {
	id        valueobjects.ProjectID
	name      string
	canvas    *Canvas
	viewport  valueobjects.Viewport
	settings  Settings
	createdAt time.Time
	updatedAt time.Time
	version   int
	dropped   int
}

// NewProject creates an empty project
func NewProject(name string, cfg *config.DomainConfig) (*Project, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	id := valueobjects.NewProjectID()
	now := time.Now()
	return &Project{
		id:        id,
		name:      name,
		canvas:    NewCanvas(id, cfg),
		viewport:  valueobjects.NewViewport(0, 0),
		settings:  DefaultSettings(cfg),
		createdAt: now,
		updatedAt: now,
		version:   0,
	}, nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", pkgerrors.NewValidationError("project name is required")
	}
	if len(name) > maxProjectNameLength {
		return "", pkgerrors.NewValidationError(fmt.Sprintf("project name exceeds %d characters", maxProjectNameLength))
	}
	return name, nil
}

func (p *Project) ID() valueobjects.ProjectID      { return p.id }
func (p *Project) Name() string                    { return p.name }
func (p *Project) Canvas() *Canvas                 { return p.canvas }
func (p *Project) Viewport() valueobjects.Viewport { return p.viewport }
func (p *Project) Settings() Settings              { return p.settings }
func (p *Project) CreatedAt() time.Time            { return p.createdAt }
func (p *Project) UpdatedAt() time.Time            { return p.updatedAt }

// Version is the persisted revision, used for optimistic locking
func (p *Project) Version() int { return p.version }

// DroppedConnections reports how many invalid connections were discarded when
// the project was loaded.
func (p *Project) DroppedConnections() int { return p.dropped }

// Rename changes the project name
func (p *Project) Rename(name string) error {
	name, err := validateName(name)
	if err != nil {
		return err
	}
	p.name = name
	p.updatedAt = time.Now()
	return nil
}

// CommitViewport stores the viewport at the end of a gesture. The scale is
// clamped to the configured zoom range.
func (p *Project) CommitViewport(v valueobjects.Viewport) error {
	if !(valueobjects.Point{X: v.X, Y: v.Y}).IsFinite() {
		return pkgerrors.NewValidationError("viewport offset must be finite")
	}
	cfg := p.canvas.Config()
	v.Scale = valueobjects.ClampScale(v.Scale, cfg.MinZoom, cfg.MaxZoom)
	v = v.Resize(v.Width, v.Height)
	p.viewport = v
	p.updatedAt = time.Now()
	return nil
}

// UpdateSettings replaces the settings after validation
func (p *Project) UpdateSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	p.settings = s
	p.updatedAt = time.Now()
	return nil
}

// MarkSaved advances the version after a successful save and returns the
// version the store held before.
func (p *Project) MarkSaved() int {
	prev := p.version
	p.version++
	p.updatedAt = time.Now()
	return prev
}

// GetUncommittedEvents returns the canvas events not yet published
func (p *Project) GetUncommittedEvents() []events.DomainEvent {
	return p.canvas.GetUncommittedEvents()
}

// MarkEventsAsCommitted clears the pending canvas events
func (p *Project) MarkEventsAsCommitted() {
	p.canvas.MarkEventsAsCommitted()
}

// ProjectDocument is the persisted JSON form of a project
type ProjectDocument struct {
	ID          string                    `json:"id" yaml:"id"`
	Name        string                    `json:"name" yaml:"name"`
	Nodes       []entities.NodeData       `json:"nodes" yaml:"nodes"`
	Connections []entities.ConnectionData `json:"connections" yaml:"connections"`
	Viewport    valueobjects.Viewport     `json:"viewport" yaml:"viewport"`
	Settings    Settings                  `json:"settings" yaml:"settings"`
	Version     int                       `json:"version" yaml:"version"`
	CreatedAt   time.Time                 `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time                 `json:"updated_at" yaml:"updated_at"`
}

// Serialize returns the persisted form of the project
func (p *Project) Serialize() ProjectDocument {
	data := p.canvas.Snapshot()
	return ProjectDocument{
		ID:          p.id.String(),
		Name:        p.name,
		Nodes:       data.Nodes,
		Connections: data.Connections,
		Viewport:    p.viewport,
		Settings:    p.settings,
		Version:     p.version,
		CreatedAt:   p.createdAt,
		UpdatedAt:   p.updatedAt,
	}
}

// DeserializeProject rebuilds a project from its persisted form. Connections
// that reference missing nodes, loop on one node or duplicate a pair are
// dropped rather than failing the load.
func DeserializeProject(doc ProjectDocument, cfg *config.DomainConfig) (*Project, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	id, err := valueobjects.NewProjectIDFromString(doc.ID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	name, err := validateName(doc.Name)
	if err != nil {
		return nil, err
	}

	canvas, dropped, err := RestoreCanvas(id, cfg, CanvasData{Nodes: doc.Nodes, Connections: doc.Connections})
	if err != nil {
		return nil, err
	}

	settings := doc.Settings
	if settings.GridSize <= 0 {
		settings.GridSize = cfg.GridSize
	}
	if settings.Transition == "" {
		settings.Transition = DefaultSettings(cfg).Transition
	}

	p := &Project{
		id:        id,
		name:      name,
		canvas:    canvas,
		settings:  settings,
		createdAt: doc.CreatedAt,
		updatedAt: doc.UpdatedAt,
		version:   doc.Version,
		dropped:   dropped,
	}
	viewport := doc.Viewport
	if viewport.Scale == 0 {
		viewport.Scale = 1
	}
	if err := p.CommitViewport(viewport); err != nil {
		return nil, err
	}
	p.updatedAt = doc.UpdatedAt
	if p.createdAt.IsZero() {
		p.createdAt = time.Now()
		p.updatedAt = p.createdAt
	}
	return p, nil
}

// Clone returns a deep copy, used by stores that must not share state with
// callers.
func (p *Project) Clone() *Project {
	out := *p
	out.canvas = p.canvas.Clone()
	return &out
}
