package ports

import (
	"context"
	"time"

	"slidecanvas/domain/core/aggregates"
	"slidecanvas/domain/core/entities"
	"slidecanvas/domain/core/valueobjects"
	"slidecanvas/domain/events"
	"slidecanvas/domain/services"
)

// ProjectRepository defines the interface for project persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type ProjectRepository interface {
	// Save persists a project. The stored version must equal project.Version();
	// on success the project's version is advanced with MarkSaved.
	Save(ctx context.Context, project *aggregates.Project) error

	// FindByID retrieves a project, or a NotFound AppError
	FindByID(ctx context.Context, id valueobjects.ProjectID) (*aggregates.Project, error)

	// List returns project summaries, most recently updated first
	List(ctx context.Context, limit int) ([]ProjectSummary, error)

	// Delete removes a project, or returns a NotFound AppError
	Delete(ctx context.Context, id valueobjects.ProjectID) error
}

// ProjectSummary is the listing view of a stored project
type ProjectSummary struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	NodeCount       int       `json:"node_count"`
	ConnectionCount int       `json:"connection_count"`
	Version         int       `json:"version"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SummaryOf builds the listing view of a project.
func SummaryOf(p *aggregates.Project) ProjectSummary {
	return ProjectSummary{
		ID:              p.ID().String(),
		Name:            p.Name(),
		NodeCount:       p.Canvas().NodeCount(),
		ConnectionCount: p.Canvas().ConnectionCount(),
		Version:         p.Version(),
		UpdatedAt:       p.UpdatedAt(),
	}
}

// EventPublisher publishes domain events to external systems
type EventPublisher interface {
	Publish(ctx context.Context, events []events.DomainEvent) error
}

// PresentationEngine renders an ordered deck into an engine-specific document
type PresentationEngine interface {
	// Capabilities returns the fixed capability descriptor used for scoring
	Capabilities() services.EngineCapabilities

	// Render produces a standalone document for the deck
	Render(ctx context.Context, deck services.Deck) ([]byte, error)

	// ContentType is the media type of rendered documents
	ContentType() string
}

// NotificationLevel is the severity of a user notification
type NotificationLevel string

const (
	NotifyInfo    NotificationLevel = "info"
	NotifyWarning NotificationLevel = "warning"
	NotifyError   NotificationLevel = "error"
)

// Notification is a non-fatal message for the user
type Notification struct {
	Level   NotificationLevel `json:"level"`
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message"`
}

// Notifier surfaces notifications to the user
type Notifier interface {
	Notify(n Notification)
}

// TemplateCatalog provides reusable canvas layouts
type TemplateCatalog interface {
	// List returns the available templates, sorted by name
	List() []TemplateInfo

	// Get returns a template by name
	Get(name string) (Template, bool)
}

// TemplateInfo describes a template in listings
type TemplateInfo struct {
	Name            string `json:"name" yaml:"name"`
	Description     string `json:"description" yaml:"description"`
	NodeCount       int    `json:"node_count" yaml:"-"`
	ConnectionCount int    `json:"connection_count" yaml:"-"`
}

// Template is a canvas layout whose nodes and connections refer to each
// other through placeholder ids. Placeholders never reach the canvas.
type Template struct {
	TemplateInfo `yaml:",inline"`
	Nodes        []TemplateNode       `json:"nodes" yaml:"nodes"`
	Connections  []TemplateConnection `json:"connections" yaml:"connections"`
}

// TemplateNode is a node relative to the template origin
type TemplateNode struct {
	Ref     string            `json:"ref" yaml:"ref"`
	Type    string            `json:"type" yaml:"type"`
	X       float64           `json:"x" yaml:"x"`
	Y       float64           `json:"y" yaml:"y"`
	Width   float64           `json:"width,omitempty" yaml:"width,omitempty"`
	Height  float64           `json:"height,omitempty" yaml:"height,omitempty"`
	Content *entities.Content `json:"content,omitempty" yaml:"content,omitempty"`
	Style   *entities.Style   `json:"style,omitempty" yaml:"style,omitempty"`
	Order   *int              `json:"order,omitempty" yaml:"order,omitempty"`
}

// TemplateConnection links two template nodes by placeholder
type TemplateConnection struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
}
