package services

import (
	"context"
	"fmt"
	"sync/atomic"

	"slidecanvas/application/ports"
	"slidecanvas/domain/config"
	"slidecanvas/domain/core/aggregates"
	"slidecanvas/domain/core/entities"
	"slidecanvas/domain/core/valueobjects"
	pkgerrors "slidecanvas/pkg/errors"
	"slidecanvas/pkg/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("slidecanvas/application/services")

// CreateProjectCommand represents the command to create a new project
type CreateProjectCommand struct {
	Name     string               `json:"name" validate:"required,min=1,max=200"`
	Settings *aggregates.Settings `json:"settings,omitempty"`
}

// ProjectService runs canvas operations against stored projects. Each
// mutation loads the project, applies the change to that private copy, saves
// it under the optimistic version check and publishes the resulting events.
type ProjectService struct {
	repo      ports.ProjectRepository
	publisher ports.EventPublisher
	cfg       atomic.Pointer[config.DomainConfig]
	logger    *zap.Logger
}

// NewProjectService creates a new project service
func NewProjectService(
	repo ports.ProjectRepository,
	publisher ports.EventPublisher,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *ProjectService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	s := &ProjectService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
	s.cfg.Store(cfg)
	return s
}

// Config returns the canvas policy new projects are created with
func (s *ProjectService) Config() *config.DomainConfig { return s.cfg.Load() }

// SetConfig swaps the canvas policy for projects created or imported
// afterwards. Safe to call while requests are being served.
func (s *ProjectService) SetConfig(cfg *config.DomainConfig) {
	if cfg != nil {
		s.cfg.Store(cfg)
	}
}

// CreateProject creates and stores an empty project
func (s *ProjectService) CreateProject(ctx context.Context, cmd CreateProjectCommand) (*aggregates.Project, error) {
	ctx, span := tracer.Start(ctx, "ProjectService.CreateProject")
	defer span.End()

	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	project, err := aggregates.NewProject(cmd.Name, s.Config())
	if err != nil {
		return nil, err
	}
	if cmd.Settings != nil {
		if err := project.UpdateSettings(*cmd.Settings); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Save(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}

	span.SetAttributes(attribute.String("project.id", project.ID().String()))
	s.logger.Info("Project created",
		zap.String("projectID", project.ID().String()),
		zap.String("name", project.Name()),
	)
	return project, nil
}

// ImportProject stores a project from its document form under a fresh
// version. Invalid connections in the document are dropped.
func (s *ProjectService) ImportProject(ctx context.Context, doc aggregates.ProjectDocument) (*aggregates.Project, error) {
	ctx, span := tracer.Start(ctx, "ProjectService.ImportProject")
	defer span.End()

	if doc.ID == "" {
		doc.ID = valueobjects.NewProjectID().String()
	}
	doc.Version = 0
	project, err := aggregates.DeserializeProject(doc, s.Config())
	if err != nil {
		return nil, err
	}
	if project.DroppedConnections() > 0 {
		s.logger.Warn("Dropped invalid connections on import",
			zap.String("projectID", project.ID().String()),
			zap.Int("dropped", project.DroppedConnections()),
		)
	}
	if err := s.repo.Save(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}
	return project, nil
}

// GetProject loads a project
func (s *ProjectService) GetProject(ctx context.Context, id string) (*aggregates.Project, error) {
	projectID, err := valueobjects.NewProjectIDFromString(id)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	return s.repo.FindByID(ctx, projectID)
}

// ListProjects returns stored project summaries
func (s *ProjectService) ListProjects(ctx context.Context, limit int) ([]ports.ProjectSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, limit)
}

// DeleteProject removes a project
func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	projectID, err := valueobjects.NewProjectIDFromString(id)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	if err := s.repo.Delete(ctx, projectID); err != nil {
		return err
	}
	s.logger.Info("Project deleted", zap.String("projectID", id))
	return nil
}

// Mutate applies fn to a freshly loaded project and persists the result.
// Nothing is saved when fn fails.
func (s *ProjectService) Mutate(ctx context.Context, id, operation string, fn func(p *aggregates.Project) error) (*aggregates.Project, error) {
	ctx, span := tracer.Start(ctx, "ProjectService."+operation,
		trace.WithAttributes(attribute.String("project.id", id)),
	)
	defer span.End()

	project, err := s.GetProject(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := fn(project); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.repo.Save(ctx, project); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to save project: %w", err)
	}
	s.publish(ctx, project)

	s.logger.Debug("Project updated",
		zap.String("projectID", id),
		zap.String("operation", operation),
		zap.Int("version", project.Version()),
	)
	return project, nil
}

// publish sends pending events. A failed publish is logged, never surfaced:
// the change is already stored.
func (s *ProjectService) publish(ctx context.Context, project *aggregates.Project) {
	pending := project.GetUncommittedEvents()
	if len(pending) == 0 || s.publisher == nil {
		project.MarkEventsAsCommitted()
		return
	}
	if err := s.publisher.Publish(ctx, pending); err != nil {
		s.logger.Warn("Failed to publish domain events",
			zap.String("projectID", project.ID().String()),
			zap.Int("count", len(pending)),
			zap.Error(err),
		)
	}
	project.MarkEventsAsCommitted()
}

// RenameProject changes the project name
func (s *ProjectService) RenameProject(ctx context.Context, id, name string) (*aggregates.Project, error) {
	return s.Mutate(ctx, id, "RenameProject", func(p *aggregates.Project) error {
		return p.Rename(name)
	})
}

// UpdateSettings replaces the project settings
func (s *ProjectService) UpdateSettings(ctx context.Context, id string, settings aggregates.Settings) (*aggregates.Project, error) {
	return s.Mutate(ctx, id, "UpdateSettings", func(p *aggregates.Project) error {
		return p.UpdateSettings(settings)
	})
}

// CommitViewport stores the viewport a client ended a gesture with
func (s *ProjectService) CommitViewport(ctx context.Context, id string, viewport valueobjects.Viewport) (*aggregates.Project, error) {
	return s.Mutate(ctx, id, "CommitViewport", func(p *aggregates.Project) error {
		return p.CommitViewport(viewport)
	})
}

// CreateNode adds a node to the project canvas
func (s *ProjectService) CreateNode(ctx context.Context, projectID string, spec aggregates.NodeSpec) (*entities.Node, error) {
	var node *entities.Node
	_, err := s.Mutate(ctx, projectID, "CreateNode", func(p *aggregates.Project) error {
		var err error
		node, err = p.Canvas().CreateNode(spec)
		return err
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// UpdateNode merges the set fields of update into a node
func (s *ProjectService) UpdateNode(ctx context.Context, projectID, nodeID string, update aggregates.NodeUpdate) (*entities.Node, error) {
	id, err := parseNodeID(nodeID)
	if err != nil {
		return nil, err
	}
	var node *entities.Node
	_, err = s.Mutate(ctx, projectID, "UpdateNode", func(p *aggregates.Project) error {
		var err error
		node, err = p.Canvas().UpdateNode(id, update)
		return err
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// MoveNode places a node and records a single move
func (s *ProjectService) MoveNode(ctx context.Context, projectID, nodeID string, position valueobjects.Point) (*entities.Node, error) {
	id, err := parseNodeID(nodeID)
	if err != nil {
		return nil, err
	}
	var node *entities.Node
	_, err = s.Mutate(ctx, projectID, "MoveNode", func(p *aggregates.Project) error {
		canvas := p.Canvas()
		current, ok := canvas.Node(id)
		if !ok {
			return pkgerrors.NewNotFoundError("node")
		}
		if err := canvas.MoveNode(id, position); err != nil {
			return err
		}
		canvas.CommitMove(id, current.Position())
		node, _ = canvas.Node(id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// DeleteNode removes a node and its connections
func (s *ProjectService) DeleteNode(ctx context.Context, projectID, nodeID string) error {
	id, err := parseNodeID(nodeID)
	if err != nil {
		return err
	}
	_, err = s.Mutate(ctx, projectID, "DeleteNode", func(p *aggregates.Project) error {
		if !p.Canvas().DeleteNode(id) {
			return pkgerrors.NewNotFoundError("node")
		}
		return nil
	})
	return err
}

// DuplicateNode copies a node next to the original
func (s *ProjectService) DuplicateNode(ctx context.Context, projectID, nodeID string, offset valueobjects.Point) (*entities.Node, error) {
	id, err := parseNodeID(nodeID)
	if err != nil {
		return nil, err
	}
	var node *entities.Node
	_, err = s.Mutate(ctx, projectID, "DuplicateNode", func(p *aggregates.Project) error {
		var err error
		node, err = p.Canvas().DuplicateNode(id, offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// NodeAt hit-tests a world point
func (s *ProjectService) NodeAt(ctx context.Context, projectID string, p valueobjects.Point) (*entities.Node, error) {
	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return project.Canvas().NodeAt(p), nil
}

// Connect links two nodes
func (s *ProjectService) Connect(ctx context.Context, projectID, startID, endID string, spec aggregates.ConnectionSpec) (*entities.Connection, error) {
	start, err := parseNodeID(startID)
	if err != nil {
		return nil, err
	}
	end, err := parseNodeID(endID)
	if err != nil {
		return nil, err
	}
	var conn *entities.Connection
	_, err = s.Mutate(ctx, projectID, "Connect", func(p *aggregates.Project) error {
		var err error
		conn, err = p.Canvas().Connect(start, end, spec)
		return err
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// RemoveConnection deletes a connection
func (s *ProjectService) RemoveConnection(ctx context.Context, projectID, connectionID string) error {
	id, err := valueobjects.NewConnectionIDFromString(connectionID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	_, err = s.Mutate(ctx, projectID, "RemoveConnection", func(p *aggregates.Project) error {
		if !p.Canvas().RemoveConnection(id) {
			return pkgerrors.NewNotFoundError("connection")
		}
		return nil
	})
	return err
}

func parseNodeID(s string) (valueobjects.NodeID, error) {
	id, err := valueobjects.NewNodeIDFromString(s)
	if err != nil {
		return valueobjects.NodeID{}, pkgerrors.NewValidationError(err.Error())
	}
	return id, nil
}
