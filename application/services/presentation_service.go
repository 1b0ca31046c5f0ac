package services

import (
	"context"
	"fmt"
	"time"

	"slidecanvas/application/ports"
	"slidecanvas/domain/core/aggregates"
	"slidecanvas/domain/events"
	domainservices "slidecanvas/domain/services"
	pkgerrors "slidecanvas/pkg/errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// GenerateOptions select how a project is presented
type GenerateOptions struct {
	// EngineID forces an engine; empty uses the project preference, then
	// the recommendation.
	EngineID string `json:"engine_id,omitempty"`
	Title    string `json:"title,omitempty"`
}

// Presentation is a rendered deck
type Presentation struct {
	EngineID       string                           `json:"engine_id"`
	ContentType    string                           `json:"content_type"`
	Document       []byte                           `json:"-"`
	SlideCount     int                              `json:"slide_count"`
	Issues         []domainservices.ValidationIssue `json:"issues,omitempty"`
	Recommendation domainservices.Recommendation    `json:"recommendation"`
}

// PresentationService analyses a canvas, picks an engine and renders the deck
type PresentationService struct {
	engines   map[string]ports.PresentationEngine
	selector  *domainservices.EngineSelector
	analyzer  *domainservices.FlowAnalyzer
	builder   *domainservices.DeckBuilder
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewPresentationService registers engines in the given order; the order
// breaks recommendation ties.
func NewPresentationService(
	engines []ports.PresentationEngine,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) (*PresentationService, error) {
	analyzer := domainservices.NewFlowAnalyzer()
	s := &PresentationService{
		engines:   make(map[string]ports.PresentationEngine, len(engines)),
		selector:  domainservices.NewEngineSelector(analyzer),
		analyzer:  analyzer,
		builder:   domainservices.NewDeckBuilder(analyzer),
		publisher: publisher,
		logger:    logger,
	}
	for _, engine := range engines {
		caps := engine.Capabilities()
		if err := s.selector.Register(caps); err != nil {
			return nil, fmt.Errorf("failed to register engine %q: %w", caps.ID, err)
		}
		s.engines[caps.ID] = engine
	}
	return s, nil
}

// Engines lists engine capabilities in registration order
func (s *PresentationService) Engines() []domainservices.EngineCapabilities {
	return s.selector.Engines()
}

// Analyze classifies the project's connection flow
func (s *PresentationService) Analyze(project *aggregates.Project) domainservices.FlowAnalysis {
	canvas := project.Canvas()
	return s.analyzer.AnalyzeConnectionFlow(canvas.Nodes(), canvas.Connections())
}

// Order returns the slide order of the project's nodes
func (s *PresentationService) Order(project *aggregates.Project) []string {
	canvas := project.Canvas()
	ordered := s.builder.Order(canvas.Nodes(), canvas.Connections())
	ids := make([]string, len(ordered))
	for i, n := range ordered {
		ids[i] = n.ID().String()
	}
	return ids
}

// Recommend scores every engine against the project
func (s *PresentationService) Recommend(project *aggregates.Project) (domainservices.Recommendation, error) {
	canvas := project.Canvas()
	return s.selector.Recommend(canvas.Nodes(), canvas.Connections())
}

// Validate lists the nodes an engine cannot render
func (s *PresentationService) Validate(project *aggregates.Project, engineID string) ([]domainservices.ValidationIssue, error) {
	caps, ok := s.selector.Engine(engineID)
	if !ok {
		return nil, unknownEngine(engineID)
	}
	return domainservices.ValidateNodes(caps, project.Canvas().Nodes()), nil
}

// Generate renders the project. Unsupported node types do not stop
// generation; they are logged and returned as issues.
func (s *PresentationService) Generate(ctx context.Context, project *aggregates.Project, opts GenerateOptions) (*Presentation, error) {
	ctx, span := tracer.Start(ctx, "PresentationService.Generate",
		trace.WithAttributes(attribute.String("project.id", project.ID().String())),
	)
	defer span.End()

	rec, err := s.Recommend(project)
	if err != nil {
		return nil, err
	}

	engineID := opts.EngineID
	if engineID == "" {
		engineID = project.Settings().PreferredEngine
	}
	if engineID == "" {
		engineID = rec.EngineID
	}
	engine, ok := s.engines[engineID]
	if !ok {
		return nil, unknownEngine(engineID)
	}
	span.SetAttributes(attribute.String("engine.id", engineID))

	canvas := project.Canvas()
	nodes, conns := canvas.Nodes(), canvas.Connections()
	issues := domainservices.ValidateNodes(engine.Capabilities(), nodes)
	for _, issue := range issues {
		s.logger.Warn("Node not supported by engine",
			zap.String("projectID", project.ID().String()),
			zap.String("engine", engineID),
			zap.String("nodeID", issue.NodeID),
			zap.String("issue", issue.Issue),
		)
	}

	title := opts.Title
	if title == "" {
		title = project.Name()
	}
	settings := project.Settings()
	deck := s.builder.Build(nodes, conns, domainservices.DeckOptions{
		Title:      title,
		Background: settings.Background,
		Transition: settings.Transition,
	})

	doc, err := engine.Render(ctx, deck)
	if err != nil {
		span.RecordError(err)
		return nil, pkgerrors.NewInternalError("presentation rendering failed").WithCause(err)
	}

	s.logger.Info("Presentation generated",
		zap.String("projectID", project.ID().String()),
		zap.String("engine", engineID),
		zap.Int("slides", len(deck.Slides)),
		zap.String("flowStyle", string(deck.FlowStyle)),
		zap.Int("bytes", len(doc)),
	)
	if s.publisher != nil {
		evt := events.NewPresentationGenerated(project.ID(), project.Version(), engineID,
			len(deck.Slides), string(deck.FlowStyle), len(doc), time.Now())
		if err := s.publisher.Publish(ctx, []events.DomainEvent{evt}); err != nil {
			s.logger.Warn("Failed to publish presentation event", zap.Error(err))
		}
	}

	return &Presentation{
		EngineID:       engineID,
		ContentType:    engine.ContentType(),
		Document:       doc,
		SlideCount:     len(deck.Slides),
		Issues:         issues,
		Recommendation: rec,
	}, nil
}

func unknownEngine(id string) error {
	return pkgerrors.NewValidationError(fmt.Sprintf("unknown presentation engine %q", id)).
		WithCode(pkgerrors.CodeUnknownEngine)
}
