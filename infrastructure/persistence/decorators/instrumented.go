package decorators

import (
	"context"
	"time"

	"slidecanvas/application/ports"
	"slidecanvas/domain/core/aggregates"
	"slidecanvas/domain/core/valueobjects"
	"slidecanvas/pkg/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedRepository traces every repository call and records its
// duration and outcome.
type InstrumentedRepository struct {
	inner     ports.ProjectRepository
	tracer    trace.Tracer
	collector *observability.Collector
	backend   string
}

var _ ports.ProjectRepository = (*InstrumentedRepository)(nil)

// NewInstrumentedRepository wraps repo. collector may be nil.
func NewInstrumentedRepository(repo ports.ProjectRepository, backend string, collector *observability.Collector) *InstrumentedRepository {
	return &InstrumentedRepository{
		inner:     repo,
		tracer:    otel.Tracer("slidecanvas/repository"),
		collector: collector,
		backend:   backend,
	}
}

func (r *InstrumentedRepository) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	attrs = append(attrs, attribute.String("db.system", r.backend))
	ctx, span := r.tracer.Start(ctx, "repository."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	return ctx, span, time.Now()
}

func (r *InstrumentedRepository) finish(span trace.Span, op string, started time.Time, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	if r.collector != nil {
		r.collector.RecordRepository(op, time.Since(started), err)
	}
}

func (r *InstrumentedRepository) Save(ctx context.Context, project *aggregates.Project) (err error) {
	ctx, span, started := r.start(ctx, "Save",
		attribute.String("project.id", project.ID().String()),
		attribute.Int("project.version", project.Version()),
	)
	defer func() { r.finish(span, "Save", started, err) }()
	return r.inner.Save(ctx, project)
}

func (r *InstrumentedRepository) FindByID(ctx context.Context, id valueobjects.ProjectID) (project *aggregates.Project, err error) {
	ctx, span, started := r.start(ctx, "FindByID", attribute.String("project.id", id.String()))
	defer func() { r.finish(span, "FindByID", started, err) }()
	return r.inner.FindByID(ctx, id)
}

func (r *InstrumentedRepository) List(ctx context.Context, limit int) (summaries []ports.ProjectSummary, err error) {
	ctx, span, started := r.start(ctx, "List", attribute.Int("limit", limit))
	defer func() { r.finish(span, "List", started, err) }()
	return r.inner.List(ctx, limit)
}

func (r *InstrumentedRepository) Delete(ctx context.Context, id valueobjects.ProjectID) (err error) {
	ctx, span, started := r.start(ctx, "Delete", attribute.String("project.id", id.String()))
	defer func() { r.finish(span, "Delete", started, err) }()
	return r.inner.Delete(ctx, id)
}
