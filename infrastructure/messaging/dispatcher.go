package messaging

import (
	"context"
	"errors"
	"time"

	"slidecanvas/application/ports"
	"slidecanvas/domain/events"
	"slidecanvas/pkg/observability"

	"go.uber.org/zap"
)

// Dispatcher publishes each batch to a local publisher and, optionally, to
// an external one. Local delivery always runs; the external result is what
// the caller sees.
type Dispatcher struct {
	local     ports.EventPublisher
	external  ports.EventPublisher
	collector *observability.Collector
	logger    *zap.Logger
}

var _ ports.EventPublisher = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher. external and collector may be nil.
func NewDispatcher(local, external ports.EventPublisher, collector *observability.Collector, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		local:     local,
		external:  external,
		collector: collector,
		logger:    logger,
	}
}

// Publish fans the batch out
func (d *Dispatcher) Publish(ctx context.Context, domainEvents []events.DomainEvent) error {
	if len(domainEvents) == 0 {
		return nil
	}
	start := time.Now()

	var errs []error
	if d.local != nil {
		if err := d.local.Publish(ctx, domainEvents); err != nil {
			d.logger.Warn("Failed to dispatch events locally", zap.Error(err))
		}
	}
	if d.external != nil {
		if err := d.external.Publish(ctx, domainEvents); err != nil {
			errs = append(errs, err)
		}
	}

	if d.collector != nil {
		for _, e := range domainEvents {
			d.collector.RecordEvent(e.GetEventType())
			if generated, ok := e.(events.PresentationGenerated); ok {
				d.collector.RecordPresentation(generated.EngineID, generated.FlowStyle, generated.Bytes)
			}
		}
	}

	d.logger.Debug("Events dispatched",
		zap.Int("count", len(domainEvents)),
		zap.Duration("duration", time.Since(start)),
	)
	return errors.Join(errs...)
}
