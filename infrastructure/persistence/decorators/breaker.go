package decorators

import (
	"context"
	"errors"
	"time"

	"slidecanvas/application/ports"
	"slidecanvas/domain/core/aggregates"
	"slidecanvas/domain/core/valueobjects"
	pkgerrors "slidecanvas/pkg/errors"
	"slidecanvas/pkg/observability"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig holds configuration for the repository circuit breaker
type BreakerConfig struct {
	Name             string        `yaml:"name"`
	MaxRequests      uint32        `yaml:"max_requests"`
	Interval         time.Duration `yaml:"interval"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold float64       `yaml:"failure_threshold" validate:"gte=0,lte=1"`
	MinRequests      uint32        `yaml:"min_requests"`
}

// DefaultBreakerConfig returns a default configuration for the breaker
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// BreakerRepository stops calling a failing store for a while. Only
// infrastructure failures count: not found, validation and version
// conflicts are normal answers.
type BreakerRepository struct {
	inner ports.ProjectRepository
	cb    *gobreaker.CircuitBreaker
}

var _ ports.ProjectRepository = (*BreakerRepository)(nil)

// NewBreakerRepository wraps repo. collector may be nil.
func NewBreakerRepository(repo ports.ProjectRepository, cfg BreakerConfig, collector *observability.Collector, logger *zap.Logger) *BreakerRepository {
	if collector != nil {
		collector.SetBreakerState(cfg.Name, 0)
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if collector != nil {
				collector.SetBreakerState(name, stateValue(to))
			}
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			appErr := pkgerrors.GetAppError(err)
			if appErr == nil {
				return false
			}
			switch appErr.Type {
			case pkgerrors.ErrorTypeNotFound, pkgerrors.ErrorTypeValidation, pkgerrors.ErrorTypeConflict:
				return true
			}
			return false
		},
	})
	return &BreakerRepository{inner: repo, cb: cb}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return 0
}

// State returns the current breaker state
func (r *BreakerRepository) State() gobreaker.State {
	return r.cb.State()
}

func (r *BreakerRepository) execute(fn func() (any, error)) (any, error) {
	res, err := r.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, pkgerrors.NewUnavailableError("project store").WithCause(err)
	}
	return res, err
}

func (r *BreakerRepository) Save(ctx context.Context, project *aggregates.Project) error {
	_, err := r.execute(func() (any, error) {
		return nil, r.inner.Save(ctx, project)
	})
	return err
}

func (r *BreakerRepository) FindByID(ctx context.Context, id valueobjects.ProjectID) (*aggregates.Project, error) {
	res, err := r.execute(func() (any, error) {
		return r.inner.FindByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return res.(*aggregates.Project), nil
}

func (r *BreakerRepository) List(ctx context.Context, limit int) ([]ports.ProjectSummary, error) {
	res, err := r.execute(func() (any, error) {
		return r.inner.List(ctx, limit)
	})
	if err != nil {
		return nil, err
	}
	return res.([]ports.ProjectSummary), nil
}

func (r *BreakerRepository) Delete(ctx context.Context, id valueobjects.ProjectID) error {
	_, err := r.execute(func() (any, error) {
		return nil, r.inner.Delete(ctx, id)
	})
	return err
}
