package di

import (
	"context"
	"testing"

	"slidecanvas/application/services"
	"slidecanvas/infrastructure/config"
	"slidecanvas/infrastructure/persistence/decorators"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitializeContainer_MemoryStack(t *testing.T) {
	cfg := config.Default(config.Test)
	cfg.Logging.Level = "warn"

	c, cleanup, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	assert.Nil(t, c.Tracing)
	assert.IsType(t, &decorators.BreakerRepository{}, c.Repository)
	assert.Len(t, c.Presentations.Engines(), 2)
	assert.Len(t, c.Templates.List(), 3)

	ctx := context.Background()
	p, err := c.Projects.CreateProject(ctx, services.CreateProjectCommand{Name: "Wired"})
	require.NoError(t, err)
	assert.Len(t, c.EventBus.EventsFor(p.ID().String()), 0, "creating an empty project emits nothing")

	_, err = c.TemplateSvc.Apply(ctx, p.ID().String(), "title-agenda", p.Viewport().Center())
	require.NoError(t, err)
	assert.NotEmpty(t, c.EventBus.EventsFor(p.ID().String()))
}

func TestInitializeContainer_RejectsBadLevel(t *testing.T) {
	cfg := config.Default(config.Test)
	cfg.Logging.Level = "chatty"
	_, _, err := InitializeContainer(context.Background(), cfg)
	assert.Error(t, err)
}

func TestContainer_ApplyConfig(t *testing.T) {
	cfg := config.Default(config.Test)
	c, cleanup, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	next := config.Default(config.Test)
	next.Logging.Level = "debug"
	next.Domain.MaxNodes = 3
	c.ApplyConfig(next)

	assert.Equal(t, zapcore.DebugLevel, c.LogLevel.Level())
	assert.Equal(t, 3, c.Projects.Config().MaxNodes)
}
