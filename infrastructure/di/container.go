// Package di wires the application together. wire.go declares the provider
// graph; wire_gen.go is the generated constructor.
package di

import (
	"slidecanvas/application/ports"
	"slidecanvas/application/render"
	"slidecanvas/application/services"
	domainconfig "slidecanvas/domain/config"
	"slidecanvas/infrastructure/config"
	"slidecanvas/infrastructure/messaging"
	pkgerrors "slidecanvas/pkg/errors"
	"slidecanvas/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	DomainConfig  *domainconfig.DomainConfig
	LogLevel      zap.AtomicLevel
	Logger        *zap.Logger
	ErrorHandler  *pkgerrors.ErrorHandler
	Metrics       *observability.Collector
	Tracing       *observability.TracerProvider
	Repository    ports.ProjectRepository
	EventBus      *messaging.MemoryBus
	Publisher     ports.EventPublisher
	Templates     ports.TemplateCatalog
	Renderer      *render.Renderer
	Projects      *services.ProjectService
	Presentations *services.PresentationService
	TemplateSvc   *services.TemplateService
}

// ApplyConfig pushes a reloaded configuration into the running services.
// Storage and transport choices need a restart; log level and canvas policy
// for new projects change in place.
func (c *Container) ApplyConfig(cfg *config.Config) {
	if lvl, err := ProvideLogLevel(cfg); err == nil {
		c.LogLevel.SetLevel(lvl.Level())
	}
	if cfg.Domain != nil {
		c.Projects.SetConfig(cfg.Domain)
		c.DomainConfig = cfg.Domain
	}
	c.Config = cfg
	c.Logger.Info("Configuration applied",
		zap.String("log_level", c.LogLevel.String()),
		zap.Int("max_nodes", c.Projects.Config().MaxNodes),
	)
}
