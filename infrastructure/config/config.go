// Package config loads process configuration from layered YAML files and
// environment variables, and hot-reloads it in development.
package config

import (
	"fmt"
	"time"

	domainconfig "slidecanvas/domain/config"
	"slidecanvas/pkg/utils"
)

// Environment names a deployment environment
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
	Test        Environment = "test"
)

// Config holds all application configuration
type Config struct {
	Environment   Environment   `yaml:"environment" validate:"required,oneof=development staging production test"`
	Server        Server        `yaml:"server"`
	Storage       Storage       `yaml:"storage"`
	Events        Events        `yaml:"events"`
	AWS           AWS           `yaml:"aws"`
	Logging       Logging       `yaml:"logging"`
	Observability Observability `yaml:"observability"`
	Breaker       Breaker       `yaml:"breaker"`
	Presentation  Presentation  `yaml:"presentation"`

	// Domain is the canvas policy; it is validated by its own rules
	Domain *domainconfig.DomainConfig `yaml:"domain" validate:"-"`

	// LoadedFrom lists the sources applied, lowest priority first
	LoadedFrom []string `yaml:"-"`
}

// Server configures the HTTP API
type Server struct {
	Address         string        `yaml:"address" validate:"required,hostname_port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" validate:"gt=0"`
	AllowedOrigins  []string      `yaml:"allowed_origins" validate:"min=1"`
}

// Storage selects the project store
type Storage struct {
	Driver     string `yaml:"driver" validate:"required,oneof=memory sqlite dynamodb"`
	SQLitePath string `yaml:"sqlite_path" validate:"required_if=Driver sqlite"`
	TableName  string `yaml:"table_name" validate:"required_if=Driver dynamodb"`
}

// Events selects where domain events go besides the in-process bus
type Events struct {
	Driver       string `yaml:"driver" validate:"required,oneof=memory eventbridge"`
	EventBusName string `yaml:"event_bus_name" validate:"required_if=Driver eventbridge"`
	HistorySize  int    `yaml:"history_size" validate:"gte=0"`
}

type AWS struct {
	Region string `yaml:"region"`
}

type Logging struct {
	Level string `yaml:"level" validate:"required,oneof=debug info warn error"`
}

// Observability toggles metrics and tracing
type Observability struct {
	ServiceName      string `yaml:"service_name" validate:"required"`
	MetricsNamespace string `yaml:"metrics_namespace" validate:"required"`
	EnableMetrics    bool   `yaml:"enable_metrics"`
	EnableTracing    bool   `yaml:"enable_tracing"`
	OTLPEndpoint     string `yaml:"otlp_endpoint" validate:"required_if=EnableTracing true"`
}

// Breaker configures the circuit breakers around the store and the API
type Breaker struct {
	Enabled          bool          `yaml:"enabled"`
	MaxRequests      uint32        `yaml:"max_requests" validate:"gt=0"`
	Interval         time.Duration `yaml:"interval" validate:"gte=0"`
	Timeout          time.Duration `yaml:"timeout" validate:"gt=0"`
	FailureThreshold float64       `yaml:"failure_threshold" validate:"gt=0,lte=1"`
	MinRequests      uint32        `yaml:"min_requests" validate:"gt=0"`
}

// Presentation configures the rendering engines
type Presentation struct {
	RevealAssets  string `yaml:"reveal_assets"`
	ImpressAssets string `yaml:"impress_assets"`
}

// Default returns a configuration that runs without any files
func Default(env Environment) *Config {
	return &Config{
		Environment: env,
		Server: Server{
			Address:         ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    5 << 20,
			AllowedOrigins:  []string{"*"},
		},
		Storage: Storage{
			Driver:     "memory",
			SQLitePath: "data/slidecanvas.db",
			TableName:  "slidecanvas-" + string(env),
		},
		Events: Events{
			Driver:       "memory",
			EventBusName: "slidecanvas-events",
			HistorySize:  1000,
		},
		AWS:     AWS{Region: "us-east-1"},
		Logging: Logging{Level: "info"},
		Observability: Observability{
			ServiceName:      "slidecanvas",
			MetricsNamespace: "slidecanvas",
			EnableMetrics:    true,
			OTLPEndpoint:     "localhost:4317",
		},
		Breaker: Breaker{
			Enabled:          true,
			MaxRequests:      5,
			Interval:         30 * time.Second,
			Timeout:          60 * time.Second,
			FailureThreshold: 0.6,
			MinRequests:      5,
		},
		Domain: domainconfig.LoadDomainConfig(string(env)),
	}
}

// Validate checks the struct rules and the canvas policy
func (c *Config) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}
	if c.Domain == nil {
		return fmt.Errorf("domain configuration is missing")
	}
	if err := c.Domain.Validate(); err != nil {
		return fmt.Errorf("domain: %w", err)
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}
