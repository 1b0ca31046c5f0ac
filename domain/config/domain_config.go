package config

import (
	"fmt"
	"time"
)

// Dimensions is a width/height pair used for per-type node defaults.
type Dimensions struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// DomainConfig holds all configurable canvas rules and constraints
type DomainConfig struct {
	// Viewport
	MinZoom               float64       `yaml:"min_zoom"`
	MaxZoom               float64       `yaml:"max_zoom"`
	ZoomStep              float64       `yaml:"zoom_step"`
	ZoomAnimationDuration time.Duration `yaml:"zoom_animation_duration"`
	FitPadding            float64       `yaml:"fit_padding"`

	// Grid
	GridSize       float64 `yaml:"grid_size"`
	SnapThreshold  float64 `yaml:"snap_threshold"`
	MinGridSpacing float64 `yaml:"min_grid_spacing"`
	MaxGridLines   int     `yaml:"max_grid_lines"`

	// Connection geometry
	ControlOffsetFactor float64 `yaml:"control_offset_factor"`
	MaxControlOffset    float64 `yaml:"max_control_offset"`
	ArrowAngleDegrees   float64 `yaml:"arrow_angle_degrees"`
	ArrowLength         float64 `yaml:"arrow_length"`

	// Rendering
	MinVisiblePixels float64 `yaml:"min_visible_pixels"`

	// Canvas constraints
	MaxNodes         int `yaml:"max_nodes"`
	MaxConnections   int `yaml:"max_connections"`
	MaxContentLength int `yaml:"max_content_length"`

	// Node defaults, keyed by node type
	DefaultNodeSizes map[string]Dimensions `yaml:"default_node_sizes"`
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MinZoom:               0.1,
		MaxZoom:               10.0,
		ZoomStep:              1.1,
		ZoomAnimationDuration: 250 * time.Millisecond,
		FitPadding:            50,

		GridSize:       20,
		SnapThreshold:  0.3,
		MinGridSpacing: 8,
		MaxGridLines:   400,

		ControlOffsetFactor: 0.5,
		MaxControlOffset:    100,
		ArrowAngleDegrees:   30,
		ArrowLength:         12,

		MinVisiblePixels: 2,

		MaxNodes:         2000,
		MaxConnections:   10000,
		MaxContentLength: 50000,

		DefaultNodeSizes: map[string]Dimensions{
			"text":    {Width: 200, Height: 100},
			"heading": {Width: 300, Height: 80},
			"image":   {Width: 240, Height: 180},
			"code":    {Width: 320, Height: 200},
			"list":    {Width: 220, Height: 160},
			"table":   {Width: 320, Height: 200},
			"chart":   {Width: 320, Height: 240},
		},
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	config.MaxNodes = 1000
	config.MaxConnections = 5000
	config.MaxContentLength = 20000

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	config.MaxNodes = 20000
	config.MaxConnections = 100000

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// DefaultSize returns the default dimensions for a node type.
func (c *DomainConfig) DefaultSize(nodeType string) Dimensions {
	if d, ok := c.DefaultNodeSizes[nodeType]; ok && d.Width > 0 && d.Height > 0 {
		return d
	}
	return Dimensions{Width: 200, Height: 100}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.MinZoom <= 0 || c.MaxZoom < c.MinZoom {
		return fmt.Errorf("invalid zoom range [%g, %g]", c.MinZoom, c.MaxZoom)
	}
	if c.ZoomStep <= 1 {
		return fmt.Errorf("zoom step must be greater than 1, got %g", c.ZoomStep)
	}
	if c.GridSize <= 0 {
		return fmt.Errorf("grid size must be positive, got %g", c.GridSize)
	}
	if c.SnapThreshold < 0 || c.SnapThreshold > 0.5 {
		return fmt.Errorf("snap threshold must be within [0, 0.5], got %g", c.SnapThreshold)
	}
	if c.MaxGridLines <= 0 {
		return fmt.Errorf("max grid lines must be positive, got %d", c.MaxGridLines)
	}
	if c.MaxControlOffset < 0 || c.ControlOffsetFactor < 0 {
		return fmt.Errorf("control offset settings must not be negative")
	}
	if c.MaxNodes <= 0 || c.MaxConnections <= 0 {
		return fmt.Errorf("canvas limits must be positive")
	}
	return nil
}
