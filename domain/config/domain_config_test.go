package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDomainConfig(t *testing.T) {
	assert.Equal(t, 1000, LoadDomainConfig("production").MaxNodes)
	assert.Equal(t, 20000, LoadDomainConfig("development").MaxNodes)
	assert.Equal(t, 2000, LoadDomainConfig("staging").MaxNodes)

	for _, env := range []string{"production", "development", "test"} {
		assert.NoError(t, LoadDomainConfig(env).Validate(), env)
	}
}

func TestDomainConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DomainConfig)
	}{
		{"inverted zoom range", func(c *DomainConfig) { c.MinZoom, c.MaxZoom = 5, 1 }},
		{"zero min zoom", func(c *DomainConfig) { c.MinZoom = 0 }},
		{"flat zoom step", func(c *DomainConfig) { c.ZoomStep = 1 }},
		{"zero grid", func(c *DomainConfig) { c.GridSize = 0 }},
		{"snap beyond half", func(c *DomainConfig) { c.SnapThreshold = 0.6 }},
		{"no grid lines", func(c *DomainConfig) { c.MaxGridLines = 0 }},
		{"no nodes", func(c *DomainConfig) { c.MaxNodes = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultDomainConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDomainConfig_DefaultSize(t *testing.T) {
	cfg := DefaultDomainConfig()
	assert.Equal(t, Dimensions{Width: 300, Height: 80}, cfg.DefaultSize("heading"))
	assert.Equal(t, Dimensions{Width: 200, Height: 100}, cfg.DefaultSize("unknown"))
}
