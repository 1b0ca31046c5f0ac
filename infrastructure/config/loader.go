package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader builds a Config from layered sources. From lowest to highest
// priority:
//  1. defaults
//  2. base.yaml
//  3. <environment>.yaml
//  4. local.yaml, development only
//  5. environment variables
type Loader struct {
	dir         string
	environment Environment
	getenv      func(string) string
}

// NewLoader creates a loader reading files from dir
func NewLoader(dir string, env Environment) *Loader {
	if dir == "" {
		dir = "config"
	}
	return &Loader{dir: dir, environment: env, getenv: os.Getenv}
}

// Dir is the directory files are read from
func (l *Loader) Dir() string { return l.dir }

// Load applies every layer and validates the result
func (l *Loader) Load() (*Config, error) {
	cfg := Default(l.environment)
	cfg.LoadedFrom = []string{"defaults"}

	layers := []string{"base", strings.ToLower(string(l.environment))}
	if l.environment == Development {
		layers = append(layers, "local")
	}
	for _, name := range layers {
		path, err := l.loadFile(name, cfg)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		cfg.LoadedFrom = append(cfg.LoadedFrom, path)
	}

	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}
	cfg.LoadedFrom = append(cfg.LoadedFrom, "environment")

	// Files may not move the process to another environment
	cfg.Environment = l.environment

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (l *Loader) loadFile(name string, cfg *Config) (string, error) {
	for _, ext := range []string{"yaml", "yml"} {
		path := filepath.Join(l.dir, name+"."+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return path, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return path, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return path, nil
	}
	return "", fs.ErrNotExist
}

func (l *Loader) applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"SERVER_ADDRESS": &cfg.Server.Address,
		"STORAGE_DRIVER": &cfg.Storage.Driver,
		"SQLITE_PATH":    &cfg.Storage.SQLitePath,
		"TABLE_NAME":     &cfg.Storage.TableName,
		"EVENTS_DRIVER":  &cfg.Events.Driver,
		"EVENT_BUS_NAME": &cfg.Events.EventBusName,
		"AWS_REGION":     &cfg.AWS.Region,
		"LOG_LEVEL":      &cfg.Logging.Level,
		"OTLP_ENDPOINT":  &cfg.Observability.OTLPEndpoint,
	}
	for key, target := range strs {
		if v := l.getenv(key); v != "" {
			*target = v
		}
	}

	bools := map[string]*bool{
		"ENABLE_METRICS": &cfg.Observability.EnableMetrics,
		"ENABLE_TRACING": &cfg.Observability.EnableTracing,
	}
	for key, target := range bools {
		v := l.getenv(key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*target = b
	}
	return nil
}

// EnvironmentFromEnv reads ENVIRONMENT, defaulting to development
func EnvironmentFromEnv() Environment {
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		return Environment(strings.ToLower(v))
	}
	return Development
}

// Load reads configuration for the current process, honouring ENVIRONMENT
// and CONFIG_DIR.
func Load() (*Config, *Loader, error) {
	loader := NewLoader(os.Getenv("CONFIG_DIR"), EnvironmentFromEnv())
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, loader, nil
}
