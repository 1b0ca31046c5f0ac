package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newTestLoader(dir string, env Environment, vars map[string]string) *Loader {
	l := NewLoader(dir, env)
	l.getenv = func(key string) string { return vars[key] }
	return l
}

func TestLoad_DefaultsWithoutFiles(t *testing.T) {
	cfg, err := newTestLoader(t.TempDir(), Development, nil).Load()
	require.NoError(t, err)

	assert.Equal(t, Development, cfg.Environment)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 20000, cfg.Domain.MaxNodes)
	assert.Equal(t, []string{"defaults", "environment"}, cfg.LoadedFrom)
}

func TestLoad_LayersInPriorityOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
server:
  address: ":9000"
logging:
  level: debug
domain:
  grid_size: 25
`)
	writeFile(t, dir, "development.yaml", `
server:
  address: ":9100"
storage:
  driver: sqlite
  sqlite_path: /tmp/dev.db
`)
	writeFile(t, dir, "local.yml", `
logging:
  level: warn
`)

	cfg, err := newTestLoader(dir, Development, map[string]string{
		"SERVER_ADDRESS": "127.0.0.1:7000",
		"ENABLE_TRACING": "true",
	}).Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Address)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "/tmp/dev.db", cfg.Storage.SQLitePath)
	assert.True(t, cfg.Observability.EnableTracing)
	assert.Equal(t, 25.0, cfg.Domain.GridSize)
	// untouched domain fields keep their defaults
	assert.Equal(t, 10.0, cfg.Domain.MaxZoom)
	assert.Len(t, cfg.LoadedFrom, 5)
}

func TestLoad_LocalOnlyInDevelopment(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "local.yaml", "logging:\n  level: debug\n")

	cfg, err := newTestLoader(dir, Production, nil).Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 1000, cfg.Domain.MaxNodes)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		file string
		vars map[string]string
		msg  string
	}{
		{name: "unknown storage driver", vars: map[string]string{"STORAGE_DRIVER": "postgres"}, msg: "driver must be one of"},
		{name: "dynamodb without table", file: "storage:\n  driver: dynamodb\n  table_name: \"\"\n", msg: "tablename"},
		{name: "bad bool", vars: map[string]string{"ENABLE_METRICS": "maybe"}, msg: "ENABLE_METRICS"},
		{name: "bad yaml", file: "server: [", msg: "failed to parse"},
		{name: "bad domain policy", file: "domain:\n  zoom_step: 0.5\n", msg: "zoom step"},
		{name: "bad address", vars: map[string]string{"SERVER_ADDRESS": "nowhere"}, msg: "host:port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.file != "" {
				writeFile(t, dir, "base.yaml", tt.file)
			}
			_, err := newTestLoader(dir, Test, tt.vars).Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestWatcher_ReloadNotifiesOnChange(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "logging:\n  level: info\n")
	loader := newTestLoader(dir, Test, nil)
	initial, err := loader.Load()
	require.NoError(t, err)

	w := NewWatcher(loader, initial, zap.NewNop())
	var calls atomic.Int32
	w.OnChange(func(c *Config) { calls.Add(1) })

	assert.False(t, w.Reload(), "nothing changed")

	writeFile(t, dir, "base.yaml", "logging:\n  level: debug\n")
	assert.True(t, w.Reload())
	assert.Equal(t, "debug", w.Current().Logging.Level)

	writeFile(t, dir, "base.yaml", "logging:\n  level: loud\n")
	assert.False(t, w.Reload())
	assert.Equal(t, "debug", w.Current().Logging.Level, "invalid reload keeps the old config")
	assert.EqualValues(t, 1, calls.Load())
}

func TestWatcher_RunPicksUpFileWrites(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "logging:\n  level: info\n")
	loader := newTestLoader(dir, Test, nil)
	initial, err := loader.Load()
	require.NoError(t, err)

	w := NewWatcher(loader, initial, zap.NewNop())
	w.debounce = 20 * time.Millisecond
	changed := make(chan *Config, 1)
	w.OnChange(func(c *Config) { changed <- c })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// give the watcher a moment to register the directory
	require.Eventually(t, func() bool {
		writeFile(t, dir, "base.yaml", "logging:\n  level: warn\n")
		select {
		case c := <-changed:
			return c.Logging.Level == "warn"
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
