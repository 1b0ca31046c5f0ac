// Package cli is the slidecanvas command line. Commands that read a project
// file run against an in-memory store; serve and projects use the configured
// one.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"slidecanvas/domain/core/aggregates"
	"slidecanvas/infrastructure/config"
	"slidecanvas/infrastructure/di"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type app struct {
	configDir   string
	environment string
	verbose     bool
	out         io.Writer
}

// NewRootCommand builds the command tree writing human output to out
func NewRootCommand(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:   "slidecanvas",
		Short: "Lay out slides on a canvas and present them",
		Long: `slidecanvas manages canvas projects: nodes placed freely on an infinite
plane, linked by connections, and rendered as reveal.js or impress.js decks.

Examples:
  slidecanvas serve
  slidecanvas analyze talk.json
  slidecanvas render talk.yaml --engine impress --out talk.html
  slidecanvas snapshot talk.json --width 1600 --height 900 --out talk.svg`,
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&a.configDir, "config-dir", os.Getenv("CONFIG_DIR"), "directory holding base/<env>/local YAML files")
	root.PersistentFlags().StringVarP(&a.environment, "env", "e", string(config.EnvironmentFromEnv()), "environment name")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		a.serveCommand(),
		a.projectsCommand(),
		a.analyzeCommand(),
		a.validateCommand(),
		a.renderCommand(),
		a.snapshotCommand(),
		a.templatesCommand(),
	)
	return root
}

// Execute runs the command line against os.Args
func Execute() {
	if err := NewRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, bad.Sprint("error: ")+err.Error())
		os.Exit(1)
	}
}

func (a *app) loadConfig() (*config.Config, *config.Loader, error) {
	loader := config.NewLoader(a.configDir, config.Environment(strings.ToLower(a.environment)))
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, loader, nil
}

// offlineContainer wires the services over a private in-memory store with
// no external event sink, quiet logs and no tracing.
func (a *app) offlineContainer(ctx context.Context) (*di.Container, func(), error) {
	cfg, _, err := a.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	cfg.Storage.Driver = "memory"
	cfg.Events.Driver = "memory"
	cfg.Observability.EnableTracing = false
	cfg.Breaker.Enabled = false
	if !a.verbose {
		cfg.Logging.Level = "error"
	}
	return di.InitializeContainer(ctx, cfg)
}

// readDocument parses a project file; .yaml and .yml are YAML, anything
// else JSON.
func readDocument(path string) (aggregates.ProjectDocument, error) {
	var doc aggregates.ProjectDocument
	data, err := os.ReadFile(path)
	if err != nil {
		return doc, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return doc, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

// loadProject imports a project file into an offline container
func (a *app) loadProject(ctx context.Context, path string) (*di.Container, *aggregates.Project, func(), error) {
	doc, err := readDocument(path)
	if err != nil {
		return nil, nil, nil, err
	}
	c, cleanup, err := a.offlineContainer(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	project, err := c.Projects.ImportProject(ctx, doc)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	if dropped := project.DroppedConnections(); dropped > 0 {
		warn.Fprintf(a.out, "dropped %d connection(s) with missing or repeated endpoints\n", dropped)
	}
	return c, project, cleanup, nil
}

// writeOutput writes data to path, or to the command output for "" and "-"
func (a *app) writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := a.out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	good.Fprintf(a.out, "wrote %s (%d bytes)\n", path, len(data))
	return nil
}
