package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"slidecanvas/application/ports"
	"slidecanvas/domain/config"
	"slidecanvas/domain/core/aggregates"
	"slidecanvas/domain/core/valueobjects"
	pkgerrors "slidecanvas/pkg/errors"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// timeLayout is fixed width so updated_at sorts as text
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
	PRAGMA busy_timeout = 5000;

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		node_count INTEGER NOT NULL,
		connection_count INTEGER NOT NULL,
		version INTEGER NOT NULL,
		document TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_projects_updated ON projects(updated_at);
`

// ProjectRepository stores project documents in a local SQLite file
type ProjectRepository struct {
	db     *sql.DB
	cfg    *config.DomainConfig
	logger *zap.Logger
}

// Compile-time interface check
var _ ports.ProjectRepository = (*ProjectRepository)(nil)

// Open opens (creating if needed) the database at path. ":memory:" opens a
// private in-memory database.
func Open(ctx context.Context, path string, cfg *config.DomainConfig, logger *zap.Logger) (*ProjectRepository, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = path + "?_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// Every connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	logger.Info("SQLite project store ready", zap.String("path", path))
	return &ProjectRepository{db: db, cfg: cfg, logger: logger}, nil
}

// Close closes the database connection
func (r *ProjectRepository) Close() error {
	return r.db.Close()
}

// Ping reports whether the database is reachable
func (r *ProjectRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Save writes the project if the stored version still matches
func (r *ProjectRepository) Save(ctx context.Context, project *aggregates.Project) error {
	if project == nil {
		return pkgerrors.NewValidationError("project is required")
	}
	expected := project.Version()

	saved := project.Clone()
	saved.MarkSaved()
	doc := saved.Serialize()
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode project document: %w", err)
	}
	updated := doc.UpdatedAt.UTC().Format(timeLayout)

	var res sql.Result
	if expected == 0 {
		res, err = r.db.ExecContext(ctx, `
			INSERT INTO projects (id, name, node_count, connection_count, version, document, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`, doc.ID, doc.Name, len(doc.Nodes), len(doc.Connections), doc.Version, string(body), updated)
	} else {
		res, err = r.db.ExecContext(ctx, `
			UPDATE projects
			SET name = ?, node_count = ?, connection_count = ?, version = ?, document = ?, updated_at = ?
			WHERE id = ? AND version = ?
		`, doc.Name, len(doc.Nodes), len(doc.Connections), doc.Version, string(body), updated, doc.ID, expected)
	}
	if err != nil {
		return pkgerrors.NewDatabaseError("save project", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return pkgerrors.NewDatabaseError("save project", err)
	}
	if rows == 0 {
		return pkgerrors.NewConflictError(
			fmt.Sprintf("project %s was modified concurrently (expected version %d)", doc.ID, expected),
		).WithCode(pkgerrors.CodeVersionConflict)
	}

	project.MarkSaved()
	r.logger.Debug("Project saved",
		zap.String("projectID", doc.ID),
		zap.Int("version", doc.Version),
	)
	return nil
}

// FindByID loads a project
func (r *ProjectRepository) FindByID(ctx context.Context, id valueobjects.ProjectID) (*aggregates.Project, error) {
	var body string
	var version int
	err := r.db.QueryRowContext(ctx,
		`SELECT document, version FROM projects WHERE id = ?`, id.String(),
	).Scan(&body, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.NewNotFoundError("project")
	}
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get project", err)
	}

	var doc aggregates.ProjectDocument
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode project document: %w", err)
	}
	doc.Version = version
	return aggregates.DeserializeProject(doc, r.cfg)
}

// List returns summaries, most recently updated first
func (r *ProjectRepository) List(ctx context.Context, limit int) ([]ports.ProjectSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, node_count, connection_count, version, updated_at
		FROM projects
		ORDER BY updated_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("list projects", err)
	}
	defer rows.Close()

	var summaries []ports.ProjectSummary
	for rows.Next() {
		var s ports.ProjectSummary
		var updated string
		if err := rows.Scan(&s.ID, &s.Name, &s.NodeCount, &s.ConnectionCount, &s.Version, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		s.UpdatedAt, _ = time.Parse(timeLayout, updated)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewDatabaseError("list projects", err)
	}
	return summaries, nil
}

// Delete removes a project
func (r *ProjectRepository) Delete(ctx context.Context, id valueobjects.ProjectID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id.String())
	if err != nil {
		return pkgerrors.NewDatabaseError("delete project", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return pkgerrors.NewNotFoundError("project")
	}
	return nil
}
