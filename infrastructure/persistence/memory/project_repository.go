package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"slidecanvas/application/ports"
	"slidecanvas/domain/config"
	"slidecanvas/domain/core/aggregates"
	"slidecanvas/domain/core/valueobjects"
	pkgerrors "slidecanvas/pkg/errors"
)

// ProjectRepository keeps serialized projects in memory. Callers always get
// their own deserialized copy.
type ProjectRepository struct {
	mu        sync.RWMutex
	documents map[string]aggregates.ProjectDocument
	cfg       *config.DomainConfig
}

// Compile-time interface check
var _ ports.ProjectRepository = (*ProjectRepository)(nil)

// NewProjectRepository creates an empty in-memory repository
func NewProjectRepository(cfg *config.DomainConfig) *ProjectRepository {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &ProjectRepository{
		documents: make(map[string]aggregates.ProjectDocument),
		cfg:       cfg,
	}
}

// Save stores a project if the stored version still matches
func (r *ProjectRepository) Save(ctx context.Context, project *aggregates.Project) error {
	if project == nil {
		return pkgerrors.NewValidationError("project is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := project.ID().String()
	stored, exists := r.documents[id]
	if exists && stored.Version != project.Version() {
		return versionConflict(id, stored.Version, project.Version())
	}
	if !exists && project.Version() != 0 {
		return versionConflict(id, 0, project.Version())
	}

	project.MarkSaved()
	r.documents[id] = project.Serialize()
	return nil
}

// FindByID returns a copy of a stored project
func (r *ProjectRepository) FindByID(ctx context.Context, id valueobjects.ProjectID) (*aggregates.Project, error) {
	r.mu.RLock()
	doc, exists := r.documents[id.String()]
	r.mu.RUnlock()

	if !exists {
		return nil, pkgerrors.NewNotFoundError("project")
	}
	return aggregates.DeserializeProject(doc, r.cfg)
}

// List returns summaries, most recently updated first
func (r *ProjectRepository) List(ctx context.Context, limit int) ([]ports.ProjectSummary, error) {
	r.mu.RLock()
	summaries := make([]ports.ProjectSummary, 0, len(r.documents))
	for _, doc := range r.documents {
		summaries = append(summaries, ports.ProjectSummary{
			ID:              doc.ID,
			Name:            doc.Name,
			NodeCount:       len(doc.Nodes),
			ConnectionCount: len(doc.Connections),
			Version:         doc.Version,
			UpdatedAt:       doc.UpdatedAt,
		})
	}
	r.mu.RUnlock()

	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].UpdatedAt.Equal(summaries[j].UpdatedAt) {
			return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
		}
		return summaries[i].ID < summaries[j].ID
	})
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

// Delete removes a stored project
func (r *ProjectRepository) Delete(ctx context.Context, id valueobjects.ProjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.documents[id.String()]; !exists {
		return pkgerrors.NewNotFoundError("project")
	}
	delete(r.documents, id.String())
	return nil
}

func versionConflict(id string, stored, got int) error {
	return pkgerrors.NewConflictError(
		fmt.Sprintf("project %s was modified concurrently (stored version %d, got %d)", id, stored, got),
	).WithCode(pkgerrors.CodeVersionConflict)
}
