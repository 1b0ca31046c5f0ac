package handlers

import (
	"net/http"

	"slidecanvas/application/services"
	"slidecanvas/domain/core/aggregates"
	"slidecanvas/domain/core/valueobjects"
	pkgerrors "slidecanvas/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ProjectHandler handles project-level HTTP requests
type ProjectHandler struct {
	base
	projects *services.ProjectService
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projects *services.ProjectService, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{base: base{errors: errs, logger: logger}, projects: projects}
}

// UpdateProjectRequest changes the name and/or the settings
type UpdateProjectRequest struct {
	Name     *string              `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Settings *aggregates.Settings `json:"settings,omitempty"`
}

// ImportProjectRequest wraps a serialized project
type ImportProjectRequest struct {
	Project aggregates.ProjectDocument `json:"project"`
}

// CreateProject handles POST /projects
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var cmd services.CreateProjectCommand
	if err := decode(r, &cmd, false); err != nil {
		h.respondError(w, r, err)
		return
	}
	project, err := h.projects.CreateProject(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, project.Serialize())
}

// ListProjects handles GET /projects
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	summaries, err := h.projects.ListProjects(r.Context(), limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"projects": summaries,
		"count":    len(summaries),
	})
}

// GetProject handles GET /projects/{projectID}
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.GetProject(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, project.Serialize())
}

// UpdateProject handles PATCH /projects/{projectID}
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var req UpdateProjectRequest
	if err := decode(r, &req, false); err != nil {
		h.respondError(w, r, err)
		return
	}
	if req.Name == nil && req.Settings == nil {
		h.respondError(w, r, pkgerrors.NewValidationError("nothing to update"))
		return
	}
	project, err := h.projects.Mutate(r.Context(), chi.URLParam(r, "projectID"), "UpdateProject",
		func(p *aggregates.Project) error {
			if req.Name != nil {
				if err := p.Rename(*req.Name); err != nil {
					return err
				}
			}
			if req.Settings != nil {
				return p.UpdateSettings(*req.Settings)
			}
			return nil
		})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, project.Serialize())
}

// DeleteProject handles DELETE /projects/{projectID}
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.projects.DeleteProject(r.Context(), chi.URLParam(r, "projectID")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportProject handles POST /projects/import
func (h *ProjectHandler) ImportProject(w http.ResponseWriter, r *http.Request) {
	var req ImportProjectRequest
	if err := decode(r, &req, false); err != nil {
		h.respondError(w, r, err)
		return
	}
	project, err := h.projects.ImportProject(r.Context(), req.Project)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"project":             project.Serialize(),
		"dropped_connections": project.DroppedConnections(),
	})
}

// ExportProject handles GET /projects/{projectID}/export. ?format=yaml
// returns the document as YAML.
func (h *ProjectHandler) ExportProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.GetProject(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	doc := project.Serialize()
	switch r.URL.Query().Get("format") {
	case "", "json":
		w.Header().Set("Content-Disposition", `attachment; filename="`+doc.ID+`.json"`)
		h.respondJSON(w, http.StatusOK, doc)
	case "yaml":
		data, err := yaml.Marshal(doc)
		if err != nil {
			h.respondError(w, r, pkgerrors.NewInternalError("failed to encode project").WithCause(err))
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.Header().Set("Content-Disposition", `attachment; filename="`+doc.ID+`.yaml"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	default:
		h.respondError(w, r, pkgerrors.NewValidationError("format must be json or yaml"))
	}
}

// CommitViewport handles PUT /projects/{projectID}/viewport
func (h *ProjectHandler) CommitViewport(w http.ResponseWriter, r *http.Request) {
	var v valueobjects.Viewport
	if err := decode(r, &v, false); err != nil {
		h.respondError(w, r, err)
		return
	}
	project, err := h.projects.CommitViewport(r.Context(), chi.URLParam(r, "projectID"), v)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, project.Viewport())
}
