package handlers

import (
	"net/http"

	"slidecanvas/application/services"
	"slidecanvas/domain/core/entities"
	"slidecanvas/domain/core/valueobjects"
	pkgerrors "slidecanvas/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TemplateHandler lists catalogue templates and places them on canvases
type TemplateHandler struct {
	base
	projects  *services.ProjectService
	templates *services.TemplateService
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(projects *services.ProjectService, templates *services.TemplateService, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *TemplateHandler {
	return &TemplateHandler{base: base{errors: errs, logger: logger}, projects: projects, templates: templates}
}

// ApplyTemplateRequest sets the world point the template origin lands on.
// Without it the template is centred on the stored viewport.
type ApplyTemplateRequest struct {
	Origin *valueobjects.Point `json:"origin,omitempty"`
}

// ListTemplates handles GET /templates
func (h *TemplateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"templates": h.templates.List()})
}

// ApplyTemplate handles POST /projects/{projectID}/templates/{name}
func (h *TemplateHandler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	var req ApplyTemplateRequest
	if err := decode(r, &req, true); err != nil {
		h.respondError(w, r, err)
		return
	}
	projectID := chi.URLParam(r, "projectID")
	origin := req.Origin
	if origin == nil {
		project, err := h.projects.GetProject(r.Context(), projectID)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		center := project.Viewport().Center()
		origin = &center
	}

	created, err := h.templates.Apply(r.Context(), projectID, chi.URLParam(r, "name"), *origin)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	nodes := make([]entities.NodeData, len(created))
	for i, n := range created {
		nodes[i] = n.Snapshot()
	}
	h.respondJSON(w, http.StatusCreated, map[string]interface{}{"nodes": nodes, "count": len(nodes)})
}
