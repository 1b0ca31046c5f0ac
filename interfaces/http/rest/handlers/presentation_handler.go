package handlers

import (
	"net/http"
	"strconv"

	"slidecanvas/application/services"
	pkgerrors "slidecanvas/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PresentationHandler exposes flow analysis, engine selection and rendering
type PresentationHandler struct {
	base
	projects      *services.ProjectService
	presentations *services.PresentationService
}

// NewPresentationHandler creates a new presentation handler
func NewPresentationHandler(
	projects *services.ProjectService,
	presentations *services.PresentationService,
	errs *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *PresentationHandler {
	return &PresentationHandler{
		base:          base{errors: errs, logger: logger},
		projects:      projects,
		presentations: presentations,
	}
}

// ListEngines handles GET /engines
func (h *PresentationHandler) ListEngines(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"engines": h.presentations.Engines()})
}

// Analyze handles GET /projects/{projectID}/analysis
func (h *PresentationHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.GetProject(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"flow":  h.presentations.Analyze(project),
		"order": h.presentations.Order(project),
	})
}

// Recommend handles GET /projects/{projectID}/recommendation
func (h *PresentationHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.GetProject(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	rec, err := h.presentations.Recommend(project)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, rec)
}

// Validate handles GET /projects/{projectID}/validation?engine=
func (h *PresentationHandler) Validate(w http.ResponseWriter, r *http.Request) {
	engineID := r.URL.Query().Get("engine")
	if engineID == "" {
		h.respondError(w, r, pkgerrors.NewValidationError("engine is required"))
		return
	}
	project, err := h.projects.GetProject(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	issues, err := h.presentations.Validate(project, engineID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"engine_id": engineID,
		"valid":     len(issues) == 0,
		"issues":    issues,
	})
}

// Present handles GET /projects/{projectID}/presentation?engine=&title=
// and answers with the rendered document itself.
func (h *PresentationHandler) Present(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.GetProject(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	pres, err := h.presentations.Generate(r.Context(), project, services.GenerateOptions{
		EngineID: r.URL.Query().Get("engine"),
		Title:    r.URL.Query().Get("title"),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", pres.ContentType)
	w.Header().Set("X-Presentation-Engine", pres.EngineID)
	w.Header().Set("X-Slide-Count", strconv.Itoa(pres.SlideCount))
	w.Header().Set("X-Presentation-Issues", strconv.Itoa(len(pres.Issues)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pres.Document); err != nil {
		h.logger.Warn("Failed to write presentation", zap.Error(err))
	}
}

// Generate handles POST /projects/{projectID}/presentation and answers with
// the metadata of the render, without the document.
func (h *PresentationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var opts services.GenerateOptions
	if err := decode(r, &opts, true); err != nil {
		h.respondError(w, r, err)
		return
	}
	project, err := h.projects.GetProject(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	pres, err := h.presentations.Generate(r.Context(), project, opts)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"presentation": pres,
		"bytes":        len(pres.Document),
	})
}
