package handlers

import (
	"net/http"
	"strconv"
	"sync"

	"slidecanvas/application/interaction"
	"slidecanvas/application/ports"
	"slidecanvas/application/render"
	"slidecanvas/application/services"
	"slidecanvas/domain/core/aggregates"
	"slidecanvas/domain/core/valueobjects"
	"slidecanvas/infrastructure/render/svg"
	pkgerrors "slidecanvas/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxSnapshotSide bounds snapshot dimensions in pixels
const maxSnapshotSide = 8192

// CanvasHandler serves viewport changes, snapshots and interaction replay
type CanvasHandler struct {
	base
	projects *services.ProjectService
	renderer *render.Renderer
}

// NewCanvasHandler creates a new canvas handler
func NewCanvasHandler(projects *services.ProjectService, renderer *render.Renderer, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *CanvasHandler {
	return &CanvasHandler{base: base{errors: errs, logger: logger}, projects: projects, renderer: renderer}
}

// ZoomRequest scales the stored viewport about a screen point
type ZoomRequest struct {
	Factor float64             `json:"factor" validate:"gt=0"`
	Focus  *valueobjects.Point `json:"focus,omitempty"`
}

// ReplayRequest is a recorded input sequence in screen coordinates
type ReplayRequest struct {
	Events []interaction.Event `json:"events" validate:"required,min=1,max=5000,dive"`
}

// ReplayResponse reports where a replay left the canvas
type ReplayResponse struct {
	State         interaction.State          `json:"state"`
	ConnectMode   bool                       `json:"connect_mode"`
	Viewport      valueobjects.Viewport      `json:"viewport"`
	Selection     []valueobjects.NodeID      `json:"selection"`
	Notifications []ports.Notification       `json:"notifications"`
	Version       int                        `json:"version"`
	Project       aggregates.ProjectDocument `json:"project"`
}

// Zoom handles POST /projects/{projectID}/viewport/zoom
func (h *CanvasHandler) Zoom(w http.ResponseWriter, r *http.Request) {
	var req ZoomRequest
	if err := decode(r, &req, false); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.changeViewport(w, r, "ZoomViewport", func(vc *interaction.ViewportController, _ *aggregates.Project) {
		vc.ZoomBy(req.Factor, req.Focus)
	})
}

// Fit handles POST /projects/{projectID}/viewport/fit
func (h *CanvasHandler) Fit(w http.ResponseWriter, r *http.Request) {
	h.changeViewport(w, r, "FitViewport", func(vc *interaction.ViewportController, p *aggregates.Project) {
		if p.Canvas().NodeCount() > 0 {
			vc.FitToBounds(p.Canvas().Bounds(), false)
		}
	})
}

func (h *CanvasHandler) changeViewport(w http.ResponseWriter, r *http.Request, op string, change func(*interaction.ViewportController, *aggregates.Project)) {
	project, err := h.projects.Mutate(r.Context(), chi.URLParam(r, "projectID"), op, func(p *aggregates.Project) error {
		vc := interaction.NewViewportController(p.Viewport(), p.Canvas().Config(), nil)
		change(vc, p)
		return p.CommitViewport(vc.Viewport())
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, project.Viewport())
}

// Snapshot handles GET /projects/{projectID}/snapshot.svg. width and height
// resize the stored viewport; fit=true frames every node.
func (h *CanvasHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.GetProject(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	viewport := project.Viewport()
	width, err := queryFloat(r, "width", viewport.Width)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	height, err := queryFloat(r, "height", viewport.Height)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if width <= 0 || height <= 0 || width > maxSnapshotSide || height > maxSnapshotSide {
		h.respondError(w, r, pkgerrors.NewValidationError("snapshot size out of range").
			WithCode(pkgerrors.CodeInvalidSize))
		return
	}
	viewport = viewport.Resize(width, height)

	canvas := project.Canvas()
	if fit, _ := strconv.ParseBool(r.URL.Query().Get("fit")); fit && canvas.NodeCount() > 0 {
		cfg := canvas.Config()
		viewport = viewport.FitTo(canvas.Bounds(), cfg.FitPadding, cfg.MinZoom, cfg.MaxZoom)
	}

	settings := project.Settings()
	surface := svg.NewSurface()
	stats := h.renderer.Render(surface, canvas, viewport, render.Options{
		ShowGrid: settings.ShowGrid,
		GridSize: settings.GridSize,
	})

	w.Header().Set("Content-Type", svg.ContentType)
	w.Header().Set("X-Nodes-Drawn", strconv.Itoa(stats.NodesDrawn))
	w.Header().Set("X-Nodes-Culled", strconv.Itoa(stats.NodesCulled))
	w.WriteHeader(http.StatusOK)
	if _, err := surface.WriteTo(w); err != nil {
		h.logger.Warn("Failed to write snapshot", zap.Error(err))
	}
}

// Replay handles POST /projects/{projectID}/interactions. The events run
// against the stored canvas; the resulting edits and final viewport are
// saved as one change.
func (h *CanvasHandler) Replay(w http.ResponseWriter, r *http.Request) {
	var req ReplayRequest
	if err := decode(r, &req, false); err != nil {
		h.respondError(w, r, err)
		return
	}

	notes := &notificationLog{}
	var result ReplayResponse
	project, err := h.projects.Mutate(r.Context(), chi.URLParam(r, "projectID"), "ReplayInteractions", func(p *aggregates.Project) error {
		settings := p.Settings()
		vc := interaction.NewViewportController(p.Viewport(), p.Canvas().Config(), nil)
		ctrl := interaction.NewController(p.Canvas(), vc, notes, interaction.Options{
			SnapToGrid: settings.SnapToGrid,
			GridSize:   settings.GridSize,
		})
		if err := ctrl.Replay(req.Events); err != nil {
			return err
		}
		result.State = ctrl.State()
		result.ConnectMode = ctrl.ConnectMode()
		result.Selection = p.Canvas().Selection()
		return p.CommitViewport(vc.Viewport())
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	result.Viewport = project.Viewport()
	result.Notifications = notes.all()
	result.Version = project.Version()
	result.Project = project.Serialize()
	h.respondJSON(w, http.StatusOK, result)
}

// notificationLog collects controller notifications for the response
type notificationLog struct {
	mu    sync.Mutex
	items []ports.Notification
}

func (l *notificationLog) Notify(n ports.Notification) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, n)
}

func (l *notificationLog) all() []ports.Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ports.Notification{}, l.items...)
}
