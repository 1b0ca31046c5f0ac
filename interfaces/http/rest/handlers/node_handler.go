package handlers

import (
	"net/http"

	"slidecanvas/application/services"
	"slidecanvas/domain/core/aggregates"
	"slidecanvas/domain/core/entities"
	"slidecanvas/domain/core/valueobjects"
	pkgerrors "slidecanvas/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NodeHandler handles node and connection requests on a project canvas
type NodeHandler struct {
	base
	projects *services.ProjectService
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(projects *services.ProjectService, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *NodeHandler {
	return &NodeHandler{base: base{errors: errs, logger: logger}, projects: projects}
}

// CreateNodeRequest represents the request body for creating a node
type CreateNodeRequest struct {
	ID       string             `json:"id,omitempty" validate:"omitempty,max=100"`
	Type     string             `json:"type" validate:"required"`
	Position valueobjects.Point `json:"position"`
	Size     *valueobjects.Size `json:"size,omitempty"`
	Content  *entities.Content  `json:"content,omitempty"`
	Style    *entities.Style    `json:"style,omitempty"`
	Order    *int               `json:"order,omitempty" validate:"omitempty,gte=0"`
}

// UpdateNodeRequest represents the request body for updating a node. Only
// set fields change.
type UpdateNodeRequest struct {
	Type       *string             `json:"type,omitempty"`
	Position   *valueobjects.Point `json:"position,omitempty"`
	Size       *valueobjects.Size  `json:"size,omitempty"`
	Content    *entities.Content   `json:"content,omitempty"`
	Style      *entities.Style     `json:"style,omitempty"`
	Order      *int                `json:"order,omitempty" validate:"omitempty,gte=0"`
	ClearOrder bool                `json:"clear_order,omitempty"`
}

// DuplicateNodeRequest sets where the copy goes relative to the original
type DuplicateNodeRequest struct {
	Offset *valueobjects.Point `json:"offset,omitempty"`
}

// CreateConnectionRequest represents the request body for linking two nodes
type CreateConnectionRequest struct {
	ID          string                    `json:"id,omitempty" validate:"omitempty,max=100"`
	StartNodeID string                    `json:"start_node_id" validate:"required"`
	EndNodeID   string                    `json:"end_node_id" validate:"required"`
	Type        string                    `json:"type,omitempty" validate:"omitempty,oneof=flow reference"`
	Style       *entities.ConnectionStyle `json:"style,omitempty"`
}

// duplicateOffset places copies one default grid cell down and right
var duplicateOffset = valueobjects.Point{X: 20, Y: 20}

// CreateNode handles POST /projects/{projectID}/nodes
func (h *NodeHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req CreateNodeRequest
	if err := decode(r, &req, false); err != nil {
		h.respondError(w, r, err)
		return
	}
	nodeType, err := entities.ParseNodeType(req.Type)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	node, err := h.projects.CreateNode(r.Context(), chi.URLParam(r, "projectID"), aggregates.NodeSpec{
		ID:       req.ID,
		Type:     nodeType,
		Position: req.Position,
		Size:     req.Size,
		Content:  req.Content,
		Style:    req.Style,
		Order:    req.Order,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, node.Snapshot())
}

// ListNodes handles GET /projects/{projectID}/nodes in paint order
func (h *NodeHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.GetProject(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	nodes := project.Canvas().Nodes()
	data := make([]entities.NodeData, len(nodes))
	for i, n := range nodes {
		data[i] = n.Snapshot()
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"nodes": data, "count": len(data)})
}

// UpdateNode handles PATCH /projects/{projectID}/nodes/{nodeID}
func (h *NodeHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	var req UpdateNodeRequest
	if err := decode(r, &req, false); err != nil {
		h.respondError(w, r, err)
		return
	}
	update := aggregates.NodeUpdate{
		Position:   req.Position,
		Size:       req.Size,
		Content:    req.Content,
		Style:      req.Style,
		Order:      req.Order,
		ClearOrder: req.ClearOrder,
	}
	if req.Type != nil {
		t, err := entities.ParseNodeType(*req.Type)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		update.Type = &t
	}
	if update.IsEmpty() {
		h.respondError(w, r, pkgerrors.NewValidationError("nothing to update"))
		return
	}
	node, err := h.projects.UpdateNode(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "nodeID"), update)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, node.Snapshot())
}

// MoveNode handles PUT /projects/{projectID}/nodes/{nodeID}/position
func (h *NodeHandler) MoveNode(w http.ResponseWriter, r *http.Request) {
	var p valueobjects.Point
	if err := decode(r, &p, false); err != nil {
		h.respondError(w, r, err)
		return
	}
	node, err := h.projects.MoveNode(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "nodeID"), p)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, node.Snapshot())
}

// DuplicateNode handles POST /projects/{projectID}/nodes/{nodeID}/duplicate
func (h *NodeHandler) DuplicateNode(w http.ResponseWriter, r *http.Request) {
	var req DuplicateNodeRequest
	if err := decode(r, &req, true); err != nil {
		h.respondError(w, r, err)
		return
	}
	offset := duplicateOffset
	if req.Offset != nil {
		offset = *req.Offset
	}
	node, err := h.projects.DuplicateNode(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "nodeID"), offset)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, node.Snapshot())
}

// DeleteNode handles DELETE /projects/{projectID}/nodes/{nodeID}
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := h.projects.DeleteNode(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "nodeID")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HitTest handles GET /projects/{projectID}/hit?x=&y= with world
// coordinates. The topmost node under the point is returned, or null.
func (h *NodeHandler) HitTest(w http.ResponseWriter, r *http.Request) {
	x, err := queryFloat(r, "x", 0)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	y, err := queryFloat(r, "y", 0)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	node, err := h.projects.NodeAt(r.Context(), chi.URLParam(r, "projectID"), valueobjects.Point{X: x, Y: y})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if node == nil {
		h.respondJSON(w, http.StatusOK, map[string]interface{}{"node": nil})
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"node": node.Snapshot()})
}

// CreateConnection handles POST /projects/{projectID}/connections
func (h *NodeHandler) CreateConnection(w http.ResponseWriter, r *http.Request) {
	var req CreateConnectionRequest
	if err := decode(r, &req, false); err != nil {
		h.respondError(w, r, err)
		return
	}
	conn, err := h.projects.Connect(r.Context(), chi.URLParam(r, "projectID"), req.StartNodeID, req.EndNodeID,
		aggregates.ConnectionSpec{ID: req.ID, Type: entities.ConnectionType(req.Type), Style: req.Style})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, conn.Snapshot())
}

// ListConnections handles GET /projects/{projectID}/connections
func (h *NodeHandler) ListConnections(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.GetProject(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	conns := project.Canvas().Connections()
	data := make([]entities.ConnectionData, len(conns))
	for i, c := range conns {
		data[i] = c.Snapshot()
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"connections": data, "count": len(data)})
}

// DeleteConnection handles DELETE /projects/{projectID}/connections/{connectionID}
func (h *NodeHandler) DeleteConnection(w http.ResponseWriter, r *http.Request) {
	err := h.projects.RemoveConnection(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "connectionID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
