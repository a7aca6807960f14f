package issues

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/issuedesk/issuedesk-backend/internal/auth"
	"github.com/issuedesk/issuedesk-backend/internal/authz"
)

// Store is what the handlers need from the issue repository.
type Store interface {
	Create(ctx context.Context, projectID, authorID, title, description string) (*Issue, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Issue, error)
	Get(ctx context.Context, id string) (*Issue, error)
	ProjectOwner(ctx context.Context, issueID string) (string, error)
	Update(ctx context.Context, id string, title, description *string) (*Issue, error)
	SetStatus(ctx context.Context, id, status string) (*Issue, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// ProjectResolver resolves a project id to its owner. Issue creation
// authorizes against the target project before the issue exists.
type ProjectResolver = authz.Resolver

type Handler struct {
	store        Store
	projectOwner ProjectResolver
}

func Register(rg *gin.RouterGroup, store Store, projectOwner ProjectResolver) {
	h := &Handler{store: store, projectOwner: projectOwner}

	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.GET("/id/:issueId", h.get)
	rg.PATCH("/:issueId", h.update)
	rg.PATCH("/:issueId/status", h.solve)
	rg.DELETE("/:issueId", h.delete)
}

type createReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ProjectID   string `json:"project_id"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" || req.ProjectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "title and project_id are required"})
		return
	}

	// The caller must own the target project.
	userID := auth.UserID(c)
	if err := authz.CheckOwner(c.Request.Context(), h.projectOwner, req.ProjectID, userID); err != nil {
		respondErr(c, err, "project not found")
		return
	}

	i, err := h.store.Create(c.Request.Context(), req.ProjectID, userID, strings.TrimSpace(req.Title), req.Description)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "issue": i})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.store.ListByOwner(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "issues": items})
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("issueId")

	if !h.authorize(c, id) {
		return
	}

	i, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err, "issue not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "issue": i})
}

type updateReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (h *Handler) update(c *gin.Context) {
	id := c.Param("issueId")

	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "title must not be empty"})
		return
	}

	if !h.authorize(c, id) {
		return
	}

	i, err := h.store.Update(c.Request.Context(), id, req.Title, req.Description)
	if err != nil {
		respondErr(c, err, "issue not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "issue": i})
}

func (h *Handler) solve(c *gin.Context) {
	id := c.Param("issueId")

	if !h.authorize(c, id) {
		return
	}

	i, err := h.store.SetStatus(c.Request.Context(), id, StatusSolved)
	if err != nil {
		respondErr(c, err, "issue not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "issue": i})
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("issueId")

	if !h.authorize(c, id) {
		return
	}

	ok, err := h.store.Delete(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "issue not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// authorize checks the parent project's owner against the caller and
// writes the response on refusal. Malformed ids short-circuit to 404
// before touching the database.
func (h *Handler) authorize(c *gin.Context, issueID string) bool {
	if _, err := uuid.Parse(issueID); err != nil {
		respondErr(c, authz.ErrNotFound, "issue not found")
		return false
	}
	err := authz.CheckOwner(c.Request.Context(), h.store.ProjectOwner, issueID, auth.UserID(c))
	if err != nil {
		respondErr(c, err, "issue not found")
		return false
	}
	return true
}

func respondErr(c *gin.Context, err error, notFoundMsg string) {
	if errors.Is(err, authz.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": notFoundMsg})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error"})
}
