package projects

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/issuedesk/issuedesk-backend/internal/auth"
	"github.com/issuedesk/issuedesk-backend/internal/authz"
)

// Store is what the handlers need from the repository.
type Store interface {
	Create(ctx context.Context, ownerID, name string) (*Project, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Project, error)
	Get(ctx context.Context, id string) (*Project, error)
	OwnerOf(ctx context.Context, id string) (string, error)
	Rename(ctx context.Context, id, newName string) (*Project, error)
	SoftDelete(ctx context.Context, id string) (bool, error)
}

type Handler struct {
	store Store
}

func Register(rg *gin.RouterGroup, store Store) {
	h := &Handler{store: store}

	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.GET("/:projectId", h.get)
	rg.PATCH("/:projectId", h.rename)
	rg.DELETE("/:projectId", h.delete)
}

type createReq struct {
	Name string `json:"name"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "project name is required"})
		return
	}

	p, err := h.store.Create(c.Request.Context(), auth.UserID(c), strings.TrimSpace(req.Name))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.store.ListByOwner(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("projectId")

	// Foreign projects answer 404, same as absent ones.
	if !h.authorize(c, id) {
		return
	}

	p, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

type renameReq struct {
	Name string `json:"name"`
}

func (h *Handler) rename(c *gin.Context) {
	id := c.Param("projectId")

	var req renameReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "project name is required"})
		return
	}

	if !h.authorize(c, id) {
		return
	}

	p, err := h.store.Rename(c.Request.Context(), id, strings.TrimSpace(req.Name))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("projectId")

	if !h.authorize(c, id) {
		return
	}

	ok, err := h.store.SoftDelete(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// authorize runs the ownership check and writes the response on refusal.
func (h *Handler) authorize(c *gin.Context, projectID string) bool {
	err := authz.CheckOwner(c.Request.Context(), h.store.OwnerOf, projectID, auth.UserID(c))
	if err != nil {
		respondErr(c, err)
		return false
	}
	return true
}

func respondErr(c *gin.Context, err error) {
	if errors.Is(err, authz.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error"})
}
