package categories

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	errSelfParent = errors.New("category cannot be its own parent")
	errCycle      = errors.New("parent is a descendant of this category")
	errBlankName  = errors.New("name must not be blank")
)

// Invalidator is notified after every write so derived catalog views can be rebuilt.
type Invalidator interface {
	Invalidate()
}

type Handler struct {
	repo  *Repo
	cache Invalidator
	log   *zap.Logger
}

func NewHandler(repo *Repo, cache Invalidator, log *zap.Logger) *Handler {
	return &Handler{repo: repo, cache: cache, log: log}
}

// Public: list categories (optional parent=<id>, parent=root for top level)
func (h *Handler) ListPublic(c *gin.Context) {
	var parent *string
	if v, ok := c.GetQuery("parent"); ok {
		if v == "root" {
			v = ""
		}
		parent = &v
	}
	items, err := h.repo.List(c.Request.Context(), parent)
	if err != nil {
		h.log.Error("list categories", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) AdminList(c *gin.Context) {
	items, err := h.repo.List(c.Request.Context(), nil)
	if err != nil {
		h.log.Error("admin list categories", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type CreateCategoryReq struct {
	Name        string  `json:"name" binding:"required"`
	ParentID    *string `json:"parent_id"`
	Description string  `json:"description"`
}

func (h *Handler) AdminCreate(c *gin.Context) {
	var req CreateCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	parent := normalizeParent(req.ParentID)
	if parent != nil {
		if _, err := h.repo.ByID(c.Request.Context(), *parent); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "parent category not found"})
			return
		}
	}

	created, err := h.repo.Create(c.Request.Context(), strings.TrimSpace(req.Name), parent, req.Description)
	if err != nil {
		h.log.Warn("create category", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to create category"})
		return
	}
	h.cache.Invalidate()
	c.JSON(http.StatusCreated, created)
}

type UpdateCategoryReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ParentID    *string `json:"parent_id"`
}

func (h *Handler) AdminUpdate(c *gin.Context) {
	id := c.Param("id")

	var req UpdateCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": errBlankName.Error()})
			return
		}
		req.Name = &name
	}

	if req.ParentID != nil {
		newParent := strings.TrimSpace(*req.ParentID)
		req.ParentID = &newParent
		if newParent != "" {
			ancestors, err := h.repo.AncestorIDs(c.Request.Context(), newParent)
			if err != nil {
				h.log.Error("load ancestors", zap.Error(err), zap.String("category_id", newParent))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update"})
				return
			}
			if err := validateParent(id, newParent, ancestors); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
	}

	updated, err := h.repo.Update(c.Request.Context(), id, UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
	})
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.log.Warn("update category", zap.Error(err), zap.String("category_id", id))
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to update"})
		return
	}
	h.cache.Invalidate()
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) AdminDelete(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	hasChildren, err := h.repo.HasChildren(ctx, id)
	if err != nil {
		h.log.Error("check children", zap.Error(err), zap.String("category_id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete"})
		return
	}
	if hasChildren {
		c.JSON(http.StatusConflict, gin.H{"error": "category has subcategories"})
		return
	}

	if err := h.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("delete category", zap.Error(err), zap.String("category_id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete"})
		return
	}
	h.cache.Invalidate()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func normalizeParent(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

// validateParent rejects moves that would put id inside its own subtree.
// ancestors are the ancestor ids of newParent.
func validateParent(id, newParent string, ancestors []string) error {
	if id == newParent {
		return errSelfParent
	}
	for _, a := range ancestors {
		if a == id {
			return errCycle
		}
	}
	return nil
}
