package specgroups

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/db"
)

var (
	errNoKeys   = errors.New("keys must not be empty")
	errBlankKey = errors.New("keys must not contain blank labels")
	errDupKey   = errors.New("keys must be unique")

	errBlankTitle = errors.New("title must not be blank")
)

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

func (h *Handler) AdminList(c *gin.Context) {
	items, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.log.Error("list spec groups", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list spec groups"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) AdminGet(c *gin.Context) {
	g, err := h.repo.ByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondRepoErr(c, err, "failed to load spec group")
		return
	}
	c.JSON(http.StatusOK, g)
}

type CreateGroupReq struct {
	Title string   `json:"title" binding:"required"`
	Keys  []string `json:"keys" binding:"required"`
}

func (h *Handler) AdminCreate(c *gin.Context) {
	var req CreateGroupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	title, err := normalizeTitle(req.Title)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	keys, err := normalizeKeys(req.Keys)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g, err := h.repo.Create(c.Request.Context(), title, keys)
	if err != nil {
		h.respondRepoErr(c, err, "failed to create spec group")
		return
	}
	h.cache.Invalidate()
	c.JSON(http.StatusCreated, g)
}

type UpdateGroupReq struct {
	Title *string  `json:"title"`
	Keys  []string `json:"keys"`
}

func (h *Handler) AdminUpdate(c *gin.Context) {
	var req UpdateGroupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	var title *string
	if req.Title != nil {
		t, err := normalizeTitle(*req.Title)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		title = &t
	}
	var keys []string
	if req.Keys != nil {
		var err error
		if keys, err = normalizeKeys(req.Keys); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	g, err := h.repo.Update(c.Request.Context(), c.Param("id"), title, keys)
	if err != nil {
		h.respondRepoErr(c, err, "failed to update spec group")
		return
	}
	h.cache.Invalidate()
	c.JSON(http.StatusOK, g)
}

func (h *Handler) AdminDelete(c *gin.Context) {
	if err := h.repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondRepoErr(c, err, "failed to delete spec group")
		return
	}
	h.cache.Invalidate()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) respondRepoErr(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrKeysInUse):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case db.IsForeignKeyViolation(err):
		c.JSON(http.StatusConflict, gin.H{"error": "spec group is used by products"})
	default:
		h.log.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

func normalizeTitle(in string) (string, error) {
	title := strings.TrimSpace(in)
	if title == "" {
		return "", errBlankTitle
	}
	return title, nil
}

// normalizeKeys trims labels and rejects empty, blank or duplicate ones.
func normalizeKeys(in []string) ([]string, error) {
	if len(in) == 0 {
		return nil, errNoKeys
	}
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, k := range in {
		k = strings.TrimSpace(k)
		if k == "" {
			return nil, errBlankKey
		}
		if _, ok := seen[strings.ToLower(k)]; ok {
			return nil, errDupKey
		}
		seen[strings.ToLower(k)] = struct{}{}
		out = append(out, k)
	}
	return out, nil
}
