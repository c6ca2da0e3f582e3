package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	resolver *Resolver
	log      *zap.Logger
}

func NewHandler(resolver *Resolver, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{resolver: resolver, log: log}
}

// GET /categories/:id/specs
func (h *Handler) CategorySpecs(c *gin.Context) {
	groups, err := h.resolver.CategorySpecs(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondErr(c, err, "failed to resolve category specs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": groups})
}

// GET /categories/:id/path?parent=<id>
func (h *Handler) Path(c *gin.Context) {
	path, err := h.resolver.PathByCategoryID(c.Request.Context(), c.Param("id"), c.Query("parent"))
	if err != nil {
		h.respondErr(c, err, "failed to resolve category path")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": path})
}

// GET /categories/:id/breadcrumb
func (h *Handler) Breadcrumb(c *gin.Context) {
	path, err := h.resolver.Breadcrumb(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondErr(c, err, "failed to resolve breadcrumb")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": path})
}

func (h *Handler) respondErr(c *gin.Context, err error, msg string) {
	RespondError(c, h.log, err, msg)
}

// RespondError writes the JSON error body matching err's kind. Internal failures are
// logged and hidden behind msg.
func RespondError(c *gin.Context, log *zap.Logger, err error, msg string) {
	switch Kind(err) {
	case KindInvalidInput:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Error(msg, zap.Error(err), zap.String("path", c.FullPath()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
