package products

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/auth"
	"storefront/internal/db"
	"storefront/internal/domain/product"
)

var (
	errDuplicateSpecGroup = errors.New("spec group listed more than once")
	errBlankCategory      = errors.New("blank category id")
)

type productStore interface {
	CreateProduct(ctx context.Context, in CreateProductInput) (product.Product, error)
	ListPublic(ctx context.Context, categorySlug *string) ([]product.Product, error)
	GetProductPublic(ctx context.Context, id string) (product.Product, error)
	Deactivate(ctx context.Context, id string) error
}

type catalogResolver interface {
	viewResolver
	Invalidate()
}

type Handler struct {
	repo     productStore
	resolver catalogResolver
	log      *zap.Logger
}

func NewHandler(repo productStore, resolver catalogResolver, log *zap.Logger) *Handler {
	return &Handler{repo: repo, resolver: resolver, log: log}
}

// Public: list products (optional category=slug)
func (h *Handler) ListPublic(c *gin.Context) {
	var cat *string
	if v := c.Query("category"); v != "" {
		cat = &v
	}

	items, err := h.repo.ListPublic(c.Request.Context(), cat)
	if err != nil {
		h.log.Error("list products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Public: product details with spec table and breadcrumb
func (h *Handler) GetPublic(c *gin.Context) {
	p, err := h.repo.GetProductPublic(c.Request.Context(), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	if err != nil {
		h.log.Error("load product", zap.Error(err), zap.String("product_id", c.Param("id")))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load product"})
		return
	}
	c.JSON(http.StatusOK, buildView(c.Request.Context(), h.resolver, h.log, p))
}

type CreateProductReq struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CategoryIDs []string        `json:"category_ids" binding:"required,min=1"`

	Specs []CreateSpecReq `json:"specs"`
}

type CreateSpecReq struct {
	GroupID string   `json:"group_id" binding:"required"`
	Values  []string `json:"values"`
}

// toInput trims the request and folds repeated category ids into their first
// position. A spec group listed twice is ambiguous and rejected.
func (req CreateProductReq) toInput(createdBy int64) (CreateProductInput, error) {
	in := CreateProductInput{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		CreatedBy:   createdBy,
		CategoryIDs: make([]string, 0, len(req.CategoryIDs)),
		Specs:       make([]CreateSpecInput, 0, len(req.Specs)),
	}

	seenCat := make(map[string]struct{}, len(req.CategoryIDs))
	for _, id := range req.CategoryIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			return CreateProductInput{}, errBlankCategory
		}
		if _, dup := seenCat[id]; dup {
			continue
		}
		seenCat[id] = struct{}{}
		in.CategoryIDs = append(in.CategoryIDs, id)
	}

	seenGroup := make(map[string]struct{}, len(req.Specs))
	for _, s := range req.Specs {
		groupID := strings.TrimSpace(s.GroupID)
		if _, dup := seenGroup[groupID]; dup {
			return CreateProductInput{}, fmt.Errorf("%w: %s", errDuplicateSpecGroup, groupID)
		}
		seenGroup[groupID] = struct{}{}
		in.Specs = append(in.Specs, CreateSpecInput{GroupID: groupID, Values: s.Values})
	}
	return in, nil
}

// Admin: create product with category assignments and spec values
func (h *Handler) AdminCreate(c *gin.Context) {
	var req CreateProductReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" || req.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	in, err := req.toInput(c.GetInt64(auth.CtxUserIDKey))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.repo.CreateProduct(c.Request.Context(), in)
	switch {
	case err == nil:
	case errors.Is(err, ErrSpecMismatch), errors.Is(err, ErrUnknownSpecGroup):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case db.IsForeignKeyViolation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	default:
		h.log.Error("create product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
		return
	}

	h.resolver.Invalidate()
	c.JSON(http.StatusCreated, p)
}

// Admin: hide a product from the storefront
func (h *Handler) AdminDeactivate(c *gin.Context) {
	err := h.repo.Deactivate(c.Request.Context(), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	if err != nil {
		h.log.Error("deactivate product", zap.Error(err), zap.String("product_id", c.Param("id")))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
		return
	}
	h.resolver.Invalidate()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
