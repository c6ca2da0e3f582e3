package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/domain/user"
)

// UserStore is the slice of UserRepo the handler needs.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash, role string) (user.User, error)
	ByEmail(ctx context.Context, email string) (user.User, error)
	ByID(ctx context.Context, id int64) (user.User, error)
}

type RefreshStore interface {
	Store(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error
	Consume(ctx context.Context, userID int64, tokenHash string) (bool, error)
	RevokeAll(ctx context.Context, userID int64) error
}

type Dependencies struct {
	JWT     *JWTManager
	Users   UserStore
	Refresh RefreshStore
	Log     *zap.Logger
}

type Handler struct {
	deps Dependencies
}

func NewHandler(d Dependencies) *Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &Handler{deps: d}
}

type registerReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func normalizeEmail(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

func (h *Handler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pwHash, err := HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.deps.Users.Create(c.Request.Context(), normalizeEmail(req.Email), pwHash, RoleUser)
	if errors.Is(err, ErrEmailTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.deps.Log.Error("create user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": sanitizeUser(u)})
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.deps.Users.ByEmail(c.Request.Context(), normalizeEmail(req.Email))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		h.deps.Log.Error("load user", zap.Error(err))
	}
	if err != nil || !u.IsActive || !CheckPassword(u.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	h.issueTokens(c, u, gin.H{"user": sanitizeUser(u)})
}

// Refresh rotates the refresh token. The new pair is signed from the stored
// account, so role changes and deactivation take effect on the next refresh.
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := h.deps.JWT.ParseRefresh(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}

	ctx := c.Request.Context()
	ok, err := h.deps.Refresh.Consume(ctx, claims.UserID, HashToken(req.RefreshToken))
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token expired or revoked"})
		return
	}

	u, err := h.deps.Users.ByID(ctx, claims.UserID)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		h.deps.Log.Error("load user", zap.Error(err), zap.Int64("user_id", claims.UserID))
	}
	if err != nil || !u.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account unavailable"})
		return
	}

	h.issueTokens(c, u, gin.H{})
}

func (h *Handler) Logout(c *gin.Context) {
	var req refreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	claims, err := h.deps.JWT.ParseRefresh(req.RefreshToken)
	if err == nil {
		_, _ = h.deps.Refresh.Consume(c.Request.Context(), claims.UserID, HashToken(req.RefreshToken))
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// LogoutAll revokes every refresh token of the current user.
func (h *Handler) LogoutAll(c *gin.Context) {
	uid := c.GetInt64(CtxUserIDKey)
	if err := h.deps.Refresh.RevokeAll(c.Request.Context(), uid); err != nil {
		h.deps.Log.Error("revoke refresh tokens", zap.Error(err), zap.Int64("user_id", uid))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) Me(c *gin.Context) {
	u, err := h.deps.Users.ByID(c.Request.Context(), c.GetInt64(CtxUserIDKey))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, sanitizeUser(u))
}

func (h *Handler) issueTokens(c *gin.Context, u user.User, body gin.H) {
	access, accessExp, err := h.deps.JWT.SignAccess(u)
	if err != nil {
		h.deps.Log.Error("sign access token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	refresh, refreshExp, err := h.deps.JWT.SignRefresh(u)
	if err != nil {
		h.deps.Log.Error("sign refresh token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	if err := h.deps.Refresh.Store(c.Request.Context(), u.ID, HashToken(refresh), refreshExp); err != nil {
		h.deps.Log.Error("store refresh token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}

	body["access_token"] = access
	body["access_exp"] = accessExp
	body["refresh_token"] = refresh
	body["refresh_exp"] = refreshExp
	c.JSON(http.StatusOK, body)
}

func sanitizeUser(u user.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"email":      u.Email,
		"role":       u.Role,
		"is_active":  u.IsActive,
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
}
