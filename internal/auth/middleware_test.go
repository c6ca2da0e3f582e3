package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminRouter(m *JWTManager, allowlist []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/admin", AuthMiddleware(m), RequireAdmin(allowlist))
	g.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": c.GetInt64(CtxUserIDKey)})
	})
	return r
}

func call(r http.Handler, token string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAdminGuard(t *testing.T) {
	m := testJWT()
	r := adminRouter(m, []string{"Owner@Shop.test"})

	admin, _, err := m.SignAccess(shopper(1, "staff@shop.test", RoleAdmin))
	require.NoError(t, err)
	owner, _, err := m.SignAccess(shopper(2, "owner@shop.test", RoleUser))
	require.NoError(t, err)
	customer, _, err := m.SignAccess(shopper(3, "buyer@shop.test", RoleUser))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, call(r, admin))
	assert.Equal(t, http.StatusOK, call(r, owner))
	assert.Equal(t, http.StatusForbidden, call(r, customer))
	assert.Equal(t, http.StatusUnauthorized, call(r, ""))
	assert.Equal(t, http.StatusUnauthorized, call(r, "garbage"))
}
