package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(m *memStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(NewResolver(m, nil, Options{}), nil)
	r := gin.New()
	r.GET("/categories/:id/specs", h.CategorySpecs)
	r.GET("/categories/:id/path", h.Path)
	r.GET("/categories/:id/breadcrumb", h.Breadcrumb)
	return r
}

func doGet(t *testing.T, r http.Handler, url string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	r.ServeHTTP(w, req)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestHandlerCategorySpecs(t *testing.T) {
	m := threeLevels()
	m.assign("root", "A")
	m.assign("leaf", "C")

	w, body := doGet(t, setupRouter(m), "/categories/leaf/specs")
	assert.Equal(t, http.StatusOK, w.Code)

	var items []struct {
		ID    string   `json:"id"`
		Title string   `json:"title"`
		Keys  []string `json:"keys"`
	}
	require.NoError(t, json.Unmarshal(body["items"], &items))
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].ID)
	assert.Equal(t, []string{"Size", "Resolution"}, items[1].Keys)

	var raw []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body["items"], &raw))
	assert.NotContains(t, raw[0], "created_at")
	assert.NotContains(t, raw[0], "updated_at")
}

func TestHandlerCategorySpecsBlankID(t *testing.T) {
	w, body := doGet(t, setupRouter(newMemStore()), "/categories/%20/specs")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `"Invalid Category ID"`, string(body["error"]))
}

func TestHandlerCategorySpecsInternalErrorIsHidden(t *testing.T) {
	m := threeLevels()
	m.failWith = errBoom

	w, body := doGet(t, setupRouter(m), "/categories/leaf/specs")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `"failed to resolve category specs"`, string(body["error"]))
}

func TestHandlerPath(t *testing.T) {
	r := setupRouter(threeLevels())

	w, body := doGet(t, r, "/categories/leaf/path?parent=mid")
	assert.Equal(t, http.StatusOK, w.Code)
	var items []PathEntry
	require.NoError(t, json.Unmarshal(body["items"], &items))
	assert.Equal(t, []string{"root", "mid", "leaf"}, pathIDs(items))

	w, body = doGet(t, r, "/categories/root/path")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", string(body["items"]))
}

func TestHandlerBreadcrumbNotFound(t *testing.T) {
	w, body := doGet(t, setupRouter(threeLevels()), "/categories/ghost/breadcrumb")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `"Not Found!"`, string(body["error"]))
}
