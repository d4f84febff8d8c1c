package comic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T, pages int) chi.Router {
	t.Helper()
	r := chi.NewRouter()
	RegisterRoutes(r, NewLocalFetcher(testCatalog(pages)), nil)
	return r
}

func TestGetPage(t *testing.T) {
	r := setupRouter(t, 16)

	req := httptest.NewRequest(http.MethodGet, "/api/comic/16", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(16), body["pageNumber"])
	assert.Equal(t, float64(16), body["totalPages"])
	assert.Equal(t, float64(15), body["prevPage"])
	assert.Contains(t, body, "nextPage")
	assert.Nil(t, body["nextPage"])

	page := body["page"].(map[string]interface{})
	assert.Equal(t, "Page 16", page["title"])
}

func TestGetPageNotFound(t *testing.T) {
	r := setupRouter(t, 16)

	for _, path := range []string{"/api/comic/0", "/api/comic/17", "/api/comic/-3", "/api/comic/abc"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code, path)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), path)
		assert.Equal(t, false, body["success"], path)
		assert.Equal(t, "Page not found", body["error"], path)
		assert.NotContains(t, body, "page", path)
	}
}

func TestGetIndex(t *testing.T) {
	r := setupRouter(t, 2)

	req := httptest.NewRequest(http.MethodGet, "/api/comic/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var idx Index
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &idx))
	assert.Equal(t, 2, idx.TotalPages)
	assert.Equal(t, []string{"Page 1", "Page 2"}, idx.Titles)
}

type brokenFetcher struct{}

func (brokenFetcher) Fetch(context.Context, int) (*Result, error) {
	return nil, &TransportError{Err: errors.New("connection reset")}
}

func TestGetPageFailureWithoutLogger(t *testing.T) {
	r := chi.NewRouter()
	RegisterRoutes(r, brokenFetcher{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/comic/1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])
}
