package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRouterRegistersPublicRoutes(t *testing.T) {
	limiter, err := newClientLimiter(1, 1, 8)
	require.NoError(t, err)
	router := newRouter(limiter)

	tests := []struct {
		path        string
		contentType string
	}{
		{"/healthz", "application/json"},
		{"/docs", "text/html; charset=utf-8"},
	}

	for _, tt := range tests {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, tt.path)
		assert.Equal(t, tt.contentType, rr.Header().Get("Content-Type"), tt.path)
	}
}

func TestNewRouterProtectsAPI(t *testing.T) {
	limiter, err := newClientLimiter(1, 1, 8)
	require.NoError(t, err)
	router := newRouter(limiter)

	for _, path := range []string{"/api/ingredients", "/api/ingredients/1", "/api/recipes", "/api/recipes/1"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
}

func TestNewRouterUnknownRoutes(t *testing.T) {
	limiter, err := newClientLimiter(1, 1, 8)
	require.NoError(t, err)
	router := newRouter(limiter)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPatch, "/api/recipes/1", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
