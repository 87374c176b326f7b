package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sustainers/internal/config"
	"sustainers/internal/services"
	"sustainers/internal/shared/testutil"
)

func newHealthRouter(t *testing.T, paths *config.Paths) chi.Router {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	cache := services.NewResultCache(time.Minute, 10)
	h := NewHealthHandler(services.NewHealthService(paths, cache, logger), logger)

	r := chi.NewRouter()
	r.Get("/api/health", h.HealthCheck)
	r.Get("/api/health/live", h.LivenessCheck)
	r.Get("/api/version", h.Version)
	return r
}

func TestHealthHandler_HealthCheck(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name           string
		paths          *config.Paths
		expectedStatus int
		expectedHealth string
	}{
		{"ready", &config.Paths{OutputDir: dir}, http.StatusOK, "ok"},
		{"missing output dir", &config.Paths{OutputDir: filepath.Join(dir, "gone")}, http.StatusServiceUnavailable, "degraded"},
		{"no paths", nil, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newHealthRouter(t, tt.paths)

			w := serve(r, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			var status services.HealthStatus
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
			assert.Equal(t, tt.expectedHealth, status.Status)
			assert.Contains(t, status.Services, "output")
			assert.Contains(t, status.Services, "downloads")
		})
	}
}

func TestHealthHandler_LivenessAndVersion(t *testing.T) {
	r := newHealthRouter(t, &config.Paths{OutputDir: t.TempDir()})

	live := serve(r, httptest.NewRequest(http.MethodGet, "/api/health/live", nil))
	require.Equal(t, http.StatusOK, live.Code)
	assert.Contains(t, live.Body.String(), `"status":"alive"`)

	version := serve(r, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	require.Equal(t, http.StatusOK, version.Code)
	var info map[string]interface{}
	require.NoError(t, json.Unmarshal(version.Body.Bytes(), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "output_format")
	assert.Contains(t, info, "go_version")
}
