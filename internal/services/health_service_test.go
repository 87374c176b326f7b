package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sustainers/internal/config"
	"sustainers/pkg/contracts"
)

func TestHealthService_HealthCheck(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name       string
		paths      *config.Paths
		cache      *ResultCache
		wantStatus string
	}{
		{
			name:       "ready",
			paths:      &config.Paths{WorkingDir: dir, OutputDir: dir},
			cache:      NewResultCache(time.Minute, 5),
			wantStatus: "ok",
		},
		{
			name:       "missing output directory",
			paths:      &config.Paths{WorkingDir: dir, OutputDir: filepath.Join(dir, "absent")},
			cache:      NewResultCache(time.Minute, 5),
			wantStatus: "degraded",
		},
		{
			name:       "no cache",
			paths:      &config.Paths{WorkingDir: dir, OutputDir: dir},
			wantStatus: "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := NewHealthService(tt.paths, tt.cache, nil)
			status := hs.HealthCheck(context.Background())

			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Equal(t, contracts.Version, status.Version)
			assert.Contains(t, status.Services, "output")
			assert.Contains(t, status.Services, "downloads")
		})
	}
}

func TestHealthService_LivenessCheck(t *testing.T) {
	hs := NewHealthService(nil, nil, nil)
	status := hs.LivenessCheck(context.Background())

	assert.Equal(t, "alive", status.Status)
	assert.Contains(t, status.Runtime, "go_version")
	assert.Contains(t, status.Runtime, "goroutines")
}

func TestHealthService_Version(t *testing.T) {
	hs := NewHealthService(nil, nil, nil)
	info := hs.Version()

	assert.Equal(t, contracts.Version, info["version"])
	assert.Equal(t, contracts.APIVersion, info["api_version"])
	assert.Equal(t, contracts.GetFullVersionString(), info["version_string"])
}
