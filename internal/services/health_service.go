package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"sustainers/internal/config"
	"sustainers/pkg/contracts"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	paths     *config.Paths
	cache     *ResultCache
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(paths *config.Paths, cache *ResultCache, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	return &HealthService{
		version:   contracts.Version,
		paths:     paths,
		cache:     cache,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns readiness of the output directory and download cache
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]interface{}{
			"output":    hs.checkOutputHealth(),
			"downloads": hs.checkDownloadsHealth(),
		},
	}

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "degraded"
			break
		}
	}

	hs.logger.DebugContext(ctx, "health check completed", slog.String("status", status.Status))
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"version":        info.Version,
		"output_format":  info.OutputFormat,
		"api_version":    info.APIVersion,
		"build_time":     info.BuildTime,
		"git_commit":     info.GitCommit,
		"go_version":     info.GoVersion,
		"os":             info.OS,
		"arch":           info.Architecture,
		"uptime":         time.Since(hs.startTime).Seconds(),
		"start_time":     hs.startTime.Format(time.RFC3339),
		"is_prerelease":  contracts.IsPrerelease(),
		"version_string": contracts.GetFullVersionString(),
	}
}

// checkOutputHealth checks that the output directory exists
func (hs *HealthService) checkOutputHealth() ServiceHealth {
	if hs.paths == nil {
		return ServiceHealth{Status: "not_ready", Message: "paths not configured"}
	}

	info, err := os.Stat(hs.paths.OutputDir)
	if err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Output directory not accessible: %v", err),
		}
	}
	if !info.IsDir() {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Output path is not a directory: %s", hs.paths.OutputDir),
		}
	}

	return ServiceHealth{Status: "ready", Message: hs.paths.OutputDir}
}

// checkDownloadsHealth reports download cache occupancy
func (hs *HealthService) checkDownloadsHealth() ServiceHealth {
	if hs.cache == nil {
		return ServiceHealth{Status: "not_ready", Message: "download cache not initialized"}
	}
	stats := hs.cache.Stats()
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%v of %v downloads stored", stats["entries"], stats["max_size"]),
	}
}
