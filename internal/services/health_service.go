package services

import (
	"context"
	"runtime"
	"time"

	"log/slog"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	results   *ResultsService
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

// NewHealthService creates a new health service with injected dependencies
func NewHealthService(version, buildTime string, results *ResultsService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		results:   results,
		startTime: time.Now(),
		logger:    logger,
	}
}

// Check returns the current health status. The service is healthy as
// long as it can serve; a missing dataset is reported, not failed.
func (hs *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime_seconds": time.Since(hs.startTime).Seconds(),
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
			"os":             runtime.GOOS,
			"arch":           runtime.GOARCH,
		},
		Services: map[string]interface{}{},
	}

	if hs.results != nil {
		status.Services["snapshot_cache"] = hs.results.CacheStats()

		meta, err := hs.results.Meta(ctx)
		if err != nil {
			status.Services["dataset"] = map[string]interface{}{"loaded": false}
		} else {
			status.Services["dataset"] = map[string]interface{}{
				"loaded":   true,
				"id":       meta.ID,
				"rows":     meta.Rows,
				"subjects": len(meta.Subjects),
				"version":  meta.Version,
			}
		}
	}

	return status
}

// Version returns build identification for the running binary.
func (hs *HealthService) Version() map[string]string {
	return map[string]string{
		"version":    hs.version,
		"build_time": hs.buildTime,
	}
}
