package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"lvrcli/internal/config"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	paths     *config.Paths
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Reports   map[string]bool        `json:"reports,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version, buildTime string, paths *config.Paths, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		paths:     paths,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck reports overall service health. The API stays healthy without
// reports; their presence is surfaced so operators can see whether the
// processor has run.
func (s *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   s.version,
		Runtime: map[string]interface{}{
			"uptime_seconds": time.Since(s.startTime).Seconds(),
			"go_version":     runtime.Version(),
			"os":             runtime.GOOS,
			"arch":           runtime.GOARCH,
			"goroutines":     runtime.NumGoroutine(),
		},
		Reports: map[string]bool{
			"cancellations": config.FileExists(s.paths.CancellationSummaryJSON),
			"absorption":    config.FileExists(s.paths.AbsorptionJSON),
			"risk":          config.FileExists(s.paths.RiskJSON),
			"districts":     config.FileExists(s.paths.DistrictsJSON),
		},
	}
}

// LivenessCheck is the minimal probe target.
func (s *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   s.version,
	}
}

// Version returns build information.
func (s *HealthService) Version() map[string]string {
	return map[string]string{
		"version":    s.version,
		"build_time": s.buildTime,
	}
}
