package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lvrcli/internal/config"
	"lvrcli/internal/dataprocessing"
	apierrors "lvrcli/internal/errors"
)

// ReportService serves the JSON reports generated by the processor. The web
// layer never recomputes statistics; it reads what the last pipeline run
// wrote under data/reports.
type ReportService struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewReportService creates a report service over the application paths.
func NewReportService(paths *config.Paths, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("ReportService initialized",
		slog.String("reports_dir", paths.ReportsDir))

	return &ReportService{
		paths:  paths,
		logger: logger.With(slog.String("component", "report_service")),
	}
}

// CancellationSummary returns the aggregate cancellation report.
func (s *ReportService) CancellationSummary(ctx context.Context) (map[string]interface{}, error) {
	return s.readReport(ctx, "cancellations", s.paths.CancellationSummaryJSON)
}

// Absorption returns the per-project absorption report.
func (s *ReportService) Absorption(ctx context.Context) (map[string]interface{}, error) {
	return s.readReport(ctx, "absorption", s.paths.AbsorptionJSON)
}

// Risk returns the cancellation risk model report.
func (s *ReportService) Risk(ctx context.Context) (map[string]interface{}, error) {
	return s.readReport(ctx, "risk", s.paths.RiskJSON)
}

// districtsPayload mirrors the district report file layout.
type districtsPayload struct {
	Metadata  map[string]interface{}          `json:"metadata"`
	Districts []dataprocessing.DistrictReport `json:"districts"`
}

// Districts returns the ranked district report, truncated to the top n
// entries when n is positive.
func (s *ReportService) Districts(ctx context.Context, top int) (map[string]interface{}, error) {
	data, err := s.readReportBytes(ctx, "districts", s.paths.DistrictsJSON)
	if err != nil {
		return nil, err
	}

	var payload districtsPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, apierrors.NewParsingError("district report is corrupted", err)
	}

	districts := dataprocessing.TopDistricts(payload.Districts, top)
	return map[string]interface{}{
		"metadata":  payload.Metadata,
		"districts": districts,
		"total":     len(payload.Districts),
	}, nil
}

// ReportFile describes one generated file under the reports directory.
type ReportFile struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// ListReports scans the reports directory for generated CSV and JSON files.
func (s *ReportService) ListReports(ctx context.Context) ([]ReportFile, error) {
	var reports []ReportFile

	err := filepath.Walk(s.paths.ReportsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Missing directory just means no reports yet.
			return nil
		}
		if info.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(info.Name()))
		if ext != ".csv" && ext != ".json" {
			return nil
		}

		relPath, err := filepath.Rel(s.paths.ReportsDir, path)
		if err != nil {
			return nil
		}
		reports = append(reports, ReportFile{
			Name:     info.Name(),
			Path:     strings.ReplaceAll(relPath, "\\", "/"),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, apierrors.NewStorageError("failed to scan reports directory", err)
	}

	s.logger.DebugContext(ctx, "reports listed", slog.Int("count", len(reports)))
	return reports, nil
}

func (s *ReportService) readReport(ctx context.Context, name, path string) (map[string]interface{}, error) {
	data, err := s.readReportBytes(ctx, name, path)
	if err != nil {
		return nil, err
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, apierrors.NewParsingError(name+" report is corrupted", err)
	}
	return payload, nil
}

func (s *ReportService) readReportBytes(ctx context.Context, name, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.WarnContext(ctx, "report not generated yet",
				slog.String("report", name),
				slog.String("path", path))
			return nil, apierrors.ReportNotFoundError(name, err)
		}
		return nil, apierrors.NewStorageError("failed to read "+name+" report", err)
	}
	return data, nil
}
