package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lvrcli/internal/config"
	"lvrcli/internal/dataprocessing"
	apierrors "lvrcli/internal/errors"
)

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	base := t.TempDir()
	data := filepath.Join(base, "data")
	reports := filepath.Join(data, "reports")
	require.NoError(t, os.MkdirAll(reports, 0755))
	return &config.Paths{
		ExecutableDir: base,
		DataDir:       data,
		ReportsDir:    reports,

		CancellationSummaryJSON: filepath.Join(reports, "cancellation_summary.json"),
		AbsorptionJSON:          filepath.Join(reports, "absorption_rates.json"),
		RiskJSON:                filepath.Join(reports, "risk_scores.json"),
		DistrictsJSON:           filepath.Join(reports, "district_stats.json"),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeReport(t *testing.T, path string, payload interface{}) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func TestCancellationSummary(t *testing.T) {
	paths := testPaths(t)
	s := NewReportService(paths, discardLogger())

	writeReport(t, paths.CancellationSummaryJSON, map[string]interface{}{
		"metadata": map[string]string{"format": "cancellation_summary_v1"},
		"summary":  map[string]int{"total": 10, "cancelled": 2},
	})

	payload, err := s.CancellationSummary(context.Background())
	require.NoError(t, err)
	assert.Contains(t, payload, "summary")
}

func TestReportNotGenerated(t *testing.T) {
	s := NewReportService(testPaths(t), discardLogger())

	_, err := s.CancellationSummary(context.Background())
	require.Error(t, err)

	var apiErr *apierrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, "REPORT_NOT_FOUND", apiErr.ErrorCode)
}

func TestReportCorrupted(t *testing.T) {
	paths := testPaths(t)
	s := NewReportService(paths, discardLogger())
	require.NoError(t, os.WriteFile(paths.AbsorptionJSON, []byte("{not json"), 0644))

	_, err := s.Absorption(context.Background())
	require.Error(t, err)

	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apierrors.ErrTypeParsing, appErr.Type)
}

func TestDistrictsTopN(t *testing.T) {
	paths := testPaths(t)
	s := NewReportService(paths, discardLogger())

	writeReport(t, paths.DistrictsJSON, map[string]interface{}{
		"metadata": map[string]string{"format": "district_stats_v1"},
		"districts": []dataprocessing.DistrictReport{
			{City: "台北市", District: "大安區", Transactions: 30},
			{City: "台北市", District: "信義區", Transactions: 20},
			{City: "新北市", District: "板橋區", Transactions: 10},
		},
	})

	payload, err := s.Districts(context.Background(), 2)
	require.NoError(t, err)

	districts, ok := payload["districts"].([]dataprocessing.DistrictReport)
	require.True(t, ok)
	assert.Len(t, districts, 2)
	assert.Equal(t, 3, payload["total"])
}

func TestListReports(t *testing.T) {
	paths := testPaths(t)
	s := NewReportService(paths, discardLogger())

	writeReport(t, paths.DistrictsJSON, map[string]string{"a": "b"})
	require.NoError(t, os.WriteFile(filepath.Join(paths.ReportsDir, "x.csv"), []byte("a,b\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(paths.ReportsDir, "notes.txt"), []byte("ignored"), 0644))

	reports, err := s.ListReports(context.Background())
	require.NoError(t, err)
	assert.Len(t, reports, 2)
}

func TestHealthCheck(t *testing.T) {
	paths := testPaths(t)
	writeReport(t, paths.RiskJSON, map[string]string{"ok": "yes"})

	s := NewHealthService("1.2.3", "2025-08-01", paths, discardLogger())
	status := s.HealthCheck(context.Background())

	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.True(t, status.Reports["risk"])
	assert.False(t, status.Reports["absorption"])

	live := s.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Equal(t, map[string]string{"version": "1.2.3", "build_time": "2025-08-01"}, s.Version())
}
