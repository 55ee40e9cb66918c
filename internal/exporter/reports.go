package exporter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"lvrcli/internal/cancellation"
	"lvrcli/internal/config"
	"lvrcli/internal/dataprocessing"
	apperrors "lvrcli/internal/errors"
	"lvrcli/internal/infrastructure"
)

// ReportWriter generates the analysis report files consumed by the web API
// and by spreadsheet users. Every report is written in both JSON (for the
// API) and CSV (for Excel) where that makes sense.
type ReportWriter struct {
	paths     *config.Paths
	csvWriter *CSVWriter
	metrics   *infrastructure.Metrics
	logger    *slog.Logger
}

// NewReportWriter creates a report writer rooted at the application paths.
// metrics may be nil for one-off runs without a registry.
func NewReportWriter(paths *config.Paths, metrics *infrastructure.Metrics, logger *slog.Logger) *ReportWriter {
	return &ReportWriter{
		paths:     paths,
		csvWriter: NewCSVWriter(paths),
		metrics:   metrics,
		logger:    logger.With(slog.String("component", "report_writer")),
	}
}

// reportGenerated records one completed report in the metrics registry.
func (r *ReportWriter) reportGenerated(name string) {
	if r.metrics != nil {
		r.metrics.ReportGenerations.WithLabelValues(name).Inc()
	}
}

// WriteAll generates every report for one pipeline run.
func (r *ReportWriter) WriteAll(results *dataprocessing.Results) error {
	if err := r.WriteCancellationSummary(results.CancellationSummary); err != nil {
		return err
	}
	if err := r.WriteCancellationDetail(results); err != nil {
		return err
	}
	if err := r.WriteAbsorption(results.Absorption); err != nil {
		return err
	}
	if err := r.WriteDynamics(results.Dynamics); err != nil {
		return err
	}
	if err := r.WriteCommunityReports(results.CommunityReports); err != nil {
		return err
	}
	if err := r.WriteRisk(results.Risk); err != nil {
		return err
	}
	if err := r.WriteDistricts(dataprocessing.TopDistricts(results.Districts, results.TopDistricts)); err != nil {
		return err
	}
	if err := r.WriteDedupStats(results.DedupStats); err != nil {
		return err
	}
	return r.WriteValidTransactions(results.Properties)
}

// WriteCancellationSummary writes the aggregate cancellation statistics.
func (r *ReportWriter) WriteCancellationSummary(summary cancellation.Summary) error {
	payload := map[string]interface{}{
		"metadata": map[string]interface{}{
			"generated_at": time.Now().Format(time.RFC3339),
			"format":       "cancellation_summary_v1",
		},
		"summary": summary,
	}
	if err := r.writeJSON(r.paths.CancellationSummaryJSON, payload); err != nil {
		return err
	}

	headers := []string{"metric", "value"}
	records := [][]string{
		{"total", strconv.Itoa(summary.Total)},
		{"cancelled", strconv.Itoa(summary.Cancelled)},
		{"normal", strconv.Itoa(summary.Normal)},
		{"cancellation_rate", formatFloat(summary.CancellationRate * 100)},
		{"parsed_dates", strconv.Itoa(summary.ParsedDates)},
		{"multiple_cancellations", strconv.Itoa(summary.MultipleCancellations)},
	}
	for _, length := range sortedIntKeys(summary.TokenLengths) {
		records = append(records, []string{
			fmt.Sprintf("unparsed_token_length_%d", length),
			strconv.Itoa(summary.TokenLengths[length]),
		})
	}
	if err := r.csvWriter.WriteSimpleCSV(r.paths.CancellationSummaryCSV, headers, records); err != nil {
		return err
	}
	r.reportGenerated("cancellation_summary")
	return nil
}

// WriteCancellationDetail streams one CSV row per cancelled transaction,
// pairing the raw cell with what the parser extracted from it.
func (r *ReportWriter) WriteCancellationDetail(results *dataprocessing.Results) error {
	headers := []string{
		"備查編號", "縣市", "行政區", "交易年季", "解約情形",
		"cancellation_count", "cancellation_date", "unparsed_token_length",
	}
	stream, err := r.csvWriter.CreateStreamWriter(r.paths.CancellationDetailCSV, headers)
	if err != nil {
		return apperrors.NewStorageError("failed to create cancellation detail report", err)
	}

	for i, event := range results.Events {
		if !event.Cancelled {
			continue
		}
		t := results.Transactions[i]

		date := ""
		tokenLength := ""
		if event.Date != nil {
			date = event.Date.Format("2006-01-02")
		} else {
			tokenLength = strconv.Itoa(event.TokenLength)
		}

		row := []string{
			t.ProjectCode, t.City, t.District, t.YearSeason, event.Raw,
			strconv.Itoa(event.Count), date, tokenLength,
		}
		if err := stream.WriteRecord(row); err != nil {
			stream.Close()
			return apperrors.NewStorageError("failed to write cancellation detail row", err)
		}
	}
	if err := stream.Close(); err != nil {
		return err
	}
	r.reportGenerated("cancellation_detail")
	return nil
}

// WriteAbsorption writes the per-project absorption rates.
func (r *ReportWriter) WriteAbsorption(rates []dataprocessing.AbsorptionRate) error {
	payload := map[string]interface{}{
		"metadata": map[string]interface{}{
			"generated_at": time.Now().Format(time.RFC3339),
			"format":       "absorption_rates_v1",
		},
		"rates": rates,
	}
	if err := r.writeJSON(r.paths.AbsorptionJSON, payload); err != nil {
		return err
	}

	headers := []string{
		"project_code", "project_name", "city", "district", "target_season",
		"total_units", "cumulative_valid", "cumulative_cancelled",
		"gross_rate", "net_rate", "grade", "status",
	}
	records := make([][]string, 0, len(rates))
	for _, rate := range rates {
		records = append(records, []string{
			rate.ProjectCode, rate.ProjectName, rate.City, rate.District, rate.TargetSeason,
			strconv.Itoa(rate.TotalUnits), strconv.Itoa(rate.Valid), strconv.Itoa(rate.Cancelled),
			formatFloat(rate.GrossRate), formatFloat(rate.NetRate),
			dataprocessing.AbsorptionGrade(rate.GrossRate), rate.Status,
		})
	}
	if err := r.csvWriter.WriteSimpleCSV(r.paths.AbsorptionCSV, headers, records); err != nil {
		return err
	}
	r.reportGenerated("absorption")
	return nil
}

// WriteDynamics writes the per-project absorption momentum report: quarterly
// speed, acceleration, projected sell-out and the efficiency grade.
func (r *ReportWriter) WriteDynamics(dynamics []dataprocessing.ProjectDynamics) error {
	payload := map[string]interface{}{
		"metadata": map[string]interface{}{
			"generated_at": time.Now().Format(time.RFC3339),
			"format":       "absorption_dynamics_v1",
		},
		"dynamics": dynamics,
	}
	if err := r.writeJSON(r.paths.DynamicsJSON, payload); err != nil {
		return err
	}

	headers := []string{
		"project_code", "project_name", "city", "district", "target_season",
		"sales_seasons", "quarterly_speed", "acceleration", "acceleration_status",
		"estimated_completion_seasons", "completion_status", "projected_sellout_season",
		"efficiency_score", "efficiency_grade", "status",
	}
	records := make([][]string, 0, len(dynamics))
	for _, d := range dynamics {
		records = append(records, []string{
			d.ProjectCode, d.ProjectName, d.City, d.District, d.TargetSeason,
			strconv.Itoa(d.SalesSeasons), formatFloat(d.QuarterlySpeed),
			formatFloat(d.Acceleration), d.AccelerationStatus,
			strconv.Itoa(d.EstimatedSeasons), d.CompletionStatus, d.ProjectedSellout,
			formatFloat(d.EfficiencyScore), d.EfficiencyGrade, d.Status,
		})
	}
	if err := r.csvWriter.WriteSimpleCSV(r.paths.DynamicsCSV, headers, records); err != nil {
		return err
	}
	r.reportGenerated("dynamics")
	return nil
}

// WriteCommunityReports writes the integrated community-level report. The
// CSV uses the Chinese column names analysts expect in the spreadsheet.
func (r *ReportWriter) WriteCommunityReports(reports []dataprocessing.CommunityReport) error {
	payload := map[string]interface{}{
		"metadata": map[string]interface{}{
			"generated_at": time.Now().Format(time.RFC3339),
			"format":       "community_report_v1",
		},
		"communities": reports,
	}
	if err := r.writeJSON(r.paths.CommunityReportJSON, payload); err != nil {
		return err
	}

	headers := []string{
		"備查編號", "社區名稱", "縣市", "行政區", "坐落街道", "總戶數", "銷售起始年季",
		"年季", "銷售季數", "累積成交筆數", "該季成交筆數",
		"累積解約筆數", "該季解約筆數", "季度解約率(%)", "累積解約率(%)",
		"最近解約年季", "連續無解約季數",
		"毛去化率(%)", "淨去化率(%)",
		"季度去化速度(戶/季)", "去化加速度(%)", "預估完售季數", "去化效率評級",
		"平均交易單價", "平均交易總價", "status",
	}
	records := make([][]string, 0, len(reports))
	for _, c := range reports {
		records = append(records, []string{
			c.ProjectCode, c.ProjectName, c.City, c.District, c.Street,
			strconv.Itoa(c.TotalUnits), c.SalesStartSeason,
			c.TargetSeason, strconv.Itoa(c.SalesSeasons),
			strconv.Itoa(c.CumulativeValid), strconv.Itoa(c.SeasonValid),
			strconv.Itoa(c.CumulativeCancellations), strconv.Itoa(c.SeasonCancellations),
			formatFloat(c.QuarterlyCancellationRate), formatFloat(c.CumulativeCancellationRate),
			c.LatestCancellationSeason, strconv.Itoa(c.NoCancellationStreak),
			formatFloat(c.GrossRate), formatFloat(c.NetRate),
			formatFloat(c.QuarterlySpeed), formatFloat(c.Acceleration),
			strconv.Itoa(c.EstimatedSeasons), c.EfficiencyGrade,
			formatFloat(c.AvgUnitPrice), formatFloat(c.AvgTotalPrice), c.Status,
		})
	}
	if err := r.csvWriter.WriteSimpleCSV(r.paths.CommunityReportCSV, headers, records); err != nil {
		return err
	}
	r.reportGenerated("community_report")
	return nil
}

// WriteRisk writes the risk model report with per-level observed outcomes.
func (r *ReportWriter) WriteRisk(report dataprocessing.RiskReport) error {
	payload := map[string]interface{}{
		"metadata": map[string]interface{}{
			"generated_at": time.Now().Format(time.RFC3339),
			"format":       "risk_scores_v1",
		},
		"report":    report,
		"monotonic": report.Monotonic(),
	}
	if err := r.writeJSON(r.paths.RiskJSON, payload); err != nil {
		return err
	}

	headers := []string{"level", "transactions", "cancelled", "cancellation_rate", "mean_score"}
	records := make([][]string, 0, len(report.Levels))
	for _, level := range report.Levels {
		records = append(records, []string{
			string(level.Level),
			strconv.Itoa(level.Transactions),
			strconv.Itoa(level.Cancelled),
			formatFloat(level.CancellationRate),
			formatFloat(level.MeanScore),
		})
	}
	if err := r.csvWriter.WriteSimpleCSV(r.paths.RiskCSV, headers, records); err != nil {
		return err
	}
	r.reportGenerated("risk")
	return nil
}

// WriteDistricts writes the district ranking report.
func (r *ReportWriter) WriteDistricts(districts []dataprocessing.DistrictReport) error {
	payload := map[string]interface{}{
		"metadata": map[string]interface{}{
			"generated_at": time.Now().Format(time.RFC3339),
			"format":       "district_stats_v1",
		},
		"districts": districts,
	}
	if err := r.writeJSON(r.paths.DistrictsJSON, payload); err != nil {
		return err
	}

	headers := []string{
		"city", "district", "transactions", "cancellations",
		"cancellation_rate", "mean_price", "median_price", "projects",
	}
	records := make([][]string, 0, len(districts))
	for _, d := range districts {
		records = append(records, []string{
			d.City, d.District,
			strconv.Itoa(d.Transactions), strconv.Itoa(d.Cancellations),
			formatFloat(d.CancellationRate), formatFloat(d.MeanPrice), formatFloat(d.MedianPrice),
			strconv.Itoa(d.Projects),
		})
	}
	if err := r.csvWriter.WriteSimpleCSV(r.paths.DistrictsCSV, headers, records); err != nil {
		return err
	}
	r.reportGenerated("districts")
	return nil
}

// WriteDedupStats writes the duplicate-resolution statistics.
func (r *ReportWriter) WriteDedupStats(stats dataprocessing.DedupStats) error {
	headers := []string{"metric", "value"}
	records := [][]string{
		{"total_records", strconv.Itoa(stats.TotalRecords)},
		{"unique_properties", strconv.Itoa(stats.UniqueProperties)},
		{"duplicate_properties", strconv.Itoa(stats.DuplicateProperties)},
		{"valid_properties", strconv.Itoa(stats.ValidProperties)},
		{"all_cancelled_properties", strconv.Itoa(stats.AllCancelledProperties)},
	}
	for _, repeats := range sortedIntKeys(stats.RepeatDistribution) {
		records = append(records, []string{
			fmt.Sprintf("properties_with_%d_repeats", repeats),
			strconv.Itoa(stats.RepeatDistribution[repeats]),
		})
	}
	if err := r.csvWriter.WriteSimpleCSV(r.paths.DedupStatsCSV, headers, records); err != nil {
		return err
	}
	r.reportGenerated("dedup_stats")
	return nil
}

// WriteValidTransactions streams the deduplicated dataset used by downstream
// analysis into data/processed.
func (r *ReportWriter) WriteValidTransactions(properties []dataprocessing.PropertyRecord) error {
	headers := []string{
		"property_uid", "備查編號", "縣市", "行政區", "坐落街道", "樓層",
		"交易日期", "交易年季", "交易總價", "建物單價", "is_valid", "registrations",
	}
	stream, err := r.csvWriter.CreateStreamWriter(r.paths.ValidTransactionsCSV, headers)
	if err != nil {
		return apperrors.NewStorageError("failed to create valid transactions export", err)
	}

	for _, p := range properties {
		t := p.Chosen
		date := ""
		if !t.Date.IsZero() {
			date = t.Date.Format("2006-01-02")
		}
		row := []string{
			p.UID, t.ProjectCode, t.City, t.District, t.Street, t.Floor,
			date, t.YearSeason,
			formatFloat(t.TotalPrice), formatFloat(t.UnitPrice),
			formatBool(p.Valid), strconv.Itoa(p.Total),
		}
		if err := stream.WriteRecord(row); err != nil {
			stream.Close()
			return apperrors.NewStorageError("failed to write valid transaction row", err)
		}
	}
	if err := stream.Close(); err != nil {
		return err
	}
	r.reportGenerated("valid_transactions")
	return nil
}

// writeJSON marshals a payload to an indented JSON file, creating parent
// directories as needed.
func (r *ReportWriter) writeJSON(path string, payload interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create report directory", err)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return apperrors.NewStorageError("failed to marshal report", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to write %s", filepath.Base(path)), err)
	}

	r.logger.Info("report written",
		slog.String("path", path),
		slog.Int("bytes", len(data)))
	return nil
}
