package exporter

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lvrcli/internal/cancellation"
	"lvrcli/internal/dataprocessing"
	"lvrcli/internal/infrastructure"
	"lvrcli/pkg/contracts/domain"
)

func testReportWriter(t *testing.T) *ReportWriter {
	t.Helper()
	return NewReportWriter(testPaths(t), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func sampleResults() *dataprocessing.Results {
	transactions := []domain.TransactionRecord{
		{ProjectCode: "P1", City: "台北市", District: "大安區", YearSeason: "112Y1S", TotalPrice: 3200},
		{ProjectCode: "P1", City: "台北市", District: "大安區", YearSeason: "112Y2S", TotalPrice: 3300,
			CancellationText: "全部解約1120715"},
		{ProjectCode: "P1", City: "台北市", District: "大安區", YearSeason: "112Y3S", TotalPrice: 3100,
			CancellationText: "全部解約ABC"},
	}
	events := make([]cancellation.Event, len(transactions))
	for i, tr := range transactions {
		events[i] = cancellation.Parse(tr.CancellationText)
	}

	properties, dedupStats := dataprocessing.Deduplicate(transactions)
	return &dataprocessing.Results{
		Transactions:        transactions,
		Events:              events,
		CancellationSummary: cancellation.Aggregate(events),
		Properties:          properties,
		DedupStats:          dedupStats,
		Risk:                dataprocessing.AssessRisk(transactions),
		Districts:           dataprocessing.AggregateDistricts(transactions),
		Absorption: []dataprocessing.AbsorptionRate{
			{ProjectCode: "P1", ProjectName: "日光苑", TargetSeason: "113Y1S",
				TotalUnits: 40, Valid: 1, Cancelled: 2, GrossRate: 2.5, NetRate: -2.5,
				Status: dataprocessing.AbsorptionOK},
		},
		Dynamics: []dataprocessing.ProjectDynamics{
			{ProjectCode: "P1", ProjectName: "日光苑", TargetSeason: "113Y1S",
				TotalUnits: 40, SalesSeasons: 5, QuarterlySpeed: 0,
				AccelerationStatus: dataprocessing.AccelStagnant,
				EstimatedSeasons:   999, CompletionStatus: dataprocessing.CompletionUnpredictable,
				EfficiencyGrade: dataprocessing.GradePoor,
				Status:          dataprocessing.AbsorptionOK},
		},
		CommunityReports: []dataprocessing.CommunityReport{
			{ProjectCode: "P1", ProjectName: "日光苑", City: "台北市", District: "大安區",
				TotalUnits: 40, TargetSeason: "113Y1S", SalesSeasons: 5,
				CumulativeValid: 1, CumulativeCancellations: 2,
				CumulativeCancellationRate: 66.67, GrossRate: 2.5, NetRate: -2.5,
				EfficiencyGrade: dataprocessing.GradePoor,
				Status:          dataprocessing.AbsorptionOK},
		},
	}
}

func TestWriteAll(t *testing.T) {
	w := testReportWriter(t)
	require.NoError(t, w.WriteAll(sampleResults()))

	for _, path := range []string{
		w.paths.CancellationSummaryJSON,
		w.paths.CancellationSummaryCSV,
		w.paths.CancellationDetailCSV,
		w.paths.AbsorptionJSON,
		w.paths.AbsorptionCSV,
		w.paths.DynamicsJSON,
		w.paths.DynamicsCSV,
		w.paths.CommunityReportJSON,
		w.paths.CommunityReportCSV,
		w.paths.RiskJSON,
		w.paths.RiskCSV,
		w.paths.DistrictsJSON,
		w.paths.DistrictsCSV,
		w.paths.DedupStatsCSV,
		w.paths.ValidTransactionsCSV,
	} {
		_, err := os.Stat(path)
		assert.NoError(t, err, path)
	}
}

func TestWriteCancellationSummary(t *testing.T) {
	w := testReportWriter(t)
	results := sampleResults()
	require.NoError(t, w.WriteCancellationSummary(results.CancellationSummary))

	data, err := os.ReadFile(w.paths.CancellationSummaryJSON)
	require.NoError(t, err)

	var payload struct {
		Metadata struct {
			GeneratedAt string `json:"generated_at"`
			Format      string `json:"format"`
		} `json:"metadata"`
		Summary cancellation.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(data, &payload))

	assert.Equal(t, "cancellation_summary_v1", payload.Metadata.Format)
	_, err = time.Parse(time.RFC3339, payload.Metadata.GeneratedAt)
	assert.NoError(t, err)

	assert.Equal(t, 3, payload.Summary.Total)
	assert.Equal(t, 2, payload.Summary.Cancelled)
	assert.Equal(t, 1, payload.Summary.ParsedDates)

	csvContent, err := os.ReadFile(w.paths.CancellationSummaryCSV)
	require.NoError(t, err)
	assert.Contains(t, string(csvContent), "cancelled,2\n")
	// The unparsed 3-rune token lands in the histogram section.
	assert.Contains(t, string(csvContent), "unparsed_token_length_3,1\n")
}

func TestWriteCancellationDetailOnlyCancelledRows(t *testing.T) {
	w := testReportWriter(t)
	require.NoError(t, w.WriteCancellationDetail(sampleResults()))

	content, err := os.ReadFile(w.paths.CancellationDetailCSV)
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "全部解約1120715")
	assert.Contains(t, text, "2023-07-15")
	assert.Contains(t, text, "全部解約ABC")
	// The normal transaction does not appear.
	assert.NotContains(t, text, "112Y1S")
}

func TestWriteAbsorptionCSVGrades(t *testing.T) {
	w := testReportWriter(t)
	require.NoError(t, w.WriteAbsorption(sampleResults().Absorption))

	content, err := os.ReadFile(w.paths.AbsorptionCSV)
	require.NoError(t, err)
	assert.Contains(t, string(content), "P1,日光苑")
	assert.Contains(t, string(content), "2.50,-2.50,low,ok")
}

func TestWriteAllCountsGeneratedReports(t *testing.T) {
	metrics := infrastructure.NewMetrics()
	w := NewReportWriter(testPaths(t), metrics, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, w.WriteAll(sampleResults()))

	for _, name := range []string{
		"cancellation_summary", "cancellation_detail", "absorption",
		"dynamics", "community_report", "risk", "districts",
		"dedup_stats", "valid_transactions",
	} {
		count := testutil.ToFloat64(metrics.ReportGenerations.WithLabelValues(name))
		assert.Equal(t, 1.0, count, name)
	}
}

func TestWriteDynamics(t *testing.T) {
	w := testReportWriter(t)
	require.NoError(t, w.WriteDynamics(sampleResults().Dynamics))

	content, err := os.ReadFile(w.paths.DynamicsCSV)
	require.NoError(t, err)
	assert.Contains(t, string(content), "P1,日光苑")
	assert.Contains(t, string(content), "stagnant")
	assert.Contains(t, string(content), "unpredictable")

	data, err := os.ReadFile(w.paths.DynamicsJSON)
	require.NoError(t, err)
	var payload struct {
		Metadata struct {
			Format string `json:"format"`
		} `json:"metadata"`
		Dynamics []dataprocessing.ProjectDynamics `json:"dynamics"`
	}
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, "absorption_dynamics_v1", payload.Metadata.Format)
	require.Len(t, payload.Dynamics, 1)
	assert.Equal(t, 999, payload.Dynamics[0].EstimatedSeasons)
}

func TestWriteCommunityReports(t *testing.T) {
	w := testReportWriter(t)
	require.NoError(t, w.WriteCommunityReports(sampleResults().CommunityReports))

	content, err := os.ReadFile(w.paths.CommunityReportCSV)
	require.NoError(t, err)
	assert.Contains(t, string(content), "備查編號,社區名稱")
	assert.Contains(t, string(content), "P1,日光苑,台北市,大安區")
	assert.Contains(t, string(content), "66.67")
}

func TestWriteAllCapsDistrictRanking(t *testing.T) {
	w := testReportWriter(t)
	results := sampleResults()
	results.Districts = []dataprocessing.DistrictReport{
		{City: "台北市", District: "大安區", Transactions: 30},
		{City: "新北市", District: "板橋區", Transactions: 20},
		{City: "台中市", District: "西屯區", Transactions: 10},
	}
	results.TopDistricts = 2

	require.NoError(t, w.WriteAll(results))

	content, err := os.ReadFile(w.paths.DistrictsCSV)
	require.NoError(t, err)
	assert.Contains(t, string(content), "大安區")
	assert.Contains(t, string(content), "板橋區")
	assert.NotContains(t, string(content), "西屯區")
}

func TestWriteValidTransactions(t *testing.T) {
	w := testReportWriter(t)
	results := sampleResults()
	require.NoError(t, w.WriteValidTransactions(results.Properties))

	content, err := os.ReadFile(w.paths.ValidTransactionsCSV)
	require.NoError(t, err)
	assert.Contains(t, string(content), "property_uid")
	assert.Contains(t, string(content), "true,3")
}
