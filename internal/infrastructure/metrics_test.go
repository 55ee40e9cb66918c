package infrastructure

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentHandler(t *testing.T) {
	m := NewMetrics()

	handler := m.InstrumentHandler("/api/reports/cancellations",
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/cancellations?city=taipei", nil))

	got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(
		http.MethodGet, "/api/reports/cancellations", "404"))
	assert.Equal(t, float64(1), got)

	// In-flight gauge returns to zero after the request.
	assert.Equal(t, float64(0), testutil.ToFloat64(m.HTTPInFlight))
}

func TestPipelineCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordsProcessed.WithLabelValues("transactions").Add(120)
	m.RecordsProcessed.WithLabelValues("communities").Add(15)
	m.MalformedRows.Inc()
	m.ReportGenerations.WithLabelValues("districts").Inc()

	assert.Equal(t, float64(120), testutil.ToFloat64(m.RecordsProcessed.WithLabelValues("transactions")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.MalformedRows))
}

func TestMetricsHandlerServesRegistry(t *testing.T) {
	m := NewMetrics()
	m.RecordsProcessed.WithLabelValues("transactions").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lvr_records_processed_total")
}
