package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lvrcli/internal/config"
	apierrors "lvrcli/internal/errors"
	"lvrcli/internal/infrastructure"
	custommw "lvrcli/internal/middleware"
	"lvrcli/internal/services"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	paths := testPaths(t)
	logger := discardLogger()
	errorHandler := apierrors.NewErrorHandler(logger, false)

	return NewRouter(RouterDeps{
		Config:       config.Default(),
		Logger:       logger,
		Metrics:      infrastructure.NewMetrics(),
		ErrorHandler: errorHandler,
		Reports:      NewReportHandler(services.NewReportService(paths, logger), logger, errorHandler),
		Health:       NewHealthHandler(services.NewHealthService("1.0.0-test", "unknown", paths, logger), logger),
	})
}

func TestRouterHealth(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status"`)
}

func TestRouterVersion(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1.0.0-test")
}

func TestRouterMetrics(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRouterNotFound(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestRouterWithTracingMiddleware(t *testing.T) {
	logger := discardLogger()
	providers, err := infrastructure.InitializeOTel(&infrastructure.OTelConfig{
		ServiceName:    infrastructure.ServiceName,
		ServiceVersion: infrastructure.ServiceVersion,
		Environment:    "test",
		TraceExporter:  "none",
	}, logger)
	require.NoError(t, err)

	paths := testPaths(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)
	router := NewRouter(RouterDeps{
		Config:       config.Default(),
		Logger:       logger,
		Metrics:      infrastructure.NewMetrics(),
		ErrorHandler: errorHandler,
		Reports:      NewReportHandler(services.NewReportService(paths, logger), logger, errorHandler),
		Health:       NewHealthHandler(services.NewHealthService("1.0.0-test", "unknown", paths, logger), logger),
		OTel:         custommw.NewOTelMiddleware(providers),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health/live", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouterRequestIDHeader(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health/live", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
