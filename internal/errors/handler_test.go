package errors

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() *ErrorHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewErrorHandler(logger, false)
}

func TestErrorToProblem(t *testing.T) {
	h := newTestHandler()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "context deadline",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "report not found api error",
			err:        ErrReportNotFound,
			wantStatus: http.StatusNotFound,
			wantType:   TypeReportNotFound,
		},
		{
			name:       "app error not found",
			err:        NewNotFoundError("community dataset"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "app error parsing maps to data corrupted",
			err:        NewParsingError("report json is truncated", nil),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeDataCorrupted,
		},
		{
			name:       "app error validation",
			err:        NewAppValidationError("bad season"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
		},
		{
			name:       "plain not-found string",
			err:        errors.New("summary not found"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "unknown error is internal",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/reports/cancellations", nil)
			problem := h.ErrorToProblem(tt.err, r)

			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, "/api/reports/cancellations", problem.Instance)
		})
	}
}

func TestHandleError(t *testing.T) {
	h := newTestHandler()
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/reports/districts", nil)

	h.HandleError(rec, r, ReportNotFoundError("districts", errors.New("no such file")))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "REPORT_NOT_FOUND")
}

func TestHandleErrorNilIsNoop(t *testing.T) {
	h := newTestHandler()
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/health", nil)

	h.HandleError(rec, r, nil)

	assert.Empty(t, rec.Body.String())
}

func TestMiddlewareRecoversPanic(t *testing.T) {
	h := newTestHandler()
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("unexpected")
	})

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/reports/absorption", nil)

	require.NotPanics(t, func() {
		h.Middleware(panicking).ServeHTTP(rec, r)
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNotFoundHandler(t *testing.T) {
	h := newTestHandler()
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/nope", nil)

	h.NotFound(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), TypeNotFound)
}
