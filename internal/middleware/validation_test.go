package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "lvrcli/internal/errors"
)

func newValidationMiddleware() *ValidationMiddleware {
	logger := discardLogger()
	return NewValidationMiddleware(logger, apierrors.NewErrorHandler(logger, false))
}

func TestValidateStruct(t *testing.T) {
	m := newValidationMiddleware()

	type query struct {
		Season string `json:"season" validate:"omitempty,yearseason"`
		Top    int    `json:"top" validate:"min=1,max=100"`
	}

	tests := []struct {
		name    string
		input   query
		wantErr bool
	}{
		{name: "valid", input: query{Season: "113Y2S", Top: 10}},
		{name: "empty season allowed", input: query{Top: 10}},
		{name: "bad season format", input: query{Season: "2024Q1", Top: 10}, wantErr: true},
		{name: "season out of range", input: query{Season: "113Y5S", Top: 10}, wantErr: true},
		{name: "top too large", input: query{Season: "113Y2S", Top: 500}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.ValidateStruct(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateRequestRejectsBadJSON(t *testing.T) {
	m := newValidationMiddleware()
	handler := m.ValidateRequest(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodPost, "/api/reports", strings.NewReader("{not json"))
	r.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateRequestSkipsGet(t *testing.T) {
	m := newValidationMiddleware()
	handler := m.ValidateRequest(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/cancellations", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestQueryParamValidator(t *testing.T) {
	logger := discardLogger()
	v := NewQueryParamValidator(logger, apierrors.NewErrorHandler(logger, false))

	t.Run("default when absent", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/reports/districts", nil)
		got, ok := v.ValidateInt(httptest.NewRecorder(), r, "top", 1, 100, 20)
		require.True(t, ok)
		assert.Equal(t, 20, got)
	})

	t.Run("in-range value accepted", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/reports/districts?top=5", nil)
		got, ok := v.ValidateInt(httptest.NewRecorder(), r, "top", 1, 100, 20)
		require.True(t, ok)
		assert.Equal(t, 5, got)
	})

	t.Run("out-of-range rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/reports/districts?top=0", nil)
		rec := httptest.NewRecorder()
		_, ok := v.ValidateInt(rec, r, "top", 1, 100, 20)
		require.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("enum validation", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/reports/cancellations?format=json", nil)
		got, ok := v.ValidateEnum(httptest.NewRecorder(), r, "format", []string{"json", "csv"}, "json")
		require.True(t, ok)
		assert.Equal(t, "json", got)

		r = httptest.NewRequest(http.MethodGet, "/api/reports/cancellations?format=xml", nil)
		rec := httptest.NewRecorder()
		_, ok = v.ValidateEnum(rec, r, "format", []string{"json", "csv"}, "json")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
