package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "lvrcli/internal/errors"
	custommw "lvrcli/internal/middleware"
	"lvrcli/internal/services"
)

// ReportHandler serves the generated analysis reports with RFC 7807 error
// responses.
type ReportHandler struct {
	service      *services.ReportService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	queryParams  *custommw.QueryParamValidator
}

// NewReportHandler creates a new report handler
func NewReportHandler(service *services.ReportService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "report_handler")),
		errorHandler: errorHandler,
		queryParams:  custommw.NewQueryParamValidator(logger, errorHandler),
	}
}

// Routes returns the report routes with proper Chi patterns
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.ListReports)
	r.Get("/cancellations", h.GetCancellations)
	r.Get("/absorption", h.GetAbsorption)
	r.Get("/risk", h.GetRisk)
	r.Get("/districts", h.GetDistricts)

	return r
}

// ListReports handles GET /api/reports
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.ListReports(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"reports": reports,
		"count":   len(reports),
	})
}

// GetCancellations handles GET /api/reports/cancellations
func (h *ReportHandler) GetCancellations(w http.ResponseWriter, r *http.Request) {
	payload, err := h.service.CancellationSummary(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, payload)
}

// GetAbsorption handles GET /api/reports/absorption
func (h *ReportHandler) GetAbsorption(w http.ResponseWriter, r *http.Request) {
	payload, err := h.service.Absorption(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, payload)
}

// GetRisk handles GET /api/reports/risk
func (h *ReportHandler) GetRisk(w http.ResponseWriter, r *http.Request) {
	payload, err := h.service.Risk(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, payload)
}

// GetDistricts handles GET /api/reports/districts?top=N
func (h *ReportHandler) GetDistricts(w http.ResponseWriter, r *http.Request) {
	top, ok := h.queryParams.ValidateInt(w, r, "top", 1, 100, 20)
	if !ok {
		return
	}

	payload, err := h.service.Districts(r.Context(), top)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, payload)
}
