package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"channelpulse/internal/analytics"
	apierrors "channelpulse/internal/errors"
	"channelpulse/internal/exporter"
	mw "channelpulse/internal/middleware"
	api "channelpulse/pkg/contracts/api/v1"
)

// AnalyticsHandler serves the dataset and analytics endpoints
type AnalyticsHandler struct {
	service      AnalyticsServiceInterface
	validator    *mw.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service AnalyticsServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:      service,
		validator:    mw.NewValidator(),
		logger:       logger.With(slog.String("component", "analytics_handler")),
		errorHandler: errorHandler,
	}
}

// DatasetRoutes returns the dataset routes
func (h *AnalyticsHandler) DatasetRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.GetDataset)
	r.Post("/reload", h.ReloadDataset)

	return r
}

// Routes returns the analytics routes
func (h *AnalyticsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/report", h.GetReport)
		r.Get("/periods", h.GetPeriods)
		r.Get("/correlations", h.GetCorrelations)
		r.Get("/distribution", h.GetDistribution)
		r.Get("/seasonality", h.GetSeasonality)
		r.Get("/growth", h.GetGrowth)
		r.Get("/performance", h.GetPerformance)
		r.Get("/goal", h.GetGoal)
	})

	// Binary download, content type depends on the format
	r.Get("/periods/export", h.ExportPeriods)

	return r
}

// GetDataset handles GET /api/v1/dataset
func (h *AnalyticsHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.DatasetInfo(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.NewResponse(info))
}

// ReloadDataset handles POST /api/v1/dataset/reload
func (h *AnalyticsHandler) ReloadDataset(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "dataset reload requested",
		slog.String("request_id", middleware.GetReqID(r.Context())))

	info, err := h.service.Reload(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.NewResponse(info))
}

// GetReport handles GET /api/v1/analytics/report
func (h *AnalyticsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	req, ok := h.viewRequest(w, r)
	if !ok {
		return
	}

	rep, err := h.service.Report(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.NewResponse(rep, rep.Warnings...))
}

// GetPeriods handles GET /api/v1/analytics/periods
func (h *AnalyticsHandler) GetPeriods(w http.ResponseWriter, r *http.Request) {
	req, ok := h.viewRequest(w, r)
	if !ok {
		return
	}

	view, err := h.service.Periods(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var warnings []string
	if view.Summary.Note != "" {
		warnings = append(warnings, view.Summary.Note)
	}
	render.JSON(w, r, api.NewResponse(view, warnings...))
}

// ExportPeriods handles GET /api/v1/analytics/periods/export
func (h *AnalyticsHandler) ExportPeriods(w http.ResponseWriter, r *http.Request) {
	q := bindExportQuery(r.URL.Query())
	if err := h.validator.ValidateStruct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	format, err := exporter.ParseFormat(q.Format)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidParameter("format", err))
		return
	}

	req, err := toViewRequest(q.ReportQuery)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	// Buffer so a failed export can still produce a problem response
	var buf bytes.Buffer
	name, err := h.service.Export(r.Context(), req, format, &buf)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "export write failed",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	}
}

// GetCorrelations handles GET /api/v1/analytics/correlations
func (h *AnalyticsHandler) GetCorrelations(w http.ResponseWriter, r *http.Request) {
	req, ok := h.viewRequest(w, r)
	if !ok {
		return
	}
	res, err := h.service.Correlations(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.NewResponse(res))
}

// GetDistribution handles GET /api/v1/analytics/distribution
func (h *AnalyticsHandler) GetDistribution(w http.ResponseWriter, r *http.Request) {
	req, ok := h.viewRequest(w, r)
	if !ok {
		return
	}
	res, err := h.service.Distribution(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.NewResponse(res, res.Warnings...))
}

// GetSeasonality handles GET /api/v1/analytics/seasonality
func (h *AnalyticsHandler) GetSeasonality(w http.ResponseWriter, r *http.Request) {
	req, ok := h.viewRequest(w, r)
	if !ok {
		return
	}
	res, err := h.service.Seasonality(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.NewResponse(res))
}

// GetGrowth handles GET /api/v1/analytics/growth
func (h *AnalyticsHandler) GetGrowth(w http.ResponseWriter, r *http.Request) {
	req, ok := h.viewRequest(w, r)
	if !ok {
		return
	}
	res, err := h.service.Growth(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.NewResponse(res))
}

// GetPerformance handles GET /api/v1/analytics/performance
func (h *AnalyticsHandler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	req, ok := h.viewRequest(w, r)
	if !ok {
		return
	}
	res, err := h.service.Performance(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.NewResponse(res))
}

// GetGoal handles GET /api/v1/analytics/goal. goal_metric and goal_target
// are required here.
func (h *AnalyticsHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	q := bindReportQuery(r.URL.Query())
	if q.GoalMetric == "" && q.GoalTarget == "" {
		h.errorHandler.HandleError(w, r, apierrors.NewValidationErrors([]apierrors.ValidationError{
			{Field: "goal_metric", Message: "goal_metric is required"},
			{Field: "goal_target", Message: "goal_target is required"},
		}))
		return
	}

	req, ok := h.bind(w, r, q)
	if !ok {
		return
	}
	res, err := h.service.Goal(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.NewResponse(res))
}

// viewRequest validates the query string and converts it to a ViewRequest.
// On failure the problem response has already been written.
func (h *AnalyticsHandler) viewRequest(w http.ResponseWriter, r *http.Request) (analytics.ViewRequest, bool) {
	return h.bind(w, r, bindReportQuery(r.URL.Query()))
}

func (h *AnalyticsHandler) bind(w http.ResponseWriter, r *http.Request, q api.ReportQuery) (analytics.ViewRequest, bool) {
	if err := h.validator.ValidateStruct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return analytics.ViewRequest{}, false
	}
	req, err := toViewRequest(q)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return analytics.ViewRequest{}, false
	}
	return req, true
}
