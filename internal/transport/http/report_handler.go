package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "whodash/internal/errors"
	"whodash/internal/report"
)

// ReportServiceInterface is the service surface the handler needs.
type ReportServiceInterface interface {
	BuildDashboard(ctx context.Context, country string) (*report.Dashboard, error)
	ListCountries(ctx context.Context) ([]string, error)
}

// dashboardRequest carries the validated request parameters.
type dashboardRequest struct {
	Country string `validate:"required,min=2,max=100"`
}

// ReportHandler serves the dashboard endpoints.
type ReportHandler struct {
	service  ReportServiceInterface
	logger   *slog.Logger
	validate *validator.Validate
}

// NewReportHandler creates a report handler.
func NewReportHandler(service ReportServiceInterface, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		service:  service,
		logger:   logger.With(slog.String("component", "report_handler")),
		validate: validator.New(),
	}
}

// Routes returns the report routes.
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/countries", h.ListCountries)
	r.Get("/dashboard/{country}", h.GetDashboard)

	return r
}

// GetDashboard handles GET /api/dashboard/{country}.
func (h *ReportHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	country := chi.URLParam(r, "country")
	if unescaped, err := url.PathUnescape(country); err == nil {
		country = unescaped
	}

	req := dashboardRequest{Country: country}
	if err := h.validate.Struct(req); err != nil {
		apierrors.RenderError(w, r, apierrors.NewValidationError("invalid country parameter"))
		return
	}

	dashboard, err := h.service.BuildDashboard(ctx, country)
	if err != nil {
		h.logger.ErrorContext(ctx, "dashboard build failed",
			slog.String("country", country),
			slog.String("error", err.Error()))
		apierrors.RenderError(w, r, err)
		return
	}

	render.JSON(w, r, dashboard)
}

// ListCountries handles GET /api/countries.
func (h *ReportHandler) ListCountries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	countries, err := h.service.ListCountries(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "listing countries failed",
			slog.String("error", err.Error()))
		apierrors.RenderError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"countries": countries,
		"count":     len(countries),
	})
}
