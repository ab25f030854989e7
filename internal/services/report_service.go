package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"whodash/internal/config"
	"whodash/internal/dataset"
	apperrors "whodash/internal/errors"
	"whodash/internal/infrastructure"
	"whodash/internal/report"
)

// ReportService builds dashboard reports over the memoized datasets.
// The cache is injected; the service owns no global state.
type ReportService struct {
	datasets  config.DatasetsConfig
	cache     *dataset.Cache
	assembler *report.Assembler
	logger    *slog.Logger
	metrics   *infrastructure.DashboardMetrics
}

// NewReportService creates a report service. metrics may be nil when
// telemetry is disabled.
func NewReportService(cfg *config.Config, cache *dataset.Cache, logger *slog.Logger, metrics *infrastructure.DashboardMetrics) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		datasets:  cfg.Datasets,
		cache:     cache,
		assembler: report.NewAssembler(logger, cfg.Datasets.FutureYears),
		logger:    logger,
		metrics:   metrics,
	}
}

// BuildDashboard assembles all dashboard outputs for the selected
// country. The country must appear in at least one of the two
// datasets.
func (s *ReportService) BuildDashboard(ctx context.Context, country string) (*report.Dashboard, error) {
	if country == "" {
		return nil, apperrors.NewValidationError("country must not be empty")
	}

	start := time.Now()

	prevalence, err := s.loadDataset(ctx, "prevalence", s.datasets.PrevalencePath,
		[]string{s.datasets.PrevalenceIndicator})
	if err != nil {
		return nil, err
	}
	mortality, err := s.loadDataset(ctx, "mortality", s.datasets.MortalityPath,
		[]string{s.datasets.MortalityIndicator})
	if err != nil {
		return nil, err
	}
	breakdown, err := s.loadDataset(ctx, "breakdown", s.datasets.PrevalencePath,
		s.datasets.BreakdownIndicators)
	if err != nil {
		return nil, err
	}

	if !countryKnown(country, prevalence, mortality) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("country %q", country))
	}

	d, err := s.assembler.Build(ctx, country, prevalence, mortality, breakdown)
	infrastructure.RecordReportBuild(ctx, s.metrics, country, time.Since(start), err == nil)
	if err != nil {
		return nil, err
	}

	if n := d.ForecastFailureCount(); n > 0 && s.metrics != nil {
		s.metrics.ForecastFailures.Add(ctx, int64(n),
			metric.WithAttributes(attribute.String("country", country)))
	}

	s.logger.InfoContext(ctx, "dashboard built",
		slog.String("country", country),
		slog.Int("prevalence_records", len(prevalence)),
		slog.Int("mortality_records", len(mortality)),
		slog.Int("breakdown_records", len(breakdown)),
		slog.Duration("duration", time.Since(start)))

	return d, nil
}

// ListCountries returns the countries available in the prevalence
// dataset, sorted, for the frontend selector.
func (s *ReportService) ListCountries(ctx context.Context) ([]string, error) {
	records, err := s.loadDataset(ctx, "prevalence", s.datasets.PrevalencePath,
		[]string{s.datasets.PrevalenceIndicator})
	if err != nil {
		return nil, err
	}
	return report.Countries(records), nil
}

// loadDataset reads one dataset through the cache. An empty filter
// result is an expected condition and comes back as an empty slice;
// format and validation errors propagate.
func (s *ReportService) loadDataset(ctx context.Context, name, path string, indicators []string) ([]dataset.Record, error) {
	start := time.Now()
	records, err := s.cache.Load(ctx, path, indicators)

	if s.metrics != nil {
		attrs := metric.WithAttributes(attribute.String("dataset", name))
		s.metrics.DatasetLoadsTotal.Add(ctx, 1, attrs)
		s.metrics.DatasetLoadDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	}

	if err != nil {
		if apperrors.IsNoRows(err) {
			s.logger.WarnContext(ctx, "dataset filter matched no rows",
				slog.String("dataset", name),
				slog.String("path", path))
			return []dataset.Record{}, nil
		}
		return nil, err
	}
	return records, nil
}

// countryKnown reports whether country appears in any of the given
// datasets.
func countryKnown(country string, sets ...[]dataset.Record) bool {
	for _, records := range sets {
		for _, rec := range records {
			if rec.Country == country {
				return true
			}
		}
	}
	return false
}
