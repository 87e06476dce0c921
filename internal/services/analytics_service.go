package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"channelpulse/internal/analytics"
	"channelpulse/internal/dataset"
	"channelpulse/internal/exporter"
	"channelpulse/internal/infrastructure"
	"channelpulse/pkg/contracts/domain"
)

// DatasetInfo describes the loaded dataset snapshot
type DatasetInfo struct {
	Path        string    `json:"path"`
	Format      string    `json:"format"`
	Records     int       `json:"records"`
	FirstDate   time.Time `json:"first_date"`
	LastDate    time.Time `json:"last_date"`
	Fingerprint string    `json:"fingerprint"`
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"mod_time"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// PeriodsView is the aggregated bucket table for one request
type PeriodsView struct {
	Frequency domain.Frequency   `json:"frequency"`
	Start     time.Time          `json:"start"`
	End       time.Time          `json:"end"`
	Periods   []analytics.Period `json:"periods"`
	Summary   analytics.Overview `json:"summary"`
}

// GrowthView is the growth section: per-metric stats plus the daily percent
// change and rolling mean of the trend metric
type GrowthView struct {
	Metric      domain.Metric                           `json:"metric"`
	Stats       map[domain.Metric]analytics.GrowthStats `json:"stats"`
	Change      []analytics.Point                       `json:"change"`
	RollingMean []analytics.Point                       `json:"rolling_mean"`
	Window      int                                     `json:"window"`
}

// AnalyticsService answers view requests against the cached dataset
type AnalyticsService struct {
	cache    *dataset.Cache
	engine   *analytics.Engine
	exporter *exporter.PeriodExporter
	metrics  *infrastructure.BusinessMetrics
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewAnalyticsService creates the service. metrics and tracer may be nil.
func NewAnalyticsService(
	cache *dataset.Cache,
	engine *analytics.Engine,
	metrics *infrastructure.BusinessMetrics,
	tracer trace.Tracer,
	logger *slog.Logger,
) *AnalyticsService {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.MeterName)
	}
	logger = logger.With(slog.String("component", "analytics_service"))
	return &AnalyticsService{
		cache:    cache,
		engine:   engine,
		exporter: exporter.NewPeriodExporter(logger),
		metrics:  metrics,
		tracer:   tracer,
		logger:   logger,
	}
}

// DatasetInfo returns metadata about the current dataset, loading it if needed
func (s *AnalyticsService) DatasetInfo(ctx context.Context) (*DatasetInfo, error) {
	snap, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.info(snap), nil
}

// Reload drops the cached snapshot and parses the dataset again
func (s *AnalyticsService) Reload(ctx context.Context) (*DatasetInfo, error) {
	ctx, span := s.tracer.Start(ctx, "analytics.reload")
	defer span.End()

	snap, err := s.cache.Reload(ctx)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "dataset reload failed", slog.String("error", err.Error()))
		return nil, err
	}

	s.logger.InfoContext(ctx, "dataset reloaded",
		slog.Int("records", snap.Series.Len()),
		slog.String("fingerprint", snap.Fingerprint.Short()))
	return s.info(snap), nil
}

func (s *AnalyticsService) info(snap *dataset.Snapshot) *DatasetInfo {
	loader := s.cache.Loader()
	return &DatasetInfo{
		Path:        loader.Path(),
		Format:      string(loader.Format()),
		Records:     snap.Series.Len(),
		FirstDate:   snap.Series.First(),
		LastDate:    snap.Series.Last(),
		Fingerprint: snap.Fingerprint.Hash,
		Size:        snap.Fingerprint.Size,
		ModTime:     snap.Fingerprint.ModTime,
		LoadedAt:    snap.LoadedAt,
	}
}

// Report runs the full analytics pass
func (s *AnalyticsService) Report(ctx context.Context, req analytics.ViewRequest) (*analytics.Report, error) {
	var rep *analytics.Report
	err := s.run(ctx, "report", req, func(ctx context.Context, w *analytics.Window) error {
		var err error
		rep, err = s.engine.Report(ctx, w)
		return err
	})
	return rep, err
}

// Periods returns the aggregated buckets selected by the request
func (s *AnalyticsService) Periods(ctx context.Context, req analytics.ViewRequest) (*PeriodsView, error) {
	var view *PeriodsView
	err := s.run(ctx, "periods", req, func(_ context.Context, w *analytics.Window) error {
		view = &PeriodsView{
			Frequency: w.Request.Frequency,
			Start:     w.Request.Start,
			End:       w.Request.End,
			Periods:   w.Selected,
			Summary:   analytics.NewOverview(w.Selected, w.Request.Frequency),
		}
		return nil
	})
	return view, err
}

// Export writes the selected periods to out and returns the suggested
// file name
func (s *AnalyticsService) Export(ctx context.Context, req analytics.ViewRequest, format exporter.Format, out io.Writer) (string, error) {
	var name string
	err := s.run(ctx, "export", req, func(_ context.Context, w *analytics.Window) error {
		name = exporter.Filename(w.Request, format)
		return s.exporter.Export(out, format, w.Selected)
	})
	return name, err
}

// Correlations returns the pairwise correlation of the tracked metrics
func (s *AnalyticsService) Correlations(ctx context.Context, req analytics.ViewRequest) (*analytics.CorrelationResult, error) {
	var res analytics.CorrelationResult
	err := s.run(ctx, "correlations", req, func(_ context.Context, w *analytics.Window) error {
		var err error
		res, err = analytics.Correlate(w.Series, domain.TrackedMetrics)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Distribution returns the histogram, QQ and normality analysis of one metric
func (s *AnalyticsService) Distribution(ctx context.Context, req analytics.ViewRequest) (*analytics.DistributionResult, error) {
	var res analytics.DistributionResult
	err := s.run(ctx, "distribution", req, func(_ context.Context, w *analytics.Window) error {
		var err error
		res, err = analytics.AnalyzeDistribution(w.Series, w.Request.DistributionMetric, w.Request.Bins)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Seasonality returns weekday and month averages
func (s *AnalyticsService) Seasonality(ctx context.Context, req analytics.ViewRequest) (*analytics.SeasonalResult, error) {
	var res analytics.SeasonalResult
	err := s.run(ctx, "seasonality", req, func(_ context.Context, w *analytics.Window) error {
		res = analytics.Seasonality(w.Series)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Growth returns growth stats and the trend series of the trend metric
func (s *AnalyticsService) Growth(ctx context.Context, req analytics.ViewRequest) (*GrowthView, error) {
	var view *GrowthView
	err := s.run(ctx, "growth", req, func(_ context.Context, w *analytics.Window) error {
		rolling, err := analytics.RollingMean(w.Series, w.Request.TrendMetric, w.Request.RollingWindow)
		if err != nil {
			return err
		}
		view = &GrowthView{
			Metric:      w.Request.TrendMetric,
			Stats:       analytics.Growth(w.Series),
			Change:      analytics.PercentChange(w.Series, w.Request.TrendMetric),
			RollingMean: rolling,
			Window:      w.Request.RollingWindow,
		}
		return nil
	})
	return view, err
}

// Performance returns the headline KPIs
func (s *AnalyticsService) Performance(ctx context.Context, req analytics.ViewRequest) (*analytics.PerformanceKPIs, error) {
	var res analytics.PerformanceKPIs
	err := s.run(ctx, "performance", req, func(_ context.Context, w *analytics.Window) error {
		var err error
		res, err = analytics.Summarize(w.Series)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Goal returns progress toward the requested goal
func (s *AnalyticsService) Goal(ctx context.Context, req analytics.ViewRequest) (*analytics.GoalProgress, error) {
	var res analytics.GoalProgress
	err := s.run(ctx, "goal", req, func(_ context.Context, w *analytics.Window) error {
		var err error
		res, err = s.engine.Goal(w)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// run loads the snapshot, resolves the request and calls fn inside a span.
// Every call is recorded in the report metrics.
func (s *AnalyticsService) run(ctx context.Context, section string, req analytics.ViewRequest, fn func(context.Context, *analytics.Window) error) (err error) {
	ctx, span := s.tracer.Start(ctx, "analytics."+section)
	defer span.End()

	started := time.Now()
	defer func() {
		s.metrics.RecordReport(ctx, section, req.Frequency.String(), time.Since(started), err)
		if err != nil {
			infrastructure.RecordError(ctx, err)
		}
	}()

	snap, err := s.cache.Get(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "dataset unavailable",
			slog.String("section", section),
			slog.String("error", err.Error()))
		return err
	}

	w, err := s.engine.Resolve(ctx, snap.Series, req)
	if err != nil {
		s.logger.WarnContext(ctx, "view request rejected",
			slog.String("section", section),
			slog.String("error", err.Error()))
		return err
	}

	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"analytics.section":   section,
		"analytics.frequency": w.Request.Frequency.String(),
		"analytics.records":   w.Series.Len(),
		"analytics.periods":   len(w.Selected),
		"dataset.fingerprint": snap.Fingerprint.Short(),
	})

	if err := fn(ctx, w); err != nil {
		return fmt.Errorf("%s: %w", section, err)
	}

	s.logger.DebugContext(ctx, "analytics section computed",
		slog.String("section", section),
		slog.Int("records", w.Series.Len()),
		slog.Duration("duration", time.Since(started)))
	return nil
}
