package http

import (
	"context"
	"io"

	"channelpulse/internal/analytics"
	"channelpulse/internal/exporter"
	"channelpulse/internal/services"
)

// AnalyticsServiceInterface defines the interface for the analytics service
type AnalyticsServiceInterface interface {
	DatasetInfo(ctx context.Context) (*services.DatasetInfo, error)
	Reload(ctx context.Context) (*services.DatasetInfo, error)
	Report(ctx context.Context, req analytics.ViewRequest) (*analytics.Report, error)
	Periods(ctx context.Context, req analytics.ViewRequest) (*services.PeriodsView, error)
	Export(ctx context.Context, req analytics.ViewRequest, format exporter.Format, out io.Writer) (string, error)
	Correlations(ctx context.Context, req analytics.ViewRequest) (*analytics.CorrelationResult, error)
	Distribution(ctx context.Context, req analytics.ViewRequest) (*analytics.DistributionResult, error)
	Seasonality(ctx context.Context, req analytics.ViewRequest) (*analytics.SeasonalResult, error)
	Growth(ctx context.Context, req analytics.ViewRequest) (*services.GrowthView, error)
	Performance(ctx context.Context, req analytics.ViewRequest) (*analytics.PerformanceKPIs, error)
	Goal(ctx context.Context, req analytics.ViewRequest) (*analytics.GoalProgress, error)
}

// HealthServiceInterface defines the interface for the health service
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}

var _ AnalyticsServiceInterface = (*services.AnalyticsService)(nil)
