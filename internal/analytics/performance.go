package analytics

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"channelpulse/pkg/contracts/domain"
)

// PerformanceKPIs are the headline figures for a window of daily records
type PerformanceKPIs struct {
	Days                 int       `json:"days"`
	AvgViewsPerDay       float64   `json:"avg_views_per_day"`
	PeakViews            float64   `json:"peak_views"`
	AvgWatchHours        float64   `json:"avg_watch_hours"`
	SubscriberGrowthRate float64   `json:"subscriber_growth_rate"`
	EngagementRate       float64   `json:"engagement_rate"`
	EngagementDefined    bool      `json:"engagement_defined"`
	BestDay              time.Time `json:"best_day"`
}

// Summarize computes the KPIs over the raw daily series
func Summarize(series domain.TimeSeries) (PerformanceKPIs, error) {
	if series.Empty() {
		return PerformanceKPIs{}, fmt.Errorf("summarize: %w", domain.ErrEmptyWindow)
	}

	views := series.Values(domain.MetricViews)
	n := float64(series.Len())

	// MaxIdx returns the first index on ties
	best := floats.MaxIdx(views)

	kpis := PerformanceKPIs{
		Days:                 series.Len(),
		AvgViewsPerDay:       stat.Mean(views, nil),
		PeakViews:            views[best],
		AvgWatchHours:        stat.Mean(series.Values(domain.MetricWatchHours), nil),
		SubscriberGrowthRate: series.Sum(domain.MetricNetSubscribers) / n * 100,
		BestDay:              series.At(best).Date,
	}

	if totalViews := floats.Sum(views); totalViews > 0 {
		engaged := series.Sum(domain.MetricLikes) + series.Sum(domain.MetricComments)
		kpis.EngagementRate = engaged / totalViews * 100
		kpis.EngagementDefined = true
	}

	return kpis, nil
}
