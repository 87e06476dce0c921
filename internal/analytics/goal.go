package analytics

import (
	"fmt"
	"math"
	"time"

	"channelpulse/pkg/contracts/domain"
)

// GoalMetrics are the metrics a goal can be set on
var GoalMetrics = []domain.Metric{
	domain.MetricViews,
	domain.MetricNetSubscribers,
	domain.MetricWatchHours,
	domain.MetricLikes,
}

// GoalProgress tracks a cumulative target over the selected window
type GoalProgress struct {
	Metric          domain.Metric `json:"metric"`
	Target          float64       `json:"target"`
	CurrentSum      float64       `json:"current_sum"`
	ProgressPercent float64       `json:"progress_percent"`
	// BarFraction is ProgressPercent/100 clamped to [0, 1] for progress bars
	BarFraction   float64    `json:"bar_fraction"`
	TargetDate    *time.Time `json:"target_date,omitempty"`
	DaysRemaining *int       `json:"days_remaining,omitempty"`
	Achieved      bool       `json:"achieved"`
}

// Progress sums m over the series and compares it with target. The percent
// is not clamped, so overshooting reports more than 100.
func Progress(series domain.TimeSeries, m domain.Metric, target float64) (GoalProgress, error) {
	if !m.Valid() {
		return GoalProgress{}, fmt.Errorf("goal: %w: %q", domain.ErrUnknownMetric, m)
	}
	if target <= 0 || math.IsNaN(target) || math.IsInf(target, 0) {
		return GoalProgress{}, fmt.Errorf("goal target %v: %w", target, domain.ErrInvalidGoalTarget)
	}

	sum := series.Sum(m)
	pct := sum / target * 100
	return GoalProgress{
		Metric:          m,
		Target:          target,
		CurrentSum:      sum,
		ProgressPercent: pct,
		BarFraction:     math.Max(0, math.Min(pct/100, 1)),
		Achieved:        sum >= target,
	}, nil
}

// WithDeadline attaches a target date and the whole days left until it,
// counted from today. Past deadlines give a negative count.
func (g GoalProgress) WithDeadline(targetDate, today time.Time) GoalProgress {
	d := domain.TruncateDay(targetDate)
	days := int(d.Sub(domain.TruncateDay(today)).Hours() / 24)
	g.TargetDate = &d
	g.DaysRemaining = &days
	return g
}
