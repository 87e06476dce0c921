package analytics

import (
	"fmt"
	"math"
	"time"

	"channelpulse/pkg/contracts/domain"
)

// DefaultWindowDays is how far back the default window reaches from the
// latest record
const DefaultWindowDays = 365

// GoalRequest asks for progress toward a cumulative target
type GoalRequest struct {
	Metric     domain.Metric `json:"metric"`
	Target     float64       `json:"target"`
	TargetDate time.Time     `json:"target_date,omitempty"`
}

// ViewRequest carries every user selection for one recompute pass
type ViewRequest struct {
	Start              time.Time        `json:"start"`
	End                time.Time        `json:"end"`
	Frequency          domain.Frequency `json:"frequency"`
	TrendMetric        domain.Metric    `json:"trend_metric"`
	DistributionMetric domain.Metric    `json:"distribution_metric"`
	Bins               int              `json:"bins"`
	RollingWindow      int              `json:"rolling_window"`
	Goal               *GoalRequest     `json:"goal,omitempty"`
}

// WithDefaults fills unset fields. An unset window covers the windowDays
// days up to the latest record, clamped to the first record.
func (r ViewRequest) WithDefaults(series domain.TimeSeries, windowDays int) ViewRequest {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	if r.End.IsZero() {
		r.End = series.Last()
	}
	if r.Start.IsZero() && !r.End.IsZero() {
		r.Start = r.End.AddDate(0, 0, -windowDays)
		if first := series.First(); r.Start.Before(first) {
			r.Start = first
		}
	}
	r.Start, r.End = domain.TruncateDay(r.Start), domain.TruncateDay(r.End)

	if r.TrendMetric == "" {
		r.TrendMetric = domain.MetricViews
	}
	if r.DistributionMetric == "" {
		r.DistributionMetric = domain.MetricViews
	}
	if r.Bins <= 0 {
		r.Bins = DefaultHistogramBins
	}
	if r.RollingWindow <= 0 {
		r.RollingWindow = DefaultRollingWindow
	}
	return r
}

// Validate rejects a request before any analysis runs
func (r ViewRequest) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return domain.ValidationError{Field: "start", Message: "date range is required"}
	}
	if r.Start.After(r.End) {
		return fmt.Errorf("%w: %s > %s", domain.ErrInvalidRange,
			r.Start.Format(time.DateOnly), r.End.Format(time.DateOnly))
	}
	if !r.Frequency.Valid() {
		return fmt.Errorf("%w: %d", domain.ErrInvalidFrequency, int(r.Frequency))
	}
	for _, m := range []domain.Metric{r.TrendMetric, r.DistributionMetric} {
		if m != "" && !m.Valid() {
			return fmt.Errorf("%w: %q", domain.ErrUnknownMetric, m)
		}
	}
	if r.Bins > MaxHistogramBins {
		return domain.ValidationError{Field: "bins", Message: fmt.Sprintf("must be at most %d", MaxHistogramBins), Value: r.Bins}
	}
	if r.Goal != nil {
		if !r.Goal.Metric.Valid() {
			return fmt.Errorf("goal: %w: %q", domain.ErrUnknownMetric, r.Goal.Metric)
		}
		if r.Goal.Target <= 0 || math.IsNaN(r.Goal.Target) {
			return fmt.Errorf("goal target %v: %w", r.Goal.Target, domain.ErrInvalidGoalTarget)
		}
	}
	return nil
}
