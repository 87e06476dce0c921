package analytics

import (
	"fmt"
	"time"

	"channelpulse/internal/calendar"
	"channelpulse/pkg/contracts/domain"
)

// Period is one bucket of summed daily metrics
type Period struct {
	Label     string                    `json:"label"`
	Start     time.Time                 `json:"start"`
	End       time.Time                 `json:"end"`
	Frequency domain.Frequency          `json:"frequency"`
	Values    map[domain.Metric]float64 `json:"values"`
	Days      int                       `json:"days"`
	Complete  bool                      `json:"complete"`
}

// Value returns the bucket sum for m
func (p Period) Value(m domain.Metric) float64 {
	return p.Values[m]
}

// Contains reports whether t falls in [Start, End)
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Aggregate buckets the series at freq and sums the tracked metrics in each
// bucket. Buckets without records are omitted. Completeness is judged
// against now.
func Aggregate(series domain.TimeSeries, freq domain.Frequency, now time.Time) ([]Period, error) {
	if !freq.Valid() {
		return nil, fmt.Errorf("aggregate: %w: %d", domain.ErrInvalidFrequency, int(freq))
	}

	periods := make([]Period, 0)
	var current *Period

	// records are chronological, so bucket starts never decrease
	for _, rec := range series.Records() {
		start := calendar.BucketStart(rec.Date, freq)
		if current == nil || !current.Start.Equal(start) {
			periods = append(periods, newPeriod(start, freq, now))
			current = &periods[len(periods)-1]
		}
		for _, m := range domain.TrackedMetrics {
			current.Values[m] += rec.Value(m)
		}
		current.Days++
	}

	return periods, nil
}

func newPeriod(start time.Time, freq domain.Frequency, now time.Time) Period {
	values := make(map[domain.Metric]float64, len(domain.TrackedMetrics))
	for _, m := range domain.TrackedMetrics {
		values[m] = 0
	}
	return Period{
		Label:     calendar.Label(start, freq),
		Start:     start,
		End:       calendar.BucketEnd(start, freq),
		Frequency: freq,
		Values:    values,
		Complete:  calendar.IsComplete(start, freq, now),
	}
}

// PeriodValues extracts one metric across periods
func PeriodValues(periods []Period, m domain.Metric) []float64 {
	out := make([]float64, len(periods))
	for i, p := range periods {
		out[i] = p.Value(m)
	}
	return out
}

// SumPeriods totals m across periods
func SumPeriods(periods []Period, m domain.Metric) float64 {
	var total float64
	for _, p := range periods {
		total += p.Value(m)
	}
	return total
}
