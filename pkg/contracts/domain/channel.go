package domain

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// MetricRecord is one day of channel metrics
type MetricRecord struct {
	Date              time.Time `json:"date"`
	Views             float64   `json:"views"`
	WatchHours        float64   `json:"watch_hours"`
	SubscribersGained float64   `json:"subscribers_gained"`
	SubscribersLost   float64   `json:"subscribers_lost"`
	Likes             float64   `json:"likes"`
	Comments          float64   `json:"comments"`
	Shares            float64   `json:"shares"`

	// NetSubscribers is derived once when the series is built
	NetSubscribers float64 `json:"net_subscribers"`
}

// Value returns the record's value for m
func (r MetricRecord) Value(m Metric) float64 {
	switch m {
	case MetricViews:
		return r.Views
	case MetricWatchHours:
		return r.WatchHours
	case MetricNetSubscribers:
		return r.NetSubscribers
	case MetricLikes:
		return r.Likes
	case MetricComments:
		return r.Comments
	case MetricShares:
		return r.Shares
	case MetricSubscribersGained:
		return r.SubscribersGained
	case MetricSubscribersLost:
		return r.SubscribersLost
	}
	return 0
}

// Validate checks that every raw column is a finite, non-negative number
func (r MetricRecord) Validate() error {
	if r.Date.IsZero() {
		return ValidationError{Field: "DATE", Message: "date is required", Value: r.Date}
	}
	raw := []struct {
		name  Metric
		value float64
	}{
		{MetricViews, r.Views},
		{MetricWatchHours, r.WatchHours},
		{MetricSubscribersGained, r.SubscribersGained},
		{MetricSubscribersLost, r.SubscribersLost},
		{MetricLikes, r.Likes},
		{MetricComments, r.Comments},
		{MetricShares, r.Shares},
	}
	for _, c := range raw {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return ValidationError{Field: string(c.name), Message: "must be a finite number", Value: c.value}
		}
		if c.value < 0 {
			return ValidationError{Field: string(c.name), Message: "must not be negative", Value: c.value}
		}
	}
	return nil
}

// TruncateDay returns the calendar date of t as midnight UTC. Dates in a
// series always carry this normal form so they compare by day.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TimeSeries is an immutable, strictly chronological run of daily records.
// Gaps are allowed and never filled.
type TimeSeries struct {
	records []MetricRecord
}

// NewTimeSeries validates records, normalizes their dates, derives
// NetSubscribers and sorts them. Duplicate dates are rejected.
func NewTimeSeries(records []MetricRecord) (TimeSeries, error) {
	out := make([]MetricRecord, len(records))
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return TimeSeries{}, fmt.Errorf("record %d: %w", i, err)
		}
		r.Date = TruncateDay(r.Date)
		r.NetSubscribers = r.SubscribersGained - r.SubscribersLost
		out[i] = r
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	for i := 1; i < len(out); i++ {
		if out[i].Date.Equal(out[i-1].Date) {
			return TimeSeries{}, ValidationError{
				Field:   "DATE",
				Message: "duplicate date",
				Value:   out[i].Date.Format(time.DateOnly),
			}
		}
	}

	return TimeSeries{records: out}, nil
}

// Len returns the number of records
func (s TimeSeries) Len() int {
	return len(s.records)
}

// Empty reports whether the series has no records
func (s TimeSeries) Empty() bool {
	return len(s.records) == 0
}

// Records exposes the underlying records. The slice must not be modified.
func (s TimeSeries) Records() []MetricRecord {
	return s.records
}

// At returns the i-th record
func (s TimeSeries) At(i int) MetricRecord {
	return s.records[i]
}

// First returns the earliest date, or the zero time for an empty series
func (s TimeSeries) First() time.Time {
	if len(s.records) == 0 {
		return time.Time{}
	}
	return s.records[0].Date
}

// Last returns the latest date, or the zero time for an empty series
func (s TimeSeries) Last() time.Time {
	if len(s.records) == 0 {
		return time.Time{}
	}
	return s.records[len(s.records)-1].Date
}

// Values extracts the column for m in chronological order
func (s TimeSeries) Values(m Metric) []float64 {
	out := make([]float64, len(s.records))
	for i, r := range s.records {
		out[i] = r.Value(m)
	}
	return out
}

// Sum totals m across the series
func (s TimeSeries) Sum(m Metric) float64 {
	var total float64
	for _, r := range s.records {
		total += r.Value(m)
	}
	return total
}

// Between returns the records dated within [start, end], both inclusive
func (s TimeSeries) Between(start, end time.Time) TimeSeries {
	start, end = TruncateDay(start), TruncateDay(end)
	lo := sort.Search(len(s.records), func(i int) bool { return !s.records[i].Date.Before(start) })
	hi := sort.Search(len(s.records), func(i int) bool { return s.records[i].Date.After(end) })
	if lo >= hi {
		return TimeSeries{}
	}
	return TimeSeries{records: s.records[lo:hi]}
}
