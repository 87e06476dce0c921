package domain

import (
	"fmt"
	"strings"
)

// Metric names a numeric column of the daily channel table
type Metric string

const (
	MetricViews             Metric = "VIEWS"
	MetricWatchHours        Metric = "WATCH_HOURS"
	MetricNetSubscribers    Metric = "NET_SUBSCRIBERS"
	MetricLikes             Metric = "LIKES"
	MetricComments          Metric = "COMMENTS"
	MetricShares            Metric = "SHARES"
	MetricSubscribersGained Metric = "SUBSCRIBERS_GAINED"
	MetricSubscribersLost   Metric = "SUBSCRIBERS_LOST"
)

// TrackedMetrics are the six metrics summed into every period, in canonical order.
var TrackedMetrics = []Metric{
	MetricViews,
	MetricWatchHours,
	MetricNetSubscribers,
	MetricLikes,
	MetricComments,
	MetricShares,
}

// GrowthMetrics are the metrics reported by growth analysis
var GrowthMetrics = []Metric{MetricViews, MetricWatchHours, MetricNetSubscribers}

// ComparisonMetrics are the metrics shown side by side on the normalized box plot
var ComparisonMetrics = []Metric{MetricViews, MetricWatchHours, MetricNetSubscribers, MetricLikes}

// ParseMetric resolves a metric name. "SUBSCRIBERS" is accepted as an alias
// for NET_SUBSCRIBERS since that is what the goal picker offers.
func ParseMetric(s string) (Metric, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	name = strings.ReplaceAll(name, " ", "_")
	if name == "SUBSCRIBERS" {
		return MetricNetSubscribers, nil
	}
	m := Metric(name)
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
	}
	return m, nil
}

// Valid reports whether m is a known metric
func (m Metric) Valid() bool {
	switch m {
	case MetricViews, MetricWatchHours, MetricNetSubscribers, MetricLikes,
		MetricComments, MetricShares, MetricSubscribersGained, MetricSubscribersLost:
		return true
	}
	return false
}

// Tracked reports whether m is aggregated into periods
func (m Metric) Tracked() bool {
	for _, t := range TrackedMetrics {
		if t == m {
			return true
		}
	}
	return false
}

// Label returns a human readable name, e.g. "Watch Hours"
func (m Metric) Label() string {
	parts := strings.Split(strings.ToLower(string(m)), "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

func (m Metric) String() string {
	return string(m)
}

// Frequency is the bucketing resolution for period aggregation
type Frequency int

const (
	Daily Frequency = iota
	Weekly
	Monthly
	Quarterly
)

// Frequencies lists every supported resolution from finest to coarsest
var Frequencies = []Frequency{Daily, Weekly, Monthly, Quarterly}

// ParseFrequency maps a textual frequency to the enum. Both the full name
// ("weekly") and the single-letter code ("W") are accepted.
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "d":
		return Daily, nil
	case "weekly", "w":
		return Weekly, nil
	case "monthly", "m":
		return Monthly, nil
	case "quarterly", "q":
		return Quarterly, nil
	}
	return Daily, fmt.Errorf("%w: %q", ErrInvalidFrequency, s)
}

// Valid reports whether f is one of the declared frequencies
func (f Frequency) Valid() bool {
	return f >= Daily && f <= Quarterly
}

func (f Frequency) String() string {
	switch f {
	case Daily:
		return "daily"
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	case Quarterly:
		return "quarterly"
	default:
		return fmt.Sprintf("frequency(%d)", int(f))
	}
}

// Unit returns the singular period noun used in "last week is incomplete" notes
func (f Frequency) Unit() string {
	switch f {
	case Daily:
		return "day"
	case Weekly:
		return "week"
	case Monthly:
		return "month"
	case Quarterly:
		return "quarter"
	default:
		return "period"
	}
}

// MarshalText encodes the frequency by name
func (f Frequency) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFrequency, int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText decodes a frequency name
func (f *Frequency) UnmarshalText(text []byte) error {
	parsed, err := ParseFrequency(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
