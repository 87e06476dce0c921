package analytics

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"channelpulse/pkg/contracts/domain"
)

// Point is one dated value of a derived series
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// GrowthStats summarizes the day-over-day percent change of one metric
type GrowthStats struct {
	AvgGrowth  float64 `json:"avg_growth"`
	Volatility float64 `json:"volatility"`
	Samples    int     `json:"samples"`
	// Skipped counts steps from a zero value, whose change is undefined
	Skipped int `json:"skipped"`
}

// PercentChange returns (v[i]-v[i-1])/v[i-1]*100 for consecutive records.
// The first record has no predecessor and is omitted. Steps from a zero
// value are omitted as well.
func PercentChange(series domain.TimeSeries, m domain.Metric) []Point {
	out := make([]Point, 0, series.Len())
	records := series.Records()
	for i := 1; i < len(records); i++ {
		prev := records[i-1].Value(m)
		if prev == 0 {
			continue
		}
		cur := records[i].Value(m)
		out = append(out, Point{Date: records[i].Date, Value: (cur - prev) / prev * 100})
	}
	return out
}

// Growth computes mean growth and volatility (sample standard deviation of
// the percent change) for views, watch hours and net subscribers.
func Growth(series domain.TimeSeries) map[domain.Metric]GrowthStats {
	out := make(map[domain.Metric]GrowthStats, len(domain.GrowthMetrics))
	for _, m := range domain.GrowthMetrics {
		out[m] = growthOf(series, m)
	}
	return out
}

func growthOf(series domain.TimeSeries, m domain.Metric) GrowthStats {
	steps := series.Len() - 1
	if steps < 1 {
		return GrowthStats{}
	}

	points := PercentChange(series, m)
	changes := make([]float64, 0, len(points))
	for _, p := range points {
		if !math.IsNaN(p.Value) && !math.IsInf(p.Value, 0) {
			changes = append(changes, p.Value)
		}
	}

	gs := GrowthStats{Samples: len(changes), Skipped: steps - len(changes)}
	switch len(changes) {
	case 0:
	case 1:
		gs.AvgGrowth = changes[0]
	default:
		gs.AvgGrowth, gs.Volatility = stat.MeanStdDev(changes, nil)
	}
	return gs
}
