package analytics

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"channelpulse/pkg/contracts/domain"
)

// BoxStats is the five-number summary of a metric's z-scores
type BoxStats struct {
	Metric domain.Metric `json:"metric"`
	Min    float64       `json:"min"`
	Q1     float64       `json:"q1"`
	Median float64       `json:"median"`
	Q3     float64       `json:"q3"`
	Max    float64       `json:"max"`
	// Outliers lie beyond 1.5 IQR from the quartiles
	Outliers []float64 `json:"outliers,omitempty"`
}

// NormalizedComparison standardizes each metric to z-scores using the
// sample standard deviation, so metrics of different scale can share one
// box plot. A constant metric standardizes to all zeros.
func NormalizedComparison(series domain.TimeSeries, metrics []domain.Metric) ([]BoxStats, error) {
	if series.Empty() {
		return nil, fmt.Errorf("comparison: %w", domain.ErrEmptyWindow)
	}

	out := make([]BoxStats, 0, len(metrics))
	for _, m := range metrics {
		if !m.Valid() {
			return nil, fmt.Errorf("comparison: %w: %q", domain.ErrUnknownMetric, m)
		}
		z := zScores(series.Values(m))
		sort.Float64s(z)
		out = append(out, boxStats(m, z))
	}
	return out, nil
}

func zScores(x []float64) []float64 {
	z := make([]float64, len(x))
	if len(x) < 2 || isConstant(x) {
		return z
	}
	mean, std := stat.MeanStdDev(x, nil)
	for i, v := range x {
		z[i] = (v - mean) / std
	}
	return z
}

func boxStats(m domain.Metric, sorted []float64) BoxStats {
	b := BoxStats{
		Metric: m,
		Min:    sorted[0],
		Q1:     quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q3:     quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}
	iqr := b.Q3 - b.Q1
	lo, hi := b.Q1-1.5*iqr, b.Q3+1.5*iqr
	for _, v := range sorted {
		if v < lo || v > hi {
			b.Outliers = append(b.Outliers, v)
		}
	}
	return b
}

// quantile interpolates linearly between the closest ranks, the same rule
// numpy uses by default. gonum's stat.Quantile offers only empirical and
// a differently anchored interpolation.
func quantile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
