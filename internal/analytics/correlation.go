package analytics

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"channelpulse/pkg/contracts/domain"
)

// CorrelationEntry is the Pearson coefficient of one metric pair
type CorrelationEntry struct {
	A           domain.Metric `json:"a"`
	B           domain.Metric `json:"b"`
	Coefficient float64       `json:"coefficient"`
}

// CorrelationResult holds the full matrix and the ranked pair list
type CorrelationResult struct {
	Metrics []domain.Metric    `json:"metrics"`
	Matrix  [][]float64        `json:"matrix"`
	Ranked  []CorrelationEntry `json:"ranked"`

	// Degenerate lists metrics with zero variance; their off-diagonal
	// coefficients are reported as 0.
	Degenerate []domain.Metric `json:"degenerate,omitempty"`
}

// Correlate computes pairwise Pearson coefficients over the series. Pairs
// are ranked by absolute coefficient, strongest first.
func Correlate(series domain.TimeSeries, metrics []domain.Metric) (CorrelationResult, error) {
	if len(metrics) < 2 {
		return CorrelationResult{}, fmt.Errorf("correlate: need at least 2 metrics, got %d: %w",
			len(metrics), domain.ErrInsufficientData)
	}
	if series.Len() < 2 {
		return CorrelationResult{}, fmt.Errorf("correlate: need at least 2 records, got %d: %w",
			series.Len(), domain.ErrInsufficientData)
	}
	for _, m := range metrics {
		if !m.Valid() {
			return CorrelationResult{}, fmt.Errorf("correlate: %w: %q", domain.ErrUnknownMetric, m)
		}
	}

	columns := make([][]float64, len(metrics))
	constant := make([]bool, len(metrics))
	result := CorrelationResult{Metrics: append([]domain.Metric(nil), metrics...)}
	for i, m := range metrics {
		columns[i] = series.Values(m)
		if isConstant(columns[i]) {
			constant[i] = true
			result.Degenerate = append(result.Degenerate, m)
		}
	}

	result.Matrix = make([][]float64, len(metrics))
	for i := range metrics {
		result.Matrix[i] = make([]float64, len(metrics))
		result.Matrix[i][i] = 1
	}

	for i := 0; i < len(metrics); i++ {
		for j := i + 1; j < len(metrics); j++ {
			var r float64
			if !constant[i] && !constant[j] {
				r = clampUnit(stat.Correlation(columns[i], columns[j], nil))
			}
			result.Matrix[i][j] = r
			result.Matrix[j][i] = r
			result.Ranked = append(result.Ranked, CorrelationEntry{A: metrics[i], B: metrics[j], Coefficient: r})
		}
	}

	RankCorrelations(result.Ranked)
	return result, nil
}

// RankCorrelations sorts entries by descending |coefficient|, breaking ties
// by metric name so the order is deterministic.
func RankCorrelations(entries []CorrelationEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ai, aj := math.Abs(entries[i].Coefficient), math.Abs(entries[j].Coefficient)
		if ai != aj {
			return ai > aj
		}
		if entries[i].A != entries[j].A {
			return entries[i].A < entries[j].A
		}
		return entries[i].B < entries[j].B
	})
}

// Coefficient looks up the coefficient between a and b
func (r CorrelationResult) Coefficient(a, b domain.Metric) (float64, bool) {
	i, j := -1, -1
	for k, m := range r.Metrics {
		if m == a {
			i = k
		}
		if m == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, false
	}
	return r.Matrix[i][j], true
}

// rounding can push a perfect correlation just past ±1
func clampUnit(r float64) float64 {
	return math.Max(-1, math.Min(1, r))
}

func isConstant(x []float64) bool {
	if len(x) < 2 {
		return true
	}
	for _, v := range x[1:] {
		if v != x[0] {
			return false
		}
	}
	return true
}
