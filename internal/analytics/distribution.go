package analytics

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"channelpulse/pkg/contracts/domain"
)

const (
	// DefaultHistogramBins matches the dashboard histogram
	DefaultHistogramBins = 30
	// MaxHistogramBins bounds user supplied bin counts
	MaxHistogramBins = 200
	// NormalityAlpha is the significance level of the normality test
	NormalityAlpha = 0.05
)

// HistogramBin is one equal-width bin; the last bin includes its upper edge
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// QQPoint pairs a theoretical normal quantile with a sorted sample value
type QQPoint struct {
	Theoretical float64 `json:"theoretical"`
	Sample      float64 `json:"sample"`
}

// QQFit is the least-squares line through the QQ points
type QQFit struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R         float64 `json:"r"`
}

// DistributionResult describes the shape of one metric over the window
type DistributionResult struct {
	Metric    domain.Metric  `json:"metric"`
	Count     int            `json:"count"`
	Mean      float64        `json:"mean"`
	StdDev    float64        `json:"std_dev"`
	Min       float64        `json:"min"`
	Max       float64        `json:"max"`
	Histogram []HistogramBin `json:"histogram"`
	QQ        []QQPoint      `json:"qq"`
	QQFit     QQFit          `json:"qq_fit"`
	Normality NormalityTest  `json:"normality"`
	Skewness  float64        `json:"skewness"`
	Kurtosis  float64        `json:"kurtosis"`
	Warnings  []string       `json:"warnings,omitempty"`
}

// AnalyzeDistribution builds the histogram, QQ coordinates, normality test
// and moment statistics for m. Skewness and kurtosis are the biased
// population moments; kurtosis is reported as excess over the normal.
func AnalyzeDistribution(series domain.TimeSeries, m domain.Metric, bins int) (DistributionResult, error) {
	if !m.Valid() {
		return DistributionResult{}, fmt.Errorf("distribution: %w: %q", domain.ErrUnknownMetric, m)
	}
	if series.Empty() {
		return DistributionResult{}, fmt.Errorf("distribution: %w", domain.ErrEmptyWindow)
	}
	if bins <= 0 {
		bins = DefaultHistogramBins
	}
	if bins > MaxHistogramBins {
		return DistributionResult{}, fmt.Errorf("distribution: bins must be at most %d, got %d", MaxHistogramBins, bins)
	}

	x := series.Values(m)
	sort.Float64s(x)

	res := DistributionResult{
		Metric: m,
		Count:  len(x),
		Mean:   stat.Mean(x, nil),
		Min:    x[0],
		Max:    x[len(x)-1],
	}
	if len(x) > 1 {
		res.StdDev = stat.StdDev(x, nil)
	}

	res.Histogram = histogram(x, bins)
	res.QQ, res.QQFit = probPlot(x)

	if isConstant(x) {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s is constant over the window; shape statistics are undefined", m))
	} else {
		m2 := stat.Moment(2, x, nil)
		res.Skewness = stat.Moment(3, x, nil) / math.Pow(m2, 1.5)
		res.Kurtosis = stat.Moment(4, x, nil)/(m2*m2) - 3
	}

	normality, err := NormalTest(x)
	if err != nil {
		res.Warnings = append(res.Warnings, err.Error())
	}
	res.Normality = normality

	return res, nil
}

// histogram counts sorted values into equal-width bins over [min, max].
// A zero-width range is widened by 0.5 on each side.
func histogram(sorted []float64, bins int) []HistogramBin {
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	edges := floats.Span(make([]float64, bins+1), lo, hi)
	dividers := append([]float64(nil), edges...)
	// stat.Histogram bins are half-open; nudge the top edge so max lands in the last bin
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)

	out := make([]HistogramBin, bins)
	for i := range out {
		out[i] = HistogramBin{Lower: edges[i], Upper: edges[i+1], Count: int(counts[i])}
	}
	return out
}

// probPlot pairs sorted values with normal quantiles of Filliben's
// order-statistic medians and fits a least-squares line through them.
func probPlot(sorted []float64) ([]QQPoint, QQFit) {
	medians := orderStatisticMedians(len(sorted))
	theoretical := make([]float64, len(sorted))
	points := make([]QQPoint, len(sorted))
	for i, p := range medians {
		theoretical[i] = distuv.UnitNormal.Quantile(p)
		points[i] = QQPoint{Theoretical: theoretical[i], Sample: sorted[i]}
	}

	if len(sorted) < 2 || isConstant(sorted) {
		return points, QQFit{Intercept: sorted[0]}
	}

	intercept, slope := stat.LinearRegression(theoretical, sorted, nil, false)
	return points, QQFit{
		Slope:     slope,
		Intercept: intercept,
		R:         stat.Correlation(theoretical, sorted, nil),
	}
}

func orderStatisticMedians(n int) []float64 {
	v := make([]float64, n)
	last := math.Pow(0.5, 1/float64(n))
	v[n-1] = last
	v[0] = 1 - last
	for i := 2; i < n; i++ {
		v[i-1] = (float64(i) - 0.3175) / (float64(n) + 0.365)
	}
	return v
}
