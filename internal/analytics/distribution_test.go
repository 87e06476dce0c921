package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"channelpulse/pkg/contracts/domain"
)

func TestAnalyzeDistribution(t *testing.T) {
	t.Run("histogram edges and counts", func(t *testing.T) {
		series := viewsSeries(t, "2024-01-01", 10, 9, 8, 7, 6, 5, 4, 3, 2, 1)

		res, err := AnalyzeDistribution(series, domain.MetricViews, 3)
		require.NoError(t, err)

		require.Len(t, res.Histogram, 3)
		assert.Equal(t, []HistogramBin{
			{Lower: 1, Upper: 4, Count: 3},
			{Lower: 4, Upper: 7, Count: 3},
			{Lower: 7, Upper: 10, Count: 4},
		}, res.Histogram)
		assert.Equal(t, 10, res.Count)
		assert.InDelta(t, 5.5, res.Mean, 1e-9)
		assert.Equal(t, 1.0, res.Min)
		assert.Equal(t, 10.0, res.Max)
		assert.InDelta(t, 0.0, res.Skewness, 1e-9)
		assert.True(t, res.Normality.Defined)
	})

	t.Run("default bin count", func(t *testing.T) {
		res, err := AnalyzeDistribution(viewsSeries(t, "2024-01-01", 1, 2, 3), domain.MetricViews, 0)
		require.NoError(t, err)
		assert.Len(t, res.Histogram, DefaultHistogramBins)

		total := 0
		for _, b := range res.Histogram {
			total += b.Count
		}
		assert.Equal(t, 3, total)
	})

	t.Run("qq plot of a symmetric sample", func(t *testing.T) {
		res, err := AnalyzeDistribution(viewsSeries(t, "2024-01-01", 3, 1, 2), domain.MetricViews, 5)
		require.NoError(t, err)

		require.Len(t, res.QQ, 3)
		assert.InDelta(t, 0.0, res.QQ[1].Theoretical, 1e-9)
		assert.InDelta(t, -res.QQ[0].Theoretical, res.QQ[2].Theoretical, 1e-9)
		assert.Equal(t, []float64{1, 2, 3}, []float64{res.QQ[0].Sample, res.QQ[1].Sample, res.QQ[2].Sample})
		assert.InDelta(t, 2.0, res.QQFit.Intercept, 1e-9)
		assert.InDelta(t, 1.0, res.QQFit.R, 1e-9)
		assert.Greater(t, res.QQFit.Slope, 0.0)
	})

	t.Run("small sample warns instead of failing", func(t *testing.T) {
		res, err := AnalyzeDistribution(viewsSeries(t, "2024-01-01", 1, 2, 4), domain.MetricViews, 10)
		require.NoError(t, err)
		assert.False(t, res.Normality.Defined)
		require.NotEmpty(t, res.Warnings)
		assert.Contains(t, res.Warnings[0], "at least 8")
	})

	t.Run("constant data", func(t *testing.T) {
		res, err := AnalyzeDistribution(viewsSeries(t, "2024-01-01", 5, 5, 5, 5, 5, 5, 5, 5), domain.MetricViews, 0)
		require.NoError(t, err)

		total := 0
		for _, b := range res.Histogram {
			total += b.Count
		}
		assert.Equal(t, 8, total)
		assert.Equal(t, 4.5, res.Histogram[0].Lower)
		assert.InDelta(t, 5.5, res.Histogram[len(res.Histogram)-1].Upper, 1e-12)
		assert.Zero(t, res.Skewness)
		assert.Zero(t, res.Kurtosis)
		assert.Zero(t, res.StdDev)
		assert.False(t, res.Normality.Defined)
		assert.Len(t, res.Warnings, 2)
		assert.Equal(t, 5.0, res.QQFit.Intercept)
	})

	t.Run("shape statistics are finite", func(t *testing.T) {
		res, err := AnalyzeDistribution(syntheticSeries(t, "2024-01-01", 90), domain.MetricLikes, 20)
		require.NoError(t, err)
		for _, v := range []float64{res.Mean, res.StdDev, res.Skewness, res.Kurtosis, res.Normality.PValue} {
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
		}
	})

	t.Run("errors", func(t *testing.T) {
		_, err := AnalyzeDistribution(domain.TimeSeries{}, domain.MetricViews, 0)
		assert.ErrorIs(t, err, domain.ErrEmptyWindow)

		_, err = AnalyzeDistribution(viewsSeries(t, "2024-01-01", 1), "REVENUE", 0)
		assert.ErrorIs(t, err, domain.ErrUnknownMetric)

		_, err = AnalyzeDistribution(viewsSeries(t, "2024-01-01", 1), domain.MetricViews, MaxHistogramBins+1)
		assert.Error(t, err)
	})
}

func TestNormalTest(t *testing.T) {
	// reference sample with published skewtest z = 2.7788579769903414
	x := []float64{148, 154, 158, 160, 161, 162, 166, 170, 182, 195, 236}

	t.Run("skewness transform", func(t *testing.T) {
		assert.InDelta(t, 2.7788579769903414, skewZ(1.678543901586165, float64(len(x))), 1e-9)
	})

	t.Run("omnibus statistic", func(t *testing.T) {
		res, err := NormalTest(x)
		require.NoError(t, err)
		assert.True(t, res.Defined)
		assert.InDelta(t, 13.034263, res.Statistic, 1e-5)
		assert.InDelta(t, 0.0014779, res.PValue, 1e-6)
		assert.False(t, res.Normal)
	})

	t.Run("too few samples", func(t *testing.T) {
		_, err := NormalTest(x[:MinNormalitySamples-1])
		assert.ErrorIs(t, err, domain.ErrInsufficientData)
	})

	t.Run("constant sample", func(t *testing.T) {
		_, err := NormalTest([]float64{1, 1, 1, 1, 1, 1, 1, 1, 1})
		assert.ErrorIs(t, err, domain.ErrInsufficientData)
	})
}
