package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"channelpulse/pkg/contracts/domain"
)

func TestRollingMean(t *testing.T) {
	series := viewsSeries(t, "2024-03-01", 1, 2, 3, 4, 5)

	t.Run("trailing window", func(t *testing.T) {
		points, err := RollingMean(series, domain.MetricViews, 3)
		require.NoError(t, err)
		require.Len(t, points, 3)
		assert.Equal(t, day("2024-03-03"), points[0].Date)
		for i, want := range []float64{2, 3, 4} {
			assert.InDelta(t, want, points[i].Value, 1e-9)
		}
	})

	t.Run("window of one is the series", func(t *testing.T) {
		points, err := RollingMean(series, domain.MetricViews, 1)
		require.NoError(t, err)
		assert.Len(t, points, series.Len())
	})

	t.Run("window longer than series", func(t *testing.T) {
		points, err := RollingMean(series, domain.MetricViews, DefaultRollingWindow)
		require.NoError(t, err)
		assert.Empty(t, points)
	})

	t.Run("invalid window", func(t *testing.T) {
		_, err := RollingMean(series, domain.MetricViews, 0)
		assert.Error(t, err)
	})
}
