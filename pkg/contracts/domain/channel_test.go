package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNewTimeSeries(t *testing.T) {
	t.Run("sorts and derives net subscribers", func(t *testing.T) {
		series, err := NewTimeSeries([]MetricRecord{
			{Date: day("2024-03-02"), Views: 20, SubscribersGained: 5, SubscribersLost: 7},
			{Date: day("2024-03-01").Add(15 * time.Hour), Views: 10, SubscribersGained: 3, SubscribersLost: 1},
		})
		require.NoError(t, err)
		require.Equal(t, 2, series.Len())

		assert.Equal(t, day("2024-03-01"), series.First())
		assert.Equal(t, day("2024-03-02"), series.Last())
		assert.Equal(t, 2.0, series.At(0).NetSubscribers)
		assert.Equal(t, -2.0, series.At(1).NetSubscribers)
		assert.Equal(t, []float64{10, 20}, series.Values(MetricViews))
		assert.Equal(t, 0.0, series.Sum(MetricNetSubscribers))
	})

	t.Run("rejects duplicate dates", func(t *testing.T) {
		_, err := NewTimeSeries([]MetricRecord{
			{Date: day("2024-03-01")},
			{Date: day("2024-03-01").Add(2 * time.Hour)},
		})
		var ve ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "DATE", ve.Field)
	})

	t.Run("rejects negative values", func(t *testing.T) {
		_, err := NewTimeSeries([]MetricRecord{{Date: day("2024-03-01"), Likes: -1}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LIKES")
	})

	t.Run("empty input", func(t *testing.T) {
		series, err := NewTimeSeries(nil)
		require.NoError(t, err)
		assert.True(t, series.Empty())
		assert.True(t, series.First().IsZero())
	})
}

func TestTimeSeries_Between(t *testing.T) {
	series, err := NewTimeSeries([]MetricRecord{
		{Date: day("2024-01-01"), Views: 1},
		{Date: day("2024-01-03"), Views: 3},
		{Date: day("2024-01-05"), Views: 5},
		{Date: day("2024-01-07"), Views: 7},
	})
	require.NoError(t, err)

	tests := []struct {
		name       string
		start, end string
		want       []float64
	}{
		{"inclusive bounds", "2024-01-03", "2024-01-05", []float64{3, 5}},
		{"bounds between records", "2024-01-02", "2024-01-06", []float64{3, 5}},
		{"whole series", "2023-12-01", "2024-02-01", []float64{1, 3, 5, 7}},
		{"single day", "2024-01-07", "2024-01-07", []float64{7}},
		{"no overlap", "2024-02-01", "2024-03-01", []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := series.Between(day(tt.start), day(tt.end))
			assert.Equal(t, tt.want, got.Values(MetricViews))
		})
	}
}

func TestParseMetric(t *testing.T) {
	tests := []struct {
		in      string
		want    Metric
		wantErr bool
	}{
		{"VIEWS", MetricViews, false},
		{"watch_hours", MetricWatchHours, false},
		{"Watch Hours", MetricWatchHours, false},
		{"SUBSCRIBERS", MetricNetSubscribers, false},
		{"subscribers_lost", MetricSubscribersLost, false},
		{"impressions", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMetric(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownMetric)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMetric_Label(t *testing.T) {
	assert.Equal(t, "Watch Hours", MetricWatchHours.Label())
	assert.Equal(t, "Views", MetricViews.Label())
	assert.True(t, MetricShares.Tracked())
	assert.False(t, MetricSubscribersGained.Tracked())
}

func TestFrequency_Text(t *testing.T) {
	for _, f := range Frequencies {
		text, err := f.MarshalText()
		require.NoError(t, err)

		var back Frequency
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, f, back)
	}

	f, err := ParseFrequency("Q")
	require.NoError(t, err)
	assert.Equal(t, Quarterly, f)

	_, err = ParseFrequency("yearly")
	assert.ErrorIs(t, err, ErrInvalidFrequency)

	_, err = Frequency(9).MarshalText()
	assert.Error(t, err)
}
