package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"channelpulse/pkg/contracts/domain"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

// viewsSeries builds consecutive daily records from start. Watch hours are a
// tenth of views and likes a twentieth.
func viewsSeries(t testing.TB, start string, views ...float64) domain.TimeSeries {
	t.Helper()
	first := day(start)
	records := make([]domain.MetricRecord, len(views))
	for i, v := range views {
		records[i] = domain.MetricRecord{
			Date:       first.AddDate(0, 0, i),
			Views:      v,
			WatchHours: v / 10,
			Likes:      v / 20,
		}
	}
	return mustSeries(t, records)
}

func mustSeries(t testing.TB, records []domain.MetricRecord) domain.TimeSeries {
	t.Helper()
	series, err := domain.NewTimeSeries(records)
	require.NoError(t, err)
	return series
}

// syntheticSeries generates n days of deterministic, weekly-seasonal data
func syntheticSeries(t testing.TB, start string, n int) domain.TimeSeries {
	t.Helper()
	first := day(start)
	records := make([]domain.MetricRecord, n)
	for i := range records {
		weekday := float64((i % 7) + 1)
		trend := float64(i)
		records[i] = domain.MetricRecord{
			Date:              first.AddDate(0, 0, i),
			Views:             1000 + 10*trend + 50*weekday,
			WatchHours:        80 + trend + 3*weekday,
			SubscribersGained: 10 + float64(i%5),
			SubscribersLost:   float64(i % 3),
			Likes:             40 + trend/2 + weekday,
			Comments:          5 + float64(i%4),
			Shares:            2 + float64(i%6),
		}
	}
	return mustSeries(t, records)
}
