package analytics

import (
	"time"

	"channelpulse/pkg/contracts/domain"
)

// SeasonalBucket is the mean of a metric over all records in one bucket
type SeasonalBucket struct {
	Index int     `json:"index"`
	Label string  `json:"label"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// SeasonalResult groups view averages by weekday and by month. Buckets with
// no records are left out.
type SeasonalResult struct {
	Metric      domain.Metric    `json:"metric"`
	ByDayOfWeek []SeasonalBucket `json:"by_day_of_week"`
	ByMonth     []SeasonalBucket `json:"by_month"`
}

var weekdayLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Seasonality averages views by weekday (Mon=0..Sun=6) and by month (1..12)
func Seasonality(series domain.TimeSeries) SeasonalResult {
	var (
		daySum   [7]float64
		dayCount [7]int
		monSum   [13]float64
		monCount [13]int
	)

	for _, r := range series.Records() {
		dow := weekdayIndex(r.Date)
		daySum[dow] += r.Views
		dayCount[dow]++

		mon := int(r.Date.Month())
		monSum[mon] += r.Views
		monCount[mon]++
	}

	res := SeasonalResult{
		Metric:      domain.MetricViews,
		ByDayOfWeek: make([]SeasonalBucket, 0, 7),
		ByMonth:     make([]SeasonalBucket, 0, 12),
	}
	for i := 0; i < 7; i++ {
		if dayCount[i] == 0 {
			continue
		}
		res.ByDayOfWeek = append(res.ByDayOfWeek, SeasonalBucket{
			Index: i,
			Label: weekdayLabels[i],
			Mean:  daySum[i] / float64(dayCount[i]),
			Count: dayCount[i],
		})
	}
	for m := 1; m <= 12; m++ {
		if monCount[m] == 0 {
			continue
		}
		res.ByMonth = append(res.ByMonth, SeasonalBucket{
			Index: m,
			Label: time.Month(m).String()[:3],
			Mean:  monSum[m] / float64(monCount[m]),
			Count: monCount[m],
		})
	}
	return res
}

// weekdayIndex numbers days from Monday
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
