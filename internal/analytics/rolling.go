package analytics

import (
	"fmt"

	"channelpulse/pkg/contracts/domain"
)

// DefaultRollingWindow is the trend smoothing window in records
const DefaultRollingWindow = 7

// RollingMean returns the trailing mean of m over window consecutive
// records. Positions without a full window are omitted.
func RollingMean(series domain.TimeSeries, m domain.Metric, window int) ([]Point, error) {
	if window < 1 {
		return nil, fmt.Errorf("rolling window must be positive, got %d", window)
	}

	records := series.Records()
	out := make([]Point, 0, max(0, len(records)-window+1))

	var sum float64
	for i, r := range records {
		sum += r.Value(m)
		if i >= window {
			sum -= records[i-window].Value(m)
		}
		if i >= window-1 {
			out = append(out, Point{Date: r.Date, Value: sum / float64(window)})
		}
	}
	return out, nil
}
