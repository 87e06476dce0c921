package analytics

import (
	"time"

	"channelpulse/internal/calendar"
	"channelpulse/pkg/contracts/domain"
)

// FilterPeriods keeps the periods selected by the inclusive [start, end]
// date range. Daily, weekly and monthly periods are kept when their start
// falls in the range. Quarterly periods are kept when their quarter lies
// between the quarters containing start and end.
func FilterPeriods(periods []Period, start, end time.Time) []Period {
	start, end = domain.TruncateDay(start), domain.TruncateDay(end)
	out := make([]Period, 0, len(periods))

	for _, p := range periods {
		if p.Frequency == domain.Quarterly {
			q := calendar.QuarterOf(p.Start)
			if q.Compare(calendar.QuarterOf(start)) >= 0 && q.Compare(calendar.QuarterOf(end)) <= 0 {
				out = append(out, p)
			}
			continue
		}
		if !p.Start.Before(start) && !p.Start.After(end) {
			out = append(out, p)
		}
	}
	return out
}
