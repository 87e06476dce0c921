package analytics

import "channelpulse/pkg/contracts/domain"

// Delta is the change between the last two periods of a series
type Delta struct {
	Absolute float64 `json:"absolute"`
	Percent  float64 `json:"percent"`

	// Guarded is set when the previous period was zero and Percent was
	// reported as 0 instead of an undefined ratio.
	Guarded bool `json:"guarded,omitempty"`
}

// PeriodDelta compares the last period with the one before it. With fewer
// than two periods the delta is zero.
//
// A zero previous value yields Percent 0. This flattens "undefined growth
// from zero" into "no growth"; Guarded records when that happened.
func PeriodDelta(periods []Period, m domain.Metric) Delta {
	if len(periods) < 2 {
		return Delta{}
	}
	last := periods[len(periods)-1].Value(m)
	prev := periods[len(periods)-2].Value(m)
	return delta(last, prev)
}

func delta(last, prev float64) Delta {
	abs := last - prev
	if prev == 0 {
		return Delta{Absolute: abs, Guarded: abs != 0}
	}
	return Delta{Absolute: abs, Percent: abs / prev * 100}
}
