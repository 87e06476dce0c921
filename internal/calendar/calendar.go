package calendar

import (
	"fmt"
	"time"

	"channelpulse/pkg/contracts/domain"
)

// Clock supplies the reference instant for completeness checks
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }

// ZoneClock reads the wall clock in Location, so completeness follows that
// zone's calendar day. A nil Location behaves like SystemClock.
type ZoneClock struct {
	Location *time.Location
}

func (c ZoneClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// BucketStart returns the first day of the bucket that contains t
func BucketStart(t time.Time, freq domain.Frequency) time.Time {
	d := domain.TruncateDay(t)
	switch freq {
	case domain.Daily:
		return d
	case domain.Weekly:
		offset := (int(d.Weekday()) + 6) % 7 // days since Monday
		return d.AddDate(0, 0, -offset)
	case domain.Monthly:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	case domain.Quarterly:
		return QuarterOf(d).Start()
	}
	panic(fmt.Sprintf("calendar: unhandled frequency %d", int(freq)))
}

// BucketEnd returns the exclusive end of the bucket starting at start
func BucketEnd(start time.Time, freq domain.Frequency) time.Time {
	switch freq {
	case domain.Daily:
		return start.AddDate(0, 0, 1)
	case domain.Weekly:
		return start.AddDate(0, 0, 7)
	case domain.Monthly:
		return start.AddDate(0, 1, 0)
	case domain.Quarterly:
		return QuarterOf(start).End()
	}
	panic(fmt.Sprintf("calendar: unhandled frequency %d", int(freq)))
}

// Label renders the bucket index: an ISO date, or "2024Q4" for quarters
func Label(start time.Time, freq domain.Frequency) string {
	if freq == domain.Quarterly {
		return QuarterOf(start).String()
	}
	return start.Format(time.DateOnly)
}

// IsComplete reports whether the bucket starting at start has fully elapsed
// relative to now. Only the trailing bucket of a series is normally partial.
func IsComplete(start time.Time, freq domain.Frequency, now time.Time) bool {
	wall := wallClock(now)
	switch freq {
	case domain.Daily:
		return start.Before(domain.TruncateDay(now))
	case domain.Weekly:
		return start.AddDate(0, 0, 6).Before(wall)
	case domain.Monthly:
		return !BucketEnd(start, domain.Monthly).After(wall)
	case domain.Quarterly:
		return QuarterOf(start).Before(QuarterOf(wall))
	}
	panic(fmt.Sprintf("calendar: unhandled frequency %d", int(freq)))
}

// wallClock reinterprets now's local wall time in UTC so it can be compared
// with series dates, which are stored as UTC midnights.
func wallClock(now time.Time) time.Time {
	y, m, d := now.Date()
	h, mi, s := now.Clock()
	return time.Date(y, m, d, h, mi, s, now.Nanosecond(), time.UTC)
}
