package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Quarter is a fiscal quarter. Quarters start in February, May, August and
// November, so January belongs to Q4 of the previous year.
type Quarter struct {
	Year   int `json:"year"`
	Number int `json:"quarter"`
}

// QuarterOf maps a date to its fiscal quarter
func QuarterOf(t time.Time) Quarter {
	year, month := t.Year(), t.Month()
	if month == time.January {
		return Quarter{Year: year - 1, Number: 4}
	}
	return Quarter{Year: year, Number: (int(month)-2)/3 + 1}
}

// ParseQuarter parses labels of the form "2024Q4"
func ParseQuarter(s string) (Quarter, error) {
	year, num, ok := strings.Cut(strings.ToUpper(strings.TrimSpace(s)), "Q")
	if !ok {
		return Quarter{}, fmt.Errorf("invalid quarter %q", s)
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return Quarter{}, fmt.Errorf("invalid quarter year %q: %w", s, err)
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 1 || n > 4 {
		return Quarter{}, fmt.Errorf("invalid quarter number %q", s)
	}
	return Quarter{Year: y, Number: n}, nil
}

func (q Quarter) String() string {
	return fmt.Sprintf("%dQ%d", q.Year, q.Number)
}

// Start returns the first day of the quarter
func (q Quarter) Start() time.Time {
	month := time.February + time.Month(3*(q.Number-1))
	return time.Date(q.Year, month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the first day after the quarter
func (q Quarter) End() time.Time {
	return q.Start().AddDate(0, 3, 0)
}

// Compare returns -1, 0 or +1 as q is before, equal to or after o
func (q Quarter) Compare(o Quarter) int {
	switch {
	case q.Year < o.Year:
		return -1
	case q.Year > o.Year:
		return 1
	case q.Number < o.Number:
		return -1
	case q.Number > o.Number:
		return 1
	}
	return 0
}

// Before reports whether q strictly precedes o
func (q Quarter) Before(o Quarter) bool {
	return q.Compare(o) < 0
}

// Contains reports whether t falls inside the quarter
func (q Quarter) Contains(t time.Time) bool {
	return QuarterOf(t) == q
}
