package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"channelpulse/pkg/contracts/domain"
)

// Column names required in the header row
const (
	ColumnDate              = "DATE"
	ColumnViews             = "VIEWS"
	ColumnWatchHours        = "WATCH_HOURS"
	ColumnSubscribersGained = "SUBSCRIBERS_GAINED"
	ColumnSubscribersLost   = "SUBSCRIBERS_LOST"
	ColumnLikes             = "LIKES"
	ColumnComments          = "COMMENTS"
	ColumnShares            = "SHARES"
)

// RequiredColumns lists the header in canonical order
var RequiredColumns = []string{
	ColumnDate,
	ColumnViews,
	ColumnWatchHours,
	ColumnSubscribersGained,
	ColumnSubscribersLost,
	ColumnLikes,
	ColumnComments,
	ColumnShares,
}

// DateLayouts are tried in order when parsing the DATE column
var DateLayouts = []string{
	time.DateOnly,
	"2006/01/02",
	"01/02/2006",
	time.DateTime,
	time.RFC3339,
}

const utf8BOM = "\ufeff"

// header maps each required column to its position in a row
type header map[string]int

func normalizeColumn(name string) string {
	name = strings.TrimPrefix(name, utf8BOM)
	name = strings.ToUpper(strings.TrimSpace(name))
	return strings.ReplaceAll(name, " ", "_")
}

func parseHeader(row []string) (header, error) {
	h := make(header, len(RequiredColumns))
	for i, cell := range row {
		name := normalizeColumn(cell)
		if _, seen := h[name]; !seen {
			h[name] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := h[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", domain.ErrCorruptDataset, strings.Join(missing, ", "))
	}
	return h, nil
}

func (h header) cell(row []string, col string) string {
	i := h[col]
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseRecord converts one data row; line is the 1-based source line used
// in error messages.
func (h header) parseRecord(row []string, line int) (domain.MetricRecord, error) {
	date, err := ParseDate(h.cell(row, ColumnDate))
	if err != nil {
		return domain.MetricRecord{}, fmt.Errorf("%w: line %d: %v", domain.ErrCorruptDataset, line, err)
	}

	rec := domain.MetricRecord{Date: date}
	fields := []struct {
		col string
		dst *float64
	}{
		{ColumnViews, &rec.Views},
		{ColumnWatchHours, &rec.WatchHours},
		{ColumnSubscribersGained, &rec.SubscribersGained},
		{ColumnSubscribersLost, &rec.SubscribersLost},
		{ColumnLikes, &rec.Likes},
		{ColumnComments, &rec.Comments},
		{ColumnShares, &rec.Shares},
	}
	for _, f := range fields {
		v, err := parseNumber(h.cell(row, f.col))
		if err != nil {
			return domain.MetricRecord{}, fmt.Errorf("%w: line %d: column %s: %v", domain.ErrCorruptDataset, line, f.col, err)
		}
		*f.dst = v
	}
	return rec, nil
}

// ParseDate accepts any of DateLayouts and returns the UTC calendar day
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.TruncateDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("must be a finite non-negative number, got %q", s)
	}
	return v, nil
}
