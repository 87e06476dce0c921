// Package calendar holds the date rules shared by every analytics pass:
// the fiscal quarter, bucket boundaries for each frequency, and whether a
// bucket has fully elapsed.
//
// Fiscal quarters run Feb-Apr, May-Jul, Aug-Oct and Nov-Jan. A January date
// belongs to Q4 of the previous year:
//
//	calendar.QuarterOf(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)) // 2024Q4
//
// Weekly buckets start on Monday and cover seven days.
package calendar
