// Package dataset loads the daily channel metrics file into a
// domain.TimeSeries and keeps the parsed snapshot cached until the file
// changes.
//
// Both CSV and XLSX sources are supported. The first row is a header naming
// the columns DATE, VIEWS, WATCH_HOURS, SUBSCRIBERS_GAINED, SUBSCRIBERS_LOST,
// LIKES, COMMENTS and SHARES in any order; other columns are ignored.
package dataset
