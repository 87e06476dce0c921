package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"channelpulse/internal/analytics"
	"channelpulse/pkg/contracts/domain"
)

// PeriodExporter writes aggregated periods as CSV or XLSX
type PeriodExporter struct {
	csv    *CSVWriter
	logger *slog.Logger
}

// NewPeriodExporter creates a period exporter
func NewPeriodExporter(logger *slog.Logger) *PeriodExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &PeriodExporter{
		csv:    NewCSVWriter(logger),
		logger: logger,
	}
}

// PeriodTable lays out one row per period with the tracked metric sums.
// End is reported as the last day inside the period.
func PeriodTable(periods []analytics.Period) Table {
	headers := []string{"PERIOD", "START", "END", "DAYS", "COMPLETE"}
	for _, m := range domain.TrackedMetrics {
		headers = append(headers, string(m))
	}

	rows := make([][]any, 0, len(periods))
	for _, p := range periods {
		row := []any{p.Label, p.Start, p.End.AddDate(0, 0, -1), p.Days, p.Complete}
		for _, m := range domain.TrackedMetrics {
			row = append(row, p.Value(m))
		}
		rows = append(rows, row)
	}

	return Table{Sheet: "Periods", Headers: headers, Rows: rows}
}

// Export writes periods to w in the given format
func (e *PeriodExporter) Export(w io.Writer, format Format, periods []analytics.Period) error {
	table := PeriodTable(periods)

	e.logger.Debug("Exporting periods",
		slog.String("format", string(format)),
		slog.Int("periods", len(periods)))

	switch format {
	case FormatCSV:
		return e.csv.Write(w, table, WriteOptions{BOMPrefix: true})
	case FormatXLSX:
		return WriteXLSX(w, table)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// Filename suggests a download name, e.g. "channel_weekly_2024-01-01_2024-03-31.csv"
func Filename(req analytics.ViewRequest, format Format) string {
	return fmt.Sprintf("channel_%s_%s_%s%s", req.Frequency,
		req.Start.Format(time.DateOnly), req.End.Format(time.DateOnly), format.Extension())
}
