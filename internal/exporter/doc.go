// Package exporter writes aggregated channel periods as downloadable files.
//
// CSVWriter renders a Table as CSV, optionally prefixed with a UTF-8 BOM
// so Excel detects the encoding. WriteXLSX renders the same Table as a
// single-sheet workbook with native numeric and date cells.
//
// PeriodExporter ties both to analytics periods:
//
//	exp := exporter.NewPeriodExporter(logger)
//	err := exp.Export(w, exporter.FormatXLSX, window.Selected)
package exporter
