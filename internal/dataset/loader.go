package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"channelpulse/pkg/contracts/domain"
)

// Format is the encoding of a dataset file
type Format string

const (
	FormatAuto Format = ""
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv", "xlsx" or "" (detect from the file extension)
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatAuto, FormatCSV, FormatXLSX:
		return f, nil
	case "auto":
		return FormatAuto, nil
	}
	return FormatAuto, fmt.Errorf("unsupported dataset format %q", s)
}

// Resolve picks a concrete format for path
func (f Format) Resolve(path string) Format {
	if f != FormatAuto {
		return f
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	}
	return FormatCSV
}

// Loader reads a dataset file from disk
type Loader struct {
	path   string
	format Format
	logger *slog.Logger
}

// NewLoader creates a loader for path. A nil logger uses slog.Default.
func NewLoader(path string, format Format, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		path:   path,
		format: format.Resolve(path),
		logger: logger.With("component", "dataset_loader"),
	}
}

// Path returns the dataset file path
func (l *Loader) Path() string { return l.path }

// Format returns the resolved file format
func (l *Loader) Format() Format { return l.format }

// Load reads and parses the whole file
func (l *Loader) Load(ctx context.Context) (domain.TimeSeries, error) {
	data, _, err := l.read(ctx)
	if err != nil {
		return domain.TimeSeries{}, err
	}
	return l.parse(ctx, data)
}

func (l *Loader) read(ctx context.Context) ([]byte, fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	info, err := os.Stat(l.path)
	if err != nil {
		return nil, nil, statError(l.path, err)
	}
	if info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s is a directory", domain.ErrDatasetNotFound, l.path)
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, nil, statError(l.path, err)
	}
	return data, info, nil
}

func (l *Loader) parse(ctx context.Context, data []byte) (domain.TimeSeries, error) {
	start := time.Now()

	var (
		series domain.TimeSeries
		err    error
	)
	switch l.format {
	case FormatXLSX:
		series, err = ParseXLSX(bytes.NewReader(data))
	default:
		series, err = ParseCSV(bytes.NewReader(data))
	}
	if err != nil {
		l.logger.ErrorContext(ctx, "dataset parse failed",
			"path", l.path,
			"format", string(l.format),
			"error", err,
		)
		return domain.TimeSeries{}, fmt.Errorf("load %s: %w", l.path, err)
	}

	l.logger.InfoContext(ctx, "dataset loaded",
		"path", l.path,
		"format", string(l.format),
		"records", series.Len(),
		"first", series.First().Format(time.DateOnly),
		"last", series.Last().Format(time.DateOnly),
		"duration", time.Since(start),
	)
	return series, nil
}

func statError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", domain.ErrDatasetNotFound, path)
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrDataLoadFailure, path, err)
}

// ParseCSV reads a dataset in CSV form
func ParseCSV(r io.Reader) (domain.TimeSeries, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	head, err := reader.Read()
	if err == io.EOF {
		return domain.TimeSeries{}, fmt.Errorf("%w: file is empty", domain.ErrCorruptDataset)
	}
	if err != nil {
		return domain.TimeSeries{}, fmt.Errorf("%w: read header: %v", domain.ErrCorruptDataset, err)
	}
	h, err := parseHeader(head)
	if err != nil {
		return domain.TimeSeries{}, err
	}

	var records []domain.MetricRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return domain.TimeSeries{}, fmt.Errorf("%w: %v", domain.ErrCorruptDataset, err)
		}
		if blank(row) {
			continue
		}
		line, _ := reader.FieldPos(0)
		rec, err := h.parseRecord(row, line)
		if err != nil {
			return domain.TimeSeries{}, err
		}
		records = append(records, rec)
	}
	return buildSeries(records)
}

// ParseXLSX reads the first sheet of a workbook
func ParseXLSX(r io.Reader) (domain.TimeSeries, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return domain.TimeSeries{}, fmt.Errorf("%w: open workbook: %v", domain.ErrCorruptDataset, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return domain.TimeSeries{}, fmt.Errorf("%w: workbook has no sheets", domain.ErrCorruptDataset)
	}

	// raw values keep numbers unformatted; dates then arrive as serials
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return domain.TimeSeries{}, fmt.Errorf("%w: read sheet %q: %v", domain.ErrCorruptDataset, sheets[0], err)
	}
	if len(rows) == 0 {
		return domain.TimeSeries{}, fmt.Errorf("%w: sheet %q is empty", domain.ErrCorruptDataset, sheets[0])
	}

	h, err := parseHeader(rows[0])
	if err != nil {
		return domain.TimeSeries{}, err
	}

	records := make([]domain.MetricRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		if di := h[ColumnDate]; di < len(row) {
			row[di] = excelDate(row[di])
		}
		rec, err := h.parseRecord(row, i+2)
		if err != nil {
			return domain.TimeSeries{}, err
		}
		records = append(records, rec)
	}
	return buildSeries(records)
}

// excelDate rewrites a date serial number as an ISO date. Text dates pass
// through unchanged.
func excelDate(cell string) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return cell
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return cell
	}
	return t.Format(time.DateOnly)
}

func buildSeries(records []domain.MetricRecord) (domain.TimeSeries, error) {
	series, err := domain.NewTimeSeries(records)
	if err != nil {
		return domain.TimeSeries{}, fmt.Errorf("%w: %v", domain.ErrCorruptDataset, err)
	}
	return series, nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
