package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"channelpulse/pkg/contracts/domain"
)

const sampleCSV = `DATE,VIEWS,WATCH_HOURS,SUBSCRIBERS_GAINED,SUBSCRIBERS_LOST,LIKES,COMMENTS,SHARES
2024-03-02,200,20.5,5,7,10,2,1
2024-03-01,100,10,3,1,5,1,0
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseCSV(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		series, err := ParseCSV(strings.NewReader(sampleCSV))
		require.NoError(t, err)
		require.Equal(t, 2, series.Len())

		first := series.At(0)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), first.Date)
		assert.Equal(t, 100.0, first.Views)
		assert.Equal(t, 2.0, first.NetSubscribers)
		assert.Equal(t, 20.5, series.At(1).WatchHours)
		assert.Equal(t, -2.0, series.At(1).NetSubscribers)
	})

	t.Run("header is case-insensitive with BOM and extra columns", func(t *testing.T) {
		in := "\ufeffdate, Views ,watch hours,Subscribers_Gained,subscribers_lost,likes,comments,shares,NOTES\n" +
			"01/15/2024,1,2,3,4,5,6,7,hello\n" +
			"2024/01/16,1,2,3,4,5,6,7,\n"
		series, err := ParseCSV(strings.NewReader(in))
		require.NoError(t, err)
		require.Equal(t, 2, series.Len())
		assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), series.First())
		assert.Equal(t, 7.0, series.At(1).Shares)
	})

	t.Run("blank lines are skipped", func(t *testing.T) {
		series, err := ParseCSV(strings.NewReader(sampleCSV + ",,,,,,,\n"))
		require.NoError(t, err)
		assert.Equal(t, 2, series.Len())
	})

	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"empty file", "", "empty"},
		{"missing columns", "DATE,VIEWS\n2024-01-01,1\n", "SUBSCRIBERS_GAINED"},
		{"negative value", strings.Replace(sampleCSV, ",200,", ",-200,", 1), "VIEWS"},
		{"non-numeric value", strings.Replace(sampleCSV, ",200,", ",lots,", 1), "not a number"},
		{"bad date", strings.Replace(sampleCSV, "2024-03-02", "yesterday", 1), "unrecognized date"},
		{"duplicate dates", strings.Replace(sampleCSV, "2024-03-02", "2024-03-01", 1), "DATE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrCorruptDataset)
			assert.ErrorIs(t, err, domain.ErrDataLoadFailure)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-02-29", "2024/02/29", "02/29/2024", "2024-02-29 18:30:00", "2024-02-29T23:00:00+03:00"} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDate("")
	assert.Error(t, err)
	_, err = ParseDate("29.02.2024")
	assert.Error(t, err)
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	rows := [][]any{
		{"Date", "Views", "Watch_Hours", "Subscribers_Gained", "Subscribers_Lost", "Likes", "Comments", "Shares"},
		{time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), 120, 12.5, 4, 1, 9, 3, 2},
		{"2024-05-02", 80, 8, 1, 2, 4, 0, 0},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "channel.xlsx")
	require.NoError(t, f.SaveAs(path))

	series, err := NewLoader(path, FormatAuto, nil).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, series.Len())
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), series.First())
	assert.Equal(t, 12.5, series.At(0).WatchHours)
	assert.Equal(t, -1.0, series.At(1).NetSubscribers)
}

func TestParseXLSXCorrupt(t *testing.T) {
	_, err := ParseXLSX(strings.NewReader("not a workbook"))
	assert.ErrorIs(t, err, domain.ErrCorruptDataset)
}

func TestLoader(t *testing.T) {
	t.Run("load csv", func(t *testing.T) {
		path := writeFile(t, "channel.csv", sampleCSV)
		loader := NewLoader(path, FormatAuto, nil)
		assert.Equal(t, FormatCSV, loader.Format())

		series, err := loader.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, series.Len())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewLoader(filepath.Join(t.TempDir(), "nope.csv"), FormatCSV, nil).Load(context.Background())
		assert.ErrorIs(t, err, domain.ErrDatasetNotFound)
		assert.ErrorIs(t, err, domain.ErrDataLoadFailure)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := NewLoader(t.TempDir(), FormatCSV, nil).Load(context.Background())
		assert.ErrorIs(t, err, domain.ErrDatasetNotFound)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewLoader(writeFile(t, "c.csv", sampleCSV), FormatCSV, nil).Load(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatAuto, false},
		{"auto", FormatAuto, false},
		{"CSV", FormatCSV, false},
		{" xlsx ", FormatXLSX, false},
		{"parquet", FormatAuto, true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	assert.Equal(t, FormatXLSX, FormatAuto.Resolve("data/Channel.XLSX"))
	assert.Equal(t, FormatCSV, FormatAuto.Resolve("data/channel.txt"))
	assert.Equal(t, FormatCSV, FormatCSV.Resolve("data/channel.xlsx"))
}
