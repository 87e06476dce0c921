package exporter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVWriter_Write(t *testing.T) {
	tests := []struct {
		name     string
		table    Table
		options  WriteOptions
		validate func(t *testing.T, content []byte)
	}{
		{
			name: "basic write with headers",
			table: Table{
				Headers: []string{"PERIOD", "VIEWS", "COMPLETE"},
				Rows: [][]any{
					{"2024-03-04", 450.0, false},
					{"2024-02-26", 1200.5, true},
				},
			},
			validate: func(t *testing.T, content []byte) {
				lines := strings.Split(strings.TrimSpace(string(content)), "\n")
				require.Len(t, lines, 3)
				assert.Equal(t, "PERIOD,VIEWS,COMPLETE", lines[0])
				assert.Equal(t, "2024-03-04,450,false", lines[1])
				assert.Equal(t, "2024-02-26,1200.5,true", lines[2])
			},
		},
		{
			name: "write with BOM prefix",
			table: Table{
				Headers: []string{"START"},
				Rows:    [][]any{{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}},
			},
			options: WriteOptions{BOMPrefix: true},
			validate: func(t *testing.T, content []byte) {
				require.True(t, bytes.HasPrefix(content, utf8BOM))
				lines := strings.Split(strings.TrimSpace(string(content[3:])), "\n")
				assert.Equal(t, "START", lines[0])
				assert.Equal(t, "2024-01-01", lines[1])
			},
		},
		{
			name: "write without headers",
			table: Table{
				Rows: [][]any{{"a", 1}, {"b", 2}},
			},
			validate: func(t *testing.T, content []byte) {
				assert.Equal(t, "a,1\nb,2\n", string(content))
			},
		},
		{
			name: "quotes fields with commas",
			table: Table{
				Headers: []string{"LABEL"},
				Rows:    [][]any{{"views, total"}},
			},
			validate: func(t *testing.T, content []byte) {
				records, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
				require.NoError(t, err)
				assert.Equal(t, "views, total", records[1][0])
			},
		},
		{
			name:  "empty rows",
			table: Table{Headers: []string{"Col1", "Col2"}},
			validate: func(t *testing.T, content []byte) {
				assert.Equal(t, "Col1,Col2\n", string(content))
			},
		},
	}

	writer := NewCSVWriter(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writer.Write(&buf, tt.table, tt.options))
			tt.validate(t, buf.Bytes())
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestCSVWriter_WriteError(t *testing.T) {
	writer := NewCSVWriter(nil)

	err := writer.Write(failingWriter{}, Table{Headers: []string{"A"}}, WriteOptions{BOMPrefix: true})
	assert.ErrorContains(t, err, "BOM")

	err = writer.Write(failingWriter{}, Table{Headers: []string{"A"}, Rows: [][]any{{1}}}, WriteOptions{})
	assert.Error(t, err)
}

func TestCSVWriter_WriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out", "periods.csv")

	writer := NewCSVWriter(nil)
	err := writer.WriteFile(path, Table{
		Headers: []string{"PERIOD", "VIEWS"},
		Rows:    [][]any{{"2024-01", 31.0}},
	}, WriteOptions{})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "PERIOD,VIEWS\n2024-01,31\n", string(content))

	// overwrite truncates
	require.NoError(t, writer.WriteFile(path, Table{Headers: []string{"X"}}, WriteOptions{}))
	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "X\n", string(content))
}
