package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jitu/internal/shared/testutil"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data = bytes.TrimPrefix(data, utf8BOM)
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	dir := t.TempDir()
	writer := NewCSVWriter(dir, logger)

	tests := []struct {
		name    string
		path    string
		options WriteOptions
		want    [][]string
		wantBOM bool
	}{
		{
			name: "headers and records",
			path: "plain.csv",
			options: WriteOptions{
				Headers: []string{"product", "revenue"},
				Records: [][]string{{"Kopi Hitam", "56000.00"}},
			},
			want: [][]string{{"product", "revenue"}, {"Kopi Hitam", "56000.00"}},
		},
		{
			name: "bom and nested directory",
			path: "nested/deeper/bom.csv",
			options: WriteOptions{
				Headers:   []string{"a"},
				Records:   [][]string{{"x,y"}},
				BOMPrefix: true,
			},
			want:    [][]string{{"a"}, {"x,y"}},
			wantBOM: true,
		},
		{
			name: "absolute path ignores base dir",
			path: filepath.Join(t.TempDir(), "abs.csv"),
			options: WriteOptions{
				Records: [][]string{{"1"}},
			},
			want: [][]string{{"1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, writer.WriteCSV(tt.path, tt.options))

			full := writer.resolvePath(tt.path)
			raw, err := os.ReadFile(full)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBOM, bytes.HasPrefix(raw, utf8BOM))
			assert.Equal(t, tt.want, readCSV(t, full))
		})
	}
}

func TestCSVWriter_Append(t *testing.T) {
	writer := NewCSVWriter(t.TempDir(), nil)

	require.NoError(t, writer.WriteCSV("log.csv", WriteOptions{Headers: []string{"n"}, Records: [][]string{{"1"}}}))
	require.NoError(t, writer.WriteCSV("log.csv", WriteOptions{Headers: []string{"ignored"}, Records: [][]string{{"2"}}, Append: true}))

	assert.Equal(t, [][]string{{"n"}, {"1"}, {"2"}}, readCSV(t, writer.resolvePath("log.csv")))
}

func TestStreamWriter(t *testing.T) {
	writer := NewCSVWriter(t.TempDir(), nil)

	sw, err := writer.CreateStreamWriter("stream.csv", []string{"row_index", "reasons"})
	require.NoError(t, err)
	for _, rec := range [][]string{{"0", "missing price"}, {"4", "unparseable date"}} {
		require.NoError(t, sw.WriteRecord(rec))
	}
	require.NoError(t, sw.Close())

	records := readCSV(t, writer.resolvePath("stream.csv"))
	require.Len(t, records, 3)
	assert.Equal(t, []string{"4", "unparseable date"}, records[2])
}

func TestCSVWriter_WriteTable(t *testing.T) {
	writer := NewCSVWriter(t.TempDir(), nil)

	path, err := writer.WriteTable(Table{Name: "summary", Headers: []string{"metric", "value"}, Records: [][]string{{"total_revenue", "1.00"}}})
	require.NoError(t, err)
	assert.Equal(t, "summary.csv", filepath.Base(path))
	assert.Len(t, readCSV(t, path), 2)
}
