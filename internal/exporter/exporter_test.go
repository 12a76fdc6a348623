package exporter

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"jitu/internal/analytics"
	"jitu/internal/dataprocessing"
	"jitu/internal/shared/testutil"
	"jitu/pkg/contracts/domain"
)

func kopiResult(t *testing.T) (domain.MetricsResult, dataprocessing.Report) {
	t.Helper()
	engine, err := analytics.NewEngine(analytics.DefaultOptions(), nil)
	require.NoError(t, err)
	m, err := engine.Analyze(context.Background(), testutil.KopiCanonical())
	require.NoError(t, err)

	report := dataprocessing.Report{
		TotalRows: 3,
		Kept:      2,
		Skipped:   []dataprocessing.SkippedRow{{Index: 2, Reasons: []string{"missing price", "unparseable date"}}},
		SkipRate:  1.0 / 3,
		LowConfidence: []dataprocessing.LowConfidence{
			{Index: 0, Role: domain.RoleDate, Input: "03/04/2024", Rule: "day_first"},
		},
	}
	return m, report
}

func findTable(t *testing.T, tables []Table, name string) Table {
	t.Helper()
	for _, tbl := range tables {
		if tbl.Name == name {
			return tbl
		}
	}
	t.Fatalf("table %s not found", name)
	return Table{}
}

func TestTables(t *testing.T) {
	m, report := kopiResult(t)
	tables := Tables(m, report)
	require.Len(t, tables, 10)

	summary := findTable(t, tables, TableSummary)
	assert.Equal(t, []string{"total_revenue", "56000.00"}, summary.Records[0])
	assert.Contains(t, summary.Records, []string{"rows_skipped", "1"})
	assert.Contains(t, summary.Records, []string{"skip_rate", "0.3333"})

	byRevenue := findTable(t, tables, TableProductsRevenue)
	require.Len(t, byRevenue.Records, 1)
	assert.Equal(t, []string{"1", "Kopi Hitam", "7", "56000.00", "2"}, byRevenue.Records[0])

	trend := findTable(t, tables, TableTrend)
	require.Len(t, trend.Records, 2)
	assert.Equal(t, "2024-01-15", trend.Records[0][0])

	weekdays := findTable(t, tables, TableWeekdays)
	require.Len(t, weekdays.Records, 7)
	assert.Equal(t, "worst", weekdays.Records[0][4], "Monday sold less")
	assert.Equal(t, "best", weekdays.Records[1][4])

	pareto := findTable(t, tables, TablePareto)
	assert.Equal(t, "true", pareto.Records[0][5])

	skipped := findTable(t, tables, TableSkippedRows)
	assert.Equal(t, [][]string{{"2", "missing price; unparseable date"}}, skipped.Records)

	low := findTable(t, tables, TableLowConfidenceRows)
	assert.Equal(t, [][]string{{"0", "date", "03/04/2024", "day_first"}}, low.Records)
}

func TestReportExporterExport(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	dir := t.TempDir()
	m, report := kopiResult(t)

	paths, err := NewReportExporter(dir, true, logger).Export(context.Background(), m, report)
	require.NoError(t, err)
	assert.Len(t, paths, 11)
	assert.Contains(t, paths, filepath.Join(dir, "slow_movers.csv"))
	assert.Contains(t, paths, filepath.Join(dir, WorkbookName))
	testutil.AssertLogAttr(t, logs, "files", int64(11))

	f, err := excelize.OpenFile(filepath.Join(dir, WorkbookName))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, TableSummary, f.GetSheetName(0))

	rows, err := f.GetRows(TableProductsQuantity)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Kopi Hitam", rows[1][1])
}

func TestReportExporterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m, report := kopiResult(t)

	_, err := NewReportExporter(t.TempDir(), false, nil).Export(ctx, m, report)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteWorkbookRequiresTables(t *testing.T) {
	assert.Error(t, WriteWorkbook(filepath.Join(t.TempDir(), "x.xlsx"), nil))
}
