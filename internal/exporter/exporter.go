package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"jitu/internal/dataprocessing"
	"jitu/pkg/contracts/domain"
)

// WorkbookName is the file written by Export when a workbook is requested
const WorkbookName = "report.xlsx"

// ReportExporter writes the tables of one analysis run to a directory
type ReportExporter struct {
	dir      string
	csv      *CSVWriter
	workbook bool
	logger   *slog.Logger
}

// NewReportExporter creates an exporter for dir. With workbook set, a
// report.xlsx holding every table is written next to the CSV files.
func NewReportExporter(dir string, workbook bool, logger *slog.Logger) *ReportExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportExporter{
		dir:      dir,
		csv:      NewCSVWriter(dir, logger),
		workbook: workbook,
		logger:   logger.With(slog.String("component", "report_exporter")),
	}
}

// Export writes one CSV per table and returns the written paths sorted
func (e *ReportExporter) Export(ctx context.Context, m domain.MetricsResult, report dataprocessing.Report) ([]string, error) {
	tables := Tables(m, report)

	var (
		mu    sync.Mutex
		paths []string
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, t := range tables {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, err := e.csv.WriteTable(t)
			if err != nil {
				return err
			}
			mu.Lock()
			paths = append(paths, path)
			mu.Unlock()
			return nil
		})
	}
	if e.workbook {
		g.Go(func() error {
			path := filepath.Join(e.dir, WorkbookName)
			if err := WriteWorkbook(path, tables); err != nil {
				return err
			}
			mu.Lock()
			paths = append(paths, path)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("export to %s: %w", e.dir, err)
	}

	sort.Strings(paths)
	e.logger.InfoContext(ctx, "report exported",
		slog.String("dir", e.dir),
		slog.Int("files", len(paths)),
	)
	return paths, nil
}
