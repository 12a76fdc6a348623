// Package exporter writes analysis results as flat files.
//
// Tables flattens a metrics result and its normalization report into named
// tables: summary, product rankings, trend, trend direction, pareto, weekday
// pattern, slow movers, skipped rows and low-confidence cells. CSVWriter
// writes each table as a UTF-8 CSV with a BOM so Excel opens it correctly,
// and WriteWorkbook puts all of them on separate sheets of one XLSX file.
//
// Example usage:
//
//	e := exporter.NewReportExporter("out", true, logger)
//	paths, err := e.Export(ctx, result.Metrics, result.Report)
package exporter
