// Package dataprocessing turns uploaded transaction files into canonical rows.
// It covers the path from file bytes to a CanonicalTable that the metric
// engine can consume.
//
// # Architecture
//
// The package is organized into three main components:
//
// 1. Loader: reads CSV or XLSX files into a RawTable with no schema implied
// 2. TableNormalizer: applies a ColumnMapping and the field parsers to every row
// 3. RowStandardizer: optional product case folding and duplicate removal
//
// # Usage
//
// Loading a file:
//
//	raw, err := dataprocessing.ParseFile("penjualan_januari.csv")
//	if err != nil {
//	    return err
//	}
//
// Normalizing with a detected mapping:
//
//	det := mapping.DetectMapping(raw.Columns, raw.Sample(20))
//	if err := det.Err(); err != nil {
//	    return err // ask the user to assign the missing columns
//	}
//	n := dataprocessing.NewTableNormalizer(logger, dataprocessing.DefaultNormalizerOptions())
//	table, report, err := n.Normalize(raw, det.Mapping)
//
// # Data Flow
//
//	CSV/XLSX → Loader → RawTable → TableNormalizer → CanonicalTable + Report
//
// # Error Handling
//
// Cell-level failures never abort normalization. A row whose date, product or
// price cannot be read is dropped and listed in Report.Skipped with its
// reasons; a skip rate of 100% still yields a valid, empty table. Normalize
// only returns an error when the mapping itself is unusable.
//
// CSV input is sniffed for its delimiter (comma, semicolon, tab or pipe), has
// a UTF-8 byte order mark removed and falls back to Latin-1 decoding when the
// bytes are not valid UTF-8.
package dataprocessing
