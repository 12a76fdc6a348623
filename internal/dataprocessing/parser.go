package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"jitu/pkg/contracts/domain"
)

// ErrUnsupportedFormat is returned for file extensions the loader cannot read
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrNoData is returned when a file holds no header row
var ErrNoData = errors.New("file contains no data")

// SupportedExtensions lists the extensions accepted by the loader
var SupportedExtensions = []string{".csv", ".txt", ".xlsx", ".xlsm"}

var plainNumber = regexp.MustCompile(`^-?\d+(?:\.\d+)?(?:[eE][-+]?\d+)?$`)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Loader reads CSV and XLSX files into a RawTable
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With(slog.String("component", "loader"))}
}

// ParseFile reads a CSV or XLSX file with the default loader
func ParseFile(filePath string) (domain.RawTable, error) {
	return NewLoader(nil).ParseFile(filePath)
}

// ParseFile opens filePath and dispatches on its extension
func (l *Loader) ParseFile(filePath string) (domain.RawTable, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return l.ParseReader(f, filepath.Ext(filePath))
}

// ParseReader reads r as the format named by ext (".csv", ".xlsx", ...)
func (l *Loader) ParseReader(r io.Reader, ext string) (domain.RawTable, error) {
	var (
		table domain.RawTable
		err   error
	)
	switch strings.ToLower(ext) {
	case ".csv", ".txt":
		table, err = l.parseCSV(r)
	case ".xlsx", ".xlsm":
		table, err = l.parseXLSX(r)
	default:
		return domain.RawTable{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return domain.RawTable{}, err
	}

	l.logger.Info("file loaded",
		slog.String("format", strings.ToLower(ext)),
		slog.Int("columns", len(table.Columns)),
		slog.Int("rows", table.Len()))
	return table, nil
}

func (l *Loader) parseCSV(r io.Reader) (domain.RawTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("failed to read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	if !utf8.Valid(data) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return domain.RawTable{}, fmt.Errorf("failed to decode csv as latin-1: %w", err)
		}
		l.logger.Debug("csv is not valid UTF-8, decoded as latin-1")
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("failed to parse csv: %w", err)
	}

	rows := make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(rec))
		for j, cell := range rec {
			row[j] = cell
		}
		rows[i] = row
	}
	return buildTable(rows)
}

func (l *Loader) parseXLSX(r io.Reader) (domain.RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	// First sheet that holds any non-empty cell
	for _, name := range f.GetSheetList() {
		sheetRows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			l.logger.Debug("skipping unreadable sheet", slog.String("sheet_name", name), slog.String("error", err.Error()))
			continue
		}
		rows := make([][]any, len(sheetRows))
		hasData := false
		for i, rec := range sheetRows {
			row := make([]any, len(rec))
			for j, cell := range rec {
				row[j] = xlsxCell(f, name, i, j, cell)
				if strings.TrimSpace(cell) != "" {
					hasData = true
				}
			}
			rows[i] = row
		}
		if !hasData {
			continue
		}
		l.logger.Debug("found data sheet", slog.String("sheet_name", name), slog.Int("total_rows", len(rows)))
		return buildTable(rows)
	}
	return domain.RawTable{}, ErrNoData
}

// xlsxCell keeps numeric cells numeric so serial dates and amounts are not
// re-read as text. Text cells stay text even when they look like numbers:
// "15.000" typed as text is fifteen thousand, not fifteen.
func xlsxCell(f *excelize.File, sheet string, row, col int, cell string) any {
	trimmed := strings.TrimSpace(cell)
	if !plainNumber.MatchString(trimmed) {
		return cell
	}
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return cell
	}
	cellType, err := f.GetCellType(sheet, axis)
	if err != nil {
		return cell
	}
	// Cells without a type attribute are numbers in OOXML
	if cellType != excelize.CellTypeNumber && cellType != excelize.CellTypeUnset {
		return cell
	}
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return v
	}
	return cell
}

// buildTable takes the first non-empty row as header and the remaining
// non-empty rows as data. Blank and duplicate header labels are renamed.
func buildTable(rows [][]any) (domain.RawTable, error) {
	headerIdx := -1
	for i, row := range rows {
		if !emptyRow(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx == -1 {
		return domain.RawTable{}, ErrNoData
	}

	columns := headerLabels(rows[headerIdx])
	table := domain.RawTable{Columns: columns, Rows: []domain.RawRow{}}
	for _, row := range rows[headerIdx+1:] {
		if emptyRow(row) {
			continue
		}
		raw := make(domain.RawRow, len(columns))
		for j, col := range columns {
			if j >= len(row) {
				raw[col] = nil
				continue
			}
			raw[col] = blankToNil(row[j])
		}
		table.Rows = append(table.Rows, raw)
	}
	return table, nil
}

func headerLabels(row []any) []string {
	labels := make([]string, len(row))
	used := make(map[string]bool, len(row))
	for i, cell := range row {
		base := strings.TrimSpace(cellString(cell))
		if base == "" {
			base = fmt.Sprintf("column_%d", i+1)
		}
		label := base
		for n := 2; used[label]; n++ {
			label = fmt.Sprintf("%s_%d", base, n)
		}
		used[label] = true
		labels[i] = label
	}
	return labels
}

func emptyRow(row []any) bool {
	for _, cell := range row {
		if blankToNil(cell) != nil {
			return false
		}
	}
	return true
}

func blankToNil(v any) any {
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return nil
	}
	return v
}

func cellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	default:
		return fmt.Sprint(c)
	}
}

// sniffDelimiter picks the separator that occurs most often outside quotes on the first line
func sniffDelimiter(data []byte) rune {
	line := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		line = data[:idx]
	}
	counts := map[rune]int{',': 0, ';': 0, '\t': 0, '|': 0}
	inQuotes := false
	for _, r := range string(line) {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if _, ok := counts[r]; ok && !inQuotes {
			counts[r]++
		}
	}
	best := ','
	for _, r := range []rune{';', '\t', '|'} {
		if counts[r] > counts[best] {
			best = r
		}
	}
	return best
}
