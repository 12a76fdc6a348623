package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// RawRow is one uploaded row keyed by its original column label. Cell values are
// strings, numbers (int, int64, float64), time.Time or nil for blanks.
type RawRow map[string]any

// RawTable is the logical table produced by the file loader. No schema is implied.
type RawTable struct {
	Columns []string `json:"columns"`
	Rows    []RawRow `json:"rows"`
}

// Len returns the number of data rows
func (t RawTable) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether label is one of the table's column labels
func (t RawTable) HasColumn(label string) bool {
	for _, c := range t.Columns {
		if c == label {
			return true
		}
	}
	return false
}

// Sample returns up to n leading rows for shape inspection
func (t RawTable) Sample(n int) []RawRow {
	if n <= 0 || n >= len(t.Rows) {
		return t.Rows
	}
	return t.Rows[:n]
}

// CanonicalRow is a transaction after normalization.
// Price is expressed in the smallest currency unit and is never negative;
// Quantity is at least 1.
type CanonicalRow struct {
	Date        time.Time       `json:"date"`
	Product     string          `json:"product"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	Category    string          `json:"category,omitempty"`
	Customer    string          `json:"customer,omitempty"`
	SourceIndex int             `json:"source_index"`
}

// Revenue returns price × quantity for the row
func (r CanonicalRow) Revenue() decimal.Decimal {
	return r.Price.Mul(decimal.NewFromInt(r.Quantity))
}

// CanonicalTable is an immutable ordered set of canonical rows. The zero value
// is an empty table. It is safe to share across goroutines.
type CanonicalTable struct {
	rows []CanonicalRow
}

// NewCanonicalTable copies rows into a new immutable table
func NewCanonicalTable(rows []CanonicalRow) CanonicalTable {
	if len(rows) == 0 {
		return CanonicalTable{}
	}
	cp := make([]CanonicalRow, len(rows))
	copy(cp, rows)
	return CanonicalTable{rows: cp}
}

// Len returns the number of rows
func (t CanonicalTable) Len() int {
	return len(t.rows)
}

// At returns the i-th row
func (t CanonicalTable) At(i int) CanonicalRow {
	return t.rows[i]
}

// Rows returns a copy of the rows in original order
func (t CanonicalTable) Rows() []CanonicalRow {
	cp := make([]CanonicalRow, len(t.rows))
	copy(cp, t.rows)
	return cp
}

// DateRange returns the earliest and latest transaction dates.
// ok is false for an empty table.
func (t CanonicalTable) DateRange() (first, last time.Time, ok bool) {
	if len(t.rows) == 0 {
		return time.Time{}, time.Time{}, false
	}
	first, last = t.rows[0].Date, t.rows[0].Date
	for _, r := range t.rows[1:] {
		if r.Date.Before(first) {
			first = r.Date
		}
		if r.Date.After(last) {
			last = r.Date
		}
	}
	return first, last, true
}

// MarshalJSON encodes the table as a plain array of rows
func (t CanonicalTable) MarshalJSON() ([]byte, error) {
	if t.rows == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.rows)
}

// CalendarDate truncates t to midnight UTC of its own calendar day
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
