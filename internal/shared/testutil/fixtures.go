package testutil

import (
	"time"

	"github.com/shopspring/decimal"

	"jitu/pkg/contracts/domain"
)

// Day returns midnight UTC of the given date
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// KopiColumns are the header labels of the reference coffee-shop upload
var KopiColumns = []string{"Tanggal", "Produk", "Harga", "Jumlah"}

// KopiScenario returns the two-row coffee-shop upload: total revenue 56000,
// best seller Kopi Hitam with quantity 7.
func KopiScenario() domain.RawTable {
	return RawTableBuilder(KopiColumns...).
		Row("2024-01-15", "Kopi Hitam", "Rp 8.000", 3).
		Row("2024-01-16", "Kopi Hitam", "Rp 8.000", 4).
		Build()
}

// KopiMapping is the mapping a detector should produce for KopiScenario
func KopiMapping() domain.ColumnMapping {
	return domain.ColumnMapping{
		domain.RoleDate:     "Tanggal",
		domain.RoleProduct:  "Produk",
		domain.RolePrice:    "Harga",
		domain.RoleQuantity: "Jumlah",
	}
}

// KopiCSV is KopiScenario as a semicolon separated file
const KopiCSV = "Tanggal;Produk;Harga;Jumlah\n" +
	"2024-01-15;Kopi Hitam;Rp 8.000;3\n" +
	"2024-01-16;Kopi Hitam;Rp 8.000;4\n"

// TableBuilder assembles a RawTable row by row in column order
type TableBuilder struct {
	table domain.RawTable
}

// RawTableBuilder starts a table with the given header labels
func RawTableBuilder(columns ...string) *TableBuilder {
	return &TableBuilder{table: domain.RawTable{Columns: columns, Rows: []domain.RawRow{}}}
}

// Row appends one row; missing trailing cells are nil
func (b *TableBuilder) Row(cells ...any) *TableBuilder {
	row := make(domain.RawRow, len(b.table.Columns))
	for i, col := range b.table.Columns {
		if i < len(cells) {
			row[col] = cells[i]
		} else {
			row[col] = nil
		}
	}
	b.table.Rows = append(b.table.Rows, row)
	return b
}

// Build returns the assembled table
func (b *TableBuilder) Build() domain.RawTable {
	return b.table
}

// Sale is a compact canonical row description for tests
type Sale struct {
	Date     time.Time
	Product  string
	Price    int64
	Quantity int64
	Customer string
}

// CanonicalTable builds an immutable table from sales in the given order
func CanonicalTable(sales ...Sale) domain.CanonicalTable {
	rows := make([]domain.CanonicalRow, len(sales))
	for i, s := range sales {
		qty := s.Quantity
		if qty == 0 {
			qty = 1
		}
		rows[i] = domain.CanonicalRow{
			Date:        s.Date,
			Product:     s.Product,
			Price:       decimal.NewFromInt(s.Price),
			Quantity:    qty,
			Customer:    s.Customer,
			SourceIndex: i,
		}
	}
	return domain.NewCanonicalTable(rows)
}

// KopiCanonical is KopiScenario after normalization
func KopiCanonical() domain.CanonicalTable {
	return CanonicalTable(
		Sale{Date: Day(2024, 1, 15), Product: "Kopi Hitam", Price: 8000, Quantity: 3},
		Sale{Date: Day(2024, 1, 16), Product: "Kopi Hitam", Price: 8000, Quantity: 4},
	)
}
