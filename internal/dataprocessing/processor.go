package dataprocessing

import (
	"strings"

	"jitu/pkg/contracts/domain"
)

// RowStandardizer cleans canonical rows after parsing
type RowStandardizer struct {
	opts ProcessingOptions
}

var _ Processor = (*RowStandardizer)(nil)

// NewRowStandardizer creates a new row standardizer
func NewRowStandardizer(opts ProcessingOptions) *RowStandardizer {
	return &RowStandardizer{opts: opts}
}

// Process applies case folding and duplicate removal as configured.
// Row order is preserved.
func (s *RowStandardizer) Process(rows []domain.CanonicalRow) []domain.CanonicalRow {
	out, _ := s.ProcessWithStats(rows)
	return out
}

// StandardizeStatistics represents row standardization statistics
type StandardizeStatistics struct {
	InputRows         int `json:"input_rows"`
	OutputRows        int `json:"output_rows"`
	DuplicatesRemoved int `json:"duplicates_removed"`
	ProductsFolded    int `json:"products_folded"`
	DistinctProducts  int `json:"distinct_products"`
}

// ProcessWithStats performs standardization and returns statistics
func (s *RowStandardizer) ProcessWithStats(rows []domain.CanonicalRow) ([]domain.CanonicalRow, StandardizeStatistics) {
	stats := StandardizeStatistics{InputRows: len(rows)}
	out := make([]domain.CanonicalRow, 0, len(rows))

	spelling := make(map[string]string)
	folded := make(map[string]bool)
	seen := make(map[rowKey]bool)

	for _, row := range rows {
		if s.opts.FoldProductCase {
			key := strings.ToLower(row.Product)
			if first, ok := spelling[key]; ok {
				if first != row.Product {
					folded[row.Product] = true
					row.Product = first
				}
			} else {
				spelling[key] = row.Product
			}
		}

		if s.opts.DropDuplicates {
			k := keyOf(row)
			if seen[k] {
				stats.DuplicatesRemoved++
				continue
			}
			seen[k] = true
		}
		out = append(out, row)
	}

	products := make(map[string]bool)
	for _, row := range out {
		products[row.Product] = true
	}
	stats.OutputRows = len(out)
	stats.ProductsFolded = len(folded)
	stats.DistinctProducts = len(products)
	return out, stats
}

type rowKey struct {
	date     int64
	product  string
	price    string
	quantity int64
	category string
	customer string
}

func keyOf(r domain.CanonicalRow) rowKey {
	return rowKey{
		date:     r.Date.Unix(),
		product:  r.Product,
		price:    r.Price.String(),
		quantity: r.Quantity,
		category: r.Category,
		customer: r.Customer,
	}
}

// collapseSpaces trims s and reduces internal whitespace runs to one space
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
