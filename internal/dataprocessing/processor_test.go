package dataprocessing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"jitu/pkg/contracts/domain"
)

func canonical(day int, product string, price int64, qty int64) domain.CanonicalRow {
	return domain.CanonicalRow{
		Date:     time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
		Product:  product,
		Price:    decimal.NewFromInt(price),
		Quantity: qty,
	}
}

func TestRowStandardizer(t *testing.T) {
	rows := []domain.CanonicalRow{
		canonical(1, "Es Teh", 3000, 1),
		canonical(1, "es teh", 3000, 1),
		canonical(1, "Es Teh", 3000, 1),
		canonical(2, "Roti", 5000, 2),
	}

	tests := []struct {
		name     string
		opts     ProcessingOptions
		products []string
		stats    StandardizeStatistics
	}{
		{
			name:     "defaults keep everything",
			opts:     DefaultOptions(),
			products: []string{"Es Teh", "es teh", "Es Teh", "Roti"},
			stats:    StandardizeStatistics{InputRows: 4, OutputRows: 4, DistinctProducts: 3},
		},
		{
			name:     "fold case only",
			opts:     ProcessingOptions{FoldProductCase: true},
			products: []string{"Es Teh", "Es Teh", "Es Teh", "Roti"},
			stats:    StandardizeStatistics{InputRows: 4, OutputRows: 4, ProductsFolded: 1, DistinctProducts: 2},
		},
		{
			name:     "drop duplicates only",
			opts:     ProcessingOptions{DropDuplicates: true},
			products: []string{"Es Teh", "es teh", "Roti"},
			stats:    StandardizeStatistics{InputRows: 4, OutputRows: 3, DuplicatesRemoved: 1, DistinctProducts: 3},
		},
		{
			name:     "fold then drop",
			opts:     ProcessingOptions{FoldProductCase: true, DropDuplicates: true},
			products: []string{"Es Teh", "Roti"},
			stats:    StandardizeStatistics{InputRows: 4, OutputRows: 2, DuplicatesRemoved: 2, ProductsFolded: 1, DistinctProducts: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, stats := NewRowStandardizer(tt.opts).ProcessWithStats(rows)
			var products []string
			for _, r := range out {
				products = append(products, r.Product)
			}
			assert.Equal(t, tt.products, products)
			assert.Equal(t, tt.stats, stats)
		})
	}

	// input is untouched
	assert.Equal(t, "es teh", rows[1].Product)
}

func TestRowStandardizerEmpty(t *testing.T) {
	out := NewRowStandardizer(ProcessingOptions{DropDuplicates: true}).Process(nil)
	assert.Empty(t, out)
}

func TestCollapseSpaces(t *testing.T) {
	assert.Equal(t, "Nasi Goreng Spesial", collapseSpaces("  Nasi\tGoreng   Spesial \n"))
	assert.Equal(t, "", collapseSpaces("   "))
}
