package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"jitu/pkg/contracts/domain"
)

// Pareto orders products by revenue, highest first with ties by name, and
// finds the shortest prefix whose cumulative revenue reaches target × total.
// The comparison is exact; shares in the result are rounded for display.
func Pareto(t domain.CanonicalTable, target float64) (domain.ParetoResult, error) {
	if err := validateParetoTarget(target); err != nil {
		return domain.ParetoResult{}, err
	}

	totals := productTotals(t)
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Revenue.GreaterThan(totals[j].Revenue)
	})

	result := domain.ParetoResult{
		Target:           target,
		Products:         make([]domain.ParetoEntry, 0, len(totals)),
		DistinctProducts: len(totals),
	}

	total := decimal.Zero
	for _, s := range totals {
		total = total.Add(s.Revenue)
	}
	if !total.IsPositive() {
		for _, s := range totals {
			result.Products = append(result.Products, domain.ParetoEntry{Product: s.Product, Revenue: s.Revenue})
		}
		result.Warning = &domain.EmptyResultWarning{
			Operation: "pareto",
			Message:   "no revenue to distribute",
		}
		return result, nil
	}

	goal := total.Mul(decimal.NewFromFloat(target))
	cumulative := decimal.Zero
	for i, s := range totals {
		cumulative = cumulative.Add(s.Revenue)
		result.Products = append(result.Products, domain.ParetoEntry{
			Product:         s.Product,
			Revenue:         s.Revenue,
			Share:           share(s.Revenue, total),
			CumulativeShare: share(cumulative, total),
		})
		if result.PrefixSize == 0 && cumulative.GreaterThanOrEqual(goal) {
			result.PrefixSize = i + 1
			result.PrefixRevenueShare = share(cumulative, total)
		}
	}
	result.ProductFraction = decimal.NewFromInt(int64(result.PrefixSize)).
		Div(decimal.NewFromInt(int64(result.DistinctProducts))).Round(4).InexactFloat64()
	return result, nil
}

func share(part, total decimal.Decimal) float64 {
	return part.Div(total).Round(4).InexactFloat64()
}
