package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"jitu/pkg/contracts/domain"
)

// productTotals aggregates every product, sorted by name
func productTotals(t domain.CanonicalTable) []domain.ProductStat {
	index := make(map[string]int)
	var stats []domain.ProductStat
	for i := 0; i < t.Len(); i++ {
		row := t.At(i)
		pos, ok := index[row.Product]
		if !ok {
			pos = len(stats)
			index[row.Product] = pos
			stats = append(stats, domain.ProductStat{Product: row.Product, Revenue: decimal.Zero})
		}
		stats[pos].Quantity += row.Quantity
		stats[pos].Revenue = stats[pos].Revenue.Add(row.Revenue())
		stats[pos].Transactions++
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Product < stats[j].Product })
	return stats
}

// RankProducts orders products by summed quantity and by summed revenue.
// Ties are broken by product name. topN of 0 keeps every product.
func RankProducts(t domain.CanonicalTable, topN int) domain.ProductRankings {
	totals := productTotals(t)
	rankings := domain.ProductRankings{
		ByQuantity:       []domain.ProductStat{},
		ByRevenue:        []domain.ProductStat{},
		DistinctProducts: len(totals),
	}
	if len(totals) == 0 {
		rankings.Warning = emptyWarning("rankings")
		return rankings
	}

	byQty := make([]domain.ProductStat, len(totals))
	copy(byQty, totals)
	sort.SliceStable(byQty, func(i, j int) bool {
		return byQty[i].Quantity > byQty[j].Quantity
	})

	byRev := make([]domain.ProductStat, len(totals))
	copy(byRev, totals)
	sort.SliceStable(byRev, func(i, j int) bool {
		return byRev[i].Revenue.GreaterThan(byRev[j].Revenue)
	})

	rankings.ByQuantity = assignRanks(limit(byQty, topN))
	rankings.ByRevenue = assignRanks(limit(byRev, topN))
	return rankings
}

func limit(stats []domain.ProductStat, n int) []domain.ProductStat {
	if n > 0 && n < len(stats) {
		return stats[:n]
	}
	return stats
}

func assignRanks(stats []domain.ProductStat) []domain.ProductStat {
	for i := range stats {
		stats[i].Rank = i + 1
	}
	return stats
}
