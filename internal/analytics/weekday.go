package analytics

import (
	"github.com/shopspring/decimal"

	"jitu/pkg/contracts/domain"
)

// WeekdayPattern partitions transactions into Monday..Sunday and finds the
// best and worst selling days. Only weekdays with at least one transaction
// compete for best and worst; ties go to the earlier weekday.
func WeekdayPattern(t domain.CanonicalTable) domain.WeekdayPattern {
	days := make([]domain.WeekdayStat, 7)
	for i := range days {
		days[i] = domain.WeekdayStat{
			Ordinal:        i,
			Weekday:        domain.WeekdayFromOrdinal(i).String(),
			Revenue:        decimal.Zero,
			AverageRevenue: decimal.Zero,
		}
	}

	for i := 0; i < t.Len(); i++ {
		row := t.At(i)
		d := &days[domain.WeekdayOrdinal(row.Date.Weekday())]
		d.Revenue = d.Revenue.Add(row.Revenue())
		d.Transactions++
	}

	pattern := domain.WeekdayPattern{Days: days}
	var best, worst *domain.WeekdayStat
	for i := range days {
		d := &days[i]
		if d.Transactions == 0 {
			continue
		}
		d.AverageRevenue = average(d.Revenue, d.Transactions)
		if best == nil || d.Revenue.GreaterThan(best.Revenue) {
			best = d
		}
		if worst == nil || d.Revenue.LessThan(worst.Revenue) {
			worst = d
		}
	}
	if best == nil {
		pattern.Warning = emptyWarning("weekdays")
		return pattern
	}
	b, w := *best, *worst
	pattern.Best, pattern.Worst = &b, &w
	return pattern
}

