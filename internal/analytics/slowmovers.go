package analytics

import (
	"sort"
	"time"

	"jitu/pkg/contracts/domain"
)

const secondsPerDay = 24 * 60 * 60

// daysBetween counts calendar days from a to b. Both are UTC midnights;
// time.Duration would saturate after about 292 years.
func daysBetween(a, b time.Time) int {
	return int((b.Unix() - a.Unix()) / secondsPerDay)
}

// SlowMovers flags products whose last sale is at least thresholdDays before
// the latest date in the table. A negative threshold is rejected.
func SlowMovers(t domain.CanonicalTable, thresholdDays int) (domain.SlowMovers, error) {
	if err := validateInactivity(thresholdDays); err != nil {
		return domain.SlowMovers{}, err
	}

	result := domain.SlowMovers{ThresholdDays: thresholdDays, Products: []domain.SlowMover{}}
	_, reference, ok := t.DateRange()
	if !ok {
		result.Warning = emptyWarning("slow_movers")
		return result, nil
	}
	reference = domain.CalendarDate(reference)
	result.ReferenceDate = reference

	lastSale := make(map[string]time.Time)
	for i := 0; i < t.Len(); i++ {
		row := t.At(i)
		d := domain.CalendarDate(row.Date)
		if prev, ok := lastSale[row.Product]; !ok || d.After(prev) {
			lastSale[row.Product] = d
		}
	}

	for product, last := range lastSale {
		inactive := daysBetween(last, reference)
		if inactive >= thresholdDays {
			result.Products = append(result.Products, domain.SlowMover{
				Product:      product,
				LastSale:     last,
				DaysInactive: inactive,
			})
		}
	}
	sort.Slice(result.Products, func(i, j int) bool {
		a, b := result.Products[i], result.Products[j]
		if a.DaysInactive != b.DaysInactive {
			return a.DaysInactive > b.DaysInactive
		}
		return a.Product < b.Product
	})
	return result, nil
}
