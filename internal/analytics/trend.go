package analytics

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"jitu/pkg/contracts/domain"
)

// Coefficient-of-variation bounds for the volatility classes
const (
	lowVolatilityCV    = 0.25
	mediumVolatilityCV = 0.50
)

var hundred = decimal.NewFromInt(100)

// PeriodStart returns the first day of the bucket holding d.
// Weeks start on Monday; months on the first.
func PeriodStart(d time.Time, g domain.Granularity) time.Time {
	day := domain.CalendarDate(d)
	switch g {
	case domain.GranularityWeekly:
		return day.AddDate(0, 0, -domain.WeekdayOrdinal(day.Weekday()))
	case domain.GranularityMonthly:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

func nextPeriod(start time.Time, g domain.Granularity) time.Time {
	switch g {
	case domain.GranularityWeekly:
		return start.AddDate(0, 0, 7)
	case domain.GranularityMonthly:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// SalesTrend buckets revenue by period. Periods without sales between the
// first and last observed period are present with zero revenue.
func SalesTrend(t domain.CanonicalTable, g domain.Granularity) (domain.TrendSeries, error) {
	if !g.Valid() {
		return domain.TrendSeries{}, &ValidationError{
			Field:   "granularity",
			Message: "must be one of daily, weekly, monthly",
			Value:   string(g),
		}
	}

	series := domain.TrendSeries{Granularity: g, Points: []domain.TrendPoint{}}
	first, last, ok := t.DateRange()
	if !ok {
		series.Warning = emptyWarning("trend")
		return series, nil
	}

	type bucket struct {
		revenue      decimal.Decimal
		transactions int
	}
	buckets := make(map[time.Time]*bucket)
	for i := 0; i < t.Len(); i++ {
		row := t.At(i)
		key := PeriodStart(row.Date, g)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{revenue: decimal.Zero}
			buckets[key] = b
		}
		b.revenue = b.revenue.Add(row.Revenue())
		b.transactions++
	}

	end := PeriodStart(last, g)
	for p := PeriodStart(first, g); !p.After(end); p = nextPeriod(p, g) {
		point := domain.TrendPoint{PeriodStart: p, Revenue: decimal.Zero}
		if b, ok := buckets[p]; ok {
			point.Revenue = b.revenue
			point.Transactions = b.transactions
		}
		series.Points = append(series.Points, point)
	}
	return series, nil
}

// TrendDirection compares the revenue of the recent half of the periods with
// the earlier half. With an odd period count the middle period belongs to
// neither half. A change above thresholdPercent is rising, below its negative
// is falling, anything else is flat.
func TrendDirection(series domain.TrendSeries, thresholdPercent float64) domain.TrendAnalysis {
	analysis := domain.TrendAnalysis{
		Granularity:      series.Granularity,
		Direction:        domain.DirectionInsufficientData,
		RecentRevenue:    decimal.Zero,
		PreviousRevenue:  decimal.Zero,
		ThresholdPercent: thresholdPercent,
		Volatility:       domain.VolatilityUnknown,
		Warning:          series.Warning,
	}
	n := len(series.Points)
	if n < 2 {
		return analysis
	}

	half := n / 2
	for _, p := range series.Points[:half] {
		analysis.PreviousRevenue = analysis.PreviousRevenue.Add(p.Revenue)
	}
	for _, p := range series.Points[n-half:] {
		analysis.RecentRevenue = analysis.RecentRevenue.Add(p.Revenue)
	}
	analysis.PeriodsCompared = half

	switch {
	case analysis.PreviousRevenue.IsZero() && analysis.RecentRevenue.IsZero():
		analysis.ChangePercent = 0
	case analysis.PreviousRevenue.IsZero():
		analysis.ChangePercent = 100
	default:
		analysis.ChangePercent = analysis.RecentRevenue.Sub(analysis.PreviousRevenue).
			Div(analysis.PreviousRevenue).Mul(hundred).Round(2).InexactFloat64()
	}

	switch {
	case analysis.ChangePercent > thresholdPercent:
		analysis.Direction = domain.DirectionRising
	case analysis.ChangePercent < -thresholdPercent:
		analysis.Direction = domain.DirectionFalling
	default:
		analysis.Direction = domain.DirectionFlat
	}

	analysis.CoefficientOfVariation, analysis.Volatility = volatility(series.Points)
	return analysis
}

// volatility is the population coefficient of variation of period revenue
func volatility(points []domain.TrendPoint) (float64, domain.Volatility) {
	if len(points) < 2 {
		return 0, domain.VolatilityUnknown
	}
	var sum float64
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Revenue.InexactFloat64()
		sum += values[i]
	}
	mean := sum / float64(len(values))
	if mean == 0 {
		return 0, domain.VolatilityUnknown
	}
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	cv := math.Sqrt(sq/float64(len(values))) / mean
	cv = math.Round(cv*10000) / 10000

	switch {
	case cv < lowVolatilityCV:
		return cv, domain.VolatilityLow
	case cv < mediumVolatilityCV:
		return cv, domain.VolatilityMedium
	default:
		return cv, domain.VolatilityHigh
	}
}
