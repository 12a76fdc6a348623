package analytics

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jitu/internal/shared/testutil"
	"jitu/pkg/contracts/domain"
)

func TestPeriodStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		g    domain.Granularity
		want time.Time
	}{
		{"daily drops time", time.Date(2024, 1, 3, 17, 30, 0, 0, time.UTC), domain.GranularityDaily, testutil.Day(2024, 1, 3)},
		{"weekly wednesday", testutil.Day(2024, 1, 3), domain.GranularityWeekly, testutil.Day(2024, 1, 1)},
		{"weekly sunday", testutil.Day(2024, 1, 7), domain.GranularityWeekly, testutil.Day(2024, 1, 1)},
		{"weekly monday", testutil.Day(2024, 1, 8), domain.GranularityWeekly, testutil.Day(2024, 1, 8)},
		{"weekly across year", testutil.Day(2025, 1, 1), domain.GranularityWeekly, testutil.Day(2024, 12, 30)},
		{"monthly", testutil.Day(2024, 2, 29), domain.GranularityMonthly, testutil.Day(2024, 2, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PeriodStart(tt.in, tt.g))
		})
	}
}

func TestSalesTrendZeroFillsGaps(t *testing.T) {
	table := testutil.CanonicalTable(
		testutil.Sale{Date: testutil.Day(2024, 1, 4), Product: "Teh", Price: 3000, Quantity: 2},
		testutil.Sale{Date: testutil.Day(2024, 1, 1), Product: "Kopi", Price: 8000, Quantity: 1},
		testutil.Sale{Date: testutil.Day(2024, 1, 1), Product: "Teh", Price: 3000, Quantity: 1},
	)

	series, err := SalesTrend(table, domain.GranularityDaily)
	require.NoError(t, err)
	require.Len(t, series.Points, 4)

	wantRevenue := []string{"11000", "0", "0", "6000"}
	wantTx := []int{2, 0, 0, 1}
	for i, p := range series.Points {
		assert.Equal(t, testutil.Day(2024, 1, 1+i), p.PeriodStart)
		assert.Equal(t, wantRevenue[i], p.Revenue.String(), "period %d", i)
		assert.Equal(t, wantTx[i], p.Transactions, "period %d", i)
	}

	total := decimal.Zero
	for _, p := range series.Points {
		total = total.Add(p.Revenue)
	}
	assert.True(t, total.Equal(TotalRevenue(table)))
}

func TestSalesTrendGranularities(t *testing.T) {
	table := testutil.CanonicalTable(
		testutil.Sale{Date: testutil.Day(2024, 1, 3), Product: "A", Price: 100},
		testutil.Sale{Date: testutil.Day(2024, 1, 20), Product: "A", Price: 200},
		testutil.Sale{Date: testutil.Day(2024, 3, 2), Product: "A", Price: 300},
	)

	weekly, err := SalesTrend(table, domain.GranularityWeekly)
	require.NoError(t, err)
	assert.Equal(t, testutil.Day(2024, 1, 1), weekly.Points[0].PeriodStart)
	assert.Equal(t, testutil.Day(2024, 2, 26), weekly.Points[len(weekly.Points)-1].PeriodStart)
	assert.Len(t, weekly.Points, 9)
	assert.Equal(t, "200", weekly.Points[2].Revenue.String())

	monthly, err := SalesTrend(table, domain.GranularityMonthly)
	require.NoError(t, err)
	require.Len(t, monthly.Points, 3)
	assert.Equal(t, "300", monthly.Points[0].Revenue.String())
	assert.True(t, monthly.Points[1].Revenue.IsZero())
	assert.Equal(t, testutil.Day(2024, 3, 1), monthly.Points[2].PeriodStart)
}

func TestSalesTrendEdgeCases(t *testing.T) {
	empty, err := SalesTrend(domain.CanonicalTable{}, domain.GranularityDaily)
	require.NoError(t, err)
	assert.Empty(t, empty.Points)
	require.NotNil(t, empty.Warning)

	single, err := SalesTrend(testutil.CanonicalTable(
		testutil.Sale{Date: testutil.Day(2024, 5, 5), Product: "A", Price: 10},
	), domain.GranularityMonthly)
	require.NoError(t, err)
	assert.Len(t, single.Points, 1)

	_, err = SalesTrend(domain.CanonicalTable{}, domain.Granularity("hourly"))
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "granularity", ve.Field)
}

func series(revenues ...int64) domain.TrendSeries {
	s := domain.TrendSeries{Granularity: domain.GranularityDaily}
	for i, r := range revenues {
		s.Points = append(s.Points, domain.TrendPoint{
			PeriodStart: testutil.Day(2024, 1, 1+i),
			Revenue:     decimal.NewFromInt(r),
		})
	}
	return s
}

func TestTrendDirection(t *testing.T) {
	tests := []struct {
		name      string
		revenues  []int64
		direction domain.Direction
		change    float64
		compared  int
	}{
		{"rising", []int64{100, 100, 200, 200}, domain.DirectionRising, 100, 2},
		{"falling", []int64{200, 100}, domain.DirectionFalling, -50, 1},
		{"flat within threshold", []int64{100, 104}, domain.DirectionFlat, 4, 1},
		{"odd count skips middle", []int64{100, 900, 100}, domain.DirectionFlat, 0, 1},
		{"from nothing", []int64{0, 0, 50, 10}, domain.DirectionRising, 100, 2},
		{"all zero", []int64{0, 0}, domain.DirectionFlat, 0, 1},
		{"single period", []int64{500}, domain.DirectionInsufficientData, 0, 0},
		{"no periods", nil, domain.DirectionInsufficientData, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := TrendDirection(series(tt.revenues...), DefaultTrendThresholdPercent)
			assert.Equal(t, tt.direction, a.Direction)
			assert.InDelta(t, tt.change, a.ChangePercent, 1e-9)
			assert.Equal(t, tt.compared, a.PeriodsCompared)
			assert.Equal(t, DefaultTrendThresholdPercent, a.ThresholdPercent)
		})
	}
}

func TestTrendDirectionThreshold(t *testing.T) {
	s := series(100, 104)
	assert.Equal(t, domain.DirectionRising, TrendDirection(s, 3).Direction)
	assert.Equal(t, domain.DirectionFlat, TrendDirection(s, 4).Direction)
}

func TestTrendVolatility(t *testing.T) {
	tests := []struct {
		name     string
		revenues []int64
		class    domain.Volatility
		cv       float64
	}{
		{"steady", []int64{100, 100}, domain.VolatilityLow, 0},
		{"moderate", []int64{100, 200}, domain.VolatilityMedium, 0.3333},
		{"swinging", []int64{100, 300}, domain.VolatilityHigh, 0.5},
		{"single", []int64{100}, domain.VolatilityUnknown, 0},
		{"zero mean", []int64{0, 0}, domain.VolatilityUnknown, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := TrendDirection(series(tt.revenues...), DefaultTrendThresholdPercent)
			assert.Equal(t, tt.class, a.Volatility)
			assert.InDelta(t, tt.cv, a.CoefficientOfVariation, 1e-9)
		})
	}
}
