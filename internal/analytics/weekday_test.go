package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jitu/internal/shared/testutil"
	"jitu/pkg/contracts/domain"
)

func TestWeekdayPattern(t *testing.T) {
	// 2024-01-01 is a Monday
	table := testutil.CanonicalTable(
		testutil.Sale{Date: testutil.Day(2024, 1, 1), Product: "Teh", Price: 100},
		testutil.Sale{Date: testutil.Day(2024, 1, 8), Product: "Teh", Price: 50},
		testutil.Sale{Date: testutil.Day(2024, 1, 3), Product: "Kopi", Price: 150, Quantity: 2},
		testutil.Sale{Date: testutil.Day(2024, 1, 7), Product: "Roti", Price: 20},
	)

	p := WeekdayPattern(table)
	require.Len(t, p.Days, 7)

	assert.Equal(t, "Monday", p.Days[0].Weekday)
	assert.Equal(t, "Sunday", p.Days[6].Weekday)
	assert.Equal(t, "150", p.Days[0].Revenue.String())
	assert.Equal(t, 2, p.Days[0].Transactions)
	assert.Equal(t, "75", p.Days[0].AverageRevenue.String())
	assert.True(t, p.Days[1].Revenue.IsZero())
	assert.True(t, p.Days[1].AverageRevenue.IsZero())

	require.NotNil(t, p.Best)
	require.NotNil(t, p.Worst)
	assert.Equal(t, "Wednesday", p.Best.Weekday)
	assert.Equal(t, "300", p.Best.Revenue.String())
	assert.Equal(t, "Sunday", p.Worst.Weekday)
	assert.Nil(t, p.Warning)
}

func TestWeekdayPartition(t *testing.T) {
	var sales []testutil.Sale
	for i := 0; i < 30; i++ {
		sales = append(sales, testutil.Sale{
			Date:     testutil.Day(2024, 6, 1+i),
			Product:  "Item",
			Price:    int64(1000 + 37*i),
			Quantity: int64(1 + i%3),
		})
	}
	table := testutil.CanonicalTable(sales...)
	p := WeekdayPattern(table)

	revenue := decimal.Zero
	transactions := 0
	for i, d := range p.Days {
		assert.Equal(t, i, d.Ordinal)
		revenue = revenue.Add(d.Revenue)
		transactions += d.Transactions
	}
	assert.True(t, revenue.Equal(TotalRevenue(table)))
	assert.Equal(t, table.Len(), transactions)
}

func TestWeekdayPatternTiesAndEmpty(t *testing.T) {
	table := testutil.CanonicalTable(
		testutil.Sale{Date: testutil.Day(2024, 1, 2), Product: "A", Price: 100},
		testutil.Sale{Date: testutil.Day(2024, 1, 1), Product: "A", Price: 100},
	)
	p := WeekdayPattern(table)
	assert.Equal(t, "Monday", p.Best.Weekday)
	assert.Equal(t, "Monday", p.Worst.Weekday)

	empty := WeekdayPattern(domain.CanonicalTable{})
	assert.Len(t, empty.Days, 7)
	assert.Nil(t, empty.Best)
	assert.Nil(t, empty.Worst)
	require.NotNil(t, empty.Warning)
	assert.Equal(t, "weekdays", empty.Warning.Operation)
}
