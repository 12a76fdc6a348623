package analytics

import (
	"github.com/shopspring/decimal"

	"jitu/pkg/contracts/domain"
)

// TotalRevenue sums price × quantity over every row
func TotalRevenue(t domain.CanonicalTable) decimal.Decimal {
	total := decimal.Zero
	for i := 0; i < t.Len(); i++ {
		total = total.Add(t.At(i).Revenue())
	}
	return total
}

// TransactionCount is the number of rows
func TransactionCount(t domain.CanonicalTable) int {
	return t.Len()
}

// AverageTransactionValue is revenue divided by transaction count, zero for an empty table
func AverageTransactionValue(t domain.CanonicalTable) decimal.Decimal {
	return average(TotalRevenue(t), t.Len())
}

func average(total decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(n)))
}

// Summarize computes the headline totals of t
func Summarize(t domain.CanonicalTable) domain.Summary {
	s := domain.Summary{
		TotalRevenue:            decimal.Zero,
		AverageTransactionValue: decimal.Zero,
	}
	if t.Len() == 0 {
		s.Warning = emptyWarning("summary")
		return s
	}

	products := make(map[string]struct{})
	customers := make(map[string]struct{})
	for i := 0; i < t.Len(); i++ {
		row := t.At(i)
		s.TotalRevenue = s.TotalRevenue.Add(row.Revenue())
		s.TotalQuantity += row.Quantity
		products[row.Product] = struct{}{}
		if row.Customer != "" {
			customers[row.Customer] = struct{}{}
		}
	}
	s.TransactionCount = t.Len()
	s.AverageTransactionValue = average(s.TotalRevenue, s.TransactionCount)
	s.UniqueProducts = len(products)
	s.UniqueCustomers = len(customers)
	s.FirstDate, s.LastDate, _ = t.DateRange()
	return s
}

func emptyWarning(operation string) *domain.EmptyResultWarning {
	return &domain.EmptyResultWarning{
		Operation: operation,
		Message:   "no transactions to analyze",
	}
}
