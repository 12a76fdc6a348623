package exporter

import (
	"strconv"
	"strings"

	"jitu/internal/dataprocessing"
	"jitu/pkg/contracts/domain"
)

// Table is one named, flat export of a metric
type Table struct {
	Name    string
	Headers []string
	Records [][]string
}

// Table names, also used as CSV file stems and workbook sheet names
const (
	TableSummary           = "summary"
	TableProductsQuantity  = "products_by_quantity"
	TableProductsRevenue   = "products_by_revenue"
	TableTrend             = "trend"
	TableTrendDirection    = "trend_direction"
	TablePareto            = "pareto"
	TableWeekdays          = "weekdays"
	TableSlowMovers        = "slow_movers"
	TableSkippedRows       = "skipped_rows"
	TableLowConfidenceRows = "low_confidence"
)

// Tables flattens a metrics result and its normalization report into export tables
func Tables(m domain.MetricsResult, report dataprocessing.Report) []Table {
	return []Table{
		summaryTable(m.Summary, report),
		rankingTable(TableProductsQuantity, m.Rankings.ByQuantity),
		rankingTable(TableProductsRevenue, m.Rankings.ByRevenue),
		trendTable(m.Trend),
		directionTable(m.Direction),
		paretoTable(m.Pareto),
		weekdayTable(m.Weekdays),
		slowMoverTable(m.SlowMovers),
		skippedTable(report),
		lowConfidenceTable(report),
	}
}

func summaryTable(s domain.Summary, report dataprocessing.Report) Table {
	return Table{
		Name:    TableSummary,
		Headers: []string{"metric", "value"},
		Records: [][]string{
			{"total_revenue", formatMoney(s.TotalRevenue)},
			{"transaction_count", strconv.Itoa(s.TransactionCount)},
			{"average_transaction_value", formatMoney(s.AverageTransactionValue)},
			{"total_quantity", formatInt(s.TotalQuantity)},
			{"unique_products", strconv.Itoa(s.UniqueProducts)},
			{"unique_customers", strconv.Itoa(s.UniqueCustomers)},
			{"first_date", formatDate(s.FirstDate)},
			{"last_date", formatDate(s.LastDate)},
			{"rows_total", strconv.Itoa(report.TotalRows)},
			{"rows_kept", strconv.Itoa(report.Kept)},
			{"rows_skipped", strconv.Itoa(len(report.Skipped))},
			{"skip_rate", formatFloat(report.SkipRate)},
		},
	}
}

func rankingTable(name string, stats []domain.ProductStat) Table {
	records := make([][]string, 0, len(stats))
	for _, s := range stats {
		records = append(records, []string{
			strconv.Itoa(s.Rank),
			s.Product,
			formatInt(s.Quantity),
			formatMoney(s.Revenue),
			strconv.Itoa(s.Transactions),
		})
	}
	return Table{
		Name:    name,
		Headers: []string{"rank", "product", "quantity", "revenue", "transactions"},
		Records: records,
	}
}

func trendTable(t domain.TrendSeries) Table {
	records := make([][]string, 0, len(t.Points))
	for _, p := range t.Points {
		records = append(records, []string{
			formatDate(p.PeriodStart),
			string(t.Granularity),
			formatMoney(p.Revenue),
			strconv.Itoa(p.Transactions),
		})
	}
	return Table{
		Name:    TableTrend,
		Headers: []string{"period_start", "granularity", "revenue", "transactions"},
		Records: records,
	}
}

func directionTable(d domain.TrendAnalysis) Table {
	return Table{
		Name:    TableTrendDirection,
		Headers: []string{"metric", "value"},
		Records: [][]string{
			{"granularity", string(d.Granularity)},
			{"direction", string(d.Direction)},
			{"change_percent", formatFloat(d.ChangePercent)},
			{"recent_revenue", formatMoney(d.RecentRevenue)},
			{"previous_revenue", formatMoney(d.PreviousRevenue)},
			{"periods_compared", strconv.Itoa(d.PeriodsCompared)},
			{"coefficient_of_variation", formatFloat(d.CoefficientOfVariation)},
			{"volatility", string(d.Volatility)},
		},
	}
}

func paretoTable(p domain.ParetoResult) Table {
	records := make([][]string, 0, len(p.Products))
	for i, e := range p.Products {
		records = append(records, []string{
			strconv.Itoa(i + 1),
			e.Product,
			formatMoney(e.Revenue),
			formatFloat(e.Share),
			formatFloat(e.CumulativeShare),
			strconv.FormatBool(i < p.PrefixSize),
		})
	}
	return Table{
		Name:    TablePareto,
		Headers: []string{"rank", "product", "revenue", "share", "cumulative_share", "in_prefix"},
		Records: records,
	}
}

func weekdayTable(w domain.WeekdayPattern) Table {
	records := make([][]string, 0, len(w.Days))
	for _, d := range w.Days {
		marker := ""
		switch {
		case w.Best != nil && w.Best.Ordinal == d.Ordinal:
			marker = "best"
		case w.Worst != nil && w.Worst.Ordinal == d.Ordinal:
			marker = "worst"
		}
		records = append(records, []string{
			d.Weekday,
			formatMoney(d.Revenue),
			strconv.Itoa(d.Transactions),
			formatMoney(d.AverageRevenue),
			marker,
		})
	}
	return Table{
		Name:    TableWeekdays,
		Headers: []string{"weekday", "revenue", "transactions", "average_revenue", "marker"},
		Records: records,
	}
}

func slowMoverTable(s domain.SlowMovers) Table {
	records := make([][]string, 0, len(s.Products))
	for _, p := range s.Products {
		records = append(records, []string{
			p.Product,
			formatDate(p.LastSale),
			strconv.Itoa(p.DaysInactive),
		})
	}
	return Table{
		Name:    TableSlowMovers,
		Headers: []string{"product", "last_sale", "days_inactive"},
		Records: records,
	}
}

func skippedTable(report dataprocessing.Report) Table {
	records := make([][]string, 0, len(report.Skipped))
	for _, s := range report.Skipped {
		records = append(records, []string{strconv.Itoa(s.Index), strings.Join(s.Reasons, "; ")})
	}
	return Table{
		Name:    TableSkippedRows,
		Headers: []string{"row_index", "reasons"},
		Records: records,
	}
}

func lowConfidenceTable(report dataprocessing.Report) Table {
	records := make([][]string, 0, len(report.LowConfidence))
	for _, lc := range report.LowConfidence {
		records = append(records, []string{strconv.Itoa(lc.Index), string(lc.Role), lc.Input, lc.Rule})
	}
	return Table{
		Name:    TableLowConfidenceRows,
		Headers: []string{"row_index", "role", "input", "rule"},
		Records: records,
	}
}
