package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Granularity selects the bucket size of a sales trend
type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

// Valid reports whether g is a supported granularity
func (g Granularity) Valid() bool {
	switch g {
	case GranularityDaily, GranularityWeekly, GranularityMonthly:
		return true
	}
	return false
}

// ParseGranularity accepts the canonical names plus the D/W/M shorthands
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "day", "d":
		return GranularityDaily, nil
	case "weekly", "week", "w":
		return GranularityWeekly, nil
	case "monthly", "month", "m":
		return GranularityMonthly, nil
	}
	return "", fmt.Errorf("unknown granularity %q", s)
}

// EmptyResultWarning marks a metric that ran successfully over zero qualifying rows
type EmptyResultWarning struct {
	Operation string `json:"operation"`
	Message   string `json:"message"`
}

// Summary holds the headline totals of a dataset
type Summary struct {
	TotalRevenue            decimal.Decimal     `json:"total_revenue"`
	TransactionCount        int                 `json:"transaction_count"`
	AverageTransactionValue decimal.Decimal     `json:"average_transaction_value"`
	TotalQuantity           int64               `json:"total_quantity"`
	UniqueProducts          int                 `json:"unique_products"`
	UniqueCustomers         int                 `json:"unique_customers"`
	FirstDate               time.Time           `json:"first_date"`
	LastDate                time.Time           `json:"last_date"`
	Warning                 *EmptyResultWarning `json:"warning,omitempty"`
}

// ProductStat aggregates one product's sales
type ProductStat struct {
	Rank         int             `json:"rank"`
	Product      string          `json:"product"`
	Quantity     int64           `json:"quantity"`
	Revenue      decimal.Decimal `json:"revenue"`
	Transactions int             `json:"transactions"`
}

// ProductRankings holds the two best-seller orderings
type ProductRankings struct {
	ByQuantity       []ProductStat       `json:"by_quantity"`
	ByRevenue        []ProductStat       `json:"by_revenue"`
	DistinctProducts int                 `json:"distinct_products"`
	Warning          *EmptyResultWarning `json:"warning,omitempty"`
}

// TrendPoint is one period of a sales trend
type TrendPoint struct {
	PeriodStart  time.Time       `json:"period_start"`
	Revenue      decimal.Decimal `json:"revenue"`
	Transactions int             `json:"transactions"`
}

// TrendSeries is a gap-free revenue series from the first to the last observed period
type TrendSeries struct {
	Granularity Granularity         `json:"granularity"`
	Points      []TrendPoint        `json:"points"`
	Warning     *EmptyResultWarning `json:"warning,omitempty"`
}

// Direction classifies recent revenue against the preceding periods
type Direction string

const (
	DirectionRising           Direction = "rising"
	DirectionFalling          Direction = "falling"
	DirectionFlat             Direction = "flat"
	DirectionInsufficientData Direction = "insufficient_data"
)

// Volatility classifies the dispersion of period revenue
type Volatility string

const (
	VolatilityLow     Volatility = "low"
	VolatilityMedium  Volatility = "medium"
	VolatilityHigh    Volatility = "high"
	VolatilityUnknown Volatility = "unknown"
)

// TrendAnalysis is the outcome of comparing the recent half of a trend with the earlier half
type TrendAnalysis struct {
	Granularity            Granularity         `json:"granularity"`
	Direction              Direction           `json:"direction"`
	ChangePercent          float64             `json:"change_percent"`
	RecentRevenue          decimal.Decimal     `json:"recent_revenue"`
	PreviousRevenue        decimal.Decimal     `json:"previous_revenue"`
	PeriodsCompared        int                 `json:"periods_compared"`
	ThresholdPercent       float64             `json:"threshold_percent"`
	CoefficientOfVariation float64             `json:"coefficient_of_variation"`
	Volatility             Volatility          `json:"volatility"`
	Warning                *EmptyResultWarning `json:"warning,omitempty"`
}

// ParetoEntry is one product in revenue order with its running share
type ParetoEntry struct {
	Product         string          `json:"product"`
	Revenue         decimal.Decimal `json:"revenue"`
	Share           float64         `json:"share"`
	CumulativeShare float64         `json:"cumulative_share"`
}

// ParetoResult reports the smallest set of top products reaching the target revenue share
type ParetoResult struct {
	Target             float64             `json:"target"`
	Products           []ParetoEntry       `json:"products"`
	PrefixSize         int                 `json:"prefix_size"`
	DistinctProducts   int                 `json:"distinct_products"`
	ProductFraction    float64             `json:"product_fraction"`
	PrefixRevenueShare float64             `json:"prefix_revenue_share"`
	Warning            *EmptyResultWarning `json:"warning,omitempty"`
}

// Prefix returns the products that make up the target share
func (p ParetoResult) Prefix() []ParetoEntry {
	return p.Products[:p.PrefixSize]
}

// WeekdayStat aggregates all transactions falling on one weekday
type WeekdayStat struct {
	Ordinal        int             `json:"ordinal"`
	Weekday        string          `json:"weekday"`
	Revenue        decimal.Decimal `json:"revenue"`
	Transactions   int             `json:"transactions"`
	AverageRevenue decimal.Decimal `json:"average_revenue"`
}

// WeekdayPattern lists Monday through Sunday and the strongest and weakest days
type WeekdayPattern struct {
	Days    []WeekdayStat       `json:"days"`
	Best    *WeekdayStat        `json:"best,omitempty"`
	Worst   *WeekdayStat        `json:"worst,omitempty"`
	Warning *EmptyResultWarning `json:"warning,omitempty"`
}

// SlowMover is a product without sales for at least the inactivity threshold
type SlowMover struct {
	Product      string    `json:"product"`
	LastSale     time.Time `json:"last_sale"`
	DaysInactive int       `json:"days_inactive"`
}

// SlowMovers lists inactive products, longest inactive first
type SlowMovers struct {
	ThresholdDays int                 `json:"threshold_days"`
	ReferenceDate time.Time           `json:"reference_date"`
	Products      []SlowMover         `json:"products"`
	Warning       *EmptyResultWarning `json:"warning,omitempty"`
}

// MetricsResult bundles every metric computed for one analysis run
type MetricsResult struct {
	Summary    Summary              `json:"summary"`
	Rankings   ProductRankings      `json:"rankings"`
	Trend      TrendSeries          `json:"trend"`
	Direction  TrendAnalysis        `json:"direction"`
	Pareto     ParetoResult         `json:"pareto"`
	Weekdays   WeekdayPattern       `json:"weekdays"`
	SlowMovers SlowMovers           `json:"slow_movers"`
	Warnings   []EmptyResultWarning `json:"warnings,omitempty"`
}

// WeekdayOrdinal maps Go's Sunday-first weekday to a Monday-first ordinal (Monday = 0)
func WeekdayOrdinal(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// WeekdayFromOrdinal is the inverse of WeekdayOrdinal
func WeekdayFromOrdinal(ordinal int) time.Weekday {
	return time.Weekday((ordinal + 1) % 7)
}
