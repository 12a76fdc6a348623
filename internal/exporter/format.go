package exporter

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// formatFloat formats a ratio with four decimals
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}

func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatMoney keeps the decimal's exact digits with a fixed scale of 2
func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// formatDate renders a calendar date, or empty for the zero time
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
