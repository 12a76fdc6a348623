// Package fields converts single raw cells into typed values: currency
// amounts, calendar dates and quantities.
//
// Currency parsing understands Indonesian conventions ("Rp 15.000,-",
// "15rb", "1,5jt") as well as plain and English-grouped numbers. Amounts are
// decimal.Decimal.
//
// Rounding keeps DefaultCurrencyPrecision (two) fractional digits rather than
// rounding to a whole rupiah, so "15.000,50" stays 15000.50. Numeric cells go
// through the same rounding, so they pass through unchanged only up to two
// decimals. For whole-unit amounts build a CurrencyParser with precision 0,
// or set analysis.currency_precision: 0 (JITU_ANALYSIS_CURRENCY_PRECISION=0)
// in the service configuration.
//
// Date parsing walks a fixed, prioritized pattern list with
// Indonesian and English month names and never guesses a timezone.
//
// Failures are reported as *ParseError values. They describe one cell and are
// meant to be absorbed by the row normalizer, not propagated to callers.
package fields
