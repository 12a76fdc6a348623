// Package analytics computes business metrics over a normalized transaction table.
//
// Every metric is a pure function of an immutable domain.CanonicalTable:
// revenue summary, best sellers, sales trend and its direction, Pareto
// concentration, weekday pattern and slow movers. Engine runs them together
// and bundles the results into a domain.MetricsResult.
//
// Empty tables never fail. Each result carries an EmptyResultWarning instead.
// The only hard failure is malformed configuration, reported as a
// *ValidationError.
package analytics
