package analytics

import "jitu/pkg/contracts/domain"

// Defaults used when a caller does not override them
const (
	DefaultInactivityDays        = 14
	DefaultParetoTarget          = 0.8
	DefaultTopN                  = 10
	DefaultTrendThresholdPercent = 5.0
)

// Options are the pass-through parameters of an analysis run
type Options struct {
	// InactivityDays is the slow-mover threshold in days
	InactivityDays int `json:"inactivity_days" yaml:"inactivity_days" validate:"gte=0"`
	// Granularity of the sales trend buckets
	Granularity domain.Granularity `json:"granularity" yaml:"granularity" validate:"oneof=daily weekly monthly"`
	// ParetoTarget is the cumulative revenue share in (0, 1]
	ParetoTarget float64 `json:"pareto_target" yaml:"pareto_target" validate:"gt=0,lte=1"`
	// TopN limits the best-seller lists; 0 keeps every product
	TopN int `json:"top_n" yaml:"top_n" validate:"gte=0"`
	// TrendThresholdPercent is the minimum change for a rising or falling verdict
	TrendThresholdPercent float64 `json:"trend_threshold_percent" yaml:"trend_threshold_percent" validate:"gte=0"`
}

// DefaultOptions returns the standard analysis parameters
func DefaultOptions() Options {
	return Options{
		InactivityDays:        DefaultInactivityDays,
		Granularity:           domain.GranularityDaily,
		ParetoTarget:          DefaultParetoTarget,
		TopN:                  DefaultTopN,
		TrendThresholdPercent: DefaultTrendThresholdPercent,
	}
}
