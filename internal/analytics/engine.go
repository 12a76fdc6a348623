package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"jitu/pkg/contracts/domain"
)

const TracerName = "jitu.analytics"

// Engine runs every metric over one table
type Engine struct {
	opts   Options
	logger *slog.Logger
	tracer trace.Tracer
}

// NewEngine creates an engine with validated default options
func NewEngine(opts Options, logger *slog.Logger) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		opts:   opts,
		logger: logger.With(slog.String("component", "analytics_engine")),
		tracer: otel.Tracer(TracerName),
	}, nil
}

// Options returns the engine defaults
func (e *Engine) Options() Options {
	return e.opts
}

// Analyze computes all metrics with the engine defaults
func (e *Engine) Analyze(ctx context.Context, t domain.CanonicalTable) (domain.MetricsResult, error) {
	return e.AnalyzeWithOptions(ctx, t, e.opts)
}

// AnalyzeWithOptions computes all metrics concurrently over the shared table.
// Only invalid options fail; an empty table yields zero values plus warnings.
func (e *Engine) AnalyzeWithOptions(ctx context.Context, t domain.CanonicalTable, opts Options) (domain.MetricsResult, error) {
	ctx, span := e.tracer.Start(ctx, "analytics.analyze",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int("analytics.rows", t.Len()),
			attribute.String("analytics.granularity", string(opts.Granularity)),
			attribute.Int("analytics.inactivity_days", opts.InactivityDays),
			attribute.Float64("analytics.pareto_target", opts.ParetoTarget),
		),
	)
	defer span.End()

	if err := opts.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid options")
		return domain.MetricsResult{}, err
	}

	start := time.Now()
	var result domain.MetricsResult
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		result.Summary = Summarize(t)
		return gctx.Err()
	})
	g.Go(func() error {
		result.Rankings = RankProducts(t, opts.TopN)
		return gctx.Err()
	})
	g.Go(func() error {
		series, err := SalesTrend(t, opts.Granularity)
		if err != nil {
			return fmt.Errorf("sales trend: %w", err)
		}
		result.Trend = series
		result.Direction = TrendDirection(series, opts.TrendThresholdPercent)
		return nil
	})
	g.Go(func() error {
		pareto, err := Pareto(t, opts.ParetoTarget)
		if err != nil {
			return fmt.Errorf("pareto: %w", err)
		}
		result.Pareto = pareto
		return nil
	})
	g.Go(func() error {
		result.Weekdays = WeekdayPattern(t)
		return gctx.Err()
	})
	g.Go(func() error {
		slow, err := SlowMovers(t, opts.InactivityDays)
		if err != nil {
			return fmt.Errorf("slow movers: %w", err)
		}
		result.SlowMovers = slow
		return nil
	})

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.ErrorContext(ctx, "analysis failed", slog.String("error", err.Error()))
		return domain.MetricsResult{}, err
	}

	result.Warnings = collectWarnings(result)
	span.SetAttributes(attribute.Int("analytics.warnings", len(result.Warnings)))
	span.SetStatus(codes.Ok, "")

	e.logger.InfoContext(ctx, "analysis complete",
		slog.Int("rows", t.Len()),
		slog.String("total_revenue", result.Summary.TotalRevenue.String()),
		slog.Int("distinct_products", result.Rankings.DistinctProducts),
		slog.String("direction", string(result.Direction.Direction)),
		slog.Int("slow_movers", len(result.SlowMovers.Products)),
		slog.Int("warnings", len(result.Warnings)),
		slog.Duration("duration", time.Since(start)),
	)
	return result, nil
}

func collectWarnings(r domain.MetricsResult) []domain.EmptyResultWarning {
	var out []domain.EmptyResultWarning
	for _, w := range []*domain.EmptyResultWarning{
		r.Summary.Warning,
		r.Rankings.Warning,
		r.Trend.Warning,
		r.Pareto.Warning,
		r.Weekdays.Warning,
		r.SlowMovers.Warning,
	} {
		if w != nil {
			out = append(out, *w)
		}
	}
	return out
}
