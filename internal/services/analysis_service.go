package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"jitu/internal/analytics"
	"jitu/internal/config"
	"jitu/internal/dataprocessing"
	"jitu/internal/infrastructure"
	"jitu/internal/mapping"
	"jitu/pkg/contracts/domain"
)

// TracerName is the instrumentation scope of pipeline spans
const TracerName = "jitu.services"

// MappingSource tells where the mapping used by a run came from
type MappingSource string

const (
	MappingExplicit  MappingSource = "explicit"
	MappingConfirmed MappingSource = "confirmed"
	MappingDetected  MappingSource = "detected"
	// MappingNone is used for tables without rows, which need no mapping
	MappingNone MappingSource = "none"
)

// AnalysisRequest is one analysis run over an already loaded table
type AnalysisRequest struct {
	Table domain.RawTable
	// Mapping overrides detection when non-empty
	Mapping domain.ColumnMapping
	// Options overrides the configured analysis defaults when set
	Options *analytics.Options
}

// AnalysisResult is everything a run produces
type AnalysisResult struct {
	RunID         string                `json:"run_id"`
	Mapping       domain.ColumnMapping  `json:"mapping"`
	MappingSource MappingSource         `json:"mapping_source"`
	Report        dataprocessing.Report `json:"report"`
	Metrics       domain.MetricsResult  `json:"metrics"`
	Options       analytics.Options     `json:"options"`
	DurationMS    int64                 `json:"duration_ms"`
}

// DetectionResult is the answer to a mapping detection request
type DetectionResult struct {
	Columns     []string             `json:"columns"`
	Fingerprint string               `json:"fingerprint"`
	Detection   mapping.Detection    `json:"detection"`
	Confirmed   domain.ColumnMapping `json:"confirmed,omitempty"`
}

// AnalysisService orchestrates load, mapping, normalization and analysis
type AnalysisService struct {
	loader     *dataprocessing.Loader
	detector   *mapping.Detector
	store      *mapping.Store
	normalizer *dataprocessing.TableNormalizer
	engine     *analytics.Engine
	metrics    *infrastructure.BusinessMetrics
	tracer     trace.Tracer
	logger     *slog.Logger
	newRunID   func() string
}

// NewAnalysisService wires the pipeline from cfg. store and metrics may be
// nil; a nil store disables confirmed-mapping reuse.
func NewAnalysisService(cfg *config.Config, store *mapping.Store, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) (*AnalysisService, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	engine, err := analytics.NewEngine(cfg.Analysis.Options(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create analytics engine: %w", err)
	}

	s := &AnalysisService{
		loader:     dataprocessing.NewLoader(logger),
		detector:   mapping.NewDetector(logger, mapping.WithSampleRows(cfg.Ingest.SampleRows)),
		store:      store,
		normalizer: dataprocessing.NewTableNormalizer(logger, cfg.NormalizerOptions()),
		engine:     engine,
		metrics:    metrics,
		tracer:     otel.Tracer(TracerName),
		logger:     logger.With(slog.String("component", "analysis_service")),
		newRunID:   func() string { return uuid.New().String() },
	}

	s.logger.Info("analysis service initialized",
		slog.Bool("mapping_store", store != nil),
		slog.String("granularity", string(engine.Options().Granularity)),
		slog.Int("inactivity_days", engine.Options().InactivityDays))
	return s, nil
}

// DefaultOptions returns the configured analysis options
func (s *AnalysisService) DefaultOptions() analytics.Options {
	return s.engine.Options()
}

// Load reads an uploaded file. The format is taken from the file name's extension.
func (s *AnalysisService) Load(ctx context.Context, r io.Reader, filename string) (domain.RawTable, error) {
	_, span := s.tracer.Start(ctx, "analysis.load",
		trace.WithAttributes(attribute.String("file.extension", filepath.Ext(filename))))
	defer span.End()

	table, err := s.loader.ParseReader(r, filepath.Ext(filename))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.RawTable{}, fmt.Errorf("failed to load %s: %w", filepath.Base(filename), err)
	}
	span.SetAttributes(
		attribute.Int("table.columns", len(table.Columns)),
		attribute.Int("table.rows", table.Len()))
	return table, nil
}

// Detect proposes a mapping for table and reports any confirmed mapping
// stored for the same header layout.
func (s *AnalysisService) Detect(ctx context.Context, table domain.RawTable) (DetectionResult, error) {
	if len(table.Columns) == 0 {
		return DetectionResult{}, ErrNoColumns
	}
	_, span := s.tracer.Start(ctx, "analysis.detect_mapping")
	defer span.End()

	result := DetectionResult{
		Columns:     table.Columns,
		Fingerprint: mapping.Fingerprint(table.Columns),
		Detection:   s.detector.Detect(table.Columns, table.Rows),
	}
	if s.store != nil {
		if m, ok := s.store.Lookup(table.Columns); ok {
			result.Confirmed = m
		}
	}
	if s.metrics != nil {
		s.metrics.MappingDetections.Add(ctx, 1)
	}

	span.SetAttributes(
		attribute.Bool("mapping.complete", result.Detection.Complete),
		attribute.Bool("mapping.confirmed", result.Confirmed != nil))
	s.logger.InfoContext(ctx, "column mapping detected",
		slog.String("fingerprint", result.Fingerprint),
		slog.Bool("complete", result.Detection.Complete),
		slog.Any("missing", result.Detection.Missing))
	return result, nil
}

// Confirm stores a user approved mapping for the header layout of columns
func (s *AnalysisService) Confirm(ctx context.Context, columns []string, m domain.ColumnMapping) (mapping.ConfirmedMapping, error) {
	if s.store == nil {
		return mapping.ConfirmedMapping{}, ErrServiceUnavailable
	}
	if len(columns) == 0 {
		return mapping.ConfirmedMapping{}, ErrNoColumns
	}
	entry, err := s.store.Confirm(columns, m)
	if err != nil {
		return mapping.ConfirmedMapping{}, err
	}
	if s.metrics != nil {
		s.metrics.MappingConfirmations.Add(ctx, 1)
	}
	return entry, nil
}

// ConfirmedMappings lists the stored mappings ordered by fingerprint
func (s *AnalysisService) ConfirmedMappings(ctx context.Context) ([]mapping.ConfirmedMapping, error) {
	if s.store == nil {
		return nil, ErrServiceUnavailable
	}
	return s.store.List(), nil
}

// Forget drops the confirmed mapping for the header layout of columns and
// reports whether one existed
func (s *AnalysisService) Forget(ctx context.Context, columns []string) (bool, error) {
	if s.store == nil {
		return false, ErrServiceUnavailable
	}
	if len(columns) == 0 {
		return false, ErrNoColumns
	}
	removed := s.store.Forget(columns)
	s.logger.InfoContext(ctx, "confirmed mapping forgotten",
		slog.String("fingerprint", mapping.Fingerprint(columns)),
		slog.Bool("removed", removed))
	return removed, nil
}

// Analyze runs the full pipeline over req.Table
func (s *AnalysisService) Analyze(ctx context.Context, req AnalysisRequest) (result *AnalysisResult, err error) {
	start := time.Now()
	runID := s.newRunID()
	ctx = infrastructure.WithTraceID(ctx, runID)
	logger := s.logger.With(slog.String("run_id", runID))

	ctx, span := s.tracer.Start(ctx, "analysis.run",
		trace.WithAttributes(
			attribute.String("analysis.run_id", runID),
			attribute.Int("table.rows", req.Table.Len())))
	defer span.End()

	opts := s.engine.Options()
	if req.Options != nil {
		opts = *req.Options
	}

	var (
		source MappingSource
		report dataprocessing.Report
	)
	defer func() {
		infrastructure.RecordAnalysisMetrics(ctx, s.metrics, string(source), report.TotalRows, len(report.Skipped), time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.WarnContext(ctx, "analysis failed", slog.String("error", err.Error()))
		}
	}()

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	m, source, err := s.resolveMapping(ctx, req)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("mapping.source", string(source)))

	table, report, err := s.normalizer.Normalize(req.Table, m)
	if err != nil {
		return nil, err
	}
	infrastructure.AddSpanEvent(ctx, "normalized",
		attribute.Int("rows.kept", report.Kept),
		attribute.Int("rows.skipped", len(report.Skipped)))

	metrics, err := s.engine.AnalyzeWithOptions(ctx, table, opts)
	if err != nil {
		return nil, err
	}

	result = &AnalysisResult{
		RunID:         runID,
		Mapping:       m,
		MappingSource: source,
		Report:        report,
		Metrics:       metrics,
		Options:       opts,
		DurationMS:    time.Since(start).Milliseconds(),
	}
	logger.InfoContext(ctx, "analysis run complete",
		slog.String("mapping_source", string(source)),
		slog.Int("rows", report.TotalRows),
		slog.Int("kept", report.Kept),
		slog.Int("warnings", len(metrics.Warnings)),
		slog.Int64("duration_ms", result.DurationMS))
	return result, nil
}

// resolveMapping picks the explicit mapping, then a confirmed one, then
// runs detection. A table without rows never fails on an incomplete mapping.
func (s *AnalysisService) resolveMapping(ctx context.Context, req AnalysisRequest) (domain.ColumnMapping, MappingSource, error) {
	if len(req.Mapping) > 0 {
		return req.Mapping, MappingExplicit, nil
	}
	if s.store != nil {
		if m, ok := s.store.Lookup(req.Table.Columns); ok {
			if s.metrics != nil {
				s.metrics.MappingReuses.Add(ctx, 1)
			}
			return m, MappingConfirmed, nil
		}
	}

	detection := s.detector.Detect(req.Table.Columns, req.Table.Rows)
	if s.metrics != nil {
		s.metrics.MappingDetections.Add(ctx, 1)
	}
	if err := detection.Err(); err != nil {
		var incomplete *mapping.IncompleteMappingError
		if req.Table.Len() == 0 && errors.As(err, &incomplete) {
			return detection.Mapping, MappingNone, nil
		}
		return nil, MappingDetected, err
	}
	return detection.Mapping, MappingDetected, nil
}
