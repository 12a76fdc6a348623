package http

import (
	"context"
	"io"

	"jitu/internal/analytics"
	"jitu/internal/mapping"
	"jitu/internal/services"
	"jitu/pkg/contracts/domain"
)

// AnalysisServiceInterface defines the pipeline operations the handlers use
type AnalysisServiceInterface interface {
	DefaultOptions() analytics.Options
	Load(ctx context.Context, r io.Reader, filename string) (domain.RawTable, error)
	Detect(ctx context.Context, table domain.RawTable) (services.DetectionResult, error)
	Confirm(ctx context.Context, columns []string, m domain.ColumnMapping) (mapping.ConfirmedMapping, error)
	ConfirmedMappings(ctx context.Context) ([]mapping.ConfirmedMapping, error)
	Forget(ctx context.Context, columns []string) (bool, error)
	Analyze(ctx context.Context, req services.AnalysisRequest) (*services.AnalysisResult, error)
}

var _ AnalysisServiceInterface = (*services.AnalysisService)(nil)
