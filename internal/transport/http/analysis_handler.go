package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"jitu/internal/analytics"
	apierrors "jitu/internal/errors"
	mw "jitu/internal/middleware"
	"jitu/internal/services"
	"jitu/pkg/contracts/domain"
)

// Query parameter bounds for analysis overrides
const (
	maxInactivityDays = 3650
	maxTopN           = 1000
	// MappingField is the optional multipart field holding a JSON ColumnMapping
	MappingField = "mapping"
)

// AnalysisHandler runs the analysis pipeline over uploaded files
type AnalysisHandler struct {
	service        AnalysisServiceInterface
	query          *mw.QueryParamValidator
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service AnalysisServiceInterface, query *mw.QueryParamValidator, errorHandler *apierrors.ErrorHandler, maxUploadBytes int64, logger *slog.Logger) *AnalysisHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisHandler{
		service:        service,
		query:          query,
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "analysis_handler")),
	}
}

// Analyze handles POST /api/v1/analyze
//
// The multipart form carries the sales file in "file" and, optionally, a
// JSON object mapping roles to column labels in "mapping". Query parameters
// granularity, inactivity_days, pareto_target and top_n override the
// configured analysis defaults for this run.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	opts, ok := h.options(w, r)
	if !ok {
		return
	}

	upload, err := loadUpload(w, r, h.service, h.maxUploadBytes)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var explicit domain.ColumnMapping
	if raw := r.FormValue(MappingField); raw != "" {
		if err := json.Unmarshal([]byte(raw), &explicit); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation(MappingField,
				"mapping must be a JSON object of role to column label"))
			return
		}
	}

	result, err := h.service.Analyze(r.Context(), services.AnalysisRequest{
		Table:   upload.table,
		Mapping: explicit,
		Options: &opts,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "analysis served",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("run_id", result.RunID),
		slog.String("filename", upload.filename),
		slog.String("mapping_source", string(result.MappingSource)),
		slog.Int("rows_kept", result.Report.Kept),
	)
	render.JSON(w, r, result)
}

// options merges query overrides into the service defaults. It writes the
// error response itself and reports false when a parameter is invalid.
func (h *AnalysisHandler) options(w http.ResponseWriter, r *http.Request) (analytics.Options, bool) {
	opts := h.service.DefaultOptions()

	if raw := r.URL.Query().Get("granularity"); raw != "" {
		g, err := domain.ParseGranularity(raw)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("granularity", err.Error()))
			return opts, false
		}
		opts.Granularity = g
	}

	var ok bool
	if opts.InactivityDays, ok = h.query.ValidateInt(w, r, "inactivity_days", 0, maxInactivityDays, opts.InactivityDays); !ok {
		return opts, false
	}
	if opts.ParetoTarget, ok = h.query.ValidateFloat(w, r, "pareto_target", 0, 1, opts.ParetoTarget); !ok {
		return opts, false
	}
	if opts.TopN, ok = h.query.ValidateInt(w, r, "top_n", 0, maxTopN, opts.TopN); !ok {
		return opts, false
	}
	return opts, true
}
