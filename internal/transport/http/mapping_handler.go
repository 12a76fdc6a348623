package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "jitu/internal/errors"
	"jitu/internal/mapping"
	mw "jitu/internal/middleware"
	"jitu/pkg/contracts/domain"
)

// MappingHandler handles column mapping detection and confirmation
type MappingHandler struct {
	service        AnalysisServiceInterface
	validator      *mw.ValidationMiddleware
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewMappingHandler creates a new mapping handler
func NewMappingHandler(service AnalysisServiceInterface, validator *mw.ValidationMiddleware, errorHandler *apierrors.ErrorHandler, maxUploadBytes int64, logger *slog.Logger) *MappingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MappingHandler{
		service:        service,
		validator:      validator,
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "mapping_handler")),
	}
}

// ConfirmRequest is the body of POST /api/v1/mapping/confirm
type ConfirmRequest struct {
	Columns []string             `json:"columns" validate:"required,min=1,dive,required"`
	Mapping domain.ColumnMapping `json:"mapping" validate:"required,min=1,dive,keys,role,endkeys,required"`
}

// ForgetRequest is the body of DELETE /api/v1/mapping/confirmed
type ForgetRequest struct {
	Columns []string `json:"columns" validate:"required,min=1,dive,required"`
}

// ConfirmedList is the response of GET /api/v1/mapping/confirmed
type ConfirmedList struct {
	Count    int                        `json:"count"`
	Mappings []mapping.ConfirmedMapping `json:"mappings"`
}

// Routes returns the mapping routes
func (h *MappingHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/detect", h.Detect)
	r.Post("/confirm", h.Confirm)
	r.Get("/confirmed", h.ListConfirmed)
	r.Delete("/confirmed", h.Forget)
	return r
}

// Detect handles POST /api/v1/mapping/detect
func (h *MappingHandler) Detect(w http.ResponseWriter, r *http.Request) {
	upload, err := loadUpload(w, r, h.service, h.maxUploadBytes)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Detect(r.Context(), upload.table)
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "mapping detected for upload",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("filename", upload.filename),
		slog.Bool("complete", result.Detection.Complete),
		slog.Bool("confirmed", result.Confirmed != nil),
	)
	render.JSON(w, r, result)
}

// Confirm handles POST /api/v1/mapping/confirm
func (h *MappingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	entry, err := h.service.Confirm(r.Context(), req.Columns, req.Mapping)
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "mapping confirmed",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("fingerprint", entry.Fingerprint),
	)
	w.Header().Set("X-Mapping-Fingerprint", entry.Fingerprint)
	w.WriteHeader(http.StatusNoContent)
}

// ListConfirmed handles GET /api/v1/mapping/confirmed
func (h *MappingHandler) ListConfirmed(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ConfirmedMappings(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err))
		return
	}
	render.JSON(w, r, ConfirmedList{Count: len(list), Mappings: list})
}

// Forget handles DELETE /api/v1/mapping/confirmed
func (h *MappingHandler) Forget(w http.ResponseWriter, r *http.Request) {
	var req ForgetRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	removed, err := h.service.Forget(r.Context(), req.Columns)
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err))
		return
	}
	if !removed {
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError("confirmed mapping"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
