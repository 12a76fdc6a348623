package http

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	apierrors "jitu/internal/errors"
	"jitu/internal/services"
	"jitu/pkg/contracts/domain"
)

// UploadField is the multipart field carrying the sales file
const UploadField = "file"

// multipartMemory is how much of a form is buffered in memory before
// ParseMultipartForm spills file parts to disk
const multipartMemory = 8 << 20

// openUpload bounds the body to maxBytes, parses the multipart form and
// opens the uploaded file. Callers close the returned file.
func openUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (multipart.File, *multipart.FileHeader, error) {
	if maxBytes > 0 {
		if r.ContentLength > maxBytes {
			return nil, nil, &http.MaxBytesError{Limit: maxBytes}
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, nil, err
		case errors.Is(err, http.ErrNotMultipart):
			return nil, nil, apierrors.New(http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT",
				"Uploads must be sent as multipart/form-data")
		default:
			return nil, nil, apierrors.InvalidRequestWithError(err)
		}
	}

	file, header, err := r.FormFile(UploadField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, apierrors.MissingFileError(UploadField)
		}
		return nil, nil, apierrors.InvalidRequestWithError(err)
	}
	return file, header, nil
}

// serviceError maps service sentinels to API errors. Domain errors pass
// through; the error handler knows how to render them.
func serviceError(err error) error {
	switch {
	case errors.Is(err, services.ErrNoColumns):
		return apierrors.NewWithDetails(http.StatusUnprocessableEntity, "NO_COLUMNS",
			"The table has no header row", err.Error())
	case errors.Is(err, services.ErrServiceUnavailable):
		return apierrors.NewWithDetails(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE",
			"Confirmed mapping storage is disabled", err.Error())
	case errors.Is(err, services.ErrInvalidInput):
		return apierrors.NewValidationError(err.Error())
	}
	return err
}

type tableWithName struct {
	table    domain.RawTable
	filename string
}

// loadUpload opens the upload and loads it through the service
func loadUpload(w http.ResponseWriter, r *http.Request, svc AnalysisServiceInterface, maxBytes int64) (tableWithName, error) {
	file, header, err := openUpload(w, r, maxBytes)
	if err != nil {
		return tableWithName{}, err
	}
	defer file.Close()

	table, err := svc.Load(r.Context(), file, header.Filename)
	if err != nil {
		return tableWithName{}, fmt.Errorf("upload %q: %w", header.Filename, err)
	}
	return tableWithName{table: table, filename: header.Filename}, nil
}
