package services

import "errors"

// Analysis service errors
var (
	// Upload errors
	ErrNoFile       = errors.New("no file uploaded")
	ErrFileTooLarge = errors.New("uploaded file exceeds size limit")
	ErrNoColumns    = errors.New("table has no columns")

	// General errors
	ErrInvalidInput       = errors.New("invalid input")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
