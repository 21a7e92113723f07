package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/jgoulah/personadash/internal/dataset"
	"github.com/jgoulah/personadash/internal/persona"
)

// User-facing messages for the two failures that abort a run
const (
	MsgBadFile      = "Error reading file. Ensure it is a CSV."
	MsgEmptyDataset = "The file contains no records."
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// NewAPIError creates a new APIError with the given parameters
func NewAPIError(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// WithDetails returns a copy carrying additional details
func (e *APIError) WithDetails(details any) *APIError {
	c := *e
	c.Details = details
	return &c
}

var (
	ErrBadFile         = NewAPIError(http.StatusBadRequest, "INVALID_FILE", MsgBadFile)
	ErrEmptyDataset    = NewAPIError(http.StatusUnprocessableEntity, "EMPTY_DATASET", MsgEmptyDataset)
	ErrFileTooLarge    = NewAPIError(http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "The file is larger than the upload limit.")
	ErrNoDataset       = NewAPIError(http.StatusNotFound, "NO_DATASET", "No dataset was loaded at startup.")
	ErrNotFound        = NewAPIError(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrRateLimited     = NewAPIError(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Too many uploads, try again shortly.")
	ErrInternalServer  = NewAPIError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
	ErrInvalidArgument = NewAPIError(http.StatusBadRequest, "INVALID_PARAMETER", "Invalid parameter value")
)

// runError maps a pipeline failure to the error shown to the user
func runError(err error) *APIError {
	var empty *persona.EmptyDatasetError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &empty):
		return ErrEmptyDataset
	case dataset.IsParseError(err):
		return ErrBadFile
	case errors.As(err, &tooLarge):
		return ErrFileTooLarge
	default:
		return ErrInternalServer
	}
}

// outcome is the low-cardinality metrics label for a run result
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	switch runError(err) {
	case ErrEmptyDataset:
		return "empty"
	case ErrBadFile:
		return "parse_error"
	case ErrFileTooLarge:
		return "too_large"
	default:
		return "error"
	}
}
