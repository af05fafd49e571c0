package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrEmptyFile           = errors.New("file is empty")
	ErrAnalysisInProgress  = errors.New("an analysis is already in progress")
	ErrNoReport            = errors.New("no report available")
	ErrMissingAPIKey       = errors.New("analyzer API key is not configured")
	ErrSourceNotConfigured = errors.New("document source is not configured")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrSchemaViolation     = errors.New("response does not match the report schema")
)

// IsValidation reports whether err was raised while validating a selected file.
func IsValidation(err error) bool {
	return errors.Is(err, ErrUnsupportedFileType) ||
		errors.Is(err, ErrFileTooLarge) ||
		errors.Is(err, ErrEmptyFile)
}

// EncodingError indicates the selected file could not be read or encoded.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding document: %v", e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// Analysis failure reasons.
const (
	ReasonEmptyResponse   = "empty response"
	ReasonSchemaViolation = "schema violation"
	ReasonRequestFailed   = "request failed"
	ReasonRateLimited     = "rate limited"
)

// AnalysisError indicates the remote inference call failed or returned an unusable payload.
type AnalysisError struct {
	Reason     string
	Err        error
	RetryAfter time.Duration // set for ReasonRateLimited when the provider sent Retry-After
}

// NewAnalysisError creates an AnalysisError with the given reason and cause.
func NewAnalysisError(reason string, err error) *AnalysisError {
	return &AnalysisError{Reason: reason, Err: err}
}

func (e *AnalysisError) Error() string {
	if e.Err == nil {
		return "analysis failed: " + e.Reason
	}
	return fmt.Sprintf("analysis failed: %s: %v", e.Reason, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the same request may succeed.
func (e *AnalysisError) Retryable() bool {
	return e.Reason == ReasonRequestFailed || e.Reason == ReasonRateLimited
}

// ErrorKind classifies err into one of the error kinds surfaced to clients.
func ErrorKind(err error) string {
	var encErr *EncodingError
	var anErr *AnalysisError
	switch {
	case err == nil:
		return ""
	case IsValidation(err):
		return "validation"
	case errors.As(err, &encErr):
		return "encoding"
	case errors.As(err, &anErr):
		return "analysis"
	default:
		return "internal"
	}
}
