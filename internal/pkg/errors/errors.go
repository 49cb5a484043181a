package errors

import (
	"fmt"
	"net/http"
)

// AppError represents an application error with additional context
type AppError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	StatusCode int         `json:"-"`
	Internal   error       `json:"-"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

// Unwrap returns the internal error for errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Stable error codes returned on the wire. Reporting agents key their retry
// decisions off these strings, so they must not change.
const (
	ErrCodeMissingHostKey  = "missing_host_key"
	ErrCodeHostKeyMismatch = "host_key_mismatch"
	ErrCodeInvalidHostKey  = "invalid_host_key"
	ErrCodeInvalidJSON     = "invalid_json"
	ErrCodeValidation      = "validation_error"
	ErrCodeServer          = "server_error"
	ErrCodeDatabase        = "database_error"
	ErrCodeConfiguration   = "configuration_error"
	ErrCodeNotFound        = "not_found"
	ErrCodeUnauthorized    = "unauthorized"
	ErrCodeConflict        = "conflict"
	ErrCodeBadRequest      = "bad_request"
	ErrCodeRateLimited     = "rate_limited"
)

// New creates a new AppError
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap wraps an error with an AppError
func Wrap(err error, code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Internal:   err,
	}
}

// WithDetails adds details to an AppError
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// Common error constructors

// MissingHostKey is returned when a report carries no credential at all.
func MissingHostKey() *AppError {
	return New(ErrCodeMissingHostKey, "Missing host key", http.StatusUnauthorized)
}

// HostKeyMismatch is returned when the body host_key disagrees with the header.
func HostKeyMismatch() *AppError {
	return New(ErrCodeHostKeyMismatch, "Host key in body does not match credential", http.StatusUnauthorized)
}

// InvalidHostKey covers both unknown and deactivated keys. The two cases are
// indistinguishable to the caller so that probing cannot reveal which keys exist.
func InvalidHostKey() *AppError {
	return New(ErrCodeInvalidHostKey, "Unknown or inactive host key", http.StatusForbidden)
}

// InvalidJSON creates an error for an unparseable request body
func InvalidJSON() *AppError {
	return New(ErrCodeInvalidJSON, "Request body is not valid JSON", http.StatusBadRequest)
}

// Validation creates a validation error with per-field details
func Validation(details interface{}) *AppError {
	return New(ErrCodeValidation, "Payload failed validation", http.StatusBadRequest).WithDetails(details)
}

// Internal creates an internal server error
func Internal(message string, err error) *AppError {
	return Wrap(err, ErrCodeServer, message, http.StatusInternalServerError)
}

// DatabaseError creates a database error
func DatabaseError(message string, err error) *AppError {
	return Wrap(err, ErrCodeDatabase, message, http.StatusInternalServerError)
}

// Configuration creates a per-check configuration error
func Configuration(message string) *AppError {
	return New(ErrCodeConfiguration, message, http.StatusInternalServerError)
}

// NotFound creates a not found error
func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// Unauthorized creates an unauthorized error
func Unauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message, http.StatusUnauthorized)
}

// Conflict creates a conflict error
func Conflict(message string) *AppError {
	return New(ErrCodeConflict, message, http.StatusConflict)
}

// BadRequest creates a bad request error
func BadRequest(message string) *AppError {
	return New(ErrCodeBadRequest, message, http.StatusBadRequest)
}

// RateLimited creates a 429 error
func RateLimited(message string) *AppError {
	return New(ErrCodeRateLimited, message, http.StatusTooManyRequests)
}
