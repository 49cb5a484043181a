package client

import "fmt"

// APIError is the collector's error envelope.
type APIError struct {
	StatusCode int         `json:"-"`
	OK         bool        `json:"ok"`
	Code       string      `json:"error"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("API error [%s] (status: %d)", e.Code, e.StatusCode)
}

// IsAuthError reports whether the credential was missing, mismatched or
// unknown. These never succeed on retry.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// IsValidationError returns true for a 400 rejection
func (e *APIError) IsValidationError() bool {
	return e.StatusCode == 400
}

// IsNotFound returns true for a 404
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsServerError returns true for a 5xx response
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500
}

// Retryable reports whether resending the identical request might succeed.
func (e *APIError) Retryable() bool {
	return e.IsServerError() || e.StatusCode == 429
}
