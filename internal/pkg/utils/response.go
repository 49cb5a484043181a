package utils

import (
	"encoding/json"
	"net/http"

	"github.com/hostwatch/hostwatch/internal/pkg/errors"
)

// OKResponse is the success envelope. Extra fields ride alongside "ok"
// rather than nested under a data key; reporting agents depend on the flat
// {"ok":true,"data_id":N} shape.
type OKResponse map[string]interface{}

// ErrorResponse is the failure envelope with a stable error code string.
type ErrorResponse struct {
	OK      bool        `json:"ok"`
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteOK writes a successful response, merging the given fields into the envelope.
func WriteOK(w http.ResponseWriter, status int, fields map[string]interface{}) error {
	resp := OKResponse{"ok": true}
	for k, v := range fields {
		resp[k] = v
	}
	return WriteJSON(w, status, resp)
}

// WriteData writes a successful response with the payload under "data".
func WriteData(w http.ResponseWriter, status int, data interface{}) error {
	return WriteJSON(w, status, OKResponse{"ok": true, "data": data})
}

// WriteError writes an error JSON response from AppError
func WriteError(w http.ResponseWriter, err *errors.AppError) error {
	return WriteJSON(w, err.StatusCode, ErrorResponse{
		OK:      false,
		Error:   err.Code,
		Details: err.Details,
	})
}

// WriteErrorMessage writes a simple error response with the given code
func WriteErrorMessage(w http.ResponseWriter, status int, code string) error {
	return WriteJSON(w, status, ErrorResponse{
		OK:    false,
		Error: code,
	})
}
