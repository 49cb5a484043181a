package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	apperrors "github.com/hostwatch/hostwatch/internal/pkg/errors"
	"github.com/hostwatch/hostwatch/internal/pkg/utils"
)

// idParam parses a numeric URL parameter.
func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperrors.BadRequest("Invalid " + name)
	}
	return id, nil
}

// writeServiceError maps any error to the wire, preserving AppError codes
// and downgrading everything else to a generic server error.
func writeServiceError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		utils.WriteError(w, appErr)
		return
	}
	utils.WriteError(w, apperrors.Internal("Unexpected error", err))
}
