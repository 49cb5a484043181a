package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hostwatch/hostwatch/internal/api/dto"
	apperrors "github.com/hostwatch/hostwatch/internal/pkg/errors"
	"github.com/hostwatch/hostwatch/internal/pkg/logger"
	"github.com/hostwatch/hostwatch/internal/pkg/utils"
	"github.com/hostwatch/hostwatch/internal/pkg/validator"
	"github.com/hostwatch/hostwatch/internal/services"
)

// CheckHandler handles the check catalog and per-host bindings.
type CheckHandler struct {
	service   *services.CheckService
	logger    *logger.Logger
	validator *validator.Validator
}

// NewCheckHandler creates a new check handler
func NewCheckHandler(service *services.CheckService, log *logger.Logger, val *validator.Validator) *CheckHandler {
	return &CheckHandler{service: service, logger: log, validator: val}
}

// ListKinds handles GET /api/v1/checks
func (h *CheckHandler) ListKinds(w http.ResponseWriter, r *http.Request) {
	kinds, err := h.service.ListKinds(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, kinds)
}

// ListBindings handles GET /api/v1/hosts/{id}/checks
func (h *CheckHandler) ListBindings(w http.ResponseWriter, r *http.Request) {
	hostID, err := idParam(r, "id")
	if err != nil {
		writeServiceError(w, err)
		return
	}

	bindings, err := h.service.ListBindings(r.Context(), hostID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, bindings)
}

// Bind handles PUT /api/v1/hosts/{id}/checks
func (h *CheckHandler) Bind(w http.ResponseWriter, r *http.Request) {
	hostID, err := idParam(r, "id")
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var req dto.BindCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, apperrors.InvalidJSON())
		return
	}
	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, apperrors.Validation(validationErrs))
		return
	}

	binding, err := h.service.Bind(r.Context(), hostID, req.CheckKey, req.IsEnabled(), req.Params)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, binding)
}

// Unbind handles DELETE /api/v1/hosts/{id}/checks/{key}
func (h *CheckHandler) Unbind(w http.ResponseWriter, r *http.Request) {
	hostID, err := idParam(r, "id")
	if err != nil {
		writeServiceError(w, err)
		return
	}
	checkKey := chi.URLParam(r, "key")
	if checkKey == "" {
		utils.WriteError(w, apperrors.BadRequest("Missing check key"))
		return
	}

	if err := h.service.Unbind(r.Context(), hostID, checkKey); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteOK(w, http.StatusOK, nil)
}
