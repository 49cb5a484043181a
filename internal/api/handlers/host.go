package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/hostwatch/hostwatch/internal/api/dto"
	"github.com/hostwatch/hostwatch/internal/domain/host"
	"github.com/hostwatch/hostwatch/internal/domain/sample"
	apperrors "github.com/hostwatch/hostwatch/internal/pkg/errors"
	"github.com/hostwatch/hostwatch/internal/pkg/logger"
	"github.com/hostwatch/hostwatch/internal/pkg/utils"
	"github.com/hostwatch/hostwatch/internal/pkg/validator"
)

// HostHandler handles admin host management.
type HostHandler struct {
	service   host.Service
	samples   sample.Repository
	logger    *logger.Logger
	validator *validator.Validator
}

// NewHostHandler creates a new host handler
func NewHostHandler(service host.Service, samples sample.Repository, log *logger.Logger, val *validator.Validator) *HostHandler {
	return &HostHandler{service: service, samples: samples, logger: log, validator: val}
}

// Register handles POST /api/v1/hosts. The response is the only place the
// host key is ever returned.
func (h *HostHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterHostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, apperrors.InvalidJSON())
		return
	}
	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, apperrors.Validation(validationErrs))
		return
	}

	created, err := h.service.Register(r.Context(), req.Name, req.OSName, req.OSVersion, req.Key)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteData(w, http.StatusCreated, dto.HostFromDomain(created, true))
}

// List handles GET /api/v1/hosts
func (h *HostHandler) List(w http.ResponseWriter, r *http.Request) {
	hosts, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, dto.HostsFromDomain(hosts))
}

// Get handles GET /api/v1/hosts/{id}
func (h *HostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeServiceError(w, err)
		return
	}

	found, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, dto.HostFromDomain(found, false))
}

// Deactivate handles DELETE /api/v1/hosts/{id}. Deactivation keeps history;
// the host just stops authenticating and being evaluated.
func (h *HostHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := h.service.Deactivate(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteOK(w, http.StatusOK, nil)
}

// Samples handles GET /api/v1/hosts/{id}/samples with optional from, to and
// limit query parameters.
func (h *HostHandler) Samples(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if _, err := h.service.Get(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	from := time.Time{}
	to := time.Now().UTC()
	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.WriteError(w, apperrors.BadRequest("Invalid from timestamp"))
			return
		}
		from = t.UTC()
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.WriteError(w, apperrors.BadRequest("Invalid to timestamp"))
			return
		}
		to = t.UTC()
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	samples, err := h.samples.ListForHost(r.Context(), id, from, to, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, samples)
}
