package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hostwatch/hostwatch/internal/api/dto"
	"github.com/hostwatch/hostwatch/internal/api/middleware"
	apperrors "github.com/hostwatch/hostwatch/internal/pkg/errors"
	"github.com/hostwatch/hostwatch/internal/pkg/logger"
	"github.com/hostwatch/hostwatch/internal/pkg/metrics"
	"github.com/hostwatch/hostwatch/internal/pkg/utils"
	"github.com/hostwatch/hostwatch/internal/pkg/validator"
	"github.com/hostwatch/hostwatch/internal/services"
)

// maxReportBody caps a single report payload at 1 MiB.
const maxReportBody = 1 << 20

// ReportHandler accepts metric reports from agents.
type ReportHandler struct {
	ingest    *services.IngestService
	logger    *logger.Logger
	validator *validator.Validator
}

// NewReportHandler creates a new report handler
func NewReportHandler(ingest *services.IngestService, log *logger.Logger, val *validator.Validator) *ReportHandler {
	return &ReportHandler{ingest: ingest, logger: log, validator: val}
}

// Report handles POST /report. The response body distinguishes every
// rejection reason with a stable error code so agents can decide whether a
// retry is worthwhile.
func (h *ReportHandler) Report(w http.ResponseWriter, r *http.Request) {
	hostKey, ok := middleware.BearerToken(r)
	if !ok {
		metrics.RecordReport("missing_key")
		utils.WriteError(w, apperrors.MissingHostKey())
		return
	}

	var req dto.ReportRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxReportBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.RecordReport("invalid_json")
		utils.WriteError(w, apperrors.InvalidJSON())
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		metrics.RecordReport("validation_error")
		utils.WriteError(w, apperrors.Validation(validationErrs))
		return
	}
	if _, err := req.ParseCollectedAt(); err != nil {
		metrics.RecordReport("validation_error")
		utils.WriteError(w, apperrors.Validation([]validator.ValidationError{{
			Field:   "collected_at",
			Tag:     "timestamp",
			Message: err.Error(),
		}}))
		return
	}

	// A key in the body is legacy; when present it must agree with the
	// credential actually used.
	if req.HostKey != "" && req.HostKey != hostKey {
		metrics.RecordReport("key_mismatch")
		utils.WriteError(w, apperrors.HostKeyMismatch())
		return
	}

	smp, err := req.ToSample()
	if err != nil {
		metrics.RecordReport("validation_error")
		utils.WriteError(w, apperrors.Validation([]validator.ValidationError{{
			Field:   "event_ts",
			Tag:     "timestamp",
			Message: err.Error(),
		}}))
		return
	}

	dataID, err := h.ingest.Ingest(r.Context(), hostKey, smp)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.ErrCodeInvalidHostKey {
			metrics.RecordReport("invalid_key")
		} else {
			metrics.RecordReport("error")
		}
		writeServiceError(w, err)
		return
	}

	metrics.RecordReport("ok")
	utils.WriteOK(w, http.StatusOK, map[string]interface{}{"data_id": dataID})
}
