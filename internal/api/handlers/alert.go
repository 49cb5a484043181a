package handlers

import (
	"net/http"
	"strconv"

	"github.com/hostwatch/hostwatch/internal/domain/alert"
	apperrors "github.com/hostwatch/hostwatch/internal/pkg/errors"
	"github.com/hostwatch/hostwatch/internal/pkg/logger"
	"github.com/hostwatch/hostwatch/internal/pkg/utils"
)

// AlertHandler handles admin alert queries and acknowledgement.
type AlertHandler struct {
	repo   alert.Repository
	logger *logger.Logger
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(repo alert.Repository, log *logger.Logger) *AlertHandler {
	return &AlertHandler{repo: repo, logger: log}
}

// List handles GET /api/v1/alerts with optional host_id, check_id, status
// and severity filters.
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := alert.Filter{
		Status:   q.Get("status"),
		Severity: q.Get("severity"),
	}
	if raw := q.Get("host_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			utils.WriteError(w, apperrors.BadRequest("Invalid host_id"))
			return
		}
		filter.HostID = id
	}
	if raw := q.Get("check_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			utils.WriteError(w, apperrors.BadRequest("Invalid check_id"))
			return
		}
		filter.CheckID = id
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	alerts, err := h.repo.List(r.Context(), filter, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, alerts)
}

// Get handles GET /api/v1/alerts/{id}
func (h *AlertHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeServiceError(w, err)
		return
	}

	a, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, a)
}

// Acknowledge handles POST /api/v1/alerts/{id}/ack. Only an open alert can
// be acknowledged; once acknowledged the evaluator leaves it alone.
func (h *AlertHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := h.repo.Acknowledge(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"alert_id": id,
	}).Info("Alert acknowledged")

	utils.WriteOK(w, http.StatusOK, nil)
}

// Summary handles GET /api/v1/alerts/summary, returning counts per status.
func (h *AlertHandler) Summary(w http.ResponseWriter, r *http.Request) {
	counts, err := h.repo.CountByStatus(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, counts)
}
