package handlers

import (
	"errors"
	"net/http"

	apperrors "github.com/hostwatch/hostwatch/internal/pkg/errors"
	"github.com/hostwatch/hostwatch/internal/pkg/logger"
	"github.com/hostwatch/hostwatch/internal/pkg/utils"
	"github.com/hostwatch/hostwatch/internal/services"
)

// EvaluationHandler triggers evaluation passes on demand.
type EvaluationHandler struct {
	service *services.EvaluationService
	logger  *logger.Logger
}

// NewEvaluationHandler creates a new evaluation handler
func NewEvaluationHandler(service *services.EvaluationService, log *logger.Logger) *EvaluationHandler {
	return &EvaluationHandler{service: service, logger: log}
}

// Run handles POST /api/v1/evaluate, returning the pass summary. A pass
// already in flight yields a conflict rather than queueing.
func (h *EvaluationHandler) Run(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.RunPass(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrPassInProgress) {
			utils.WriteError(w, apperrors.Conflict("Evaluation pass already in progress"))
			return
		}
		writeServiceError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, summary)
}
