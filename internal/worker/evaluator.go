package worker

import (
	"context"
	"errors"

	"github.com/hostwatch/hostwatch/internal/pkg/logger"
	"github.com/hostwatch/hostwatch/internal/services"
	"github.com/robfig/cron/v3"
)

// Evaluator runs evaluation passes on a cron cadence. Overlap is handled by
// the service itself; a tick that lands mid-pass is simply skipped.
type Evaluator struct {
	evaluation *services.EvaluationService
	schedule   string
	cron       *cron.Cron
	logger     *logger.Logger
}

// NewEvaluator creates a new evaluation worker
func NewEvaluator(evaluation *services.EvaluationService, schedule string, log *logger.Logger) *Evaluator {
	return &Evaluator{
		evaluation: evaluation,
		schedule:   schedule,
		logger:     log,
	}
}

// Start registers the cron entry and begins ticking. It returns an error only
// for an unparseable schedule.
func (w *Evaluator) Start(ctx context.Context) error {
	w.cron = cron.New()

	_, err := w.cron.AddFunc(w.schedule, func() {
		w.runOnce(ctx)
	})
	if err != nil {
		return err
	}

	w.logger.WithFields(map[string]interface{}{
		"schedule": w.schedule,
	}).Info("Starting evaluation worker")

	w.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running pass to finish.
func (w *Evaluator) Stop() {
	if w.cron == nil {
		return
	}
	stopCtx := w.cron.Stop()
	<-stopCtx.Done()
	w.logger.Info("Evaluation worker stopped")
}

func (w *Evaluator) runOnce(ctx context.Context) {
	summary, err := w.evaluation.RunPass(ctx)
	if err != nil {
		if errors.Is(err, services.ErrPassInProgress) {
			w.logger.Warn("Skipping tick, previous pass still running")
			return
		}
		w.logger.ErrorWithErr(err, "Evaluation pass failed")
		return
	}

	if summary.AlertsOpened > 0 || summary.AlertsResolved > 0 {
		w.logger.WithFields(map[string]interface{}{
			"alerts_opened":   summary.AlertsOpened,
			"alerts_resolved": summary.AlertsResolved,
		}).Info("Alert state changed")
	}
}
