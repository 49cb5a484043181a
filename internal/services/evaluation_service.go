package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hostwatch/hostwatch/internal/checks"
	"github.com/hostwatch/hostwatch/internal/domain/alert"
	"github.com/hostwatch/hostwatch/internal/domain/check"
	"github.com/hostwatch/hostwatch/internal/domain/host"
	"github.com/hostwatch/hostwatch/internal/domain/sample"
	apperrors "github.com/hostwatch/hostwatch/internal/pkg/errors"
	"github.com/hostwatch/hostwatch/internal/pkg/logger"
	"github.com/hostwatch/hostwatch/internal/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// ErrPassInProgress is returned when a pass is requested while one is running.
// The caller simply waits for the next cadence tick.
var ErrPassInProgress = fmt.Errorf("evaluation pass already in progress")

// PassSummary reports what one evaluation pass did.
type PassSummary struct {
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"duration"`
	HostsChecked   int           `json:"hosts_checked"`
	ChecksRun      int           `json:"checks_run"`
	AlertsOpened   int           `json:"alerts_opened"`
	AlertsResolved int           `json:"alerts_resolved"`
	Errors         int           `json:"errors"`
	Hosts          []*HostResult `json:"hosts"`
}

// HostResult reports the outcome of one host's checks within a pass.
type HostResult struct {
	HostID         int64    `json:"host_id"`
	HostName       string   `json:"host_name"`
	ChecksRun      int      `json:"checks_run"`
	AlertsOpened   int      `json:"alerts_opened"`
	AlertsResolved int      `json:"alerts_resolved"`
	Errors         int      `json:"errors"`
	Details        []string `json:"details"`
}

// EvaluationService runs the alert state machine over all active hosts. It is
// stateless between passes; all lifecycle state lives in the alert store.
type EvaluationService struct {
	hosts       host.Repository
	samples     sample.Repository
	checksSvc   *CheckService
	alerts      alert.Repository
	concurrency int
	logger      *logger.Logger

	// passMu serializes whole passes. Together with each (host, check) pair
	// being evaluated exactly once per pass, this gives the single-writer
	// guarantee the transition table needs.
	passMu sync.Mutex

	// now is swappable in tests
	now func() time.Time
}

// NewEvaluationService creates a new evaluation service
func NewEvaluationService(
	hosts host.Repository,
	samples sample.Repository,
	checksSvc *CheckService,
	alerts alert.Repository,
	concurrency int,
	log *logger.Logger,
) *EvaluationService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &EvaluationService{
		hosts:       hosts,
		samples:     samples,
		checksSvc:   checksSvc,
		alerts:      alerts,
		concurrency: concurrency,
		logger:      log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// RunPass evaluates every enabled check of every active host once and applies
// the alert transition table. A failure to list hosts aborts the whole pass;
// everything below that is isolated per host and per check.
func (s *EvaluationService) RunPass(ctx context.Context) (*PassSummary, error) {
	if !s.passMu.TryLock() {
		return nil, ErrPassInProgress
	}
	defer s.passMu.Unlock()

	start := s.now()
	summary := &PassSummary{StartedAt: start}

	hosts, err := s.hosts.ListActive(ctx)
	if err != nil {
		metrics.RecordPass("error", s.now().Sub(start))
		return nil, apperrors.DatabaseError("Failed to list active hosts", err)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, h := range hosts {
		h := h
		g.Go(func() error {
			result := s.evaluateHost(gctx, h)
			mu.Lock()
			summary.Hosts = append(summary.Hosts, result)
			summary.HostsChecked++
			summary.ChecksRun += result.ChecksRun
			summary.AlertsOpened += result.AlertsOpened
			summary.AlertsResolved += result.AlertsResolved
			summary.Errors += result.Errors
			mu.Unlock()
			return nil
		})
	}

	// Host errors are folded into results, never returned
	_ = g.Wait()

	summary.Duration = s.now().Sub(start)
	passResult := "ok"
	if summary.Errors > 0 {
		passResult = "partial"
	}
	metrics.RecordPass(passResult, summary.Duration)

	s.logger.WithFields(map[string]interface{}{
		"hosts_checked":   summary.HostsChecked,
		"checks_run":      summary.ChecksRun,
		"alerts_opened":   summary.AlertsOpened,
		"alerts_resolved": summary.AlertsResolved,
		"errors":          summary.Errors,
		"duration_ms":     summary.Duration.Milliseconds(),
	}).Info("Evaluation pass complete")

	return summary, nil
}

func (s *EvaluationService) evaluateHost(ctx context.Context, h *host.Host) *HostResult {
	result := &HostResult{HostID: h.ID, HostName: h.Name}

	resolved, configErrs, err := s.checksSvc.ResolveFor(ctx, h.ID)
	if err != nil {
		result.Errors++
		result.Details = append(result.Details, fmt.Sprintf("ERROR: failed to load checks: %v", err))
		return result
	}
	for _, cfgErr := range configErrs {
		result.Errors++
		result.Details = append(result.Details, fmt.Sprintf("ERROR: %v", cfgErr))
	}
	if len(resolved) == 0 && len(configErrs) == 0 {
		result.Details = append(result.Details, fmt.Sprintf("No checks configured for %s", h.Name))
		return result
	}

	// One read serves every check in this pass; the engine only ever judges
	// the most recent sample.
	latest, err := s.samples.LatestForHost(ctx, h.ID)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.ErrCodeNotFound {
			latest = nil // never reported; evaluators treat this as no data
		} else {
			// A store failure is not "never reported". Judging checks
			// without the latest sample would raise bogus offline alerts
			// during an outage, so the host is skipped this pass.
			result.Errors++
			result.Details = append(result.Details, fmt.Sprintf("ERROR: failed to load latest sample: %v", err))
			return result
		}
	}

	for _, rc := range resolved {
		s.evaluateCheck(ctx, h, rc, latest, result)
	}

	return result
}

func (s *EvaluationService) evaluateCheck(ctx context.Context, h *host.Host, rc *check.Resolved, latest *sample.Sample, result *HostResult) {
	ev, err := checks.ForKey(rc.Evaluator, rc.Params)
	if err != nil {
		result.Errors++
		result.Details = append(result.Details, fmt.Sprintf("ERROR: check %q: %v", rc.Key, err))
		s.logger.WithFields(map[string]interface{}{
			"host_id":   h.ID,
			"check_key": rc.Key,
		}).ErrorWithErr(err, "Check misconfigured")
		return
	}

	result.ChecksRun++
	metrics.RecordCheck()

	verdict, err := safeEvaluate(ev, checks.Input{Host: h, Latest: latest, Now: s.now()})
	if err != nil {
		result.Errors++
		result.Details = append(result.Details, fmt.Sprintf("ERROR in %s: %v", rc.Name, err))
		s.logger.WithFields(map[string]interface{}{
			"host_id":   h.ID,
			"check_key": rc.Key,
		}).ErrorWithErr(err, "Check evaluation failed")
		return
	}

	if err := s.applyTransition(ctx, h, rc, verdict, latest, result); err != nil {
		result.Errors++
		result.Details = append(result.Details, fmt.Sprintf("ERROR in %s: %v", rc.Name, err))
		s.logger.WithFields(map[string]interface{}{
			"host_id":   h.ID,
			"check_key": rc.Key,
		}).ErrorWithErr(err, "Alert transition failed")
	}
}

// applyTransition implements the state machine:
//
//	none/resolved + triggered  -> open a new alert
//	open          + triggered  -> no-op (ongoing)
//	anything      + no data    -> no-op (neutral, never resolves)
//	open          + clear      -> resolve the open alert
//	none/resolved + clear      -> no-op
//	acknowledged  + anything   -> no-op until manually closed out
//
// This guarantees at most one open alert per (host, check) and makes alert
// volume proportional to state changes rather than polling frequency.
func (s *EvaluationService) applyTransition(ctx context.Context, h *host.Host, rc *check.Resolved, v checks.Verdict, latest *sample.Sample, result *HostResult) error {
	// Queried fresh for every check; never carried over from a previous one
	current, err := s.alerts.CurrentStatus(ctx, h.ID, rc.CheckID)
	if err != nil {
		return err
	}

	if current == alert.StatusAcknowledged {
		result.Details = append(result.Details, fmt.Sprintf("ACKED: %s - suppressed", rc.Name))
		return nil
	}

	switch {
	case v.Triggered && current != alert.StatusOpen:
		a := &alert.Alert{
			HostID:      h.ID,
			CheckID:     rc.CheckID,
			TriggeredAt: s.now(),
			Severity:    rc.Severity,
			Message:     v.Message,
			Status:      alert.StatusOpen,
		}
		if latest != nil {
			id := latest.ID
			a.SampleID = &id
		}
		alertID, err := s.alerts.Create(ctx, a)
		if err != nil {
			return err
		}
		result.AlertsOpened++
		metrics.RecordAlertOpened()
		result.Details = append(result.Details, fmt.Sprintf("NEW ALERT #%d: %s - %s", alertID, rc.Name, v.Message))

	case v.Triggered:
		result.Details = append(result.Details, fmt.Sprintf("ONGOING: %s - %s", rc.Name, v.Message))

	case v.NoData:
		// Absence of data is not evidence of recovery; an open alert stays
		// open until a sample actually shows the metric back under threshold.
		result.Details = append(result.Details, fmt.Sprintf("NO DATA: %s - %s", rc.Name, v.Message))

	case current == alert.StatusOpen:
		if err := s.alerts.ResolveLatestOpen(ctx, h.ID, rc.CheckID, v.Message); err != nil {
			return err
		}
		result.AlertsResolved++
		metrics.RecordAlertResolved()
		result.Details = append(result.Details, fmt.Sprintf("RESOLVED: %s - %s", rc.Name, v.Message))

	default:
		result.Details = append(result.Details, fmt.Sprintf("OK: %s - %s", rc.Name, v.Message))
	}

	return nil
}

// safeEvaluate keeps a panicking evaluator from taking down the host's other
// checks or the whole pass.
func safeEvaluate(ev checks.Evaluator, in checks.Input) (v checks.Verdict, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("evaluator panic: %v", r)
		}
	}()
	return ev.Evaluate(in), nil
}
