package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/hostwatch/hostwatch/internal/domain/alert"
	"github.com/hostwatch/hostwatch/internal/domain/check"
	"github.com/hostwatch/hostwatch/internal/domain/host"
	"github.com/hostwatch/hostwatch/internal/domain/sample"
	apperrors "github.com/hostwatch/hostwatch/internal/pkg/errors"
	"github.com/hostwatch/hostwatch/internal/pkg/logger"
	"github.com/hostwatch/hostwatch/internal/pkg/metrics"
	"github.com/hostwatch/hostwatch/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type evalFixture struct {
	hosts   *testutil.MockHostRepository
	samples *testutil.MockSampleRepository
	checks  *testutil.MockCheckRepository
	alerts  *testutil.MockAlertRepository
	svc     *EvaluationService
}

func newEvalFixture(t *testing.T) *evalFixture {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	f := &evalFixture{
		hosts:   testutil.NewMockHostRepository(),
		samples: testutil.NewMockSampleRepository(),
		checks:  testutil.NewMockCheckRepository(),
		alerts:  testutil.NewMockAlertRepository(),
	}
	f.svc = NewEvaluationService(f.hosts, f.samples, NewCheckService(f.checks, log), f.alerts, 2, log)
	return f
}

func (f *evalFixture) addHost(t *testing.T, name string) *host.Host {
	t.Helper()
	h := &host.Host{Name: name, Key: name + "-key", IsActive: true}
	id, err := f.hosts.Create(context.Background(), h)
	require.NoError(t, err)
	h.ID = id
	return h
}

func (f *evalFixture) bindDiskCheck(t *testing.T, hostID int64, overrides string) *check.Kind {
	t.Helper()
	k := f.checks.AddKind(&check.Kind{
		Name:          "Disk Space",
		Key:           "disk_space",
		Evaluator:     check.EvaluatorDiskSpace,
		DefaultParams: json.RawMessage(`{"threshold_pct": 90}`),
		Severity:      check.SeverityL2,
		Enabled:       true,
	})
	b := &check.Binding{CheckID: k.ID, Enabled: true}
	if overrides != "" {
		b.Params = json.RawMessage(overrides)
	}
	f.checks.Bind(hostID, b)
	return k
}

func (f *evalFixture) reportDisk(t *testing.T, hostID int64, diskPct float64, at time.Time) *sample.Sample {
	t.Helper()
	s := &sample.Sample{HostID: hostID, CollectedAt: at, DiskPct: &diskPct}
	id, err := f.samples.Insert(context.Background(), s)
	require.NoError(t, err)
	s.ID = id
	return s
}

func (f *evalFixture) openAlerts(t *testing.T, hostID int64) []*alert.Alert {
	t.Helper()
	out, err := f.alerts.List(context.Background(), alert.Filter{HostID: hostID, Status: alert.StatusOpen}, 0)
	require.NoError(t, err)
	return out
}

func TestRunPassOpensAlertOnFirstBreach(t *testing.T) {
	f := newEvalFixture(t)
	h := f.addHost(t, "web-1")
	f.bindDiskCheck(t, h.ID, "")
	smp := f.reportDisk(t, h.ID, 95, time.Now().UTC())

	summary, err := f.svc.RunPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.HostsChecked)
	assert.Equal(t, 1, summary.ChecksRun)
	assert.Equal(t, 1, summary.AlertsOpened)
	assert.Equal(t, 0, summary.AlertsResolved)

	open := f.openAlerts(t, h.ID)
	require.Len(t, open, 1)
	assert.Equal(t, check.SeverityL2, open[0].Severity)
	assert.Contains(t, open[0].Message, "disk usage critical")
	require.NotNil(t, open[0].SampleID)
	assert.Equal(t, smp.ID, *open[0].SampleID)
}

func TestRunPassIsIdempotentWhileBreached(t *testing.T) {
	f := newEvalFixture(t)
	h := f.addHost(t, "web-1")
	f.bindDiskCheck(t, h.ID, "")
	f.reportDisk(t, h.ID, 95, time.Now().UTC())

	for i := 0; i < 3; i++ {
		_, err := f.svc.RunPass(context.Background())
		require.NoError(t, err)
	}

	// Still breached, still exactly one open alert
	assert.Len(t, f.openAlerts(t, h.ID), 1)
	assert.Len(t, f.alerts.Alerts, 1)
}

func TestRunPassResolvesWhenClear(t *testing.T) {
	f := newEvalFixture(t)
	h := f.addHost(t, "web-1")
	f.bindDiskCheck(t, h.ID, "")

	// Breach, then recover
	f.reportDisk(t, h.ID, 95, time.Now().UTC().Add(-time.Minute))
	_, err := f.svc.RunPass(context.Background())
	require.NoError(t, err)
	f.reportDisk(t, h.ID, 40, time.Now().UTC())

	summary, err := f.svc.RunPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.AlertsResolved)
	assert.Empty(t, f.openAlerts(t, h.ID))

	require.Len(t, f.alerts.Alerts, 1)
	a := f.alerts.Alerts[0]
	assert.Equal(t, alert.StatusResolved, a.Status)
	assert.Contains(t, a.Message, " -> RESOLVED: ")
}

// Full lifecycle: normal, breach, recover, then a second breach opens a
// second, distinct alert.
func TestRunPassLifecycle(t *testing.T) {
	f := newEvalFixture(t)
	h := f.addHost(t, "db-1")
	f.bindDiskCheck(t, h.ID, "")
	now := time.Now().UTC()

	steps := []struct {
		diskPct      float64
		wantOpened   int
		wantResolved int
		wantAlerts   int
	}{
		{45, 0, 0, 0},
		{92, 1, 0, 1},
		{93, 0, 0, 1},
		{40, 0, 1, 1},
		{45, 0, 0, 1},
		{96, 1, 0, 2},
	}

	for i, step := range steps {
		f.reportDisk(t, h.ID, step.diskPct, now.Add(time.Duration(i)*time.Minute))
		summary, err := f.svc.RunPass(context.Background())
		require.NoError(t, err)
		assert.Equal(t, step.wantOpened, summary.AlertsOpened, "step %d opened", i)
		assert.Equal(t, step.wantResolved, summary.AlertsResolved, "step %d resolved", i)
		assert.Len(t, f.alerts.Alerts, step.wantAlerts, "step %d total alerts", i)
	}
}

func TestRunPassHonorsParamOverrides(t *testing.T) {
	f := newEvalFixture(t)
	h := f.addHost(t, "web-1")
	f.bindDiskCheck(t, h.ID, `{"threshold_pct": 80}`)
	f.reportDisk(t, h.ID, 85, time.Now().UTC())

	summary, err := f.svc.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.AlertsOpened)
}

func TestRunPassAcknowledgedSuppressesEverything(t *testing.T) {
	f := newEvalFixture(t)
	h := f.addHost(t, "web-1")
	f.bindDiskCheck(t, h.ID, "")
	f.reportDisk(t, h.ID, 95, time.Now().UTC().Add(-time.Minute))

	_, err := f.svc.RunPass(context.Background())
	require.NoError(t, err)
	open := f.openAlerts(t, h.ID)
	require.Len(t, open, 1)
	require.NoError(t, f.alerts.Acknowledge(context.Background(), open[0].ID))

	// Still breached: no duplicate alert
	summary, err := f.svc.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.AlertsOpened)

	// Recovered: the acknowledged alert is left alone
	f.reportDisk(t, h.ID, 30, time.Now().UTC())
	summary, err = f.svc.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.AlertsResolved)

	a, err := f.alerts.GetByID(context.Background(), open[0].ID)
	require.NoError(t, err)
	assert.Equal(t, alert.StatusAcknowledged, a.Status)
}

func TestRunPassNoDataIsNeutral(t *testing.T) {
	f := newEvalFixture(t)
	h := f.addHost(t, "web-1")
	f.bindDiskCheck(t, h.ID, "")

	// Never reported: threshold checks have nothing to judge
	summary, err := f.svc.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ChecksRun)
	assert.Equal(t, 0, summary.AlertsOpened)

	// A sample without the disk field is equally neutral, and must not
	// resolve an alert opened on real data.
	f.reportDisk(t, h.ID, 95, time.Now().UTC().Add(-time.Minute))
	_, err = f.svc.RunPass(context.Background())
	require.NoError(t, err)
	require.Len(t, f.openAlerts(t, h.ID), 1)

	blank := &sample.Sample{HostID: h.ID, CollectedAt: time.Now().UTC()}
	_, err = f.samples.Insert(context.Background(), blank)
	require.NoError(t, err)

	summary, err = f.svc.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.AlertsResolved)
	assert.Len(t, f.openAlerts(t, h.ID), 1)
}

func TestRunPassSampleStoreFailureSkipsHost(t *testing.T) {
	f := newEvalFixture(t)
	h := f.addHost(t, "edge-1")
	k := f.checks.AddKind(&check.Kind{
		Name:          "Host Online",
		Key:           "host_online",
		Evaluator:     check.EvaluatorHostOnline,
		DefaultParams: json.RawMessage(`{"offline_threshold_minutes": 60}`),
		Severity:      check.SeverityL1,
		Enabled:       true,
	})
	f.checks.Bind(h.ID, &check.Binding{CheckID: k.ID, Enabled: true})

	// A store outage must read as an error, not as "never reported";
	// otherwise every host with a stale last_seen goes offline at once.
	f.samples.LatestError = apperrors.DatabaseError("Failed to scan sample", context.DeadlineExceeded)

	summary, err := f.svc.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.HostsChecked)
	assert.Equal(t, 0, summary.ChecksRun)
	assert.Equal(t, 0, summary.AlertsOpened)
	assert.Equal(t, 1, summary.Errors)
	assert.Empty(t, f.openAlerts(t, h.ID))

	// Back healthy, the genuinely stale host still triggers.
	f.samples.LatestError = nil
	summary, err = f.svc.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.AlertsOpened)
}

func TestRunPassHostOnline(t *testing.T) {
	f := newEvalFixture(t)
	h := f.addHost(t, "edge-1")
	k := f.checks.AddKind(&check.Kind{
		Name:          "Host Online",
		Key:           "host_online",
		Evaluator:     check.EvaluatorHostOnline,
		DefaultParams: json.RawMessage(`{"offline_threshold_minutes": 60}`),
		Severity:      check.SeverityL1,
		Enabled:       true,
	})
	f.checks.Bind(h.ID, &check.Binding{CheckID: k.ID, Enabled: true})

	// Last report well past the threshold
	f.reportDisk(t, h.ID, 10, time.Now().UTC().Add(-2*time.Hour))
	summary, err := f.svc.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.AlertsOpened)

	open := f.openAlerts(t, h.ID)
	require.Len(t, open, 1)
	assert.Equal(t, check.SeverityL1, open[0].Severity)

	// Fresh report resolves it
	f.reportDisk(t, h.ID, 10, time.Now().UTC())
	summary, err = f.svc.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.AlertsResolved)
}

func TestRunPassIndependentChecksAndHosts(t *testing.T) {
	f := newEvalFixture(t)
	h1 := f.addHost(t, "web-1")
	h2 := f.addHost(t, "web-2")
	f.bindDiskCheck(t, h1.ID, "")
	f.bindDiskCheck(t, h2.ID, "")

	memKind := f.checks.AddKind(&check.Kind{
		Name:          "Memory Usage",
		Key:           "memory_usage",
		Evaluator:     check.EvaluatorMemoryUsage,
		DefaultParams: json.RawMessage(`{"threshold_pct": 90}`),
		Severity:      check.SeverityL2,
		Enabled:       true,
	})
	f.checks.Bind(h1.ID, &check.Binding{CheckID: memKind.ID, Enabled: true})

	disk, mem := 95.0, 50.0
	_, err := f.samples.Insert(context.Background(), &sample.Sample{
		HostID: h1.ID, CollectedAt: time.Now().UTC(), DiskPct: &disk, MemPct: &mem,
	})
	require.NoError(t, err)
	f.reportDisk(t, h2.ID, 40, time.Now().UTC())

	summary, err := f.svc.RunPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.HostsChecked)
	assert.Equal(t, 3, summary.ChecksRun)
	// Only h1's disk check fires; its memory check and all of h2 stay quiet
	assert.Equal(t, 1, summary.AlertsOpened)
	assert.Len(t, f.openAlerts(t, h1.ID), 1)
	assert.Empty(t, f.openAlerts(t, h2.ID))
}

func TestRunPassSkipsMalformedCheckParams(t *testing.T) {
	f := newEvalFixture(t)
	h := f.addHost(t, "web-1")
	f.bindDiskCheck(t, h.ID, "")

	broken := f.checks.AddKind(&check.Kind{
		Name:          "Memory Usage",
		Key:           "memory_usage",
		Evaluator:     check.EvaluatorMemoryUsage,
		DefaultParams: json.RawMessage(`{not json`),
		Severity:      check.SeverityL2,
		Enabled:       true,
	})
	f.checks.Bind(h.ID, &check.Binding{CheckID: broken.ID, Enabled: true})
	f.reportDisk(t, h.ID, 95, time.Now().UTC())

	summary, err := f.svc.RunPass(context.Background())
	require.NoError(t, err)

	// The healthy check still runs and fires
	assert.Equal(t, 1, summary.ChecksRun)
	assert.Equal(t, 1, summary.AlertsOpened)
	assert.Equal(t, 1, summary.Errors)
}

func TestRunPassUnknownEvaluatorIsIsolated(t *testing.T) {
	f := newEvalFixture(t)
	h := f.addHost(t, "web-1")
	f.bindDiskCheck(t, h.ID, "")

	bogus := f.checks.AddKind(&check.Kind{
		Name:      "Mystery",
		Key:       "mystery",
		Evaluator: "mystery_gauge",
		Severity:  check.SeverityL3,
		Enabled:   true,
	})
	f.checks.Bind(h.ID, &check.Binding{CheckID: bogus.ID, Enabled: true})
	f.reportDisk(t, h.ID, 95, time.Now().UTC())

	summary, err := f.svc.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.AlertsOpened)
	assert.Equal(t, 1, summary.Errors)
}

func TestRunPassSkipsInactiveHosts(t *testing.T) {
	f := newEvalFixture(t)
	h := f.addHost(t, "retired-1")
	f.bindDiskCheck(t, h.ID, "")
	f.reportDisk(t, h.ID, 99, time.Now().UTC())
	require.NoError(t, f.hosts.Deactivate(context.Background(), h.ID))

	summary, err := f.svc.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.HostsChecked)
	assert.Empty(t, f.alerts.Alerts)
}

func TestRunPassRejectsOverlap(t *testing.T) {
	f := newEvalFixture(t)
	f.svc.passMu.Lock()
	defer f.svc.passMu.Unlock()

	_, err := f.svc.RunPass(context.Background())
	assert.ErrorIs(t, err, ErrPassInProgress)
}

// passCounter scrapes the process-wide registry for one pass-result series.
// Counters are cumulative across tests, so callers compare deltas.
func passCounter(t *testing.T, result string) float64 {
	t.Helper()
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	prefix := `hostwatch_evaluation_passes_total{result="` + result + `"}`
	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(line, prefix)), 64)
		require.NoError(t, err)
		return v
	}
	return 0
}

func TestRunPassRecordsDegradedResult(t *testing.T) {
	f := newEvalFixture(t)
	h := f.addHost(t, "web-1")
	f.bindDiskCheck(t, h.ID, "")
	f.reportDisk(t, h.ID, 95, time.Now().UTC())
	f.alerts.CreateError = context.DeadlineExceeded

	okBefore := passCounter(t, "ok")
	partialBefore := passCounter(t, "partial")

	_, err := f.svc.RunPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, okBefore, passCounter(t, "ok"))
	assert.Equal(t, partialBefore+1, passCounter(t, "partial"))
}

func TestRunPassCreateFailureDoesNotAbortPass(t *testing.T) {
	f := newEvalFixture(t)
	h1 := f.addHost(t, "web-1")
	h2 := f.addHost(t, "web-2")
	f.bindDiskCheck(t, h1.ID, "")
	f.bindDiskCheck(t, h2.ID, "")
	f.reportDisk(t, h1.ID, 95, time.Now().UTC())
	f.reportDisk(t, h2.ID, 95, time.Now().UTC())

	f.alerts.CreateError = context.DeadlineExceeded

	summary, err := f.svc.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.HostsChecked)
	assert.Equal(t, 0, summary.AlertsOpened)
	assert.Equal(t, 2, summary.Errors)
}
