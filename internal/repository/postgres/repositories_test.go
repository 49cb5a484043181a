package postgres_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hostwatch/hostwatch/internal/domain/alert"
	"github.com/hostwatch/hostwatch/internal/domain/check"
	"github.com/hostwatch/hostwatch/internal/domain/host"
	"github.com/hostwatch/hostwatch/internal/domain/sample"
	apperrors "github.com/hostwatch/hostwatch/internal/pkg/errors"
	"github.com/hostwatch/hostwatch/internal/repository/postgres"
	"github.com/hostwatch/hostwatch/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createHost(t *testing.T, repo host.Repository, name string) *host.Host {
	t.Helper()
	h := &host.Host{Name: name, Key: name + "-key", OSName: "linux", IsActive: true}
	id, err := repo.Create(context.Background(), h)
	require.NoError(t, err)
	h.ID = id
	return h
}

func TestHostRepositoryRoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewHostRepository(db)
	ctx := context.Background()

	h := createHost(t, repo, "web-1")

	got, err := repo.GetByID(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, "web-1", got.Name)
	assert.Equal(t, "web-1-key", got.Key)
	assert.Equal(t, "linux", got.OSName)
	assert.True(t, got.IsActive)
	assert.Nil(t, got.LastSeen)
	assert.False(t, got.CreatedAt.IsZero())

	byKey, err := repo.GetByKey(ctx, "web-1-key")
	require.NoError(t, err)
	assert.Equal(t, h.ID, byKey.ID)
}

func TestHostRepositoryUniqueViolations(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewHostRepository(db)
	ctx := context.Background()

	createHost(t, repo, "web-1")

	_, err := repo.Create(ctx, &host.Host{Name: "web-1", Key: "different-key", IsActive: true})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeConflict, appErr.Code)

	_, err = repo.Create(ctx, &host.Host{Name: "web-2", Key: "web-1-key", IsActive: true})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeConflict, appErr.Code)
}

func TestHostRepositoryTouchLastSeen(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewHostRepository(db)
	ctx := context.Background()

	h := createHost(t, repo, "web-1")
	seen := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	require.NoError(t, repo.TouchLastSeen(ctx, h.ID, seen))

	got, err := repo.GetByID(ctx, h.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastSeen)
	assert.True(t, got.LastSeen.Equal(seen))
}

func TestHostRepositoryDeactivateHidesFromKeyLookup(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewHostRepository(db)
	ctx := context.Background()

	h := createHost(t, repo, "web-1")
	require.NoError(t, repo.Deactivate(ctx, h.ID))

	_, err := repo.GetByKey(ctx, "web-1-key")
	assert.Error(t, err)

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSampleRepositoryRoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	hosts := postgres.NewHostRepository(db)
	samples := postgres.NewSampleRepository(db)
	ctx := context.Background()

	h := createHost(t, hosts, "web-1")

	cpu, mem, disk := 12.5, 60.0, 71.3
	memUsed := int64(4096)
	ip := "10.0.0.5"
	dataset := "clickstream"
	minTS := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s := &sample.Sample{
		HostID:      h.ID,
		CollectedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		IntIP:       &ip,
		CPUPct:      &cpu,
		MemPct:      &mem,
		MemUsedMB:   &memUsed,
		DiskPct:     &disk,
		DatasetName: &dataset,
		MinEventTS:  &minTS,
		Extra:       json.RawMessage(`{"gpu_pct": 44.5}`),
	}
	id, err := samples.Insert(ctx, s)
	require.NoError(t, err)

	got, err := samples.LatestForHost(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.True(t, got.CollectedAt.Equal(s.CollectedAt))
	require.NotNil(t, got.CPUPct)
	assert.Equal(t, cpu, *got.CPUPct)
	require.NotNil(t, got.MemUsedMB)
	assert.Equal(t, memUsed, *got.MemUsedMB)
	require.NotNil(t, got.IntIP)
	assert.Equal(t, ip, *got.IntIP)
	require.NotNil(t, got.DatasetName)
	assert.Equal(t, dataset, *got.DatasetName)
	require.NotNil(t, got.MinEventTS)
	assert.True(t, got.MinEventTS.Equal(minTS))
	assert.JSONEq(t, `{"gpu_pct": 44.5}`, string(got.Extra))
	assert.Nil(t, got.PublicIP)
	assert.Nil(t, got.DiskTotalGB)
}

func TestSampleRepositoryLatestOrdering(t *testing.T) {
	db := testutil.NewTestDB(t)
	hosts := postgres.NewHostRepository(db)
	samples := postgres.NewSampleRepository(db)
	ctx := context.Background()

	h := createHost(t, hosts, "web-1")
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Out-of-order arrival: the newest collected_at wins regardless
	for _, offset := range []time.Duration{2 * time.Minute, 5 * time.Minute, time.Minute} {
		v := offset.Minutes()
		_, err := samples.Insert(ctx, &sample.Sample{HostID: h.ID, CollectedAt: base.Add(offset), CPUPct: &v})
		require.NoError(t, err)
	}

	got, err := samples.LatestForHost(ctx, h.ID)
	require.NoError(t, err)
	assert.True(t, got.CollectedAt.Equal(base.Add(5*time.Minute)))

	// Equal collected_at resolves by highest id, i.e. last inserted
	first, err := samples.Insert(ctx, &sample.Sample{HostID: h.ID, CollectedAt: base.Add(10 * time.Minute)})
	require.NoError(t, err)
	second, err := samples.Insert(ctx, &sample.Sample{HostID: h.ID, CollectedAt: base.Add(10 * time.Minute)})
	require.NoError(t, err)
	require.Greater(t, second, first)

	got, err = samples.LatestForHost(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, second, got.ID)
}

func TestSampleRepositoryListWindow(t *testing.T) {
	db := testutil.NewTestDB(t)
	hosts := postgres.NewHostRepository(db)
	samples := postgres.NewSampleRepository(db)
	ctx := context.Background()

	h := createHost(t, hosts, "web-1")
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		_, err := samples.Insert(ctx, &sample.Sample{HostID: h.ID, CollectedAt: base.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
	}

	got, err := samples.ListForHost(ctx, h.ID, base.Add(2*time.Hour), base.Add(5*time.Hour), 100)
	require.NoError(t, err)
	assert.Len(t, got, 4)

	got, err = samples.ListForHost(ctx, h.ID, base, base.Add(24*time.Hour), 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	// Newest first
	assert.True(t, got[0].CollectedAt.After(got[1].CollectedAt))
}

func TestCheckRepositoryDefaultsSeeded(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewCheckRepository(db)

	kinds, err := repo.ListKinds(context.Background())
	require.NoError(t, err)
	require.Len(t, kinds, 4)

	byKey := map[string]*check.Kind{}
	for _, k := range kinds {
		byKey[k.Key] = k
	}
	require.Contains(t, byKey, "host_online")
	assert.Equal(t, check.SeverityL1, byKey["host_online"].Severity)
	require.Contains(t, byKey, "disk_space")
	assert.Equal(t, check.SeverityL2, byKey["disk_space"].Severity)

	var params map[string]float64
	require.NoError(t, json.Unmarshal(byKey["disk_space"].DefaultParams, &params))
	assert.Equal(t, float64(90), params["threshold_pct"])
}

func TestCheckRepositoryBindingLifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)
	hosts := postgres.NewHostRepository(db)
	repo := postgres.NewCheckRepository(db)
	ctx := context.Background()

	h := createHost(t, hosts, "web-1")
	disk, err := repo.GetKindByKey(ctx, "disk_space")
	require.NoError(t, err)

	require.NoError(t, repo.Upsert(ctx, &check.Binding{
		HostID:  h.ID,
		CheckID: disk.ID,
		Enabled: true,
		Params:  json.RawMessage(`{"threshold_pct": 80}`),
	}))

	rows, err := repo.BindingsFor(ctx, h.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "disk_space", rows[0].Key)
	assert.JSONEq(t, `{"threshold_pct": 80}`, string(rows[0].Params))

	// Upsert replaces in place
	require.NoError(t, repo.Upsert(ctx, &check.Binding{
		HostID:  h.ID,
		CheckID: disk.ID,
		Enabled: false,
	}))
	rows, err = repo.BindingsFor(ctx, h.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	bindings, err := repo.ListBindings(ctx, h.ID)
	require.NoError(t, err)
	require.Len(t, bindings, 1)
	assert.False(t, bindings[0].Enabled)

	require.NoError(t, repo.Delete(ctx, h.ID, disk.ID))
	bindings, err = repo.ListBindings(ctx, h.ID)
	require.NoError(t, err)
	assert.Empty(t, bindings)
}

func TestAlertRepositoryLifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)
	hosts := postgres.NewHostRepository(db)
	checks := postgres.NewCheckRepository(db)
	alerts := postgres.NewAlertRepository(db)
	ctx := context.Background()

	h := createHost(t, hosts, "web-1")
	disk, err := checks.GetKindByKey(ctx, "disk_space")
	require.NoError(t, err)

	// No history yet
	status, err := alerts.CurrentStatus(ctx, h.ID, disk.ID)
	require.NoError(t, err)
	assert.Equal(t, alert.StatusNone, status)

	id, err := alerts.Create(ctx, &alert.Alert{
		HostID:      h.ID,
		CheckID:     disk.ID,
		TriggeredAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Severity:    check.SeverityL2,
		Message:     "Host 'web-1' disk usage critical: 95.0% (threshold: 90%)",
		Status:      alert.StatusOpen,
	})
	require.NoError(t, err)

	status, err = alerts.CurrentStatus(ctx, h.ID, disk.ID)
	require.NoError(t, err)
	assert.Equal(t, alert.StatusOpen, status)

	require.NoError(t, alerts.ResolveLatestOpen(ctx, h.ID, disk.ID, "Host 'web-1' disk usage normal: 40.0%"))

	got, err := alerts.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, alert.StatusResolved, got.Status)
	assert.Equal(t,
		"Host 'web-1' disk usage critical: 95.0% (threshold: 90%) -> RESOLVED: Host 'web-1' disk usage normal: 40.0%",
		got.Message)

	status, err = alerts.CurrentStatus(ctx, h.ID, disk.ID)
	require.NoError(t, err)
	assert.Equal(t, alert.StatusResolved, status)

	// Resolving again is a no-op
	require.NoError(t, alerts.ResolveLatestOpen(ctx, h.ID, disk.ID, "still fine"))
	got, err = alerts.GetByID(ctx, id)
	require.NoError(t, err)
	assert.NotContains(t, got.Message, "still fine")
}

func TestAlertRepositoryCurrentStatusUsesLatestEpisode(t *testing.T) {
	db := testutil.NewTestDB(t)
	hosts := postgres.NewHostRepository(db)
	checks := postgres.NewCheckRepository(db)
	alerts := postgres.NewAlertRepository(db)
	ctx := context.Background()

	h := createHost(t, hosts, "web-1")
	disk, err := checks.GetKindByKey(ctx, "disk_space")
	require.NoError(t, err)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	_, err = alerts.Create(ctx, &alert.Alert{
		HostID: h.ID, CheckID: disk.ID, TriggeredAt: base,
		Severity: check.SeverityL2, Message: "first", Status: alert.StatusResolved,
	})
	require.NoError(t, err)
	_, err = alerts.Create(ctx, &alert.Alert{
		HostID: h.ID, CheckID: disk.ID, TriggeredAt: base.Add(time.Hour),
		Severity: check.SeverityL2, Message: "second", Status: alert.StatusOpen,
	})
	require.NoError(t, err)

	status, err := alerts.CurrentStatus(ctx, h.ID, disk.ID)
	require.NoError(t, err)
	assert.Equal(t, alert.StatusOpen, status)
}

func TestAlertRepositoryAcknowledge(t *testing.T) {
	db := testutil.NewTestDB(t)
	hosts := postgres.NewHostRepository(db)
	checks := postgres.NewCheckRepository(db)
	alerts := postgres.NewAlertRepository(db)
	ctx := context.Background()

	h := createHost(t, hosts, "web-1")
	disk, err := checks.GetKindByKey(ctx, "disk_space")
	require.NoError(t, err)

	id, err := alerts.Create(ctx, &alert.Alert{
		HostID: h.ID, CheckID: disk.ID, TriggeredAt: time.Now().UTC(),
		Severity: check.SeverityL2, Message: "breach", Status: alert.StatusOpen,
	})
	require.NoError(t, err)

	require.NoError(t, alerts.Acknowledge(ctx, id))

	got, err := alerts.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, alert.StatusAcknowledged, got.Status)

	// Only open alerts can be acknowledged
	assert.Error(t, alerts.Acknowledge(ctx, id))
}

func TestAlertRepositoryListAndCounts(t *testing.T) {
	db := testutil.NewTestDB(t)
	hosts := postgres.NewHostRepository(db)
	checks := postgres.NewCheckRepository(db)
	alerts := postgres.NewAlertRepository(db)
	ctx := context.Background()

	h1 := createHost(t, hosts, "web-1")
	h2 := createHost(t, hosts, "web-2")
	disk, err := checks.GetKindByKey(ctx, "disk_space")
	require.NoError(t, err)
	cpu, err := checks.GetKindByKey(ctx, "cpu_usage")
	require.NoError(t, err)

	now := time.Now().UTC()
	seed := []*alert.Alert{
		{HostID: h1.ID, CheckID: disk.ID, TriggeredAt: now, Severity: check.SeverityL2, Message: "a", Status: alert.StatusOpen},
		{HostID: h1.ID, CheckID: cpu.ID, TriggeredAt: now, Severity: check.SeverityL2, Message: "b", Status: alert.StatusResolved},
		{HostID: h2.ID, CheckID: disk.ID, TriggeredAt: now, Severity: check.SeverityL2, Message: "c", Status: alert.StatusOpen},
	}
	for _, a := range seed {
		_, err := alerts.Create(ctx, a)
		require.NoError(t, err)
	}

	open, err := alerts.List(ctx, alert.Filter{Status: alert.StatusOpen}, 0)
	require.NoError(t, err)
	assert.Len(t, open, 2)

	h1Alerts, err := alerts.List(ctx, alert.Filter{HostID: h1.ID}, 0)
	require.NoError(t, err)
	assert.Len(t, h1Alerts, 2)

	counts, err := alerts.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[alert.StatusOpen])
	assert.Equal(t, 1, counts[alert.StatusResolved])
}

func TestForeignKeyCascadeOnHostDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	hosts := postgres.NewHostRepository(db)
	samples := postgres.NewSampleRepository(db)
	ctx := context.Background()

	h := createHost(t, hosts, "web-1")
	_, err := samples.Insert(ctx, &sample.Sample{HostID: h.ID, CollectedAt: time.Now().UTC()})
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, "DELETE FROM hosts WHERE host_id = ?", h.ID)
	require.NoError(t, err)

	_, err = samples.LatestForHost(ctx, h.ID)
	assert.Error(t, err)
}
