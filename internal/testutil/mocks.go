package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hostwatch/hostwatch/internal/domain/alert"
	"github.com/hostwatch/hostwatch/internal/domain/check"
	"github.com/hostwatch/hostwatch/internal/domain/host"
	"github.com/hostwatch/hostwatch/internal/domain/sample"
	"github.com/hostwatch/hostwatch/internal/pkg/errors"
)

// MockHostRepository is an in-memory implementation of host.Repository
type MockHostRepository struct {
	mu        sync.Mutex
	Hosts     map[int64]*host.Host
	NextID    int64
	ListError error
}

func NewMockHostRepository() *MockHostRepository {
	return &MockHostRepository{
		Hosts:  make(map[int64]*host.Host),
		NextID: 1,
	}
}

func (m *MockHostRepository) Create(ctx context.Context, h *host.Host) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.Hosts {
		if existing.Name == h.Name || existing.Key == h.Key {
			return 0, errors.Conflict("Host name or key already exists")
		}
	}
	h.ID = m.NextID
	h.CreatedAt = time.Now().UTC()
	m.NextID++
	m.Hosts[h.ID] = h
	return h.ID, nil
}

func (m *MockHostRepository) GetByID(ctx context.Context, id int64) (*host.Host, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.Hosts[id]
	if !ok {
		return nil, errors.NotFound("Host")
	}
	return h, nil
}

func (m *MockHostRepository) GetByKey(ctx context.Context, key string) (*host.Host, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range m.Hosts {
		if h.Key == key && h.IsActive {
			return h, nil
		}
	}
	return nil, errors.NotFound("Host")
}

func (m *MockHostRepository) TouchLastSeen(ctx context.Context, id int64, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.Hosts[id]
	if !ok {
		return errors.NotFound("Host")
	}
	ts := t.UTC()
	h.LastSeen = &ts
	return nil
}

func (m *MockHostRepository) ListActive(ctx context.Context) ([]*host.Host, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var hosts []*host.Host
	for _, h := range m.Hosts {
		if h.IsActive {
			hosts = append(hosts, h)
		}
	}
	sort.Slice(hosts, func(i, j int) bool { return hosts[i].ID < hosts[j].ID })
	return hosts, nil
}

func (m *MockHostRepository) List(ctx context.Context) ([]*host.Host, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var hosts []*host.Host
	for _, h := range m.Hosts {
		hosts = append(hosts, h)
	}
	sort.Slice(hosts, func(i, j int) bool { return hosts[i].ID < hosts[j].ID })
	return hosts, nil
}

func (m *MockHostRepository) Deactivate(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.Hosts[id]
	if !ok {
		return errors.NotFound("Host")
	}
	h.IsActive = false
	return nil
}

// MockSampleRepository is an in-memory implementation of sample.Repository
type MockSampleRepository struct {
	mu          sync.Mutex
	Samples     []*sample.Sample
	NextID      int64
	InsertError error
	LatestError error
}

func NewMockSampleRepository() *MockSampleRepository {
	return &MockSampleRepository{NextID: 1}
}

func (m *MockSampleRepository) Insert(ctx context.Context, s *sample.Sample) (int64, error) {
	if m.InsertError != nil {
		return 0, m.InsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.NextID
	s.CreatedAt = time.Now().UTC()
	m.NextID++
	m.Samples = append(m.Samples, s)
	return s.ID, nil
}

func (m *MockSampleRepository) LatestForHost(ctx context.Context, hostID int64) (*sample.Sample, error) {
	if m.LatestError != nil {
		return nil, m.LatestError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *sample.Sample
	for _, s := range m.Samples {
		if s.HostID != hostID {
			continue
		}
		if latest == nil || s.CollectedAt.After(latest.CollectedAt) ||
			(s.CollectedAt.Equal(latest.CollectedAt) && s.ID > latest.ID) {
			latest = s
		}
	}
	if latest == nil {
		return nil, errors.NotFound("Sample")
	}
	return latest, nil
}

func (m *MockSampleRepository) ListForHost(ctx context.Context, hostID int64, from, to time.Time, limit int) ([]*sample.Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*sample.Sample
	for _, s := range m.Samples {
		if s.HostID == hostID && !s.CollectedAt.Before(from) && !s.CollectedAt.After(to) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CollectedAt.After(out[j].CollectedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MockCheckRepository is an in-memory implementation of check.Repository
type MockCheckRepository struct {
	mu       sync.Mutex
	Kinds    map[int64]*check.Kind
	Bindings map[int64][]*check.Binding // by host ID
	NextID   int64
}

func NewMockCheckRepository() *MockCheckRepository {
	return &MockCheckRepository{
		Kinds:    make(map[int64]*check.Kind),
		Bindings: make(map[int64][]*check.Binding),
		NextID:   1,
	}
}

// AddKind registers a check kind, assigning an ID if absent.
func (m *MockCheckRepository) AddKind(k *check.Kind) *check.Kind {
	m.mu.Lock()
	defer m.mu.Unlock()
	if k.ID == 0 {
		k.ID = m.NextID
		m.NextID++
	}
	m.Kinds[k.ID] = k
	return k
}

// Bind attaches a kind to a host.
func (m *MockCheckRepository) Bind(hostID int64, b *check.Binding) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.HostID = hostID
	m.Bindings[hostID] = append(m.Bindings[hostID], b)
}

func (m *MockCheckRepository) ListKinds(ctx context.Context) ([]*check.Kind, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kinds []*check.Kind
	for _, k := range m.Kinds {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i].ID < kinds[j].ID })
	return kinds, nil
}

func (m *MockCheckRepository) GetKindByKey(ctx context.Context, key string) (*check.Kind, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range m.Kinds {
		if k.Key == key {
			return k, nil
		}
	}
	return nil, errors.NotFound("Check kind")
}

func (m *MockCheckRepository) BindingsFor(ctx context.Context, hostID int64) ([]*check.BindingRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows []*check.BindingRow
	for _, b := range m.Bindings[hostID] {
		if !b.Enabled {
			continue
		}
		k, ok := m.Kinds[b.CheckID]
		if !ok || !k.Enabled {
			continue
		}
		rows = append(rows, &check.BindingRow{
			BindingID:     b.ID,
			CheckID:       k.ID,
			Name:          k.Name,
			Key:           k.Key,
			Evaluator:     k.Evaluator,
			Severity:      k.Severity,
			DefaultParams: k.DefaultParams,
			Params:        b.Params,
		})
	}
	return rows, nil
}

func (m *MockCheckRepository) ListBindings(ctx context.Context, hostID int64) ([]*check.Binding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Bindings[hostID], nil
}

func (m *MockCheckRepository) Upsert(ctx context.Context, b *check.Binding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.Bindings[b.HostID] {
		if existing.CheckID == b.CheckID {
			m.Bindings[b.HostID][i] = b
			return nil
		}
	}
	m.Bindings[b.HostID] = append(m.Bindings[b.HostID], b)
	return nil
}

func (m *MockCheckRepository) Delete(ctx context.Context, hostID, checkID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, b := range m.Bindings[hostID] {
		if b.CheckID == checkID {
			m.Bindings[hostID] = append(m.Bindings[hostID][:i], m.Bindings[hostID][i+1:]...)
			return nil
		}
	}
	return errors.NotFound("Binding")
}

// MockAlertRepository is an in-memory implementation of alert.Repository
type MockAlertRepository struct {
	mu          sync.Mutex
	Alerts      []*alert.Alert
	NextID      int64
	CreateError error
}

func NewMockAlertRepository() *MockAlertRepository {
	return &MockAlertRepository{NextID: 1}
}

func (m *MockAlertRepository) Create(ctx context.Context, a *alert.Alert) (int64, error) {
	if m.CreateError != nil {
		return 0, m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	a.ID = m.NextID
	m.NextID++
	if a.TriggeredAt.IsZero() {
		a.TriggeredAt = now
	}
	if a.Status == "" {
		a.Status = alert.StatusOpen
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	m.Alerts = append(m.Alerts, a)
	return a.ID, nil
}

func (m *MockAlertRepository) GetByID(ctx context.Context, id int64) (*alert.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Alerts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, errors.NotFound("Alert")
}

func (m *MockAlertRepository) CurrentStatus(ctx context.Context, hostID, checkID int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	latest := m.latestLocked(hostID, checkID)
	if latest == nil {
		return alert.StatusNone, nil
	}
	return latest.Status, nil
}

func (m *MockAlertRepository) ResolveLatestOpen(ctx context.Context, hostID, checkID int64, note string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var target *alert.Alert
	for _, a := range m.Alerts {
		if a.HostID != hostID || a.CheckID != checkID || a.Status != alert.StatusOpen {
			continue
		}
		if target == nil || a.TriggeredAt.After(target.TriggeredAt) ||
			(a.TriggeredAt.Equal(target.TriggeredAt) && a.ID > target.ID) {
			target = a
		}
	}
	if target == nil {
		return nil
	}
	target.Status = alert.StatusResolved
	target.Message = target.Message + " -> RESOLVED: " + note
	target.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MockAlertRepository) Acknowledge(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Alerts {
		if a.ID == id && a.Status == alert.StatusOpen {
			a.Status = alert.StatusAcknowledged
			a.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return errors.NotFound("Open alert")
}

func (m *MockAlertRepository) List(ctx context.Context, f alert.Filter, limit int) ([]*alert.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*alert.Alert
	for _, a := range m.Alerts {
		if f.HostID != 0 && a.HostID != f.HostID {
			continue
		}
		if f.CheckID != 0 && a.CheckID != f.CheckID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.Severity != "" && !strings.EqualFold(a.Severity, f.Severity) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TriggeredAt.After(out[j].TriggeredAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockAlertRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int)
	for _, a := range m.Alerts {
		counts[a.Status]++
	}
	return counts, nil
}

func (m *MockAlertRepository) latestLocked(hostID, checkID int64) *alert.Alert {
	var latest *alert.Alert
	for _, a := range m.Alerts {
		if a.HostID != hostID || a.CheckID != checkID {
			continue
		}
		if latest == nil || a.TriggeredAt.After(latest.TriggeredAt) ||
			(a.TriggeredAt.Equal(latest.TriggeredAt) && a.ID > latest.ID) {
			latest = a
		}
	}
	return latest
}
