package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hostwatch/hostwatch/internal/domain/host"
	"github.com/hostwatch/hostwatch/internal/pkg/logger"
	"github.com/hostwatch/hostwatch/internal/pkg/validator"
	"github.com/hostwatch/hostwatch/internal/services"
	"github.com/hostwatch/hostwatch/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reportFixture struct {
	handler *ReportHandler
	hosts   *testutil.MockHostRepository
	samples *testutil.MockSampleRepository
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	hosts := testutil.NewMockHostRepository()
	samples := testutil.NewMockSampleRepository()
	ingest := services.NewIngestService(hosts, samples, log)
	return &reportFixture{
		handler: NewReportHandler(ingest, log, validator.New()),
		hosts:   hosts,
		samples: samples,
	}
}

func (f *reportFixture) addHost(t *testing.T, name, key string) *host.Host {
	t.Helper()
	h := &host.Host{Name: name, Key: key, IsActive: true}
	_, err := f.hosts.Create(context.Background(), h)
	require.NoError(t, err)
	return h
}

func (f *reportFixture) post(body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/report", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	f.handler.Report(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	return resp.Error
}

func TestReportSuccess(t *testing.T) {
	f := newReportFixture(t)
	f.addHost(t, "web-1", "secret-key")

	rec := f.post(`{"cpu_pct": 12.5, "disk_pct": 70.1, "collected_at": "2026-03-01T12:00:00Z"}`, "secret-key")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		OK     bool  `json:"ok"`
		DataID int64 `json:"data_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Greater(t, resp.DataID, int64(0))
	require.Len(t, f.samples.Samples, 1)
}

func TestReportNaiveTimestampReadAsUTC(t *testing.T) {
	f := newReportFixture(t)
	f.addHost(t, "web-1", "secret-key")

	rec := f.post(`{"collected_at": "2026-03-01 12:00:00"}`, "secret-key")
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, f.samples.Samples, 1)
	got := f.samples.Samples[0].CollectedAt
	assert.Equal(t, 12, got.Hour())
	assert.Equal(t, "UTC", got.Location().String())
}

func TestReportMissingKey(t *testing.T) {
	f := newReportFixture(t)

	rec := f.post(`{}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "missing_host_key", decodeError(t, rec))
}

func TestReportMalformedAuthHeader(t *testing.T) {
	f := newReportFixture(t)
	f.addHost(t, "web-1", "secret-key")

	req := httptest.NewRequest(http.MethodPost, "/report", bytes.NewBufferString(`{}`))
	req.Header.Set("Authorization", "Basic secret-key")
	rec := httptest.NewRecorder()
	f.handler.Report(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "missing_host_key", decodeError(t, rec))
}

func TestReportInvalidJSON(t *testing.T) {
	f := newReportFixture(t)
	f.addHost(t, "web-1", "secret-key")

	rec := f.post(`{not json`, "secret-key")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_json", decodeError(t, rec))
}

func TestReportValidation(t *testing.T) {
	f := newReportFixture(t)
	f.addHost(t, "web-1", "secret-key")

	tests := []struct {
		name string
		body string
	}{
		{"cpu above 100", `{"cpu_pct": 130}`},
		{"cpu just above 100", `{"cpu_pct": 101}`},
		{"negative disk", `{"disk_pct": -5}`},
		{"bad timestamp", `{"collected_at": "not-a-time"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.post(tt.body, "secret-key")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "validation_error", decodeError(t, rec))
		})
	}
	assert.Empty(t, f.samples.Samples)
}

func TestReportPercentBoundaryAccepted(t *testing.T) {
	f := newReportFixture(t)
	f.addHost(t, "web-1", "secret-key")

	// A fully pegged core is a legitimate reading
	rec := f.post(`{"cpu_pct": 100, "disk_pct": 0}`, "secret-key")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.samples.Samples, 1)
	assert.Equal(t, 100.0, *f.samples.Samples[0].CPUPct)
	assert.Equal(t, 0.0, *f.samples.Samples[0].DiskPct)
}

func TestReportBodyKeyMismatch(t *testing.T) {
	f := newReportFixture(t)
	f.addHost(t, "web-1", "secret-key")

	rec := f.post(`{"host_key": "other-key"}`, "secret-key")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "host_key_mismatch", decodeError(t, rec))
}

func TestReportBodyKeyMatchAccepted(t *testing.T) {
	f := newReportFixture(t)
	f.addHost(t, "web-1", "secret-key")

	rec := f.post(`{"host_key": "secret-key"}`, "secret-key")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReportUnknownKey(t *testing.T) {
	f := newReportFixture(t)

	rec := f.post(`{}`, "who-is-this")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "invalid_host_key", decodeError(t, rec))
}

func TestReportInactiveHostLooksUnknown(t *testing.T) {
	f := newReportFixture(t)
	h := f.addHost(t, "retired", "old-key")
	require.NoError(t, f.hosts.Deactivate(context.Background(), h.ID))

	rec := f.post(`{}`, "old-key")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "invalid_host_key", decodeError(t, rec))
}

func TestReportPreservesUnknownFields(t *testing.T) {
	f := newReportFixture(t)
	f.addHost(t, "web-1", "secret-key")

	rec := f.post(`{"cpu_pct": 10, "gpu_pct": 44.5, "fan_rpm": 1200}`, "secret-key")
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, f.samples.Samples, 1)
	var extra map[string]float64
	require.NoError(t, json.Unmarshal(f.samples.Samples[0].Extra, &extra))
	assert.Equal(t, 44.5, extra["gpu_pct"])
	assert.Equal(t, float64(1200), extra["fan_rpm"])
}
