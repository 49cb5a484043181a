package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportSendsKeyAndParsesID(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, "/report", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 55.5, body["cpu_pct"])
		assert.NotContains(t, body, "mem_pct")

		json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "data_id": 42})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, HostKey: "agent-key"})
	cpu := 55.5
	id, err := c.Report(context.Background(), &Report{CPUPct: &cpu})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "Bearer agent-key", gotAuth)
}

func TestReportRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]interface{}{"ok": false, "error": "server_error"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "data_id": 7})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, HostKey: "agent-key", MaxRetries: 3})
	id, err := c.Report(context.Background(), &Report{})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.Equal(t, int32(3), calls.Load())
}

func TestReportDoesNotRetryRejections(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]interface{}{"ok": false, "error": "invalid_host_key"})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, HostKey: "bad-key", MaxRetries: 3})
	_, err := c.Report(context.Background(), &Report{})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid_host_key", apiErr.Code)
	assert.True(t, apiErr.IsAuthError())
	assert.Equal(t, int32(1), calls.Load())
}

func TestReportRequiresHostKey(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://example.invalid"})
	_, err := c.Report(context.Background(), &Report{})
	assert.Error(t, err)
}
