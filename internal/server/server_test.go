package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/silta/journal"
)

func TestHealthz(t *testing.T) {
	s := New(":0", nil, nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStatus_EmptyJournal(t *testing.T) {
	j, err := journal.Open(t.TempDir())
	require.NoError(t, err)
	defer j.Close()

	s := New(":0", j, nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Runs)
	assert.Nil(t, resp.LastRun)
}

func TestStatus_ReportsLastRun(t *testing.T) {
	j, err := journal.Open(t.TempDir())
	require.NoError(t, err)
	defer j.Close()

	_, err = j.Record(journal.Run{StartedAt: time.Now(), Status: "ok", Counts: map[string]int{"documents": 3}})
	require.NoError(t, err)
	_, err = j.Record(journal.Run{StartedAt: time.Now(), Status: "partial"})
	require.NoError(t, err)

	s := New(":0", j, nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Runs)
	require.NotNil(t, resp.LastRun)
	assert.Equal(t, "partial", resp.LastRun.Status)
}

func TestMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	s := New(":0", nil, registry, zerolog.Nop())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetrics_NoRegistry(t *testing.T) {
	s := New(":0", nil, nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
