package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/netkit/internal/probes"
	"github.com/user/netkit/internal/storage"
	"github.com/user/netkit/internal/toolkit"
	"github.com/user/netkit/internal/util"
)

func newTestServer(t *testing.T, withHistory bool) http.Handler {
	t.Helper()
	cfg := util.DefaultConfig()
	resolver := probes.NewCommandResolverFor("linux", func(context.Context, string, string) bool { return false })
	tk := toolkit.New(cfg, resolver)

	var history *storage.HistoryStorage
	if withHistory {
		db, err := storage.Initialize(t.TempDir())
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		history = storage.NewHistoryStorage(db)
		tk.SetRecorder(toolkit.JournalRecorder(history))
	}

	return NewServer(tk, history, cfg, 0).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRunOperation(t *testing.T) {
	h := newTestServer(t, false)

	rec := do(t, h, http.MethodPost, "/api/subnet", `{"cidr":"192.168.1.0/24"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	info := body["info"].(map[string]interface{})
	assert.Equal(t, float64(254), info["usableHosts"])
	assert.Equal(t, "192.168.1.255", info["broadcastAddress"])
}

func TestRunOperationProbeFailureIsOK(t *testing.T) {
	h := newTestServer(t, false)

	rec := do(t, h, http.MethodPost, "/api/subnet", `{"cidr":"not-a-cidr"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "invalid CIDR")

	rec = do(t, h, http.MethodPost, "/api/whois", `{"domain":"example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "not installed")
}

func TestRunOperationBadRequests(t *testing.T) {
	h := newTestServer(t, false)

	rec := do(t, h, http.MethodPost, "/api/teleport", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "unknown operation")

	rec = do(t, h, http.MethodPost, "/api/ping", `{"host":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "invalid parameters")

	rec = do(t, h, http.MethodGet, "/api/subnet", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))

	rec = do(t, h, http.MethodPost, "/api/a/b", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOperationsAndTools(t *testing.T) {
	h := newTestServer(t, false)

	rec := do(t, h, http.MethodGet, "/api/operations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var ops []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ops))
	assert.Contains(t, ops, "ping")
	assert.Contains(t, ops, "discover")

	rec = do(t, h, http.MethodGet, "/api/tools", "")
	require.Equal(t, http.StatusOK, rec.Code)
	tools := decode(t, rec)["tools"].([]interface{})
	assert.Len(t, tools, 3)
}

func TestStatusWithoutHistory(t *testing.T) {
	h := newTestServer(t, false)

	rec := do(t, h, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, toolkit.Version, body["version"])
	assert.Equal(t, false, body["history_enabled"])

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/history", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/report", "").Code)
}

func TestHistoryAndReport(t *testing.T) {
	h := newTestServer(t, true)

	do(t, h, http.MethodPost, "/api/subnet", `{"cidr":"10.0.0.0/30"}`)
	do(t, h, http.MethodPost, "/api/subnet", `{"cidr":"bogus"}`)

	rec := do(t, h, http.MethodGet, "/api/history?limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "subnet", entries[0]["operation"])

	rec = do(t, h, http.MethodGet, "/api/history?operation=ping", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/status", "")
	assert.Equal(t, float64(2), decode(t, rec)["history_entries"])

	rec = do(t, h, http.MethodGet, "/api/report?since=1h", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, rec.Body.String(), "| subnet | 2 | 1 |")

	rec = do(t, h, http.MethodGet, "/api/report?since=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
