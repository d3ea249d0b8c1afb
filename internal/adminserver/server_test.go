package adminserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/your-org/gtp-tunnel/internal/config"
	"github.com/your-org/gtp-tunnel/internal/stats"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{}
	cfg.Node.Name = "gtpd-test"
	cfg.Node.InstanceID = "abc-123"
	cfg.GTPListener.BindAddress = "0.0.0.0"
	cfg.GTPListener.Port = 2152

	logger, _ := zap.NewDevelopment()
	return NewServer(cfg, &stats.Counters{}, nil, logger)
}

type fakeTunnelLister map[uint32]string

func (f fakeTunnelLister) Tunnels() map[uint32]string { return f }

func TestHandleHealth(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestHandleStatus(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "gtpd-test", body["node_name"])
	assert.Equal(t, "0.0.0.0:2152", body["gtp_address"])
}

func TestHandleStats(t *testing.T) {
	s := testServer(t)
	s.counters.IncRxGTP()
	s.counters.IncRxGTP()

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var snap stats.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, uint64(2), snap.RxGTP)
}

func TestHandleTunnels(t *testing.T) {
	s := testServer(t)
	s.tunnels = fakeTunnelLister{0x1234: "10.0.0.1:2152"}

	req := httptest.NewRequest(http.MethodGet, "/tunnels", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "10.0.0.1:2152", body["0x00001234"])
}

func TestHandleTunnelsNilLister(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/tunnels", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body)
}
