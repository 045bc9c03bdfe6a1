package health_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/balancer-connector/internal/health"
	"github.com/fd1az/balancer-connector/internal/logger"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestReadyFollowsChecks(t *testing.T) {
	srv := health.NewServer(0, "test", logger.Nop())
	var ready atomic.Bool
	srv.RegisterCheck("ethereum/mainnet", func(context.Context) (bool, string) { return ready.Load(), "" })
	srv.RegisterCheck("connectors", func(context.Context) (bool, string) { return true, "1 ready" })
	h := srv.Handler()

	rec := get(t, h, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not ready: ethereum/mainnet", rec.Body.String())

	ready.Store(true)
	rec = get(t, h, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", rec.Body.String())
}

func TestHealthReportsDegraded(t *testing.T) {
	srv := health.NewServer(0, "v1", nil)
	srv.RegisterCheck("chain", func(context.Context) (bool, string) { return true, "block 19000000" })
	srv.RegisterCheck("connectors", func(context.Context) (bool, string) { return false, "ethereum_mainnet INITIALIZING" })

	rec := get(t, srv.Handler(), "/health")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var status health.Status
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "v1", status.Version)
	assert.True(t, status.Checks["chain"].Healthy)
	assert.Equal(t, "ethereum_mainnet INITIALIZING", status.Checks["connectors"].Message)
}

func TestHealthWithoutChecksIsOK(t *testing.T) {
	rec := get(t, health.NewServer(0, "", nil).Handler(), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLive(t *testing.T) {
	rec := get(t, health.NewServer(0, "", logger.Nop()).Handler(), "/live")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", rec.Body.String())
}

func TestCloseBeforeStart(t *testing.T) {
	assert.NoError(t, health.NewServer(0, "", nil).Close())
}
