package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(GetClientFromContext(r.Context())))
})

func TestAPIKeyAuth(t *testing.T) {
	h := APIKeyAuth([]string{"alpha", "beta"})(okHandler)

	tests := []struct {
		name   string
		path   string
		header string
		status int
		body   string
	}{
		{name: "missing header", path: "/v1/scans/current", status: http.StatusUnauthorized},
		{name: "wrong key", path: "/v1/scans/current", header: "Bearer nope", status: http.StatusUnauthorized},
		{name: "bearer", path: "/v1/scans/current", header: "Bearer beta", status: http.StatusOK, body: "key-2"},
		{name: "bare key", path: "/v1/scans/current", header: "alpha", status: http.StatusOK, body: "key-1"},
		{name: "probe skips auth", path: "/health", status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestAPIKeyAuthDisabled(t *testing.T) {
	rec := httptest.NewRecorder()
	APIKeyAuth(nil)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/history", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthHandler(t *testing.T) {
	ok := CheckFunc(func(context.Context) error { return nil })
	bad := CheckFunc(func(context.Context) error { return errors.New("down") })

	rec := httptest.NewRecorder()
	HealthHandler(map[string]HealthChecker{"db": ok})(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	HealthHandler(map[string]HealthChecker{"db": ok, "storage": bad})(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var status HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, "down", status.Checks["storage"].Message)
	assert.Equal(t, "healthy", status.Checks["db"].Status)
}

func TestReadinessHandler(t *testing.T) {
	ok := CheckFunc(func(context.Context) error { return nil })
	bad := CheckFunc(func(context.Context) error { return errors.New("down") })

	rec := httptest.NewRecorder()
	ReadinessHandler(nil)(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	ReadinessHandler(map[string]HealthChecker{"storage": bad, "db": ok, "backend": bad})(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Status  string   `json:"status"`
		Failing []string `json:"failing"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "not_ready", body.Status)
	assert.Equal(t, []string{"backend", "storage"}, body.Failing)
}

func TestTokenBucket(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tb := NewTokenBucket(2, 1)
	tb.now = func() time.Time { return now }
	tb.lastRefill = now

	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())

	now = now.Add(1500 * time.Millisecond)
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Stop()
	h := RateLimitMiddleware(rl)(okHandler)

	do := func(path, addr string) int {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, do("/v1/scans", "10.0.0.1:1111"))
	assert.Equal(t, http.StatusTooManyRequests, do("/v1/scans", "10.0.0.1:2222"))
	assert.Equal(t, http.StatusOK, do("/v1/scans", "10.0.0.2:1111"))
	assert.Equal(t, http.StatusOK, do("/health", "10.0.0.1:1111"))
}

func TestMetricsMiddleware(t *testing.T) {
	before := globalMetrics.failed.Load()
	h := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, before+1, globalMetrics.failed.Load())

	running := globalMetrics.scansRunning.Load()
	ScanStarted()
	ScanAbandoned()
	assert.Equal(t, running, globalMetrics.scansRunning.Load())

	rec := httptest.NewRecorder()
	MetricsHandler(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	var m map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&m))
	require.Contains(t, m, "scans")
	assert.Contains(t, m["scans"], "abandoned")
	assert.Contains(t, m, "corrections_served")
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	log := hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Info})
	h := Logging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("hi"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/scans", nil))
	assert.Contains(t, buf.String(), "path=/v1/scans")
	assert.Contains(t, buf.String(), "status=201")
	assert.Contains(t, buf.String(), "bytes=2")
}
