package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/newthinker/taengine/internal/analysis"
	"github.com/newthinker/taengine/internal/metrics"
	"github.com/newthinker/taengine/internal/similarity"
	"github.com/newthinker/taengine/internal/storage/report"
)

func newTestServer(t *testing.T, cfg Config, withMetrics bool) *Server {
	t.Helper()
	engine, err := analysis.NewEngine(analysis.DefaultParams(), zap.NewNop())
	require.NoError(t, err)

	deps := Dependencies{
		Engine: engine,
		Store:  report.NewMemoryStore(100),
	}
	if withMetrics {
		deps.Metrics = metrics.NewRegistry()
		engine.SetRecorder(deps.Metrics)
	}

	cfg.Host = "localhost"
	srv, err := NewServer(cfg, deps, zap.NewNop())
	require.NoError(t, err)
	return srv
}

const analyzeBody = `{"symbol":"X","bars":[
{"date":"2024-01-02","open":10,"high":10.5,"low":9.8,"close":10.2,"volume":100},
{"date":"2024-01-03","open":10.2,"high":10.9,"low":10.1,"close":10.8,"volume":120}]}`

func TestNewServer_RequiresEngine(t *testing.T) {
	_, err := NewServer(Config{}, Dependencies{}, zap.NewNop())
	assert.Error(t, err)
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t, Config{}, false)

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(metrics.RequestIDHeader))
}

func TestServer_Addr(t *testing.T) {
	srv := newTestServer(t, Config{Port: 8080}, false)
	assert.Equal(t, "localhost:8080", srv.Addr())
}

func TestServer_APIAuth(t *testing.T) {
	srv := newTestServer(t, Config{APIKey: "test-key"}, false)

	req := httptest.NewRequest("GET", "/api/v1/reports", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest("GET", "/api/v1/reports", nil)
	req.Header.Set("X-API-Key", "test-key")
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// health stays public
	req = httptest.NewRequest("GET", "/api/health", nil)
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_AnalyzeThenList(t *testing.T) {
	srv := newTestServer(t, Config{}, false)

	req := httptest.NewRequest("POST", "/api/v1/analyze", strings.NewReader(analyzeBody))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	req = httptest.NewRequest("GET", "/api/v1/reports?symbol=X", nil)
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestServer_SimilarityUsesStoredReports(t *testing.T) {
	srv := newTestServer(t, Config{Similarity: similarity.Config{Window: 2, TopK: 1, Candidates: 5}}, false)

	req := httptest.NewRequest("POST", "/api/v1/analyze", strings.NewReader(analyzeBody))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	req = httptest.NewRequest("POST", "/api/v1/similarity", strings.NewReader(`{"curve":[3,4,5]}`))
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"indexed":1`)
	assert.Contains(t, w.Body.String(), `"symbol":"X"`)
}

func TestServer_BodyLimit(t *testing.T) {
	srv := newTestServer(t, Config{MaxBodyBytes: 64}, false)

	req := httptest.NewRequest("POST", "/api/v1/analyze", strings.NewReader(analyzeBody))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, Config{}, false)

	req := httptest.NewRequest("GET", "/api/v1/analyze", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestServer_Metrics(t *testing.T) {
	srv := newTestServer(t, Config{}, true)

	req := httptest.NewRequest("POST", "/api/v1/analyze", strings.NewReader(analyzeBody))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("GET", "/metrics", nil)
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `taengine_analyses_total{status="partial"} 1`)
	assert.Contains(t, body, `path="POST /api/v1/analyze"`)
	assert.Contains(t, body, "taengine_reports_stored 1")
}

func TestServer_NoMetricsRouteWhenDisabled(t *testing.T) {
	srv := newTestServer(t, Config{}, false)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
