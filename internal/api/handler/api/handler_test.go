package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/newthinker/taengine/internal/analysis"
	"github.com/newthinker/taengine/internal/api/response"
)

// risingBars returns n daily bars whose closes climb by 0.20 and close
// at the high.
func risingBars(n int) []map[string]any {
	start := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	bars := make([]map[string]any, n)
	for i := range bars {
		c := 13.2 + 0.2*float64(i)
		bars[i] = map[string]any{
			"date":   start.AddDate(0, 0, i).Format("2006-01-02"),
			"open":   fmt.Sprintf("%.2f", c-0.05),
			"high":   fmt.Sprintf("%.2f", c),
			"low":    fmt.Sprintf("%.2f", c-0.15),
			"close":  fmt.Sprintf("%.2f", c),
			"volume": 1000 + 10*i,
		}
	}
	return bars
}

func newTestEngine(t *testing.T) *analysis.Engine {
	t.Helper()
	e, err := analysis.NewEngine(analysis.DefaultParams(), zap.NewNop())
	require.NoError(t, err)
	return e
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

// decodeData unwraps the success envelope into out.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorDetail {
	t.Helper()
	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

// serve routes req through a mux so path values resolve.
func serve(pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}
