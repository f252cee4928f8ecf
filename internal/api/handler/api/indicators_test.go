package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndicatorsHandler_MA(t *testing.T) {
	h := NewIndicatorsHandler(newTestEngine(t))

	req := httptest.NewRequest("POST", "/api/v1/indicators/ma", jsonBody(t, map[string]any{
		"bars": risingBars(12),
	}))
	w := serve("POST /api/v1/indicators/{name}", h.Compute, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got struct {
		Name   string                `json:"name"`
		Dates  []string              `json:"dates"`
		Values map[string][]*float64 `json:"values"`
	}
	decodeData(t, w, &got)

	assert.Equal(t, "ma", got.Name)
	assert.Len(t, got.Dates, 12)
	require.Contains(t, got.Values, "ma5")
	ma5 := got.Values["ma5"]
	require.Len(t, ma5, 12)
	assert.Nil(t, ma5[3])
	require.NotNil(t, ma5[4])
	assert.InDelta(t, 13.6, *ma5[4], 1e-9)
	assert.Nil(t, got.Values["ma20"][11])
}

func TestIndicatorsHandler_RSIWithParams(t *testing.T) {
	h := NewIndicatorsHandler(newTestEngine(t))

	req := httptest.NewRequest("POST", "/api/v1/indicators/rsi", jsonBody(t, map[string]any{
		"bars":   risingBars(12),
		"params": map[string]any{"indicators": map[string]any{"rsi_period": 6}},
	}))
	w := serve("POST /api/v1/indicators/{name}", h.Compute, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got struct {
		Values []*float64 `json:"values"`
	}
	decodeData(t, w, &got)
	require.Len(t, got.Values, 12)
	assert.Nil(t, got.Values[5])
	require.NotNil(t, got.Values[6])
	assert.InDelta(t, 100.0, *got.Values[6], 1e-9)
}

func TestIndicatorsHandler_UnknownFamily(t *testing.T) {
	h := NewIndicatorsHandler(newTestEngine(t))

	req := httptest.NewRequest("POST", "/api/v1/indicators/vwap", jsonBody(t, map[string]any{
		"bars": risingBars(3),
	}))
	w := serve("POST /api/v1/indicators/{name}", h.Compute, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNKNOWN_INDICATOR", decodeError(t, w).Code)
}

func TestIndicatorsHandler_InvalidBars(t *testing.T) {
	h := NewIndicatorsHandler(newTestEngine(t))

	req := httptest.NewRequest("POST", "/api/v1/indicators/ma",
		strings.NewReader(`{"bars":[{"date":"not-a-date","open":1,"high":1,"low":1,"close":1,"volume":1}]}`))
	w := serve("POST /api/v1/indicators/{name}", h.Compute, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", decodeError(t, w).Code)
}
