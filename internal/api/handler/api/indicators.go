package api

import (
	"net/http"

	"github.com/newthinker/taengine/internal/analysis"
	"github.com/newthinker/taengine/internal/api/response"
	"github.com/newthinker/taengine/internal/series"
)

// IndicatorsHandler computes a single indicator family for chart renderers.
type IndicatorsHandler struct {
	engine *analysis.Engine
}

// NewIndicatorsHandler creates an indicators handler.
func NewIndicatorsHandler(engine *analysis.Engine) *IndicatorsHandler {
	return &IndicatorsHandler{engine: engine}
}

// Compute handles POST /api/v1/indicators/{name}.
func (h *IndicatorsHandler) Compute(w http.ResponseWriter, r *http.Request) {
	var req barsRequest
	if err := decodeJSON(r, &req); err != nil {
		response.FromError(w, err)
		return
	}

	params, err := overrideParams(h.engine.Params(), req.Params)
	if err != nil {
		response.FromError(w, err)
		return
	}

	s, err := series.Normalize(req.Bars)
	if err != nil {
		response.FromError(w, err)
		return
	}

	result, err := h.engine.Family(r.Context(), r.PathValue("name"), s, params)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}
