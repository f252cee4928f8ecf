package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/newthinker/taengine/internal/analysis"
	"github.com/newthinker/taengine/internal/core"
	"github.com/newthinker/taengine/internal/series"
)

// barsRequest is the body shared by the analysis endpoints.
type barsRequest struct {
	Symbol string          `json:"symbol"`
	Bars   []series.RawBar `json:"bars"`
	Params json.RawMessage `json:"params,omitempty"`
}

// decodeJSON reads one JSON document from the request body. Numbers are
// kept as json.Number so prices reach the decimal parser unrounded.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return core.WrapError(core.ErrPayloadTooLarge, err)
		}
		return core.Invalidf("decoding request body: %v", err)
	}
	return nil
}

// overrideParams layers a partial params document over the engine's
// configured parameters. A missing document yields nil.
func overrideParams(base analysis.Params, raw json.RawMessage) (*analysis.Params, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	p := base
	p.Indicators.MAPeriods = append([]int(nil), base.Indicators.MAPeriods...)
	p.Indicators.VolumeMAPeriods = append([]int(nil), base.Indicators.VolumeMAPeriods...)
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, core.Invalidf("decoding params: %v", err)
	}
	return &p, nil
}
