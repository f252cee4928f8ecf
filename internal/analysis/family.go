package analysis

import (
	"context"
	"fmt"

	"github.com/newthinker/taengine/internal/core"
	"github.com/newthinker/taengine/internal/indicator"
	"github.com/newthinker/taengine/internal/series"
)

// FamilyResult is a single indicator family over a series, for renderers
// that need one chart pane.
type FamilyResult struct {
	Name   string   `json:"name"`
	Dates  []string `json:"dates"`
	Values any      `json:"values"`
}

// Family computes only the named indicator family.
func (e *Engine) Family(ctx context.Context, name string, s series.Series, p *Params) (*FamilyResult, error) {
	params := e.params
	if p != nil {
		params = *p
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, core.WrapError(core.ErrAnalysisFailed, err)
	}

	ip := params.Indicators
	closes := s.Closes()

	var (
		values any
		err    error
	)
	switch name {
	case indicator.NameMA:
		var m map[int]indicator.Series[float64]
		m, err = indicator.MAs(closes, ip.MAPeriods)
		values = labelled(m, indicator.NameMA)
	case indicator.NameVolumeMA:
		var m map[int]indicator.Series[float64]
		m, err = indicator.MAs(s.Volumes(), ip.VolumeMAPeriods)
		values = labelled(m, indicator.NameVolumeMA)
	case indicator.NameMACD:
		values, err = indicator.MACD(closes, ip.MACD)
	case indicator.NameRSI:
		values, err = indicator.RSI(closes, ip.RSIPeriod)
	case indicator.NameKDJ:
		values, err = indicator.KDJ(s.Highs(), s.Lows(), closes, ip.KDJ)
	case indicator.NameBOLL:
		values, err = indicator.BOLL(closes, ip.BOLL)
	default:
		return nil, core.WrapError(core.ErrUnknownIndicator, fmt.Errorf("%q", name))
	}
	if err != nil {
		return nil, err
	}

	return &FamilyResult{
		Name:   name,
		Dates:  formatDates(s.Dates()),
		Values: values,
	}, nil
}
