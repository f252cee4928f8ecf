package indicator

import (
	"math"

	"github.com/newthinker/taengine/internal/core"
)

// KDJParams configures the stochastic oscillator.
type KDJParams struct {
	Period  int `mapstructure:"period" json:"period"`
	KPeriod int `mapstructure:"k_period" json:"k_period"`
	DPeriod int `mapstructure:"d_period" json:"d_period"`
}

func DefaultKDJParams() KDJParams {
	return KDJParams{Period: 9, KPeriod: 3, DPeriod: 3}
}

func (p KDJParams) Validate() error {
	if p.Period < 1 || p.KPeriod < 1 || p.DPeriod < 1 {
		return core.Invalidf("kdj periods must be positive, got %d/%d/%d", p.Period, p.KPeriod, p.DPeriod)
	}
	return nil
}

// KDJValue is one KDJ reading. J is unbounded.
type KDJValue struct {
	K float64 `json:"k"`
	D float64 `json:"d"`
	J float64 `json:"j"`
}

// degenerateRSV is used when the window high equals the window low.
const degenerateRSV = 50.0

// KDJ computes RSV over the trailing high/low window, then smooths it into
// K and D. The first available index seeds K = D = RSV.
func KDJ(highs, lows, closes []float64, p KDJParams) (Series[KDJValue], error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(highs) != len(closes) || len(lows) != len(closes) {
		return nil, core.Invalidf("kdj channel lengths differ: high %d, low %d, close %d",
			len(highs), len(lows), len(closes))
	}

	kw := 1 / float64(p.KPeriod)
	dw := 1 / float64(p.DPeriod)

	result := make(Series[KDJValue], len(closes))
	var k, d float64
	for i := p.Period - 1; i < len(closes); i++ {
		lo, hi := lows[i], highs[i]
		for j := i - p.Period + 1; j < i; j++ {
			lo = math.Min(lo, lows[j])
			hi = math.Max(hi, highs[j])
		}

		rsv := degenerateRSV
		if hi != lo {
			rsv = (closes[i] - lo) / (hi - lo) * 100
		}

		if i == p.Period-1 {
			k, d = rsv, rsv
		} else {
			// incremental form keeps K and D exact while RSV is flat
			k += kw * (rsv - k)
			d += dw * (k - d)
		}
		result[i] = available(KDJValue{K: k, D: d, J: 3*k - 2*d})
	}
	return result, nil
}
