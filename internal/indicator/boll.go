package indicator

import (
	"math"

	"github.com/newthinker/taengine/internal/core"
)

// BOLLParams configures Bollinger Bands.
type BOLLParams struct {
	Period     int     `mapstructure:"period" json:"period"`
	Multiplier float64 `mapstructure:"multiplier" json:"multiplier"`
}

func DefaultBOLLParams() BOLLParams {
	return BOLLParams{Period: 20, Multiplier: 2}
}

func (p BOLLParams) Validate() error {
	if p.Period < 1 {
		return core.Invalidf("boll period must be positive, got %d", p.Period)
	}
	if p.Multiplier < 0 {
		return core.Invalidf("boll multiplier cannot be negative, got %v", p.Multiplier)
	}
	return nil
}

// BOLLValue is one Bollinger Bands reading.
type BOLLValue struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// BOLL computes middle = SMA(period) and bands at Multiplier population
// standard deviations around it.
func BOLL(closes []float64, p BOLLParams) (Series[BOLLValue], error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	result := make(Series[BOLLValue], len(closes))
	for i := p.Period - 1; i < len(closes); i++ {
		mid, sd := windowStats(closes[i-p.Period+1 : i+1])
		result[i] = available(BOLLValue{
			Upper:  math.Min(mid+p.Multiplier*sd, math.MaxFloat64),
			Middle: mid,
			Lower:  math.Max(mid-p.Multiplier*sd, -math.MaxFloat64),
		})
	}
	return result, nil
}
