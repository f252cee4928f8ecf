package indicator

import "github.com/newthinker/taengine/internal/core"

// MACDParams configures MACD.
type MACDParams struct {
	Fast   int  `mapstructure:"fast" json:"fast"`
	Slow   int  `mapstructure:"slow" json:"slow"`
	Signal int  `mapstructure:"signal" json:"signal"`
	Seed   Seed `mapstructure:"seed" json:"seed"`
}

// DefaultMACDParams returns the 12/26/9 configuration seeded at the first close.
func DefaultMACDParams() MACDParams {
	return MACDParams{Fast: 12, Slow: 26, Signal: 9, Seed: SeedFirst}
}

func (p MACDParams) Validate() error {
	if p.Fast < 1 || p.Slow < 1 || p.Signal < 1 {
		return core.Invalidf("macd periods must be positive, got %d/%d/%d", p.Fast, p.Slow, p.Signal)
	}
	if p.Fast >= p.Slow {
		return core.Invalidf("macd fast period %d must be below slow period %d", p.Fast, p.Slow)
	}
	if !p.Seed.Valid() {
		return core.Invalidf("unknown macd seed %q", p.Seed)
	}
	return nil
}

// MACDValue is one MACD reading.
type MACDValue struct {
	DIF  float64 `json:"dif"`
	DEA  float64 `json:"dea"`
	Hist float64 `json:"hist"`
}

// MACD computes DIF = EMA(fast) - EMA(slow), DEA = EMA(DIF, signal) and the
// histogram 2*(DIF-DEA).
func MACD(closes []float64, p MACDParams) (Series[MACDValue], error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	fast, err := EMA(closes, p.Fast, p.Seed)
	if err != nil {
		return nil, err
	}
	slow, err := EMA(closes, p.Slow, p.Seed)
	if err != nil {
		return nil, err
	}

	dif := make(Series[float64], len(closes))
	for i := range closes {
		if fast[i].OK && slow[i].OK {
			dif[i] = available(fast[i].V - slow[i].V)
		}
	}
	dea := emaOf(dif, p.Signal, p.Seed)

	result := make(Series[MACDValue], len(closes))
	for i := range closes {
		if !dif[i].OK || !dea[i].OK {
			continue
		}
		result[i] = available(MACDValue{
			DIF:  dif[i].V,
			DEA:  dea[i].V,
			Hist: (dif[i].V - dea[i].V) * 2,
		})
	}
	return result, nil
}
