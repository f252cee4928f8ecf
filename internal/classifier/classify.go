package classifier

import (
	"fmt"

	"github.com/newthinker/taengine/internal/core"
	"github.com/newthinker/taengine/internal/indicator"
)

const notAvailable = "not enough history"

// Thresholds collects the tunable bands used by the classifiers.
type Thresholds struct {
	RSI RSIThresholds `mapstructure:"rsi" json:"rsi"`
	KDJ KDJThresholds `mapstructure:"kdj" json:"kdj"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{RSI: DefaultRSIThresholds(), KDJ: DefaultKDJThresholds()}
}

func (t Thresholds) Validate() error {
	if err := t.RSI.Validate(); err != nil {
		return err
	}
	return t.KDJ.Validate()
}

func signalFrom[I any](name string, r Rule[I], reason string) core.Signal {
	return core.Signal{
		Indicator: name,
		Action:    r.Action,
		Strength:  r.Strength,
		Rule:      r.Name,
		Reason:    reason,
	}
}

// ClassifyMACD judges the last two MACD readings.
func ClassifyMACD(macd indicator.Series[indicator.MACDValue]) core.Signal {
	prev, curr, ok := macd.LatestPair()
	if !ok {
		return core.Hold(indicator.NameMACD, notAvailable)
	}
	r := decide(MACDRules, MACDInput{Prev: prev, Curr: curr})
	return signalFrom(indicator.NameMACD, r,
		fmt.Sprintf("DIF %.4f, DEA %.4f (prev %.4f/%.4f)", curr.DIF, curr.DEA, prev.DIF, prev.DEA))
}

// ClassifyRSI judges the latest RSI value.
func ClassifyRSI(rsi indicator.Series[float64], t RSIThresholds) core.Signal {
	v, ok := rsi.Latest()
	if !ok {
		return core.Hold(indicator.NameRSI, notAvailable)
	}
	r := decide(RSIRules, RSIInput{Value: v, Thresholds: t})
	return signalFrom(indicator.NameRSI, r, fmt.Sprintf("RSI %.2f", v))
}

// ClassifyKDJ judges the last two KDJ readings.
func ClassifyKDJ(kdj indicator.Series[indicator.KDJValue], t KDJThresholds) core.Signal {
	prev, curr, ok := kdj.LatestPair()
	if !ok {
		return core.Hold(indicator.NameKDJ, notAvailable)
	}
	r := decide(KDJRules, KDJInput{Prev: prev, Curr: curr, Thresholds: t})
	return signalFrom(indicator.NameKDJ, r,
		fmt.Sprintf("K %.2f, D %.2f, J %.2f", curr.K, curr.D, curr.J))
}

// ClassifyBOLL judges the latest close against the latest bands. closes
// must be aligned with boll.
func ClassifyBOLL(closes []float64, boll indicator.Series[indicator.BOLLValue]) core.Signal {
	band, ok := boll.Latest()
	if !ok || len(closes) != len(boll) {
		return core.Hold(indicator.NameBOLL, notAvailable)
	}
	c := closes[len(closes)-1]
	r := decide(BOLLRules, BOLLInput{Close: c, Band: band})
	return signalFrom(indicator.NameBOLL, r,
		fmt.Sprintf("close %.2f, bands %.2f/%.2f/%.2f", c, band.Lower, band.Middle, band.Upper))
}

// ClassifyMA grades the alignment of a fast and a slow moving average. It
// is informational and does not feed the composite verdict.
func ClassifyMA(fast, slow indicator.Series[float64], fastLabel, slowLabel string) core.Signal {
	prevFast, currFast, okFast := fast.LatestPair()
	prevSlow, currSlow, okSlow := slow.LatestPair()
	if !okFast || !okSlow {
		return core.Hold(indicator.NameMA, notAvailable)
	}
	r := decide(MARules, MAInput{PrevFast: prevFast, PrevSlow: prevSlow, Fast: currFast, Slow: currSlow})
	return signalFrom(indicator.NameMA, r,
		fmt.Sprintf("%s %.2f, %s %.2f", fastLabel, currFast, slowLabel, currSlow))
}
