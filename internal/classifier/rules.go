// Package classifier turns indicator series into single-indicator verdicts
// and scans them for crossover events.
//
// Each indicator has an ordered decision table. Rules are tried top to
// bottom and the first match decides the verdict, so table order is the
// precedence order.
package classifier

import (
	"github.com/newthinker/taengine/internal/core"
	"github.com/newthinker/taengine/internal/indicator"
)

// Rule is one row of a decision table.
type Rule[I any] struct {
	Name     string
	Action   core.Action
	Strength core.Strength
	Match    func(I) bool
}

// holdRule terminates every table.
func holdRule[I any]() Rule[I] {
	return Rule[I]{Name: "neutral", Action: core.ActionHold, Match: func(I) bool { return true }}
}

// decide returns the first rule matching in.
func decide[I any](rules []Rule[I], in I) Rule[I] {
	for _, r := range rules {
		if r.Match(in) {
			return r
		}
	}
	return holdRule[I]()
}

// MACDInput is the MACD reading at L-1 and L.
type MACDInput struct {
	Prev, Curr indicator.MACDValue
}

// MACDRules: crosses beat trend alignment.
var MACDRules = []Rule[MACDInput]{
	{
		Name: "golden_cross", Action: core.ActionBuy, Strength: core.StrengthStrong,
		Match: func(in MACDInput) bool { return in.Prev.DIF <= in.Prev.DEA && in.Curr.DIF > in.Curr.DEA },
	},
	{
		Name: "death_cross", Action: core.ActionSell, Strength: core.StrengthStrong,
		Match: func(in MACDInput) bool { return in.Prev.DIF >= in.Prev.DEA && in.Curr.DIF < in.Curr.DEA },
	},
	{
		Name: "bullish_above_zero", Action: core.ActionBuy, Strength: core.StrengthMedium,
		Match: func(in MACDInput) bool { return in.Curr.DIF > in.Curr.DEA && in.Curr.DIF > 0 },
	},
	{
		Name: "bearish_below_zero", Action: core.ActionSell, Strength: core.StrengthMedium,
		Match: func(in MACDInput) bool { return in.Curr.DIF < in.Curr.DEA && in.Curr.DIF < 0 },
	},
	holdRule[MACDInput](),
}

// RSIThresholds are the RSI band boundaries.
type RSIThresholds struct {
	Overbought float64 `mapstructure:"overbought" json:"overbought"`
	Oversold   float64 `mapstructure:"oversold" json:"oversold"`
	Center     float64 `mapstructure:"center" json:"center"`
}

func DefaultRSIThresholds() RSIThresholds {
	return RSIThresholds{Overbought: 70, Oversold: 30, Center: 50}
}

func (t RSIThresholds) Validate() error {
	if !(0 <= t.Oversold && t.Oversold <= t.Center && t.Center <= t.Overbought && t.Overbought <= 100) {
		return core.Invalidf("rsi thresholds must satisfy 0 <= oversold <= center <= overbought <= 100, got %v/%v/%v",
			t.Oversold, t.Center, t.Overbought)
	}
	return nil
}

// RSIInput is the latest RSI value with the bands it is judged against.
type RSIInput struct {
	Value      float64
	Thresholds RSIThresholds
}

// RSIRules: extremes beat the center line. Above center reads as buy and at
// or below center as sell, so an available RSI is never hold.
var RSIRules = []Rule[RSIInput]{
	{
		Name: "overbought", Action: core.ActionSell, Strength: core.StrengthStrong,
		Match: func(in RSIInput) bool { return in.Value > in.Thresholds.Overbought },
	},
	{
		Name: "oversold", Action: core.ActionBuy, Strength: core.StrengthStrong,
		Match: func(in RSIInput) bool { return in.Value < in.Thresholds.Oversold },
	},
	{
		Name: "above_center", Action: core.ActionBuy, Strength: core.StrengthWeak,
		Match: func(in RSIInput) bool { return in.Value > in.Thresholds.Center },
	},
	{
		Name: "below_center", Action: core.ActionSell, Strength: core.StrengthWeak,
		Match: func(in RSIInput) bool { return in.Value >= in.Thresholds.Oversold },
	},
	holdRule[RSIInput](),
}

// KDJThresholds bound the J line.
type KDJThresholds struct {
	Overbought float64 `mapstructure:"overbought" json:"overbought"`
	Oversold   float64 `mapstructure:"oversold" json:"oversold"`
}

func DefaultKDJThresholds() KDJThresholds {
	return KDJThresholds{Overbought: 100, Oversold: 0}
}

func (t KDJThresholds) Validate() error {
	if t.Oversold >= t.Overbought {
		return core.Invalidf("kdj oversold %v must be below overbought %v", t.Oversold, t.Overbought)
	}
	return nil
}

// KDJInput is the KDJ reading at L-1 and L.
type KDJInput struct {
	Prev, Curr indicator.KDJValue
	Thresholds KDJThresholds
}

// KDJRules: K/D crosses beat J extremes.
var KDJRules = []Rule[KDJInput]{
	{
		Name: "golden_cross", Action: core.ActionBuy, Strength: core.StrengthStrong,
		Match: func(in KDJInput) bool { return in.Prev.K <= in.Prev.D && in.Curr.K > in.Curr.D },
	},
	{
		Name: "death_cross", Action: core.ActionSell, Strength: core.StrengthStrong,
		Match: func(in KDJInput) bool { return in.Prev.K >= in.Prev.D && in.Curr.K < in.Curr.D },
	},
	{
		Name: "j_overbought", Action: core.ActionSell, Strength: core.StrengthMedium,
		Match: func(in KDJInput) bool { return in.Curr.J > in.Thresholds.Overbought },
	},
	{
		Name: "j_oversold", Action: core.ActionBuy, Strength: core.StrengthMedium,
		Match: func(in KDJInput) bool { return in.Curr.J < in.Thresholds.Oversold },
	},
	holdRule[KDJInput](),
}

// BOLLInput is the latest close against the latest bands.
type BOLLInput struct {
	Close float64
	Band  indicator.BOLLValue
}

// BOLLRules: a close outside the bands reads as a breakout in that direction.
var BOLLRules = []Rule[BOLLInput]{
	{
		Name: "above_upper", Action: core.ActionBuy, Strength: core.StrengthStrong,
		Match: func(in BOLLInput) bool { return in.Close > in.Band.Upper },
	},
	{
		Name: "below_lower", Action: core.ActionSell, Strength: core.StrengthStrong,
		Match: func(in BOLLInput) bool { return in.Close < in.Band.Lower },
	},
	{
		Name: "above_middle", Action: core.ActionBuy, Strength: core.StrengthWeak,
		Match: func(in BOLLInput) bool { return in.Close > in.Band.Middle },
	},
	{
		Name: "below_middle", Action: core.ActionSell, Strength: core.StrengthWeak,
		Match: func(in BOLLInput) bool { return in.Close < in.Band.Middle },
	},
	holdRule[BOLLInput](),
}

// MAInput is a fast/slow moving-average pair at L-1 and L.
type MAInput struct {
	PrevFast, PrevSlow float64
	Fast, Slow         float64
}

// MARules grade moving-average alignment.
var MARules = []Rule[MAInput]{
	{
		Name: "golden_cross", Action: core.ActionBuy, Strength: core.StrengthStrong,
		Match: func(in MAInput) bool { return in.PrevFast <= in.PrevSlow && in.Fast > in.Slow },
	},
	{
		Name: "death_cross", Action: core.ActionSell, Strength: core.StrengthStrong,
		Match: func(in MAInput) bool { return in.PrevFast >= in.PrevSlow && in.Fast < in.Slow },
	},
	{
		Name: "bullish_alignment", Action: core.ActionBuy, Strength: core.StrengthWeak,
		Match: func(in MAInput) bool { return in.Fast > in.Slow },
	},
	{
		Name: "bearish_alignment", Action: core.ActionSell, Strength: core.StrengthWeak,
		Match: func(in MAInput) bool { return in.Fast < in.Slow },
	},
	holdRule[MAInput](),
}
