// Package composite reduces single-indicator signals to one verdict.
package composite

import "github.com/newthinker/taengine/internal/core"

// Majority is the number of agreeing signals that decides the verdict
// outright.
const Majority = 3

// Tally counts the buy and sell signals.
func Tally(signals ...core.Signal) (buys, sells int) {
	for _, s := range signals {
		switch s.Action {
		case core.ActionBuy:
			buys++
		case core.ActionSell:
			sells++
		}
	}
	return buys, sells
}

// Evaluate combines the directional signals. A majority of three decides
// first, then the larger side. Ties, including no signals at all, are hold.
func Evaluate(signals ...core.Signal) core.Verdict {
	buys, sells := Tally(signals...)
	v := core.Verdict{Verdict: core.ActionHold, BuyCount: buys, SellCount: sells}
	switch {
	case buys >= Majority:
		v.Verdict = core.ActionBuy
	case sells >= Majority:
		v.Verdict = core.ActionSell
	case buys > sells:
		v.Verdict = core.ActionBuy
	case sells > buys:
		v.Verdict = core.ActionSell
	}
	return v
}

// Headline returns a short display label for v.
func Headline(v core.Verdict) string {
	switch {
	case v.Verdict == core.ActionBuy && v.BuyCount >= Majority:
		return "strong buy"
	case v.Verdict == core.ActionSell && v.SellCount >= Majority:
		return "strong sell"
	case v.Verdict == core.ActionBuy:
		return "lean buy"
	case v.Verdict == core.ActionSell:
		return "lean sell"
	case v.BuyCount == 0 && v.SellCount == 0:
		return "no signal"
	default:
		return "mixed"
	}
}
