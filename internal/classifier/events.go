package classifier

import (
	"fmt"
	"time"

	"github.com/newthinker/taengine/internal/core"
	"github.com/newthinker/taengine/internal/indicator"
)

// EventKind names a transition found by a detector.
type EventKind string

const (
	EventGoldenCross EventKind = "golden_cross"
	EventDeathCross  EventKind = "death_cross"
	EventOverbought  EventKind = "overbought"
	EventOversold    EventKind = "oversold"
)

// Event is one transition between consecutive indices. For crosses Fast and
// Slow are the two lines at Index; for RSI zones Fast is the RSI value and
// Slow the threshold crossed.
//
// Onset marks a cross recorded at the first bar where both lines exist,
// when they start out apart.
type Event struct {
	Kind   EventKind   `json:"kind" yaml:"kind"`
	Date   time.Time   `json:"date" yaml:"date"`
	Index  int         `json:"index" yaml:"index"`
	Action core.Action `json:"action" yaml:"action"`
	Fast   float64     `json:"fast" yaml:"fast"`
	Slow   float64     `json:"slow" yaml:"slow"`
	Label  string      `json:"label" yaml:"label"`
	Onset  bool        `json:"onset,omitempty" yaml:"onset,omitempty"`
}

func dateAt(dates []time.Time, i int) time.Time {
	if i < len(dates) {
		return dates[i]
	}
	return time.Time{}
}

// DetectCrosses records every golden cross (fast moves from <= slow to
// > slow) and death cross (>= to <) in index order. Pairs with an
// unavailable member are skipped, except that the first index after
// index 0 where both lines become available is compared against an
// implicit previous state of "not yet apart": a fast line already above
// the slow one there is a golden cross, below it a death cross.
func DetectCrosses(dates []time.Time, fast, slow indicator.Series[float64], fastLabel, slowLabel string) []Event {
	label := fastLabel + "/" + slowLabel
	n := min(len(fast), len(slow))

	var events []Event
	seen := false
	for i := 0; i < n; i++ {
		cf, okF := fast.At(i)
		cs, okS := slow.At(i)
		if !okF || !okS {
			continue
		}
		first := !seen
		seen = true

		var golden, death, onset bool
		pf, okPF := fast.At(i - 1)
		ps, okPS := slow.At(i - 1)
		switch {
		case okPF && okPS:
			golden = pf <= ps && cf > cs
			death = pf >= ps && cf < cs
		case first && i > 0:
			golden, death, onset = cf > cs, cf < cs, true
		}

		var kind EventKind
		var action core.Action
		switch {
		case golden:
			kind, action = EventGoldenCross, core.ActionBuy
		case death:
			kind, action = EventDeathCross, core.ActionSell
		default:
			continue
		}
		events = append(events, Event{
			Kind:   kind,
			Date:   dateAt(dates, i),
			Index:  i,
			Action: action,
			Fast:   cf,
			Slow:   cs,
			Label:  label,
			Onset:  onset,
		})
	}
	return events
}

// DetectMACDCrosses finds DIF/DEA crosses.
func DetectMACDCrosses(dates []time.Time, macd indicator.Series[indicator.MACDValue]) []Event {
	dif := indicator.Map(macd, func(v indicator.MACDValue) float64 { return v.DIF })
	dea := indicator.Map(macd, func(v indicator.MACDValue) float64 { return v.DEA })
	return DetectCrosses(dates, dif, dea, "DIF", "DEA")
}

// DetectKDJCrosses finds K/D crosses.
func DetectKDJCrosses(dates []time.Time, kdj indicator.Series[indicator.KDJValue]) []Event {
	k := indicator.Map(kdj, func(v indicator.KDJValue) float64 { return v.K })
	d := indicator.Map(kdj, func(v indicator.KDJValue) float64 { return v.D })
	return DetectCrosses(dates, k, d, "K", "D")
}

// DetectRSIZones records entries into the overbought and oversold zones
// from inside the neutral band.
func DetectRSIZones(dates []time.Time, rsi indicator.Series[float64], t RSIThresholds) []Event {
	var events []Event
	for i := 1; i < len(rsi); i++ {
		prev, okPrev := rsi.At(i - 1)
		curr, okCurr := rsi.At(i)
		if !okPrev || !okCurr {
			continue
		}
		ev := Event{Date: dateAt(dates, i), Index: i, Fast: curr}
		switch {
		case prev < t.Oversold || prev > t.Overbought:
			continue
		case curr > t.Overbought:
			ev.Kind, ev.Action, ev.Slow = EventOverbought, core.ActionSell, t.Overbought
		case curr < t.Oversold:
			ev.Kind, ev.Action, ev.Slow = EventOversold, core.ActionBuy, t.Oversold
		default:
			continue
		}
		ev.Label = fmt.Sprintf("RSI %s %.0f", ev.Kind, ev.Slow)
		events = append(events, ev)
	}
	return events
}
