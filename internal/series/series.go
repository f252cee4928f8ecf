// Package series normalizes raw OHLCV records into an ordered,
// validated price series that every indicator calculator consumes.
package series

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/newthinker/taengine/internal/core"
)

// Series is an immutable date-ordered sequence of bars.
type Series struct {
	bars     []core.Bar
	warnings []string
}

// Normalize parses raw records, orders them by date and validates the result.
func Normalize(raw []RawBar) (Series, error) {
	bars := make([]core.Bar, 0, len(raw))
	for i, r := range raw {
		bar, err := parseBar(r)
		if err != nil {
			return Series{}, core.Invalidf("record %d: %v", i, err)
		}
		bars = append(bars, bar)
	}
	return build(bars)
}

// FromBars validates already typed bars. The input slice is not modified.
func FromBars(bars []core.Bar) (Series, error) {
	cp := make([]core.Bar, len(bars))
	copy(cp, bars)
	for i, b := range cp {
		if err := checkFinite(b); err != nil {
			return Series{}, core.Invalidf("bar %d: %v", i, err)
		}
		if b.Volume < 0 {
			return Series{}, core.Invalidf("bar %d: negative volume %d", i, b.Volume)
		}
		if b.Date.IsZero() {
			return Series{}, core.Invalidf("bar %d: missing date", i)
		}
	}
	return build(cp)
}

func parseBar(r RawBar) (core.Bar, error) {
	var (
		bar core.Bar
		err error
	)
	if bar.Date, err = parseDate(r.Date); err != nil {
		return bar, err
	}
	if bar.Open, err = parsePrice(r.Open); err != nil {
		return bar, fmt.Errorf("open: %w", err)
	}
	if bar.High, err = parsePrice(r.High); err != nil {
		return bar, fmt.Errorf("high: %w", err)
	}
	if bar.Low, err = parsePrice(r.Low); err != nil {
		return bar, fmt.Errorf("low: %w", err)
	}
	if bar.Close, err = parsePrice(r.Close); err != nil {
		return bar, fmt.Errorf("close: %w", err)
	}
	if bar.Volume, err = parseVolume(r.Volume); err != nil {
		return bar, fmt.Errorf("volume: %w", err)
	}
	return bar, nil
}

// MaxPrice bounds the magnitude of any price. Indicator arithmetic on
// larger values can leave the float64 range.
const MaxPrice = 1e15

func checkPrice(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("non-finite value %v", v)
	}
	if math.Abs(v) > MaxPrice {
		return fmt.Errorf("value %g exceeds %g", v, MaxPrice)
	}
	return nil
}

func checkFinite(b core.Bar) error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"open", b.Open}, {"high", b.High}, {"low", b.Low}, {"close", b.Close}} {
		if err := checkPrice(f.v); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
	}
	return nil
}

// calendarDate drops the time of day, keeping the day as seen in t's zone.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func build(bars []core.Bar) (Series, error) {
	if len(bars) == 0 {
		return Series{}, core.Invalidf("series is empty")
	}
	for i := range bars {
		bars[i].Date = calendarDate(bars[i].Date)
	}

	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})

	var warnings []string
	for i, b := range bars {
		if i > 0 && !b.Date.After(bars[i-1].Date) {
			return Series{}, core.Invalidf("duplicate date %s", b.Date.Format("2006-01-02"))
		}
		// Inconsistent OHLC is reported, not repaired.
		if b.High < math.Max(math.Max(b.Open, b.Close), b.Low) {
			warnings = append(warnings, fmt.Sprintf("%s: high %.4f below open/close/low", b.Date.Format("2006-01-02"), b.High))
		}
		if b.Low > math.Min(math.Min(b.Open, b.Close), b.High) {
			warnings = append(warnings, fmt.Sprintf("%s: low %.4f above open/close/high", b.Date.Format("2006-01-02"), b.Low))
		}
	}

	return Series{bars: bars, warnings: warnings}, nil
}

// Len returns the number of bars.
func (s Series) Len() int { return len(s.bars) }

// Bar returns the bar at index i.
func (s Series) Bar(i int) core.Bar { return s.bars[i] }

// Last returns the most recent bar. It panics on an empty series.
func (s Series) Last() core.Bar { return s.bars[len(s.bars)-1] }

// Bars returns a copy of the bars.
func (s Series) Bars() []core.Bar {
	out := make([]core.Bar, len(s.bars))
	copy(out, s.bars)
	return out
}

// Warnings lists tolerated input inconsistencies.
func (s Series) Warnings() []string {
	out := make([]string, len(s.warnings))
	copy(out, s.warnings)
	return out
}

func (s Series) Dates() []time.Time {
	out := make([]time.Time, len(s.bars))
	for i, b := range s.bars {
		out[i] = b.Date
	}
	return out
}

func (s Series) Closes() []float64 { return s.column(func(b core.Bar) float64 { return b.Close }) }

func (s Series) Highs() []float64 { return s.column(func(b core.Bar) float64 { return b.High }) }

func (s Series) Lows() []float64 { return s.column(func(b core.Bar) float64 { return b.Low }) }

func (s Series) Volumes() []float64 {
	return s.column(func(b core.Bar) float64 { return float64(b.Volume) })
}

// Quads returns (open, close, low, high) per bar, the candlestick layout
// chart consumers expect.
func (s Series) Quads() [][4]float64 {
	out := make([][4]float64, len(s.bars))
	for i, b := range s.bars {
		out[i] = [4]float64{b.Open, b.Close, b.Low, b.High}
	}
	return out
}

func (s Series) column(f func(core.Bar) float64) []float64 {
	out := make([]float64, len(s.bars))
	for i, b := range s.bars {
		out[i] = f(b)
	}
	return out
}
