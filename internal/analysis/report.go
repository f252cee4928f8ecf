package analysis

import (
	"fmt"
	"time"

	"github.com/newthinker/taengine/internal/classifier"
	"github.com/newthinker/taengine/internal/core"
	"github.com/newthinker/taengine/internal/indicator"
	"github.com/newthinker/taengine/internal/series"
)

// DateLayout is the date encoding of report date axes.
const DateLayout = "2006-01-02"

// Report is the result of one analysis. Every per-bar array is aligned with
// Dates.
type Report struct {
	ID           string             `json:"id" yaml:"id"`
	Symbol       string             `json:"symbol" yaml:"symbol"`
	GeneratedAt  time.Time          `json:"generated_at" yaml:"generated_at"`
	AsOf         string             `json:"as_of" yaml:"as_of"`
	Dates        []string           `json:"dates" yaml:"dates"`
	Bars         Bars               `json:"bars" yaml:"-"`
	Indicators   Indicators         `json:"indicators" yaml:"-"`
	Signals      Signals            `json:"signals" yaml:"signals"`
	Events       []classifier.Event `json:"events" yaml:"events"`
	Verdict      core.Verdict       `json:"verdict" yaml:"verdict"`
	Headline     string             `json:"headline" yaml:"headline"`
	Warnings     []string           `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Insufficient []string           `json:"insufficient,omitempty" yaml:"insufficient,omitempty"`
	Params       Params             `json:"params" yaml:"-"`
}

// Bars carries the normalized price data in chart order.
type Bars struct {
	// Quads are (open, close, low, high) per bar.
	Quads   [][4]float64 `json:"quads"`
	Volumes []int64      `json:"volumes"`
}

// Indicators holds every computed family. Moving averages are keyed by
// label, e.g. "ma5".
type Indicators struct {
	MA       map[string]indicator.Series[float64]  `json:"ma"`
	VolumeMA map[string]indicator.Series[float64]  `json:"volume_ma"`
	MACD     indicator.Series[indicator.MACDValue] `json:"macd"`
	RSI      indicator.Series[float64]             `json:"rsi"`
	KDJ      indicator.Series[indicator.KDJValue]  `json:"kdj"`
	BOLL     indicator.Series[indicator.BOLLValue] `json:"boll"`
}

// Signals are the single-indicator verdicts at the latest bar. MA is
// informational and does not vote.
type Signals struct {
	MA   core.Signal `json:"ma" yaml:"ma"`
	MACD core.Signal `json:"macd" yaml:"macd"`
	RSI  core.Signal `json:"rsi" yaml:"rsi"`
	KDJ  core.Signal `json:"kdj" yaml:"kdj"`
	BOLL core.Signal `json:"boll" yaml:"boll"`
}

// Voting returns the signals that feed the composite verdict.
func (s Signals) Voting() []core.Signal {
	return []core.Signal{s.MACD, s.RSI, s.KDJ, s.BOLL}
}

// Summary is the compact listing form of a report.
type Summary struct {
	ID          string       `json:"id"`
	Symbol      string       `json:"symbol"`
	GeneratedAt time.Time    `json:"generated_at"`
	AsOf        string       `json:"as_of"`
	Bars        int          `json:"bars"`
	Verdict     core.Verdict `json:"verdict"`
	Headline    string       `json:"headline"`
}

func (r *Report) Summary() Summary {
	return Summary{
		ID:          r.ID,
		Symbol:      r.Symbol,
		GeneratedAt: r.GeneratedAt,
		AsOf:        r.AsOf,
		Bars:        len(r.Dates),
		Verdict:     r.Verdict,
		Headline:    r.Headline,
	}
}

func maLabel(prefix string, period int) string {
	return fmt.Sprintf("%s%d", prefix, period)
}

func labelled(m map[int]indicator.Series[float64], prefix string) map[string]indicator.Series[float64] {
	out := make(map[string]indicator.Series[float64], len(m))
	for p, s := range m {
		out[maLabel(prefix, p)] = s
	}
	return out
}

func newBars(s series.Series) Bars {
	bars := s.Bars()
	vols := make([]int64, len(bars))
	for i, b := range bars {
		vols[i] = b.Volume
	}
	return Bars{Quads: s.Quads(), Volumes: vols}
}

func formatDates(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(DateLayout)
	}
	return out
}
