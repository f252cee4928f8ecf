package indicator

import (
	"fmt"
	"sort"

	"github.com/newthinker/taengine/internal/core"
	"github.com/newthinker/taengine/internal/series"
)

// Names of the indicator families.
const (
	NameMA       = "ma"
	NameVolumeMA = "volume_ma"
	NameMACD     = "macd"
	NameRSI      = "rsi"
	NameKDJ      = "kdj"
	NameBOLL     = "boll"
)

// Names lists every supported family.
var Names = []string{NameMA, NameVolumeMA, NameMACD, NameRSI, NameKDJ, NameBOLL}

// Params holds the parameters of every indicator family.
type Params struct {
	MAPeriods       []int      `mapstructure:"ma_periods" json:"ma_periods"`
	VolumeMAPeriods []int      `mapstructure:"volume_ma_periods" json:"volume_ma_periods"`
	RSIPeriod       int        `mapstructure:"rsi_period" json:"rsi_period"`
	MACD            MACDParams `mapstructure:"macd" json:"macd"`
	KDJ             KDJParams  `mapstructure:"kdj" json:"kdj"`
	BOLL            BOLLParams `mapstructure:"boll" json:"boll"`
}

// DefaultParams returns the conventional daily-chart configuration.
func DefaultParams() Params {
	return Params{
		MAPeriods:       []int{5, 10, 20, 30, 60},
		VolumeMAPeriods: []int{5, 10},
		RSIPeriod:       14,
		MACD:            DefaultMACDParams(),
		KDJ:             DefaultKDJParams(),
		BOLL:            DefaultBOLLParams(),
	}
}

// Validate checks every family's parameters.
func (p Params) Validate() error {
	for _, periods := range [][]int{p.MAPeriods, p.VolumeMAPeriods} {
		seen := make(map[int]bool, len(periods))
		for _, n := range periods {
			if n < 1 {
				return core.Invalidf("moving average period must be positive, got %d", n)
			}
			if seen[n] {
				return core.Invalidf("duplicate moving average period %d", n)
			}
			seen[n] = true
		}
	}
	if p.RSIPeriod < 1 {
		return core.Invalidf("rsi period must be positive, got %d", p.RSIPeriod)
	}
	if err := p.MACD.Validate(); err != nil {
		return err
	}
	if err := p.KDJ.Validate(); err != nil {
		return err
	}
	return p.BOLL.Validate()
}

// SortedMAPeriods returns the MA periods in ascending order.
func (p Params) SortedMAPeriods() []int {
	out := append([]int(nil), p.MAPeriods...)
	sort.Ints(out)
	return out
}

// Set is the output of every family over one series.
type Set struct {
	MA       map[int]Series[float64]
	VolumeMA map[int]Series[float64]
	MACD     Series[MACDValue]
	RSI      Series[float64]
	KDJ      Series[KDJValue]
	BOLL     Series[BOLLValue]
}

// Compute runs all six families over s.
func Compute(s series.Series, p Params) (*Set, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	closes := s.Closes()
	set := &Set{}
	var err error

	if set.MA, err = MAs(closes, p.MAPeriods); err != nil {
		return nil, fmt.Errorf("ma: %w", err)
	}
	if set.VolumeMA, err = MAs(s.Volumes(), p.VolumeMAPeriods); err != nil {
		return nil, fmt.Errorf("volume ma: %w", err)
	}
	if set.MACD, err = MACD(closes, p.MACD); err != nil {
		return nil, fmt.Errorf("macd: %w", err)
	}
	if set.RSI, err = RSI(closes, p.RSIPeriod); err != nil {
		return nil, fmt.Errorf("rsi: %w", err)
	}
	if set.KDJ, err = KDJ(s.Highs(), s.Lows(), closes, p.KDJ); err != nil {
		return nil, fmt.Errorf("kdj: %w", err)
	}
	if set.BOLL, err = BOLL(closes, p.BOLL); err != nil {
		return nil, fmt.Errorf("boll: %w", err)
	}
	return set, nil
}

// Missing names the families with no value at the latest index.
func (s *Set) Missing() []string {
	var out []string
	for _, p := range sortedKeys(s.MA) {
		if _, ok := s.MA[p].Latest(); !ok {
			out = append(out, fmt.Sprintf("%s%d", NameMA, p))
		}
	}
	for _, p := range sortedKeys(s.VolumeMA) {
		if _, ok := s.VolumeMA[p].Latest(); !ok {
			out = append(out, fmt.Sprintf("%s%d", NameVolumeMA, p))
		}
	}
	if _, ok := s.MACD.Latest(); !ok {
		out = append(out, NameMACD)
	}
	if _, ok := s.RSI.Latest(); !ok {
		out = append(out, NameRSI)
	}
	if _, ok := s.KDJ.Latest(); !ok {
		out = append(out, NameKDJ)
	}
	if _, ok := s.BOLL.Latest(); !ok {
		out = append(out, NameBOLL)
	}
	return out
}

func sortedKeys(m map[int]Series[float64]) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
