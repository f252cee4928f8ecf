package core

import "time"

// Bar represents one daily OHLCV price bar
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Action represents a trading signal action
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// IsDirectional reports whether the action is buy or sell
func (a Action) IsDirectional() bool {
	return a == ActionBuy || a == ActionSell
}

// Strength grades how decisive a signal is
type Strength string

const (
	StrengthWeak   Strength = "weak"
	StrengthMedium Strength = "medium"
	StrengthStrong Strength = "strong"
)

// Signal is the verdict of a single indicator at one date
type Signal struct {
	Indicator string    `json:"indicator" yaml:"indicator"`
	Action    Action    `json:"action" yaml:"action"`
	Strength  Strength  `json:"strength,omitempty" yaml:"strength,omitempty"`
	Date      time.Time `json:"date,omitempty" yaml:"date,omitempty"`
	Rule      string    `json:"rule,omitempty" yaml:"rule,omitempty"`
	Reason    string    `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Hold returns a hold signal for the named indicator
func Hold(indicator, reason string) Signal {
	return Signal{Indicator: indicator, Action: ActionHold, Reason: reason}
}

// Verdict is the composite judgment reduced from single-indicator signals
type Verdict struct {
	Verdict   Action `json:"verdict" yaml:"verdict"`
	BuyCount  int    `json:"buy_count" yaml:"buy_count"`
	SellCount int    `json:"sell_count" yaml:"sell_count"`
}
