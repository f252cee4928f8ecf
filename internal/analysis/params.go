package analysis

import (
	"fmt"

	"github.com/newthinker/taengine/internal/classifier"
	"github.com/newthinker/taengine/internal/indicator"
)

// Params configures one analysis run.
type Params struct {
	Indicators indicator.Params      `mapstructure:"indicators" json:"indicators"`
	Signals    classifier.Thresholds `mapstructure:"signals" json:"signals"`
}

// DefaultParams returns the daily-chart defaults.
func DefaultParams() Params {
	return Params{
		Indicators: indicator.DefaultParams(),
		Signals:    classifier.DefaultThresholds(),
	}
}

func (p Params) Validate() error {
	if err := p.Indicators.Validate(); err != nil {
		return fmt.Errorf("indicators: %w", err)
	}
	if err := p.Signals.Validate(); err != nil {
		return fmt.Errorf("signals: %w", err)
	}
	return nil
}
