package indicator

import "github.com/newthinker/taengine/internal/core"

// RSI calculates the relative strength index from simple averages of the
// last period close-to-close gains and losses. Indices before period are
// unavailable.
func RSI(closes []float64, period int) (Series[float64], error) {
	if period < 1 {
		return nil, core.Invalidf("rsi period must be positive, got %d", period)
	}

	n := len(closes)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	result := make(Series[float64], n)
	for i := period; i < n; i++ {
		var sumGain, sumLoss float64
		for j := i - period + 1; j <= i; j++ {
			sumGain += gains[j]
			sumLoss += losses[j]
		}
		if sumLoss == 0 {
			result[i] = available(100.0)
			continue
		}
		rs := (sumGain / float64(period)) / (sumLoss / float64(period))
		result[i] = available(100 - 100/(1+rs))
	}
	return result, nil
}
