package indicator

import (
	"math"

	"github.com/newthinker/taengine/internal/core"
)

// SMA calculates the simple moving average of values over period.
// Indices before period-1 are unavailable.
func SMA(values []float64, period int) (Series[float64], error) {
	if period < 1 {
		return nil, core.Invalidf("sma period must be positive, got %d", period)
	}

	result := make(Series[float64], len(values))
	for i := period - 1; i < len(values); i++ {
		m, _ := windowStats(values[i-period+1 : i+1])
		result[i] = available(m)
	}
	return result, nil
}

// MA is the moving average of closing prices.
func MA(closes []float64, period int) (Series[float64], error) {
	return SMA(closes, period)
}

// MAs computes one moving average per period over the same closes.
func MAs(closes []float64, periods []int) (map[int]Series[float64], error) {
	result := make(map[int]Series[float64], len(periods))
	for _, p := range periods {
		ma, err := MA(closes, p)
		if err != nil {
			return nil, err
		}
		result[p] = ma
	}
	return result, nil
}

// VolumeMA is the moving average of traded volume.
func VolumeMA(volumes []float64, period int) (Series[float64], error) {
	return SMA(volumes, period)
}

const rescaleAbove = 1e100

// windowStats returns the arithmetic mean and population standard deviation
// of window. A constant window yields its value and exactly zero deviation.
// Windows holding huge magnitudes are scaled down first so finite inputs
// give finite results.
func windowStats(window []float64) (mean, stddev float64) {
	lo, hi := window[0], window[0]
	for _, v := range window {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return lo, 0
	}

	scale := math.Max(math.Abs(lo), math.Abs(hi))
	if scale < rescaleAbove {
		scale = 1
	}
	n := float64(len(window))
	var sum float64
	for _, v := range window {
		sum += v / scale
	}
	m := sum / n

	var sq float64
	for _, v := range window {
		d := v/scale - m
		sq += d * d
	}
	mean = math.Min(math.Max(m*scale, lo), hi)
	return mean, math.Sqrt(sq/n) * scale
}
