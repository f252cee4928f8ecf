package indicator

import "github.com/newthinker/taengine/internal/core"

// Seed selects how an exponential moving average is initialised.
type Seed string

const (
	// SeedFirst starts the average at the first input value. Every index is
	// available, with a start-up bias in the early entries.
	SeedFirst Seed = "first"
	// SeedSMA starts the average at the simple mean of the first period
	// inputs. Indices before period-1 are unavailable.
	SeedSMA Seed = "sma"
)

// Valid reports whether s names a known seeding policy.
func (s Seed) Valid() bool {
	return s == SeedFirst || s == SeedSMA
}

// EMA calculates the exponential moving average with smoothing 2/(period+1).
func EMA(values []float64, period int, seed Seed) (Series[float64], error) {
	if period < 1 {
		return nil, core.Invalidf("ema period must be positive, got %d", period)
	}
	if !seed.Valid() {
		return nil, core.Invalidf("unknown ema seed %q", seed)
	}
	src := make(Series[float64], len(values))
	for i, v := range values {
		src[i] = available(v)
	}
	return emaOf(src, period, seed), nil
}

// emaOf smooths the available tail of src. Entries before the first
// available value stay unavailable.
func emaOf(src Series[float64], period int, seed Seed) Series[float64] {
	result := make(Series[float64], len(src))

	start := -1
	for i, v := range src {
		if v.OK {
			start = i
			break
		}
	}
	if start < 0 {
		return result
	}

	multiplier := 2.0 / float64(period+1)
	var ema float64
	first := start

	switch seed {
	case SeedSMA:
		first = start + period - 1
		if first >= len(src) {
			return result
		}
		var sum float64
		for i := start; i <= first; i++ {
			sum += src[i].V
		}
		ema = sum / float64(period)
	default:
		ema = src[start].V
	}
	result[first] = available(ema)

	for i := first + 1; i < len(src); i++ {
		ema = (src[i].V-ema)*multiplier + ema
		result[i] = available(ema)
	}
	return result
}
