package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var trendCloses = []float64{
	13.2, 13.4, 13.3, 13.6, 13.9, 13.8, 14.1, 14.4, 14.2, 14.6,
	14.9, 15.1, 15.0, 15.3, 15.4, 15.2, 14.9, 14.7, 14.8, 15.0,
}

func TestMACD_SeedFirstValues(t *testing.T) {
	macd, err := MACD(trendCloses, DefaultMACDParams())
	require.NoError(t, err)
	require.Len(t, macd, len(trendCloses))
	assert.Equal(t, len(trendCloses), macd.Valid(), "first-value seeding leaves no gap")

	first, ok := macd.At(0)
	require.True(t, ok)
	assert.Equal(t, MACDValue{}, first)

	second, _ := macd.At(1)
	assert.InDelta(t, 0.01595441595441649, second.DIF, 1e-12)
	assert.InDelta(t, 0.003190883190883298, second.DEA, 1e-12)

	last, _ := macd.Latest()
	assert.InDelta(t, 0.42458466096217506, last.DIF, 1e-9)
	assert.InDelta(t, 0.4281687964656008, last.DEA, 1e-9)
	assert.InDelta(t, -0.007168271006851468, last.Hist, 1e-9)
}

func TestMACD_HistogramIsTwiceSpread(t *testing.T) {
	closes := randomWalk(200, 5)
	for _, seed := range []Seed{SeedFirst, SeedSMA} {
		p := DefaultMACDParams()
		p.Seed = seed
		macd, err := MACD(closes, p)
		require.NoError(t, err)
		for i, v := range macd {
			if !v.OK {
				continue
			}
			assert.Equal(t, (v.V.DIF-v.V.DEA)*2, v.V.Hist, "seed %s index %d", seed, i)
		}
	}
}

func TestMACD_SeedSMAAvailability(t *testing.T) {
	p := DefaultMACDParams()
	p.Seed = SeedSMA
	macd, err := MACD(randomWalk(40, 9), p)
	require.NoError(t, err)

	// slow EMA available at 25, DEA needs another 8 DIF values
	for i := 0; i < 33; i++ {
		assert.False(t, macd[i].OK, "index %d", i)
	}
	assert.True(t, macd[33].OK)
	assert.Equal(t, 40-33, macd.Valid())
}

func TestMACD_ConstantSeriesIsFlat(t *testing.T) {
	closes := make([]float64, 50)
	for i := range closes {
		closes[i] = 8.8
	}
	macd, err := MACD(closes, DefaultMACDParams())
	require.NoError(t, err)
	for _, v := range macd {
		assert.Equal(t, MACDValue{}, v.V)
	}
}

func TestMACDParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		p       MACDParams
		wantErr bool
	}{
		{"defaults", DefaultMACDParams(), false},
		{"zero fast", MACDParams{Fast: 0, Slow: 26, Signal: 9, Seed: SeedFirst}, true},
		{"fast not below slow", MACDParams{Fast: 26, Slow: 12, Signal: 9, Seed: SeedFirst}, true},
		{"unknown seed", MACDParams{Fast: 12, Slow: 26, Signal: 9, Seed: "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
