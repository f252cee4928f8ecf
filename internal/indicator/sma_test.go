package indicator

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/newthinker/taengine/internal/core"
)

func TestSMA_Calculate(t *testing.T) {
	prices := []float64{10, 11, 12, 13, 14, 15}

	sma, err := SMA(prices, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// [2] = (10+11+12)/3 = 11 ... [5] = (13+14+15)/3 = 14
	if len(sma) != len(prices) {
		t.Fatalf("expected %d values, got %d", len(prices), len(sma))
	}
	for i := 0; i < 2; i++ {
		if sma[i].OK {
			t.Errorf("sma[%d] should be unavailable", i)
		}
	}
	expected := []float64{11, 12, 13, 14}
	for i, v := range expected {
		got, ok := sma.At(i + 2)
		if !ok || got != v {
			t.Errorf("sma[%d] = %f (ok=%v), want %f", i+2, got, ok, v)
		}
	}
}

func TestSMA_NotEnoughData(t *testing.T) {
	prices := []float64{10, 11}
	sma, err := SMA(prices, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sma) != 2 {
		t.Fatalf("expected aligned length 2, got %d", len(sma))
	}
	if sma.Valid() != 0 {
		t.Errorf("expected no available values, got %d", sma.Valid())
	}
}

func TestSMA_InvalidPeriod(t *testing.T) {
	_, err := SMA([]float64{1, 2, 3}, 0)
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestMA_ExactWindowMean(t *testing.T) {
	closes := randomWalk(120, 7)

	for _, p := range []int{1, 2, 5, 10, 20, 30, 60} {
		ma, err := MA(closes, p)
		if err != nil {
			t.Fatalf("MA(%d): %v", p, err)
		}
		for i := range closes {
			v, ok := ma.At(i)
			if i < p-1 {
				if ok {
					t.Fatalf("MA(%d)[%d] should be unavailable", p, i)
				}
				continue
			}
			var sum float64
			for j := i - p + 1; j <= i; j++ {
				sum += closes[j]
			}
			if !ok || !almostEqual(v, sum/float64(p), 1e-9) {
				t.Fatalf("MA(%d)[%d] = %f, want %f", p, i, v, sum/float64(p))
			}
		}
	}
}

func TestMA_MatchesReferenceSMA(t *testing.T) {
	closes := randomWalk(90, 11)
	const period = 10

	ma, err := MA(closes, period)
	if err != nil {
		t.Fatal(err)
	}
	ref := helper.ChanToSlice(trend.NewSmaWithPeriod[float64](period).Compute(helper.SliceToChan(closes)))

	if len(ref) != len(closes)-period+1 {
		t.Fatalf("unexpected reference length %d", len(ref))
	}
	for k, want := range ref {
		got, ok := ma.At(k + period - 1)
		if !ok || !almostEqual(got, want, 1e-9) {
			t.Errorf("MA[%d] = %f, reference %f", k+period-1, got, want)
		}
	}
}

func TestMAs_Periods(t *testing.T) {
	closes := randomWalk(30, 3)
	mas, err := MAs(closes, []int{5, 10, 20, 30, 60})
	if err != nil {
		t.Fatal(err)
	}
	if len(mas) != 5 {
		t.Fatalf("expected 5 series, got %d", len(mas))
	}
	if mas[60].Valid() != 0 {
		t.Error("MA60 should be unavailable on 30 bars")
	}
	if mas[30].Valid() != 1 {
		t.Errorf("MA30 should have exactly one value, got %d", mas[30].Valid())
	}
}

func TestVolumeMA(t *testing.T) {
	vol, err := VolumeMA([]float64{100, 200, 300, 400}, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{math.NaN(), 150, 250, 350}
	got := Floats(vol)
	if !math.IsNaN(got[0]) {
		t.Errorf("volume ma[0] should be NaN, got %f", got[0])
	}
	for i := 1; i < len(want); i++ {
		if got[i] != want[i] {
			t.Errorf("volume ma[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestSeries_MarshalJSON(t *testing.T) {
	s := Series[float64]{{}, {V: 1.5, OK: true}}
	b, err := s.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "[null,1.5]" {
		t.Errorf("unexpected json %s", b)
	}
}

func TestSeries_UnmarshalJSON(t *testing.T) {
	var s Series[BOLLValue]
	if err := json.Unmarshal([]byte(`[null,{"upper":3,"middle":2,"lower":1}]`), &s); err != nil {
		t.Fatal(err)
	}
	if len(s) != 2 || s[0].OK || !s[1].OK {
		t.Fatalf("unexpected series %+v", s)
	}
	if s[1].V != (BOLLValue{Upper: 3, Middle: 2, Lower: 1}) {
		t.Errorf("decoded %+v", s[1].V)
	}
}

func TestMap(t *testing.T) {
	s := Series[MACDValue]{{}, {V: MACDValue{DIF: 1, DEA: 0.5}, OK: true}}
	dif := Map(s, func(v MACDValue) float64 { return v.DIF })
	if dif[0].OK || !dif[1].OK || dif[1].V != 1 {
		t.Errorf("Map() = %+v", dif)
	}
}

func TestSeries_LatestPair(t *testing.T) {
	s := Series[float64]{{}, {V: 1, OK: true}, {V: 2, OK: true}}
	prev, curr, ok := s.LatestPair()
	if !ok || prev != 1 || curr != 2 {
		t.Errorf("LatestPair() = %v, %v, %v", prev, curr, ok)
	}

	if _, _, ok := s[:2].LatestPair(); ok {
		t.Error("pair with unavailable member should not be ok")
	}
	if _, _, ok := s[:1].LatestPair(); ok {
		t.Error("single entry cannot form a pair")
	}
}

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

// randomWalk returns a deterministic positive price path.
func randomWalk(n int, seed int64) []float64 {
	r := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	price := 20.0
	for i := range out {
		price *= 1 + (r.Float64()-0.5)*0.06
		out[i] = price
	}
	return out
}
