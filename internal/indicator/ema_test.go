package indicator

import "testing"

func TestEMA_SeedFirst(t *testing.T) {
	prices := []float64{10, 11, 12, 13, 14, 15}
	ema, err := EMA(prices, 3, SeedFirst)
	if err != nil {
		t.Fatal(err)
	}

	// multiplier 0.5, seeded at the first price
	want := []float64{10, 10.5, 11.25, 12.125, 13.0625, 14.03125}
	for i, w := range want {
		got, ok := ema.At(i)
		if !ok || got != w {
			t.Errorf("ema[%d] = %f (ok=%v), want %f", i, got, ok, w)
		}
	}
}

func TestEMA_SeedSMA(t *testing.T) {
	prices := []float64{10, 11, 12, 13, 14, 15}
	ema, err := EMA(prices, 3, SeedSMA)
	if err != nil {
		t.Fatal(err)
	}

	if ema.Valid() != 4 {
		t.Fatalf("expected 4 values, got %d", ema.Valid())
	}
	// First EMA = SMA = 11
	if v, _ := ema.At(2); v != 11 {
		t.Errorf("first EMA should equal SMA, got %f", v)
	}
	for i := 3; i < len(prices); i++ {
		if ema[i].V <= ema[i-1].V {
			t.Errorf("EMA should be increasing, ema[%d]=%f <= ema[%d]=%f", i, ema[i].V, i-1, ema[i-1].V)
		}
	}
}

func TestEMA_NotEnoughDataForSMASeed(t *testing.T) {
	ema, err := EMA([]float64{10, 11}, 5, SeedSMA)
	if err != nil {
		t.Fatal(err)
	}
	if len(ema) != 2 || ema.Valid() != 0 {
		t.Errorf("expected 2 unavailable entries, got len=%d valid=%d", len(ema), ema.Valid())
	}
}

func TestEMA_InvalidArguments(t *testing.T) {
	if _, err := EMA([]float64{1}, 0, SeedFirst); err == nil {
		t.Error("expected error for zero period")
	}
	if _, err := EMA([]float64{1}, 3, Seed("median")); err == nil {
		t.Error("expected error for unknown seed")
	}
}
