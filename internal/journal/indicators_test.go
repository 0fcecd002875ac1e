package journal

import (
	"math"
	"testing"
	"time"
)

func TestComputeEMA(t *testing.T) {
	prices := []float64{10, 11, 12, 13, 14, 15}

	ema, err := ComputeEMA(prices, 3)
	if err != nil {
		t.Fatalf("ComputeEMA: %v", err)
	}
	if len(ema) != len(prices) {
		t.Fatalf("got %d values, want %d", len(ema), len(prices))
	}

	// SMA warmup: cumulative averages of the first period values.
	if ema[0] != 10 {
		t.Errorf("ema[0] = %v, want 10", ema[0])
	}
	if ema[1] != 10.5 {
		t.Errorf("ema[1] = %v, want 10.5", ema[1])
	}
	if ema[2] != 11 {
		t.Errorf("ema[2] = %v, want 11", ema[2])
	}

	// After warmup: (price - prev)*multiplier + prev with multiplier 0.5.
	if ema[3] != 12 {
		t.Errorf("ema[3] = %v, want 12", ema[3])
	}
}

func TestComputeEMAErrors(t *testing.T) {
	if _, err := ComputeEMA([]float64{1, 2}, 0); err == nil {
		t.Error("zero period should error")
	}
	if _, err := ComputeEMA([]float64{1, 2}, -1); err == nil {
		t.Error("negative period should error")
	}

	values, err := ComputeEMA(nil, 9)
	if err != nil || values != nil {
		t.Errorf("empty input should yield nil, nil; got %v, %v", values, err)
	}
}

func TestComputeEMAConstantSeries(t *testing.T) {
	prices := make([]float64, 50)
	for i := range prices {
		prices[i] = 42
	}

	ema, err := ComputeEMA(prices, 9)
	if err != nil {
		t.Fatalf("ComputeEMA: %v", err)
	}
	for i, v := range ema {
		if math.Abs(v-42) > 1e-9 {
			t.Fatalf("ema[%d] = %v, want 42", i, v)
		}
	}
}

func TestComputeVWAP(t *testing.T) {
	candles := []Candle{
		{High: 12, Low: 10, Close: 11, Volume: 100},
		{High: 14, Low: 12, Close: 13, Volume: 300},
	}

	// Typical prices 11 and 13, volume-weighted: (11*100+13*300)/400.
	want := 12.5
	if got := ComputeVWAP(candles); math.Abs(got-want) > 1e-9 {
		t.Errorf("vwap = %v, want %v", got, want)
	}
}

func TestComputeVWAPZeroVolume(t *testing.T) {
	if got := ComputeVWAP([]Candle{{High: 12, Low: 10, Close: 11}}); got != 0 {
		t.Errorf("vwap = %v, want 0 when no volume traded", got)
	}
}

func TestMockIndicatorSourceDeterministic(t *testing.T) {
	src := MockIndicatorSource{}
	entry := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

	a, err := src.IndicatorsAtEntry("AAPL", entry, 230)
	if err != nil {
		t.Fatalf("IndicatorsAtEntry: %v", err)
	}
	b, err := src.IndicatorsAtEntry("AAPL", entry, 230)
	if err != nil {
		t.Fatalf("IndicatorsAtEntry: %v", err)
	}
	if a != b {
		t.Errorf("same trade produced different indicators: %+v vs %+v", a, b)
	}

	c, _ := src.IndicatorsAtEntry("TSLA", entry, 230)
	if a == c {
		t.Error("different symbols should not collide on indicator values")
	}
}

func TestMockIndicatorSourceNearPrice(t *testing.T) {
	src := MockIndicatorSource{}
	entry := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

	symbols := []string{"AAPL", "TSLA", "NVDA", "MSFT", "SPY"}
	for _, symbol := range symbols {
		ind, err := src.IndicatorsAtEntry(symbol, entry, 200)
		if err != nil {
			t.Fatalf("IndicatorsAtEntry(%s): %v", symbol, err)
		}
		// Short EMAs and VWAP hug the entry price; EMA200 drifts wider.
		if math.Abs(ind.EMA9-200) > 200*0.006 {
			t.Errorf("%s EMA9 = %v, too far from entry", symbol, ind.EMA9)
		}
		if math.Abs(ind.EMA20-200) > 200*0.016 {
			t.Errorf("%s EMA20 = %v, too far from entry", symbol, ind.EMA20)
		}
		if math.Abs(ind.EMA200-200) > 200*0.07 {
			t.Errorf("%s EMA200 = %v, too far from entry", symbol, ind.EMA200)
		}
		if math.Abs(ind.VWAP-200) > 200*0.009 {
			t.Errorf("%s VWAP = %v, too far from entry", symbol, ind.VWAP)
		}
	}
}
