package journal

import (
	"fmt"
	"math"
	"time"
)

// Indicators holds the technical indicators computed at trade entry.
type Indicators struct {
	EMA9   float64
	EMA20  float64
	EMA200 float64
	VWAP   float64
}

// Candle is the OHLCV input for indicator computation.
type Candle struct {
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// ComputeEMA computes the exponential moving average of a price
// series. The first `period` values warm up with a simple moving
// average. Returns a series the same length as the input.
func ComputeEMA(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("ema period must be positive, got %d", period)
	}
	if len(prices) == 0 {
		return nil, nil
	}

	multiplier := 2.0 / float64(period+1)
	ema := make([]float64, len(prices))

	sum := 0.0
	for i := 0; i < period && i < len(prices); i++ {
		sum += prices[i]
		ema[i] = sum / float64(i+1)
	}

	for i := period; i < len(prices); i++ {
		ema[i] = (prices[i]-ema[i-1])*multiplier + ema[i-1]
	}

	return ema, nil
}

// ComputeVWAP computes the volume-weighted average price over a set of
// candles using the typical price (high+low+close)/3.
func ComputeVWAP(candles []Candle) float64 {
	var cumulativeTPV, cumulativeVolume float64
	for _, c := range candles {
		typical := (c.High + c.Low + c.Close) / 3
		cumulativeTPV += typical * c.Volume
		cumulativeVolume += c.Volume
	}
	if cumulativeVolume == 0 {
		return 0
	}
	return cumulativeTPV / cumulativeVolume
}

// IndicatorSource computes indicators for a trade entry. Failures are
// best-effort for callers: a trade without indicators is an acceptable
// degraded state.
type IndicatorSource interface {
	IndicatorsAtEntry(symbol string, entryDate time.Time, entryPrice float64) (Indicators, error)
}

// MockIndicatorSource generates realistic indicator values derived
// from the entry price, seeded from symbol and entry date so the same
// trade always produces the same indicators.
type MockIndicatorSource struct{}

// IndicatorsAtEntry implements IndicatorSource.
//
// EMA9 tracks the price tightly, EMA20 slightly wider, EMA200 is
// notably offset with a mild upward bias, VWAP sits near the price.
func (MockIndicatorSource) IndicatorsAtEntry(symbol string, entryDate time.Time, entryPrice float64) (Indicators, error) {
	rng := newSeededRand(fmt.Sprintf("%s|%s", symbol, canonicalTime(entryDate)))

	return Indicators{
		EMA9:   roundToTwo(entryPrice * (1 + (rng.next()-0.5)*0.01)),
		EMA20:  roundToTwo(entryPrice * (1 + (rng.next()-0.5)*0.03)),
		EMA200: roundToTwo(entryPrice * (1 + (rng.next()-0.4)*0.1)),
		VWAP:   roundToTwo(entryPrice * (1 + (rng.next()-0.5)*0.016)),
	}, nil
}

// seededRand is a small linear congruential generator used where
// reproducibility matters more than randomness quality.
type seededRand struct {
	state uint32
}

func newSeededRand(key string) *seededRand {
	var seed uint32
	for i := 0; i < len(key); i++ {
		seed = seed*31 + uint32(key[i])
	}
	return &seededRand{state: seed}
}

// next returns a value in [0, 1).
func (r *seededRand) next() float64 {
	r.state = r.state*1664525 + 1013904223
	return float64(r.state) / float64(math.MaxUint32+1)
}
