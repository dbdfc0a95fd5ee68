// Package indicators provides the technical analysis primitives used by the
// signal engine. All functions are pure and deterministic.
package indicators

import "math"

// EMASeries computes an exponential moving average aligned to prices.
//
// Values at indices < period-1 are NaN (undefined). Index period-1 is seeded
// with the simple average of the first period prices; each later value is
// price*alpha + prev*(1-alpha) with alpha = 2/(period+1). If fewer than
// period prices are available the whole result is NaN.
func EMASeries(prices []float64, period int) []float64 {
	if period <= 0 {
		panic("indicators: EMA period must be > 0")
	}

	out := make([]float64, len(prices))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(prices) < period {
		return out
	}

	alpha := 2.0 / float64(period+1)

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	out[period-1] = sum / float64(period)

	for i := period; i < len(prices); i++ {
		out[i] = prices[i]*alpha + out[i-1]*(1-alpha)
	}
	return out
}

// EMA returns the final value of EMASeries, with ok=false when the series is
// too short for the period.
func EMA(prices []float64, period int) (float64, bool) {
	s := EMASeries(prices, period)
	if len(s) == 0 {
		return 0, false
	}
	v := s[len(s)-1]
	return v, !math.IsNaN(v)
}
