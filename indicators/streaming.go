package indicators

import (
	"fmt"

	"github.com/haekwon/reversal/market"
)

// Indicator computes a single streaming value from closed candles. Feed one
// candle at a time with Update; Value is meaningful once Ready reports true.
type Indicator interface {
	// Name returns a stable identifier like "EMA(15)".
	Name() string

	// Warmup returns how many updates are needed before Ready can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next closed candle.
	Update(c market.Candle)

	// Ready reports whether Value is meaningful.
	Ready() bool

	// Value returns the current indicator value, 0 before Ready.
	Value() float64
}

// StreamingEMA is the incremental form of EMASeries: it seeds with the simple
// average of the first period closes, then applies the standard recurrence.
// Fed the same closes, its Value matches the last element of EMASeries.
type StreamingEMA struct {
	period    int
	alpha     float64
	ema       float64
	count     int
	warmupSum float64
}

// NewStreamingEMA panics on a non-positive period, same as EMASeries.
func NewStreamingEMA(period int) *StreamingEMA {
	if period <= 0 {
		panic("indicators: EMA period must be > 0")
	}
	return &StreamingEMA{
		period: period,
		alpha:  2.0 / float64(period+1),
	}
}

func (e *StreamingEMA) Name() string {
	return fmt.Sprintf("EMA(%d)", e.period)
}

func (e *StreamingEMA) Warmup() int {
	return e.period
}

func (e *StreamingEMA) Reset() {
	e.ema = 0
	e.count = 0
	e.warmupSum = 0
}

func (e *StreamingEMA) Update(c market.Candle) {
	if e.count < e.period {
		e.warmupSum += c.Close
		e.count++
		if e.count == e.period {
			e.ema = e.warmupSum / float64(e.period)
		}
		return
	}
	e.ema = c.Close*e.alpha + e.ema*(1-e.alpha)
}

func (e *StreamingEMA) Ready() bool {
	return e.count >= e.period
}

func (e *StreamingEMA) Value() float64 {
	if !e.Ready() {
		return 0
	}
	return e.ema
}
