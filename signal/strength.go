package signal

import (
	"math"

	"github.com/haekwon/reversal/indicators"
	"github.com/haekwon/reversal/market"
)

// Strength grades how much supporting evidence a signal has beyond the core
// peak/pattern rules.
type Strength string

const (
	StrengthStrong   Strength = "STRONG"
	StrengthModerate Strength = "MODERATE"
	StrengthWeak     Strength = "WEAK"
)

const volumeLookback = 20

// VolumeRatio compares the last bar's volume to the average of the last
// volumeLookback bars. A dead average yields 1 (neutral).
func VolumeRatio(candles market.Series) float64 {
	if len(candles) == 0 {
		return 1
	}
	window := candles.Tail(volumeLookback)

	sum := 0.0
	for _, c := range window {
		sum += c.Volume
	}
	avg := sum / float64(len(window))
	if avg <= 0 {
		return 1
	}
	return candles[len(candles)-1].Volume / avg
}

// ScoreStrength grades a signal from the pullback depth off the peak, the
// volume ratio, recent volatility, and RSI. Deeper pullbacks on elevated
// volume into an oversold, quiet tape score higher.
func ScoreStrength(candles market.Series, peakPrice, currentPrice, volumeRatio float64) Strength {
	score := 0

	if peakPrice > 0 {
		pullback := math.Abs((currentPrice - peakPrice) / peakPrice)
		switch {
		case pullback >= 0.15 && pullback <= 0.30:
			score += 2
		case pullback >= 0.10:
			score++
		}
	}

	switch {
	case volumeRatio > 1.5:
		score += 2
	case volumeRatio > 1.0:
		score++
	}

	recent := candles.Tail(volumeLookback)
	if indicators.Volatility(recent.Closes()) < 0.03 {
		score++
	}

	if rsi, ok := indicators.RSI(candles.Closes(), 14); ok {
		switch {
		case rsi < 40:
			score += 2
		case rsi < 50:
			score++
		}
	}

	switch {
	case score >= 5:
		return StrengthStrong
	case score >= 3:
		return StrengthModerate
	default:
		return StrengthWeak
	}
}
