package signal

import (
	"math"

	"github.com/haekwon/reversal/indicators"
)

// peakEMAPeriod is the EMA the peak must clear by peakEMAMultiple to count as
// an extended high rather than ordinary drift.
const (
	peakEMAPeriod   = 15
	peakEMAMultiple = 1.2
)

// FindPeak locates a single qualifying local high inside the lookback
// windows. highs and closes must be aligned; the returned index points into
// those slices. ok is false when no bar qualifies.
//
// The rules, all evaluated inside the most recent total bars:
//  1. the window maximum must be attained by exactly one bar (ties are
//     treated as no peak),
//  2. that bar must sit inside the most recent recent bars,
//  3. the peak high must be at least peakEMAMultiple times the 15-period EMA
//     of closes at the peak bar,
//  4. some close inside the recent window must exceed the highest high from
//     before the recent window (a breakout happened at all), and
//  5. the peak bar's close, or the close immediately before it, must exceed
//     every high strictly before the peak (the peak itself broke out).
func FindPeak(highs, closes []float64, recent, total int) (int, bool) {
	n := len(highs)
	if n == 0 || len(closes) != n || recent <= 0 || total <= 0 {
		return 0, false
	}

	start := n - total
	if start < 0 {
		start = 0
	}

	// Unique window maximum.
	peakIdx := -1
	peakHigh := math.Inf(-1)
	tied := false
	for i := start; i < n; i++ {
		switch {
		case highs[i] > peakHigh:
			peakHigh = highs[i]
			peakIdx = i
			tied = false
		case highs[i] == peakHigh:
			tied = true
		}
	}
	if peakIdx < 0 || tied {
		return 0, false
	}

	recentStart := n - recent
	if recentStart < start {
		recentStart = start
	}
	if peakIdx < recentStart {
		return 0, false
	}

	// The peak must stand clear of the close EMA.
	ema := indicators.EMASeries(closes, peakEMAPeriod)
	if v := ema[peakIdx]; math.IsNaN(v) || peakHigh < peakEMAMultiple*v {
		return 0, false
	}

	// Breakout confirmation: a recent close above the pre-window high.
	if recentStart == start {
		// No history before the recent window, nothing to break out of.
		return 0, false
	}
	priorHigh := maxOf(highs[start:recentStart])
	broke := false
	for i := recentStart; i < n; i++ {
		if closes[i] > priorHigh {
			broke = true
			break
		}
	}
	if !broke {
		return 0, false
	}

	// The peak bar itself (or the bar before it) must close above every high
	// strictly before the peak, otherwise the spike is noise.
	if peakIdx == start {
		return 0, false
	}
	beforePeak := maxOf(highs[start:peakIdx])
	if closes[peakIdx] <= beforePeak && closes[peakIdx-1] <= beforePeak {
		return 0, false
	}

	return peakIdx, true
}

func maxOf(vals []float64) float64 {
	m := math.Inf(-1)
	for _, v := range vals {
		if v > m {
			m = v
		}
	}
	return m
}
