package market

import "fmt"

// Timeframe identifies the candle interval the detector runs on. The peak
// windows and the pattern wick buffer depend on it.
type Timeframe string

const (
	Weekly Timeframe = "1w"
	Daily  Timeframe = "1d"
)

// PeakWindows returns the recent/total lookback windows used by the peak
// detector for this timeframe.
func (tf Timeframe) PeakWindows() (recent, total int) {
	switch tf {
	case Daily:
		return 7, 200
	default:
		return 5, 52
	}
}

// PatternBuffer returns the upper-wick buffer fraction used by the pattern
// classifier. Daily bars are noisier in absolute terms, weekly bars need the
// wider band.
func (tf Timeframe) PatternBuffer() float64 {
	switch tf {
	case Daily:
		return 0.1
	default:
		return 0.2
	}
}

// Valid reports whether tf is a supported timeframe.
func (tf Timeframe) Valid() bool {
	return tf == Weekly || tf == Daily
}

// ParseTimeframe converts a config/CLI string into a Timeframe.
func ParseTimeframe(s string) (Timeframe, error) {
	switch s {
	case "1w", "w", "weekly":
		return Weekly, nil
	case "1d", "d", "daily":
		return Daily, nil
	}
	return "", fmt.Errorf("unknown timeframe %q (supported: 1w, 1d)", s)
}
