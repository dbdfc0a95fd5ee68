// Package risk gates confirmed signals before they become trades. A Policy
// sets the floors, Evaluate grades one intent against them, and Size turns
// equity and stop distance into a position size.
package risk

import "github.com/haekwon/reversal/signal"

type Policy struct {
	// Trade constraints
	MinRR          float64         `json:"min_rr" yaml:"min_rr"`                     // e.g. 1.5
	MinStrength    signal.Strength `json:"min_strength" yaml:"min_strength"`         // WEAK admits everything
	MinVolumeRatio float64         `json:"min_volume_ratio" yaml:"min_volume_ratio"` // 0 disables

	// Per-trade risk limit as a fraction of equity
	MaxRiskPct float64 `json:"max_risk_pct" yaml:"max_risk_pct"` // e.g. 0.02

	// Exposure limit
	MaxOpenLots int `json:"max_open_lots" yaml:"max_open_lots"`
}

// DefaultPolicy admits any confirmed signal with a sane reward profile.
func DefaultPolicy() Policy {
	return Policy{
		MinRR:       1.0,
		MinStrength: signal.StrengthWeak,
		MaxRiskPct:  0.02,
		MaxOpenLots: 10,
	}
}

// Intent is the trade a strategy wants to place, plus the diagnostics the
// gate grades it on.
type Intent struct {
	Symbol     string
	Size       float64
	Entry      float64
	Stop       float64
	TakeProfit float64

	Strength    signal.Strength
	VolumeRatio float64
}

// AccountSnapshot is the portfolio state the gate sees.
type AccountSnapshot struct {
	Equity   float64
	OpenLots int
}
