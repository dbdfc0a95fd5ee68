package signal

import (
	"fmt"
	"math"
	"time"

	"github.com/haekwon/reversal/indicators"
	"github.com/haekwon/reversal/market"
)

// Action is the outcome of one scan.
type Action int

const (
	NoSignal Action = iota
	Buy
)

func (a Action) String() string {
	if a == Buy {
		return "BUY"
	}
	return "NO"
}

// Decision is the per-scan record a strategy emits. For NoSignal only the
// Symbol/Time fields are meaningful.
type Decision struct {
	Action Action
	Symbol string
	Time   time.Time

	EntryPrice float64
	TPPrice    float64
	SLPrice    float64
	Direction  market.Direction

	// Diagnostics
	EMAPeriod   int
	Pattern     Pattern
	PeakPrice   float64
	Strength    Strength
	VolumeRatio float64
	RiskReward  float64
}

// Strategy is the capability a detection variant must provide. Decide is a
// pure function of the input window and the strategy's configuration; it
// keeps no state across invocations.
type Strategy interface {
	Decide(candles market.Series, symbol string) Decision
	RequiredLookback() int
	FilterSymbols(symbols []string) []string
}

// minLookback is the floor on history before scanning, independent of the
// configured EMA periods.
const minLookback = 35

// UpperSectionConfig parameterizes the reversal detector.
type UpperSectionConfig struct {
	Timeframe market.Timeframe `json:"timeframe" yaml:"timeframe"`
	TPRatio   float64          `json:"tp_ratio" yaml:"tp_ratio"`
	SLRatio   float64          `json:"sl_ratio" yaml:"sl_ratio"`
	FastEMA   int              `json:"fast_ema" yaml:"fast_ema"`
	SlowEMA   int              `json:"slow_ema" yaml:"slow_ema"`

	// Symbols optionally restricts which symbols the strategy scans.
	// Empty means all.
	Symbols []string `json:"symbols,omitempty" yaml:"symbols,omitempty"`
}

// UpperSectionDefaults returns the stock parameters: weekly candles, +10%
// take profit, -5% stop, 15/33 EMAs.
func UpperSectionDefaults() UpperSectionConfig {
	return UpperSectionConfig{
		Timeframe: market.Weekly,
		TPRatio:   0.10,
		SLRatio:   0.05,
		FastEMA:   15,
		SlowEMA:   33,
	}
}

// UpperSection detects a long-only reversal: a lone extended peak, a bearish
// drift off it, and price dipping under a pattern-selected EMA.
type UpperSection struct {
	cfg     UpperSectionConfig
	symbols map[string]struct{}
}

// NewUpperSection validates the configuration and builds the detector.
// Invalid ratios or periods fail here, before any scan runs.
func NewUpperSection(cfg UpperSectionConfig) (*UpperSection, error) {
	if !cfg.Timeframe.Valid() {
		return nil, fmt.Errorf("upper-section: invalid timeframe %q", cfg.Timeframe)
	}
	if cfg.TPRatio <= 0 || cfg.SLRatio <= 0 || cfg.SLRatio >= 1 {
		return nil, fmt.Errorf("upper-section: tp_ratio must be > 0 and 0 < sl_ratio < 1 (got tp=%v sl=%v)",
			cfg.TPRatio, cfg.SLRatio)
	}
	if cfg.FastEMA <= 0 || cfg.SlowEMA <= 0 {
		return nil, fmt.Errorf("upper-section: EMA periods must be positive (got %d/%d)",
			cfg.FastEMA, cfg.SlowEMA)
	}
	if cfg.FastEMA >= cfg.SlowEMA {
		return nil, fmt.Errorf("upper-section: fast EMA %d must be shorter than slow EMA %d",
			cfg.FastEMA, cfg.SlowEMA)
	}

	s := &UpperSection{cfg: cfg}
	if len(cfg.Symbols) > 0 {
		s.symbols = make(map[string]struct{}, len(cfg.Symbols))
		for _, sym := range cfg.Symbols {
			s.symbols[sym] = struct{}{}
		}
	}
	return s, nil
}

// RequiredLookback returns the minimum bars of history Decide needs before it
// scans at all.
func (s *UpperSection) RequiredLookback() int {
	n := minLookback
	if s.cfg.SlowEMA > n {
		n = s.cfg.SlowEMA
	}
	return n
}

// FilterSymbols restricts symbols to the configured allowlist, or passes them
// through unchanged when no allowlist is set.
func (s *UpperSection) FilterSymbols(symbols []string) []string {
	if s.symbols == nil {
		return symbols
	}
	out := symbols[:0:0]
	for _, sym := range symbols {
		if _, ok := s.symbols[sym]; ok {
			out = append(out, sym)
		}
	}
	return out
}

// Decide runs one scan over the candle window. Insufficient history, no
// qualifying peak, a broken pattern, or price holding above the EMA all give
// NoSignal; none of those are errors.
func (s *UpperSection) Decide(candles market.Series, symbol string) Decision {
	d := Decision{Action: NoSignal, Symbol: symbol}
	if len(candles) > 0 {
		d.Time = candles[len(candles)-1].Time
	}
	if len(candles) < s.RequiredLookback() {
		return d
	}

	recent, total := s.cfg.Timeframe.PeakWindows()
	highs := candles.Highs()
	closes := candles.Closes()

	peakIdx, ok := FindPeak(highs, closes, recent, total)
	if !ok {
		return d
	}
	d.PeakPrice = highs[peakIdx]

	d.Pattern = Classify(candles[peakIdx], candles[peakIdx+1:], s.cfg.Timeframe.PatternBuffer())
	switch d.Pattern {
	case PatternAll:
		d.EMAPeriod = s.cfg.FastEMA
	case PatternAllButOne:
		d.EMAPeriod = s.cfg.SlowEMA
	default:
		return d
	}

	ema := indicators.EMASeries(closes, d.EMAPeriod)
	level := ema[len(ema)-1]
	if math.IsNaN(level) {
		return d
	}

	last := candles[len(candles)-1]
	if last.Low >= level {
		return d
	}

	d.Action = Buy
	d.Direction = market.Long
	d.EntryPrice = level
	d.TPPrice = level * (1 + s.cfg.TPRatio)
	d.SLPrice = level * (1 - s.cfg.SLRatio)
	d.RiskReward = (d.TPPrice - d.EntryPrice) / (d.EntryPrice - d.SLPrice)

	d.VolumeRatio = VolumeRatio(candles)
	d.Strength = ScoreStrength(candles, d.PeakPrice, last.Close, d.VolumeRatio)

	return d
}
