package sim

import (
	"time"

	"github.com/haekwon/reversal/market"
)

// TradeMeta is the immutable description of a confirmed signal. It is created
// once and never mutated; fills reference it but do not change it.
type TradeMeta struct {
	Symbol     string
	EntryTime  time.Time
	EntryPrice float64
	TPPrice    float64
	SLPrice    float64
	Size       float64
	Direction  market.Direction
}

// TradeProposal pairs a TradeMeta with the forward candles that follow the
// signal bar. Building a proposal has no side effects; nothing happens until
// a Realizer walks it, and each proposal may be realized at most once.
type TradeProposal struct {
	Meta    TradeMeta
	Forward market.Series

	realized bool
}

// NewProposal builds a proposal over the forward slice. The slice must start
// at the first bar after the signal bar.
func NewProposal(meta TradeMeta, forward market.Series) *TradeProposal {
	return &TradeProposal{Meta: meta, Forward: forward}
}

// Realized reports whether the proposal has already been consumed.
func (p *TradeProposal) Realized() bool { return p.realized }
