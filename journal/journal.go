// Package journal persists what a backtest produced: closed trades, equity
// samples, and per-run summaries. Two backends ship, CSV for quick inspection
// and SQLite for querying across runs.
package journal

import "time"

// TradeRecord is one closed lot.
type TradeRecord struct {
	TradeID    string
	RunID      string
	Symbol     string
	Direction  string
	Size       float64
	EntryPrice float64
	ExitPrice  float64
	EntryTime  time.Time
	ExitTime   time.Time
	ExitType   string
	Result     string
	ReturnPct  float64
	PnL        float64
}

// EquitySnapshot is one mark-to-market sample.
type EquitySnapshot struct {
	RunID  string
	Time   time.Time
	Cash   float64
	Equity float64
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Multi fans records out to several journals, stopping at the first error.
type Multi []Journal

func (m Multi) RecordTrade(t TradeRecord) error {
	for _, j := range m {
		if err := j.RecordTrade(t); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) RecordEquity(e EquitySnapshot) error {
	for _, j := range m {
		if err := j.RecordEquity(e); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) Close() error {
	var first error
	for _, j := range m {
		if err := j.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
