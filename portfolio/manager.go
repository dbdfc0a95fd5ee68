// Package portfolio owns cash and open lots for one backtest run. A Manager
// admits proposals, hands them to the simulator, and applies the resulting
// fills atomically: a fault during realization unwinds every mutation back to
// the pre-call state.
//
// A Manager is single-threaded by design. Parallel runs each get their own
// Manager, candle data, and (for the random crossing policy) random source.
package portfolio

import (
	"fmt"
	"time"

	"github.com/haekwon/reversal/internal/id"
	"github.com/haekwon/reversal/market"
	"github.com/haekwon/reversal/sim"
)

// Lot is one discrete open position unit. Lots are owned exclusively by the
// Manager and mutated only by close (which removes them).
type Lot struct {
	ID         string
	Symbol     string
	EntryPrice float64
	Size       float64
	Direction  market.Direction
	EntryTime  time.Time
}

// TradeLogEntry is the immutable record appended when a lot closes.
type TradeLogEntry struct {
	ID         string
	Symbol     string
	Direction  market.Direction
	Size       float64
	EntryTime  time.Time
	EntryPrice float64
	ExitTime   time.Time
	ExitPrice  float64
	ExitType   sim.ExitType
	Result     sim.Result
	ReturnPct  float64
	PnL        float64
}

// EquityPoint is one sample of the equity curve.
type EquityPoint struct {
	Time   time.Time
	Equity float64
}

// CloseCallback observes closed lots for analytics (journaling, reporting).
// It must not mutate the Manager.
type CloseCallback func(TradeLogEntry)

// Manager is the portfolio accountant for one run.
type Manager struct {
	cash         float64
	maxPositions int
	positions    map[string][]Lot
	tradeLog     []TradeLogEntry
	equityCurve  []EquityPoint

	realizer *sim.Realizer
	onClose  CloseCallback
}

// NewManager builds a Manager with its starting cash and capacity bound.
func NewManager(initialCash float64, maxPositions int, realizer *sim.Realizer) (*Manager, error) {
	if initialCash <= 0 {
		return nil, fmt.Errorf("portfolio: initial cash must be positive, got %v", initialCash)
	}
	if maxPositions <= 0 {
		return nil, fmt.Errorf("portfolio: max positions must be positive, got %d", maxPositions)
	}
	if realizer == nil {
		return nil, fmt.Errorf("portfolio: realizer is required")
	}
	return &Manager{
		cash:         initialCash,
		maxPositions: maxPositions,
		positions:    make(map[string][]Lot),
		realizer:     realizer,
	}, nil
}

// SetCloseCallback installs an optional observer for closed lots.
func (m *Manager) SetCloseCallback(cb CloseCallback) { m.onClose = cb }

// Cash returns the current cash balance.
func (m *Manager) Cash() float64 { return m.cash }

// OpenLotCount returns the number of open lots across all symbols.
func (m *Manager) OpenLotCount() int {
	n := 0
	for _, lots := range m.positions {
		n += len(lots)
	}
	return n
}

// Positions returns a copy of the open lots for a symbol, in entry order.
func (m *Manager) Positions(symbol string) []Lot {
	lots := m.positions[symbol]
	out := make([]Lot, len(lots))
	copy(out, lots)
	return out
}

// TradeLog returns a copy of the append-only trade log.
func (m *Manager) TradeLog() []TradeLogEntry {
	out := make([]TradeLogEntry, len(m.tradeLog))
	copy(out, m.tradeLog)
	return out
}

// EquityCurve returns a copy of the append-only equity samples.
func (m *Manager) EquityCurve() []EquityPoint {
	out := make([]EquityPoint, len(m.equityCurve))
	copy(out, m.equityCurve)
	return out
}

// CanOpen reports whether a new trade of the given cost is admissible: the
// lot capacity has room and cash covers the planned entry. Pure query, no
// side effects.
func (m *Manager) CanOpen(symbol string, entryPrice, size float64) bool {
	_ = symbol
	if m.OpenLotCount() >= m.maxPositions {
		return false
	}
	return m.cash >= entryPrice*size
}

// TryExecute admits and realizes a proposal.
//
// A false, nil return is a plain rejection (capacity or cash): nothing
// changed, the caller moves on to the next signal. On admission the planned
// entry cost is reserved and a lot registered before realization runs; the
// reservation is then reconciled against the actual fills. Any realization
// fault, or fills that would drive cash negative, unwinds the Manager to its
// exact pre-call state and surfaces the error.
func (m *Manager) TryExecute(p *sim.TradeProposal, hook sim.Hook) (bool, error) {
	meta := p.Meta
	if !m.CanOpen(meta.Symbol, meta.EntryPrice, meta.Size) {
		return false, nil
	}

	snap := m.snapshot()

	// Tentative reservation at the planned entry.
	m.cash -= meta.EntryPrice * meta.Size
	m.positions[meta.Symbol] = append(m.positions[meta.Symbol], Lot{
		ID:         id.New(),
		Symbol:     meta.Symbol,
		EntryPrice: meta.EntryPrice,
		Size:       meta.Size,
		Direction:  meta.Direction,
		EntryTime:  meta.EntryTime,
	})

	res, err := m.realizer.Realize(p, hook)
	if err != nil {
		m.restore(snap)
		return false, fmt.Errorf("portfolio: execute %s: %w", meta.Symbol, err)
	}

	// Replace the reservation with the actual fills, applied in order.
	m.restore(snap)

	var open []Lot
	var closed []TradeLogEntry
	sign := meta.Direction.Sign()

	for _, f := range res.Fills {
		switch f.Kind {
		case sim.FillEntry, sim.FillAdd:
			m.cash -= sign * f.Price * f.Size
			open = append(open, Lot{
				ID:         id.New(),
				Symbol:     meta.Symbol,
				EntryPrice: f.Price,
				Size:       f.Size,
				Direction:  meta.Direction,
				EntryTime:  f.Time,
			})
		case sim.FillExit:
			if len(open) == 0 {
				m.restore(snap)
				return false, fmt.Errorf("portfolio: execute %s: %w", meta.Symbol,
					&sim.FaultError{Bar: -1, Reason: "exit fill without open lot"})
			}
			lot := open[0]
			open = open[1:]

			m.cash += sign * f.Price * f.Size
			closed = append(closed, m.tradeLogEntry(lot, f.Price, f.Time, f.ExitType, f.Result, f.ReturnPct))
		}
		if m.cash < 0 {
			m.restore(snap)
			return false, fmt.Errorf("portfolio: execute %s: %w", meta.Symbol,
				&sim.FaultError{Bar: -1, Reason: fmt.Sprintf("fills overdraw cash (%.2f)", m.cash)})
		}
	}

	if len(open) > 0 {
		m.positions[meta.Symbol] = append(m.positions[meta.Symbol], open...)
	}

	// Closes become observable only once the whole fill sequence committed.
	for _, e := range closed {
		m.tradeLog = append(m.tradeLog, e)
		if m.onClose != nil {
			m.onClose(e)
		}
	}

	if res.Exited {
		m.MarkToMarket(map[string]float64{meta.Symbol: res.ExitPrice}, res.ExitTime)
	}

	return true, nil
}

// ClosePosition closes one open lot at the given price, credits cash,
// appends the trade-log entry, and samples the equity curve.
func (m *Manager) ClosePosition(symbol, lotID string, exitPrice float64, exitTime time.Time, exitType sim.ExitType) error {
	lots := m.positions[symbol]
	idx := -1
	for i, l := range lots {
		if l.ID == lotID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("portfolio: close %s: lot %q not found", symbol, lotID)
	}

	lot := lots[idx]
	m.positions[symbol] = append(lots[:idx:idx], lots[idx+1:]...)
	if len(m.positions[symbol]) == 0 {
		delete(m.positions, symbol)
	}

	sign := lot.Direction.Sign()
	m.cash += sign * exitPrice * lot.Size

	ret := sign * (exitPrice - lot.EntryPrice) / lot.EntryPrice
	result := sim.Loss
	if ret > 0 {
		result = sim.Win
	}
	m.appendClose(lot, exitPrice, exitTime, exitType, result, ret)

	m.MarkToMarket(map[string]float64{symbol: exitPrice}, exitTime)
	return nil
}

// CloseAll closes every open lot at the supplied per-symbol prices (falling
// back to the lot's entry price when a symbol has no quote). Used at the end
// of a run to flatten the book.
func (m *Manager) CloseAll(prices map[string]float64, t time.Time) {
	for symbol, lots := range m.positions {
		px, ok := prices[symbol]
		for _, lot := range lots {
			if !ok {
				px = lot.EntryPrice
			}
			sign := lot.Direction.Sign()
			m.cash += sign * px * lot.Size

			ret := sign * (px - lot.EntryPrice) / lot.EntryPrice
			result := sim.Loss
			if ret > 0 {
				result = sim.Win
			}
			m.appendClose(lot, px, t, sim.ExitClose, result, ret)
		}
		delete(m.positions, symbol)
	}
	m.MarkToMarket(prices, t)
}

// MarkToMarket values the book at the given prices, appends an equity sample,
// and returns the equity. Open lots without a quote are valued at their entry
// price.
func (m *Manager) MarkToMarket(prices map[string]float64, t time.Time) float64 {
	equity := m.cash
	for symbol, lots := range m.positions {
		for _, lot := range lots {
			px, ok := prices[symbol]
			if !ok {
				px = lot.EntryPrice
			}
			equity += lot.Direction.Sign() * lot.Size * px
		}
	}
	m.equityCurve = append(m.equityCurve, EquityPoint{Time: t, Equity: equity})
	return equity
}

func (m *Manager) appendClose(lot Lot, exitPrice float64, exitTime time.Time, exitType sim.ExitType, result sim.Result, ret float64) {
	entry := m.tradeLogEntry(lot, exitPrice, exitTime, exitType, result, ret)
	m.tradeLog = append(m.tradeLog, entry)
	if m.onClose != nil {
		m.onClose(entry)
	}
}

func (m *Manager) tradeLogEntry(lot Lot, exitPrice float64, exitTime time.Time, exitType sim.ExitType, result sim.Result, ret float64) TradeLogEntry {
	return TradeLogEntry{
		ID:         id.New(),
		Symbol:     lot.Symbol,
		Direction:  lot.Direction,
		Size:       lot.Size,
		EntryTime:  lot.EntryTime,
		EntryPrice: lot.EntryPrice,
		ExitTime:   exitTime,
		ExitPrice:  exitPrice,
		ExitType:   exitType,
		Result:     result,
		ReturnPct:  ret,
		PnL:        lot.Direction.Sign() * (exitPrice - lot.EntryPrice) * lot.Size,
	}
}

// snapshot / restore implement the commit-or-nothing contract of TryExecute.

type snapshotState struct {
	cash      float64
	positions map[string][]Lot
	logLen    int
	curveLen  int
}

func (m *Manager) snapshot() snapshotState {
	pos := make(map[string][]Lot, len(m.positions))
	for sym, lots := range m.positions {
		cp := make([]Lot, len(lots))
		copy(cp, lots)
		pos[sym] = cp
	}
	return snapshotState{
		cash:      m.cash,
		positions: pos,
		logLen:    len(m.tradeLog),
		curveLen:  len(m.equityCurve),
	}
}

func (m *Manager) restore(s snapshotState) {
	m.cash = s.cash
	m.positions = make(map[string][]Lot, len(s.positions))
	for sym, lots := range s.positions {
		cp := make([]Lot, len(lots))
		copy(cp, lots)
		m.positions[sym] = cp
	}
	m.tradeLog = m.tradeLog[:s.logLen]
	m.equityCurve = m.equityCurve[:s.curveLen]
}
