package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haekwon/reversal/market"
	"github.com/haekwon/reversal/sim"
)

var testBase = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func bar(day int, o, h, l, c float64) market.Candle {
	return market.Candle{
		Time:   testBase.AddDate(0, 0, day),
		Open:   o,
		High:   h,
		Low:    l,
		Close:  c,
		Volume: 1000,
	}
}

func mustRealizer(t *testing.T, cfg sim.RealizerConfig) *sim.Realizer {
	t.Helper()
	r, err := sim.NewRealizer(cfg, nil)
	require.NoError(t, err)
	return r
}

func mustManager(t *testing.T, cash float64, maxPositions int, cfg sim.RealizerConfig) *Manager {
	t.Helper()
	m, err := NewManager(cash, maxPositions, mustRealizer(t, cfg))
	require.NoError(t, err)
	return m
}

func meta(symbol string, size float64) sim.TradeMeta {
	return sim.TradeMeta{
		Symbol:     symbol,
		EntryTime:  testBase,
		EntryPrice: 100,
		TPPrice:    110,
		SLPrice:    95,
		Size:       size,
		Direction:  market.Long,
	}
}

// winForward fills the entry at 100 on the first bar and hits take-profit on
// the second without touching the stop.
func winForward() market.Series {
	return market.Series{
		bar(1, 100, 101, 99, 100),
		bar(2, 108, 112, 104, 110),
	}
}

// openForward fills the entry and then drifts between the bracket levels, so
// the realization never exits.
func openForward() market.Series {
	return market.Series{
		bar(1, 100, 105, 96, 102),
		bar(2, 102, 106, 97, 104),
	}
}

func TestNewManagerValidation(t *testing.T) {
	r := mustRealizer(t, sim.RealizerConfig{})

	_, err := NewManager(0, 3, r)
	assert.ErrorContains(t, err, "initial cash")

	_, err = NewManager(10_000, 0, r)
	assert.ErrorContains(t, err, "max positions")

	_, err = NewManager(10_000, 3, nil)
	assert.ErrorContains(t, err, "realizer")
}

func TestTryExecuteWin(t *testing.T) {
	m := mustManager(t, 10_000, 3, sim.RealizerConfig{})

	ok, err := m.TryExecute(sim.NewProposal(meta("AAPL", 10), winForward()), nil)
	require.NoError(t, err)
	require.True(t, ok)

	// Bought 10 at 100, sold 10 at 110.
	assert.InDelta(t, 10_100, m.Cash(), 1e-9)
	assert.Equal(t, 0, m.OpenLotCount())

	log := m.TradeLog()
	require.Len(t, log, 1)
	assert.Equal(t, "AAPL", log[0].Symbol)
	assert.Equal(t, sim.Win, log[0].Result)
	assert.Equal(t, sim.ExitTP, log[0].ExitType)
	assert.InDelta(t, 0.10, log[0].ReturnPct, 1e-9)
	assert.InDelta(t, 100, log[0].PnL, 1e-9)
	assert.NotEmpty(t, log[0].ID)

	curve := m.EquityCurve()
	require.NotEmpty(t, curve)
	assert.InDelta(t, 10_100, curve[len(curve)-1].Equity, 1e-9)
}

func TestTryExecuteLeavesLotOpen(t *testing.T) {
	m := mustManager(t, 10_000, 3, sim.RealizerConfig{})

	ok, err := m.TryExecute(sim.NewProposal(meta("MSFT", 10), openForward()), nil)
	require.NoError(t, err)
	require.True(t, ok)

	assert.InDelta(t, 9_000, m.Cash(), 1e-9)
	assert.Equal(t, 1, m.OpenLotCount())
	assert.Empty(t, m.TradeLog())

	lots := m.Positions("MSFT")
	require.Len(t, lots, 1)
	assert.InDelta(t, 100, lots[0].EntryPrice, 1e-9)
	assert.InDelta(t, 10, lots[0].Size, 1e-9)
}

func TestTryExecuteRejectsAtCapacity(t *testing.T) {
	m := mustManager(t, 10_000, 1, sim.RealizerConfig{})

	ok, err := m.TryExecute(sim.NewProposal(meta("MSFT", 10), openForward()), nil)
	require.NoError(t, err)
	require.True(t, ok)

	cash := m.Cash()
	logLen := len(m.TradeLog())
	curveLen := len(m.EquityCurve())

	ok, err = m.TryExecute(sim.NewProposal(meta("AAPL", 10), winForward()), nil)
	require.NoError(t, err)
	assert.False(t, ok)

	// Rejection is a no-op.
	assert.Equal(t, cash, m.Cash())
	assert.Equal(t, 1, m.OpenLotCount())
	assert.Len(t, m.TradeLog(), logLen)
	assert.Len(t, m.EquityCurve(), curveLen)
}

func TestTryExecuteRejectsOnInsufficientCash(t *testing.T) {
	m := mustManager(t, 10_000, 3, sim.RealizerConfig{})

	// 200 * 100 = 20000 > 10000.
	ok, err := m.TryExecute(sim.NewProposal(meta("AAPL", 200), winForward()), nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.InDelta(t, 10_000, m.Cash(), 1e-9)
	assert.Equal(t, 0, m.OpenLotCount())
}

func TestTryExecuteRollsBackOnFault(t *testing.T) {
	m := mustManager(t, 10_000, 3, sim.RealizerConfig{})

	broken := market.Series{
		bar(1, 100, 101, 99, 100),
		{Time: testBase.AddDate(0, 0, 2), Open: 100, High: 90, Low: 99, Close: 100, Volume: 1}, // high < low
	}
	ok, err := m.TryExecute(sim.NewProposal(meta("AAPL", 10), broken), nil)
	require.Error(t, err)
	assert.True(t, sim.IsFault(err))
	assert.False(t, ok)

	// Everything back to the pre-call state.
	assert.InDelta(t, 10_000, m.Cash(), 1e-9)
	assert.Equal(t, 0, m.OpenLotCount())
	assert.Empty(t, m.TradeLog())
	assert.Empty(t, m.EquityCurve())
}

func TestTryExecuteRollsBackOnOverdraw(t *testing.T) {
	// Entry costs 900 of 1000. The averaging-down fill (18 @ 95 = 1710)
	// cannot be funded, so the whole trade must unwind.
	m := mustManager(t, 1_000, 3, sim.RealizerConfig{AddBuyPct: 2})

	md := meta("AAPL", 9)
	md.SLPrice = 90
	forward := market.Series{bar(1, 100, 101, 94, 96)}

	ok, err := m.TryExecute(sim.NewProposal(md, forward), nil)
	require.Error(t, err)
	assert.True(t, sim.IsFault(err))
	assert.False(t, ok)
	assert.InDelta(t, 1_000, m.Cash(), 1e-9)
	assert.Equal(t, 0, m.OpenLotCount())
}

func TestTryExecuteAveragingDownOpensSecondLot(t *testing.T) {
	m := mustManager(t, 10_000, 3, sim.RealizerConfig{AddBuyPct: 0.5})

	md := meta("AAPL", 10)
	md.SLPrice = 90
	forward := market.Series{bar(1, 100, 101, 94, 98)}

	ok, err := m.TryExecute(sim.NewProposal(md, forward), nil)
	require.NoError(t, err)
	require.True(t, ok)

	// 10 @ 100 plus the 5 @ 95 add.
	assert.InDelta(t, 10_000-1_000-475, m.Cash(), 1e-9)
	lots := m.Positions("AAPL")
	require.Len(t, lots, 2)
	assert.InDelta(t, 10, lots[0].Size, 1e-9)
	assert.InDelta(t, 95, lots[1].EntryPrice, 1e-9)
	assert.InDelta(t, 5, lots[1].Size, 1e-9)
}

func TestCanOpenIsPure(t *testing.T) {
	m := mustManager(t, 10_000, 3, sim.RealizerConfig{})

	first := m.CanOpen("AAPL", 100, 10)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.CanOpen("AAPL", 100, 10))
	}
	assert.True(t, first)
	assert.InDelta(t, 10_000, m.Cash(), 1e-9)
	assert.Equal(t, 0, m.OpenLotCount())
	assert.Empty(t, m.EquityCurve())
}

func TestCloseCallbackFiresOncePerClose(t *testing.T) {
	m := mustManager(t, 10_000, 3, sim.RealizerConfig{})

	var seen []TradeLogEntry
	m.SetCloseCallback(func(e TradeLogEntry) { seen = append(seen, e) })

	ok, err := m.TryExecute(sim.NewProposal(meta("AAPL", 10), winForward()), nil)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, seen, 1)
	assert.Equal(t, "AAPL", seen[0].Symbol)

	// A rejected trade must not notify.
	_, err = m.TryExecute(sim.NewProposal(meta("AAPL", 500), winForward()), nil)
	require.NoError(t, err)
	assert.Len(t, seen, 1)
}

func TestClosePosition(t *testing.T) {
	m := mustManager(t, 10_000, 3, sim.RealizerConfig{})

	ok, err := m.TryExecute(sim.NewProposal(meta("MSFT", 10), openForward()), nil)
	require.NoError(t, err)
	require.True(t, ok)

	lot := m.Positions("MSFT")[0]
	exitTime := testBase.AddDate(0, 0, 3)
	require.NoError(t, m.ClosePosition("MSFT", lot.ID, 104, exitTime, sim.ExitClose))

	assert.InDelta(t, 9_000+1_040, m.Cash(), 1e-9)
	assert.Equal(t, 0, m.OpenLotCount())

	log := m.TradeLog()
	require.Len(t, log, 1)
	assert.Equal(t, sim.Win, log[0].Result)
	assert.InDelta(t, 0.04, log[0].ReturnPct, 1e-9)
	assert.Equal(t, exitTime, log[0].ExitTime)
}

func TestClosePositionZeroReturnIsLoss(t *testing.T) {
	m := mustManager(t, 10_000, 3, sim.RealizerConfig{})

	_, err := m.TryExecute(sim.NewProposal(meta("MSFT", 10), openForward()), nil)
	require.NoError(t, err)

	lot := m.Positions("MSFT")[0]
	require.NoError(t, m.ClosePosition("MSFT", lot.ID, 100, testBase.AddDate(0, 0, 3), sim.ExitClose))

	log := m.TradeLog()
	require.Len(t, log, 1)
	assert.Equal(t, sim.Loss, log[0].Result)
	assert.InDelta(t, 0, log[0].ReturnPct, 1e-9)
}

func TestClosePositionUnknownLot(t *testing.T) {
	m := mustManager(t, 10_000, 3, sim.RealizerConfig{})
	err := m.ClosePosition("MSFT", "nope", 100, testBase, sim.ExitClose)
	assert.ErrorContains(t, err, "not found")
}

func TestCloseAllUsesQuoteWithEntryFallback(t *testing.T) {
	m := mustManager(t, 100_000, 5, sim.RealizerConfig{})

	_, err := m.TryExecute(sim.NewProposal(meta("MSFT", 10), openForward()), nil)
	require.NoError(t, err)

	md := meta("AAPL", 10)
	_, err = m.TryExecute(sim.NewProposal(md, openForward()), nil)
	require.NoError(t, err)

	end := testBase.AddDate(0, 0, 10)
	m.CloseAll(map[string]float64{"MSFT": 108}, end)

	assert.Equal(t, 0, m.OpenLotCount())
	// MSFT closed at the 108 quote, AAPL fell back to its 100 entry.
	assert.InDelta(t, 100_000+80, m.Cash(), 1e-9)

	log := m.TradeLog()
	require.Len(t, log, 2)
	for _, e := range log {
		assert.Equal(t, sim.ExitClose, e.ExitType)
		if e.Symbol == "AAPL" {
			assert.Equal(t, sim.Loss, e.Result)
		}
	}
}

func TestMarkToMarket(t *testing.T) {
	m := mustManager(t, 10_000, 3, sim.RealizerConfig{})

	_, err := m.TryExecute(sim.NewProposal(meta("MSFT", 10), openForward()), nil)
	require.NoError(t, err)

	eq := m.MarkToMarket(map[string]float64{"MSFT": 104}, testBase.AddDate(0, 0, 3))
	assert.InDelta(t, 9_000+1_040, eq, 1e-9)

	// No quote values the lot at its entry price.
	eq = m.MarkToMarket(nil, testBase.AddDate(0, 0, 4))
	assert.InDelta(t, 10_000, eq, 1e-9)

	curve := m.EquityCurve()
	require.GreaterOrEqual(t, len(curve), 2)
	assert.InDelta(t, 10_000, curve[len(curve)-1].Equity, 1e-9)
}

func TestShortSignedCashFlows(t *testing.T) {
	m := mustManager(t, 10_000, 3, sim.RealizerConfig{})

	md := meta("EURUSD", 10)
	md.Direction = market.Short
	md.TPPrice = 90
	md.SLPrice = 105
	forward := market.Series{
		bar(1, 100, 101, 99, 100),
		bar(2, 98, 99, 88, 90),
	}

	ok, err := m.TryExecute(sim.NewProposal(md, forward), nil)
	require.NoError(t, err)
	require.True(t, ok)

	// Sold 10 at 100, covered 10 at 90.
	assert.InDelta(t, 10_000+1_000-900, m.Cash(), 1e-9)
	assert.Equal(t, 0, m.OpenLotCount())

	log := m.TradeLog()
	require.Len(t, log, 1)
	assert.Equal(t, sim.Win, log[0].Result)
	assert.InDelta(t, 0.10, log[0].ReturnPct, 1e-9)
	assert.InDelta(t, 100, log[0].PnL, 1e-9)
}

func TestCashConservation(t *testing.T) {
	m := mustManager(t, 10_000, 3, sim.RealizerConfig{})

	_, err := m.TryExecute(sim.NewProposal(meta("AAPL", 10), winForward()), nil)
	require.NoError(t, err)
	_, err = m.TryExecute(sim.NewProposal(meta("MSFT", 10), openForward()), nil)
	require.NoError(t, err)

	m.CloseAll(map[string]float64{"MSFT": 104}, testBase.AddDate(0, 0, 10))

	var pnl float64
	for _, e := range m.TradeLog() {
		pnl += e.PnL
	}
	assert.InDelta(t, 10_000+pnl, m.Cash(), 1e-9)
}
