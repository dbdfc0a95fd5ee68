package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCSVJournalHeaders(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(tradesPath, equityPath)
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	tradesData, err := os.ReadFile(tradesPath)
	assert.NoError(t, err)
	equityData, err := os.ReadFile(equityPath)
	assert.NoError(t, err)

	tradesHeader, err := csv.NewReader(strings.NewReader(string(tradesData))).Read()
	assert.NoError(t, err)
	equityHeader, err := csv.NewReader(strings.NewReader(string(equityData))).Read()
	assert.NoError(t, err)

	wantTrades := []string{"trade_id", "run_id", "symbol", "direction", "size", "entry_price", "exit_price", "entry_time", "exit_time", "exit_type", "result", "return_pct", "pnl"}
	assert.Equal(t, wantTrades, tradesHeader)

	wantEquity := []string{"run_id", "time", "cash", "equity"}
	assert.Equal(t, wantEquity, equityHeader)
}

func TestCSVJournalRecordTrade(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(tradesPath, equityPath)
	assert.NoError(t, err)

	entry := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	exit := time.Date(2024, 1, 9, 4, 5, 6, 0, time.UTC)

	err = j.RecordTrade(TradeRecord{
		TradeID:    "T1",
		RunID:      "R1",
		Symbol:     "AAPL",
		Direction:  "LONG",
		Size:       10,
		EntryPrice: 100.5,
		ExitPrice:  110.55,
		EntryTime:  entry,
		ExitTime:   exit,
		ExitType:   "TP",
		Result:     "WIN",
		ReturnPct:  0.1,
		PnL:        100.5,
	})
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	tradesData, err := os.ReadFile(tradesPath)
	assert.NoError(t, err)

	reader := csv.NewReader(strings.NewReader(string(tradesData)))
	_, err = reader.Read() // header
	assert.NoError(t, err)
	row, err := reader.Read()
	assert.NoError(t, err)

	want := []string{
		"T1",
		"R1",
		"AAPL",
		"LONG",
		"10.000000",
		"100.500000",
		"110.550000",
		entry.Format(time.RFC3339),
		exit.Format(time.RFC3339),
		"TP",
		"WIN",
		"0.100000",
		"100.500000",
	}
	assert.Equal(t, want, row)
}

func TestCSVJournalRecordEquity(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	j, err := NewCSV(filepath.Join(dir, "trades.csv"), filepath.Join(dir, "equity.csv"))
	assert.NoError(t, err)

	ts := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	err = j.RecordEquity(EquitySnapshot{RunID: "R1", Time: ts, Cash: 9000, Equity: 10040.5})
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	equityData, err := os.ReadFile(filepath.Join(dir, "equity.csv"))
	assert.NoError(t, err)

	reader := csv.NewReader(strings.NewReader(string(equityData)))
	_, err = reader.Read() // header
	assert.NoError(t, err)
	row, err := reader.Read()
	assert.NoError(t, err)

	want := []string{"R1", ts.Format(time.RFC3339), "9000.000000", "10040.500000"}
	assert.Equal(t, want, row)
}
