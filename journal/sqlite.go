package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite persists trades, equity samples, and run summaries in one database
// file. Safe for single-writer use, which is all a backtest needs.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, run_id, symbol, direction, size, entry_price, exit_price, entry_time, exit_time, exit_type, result, return_pct, pnl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.RunID, t.Symbol, t.Direction, t.Size, t.EntryPrice,
		t.ExitPrice, t.EntryTime, t.ExitTime, t.ExitType, t.Result, t.ReturnPct, t.PnL,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity (run_id, time, cash, equity)
		VALUES (?, ?, ?, ?)`,
		e.RunID, e.Time, e.Cash, e.Equity,
	)
	return err
}

func (j *SQLite) RecordRun(r RunSummary) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, created, timeframe, dataset, strategy, config, start_time, end_time, start_cash, end_equity, trades, wins, losses, net_pl, return_pct, win_rate, profit_factor, max_dd_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Timeframe, r.Dataset, r.Strategy, r.Config,
		r.Start, r.End, r.StartCash, r.EndEquity,
		r.Trades, r.Wins, r.Losses,
		r.NetPL, r.ReturnPct, r.WinRate, r.ProfitFactor, r.MaxDDPct,
	)
	return err
}

func (j *SQLite) GetRun(runID string) (RunSummary, error) {
	var r RunSummary
	row := j.db.QueryRow(`
		SELECT run_id, created, timeframe, dataset, strategy, config, start_time, end_time, start_cash, end_equity, trades, wins, losses, net_pl, return_pct, win_rate, profit_factor, max_dd_pct
		FROM runs WHERE run_id = ?`, runID)
	err := row.Scan(
		&r.RunID, &r.Created, &r.Timeframe, &r.Dataset, &r.Strategy, &r.Config,
		&r.Start, &r.End, &r.StartCash, &r.EndEquity,
		&r.Trades, &r.Wins, &r.Losses,
		&r.NetPL, &r.ReturnPct, &r.WinRate, &r.ProfitFactor, &r.MaxDDPct,
	)
	if err == sql.ErrNoRows {
		return RunSummary{}, fmt.Errorf("run %q not found", runID)
	}
	return r, err
}

// GetTrade returns a single trade record by ID.
func (j *SQLite) GetTrade(tradeID string) (TradeRecord, error) {
	var rec TradeRecord
	row := j.db.QueryRow(`
		SELECT trade_id, run_id, symbol, direction, size, entry_price, exit_price, entry_time, exit_time, exit_type, result, return_pct, pnl
		FROM trades
		WHERE trade_id = ?`, tradeID)
	err := row.Scan(
		&rec.TradeID, &rec.RunID, &rec.Symbol, &rec.Direction, &rec.Size,
		&rec.EntryPrice, &rec.ExitPrice, &rec.EntryTime, &rec.ExitTime,
		&rec.ExitType, &rec.Result, &rec.ReturnPct, &rec.PnL,
	)
	if err == sql.ErrNoRows {
		return TradeRecord{}, fmt.Errorf("trade %q not found", tradeID)
	}
	return rec, err
}

// ListTradesByRun returns a run's trades in exit order.
func (j *SQLite) ListTradesByRun(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, run_id, symbol, direction, size, entry_price, exit_price, entry_time, exit_time, exit_type, result, return_pct, pnl
		FROM trades
		WHERE run_id = ?
		ORDER BY exit_time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(
			&rec.TradeID, &rec.RunID, &rec.Symbol, &rec.Direction, &rec.Size,
			&rec.EntryPrice, &rec.ExitPrice, &rec.EntryTime, &rec.ExitTime,
			&rec.ExitType, &rec.Result, &rec.ReturnPct, &rec.PnL,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListTradesClosedBetween returns trades whose exit_time is within [start, end).
func (j *SQLite) ListTradesClosedBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, run_id, symbol, direction, size, entry_price, exit_price, entry_time, exit_time, exit_type, result, return_pct, pnl
		FROM trades
		WHERE exit_time >= ? AND exit_time < ?
		ORDER BY exit_time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(
			&rec.TradeID, &rec.RunID, &rec.Symbol, &rec.Direction, &rec.Size,
			&rec.EntryPrice, &rec.ExitPrice, &rec.EntryTime, &rec.ExitTime,
			&rec.ExitType, &rec.Result, &rec.ReturnPct, &rec.PnL,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListEquityByRun returns a run's equity samples in time order.
func (j *SQLite) ListEquityByRun(runID string) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT run_id, time, cash, equity
		FROM equity
		WHERE run_id = ?
		ORDER BY time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.RunID, &e.Time, &e.Cash, &e.Equity); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
