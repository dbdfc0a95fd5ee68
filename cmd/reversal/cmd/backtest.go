package cmd

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/haekwon/reversal/backtest"
	"github.com/haekwon/reversal/config"
	"github.com/haekwon/reversal/journal"
	"github.com/haekwon/reversal/market"
	"github.com/haekwon/reversal/portfolio"
	"github.com/haekwon/reversal/signal"
	"github.com/haekwon/reversal/sim"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Backtest the reversal strategy over a candle CSV",
	Long: `Backtest scans a historical candle series for reversal signals and
simulates every admitted trade through to its exit.

The CSV needs rows of time,open,high,low,close[,volume] with weekly or daily
candles matching the configured timeframe.

Example:
  reversal backtest --data data/aapl_weekly.csv --symbol AAPL --org report.org`,
	RunE: runBacktest,
}

var (
	btDataPath string
	btSymbol   string
	btOrgPath  string
	btSeed     int64
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btDataPath, "data", "d", "", "path to candle CSV (required)")
	backtestCmd.Flags().StringVarP(&btSymbol, "symbol", "s", "SYM", "symbol the candles belong to")
	backtestCmd.Flags().StringVar(&btOrgPath, "org", "", "write an org-mode run report to this path")
	backtestCmd.Flags().Int64Var(&btSeed, "seed", 0, "random seed for the random crossing policy (0 seeds from the clock)")

	backtestCmd.MarkFlagRequired("data")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	candles, err := market.LoadCSV(btDataPath)
	if err != nil {
		return fmt.Errorf("load candles: %w", err)
	}

	strat, err := signal.NewUpperSection(cfg.Strategy)
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}

	var rng *rand.Rand
	if cfg.Execution.Crossing == sim.CrossingRandom {
		seed := btSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}
	realizer, err := sim.NewRealizer(cfg.Execution, rng)
	if err != nil {
		return fmt.Errorf("realizer: %w", err)
	}

	manager, err := portfolio.NewManager(cfg.Portfolio.InitialCash, cfg.Portfolio.MaxPositions, realizer)
	if err != nil {
		return fmt.Errorf("portfolio: %w", err)
	}

	j, sqlJ, err := openJournal(cfg)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	if j != nil {
		defer j.Close()
	}

	runner := &backtest.Runner{
		Strategy: strat,
		Manager:  manager,
		Policy:   cfg.Risk,
		RiskPct:  cfg.Portfolio.RiskPct,
		Journal:  j,
	}

	fmt.Printf("Running backtest over %s (%d candles)\n", btDataPath, len(candles))
	fmt.Printf("  Symbol: %s  Timeframe: %s\n\n", btSymbol, cfg.Strategy.Timeframe)

	res, err := runner.Run(cmd.Context(), btSymbol, candles)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	printResult(res)

	summary := toRunSummary(cfg, res)
	if sqlJ != nil {
		if err := sqlJ.RecordRun(summary); err != nil {
			return fmt.Errorf("record run: %w", err)
		}
	}
	if btOrgPath != "" {
		if err := summary.WriteOrg(btOrgPath); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Printf("\nReport written to %s\n", btOrgPath)
	}
	return nil
}

// openJournal builds the configured journal. The second return is non-nil
// when the backend is SQLite, which additionally stores run summaries.
func openJournal(cfg *config.Config) (journal.Journal, *journal.SQLite, error) {
	switch cfg.Journal.Type {
	case "csv":
		j, err := journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
		return j, nil, err
	case "sqlite":
		j, err := journal.NewSQLite(cfg.Journal.DBPath)
		return j, j, err
	}
	return nil, nil, nil
}

func toRunSummary(cfg *config.Config, res backtest.Result) journal.RunSummary {
	cfgBytes, _ := yaml.Marshal(cfg.Strategy)
	return journal.RunSummary{
		RunID:        res.RunID,
		Created:      time.Now().UTC(),
		Timeframe:    string(cfg.Strategy.Timeframe),
		Dataset:      btDataPath,
		Strategy:     "upper_section",
		Config:       cfgBytes,
		Start:        res.Start,
		End:          res.End,
		StartCash:    res.StartCash,
		EndEquity:    res.EndEquity,
		Trades:       res.Trades,
		Wins:         res.Wins,
		Losses:       res.Losses,
		NetPL:        res.NetPL,
		ReturnPct:    res.ReturnPct,
		WinRate:      res.WinRate,
		ProfitFactor: res.ProfitFactor,
		MaxDDPct:     res.MaxDDPct,
	}
}

func printResult(res backtest.Result) {
	fmt.Printf("Backtest Complete!\n")
	fmt.Printf("  Period:        %s to %s\n", res.Start.Format("2006-01-02"), res.End.Format("2006-01-02"))
	fmt.Printf("  Signals:       %d (%d rejected)\n", res.Signals, res.Rejected)
	fmt.Printf("  Trades:        %d (%d wins / %d losses)\n", res.Trades, res.Wins, res.Losses)
	fmt.Printf("  Net P/L:       $%.2f\n", res.NetPL)
	fmt.Printf("  Return:        %.2f%%\n", res.ReturnPct*100)
	fmt.Printf("  Win Rate:      %.2f%%\n", res.WinRate*100)
	if res.ProfitFactor > 0 {
		fmt.Printf("  Profit Factor: %.2f\n", res.ProfitFactor)
	}
	fmt.Printf("  Max Drawdown:  %.2f%%\n", res.MaxDDPct*100)
	fmt.Printf("  End Equity:    $%.2f\n", res.EndEquity)
}
