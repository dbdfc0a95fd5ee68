package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haekwon/reversal/journal"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show a recorded backtest run from a SQLite journal",
	Long: `Report loads a run summary and its trades from a SQLite journal
and prints them, optionally exporting an org-mode report.

Example:
  reversal report --db runs.db --run 01J8X2M3...`,
	RunE: runReport,
}

var (
	reportDBPath  string
	reportRunID   string
	reportOrgPath string
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportDBPath, "db", "", "path to SQLite journal (required)")
	reportCmd.Flags().StringVar(&reportRunID, "run", "", "run ID to report on (required)")
	reportCmd.Flags().StringVar(&reportOrgPath, "org", "", "write an org-mode report to this path")

	reportCmd.MarkFlagRequired("db")
	reportCmd.MarkFlagRequired("run")
}

func runReport(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(reportDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	run, err := j.GetRun(reportRunID)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s (%s, %s)\n", run.RunID, run.Strategy, run.Timeframe)
	fmt.Printf("  Dataset:       %s\n", run.Dataset)
	fmt.Printf("  Period:        %s to %s\n", run.Start.Format("2006-01-02"), run.End.Format("2006-01-02"))
	fmt.Printf("  Trades:        %d (%d wins / %d losses)\n", run.Trades, run.Wins, run.Losses)
	fmt.Printf("  Net P/L:       $%.2f (%.2f%%)\n", run.NetPL, run.ReturnPct*100)
	fmt.Printf("  Win Rate:      %.2f%%\n", run.WinRate*100)
	fmt.Printf("  Max Drawdown:  %.2f%%\n", run.MaxDDPct*100)

	trades, err := j.ListTradesByRun(reportRunID)
	if err != nil {
		return err
	}
	if len(trades) > 0 {
		fmt.Println("\nTrades:")
		for _, t := range trades {
			fmt.Printf("  %s %s %s %.0f @ %.4f -> %.4f (%s, %+.2f%%)\n",
				t.ExitTime.Format("2006-01-02"), t.Symbol, t.Direction,
				t.Size, t.EntryPrice, t.ExitPrice, t.ExitType, t.ReturnPct*100)
		}
	}

	if reportOrgPath != "" {
		if err := run.WriteOrg(reportOrgPath); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Printf("\nReport written to %s\n", reportOrgPath)
	}
	return nil
}
