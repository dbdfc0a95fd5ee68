package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haekwon/reversal/indicators"
	"github.com/haekwon/reversal/market"
	"github.com/haekwon/reversal/signal"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a candle CSV for a reversal signal on the latest bar",
	Long: `Scan runs one detection pass over the full candle series and reports
whether the latest bar confirms a reversal entry.

Example:
  reversal scan --data data/aapl_weekly.csv --symbol AAPL`,
	RunE: runScan,
}

var (
	scanDataPath string
	scanSymbol   string
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&scanDataPath, "data", "d", "", "path to candle CSV (required)")
	scanCmd.Flags().StringVarP(&scanSymbol, "symbol", "s", "SYM", "symbol the candles belong to")

	scanCmd.MarkFlagRequired("data")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	candles, err := market.LoadCSV(scanDataPath)
	if err != nil {
		return fmt.Errorf("load candles: %w", err)
	}

	strat, err := signal.NewUpperSection(cfg.Strategy)
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	if len(candles) < strat.RequiredLookback() {
		return fmt.Errorf("need at least %d candles, got %d", strat.RequiredLookback(), len(candles))
	}

	fast := indicators.NewStreamingEMA(cfg.Strategy.FastEMA)
	slow := indicators.NewStreamingEMA(cfg.Strategy.SlowEMA)
	for _, c := range candles {
		fast.Update(c)
		slow.Update(c)
	}

	d := strat.Decide(candles, scanSymbol)
	if d.Action != signal.Buy {
		fmt.Printf("%s: no signal at %s\n", scanSymbol, d.Time.Format("2006-01-02"))
		if fast.Ready() && slow.Ready() {
			fmt.Printf("  %s %.4f  %s %.4f  close %.4f\n",
				fast.Name(), fast.Value(), slow.Name(), slow.Value(),
				candles[len(candles)-1].Close)
		}
		return nil
	}

	fmt.Printf("%s: BUY at %s\n", scanSymbol, d.Time.Format("2006-01-02"))
	fmt.Printf("  Entry:       %.4f (EMA%d)\n", d.EntryPrice, d.EMAPeriod)
	fmt.Printf("  Take Profit: %.4f\n", d.TPPrice)
	fmt.Printf("  Stop Loss:   %.4f\n", d.SLPrice)
	fmt.Printf("  Peak:        %.4f\n", d.PeakPrice)
	fmt.Printf("  Pattern:     %s\n", d.Pattern)
	fmt.Printf("  Strength:    %s (volume ratio %.2f)\n", d.Strength, d.VolumeRatio)
	fmt.Printf("  R:R:         %.2f\n", d.RiskReward)
	return nil
}
