package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haekwon/reversal/config"
)

var rootCmd = &cobra.Command{
	Use:   "reversal",
	Short: "A rule-based reversal strategy scanner and backtester",
	Long: `Reversal detects upper-section reversal setups in candle data and
backtests them against historical series.

It provides tools for:
  - Scanning candle series for confirmed reversal signals
  - Backtesting the strategy with simulated fills, fees, and slippage
  - Journaling trades and equity curves to CSV or SQLite
  - Risk-gated position sizing`,
}

var (
	cfgPath string
	envPath string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&envPath, "env", "", "path to .env file (default ./.env)")
}

// loadConfig resolves the effective configuration: file if given, defaults
// otherwise, environment overrides last.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.LoadFromFile(cfgPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(envPath); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
