// Package config loads and validates the full backtest configuration from
// YAML or JSON, with optional overrides from the environment (.env files
// included).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/haekwon/reversal/market"
	"github.com/haekwon/reversal/risk"
	"github.com/haekwon/reversal/signal"
	"github.com/haekwon/reversal/sim"
)

// Config represents the complete backtest configuration.
type Config struct {
	Portfolio PortfolioConfig           `json:"portfolio" yaml:"portfolio"`
	Strategy  signal.UpperSectionConfig `json:"strategy" yaml:"strategy"`
	Execution sim.RealizerConfig        `json:"execution" yaml:"execution"`
	Risk      risk.Policy               `json:"risk" yaml:"risk"`
	Journal   JournalConfig             `json:"journal" yaml:"journal"`
}

// PortfolioConfig contains portfolio initialization parameters.
type PortfolioConfig struct {
	InitialCash  float64 `json:"initial_cash" yaml:"initial_cash"`
	MaxPositions int     `json:"max_positions" yaml:"max_positions"`
	RiskPct      float64 `json:"risk_pct" yaml:"risk_pct"` // per-trade sizing fraction
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite", or "none"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a YAML or JSON file and validates it.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration to a file, YAML or JSON by extension.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// ApplyEnv overlays settings from the environment. A .env file at envPath is
// loaded first when it exists; empty envPath tries "./.env". Unset variables
// leave the config untouched, malformed values fail.
func (c *Config) ApplyEnv(envPath string) error {
	if envPath == "" {
		envPath = ".env"
	}
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return fmt.Errorf("load %s: %w", envPath, err)
		}
	}

	if v := os.Getenv("REVERSAL_INITIAL_CASH"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("REVERSAL_INITIAL_CASH: %w", err)
		}
		c.Portfolio.InitialCash = f
	}
	if v := os.Getenv("REVERSAL_MAX_POSITIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REVERSAL_MAX_POSITIONS: %w", err)
		}
		c.Portfolio.MaxPositions = n
	}
	if v := os.Getenv("REVERSAL_TIMEFRAME"); v != "" {
		tf, err := market.ParseTimeframe(v)
		if err != nil {
			return fmt.Errorf("REVERSAL_TIMEFRAME: %w", err)
		}
		c.Strategy.Timeframe = tf
	}
	if v := os.Getenv("REVERSAL_DB_PATH"); v != "" {
		c.Journal.Type = "sqlite"
		c.Journal.DBPath = v
	}
	return nil
}

// Validate checks the portfolio and journal sections. Strategy and execution
// parameters are validated by their own constructors, so a bad tp_ratio or
// crossing policy still fails before any bar is processed.
func (c *Config) Validate() error {
	if c.Portfolio.InitialCash <= 0 {
		return fmt.Errorf("portfolio.initial_cash must be positive")
	}
	if c.Portfolio.MaxPositions <= 0 {
		return fmt.Errorf("portfolio.max_positions must be positive")
	}
	if c.Portfolio.RiskPct <= 0 || c.Portfolio.RiskPct > 1 {
		return fmt.Errorf("portfolio.risk_pct must be between 0 and 1")
	}
	switch c.Journal.Type {
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "none", "":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite', or 'none'")
	}
	return nil
}

// Default returns a configuration with the stock strategy parameters and a
// CSV journal in the working directory.
func Default() *Config {
	return &Config{
		Portfolio: PortfolioConfig{
			InitialCash:  10_000,
			MaxPositions: 5,
			RiskPct:      0.01,
		},
		Strategy: signal.UpperSectionDefaults(),
		Execution: sim.RealizerConfig{
			AddBuyPct: 0.5,
			Crossing:  sim.CrossingPreferSL,
		},
		Risk: risk.DefaultPolicy(),
		Journal: JournalConfig{
			Type:       "csv",
			TradesFile: "./trades.csv",
			EquityFile: "./equity.csv",
		},
	}
}
