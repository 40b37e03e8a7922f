// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string
	Env         string
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Exchange describes where candle and order-book data comes from.
type Exchange struct {
	Name    string
	BaseURL string `yaml:"base_url"`
	WSURL   string `yaml:"ws_url"`
	Symbols []string
}

// Risk configures the risk engine's starting point.
type Risk struct {
	InitialLevel int `yaml:"initial_level"`
}

// Guards bundles the thresholds for the pre-trade predicates.
type Guards struct {
	MaxTradesPerAsset int     `yaml:"max_trades_per_asset"`
	MaxSpreadPct      float64 `yaml:"max_spread_pct"`
	MinDepthUSD       float64 `yaml:"min_depth_usd"`
}

// Trading holds the live-cycle parameters.
type Trading struct {
	Balance       float64 `yaml:"balance"`
	CycleSecs     int     `yaml:"cycle_secs"`
	BackfillLimit int     `yaml:"backfill_limit"`
	AuditPath     string  `yaml:"audit_path"`
}

// Backtest configures the offline runner.
type Backtest struct {
	StartBalance float64 `yaml:"start_balance"`
	CandlesCSV   string  `yaml:"candles_csv"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App      App      `yaml:"app"`
	Exchange Exchange `yaml:"exchange"`
	Risk     Risk     `yaml:"risk"`
	Guards   Guards   `yaml:"guards"`
	Trading  Trading  `yaml:"trading"`
	Backtest Backtest `yaml:"backtest"`
}

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
