package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"oraclehub/internal/backtest"
	"oraclehub/internal/candle"
	"oraclehub/internal/config"
	"oraclehub/internal/util"
)

func main() {
	configPath := flag.String("config", "internal/config/config.yaml", "path to YAML config")
	symbol := flag.String("symbol", "BTC/USDT", "symbol under test")
	flag.Parse()

	log := util.NewLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	series, err := backtest.LoadCSV(cfg.Backtest.CandlesCSV, *symbol, candle.Hour1)
	if err != nil {
		log.Fatal().Err(err).Msg("load candles")
	}

	bt := backtest.New(*symbol, cfg.Backtest.StartBalance, log)
	report := bt.Run(series)

	log.Info().
		Int("trades", report.Trades).
		Float64("roi_pct", report.ROI).
		Float64("win_rate_pct", report.WinRate).
		Float64("drawdown_pct", report.Drawdown).
		Float64("final_balance", report.FinalBalance).
		Msg("backtest complete")

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("marshal report")
	}
	fmt.Fprintln(os.Stdout, string(out))
}
