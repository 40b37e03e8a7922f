package main

import (
	"context"
	"flag"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"oraclehub/internal/candle"
	"oraclehub/internal/config"
	"oraclehub/internal/guard"
	"oraclehub/internal/harvest"
	"oraclehub/internal/metrics"
	"oraclehub/internal/orchestrator"
	"oraclehub/internal/packet"
	"oraclehub/internal/risk"
	"oraclehub/internal/sentiment"
	"oraclehub/internal/util"
)

// staticPositions is the placeholder open-positions collaborator until an
// execution backend reports real fills.
type staticPositions struct{}

func (staticPositions) ListOpenSymbols(context.Context) ([]string, error) { return nil, nil }

func main() {
	configPath := flag.String("config", "internal/config/config.yaml", "path to YAML config")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog := util.NewLogger("info")
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger(cfg.App.LogLevel)

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store := harvest.NewStore()
	client := harvest.NewBinanceClient(cfg.Exchange.BaseURL, log)

	intervals := []candle.Interval{candle.Day1, candle.Hour4, candle.Hour1}
	log.Info().Int("symbols", len(cfg.Exchange.Symbols)).Msg("starting backfill")
	if err := client.Backfill(ctx, store, cfg.Exchange.Symbols, intervals, cfg.Trading.BackfillLimit); err != nil {
		log.Fatal().Err(err).Msg("backfill failed")
	}

	stream := harvest.NewKlineStream(cfg.Exchange.WSURL, cfg.Exchange.Symbols, candle.Hour1, store, log)
	go func() {
		if err := stream.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("kline stream stopped")
			cancel()
		}
	}()

	audit, err := packet.NewJSONLAudit(cfg.Trading.AuditPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open audit log")
	}
	defer audit.Close()

	riskEng, err := risk.NewEngine(cfg.Risk.InitialLevel, log)
	if err != nil {
		log.Fatal().Err(err).Msg("risk engine")
	}

	corrGuard := guard.NewCorrelationGuard(cfg.Guards.MaxTradesPerAsset, log)
	liqGuard := guard.NewLiquidityGuard(client, cfg.Guards.MaxSpreadPct, cfg.Guards.MinDepthUSD, log)

	fetcher := sentiment.NewBraveFetcher("", os.Getenv("BRAVE_API_KEY"), log)
	analyst := sentiment.NewKeywordAnalyst(fetcher, log)

	orch := orchestrator.New(orchestrator.Config{
		Symbols:          cfg.Exchange.Symbols,
		Balance:          cfg.Trading.Balance,
		Candles:          store,
		Risk:             riskEng,
		CorrelationGuard: corrGuard,
		Guards:           []guard.Guard{corrGuard, liqGuard},
		Analyst:          analyst,
		Packager:         packet.NewPackager("oracle-hub", audit, log),
		Positions:        staticPositions{},
		Log:              log,
	})

	cycle := time.Duration(cfg.Trading.CycleSecs) * time.Second
	if cycle <= 0 {
		cycle = 5 * time.Minute
	}
	ticker := time.NewTicker(cycle)
	defer ticker.Stop()

	log.Info().Dur("cycle", cycle).Msg("oracle started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			return
		case <-ticker.C:
			packets := orch.RunCycle(ctx)
			for _, pkt := range packets {
				log.Info().Str("symbol", pkt.Trade.Symbol).Float64("entry", pkt.Trade.Entry).Msg("signal emitted")
			}
		}
	}
}
