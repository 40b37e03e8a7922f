// Package orchestrator sequences one trading cycle: signal evaluation,
// guard checks, sentiment veto, risk sizing, and packaging. It performs no
// I/O of its own beyond the injected collaborator interfaces.
package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"oraclehub/internal/candle"
	"oraclehub/internal/guard"
	"oraclehub/internal/metrics"
	"oraclehub/internal/packet"
	"oraclehub/internal/risk"
	"oraclehub/internal/sentiment"
	"oraclehub/internal/signal"
)

const (
	stopLossPct   = 0.02
	takeProfitPct = 0.06
)

// PositionsSource lists the symbols of currently open positions.
type PositionsSource interface {
	ListOpenSymbols(ctx context.Context) ([]string, error)
}

// Orchestrator wires the decision pipeline for a set of symbols. The
// exposure snapshot is refreshed exactly once per cycle, before any guard
// check, and read-only afterwards.
type Orchestrator struct {
	symbols   []string
	balance   float64
	candles   signal.CandleSource
	engine    *signal.Engine
	riskEng   *risk.Engine
	corrGuard *guard.CorrelationGuard
	guards    []guard.Guard
	analyst   sentiment.Source
	packager  *packet.Packager
	positions PositionsSource
	log       zerolog.Logger
}

// Config collects the orchestrator's collaborators.
type Config struct {
	Symbols          []string
	Balance          float64
	Candles          signal.CandleSource
	Risk             *risk.Engine
	CorrelationGuard *guard.CorrelationGuard
	Guards           []guard.Guard
	Analyst          sentiment.Source
	Packager         *packet.Packager
	Positions        PositionsSource
	Log              zerolog.Logger
}

// New assembles an orchestrator. The correlation guard must also appear in
// Guards; it is tracked separately only for the per-cycle refresh.
func New(cfg Config) *Orchestrator {
	return &Orchestrator{
		symbols:   cfg.Symbols,
		balance:   cfg.Balance,
		candles:   cfg.Candles,
		engine:    signal.NewEngine(cfg.Candles, cfg.Log),
		riskEng:   cfg.Risk,
		corrGuard: cfg.CorrelationGuard,
		guards:    cfg.Guards,
		analyst:   cfg.Analyst,
		packager:  cfg.Packager,
		positions: cfg.Positions,
		log:       cfg.Log,
	}
}

// RunCycle evaluates every symbol once and returns the packets produced.
// One symbol's failure never prevents the others from being evaluated.
func (o *Orchestrator) RunCycle(ctx context.Context) []packet.TradePacket {
	cycleID := uuid.NewString()
	log := o.log.With().Str("cycle", cycleID).Logger()

	if err := o.refreshExposure(ctx); err != nil {
		log.Error().Err(err).Msg("exposure refresh failed, skipping cycle")
		return nil
	}

	var packets []packet.TradePacket
	for _, symbol := range o.symbols {
		pkt, err := o.analyzeSymbol(ctx, log, symbol)
		if err != nil {
			log.Error().Err(err).Str("symbol", symbol).Msg("symbol analysis failed")
			continue
		}
		if pkt != nil {
			packets = append(packets, *pkt)
		}
	}
	if len(packets) > 0 {
		log.Info().Int("signals", len(packets)).Msg("cycle complete")
	}
	return packets
}

// refreshExposure rebuilds the correlation snapshot before any guard runs.
func (o *Orchestrator) refreshExposure(ctx context.Context) error {
	open, err := o.positions.ListOpenSymbols(ctx)
	if err != nil {
		return fmt.Errorf("list open symbols: %w", err)
	}
	return o.corrGuard.UpdatePositions(open)
}

// analyzeSymbol runs the full pipeline for one symbol. A nil packet with a
// nil error means the symbol was evaluated and rejected somewhere along the
// chain, which is the normal case.
func (o *Orchestrator) analyzeSymbol(ctx context.Context, log zerolog.Logger, symbol string) (*packet.TradePacket, error) {
	decision := o.engine.Check(ctx, symbol)
	metrics.SignalsTotal.WithLabelValues(symbol, string(decision.Verdict)).Inc()
	if decision.Verdict != signal.Buy {
		log.Debug().Str("symbol", symbol).Str("verdict", string(decision.Verdict)).Str("reason", decision.Reason).Msg("no entry")
		return nil, nil
	}
	log.Info().Str("symbol", symbol).Str("reason", decision.Reason).Msg("technical signal BUY")

	for _, g := range o.guards {
		if !g.Check(ctx, symbol) {
			metrics.GuardBlocksTotal.WithLabelValues(symbol, g.Name()).Inc()
			log.Warn().Str("symbol", symbol).Str("guard", g.Name()).Msg("blocked by guard")
			return nil, nil
		}
	}

	verdict := o.sentimentVerdict(ctx, log, symbol)
	if verdict.Verdict == sentiment.Bearish {
		log.Warn().Str("symbol", symbol).Str("reason", verdict.Reason).Msg("sentiment veto")
		return nil, nil
	}

	price, err := o.lastPrice(ctx, symbol)
	if err != nil {
		return nil, err
	}

	sizeValue := o.riskEng.PositionSize(o.balance)
	size := sizeValue / price

	req := packet.TradeRequest{
		Symbol:          symbol,
		Side:            packet.SideBuy,
		EntryPrice:      price,
		StopLoss:        price * (1 - stopLossPct),
		TakeProfit:      price * (1 + takeProfitPct),
		Size:            size,
		Level:           o.riskEng.Current(),
		SubLevel:        0,
		StrategyVerdict: string(decision.Verdict),
		AgentVerdict:    string(verdict.Verdict),
	}
	pkt, err := o.packager.Package(req)
	if err != nil {
		return nil, fmt.Errorf("package %s: %w", symbol, err)
	}
	metrics.PacketsTotal.WithLabelValues(symbol).Inc()
	log.Info().Str("symbol", symbol).Float64("entry", price).Float64("size", size).Msg("signal packaged")
	return &pkt, nil
}

// sentimentVerdict degrades analyst failures to the neutral default so a
// news outage cannot block or force a trade.
func (o *Orchestrator) sentimentVerdict(ctx context.Context, log zerolog.Logger, symbol string) sentiment.Result {
	base, _, _ := strings.Cut(symbol, "/")
	res, err := o.analyst.Analyze(ctx, base)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("sentiment analysis failed, defaulting to neutral")
		return sentiment.NeutralResult("analyst unavailable")
	}
	return res
}

func (o *Orchestrator) lastPrice(ctx context.Context, symbol string) (float64, error) {
	series, err := o.candles.Fetch(ctx, symbol, candle.Hour1, 1)
	if err != nil {
		return 0, fmt.Errorf("fetch last price for %s: %w", symbol, err)
	}
	last, ok := series.Last()
	if !ok {
		return 0, fmt.Errorf("no price data available for %s", symbol)
	}
	return last.Close, nil
}
