// Package backtest replays the trigger rule over historical candles and
// reports performance statistics. It is the correctness oracle for the live
// decision pipeline: the entry condition is the same strict MACD cross plus
// EMA50 filter the signal engine's trigger tier uses.
package backtest

import (
	"time"

	"github.com/rs/zerolog"

	"oraclehub/internal/candle"
	"oraclehub/internal/indicator"
)

const (
	warmupBars   = 50
	stopLossPct  = 0.02 // SL 2% below entry
	takeProfit   = 0.06 // TP 6% above entry, 1:3 reward:risk
	riskPerTrade = 0.02 // fraction of balance risked per trade
)

// Position is the single open simulated position. The model does not
// support pyramiding: at most one position exists per run at a time.
type Position struct {
	EntryPrice float64
	Size       float64
	StopLoss   float64
	TakeProfit float64
	Side       string
	EntryTime  time.Time
}

// Trade is one closed round trip.
type Trade struct {
	Symbol     string    `json:"symbol"`
	EntryTime  time.Time `json:"entry_time"`
	ExitTime   time.Time `json:"exit_time"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	PnL        float64   `json:"pnl"`
	Reason     string    `json:"reason"`
}

// Report summarizes a run. ROI, WinRate, and Drawdown are percentages.
type Report struct {
	ROI          float64 `json:"roi"`
	WinRate      float64 `json:"win_rate"`
	Drawdown     float64 `json:"drawdown"`
	Trades       int     `json:"trades"`
	FinalBalance float64 `json:"final_balance"`
}

// EquityPoint is one sample of the simulated equity curve.
type EquityPoint struct {
	Timestamp time.Time
	Equity    float64
}

// Backtester simulates a single symbol with a single position over 1h bars.
type Backtester struct {
	symbol         string
	balance        float64
	initialBalance float64
	trades         []Trade
	position       *Position
	equityCurve    []EquityPoint
	log            zerolog.Logger
}

// New creates a backtester with the given starting balance.
func New(symbol string, startBalance float64, log zerolog.Logger) *Backtester {
	return &Backtester{
		symbol:         symbol,
		balance:        startBalance,
		initialBalance: startBalance,
		log:            log,
	}
}

// Run replays the series and returns the final report. Iteration starts at
// bar 50, the first index with a full MACD/EMA warm-up. Exits are evaluated
// before entries on every bar so a position closed intra-bar cannot be
// reopened on the same candle.
func (b *Backtester) Run(series *candle.Series) Report {
	if series.Len() == 0 {
		b.log.Warn().Str("symbol", b.symbol).Msg("no data for backtest")
		return Report{}
	}

	closes := series.Closes()
	macd := indicator.MACD(closes, 12, 26, 9)
	ema50 := indicator.EMA(closes, warmupBars)

	for i := warmupBars; i < series.Len(); i++ {
		curr := series.At(i)

		if b.position != nil {
			b.checkExit(curr)
		}

		if b.position == nil {
			crossed := macd.Line[i-1].Valid && macd.Signal[i-1].Valid &&
				macd.Line[i].Valid && macd.Signal[i].Valid &&
				macd.Line[i-1].Value <= macd.Signal[i-1].Value &&
				macd.Line[i].Value > macd.Signal[i].Value
			aboveTrend := ema50[i].Valid && curr.Close > ema50[i].Value
			if crossed && aboveTrend {
				b.openPosition(curr)
			}
		}

		b.equityCurve = append(b.equityCurve, EquityPoint{Timestamp: curr.Timestamp, Equity: b.balance})
	}

	return b.report()
}

// Trades returns the closed trades of the last run.
func (b *Backtester) Trades() []Trade { return b.trades }

// EquityCurve returns one point per processed candle.
func (b *Backtester) EquityCurve() []EquityPoint { return b.equityCurve }

func (b *Backtester) openPosition(c candle.Candle) {
	price := c.Close
	sl := price * (1 - stopLossPct)
	tp := price * (1 + takeProfit)

	dist := price - sl
	if dist <= 0 {
		return
	}
	size := b.balance * riskPerTrade / dist
	// Notional cost may never exceed the available balance.
	if size*price > b.balance {
		size = b.balance / price
	}
	if size <= 0 {
		return
	}

	b.position = &Position{
		EntryPrice: price,
		Size:       size,
		StopLoss:   sl,
		TakeProfit: tp,
		Side:       "BUY",
		EntryTime:  c.Timestamp,
	}
}

// checkExit closes the position when the bar touches SL or TP. SL is
// checked first: on a bar touching both, the stop wins.
func (b *Backtester) checkExit(c candle.Candle) {
	pos := b.position
	if c.Low <= pos.StopLoss {
		b.closePosition(pos.StopLoss, c.Timestamp, "SL")
		return
	}
	if c.High >= pos.TakeProfit {
		b.closePosition(pos.TakeProfit, c.Timestamp, "TP")
	}
}

func (b *Backtester) closePosition(price float64, ts time.Time, reason string) {
	pos := b.position
	pnl := (price - pos.EntryPrice) * pos.Size
	b.balance += pnl
	b.trades = append(b.trades, Trade{
		Symbol:     b.symbol,
		EntryTime:  pos.EntryTime,
		ExitTime:   ts,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  price,
		PnL:        pnl,
		Reason:     reason,
	})
	b.position = nil
}

func (b *Backtester) report() Report {
	total := len(b.trades)
	if total == 0 {
		return Report{FinalBalance: b.balance}
	}

	wins := 0
	for _, tr := range b.trades {
		if tr.PnL > 0 {
			wins++
		}
	}

	equities := make([]float64, len(b.equityCurve))
	for i, p := range b.equityCurve {
		equities[i] = p.Equity
	}

	return Report{
		ROI:          (b.balance - b.initialBalance) / b.initialBalance * 100,
		WinRate:      float64(wins) / float64(total) * 100,
		Drawdown:     MaxDrawdown(b.initialBalance, equities),
		Trades:       total,
		FinalBalance: b.balance,
	}
}

// MaxDrawdown returns the peak-to-trough percentage drop over the equity
// sequence, tracking the running peak starting from initial.
func MaxDrawdown(initial float64, equities []float64) float64 {
	peak := initial
	max := 0.0
	for _, equity := range equities {
		if equity > peak {
			peak = equity
		}
		if peak <= 0 {
			continue
		}
		dd := (peak - equity) / peak * 100
		if dd > max {
			max = dd
		}
	}
	return max
}
