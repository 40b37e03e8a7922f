package signal

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"oraclehub/internal/candle"
	"oraclehub/internal/indicator"
)

const (
	trendPeriod    = 200
	momentumPeriod = 14
	triggerPeriod  = 50
	fetchLimit     = 500
)

// CandleSource supplies ordered candle history. An empty series is a valid
// response and resolves to a neutral verdict, never an error.
type CandleSource interface {
	Fetch(ctx context.Context, symbol string, interval candle.Interval, limit int) (*candle.Series, error)
}

// Engine evaluates symbols through three gates in strict order: daily trend,
// 4h momentum, 1h trigger. Lower timeframes are not fetched once a higher
// gate fails, since fetching is the expensive externally-owned operation.
type Engine struct {
	source CandleSource
	log    zerolog.Logger
}

// NewEngine builds an engine over the supplied candle source.
func NewEngine(source CandleSource, log zerolog.Logger) *Engine {
	return &Engine{source: source, log: log}
}

// Check runs the full hierarchy for one symbol and returns BUY or HOLD with
// the reason from the first gate that stopped evaluation.
func (e *Engine) Check(ctx context.Context, symbol string) Decision {
	daily := e.fetch(ctx, symbol, candle.Day1)
	trend := Trend(daily)
	if trend.Verdict != Bullish {
		return Decision{Verdict: Hold, Reason: fmt.Sprintf("trend is %s", trend.Verdict)}
	}

	fourHour := e.fetch(ctx, symbol, candle.Hour4)
	momentum := Momentum(fourHour)
	if momentum.Verdict != Bullish {
		return Decision{Verdict: Hold, Reason: fmt.Sprintf("momentum is %s", momentum.Verdict)}
	}

	hourly := e.fetch(ctx, symbol, candle.Hour1)
	trigger := Trigger(hourly)
	if trigger.Verdict == Buy {
		return Decision{Verdict: Buy, Reason: "all conditions met"}
	}
	return Decision{Verdict: Hold, Reason: "waiting for trigger"}
}

// fetch degrades any source failure to an empty series so missing history
// resolves to NEUTRAL/HOLD instead of aborting the cycle.
func (e *Engine) fetch(ctx context.Context, symbol string, interval candle.Interval) *candle.Series {
	series, err := e.source.Fetch(ctx, symbol, interval, fetchLimit)
	if err != nil {
		e.log.Warn().Err(err).Str("symbol", symbol).Str("interval", string(interval)).Msg("candle fetch failed, treating as empty")
		return nil
	}
	return series
}

// Trend classifies the daily series: BULLISH above EMA(200), BEARISH below,
// NEUTRAL when the window has not filled or close equals the EMA.
func Trend(daily *candle.Series) Decision {
	if daily.Len() < trendPeriod {
		return Decision{Verdict: Neutral, Reason: "insufficient daily history"}
	}
	closes := daily.Closes()
	ema := indicator.EMA(closes, trendPeriod)
	last := ema[len(ema)-1]
	if !last.Valid {
		return Decision{Verdict: Neutral, Reason: "insufficient daily history"}
	}
	close := closes[len(closes)-1]
	switch {
	case close > last.Value:
		return Decision{Verdict: Bullish, Reason: fmt.Sprintf("close %.4f above EMA200 %.4f", close, last.Value)}
	case close < last.Value:
		return Decision{Verdict: Bearish, Reason: fmt.Sprintf("close %.4f below EMA200 %.4f", close, last.Value)}
	default:
		return Decision{Verdict: Neutral, Reason: "close equals EMA200"}
	}
}

// Momentum classifies the 4h series by RSI(14) relative to the 50 midline.
func Momentum(fourHour *candle.Series) Decision {
	if fourHour.Len() < momentumPeriod {
		return Decision{Verdict: Neutral, Reason: "insufficient 4h history"}
	}
	rsi := indicator.RSI(fourHour.Closes(), momentumPeriod)
	last := rsi[len(rsi)-1]
	if !last.Valid {
		return Decision{Verdict: Neutral, Reason: "insufficient 4h history"}
	}
	switch {
	case last.Value > 50:
		return Decision{Verdict: Bullish, Reason: fmt.Sprintf("RSI14 %.2f above 50", last.Value)}
	case last.Value < 50:
		return Decision{Verdict: Bearish, Reason: fmt.Sprintf("RSI14 %.2f below 50", last.Value)}
	default:
		return Decision{Verdict: Neutral, Reason: "RSI14 at midline"}
	}
}

// Trigger declares BUY on a strict bullish MACD cross confirmed by the close
// sitting above EMA(50). Anything else, including a MACD line merely sitting
// above its signal, is HOLD.
func Trigger(hourly *candle.Series) Decision {
	if hourly.Len() < triggerPeriod {
		return Decision{Verdict: Hold, Reason: "insufficient 1h history"}
	}
	closes := hourly.Closes()
	macd := indicator.MACD(closes, 12, 26, 9)
	ema50 := indicator.EMA(closes, triggerPeriod)

	n := len(closes)
	curr, prev := n-1, n-2
	if !macd.Line[curr].Valid || !macd.Signal[curr].Valid ||
		!macd.Line[prev].Valid || !macd.Signal[prev].Valid ||
		!ema50[curr].Valid {
		return Decision{Verdict: Hold, Reason: "indicators warming up"}
	}

	crossed := macd.Line[prev].Value <= macd.Signal[prev].Value &&
		macd.Line[curr].Value > macd.Signal[curr].Value
	if crossed && closes[curr] > ema50[curr].Value {
		return Decision{Verdict: Buy, Reason: "bullish MACD cross above EMA50"}
	}
	return Decision{Verdict: Hold, Reason: "no bullish cross"}
}
