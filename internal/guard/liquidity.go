package guard

import (
	"context"

	"github.com/rs/zerolog"
)

// OrderBook is a snapshot of bid/ask ladders. Bids are best-first
// descending, asks best-first ascending; each level is [price, size].
type OrderBook struct {
	Bids [][2]float64
	Asks [][2]float64
}

// OrderBookSource fetches a live order book for a symbol.
type OrderBookSource interface {
	FetchOrderBook(ctx context.Context, symbol string) (OrderBook, error)
}

const depthLevels = 5

// LiquidityGuard rejects symbols whose book is too thin or too wide to
// enter safely. Any fetch failure is a block, never an error to the caller.
type LiquidityGuard struct {
	source       OrderBookSource
	maxSpreadPct float64
	minDepthUSD  float64
	log          zerolog.Logger
}

// NewLiquidityGuard builds the guard with a max spread fraction (e.g. 0.005)
// and a minimum USD-equivalent depth across the top bid levels.
func NewLiquidityGuard(source OrderBookSource, maxSpreadPct, minDepthUSD float64, log zerolog.Logger) *LiquidityGuard {
	return &LiquidityGuard{
		source:       source,
		maxSpreadPct: maxSpreadPct,
		minDepthUSD:  minDepthUSD,
		log:          log,
	}
}

// Name identifies the guard in logs and metrics.
func (g *LiquidityGuard) Name() string { return "liquidity" }

// Check validates spread and bid depth, failing closed on any fetch error.
func (g *LiquidityGuard) Check(ctx context.Context, symbol string) bool {
	book, err := g.source.FetchOrderBook(ctx, symbol)
	if err != nil {
		g.log.Error().Err(err).Str("symbol", symbol).Msg("liquidity guard: order book fetch failed")
		return false
	}

	if len(book.Bids) == 0 || len(book.Asks) == 0 {
		g.log.Warn().Str("symbol", symbol).Msg("liquidity guard block: empty order book side")
		return false
	}

	bestBid := book.Bids[0][0]
	bestAsk := book.Asks[0][0]
	if bestBid <= 0 {
		g.log.Warn().Str("symbol", symbol).Msg("liquidity guard block: non-positive best bid")
		return false
	}
	spread := (bestAsk - bestBid) / bestBid
	if spread > g.maxSpreadPct {
		g.log.Warn().Str("symbol", symbol).Float64("spread", spread).Msg("liquidity guard block: spread too wide")
		return false
	}

	var depth float64
	for i, bid := range book.Bids {
		if i >= depthLevels {
			break
		}
		depth += bid[0] * bid[1]
	}
	if depth < g.minDepthUSD {
		g.log.Warn().Str("symbol", symbol).Float64("depth_usd", depth).Float64("min", g.minDepthUSD).Msg("liquidity guard block: insufficient depth")
		return false
	}

	return true
}
