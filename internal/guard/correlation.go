package guard

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultMaxTradesPerAsset is the base-asset concentration ceiling.
const DefaultMaxTradesPerAsset = 2

// CorrelationGuard blocks new entries once too many positions share a base
// asset. The exposure table is rebuilt from scratch each cycle via
// UpdatePositions and read-only afterwards.
type CorrelationGuard struct {
	maxTradesPerAsset int
	exposure          map[string]int
	log               zerolog.Logger
}

// NewCorrelationGuard builds the guard; non-positive thresholds fall back to
// the default of 2.
func NewCorrelationGuard(maxTradesPerAsset int, log zerolog.Logger) *CorrelationGuard {
	if maxTradesPerAsset <= 0 {
		maxTradesPerAsset = DefaultMaxTradesPerAsset
	}
	return &CorrelationGuard{
		maxTradesPerAsset: maxTradesPerAsset,
		exposure:          make(map[string]int),
		log:               log,
	}
}

// Name identifies the guard in logs and metrics.
func (g *CorrelationGuard) Name() string { return "correlation" }

// UpdatePositions replaces the exposure table from the list of currently
// open "BASE/QUOTE" symbols. A symbol without the separator is a caller
// error and aborts the rebuild.
func (g *CorrelationGuard) UpdatePositions(openSymbols []string) error {
	exposure := make(map[string]int, len(openSymbols))
	for _, symbol := range openSymbols {
		base, err := baseAsset(symbol)
		if err != nil {
			return err
		}
		exposure[base]++
	}
	g.exposure = exposure
	return nil
}

// Check returns true iff the symbol's base asset has strictly fewer open
// positions than the threshold.
func (g *CorrelationGuard) Check(_ context.Context, symbol string) bool {
	base, err := baseAsset(symbol)
	if err != nil {
		g.log.Warn().Err(err).Str("symbol", symbol).Msg("correlation guard blocked malformed symbol")
		return false
	}
	count := g.exposure[base]
	if count >= g.maxTradesPerAsset {
		g.log.Warn().Str("base", base).Int("count", count).Int("max", g.maxTradesPerAsset).Msg("correlation guard block")
		return false
	}
	return true
}

func baseAsset(symbol string) (string, error) {
	base, _, found := strings.Cut(symbol, "/")
	if !found || base == "" {
		return "", fmt.Errorf("malformed symbol %q: expected BASE/QUOTE", symbol)
	}
	return base, nil
}
