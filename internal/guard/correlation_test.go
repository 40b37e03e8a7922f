package guard

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func TestCorrelationGuardThreshold(t *testing.T) {
	g := NewCorrelationGuard(2, zerolog.Nop())
	if err := g.UpdatePositions([]string{"BTC/USDT", "BTC/USDT"}); err != nil {
		t.Fatalf("UpdatePositions: %v", err)
	}

	ctx := context.Background()
	if g.Check(ctx, "BTC/USDT") {
		t.Fatalf("expected block for BTC at threshold")
	}
	if !g.Check(ctx, "ETH/USDT") {
		t.Fatalf("expected pass for ETH with zero exposure")
	}
}

func TestCorrelationGuardBelowThreshold(t *testing.T) {
	g := NewCorrelationGuard(2, zerolog.Nop())
	if err := g.UpdatePositions([]string{"BTC/USDT"}); err != nil {
		t.Fatalf("UpdatePositions: %v", err)
	}
	if !g.Check(context.Background(), "BTC/EUR") {
		t.Fatalf("expected pass with one BTC position under threshold 2")
	}
}

func TestUpdatePositionsMalformedSymbol(t *testing.T) {
	g := NewCorrelationGuard(2, zerolog.Nop())
	if err := g.UpdatePositions([]string{"BTCUSDT"}); err == nil {
		t.Fatalf("expected error for symbol without separator")
	}
}

func TestUpdatePositionsIdempotent(t *testing.T) {
	g := NewCorrelationGuard(2, zerolog.Nop())
	open := []string{"BTC/USDT", "ETH/USDT", "ETH/BTC"}

	if err := g.UpdatePositions(open); err != nil {
		t.Fatalf("UpdatePositions: %v", err)
	}
	first := g.Check(context.Background(), "ETH/USDT")

	if err := g.UpdatePositions(open); err != nil {
		t.Fatalf("second UpdatePositions: %v", err)
	}
	second := g.Check(context.Background(), "ETH/USDT")

	if first != second {
		t.Fatalf("guard outcome changed across identical updates: %v vs %v", first, second)
	}
	if first {
		t.Fatalf("expected ETH blocked with two ETH-base positions")
	}
}

func TestUpdatePositionsReplacesStaleState(t *testing.T) {
	g := NewCorrelationGuard(1, zerolog.Nop())
	if err := g.UpdatePositions([]string{"SOL/USDT"}); err != nil {
		t.Fatalf("UpdatePositions: %v", err)
	}
	if g.Check(context.Background(), "SOL/USDT") {
		t.Fatalf("expected SOL blocked")
	}
	if err := g.UpdatePositions(nil); err != nil {
		t.Fatalf("UpdatePositions(nil): %v", err)
	}
	if !g.Check(context.Background(), "SOL/USDT") {
		t.Fatalf("expected SOL allowed after positions cleared")
	}
}

func TestCheckMalformedSymbolBlocks(t *testing.T) {
	g := NewCorrelationGuard(2, zerolog.Nop())
	if g.Check(context.Background(), "BTCUSDT") {
		t.Fatalf("malformed symbol must be blocked")
	}
}
