package risk

import (
	"testing"

	"github.com/rs/zerolog"
)

func newTestEngine(t *testing.T, level int) *Engine {
	t.Helper()
	e, err := NewEngine(level, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestSetLevelBounds(t *testing.T) {
	e := newTestEngine(t, 5)
	if err := e.SetLevel(0); err == nil {
		t.Fatalf("expected error for level 0")
	}
	if err := e.SetLevel(11); err == nil {
		t.Fatalf("expected error for level 11")
	}
	if e.Current() != 5 {
		t.Fatalf("failed SetLevel must not mutate state, got %d", e.Current())
	}
	if err := e.SetLevel(8); err != nil {
		t.Fatalf("SetLevel(8): %v", err)
	}
	if e.Current() != 8 {
		t.Fatalf("expected level 8 immediately visible, got %d", e.Current())
	}
}

func TestNewEngineRejectsBadLevel(t *testing.T) {
	if _, err := NewEngine(0, zerolog.Nop()); err == nil {
		t.Fatalf("expected constructor error for level 0")
	}
}

func TestPositionSizeMonotone(t *testing.T) {
	const balance = 10000.0
	prev := -1.0
	for level := 1; level <= 10; level++ {
		e := newTestEngine(t, level)
		size := e.PositionSize(balance)
		if size < prev {
			t.Fatalf("position size decreased at level %d: %.2f < %.2f", level, size, prev)
		}
		prev = size
	}
}

func TestPositionSizeValues(t *testing.T) {
	e := newTestEngine(t, 5)
	if got := e.PositionSize(10000); got != 700 {
		t.Fatalf("expected 700 at level 5, got %.2f", got)
	}
	if err := e.SetLevel(10); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	if got := e.PositionSize(10000); got != 2000 {
		t.Fatalf("expected 2000 at level 10, got %.2f", got)
	}
}

func TestCheckDailyLoss(t *testing.T) {
	e := newTestEngine(t, 1) // 0.5% ceiling
	if e.CheckDailyLoss(49.99, 10000) {
		t.Fatalf("loss under ceiling must not halt")
	}
	if !e.CheckDailyLoss(50, 10000) {
		t.Fatalf("loss at ceiling must halt")
	}
	if !e.CheckDailyLoss(80, 10000) {
		t.Fatalf("loss above ceiling must halt")
	}
}

func TestDynamicAdjustmentRatchet(t *testing.T) {
	e := newTestEngine(t, 3)

	e.DynamicAdjustment(0.04) // below threshold: no-op
	if e.Current() != 3 {
		t.Fatalf("expected no change at 4%% drawdown, got %d", e.Current())
	}

	e.DynamicAdjustment(0.06)
	if e.Current() != 2 {
		t.Fatalf("expected de-escalation to 2, got %d", e.Current())
	}

	e.DynamicAdjustment(0.10)
	e.DynamicAdjustment(0.10) // already at floor
	if e.Current() != 1 {
		t.Fatalf("expected floor at 1, got %d", e.Current())
	}
}

func TestDynamicAdjustmentNeverEscalates(t *testing.T) {
	e := newTestEngine(t, 4)
	e.DynamicAdjustment(0.0)
	e.DynamicAdjustment(0.005)
	if e.Current() != 4 {
		t.Fatalf("low drawdown must not change the level, got %d", e.Current())
	}
}

func TestTableShape(t *testing.T) {
	table := Table()
	if len(table) != 10 {
		t.Fatalf("expected 10 levels, got %d", len(table))
	}
	for i := 1; i < len(table); i++ {
		if table[i].MaxPositionPct <= table[i-1].MaxPositionPct {
			t.Fatalf("max_position_pct not increasing at level %d", table[i].Level)
		}
		if table[i].MaxDailyLossPct <= table[i-1].MaxDailyLossPct {
			t.Fatalf("max_daily_loss_pct not increasing at level %d", table[i].Level)
		}
	}
}
