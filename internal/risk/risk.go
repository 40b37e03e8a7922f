// Package risk implements the ten-tier exposure policy: position sizing,
// daily-loss ceiling, and drawdown-driven de-escalation.
package risk

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Level is one immutable tier of the risk table.
type Level struct {
	Level           int
	MaxPositionPct  float64
	MaxDailyLossPct float64
	Description     string
}

// levels is the fixed ten-tier table. Both percentages increase
// monotonically with the level; values are part of the report/test contract.
var levels = [...]Level{
	{1, 0.01, 0.005, "Extreme Caution"},
	{2, 0.02, 0.010, "Very Conservative"},
	{3, 0.03, 0.015, "Conservative"},
	{4, 0.05, 0.020, "Moderate-Low"},
	{5, 0.07, 0.025, "Moderate"},
	{6, 0.10, 0.030, "Moderate-High"},
	{7, 0.12, 0.035, "Growth"},
	{8, 0.15, 0.040, "Aggressive"},
	{9, 0.18, 0.045, "Very Aggressive"},
	{10, 0.20, 0.050, "Max Risk"},
}

// drawdownStep is the drawdown fraction beyond which the level is reduced.
const drawdownStep = 0.05

// Engine holds the current level and exposes pure sizing/ceiling queries.
// It is not safe for concurrent use; the orchestrator owns one per cycle.
type Engine struct {
	current int
	log     zerolog.Logger
}

// NewEngine starts the engine at initialLevel.
func NewEngine(initialLevel int, log zerolog.Logger) (*Engine, error) {
	e := &Engine{current: 1, log: log}
	if err := e.SetLevel(initialLevel); err != nil {
		return nil, err
	}
	log.Info().Int("level", e.current).Msg("risk engine initialized")
	return e, nil
}

// SetLevel replaces the current level. Levels outside [1,10] are an
// invalid-argument error and leave the state untouched.
func (e *Engine) SetLevel(level int) error {
	if level < 1 || level > len(levels) {
		return fmt.Errorf("invalid risk level: %d, must be between 1 and %d", level, len(levels))
	}
	e.current = level
	e.log.Info().Int("level", level).Str("description", levels[level-1].Description).Msg("risk level set")
	return nil
}

// Current returns the active level number.
func (e *Engine) Current() int { return e.current }

// Params returns the full record for the active level.
func (e *Engine) Params() Level { return levels[e.current-1] }

// PositionSize returns the maximum position value for the given balance.
func (e *Engine) PositionSize(balance float64) float64 {
	return balance * e.Params().MaxPositionPct
}

// CheckDailyLoss reports true when trading should halt because the loss has
// reached the level's daily ceiling. It is side-effect free.
func (e *Engine) CheckDailyLoss(loss, balance float64) bool {
	max := balance * e.Params().MaxDailyLossPct
	if loss >= max {
		e.log.Warn().Float64("loss", loss).Float64("limit", max).Int("level", e.current).Msg("daily loss limit reached")
		return true
	}
	return false
}

// DynamicAdjustment lowers the level by one, floored at 1, when the supplied
// drawdown fraction exceeds 5%. It never raises the level; use SetLevel for
// that.
func (e *Engine) DynamicAdjustment(drawdownPct float64) {
	if drawdownPct <= drawdownStep {
		return
	}
	next := e.current - 1
	if next < 1 {
		next = 1
	}
	if next == e.current {
		return
	}
	e.log.Info().Float64("drawdown_pct", drawdownPct).Int("level", next).Msg("drawdown detected, reducing risk level")
	_ = e.SetLevel(next)
}

// Table returns a copy of the full level table for display layers.
func Table() []Level {
	out := make([]Level, len(levels))
	copy(out, levels[:])
	return out
}
