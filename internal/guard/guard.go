// Package guard holds independent pass/fail predicates consulted before a
// signal is acted on. Guards share no state and compose as an ordered,
// short-circuiting list at the call site.
package guard

import "context"

// Guard is a single pre-trade predicate. Check returns true when the trade
// may proceed.
type Guard interface {
	Name() string
	Check(ctx context.Context, symbol string) bool
}
