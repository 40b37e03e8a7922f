// Package signal implements the hierarchical trend/momentum/trigger
// evaluator that decides whether a symbol is a buy candidate.
package signal

// Verdict is a categorical evaluation outcome. Trend and momentum tiers use
// the directional values; the trigger tier and final decision use BUY/HOLD.
type Verdict string

const (
	Bullish Verdict = "BULLISH"
	Bearish Verdict = "BEARISH"
	Neutral Verdict = "NEUTRAL"
	Buy     Verdict = "BUY"
	Hold    Verdict = "HOLD"
)

// Decision pairs a verdict with the human-readable reason behind it.
type Decision struct {
	Verdict Verdict
	Reason  string
}
