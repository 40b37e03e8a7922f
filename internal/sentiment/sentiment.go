// Package sentiment supplies the news-based veto signal consumed by the
// orchestrator. A BEARISH verdict vetoes a BUY; anything else passes.
package sentiment

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// Verdict mirrors the categorical outcome of the analyst.
type Verdict string

const (
	Bullish Verdict = "BULLISH"
	Bearish Verdict = "BEARISH"
	Neutral Verdict = "NEUTRAL"
)

// Result is the analyst's answer for one base asset.
type Result struct {
	Verdict Verdict `json:"verdict"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason"`
}

// NeutralResult is the safe default when no analysis is possible.
func NeutralResult(reason string) Result {
	return Result{Verdict: Neutral, Score: 0.5, Reason: reason}
}

// Source analyzes sentiment for a base asset. Implementations must degrade
// internal failures to a neutral result rather than returning junk verdicts;
// the orchestrator additionally treats a returned error as neutral.
type Source interface {
	Analyze(ctx context.Context, baseAsset string) (Result, error)
}

// HeadlineFetcher retrieves recent news snippets for a base asset. The
// network client behind it is a collaborator detail.
type HeadlineFetcher interface {
	FetchHeadlines(ctx context.Context, baseAsset string) ([]string, error)
}

// KeywordAnalyst scores headlines by counting bullish and bearish keywords.
// It stands in for an LLM-backed analyst while keeping the same contract.
type KeywordAnalyst struct {
	fetcher HeadlineFetcher
	log     zerolog.Logger
}

var (
	bullishWords = []string{"surge", "rally", "record", "adoption", "bullish", "upgrade", "approval", "inflow"}
	bearishWords = []string{"crash", "plunge", "hack", "ban", "bearish", "lawsuit", "selloff", "outflow"}
)

// NewKeywordAnalyst builds an analyst over the given headline fetcher.
func NewKeywordAnalyst(fetcher HeadlineFetcher, log zerolog.Logger) *KeywordAnalyst {
	return &KeywordAnalyst{fetcher: fetcher, log: log}
}

// Analyze fetches headlines and scores them. Fetch failures and empty
// result sets both resolve to the neutral default.
func (a *KeywordAnalyst) Analyze(ctx context.Context, baseAsset string) (Result, error) {
	headlines, err := a.fetcher.FetchHeadlines(ctx, baseAsset)
	if err != nil {
		a.log.Error().Err(err).Str("asset", baseAsset).Msg("headline fetch failed")
		return NeutralResult("news source unavailable"), nil
	}
	if len(headlines) == 0 {
		return NeutralResult("no recent news found for analysis"), nil
	}

	var bull, bear int
	for _, h := range headlines {
		lower := strings.ToLower(h)
		for _, w := range bullishWords {
			if strings.Contains(lower, w) {
				bull++
			}
		}
		for _, w := range bearishWords {
			if strings.Contains(lower, w) {
				bear++
			}
		}
	}

	total := bull + bear
	if total == 0 {
		return NeutralResult("headlines carry no directional signal"), nil
	}
	score := float64(bull) / float64(total)
	switch {
	case score > 0.6:
		return Result{Verdict: Bullish, Score: score, Reason: "bullish keywords dominate recent headlines"}, nil
	case score < 0.4:
		return Result{Verdict: Bearish, Score: score, Reason: "bearish keywords dominate recent headlines"}, nil
	default:
		return Result{Verdict: Neutral, Score: score, Reason: "mixed headline sentiment"}, nil
	}
}
