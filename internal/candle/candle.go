// Package candle defines the OHLCV data model shared by ingestion, the
// signal engine, and the backtester.
package candle

import (
	"fmt"
	"time"
)

// Interval identifies a candle timeframe.
type Interval string

const (
	Hour1 Interval = "1h"
	Hour4 Interval = "4h"
	Day1  Interval = "1d"
)

// Candle is a single OHLCV bar for one symbol/interval/timestamp.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Series is an ordered, symbol/interval-scoped candle sequence. Timestamps
// are strictly increasing; consumers receive read-only views and must not
// mutate the underlying candles.
type Series struct {
	symbol   string
	interval Interval
	candles  []Candle
}

// NewSeries validates ordering and wraps the candles. The slice is owned by
// the series after construction.
func NewSeries(symbol string, interval Interval, candles []Candle) (*Series, error) {
	for i := 1; i < len(candles); i++ {
		if !candles[i].Timestamp.After(candles[i-1].Timestamp) {
			return nil, fmt.Errorf("series %s %s: timestamps not strictly increasing at index %d", symbol, interval, i)
		}
	}
	return &Series{symbol: symbol, interval: interval, candles: candles}, nil
}

// Symbol returns the series symbol in BASE/QUOTE form.
func (s *Series) Symbol() string { return s.symbol }

// Interval returns the series timeframe.
func (s *Series) Interval() Interval { return s.interval }

// Len reports the number of candles.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.candles)
}

// At returns the candle at index i.
func (s *Series) At(i int) Candle { return s.candles[i] }

// Last returns the most recent candle and false when the series is empty.
func (s *Series) Last() (Candle, bool) {
	if s.Len() == 0 {
		return Candle{}, false
	}
	return s.candles[len(s.candles)-1], true
}

// Closes returns a copy of the close column.
func (s *Series) Closes() []float64 {
	if s == nil {
		return nil
	}
	out := make([]float64, len(s.candles))
	for i, c := range s.candles {
		out[i] = c.Close
	}
	return out
}
