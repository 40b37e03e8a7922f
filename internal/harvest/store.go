// Package harvest ingests candles from exchanges and serves them to the
// core through the CandleSource contract. The core never fetches on its own.
package harvest

import (
	"context"
	"sort"
	"sync"

	"oraclehub/internal/candle"
	"oraclehub/internal/metrics"
)

type seriesKey struct {
	symbol   string
	interval candle.Interval
}

// Store is an in-memory candle store keyed by symbol/interval. Upsert
// replaces any candle sharing a timestamp, mirroring the unique
// (symbol, interval, timestamp) constraint a persistent store would carry.
type Store struct {
	mu      sync.RWMutex
	candles map[seriesKey][]candle.Candle
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{candles: make(map[seriesKey][]candle.Candle)}
}

// Upsert inserts or replaces candles, keeping the series sorted by
// timestamp. Duplicated timestamps overwrite the stored bar.
func (s *Store) Upsert(symbol string, interval candle.Interval, bars []candle.Candle) {
	if len(bars) == 0 {
		return
	}
	key := seriesKey{symbol: symbol, interval: interval}

	s.mu.Lock()
	existing := s.candles[key]
	for _, bar := range bars {
		idx := sort.Search(len(existing), func(i int) bool {
			return !existing[i].Timestamp.Before(bar.Timestamp)
		})
		switch {
		case idx < len(existing) && existing[idx].Timestamp.Equal(bar.Timestamp):
			existing[idx] = bar
		default:
			existing = append(existing, candle.Candle{})
			copy(existing[idx+1:], existing[idx:])
			existing[idx] = bar
		}
	}
	s.candles[key] = existing
	s.mu.Unlock()

	metrics.CandlesIngested.WithLabelValues(symbol, string(interval)).Add(float64(len(bars)))
}

// Fetch returns a read-only series of up to limit most recent candles. It
// satisfies the signal engine's CandleSource contract; an unknown series is
// an empty result, not an error.
func (s *Store) Fetch(_ context.Context, symbol string, interval candle.Interval, limit int) (*candle.Series, error) {
	s.mu.RLock()
	stored := s.candles[seriesKey{symbol: symbol, interval: interval}]
	if limit > 0 && len(stored) > limit {
		stored = stored[len(stored)-limit:]
	}
	out := make([]candle.Candle, len(stored))
	copy(out, stored)
	s.mu.RUnlock()

	return candle.NewSeries(symbol, interval, out)
}

// Len reports the number of stored candles for a series.
func (s *Store) Len(symbol string, interval candle.Interval) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.candles[seriesKey{symbol: symbol, interval: interval}])
}
