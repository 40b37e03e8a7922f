package candle

import (
	"testing"
	"time"
)

func testCandles(n int, start time.Time) []Candle {
	out := make([]Candle, n)
	for i := range out {
		px := 100 + float64(i)
		out[i] = Candle{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      px, High: px + 1, Low: px - 1, Close: px, Volume: 10,
		}
	}
	return out
}

func TestNewSeriesOrdering(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	series, err := NewSeries("BTC/USDT", Hour1, testCandles(3, start))
	if err != nil {
		t.Fatalf("NewSeries returned error: %v", err)
	}
	if series.Len() != 3 {
		t.Fatalf("expected 3 candles, got %d", series.Len())
	}
	last, ok := series.Last()
	if !ok || last.Close != 102 {
		t.Fatalf("unexpected last candle: %+v ok=%v", last, ok)
	}
}

func TestNewSeriesRejectsDuplicateTimestamps(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := testCandles(2, start)
	candles[1].Timestamp = candles[0].Timestamp
	if _, err := NewSeries("BTC/USDT", Hour1, candles); err == nil {
		t.Fatalf("expected error for duplicate timestamps")
	}
}

func TestClosesCopies(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	series, err := NewSeries("ETH/USDT", Hour4, testCandles(2, start))
	if err != nil {
		t.Fatalf("NewSeries returned error: %v", err)
	}
	closes := series.Closes()
	closes[0] = -1
	if series.At(0).Close == -1 {
		t.Fatalf("Closes must return a copy")
	}
}

func TestEmptySeries(t *testing.T) {
	series, err := NewSeries("BTC/USDT", Day1, nil)
	if err != nil {
		t.Fatalf("NewSeries returned error: %v", err)
	}
	if series.Len() != 0 {
		t.Fatalf("expected empty series")
	}
	if _, ok := series.Last(); ok {
		t.Fatalf("Last should report no candle for empty series")
	}
}
