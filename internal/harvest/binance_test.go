package harvest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"oraclehub/internal/candle"
)

const klinesFixture = `[
  [1735689600000, "50000.10", "50500.00", "49800.00", "50200.50", "123.456", 1735693199999, "0", 0, "0", "0", "0"],
  [1735693200000, "50200.50", "50900.00", "50100.00", "50750.00", "98.765", 1735696799999, "0", 0, "0", "0", "0"]
]`

func TestFetchKlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/klines" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("symbol"); got != "BTCUSDT" {
			t.Fatalf("expected BTCUSDT, got %s", got)
		}
		if got := r.URL.Query().Get("interval"); got != "1h" {
			t.Fatalf("expected 1h interval, got %s", got)
		}
		w.Write([]byte(klinesFixture))
	}))
	defer srv.Close()

	client := NewBinanceClient(srv.URL, zerolog.Nop())
	bars, err := client.FetchKlines(context.Background(), "BTC/USDT", candle.Hour1, 500)
	if err != nil {
		t.Fatalf("FetchKlines: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(bars))
	}
	if bars[0].Open != 50000.10 || bars[0].Close != 50200.50 {
		t.Fatalf("unexpected first candle: %+v", bars[0])
	}
	if !bars[1].Timestamp.After(bars[0].Timestamp) {
		t.Fatalf("candles out of order")
	}
}

func TestFetchKlinesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "teapot", http.StatusTeapot)
	}))
	defer srv.Close()

	client := NewBinanceClient(srv.URL, zerolog.Nop())
	if _, err := client.FetchKlines(context.Background(), "BTC/USDT", candle.Hour1, 10); err == nil {
		t.Fatalf("expected error on HTTP failure")
	}
}

func TestFetchOrderBook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/depth" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"bids":[["100.5","2.0"],["100.4","1.5"]],"asks":[["100.7","1.0"]]}`))
	}))
	defer srv.Close()

	client := NewBinanceClient(srv.URL, zerolog.Nop())
	book, err := client.FetchOrderBook(context.Background(), "ETH/USDT")
	if err != nil {
		t.Fatalf("FetchOrderBook: %v", err)
	}
	if len(book.Bids) != 2 || len(book.Asks) != 1 {
		t.Fatalf("unexpected book shape: %+v", book)
	}
	if book.Bids[0][0] != 100.5 || book.Bids[0][1] != 2.0 {
		t.Fatalf("unexpected best bid: %+v", book.Bids[0])
	}
}

func TestBackfillFillsStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(klinesFixture))
	}))
	defer srv.Close()

	client := NewBinanceClient(srv.URL, zerolog.Nop())
	store := NewStore()
	err := client.Backfill(context.Background(), store, []string{"BTC/USDT"}, []candle.Interval{candle.Hour1, candle.Hour4}, 500)
	if err != nil {
		t.Fatalf("Backfill: %v", err)
	}
	if store.Len("BTC/USDT", candle.Hour1) != 2 {
		t.Fatalf("expected 2 hourly candles in store")
	}
	if store.Len("BTC/USDT", candle.Hour4) != 2 {
		t.Fatalf("expected 2 four-hour candles in store")
	}
}

func TestBinanceSymbol(t *testing.T) {
	if got := binanceSymbol("btc/usdt"); got != "BTCUSDT" {
		t.Fatalf("expected BTCUSDT, got %s", got)
	}
}
