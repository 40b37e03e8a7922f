package harvest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"oraclehub/internal/candle"
	"oraclehub/internal/guard"
)

const defaultBinanceBaseURL = "https://api.binance.com"

// BinanceClient fetches klines and order books from the Binance spot REST
// API. Prices arrive as strings and are parsed through decimal before the
// float64 conversion at the core boundary.
type BinanceClient struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewBinanceClient builds a client; an empty baseURL selects production.
func NewBinanceClient(baseURL string, log zerolog.Logger) *BinanceClient {
	if baseURL == "" {
		baseURL = defaultBinanceBaseURL
	}
	return &BinanceClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
}

// binanceSymbol converts "BTC/USDT" to the exchange's "BTCUSDT" form.
func binanceSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "/", ""))
}

// FetchKlines retrieves up to limit closed candles for a symbol/interval.
func (c *BinanceClient) FetchKlines(ctx context.Context, symbol string, interval candle.Interval, limit int) ([]candle.Candle, error) {
	q := url.Values{}
	q.Set("symbol", binanceSymbol(symbol))
	q.Set("interval", string(interval))
	q.Set("limit", fmt.Sprintf("%d", limit))

	body, err := c.get(ctx, "/api/v3/klines?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var rows [][]json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode klines: %w", err)
	}

	bars := make([]candle.Candle, 0, len(rows))
	for _, row := range rows {
		bar, err := parseKlineRow(row)
		if err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// parseKlineRow maps one kline array entry:
// [openTimeMs, "open", "high", "low", "close", "volume", ...].
func parseKlineRow(row []json.RawMessage) (candle.Candle, error) {
	if len(row) < 6 {
		return candle.Candle{}, fmt.Errorf("kline row too short: %d fields", len(row))
	}
	var openTime int64
	if err := json.Unmarshal(row[0], &openTime); err != nil {
		return candle.Candle{}, fmt.Errorf("kline open time: %w", err)
	}

	fields := make([]float64, 5)
	for i := 0; i < 5; i++ {
		var raw string
		if err := json.Unmarshal(row[i+1], &raw); err != nil {
			return candle.Candle{}, fmt.Errorf("kline field %d: %w", i+1, err)
		}
		dec, err := decimal.NewFromString(raw)
		if err != nil {
			return candle.Candle{}, fmt.Errorf("kline field %d: %w", i+1, err)
		}
		fields[i], _ = dec.Float64()
	}

	return candle.Candle{
		Timestamp: time.UnixMilli(openTime).UTC(),
		Open:      fields[0],
		High:      fields[1],
		Low:       fields[2],
		Close:     fields[3],
		Volume:    fields[4],
	}, nil
}

type depthResponse struct {
	Bids [][2]string `json:"bids"`
	Asks [][2]string `json:"asks"`
}

// FetchOrderBook retrieves the top of book, satisfying the liquidity
// guard's OrderBookSource contract.
func (c *BinanceClient) FetchOrderBook(ctx context.Context, symbol string) (guard.OrderBook, error) {
	q := url.Values{}
	q.Set("symbol", binanceSymbol(symbol))
	q.Set("limit", "20")

	body, err := c.get(ctx, "/api/v3/depth?"+q.Encode())
	if err != nil {
		return guard.OrderBook{}, err
	}

	var resp depthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return guard.OrderBook{}, fmt.Errorf("decode depth: %w", err)
	}

	book := guard.OrderBook{}
	book.Bids, err = parseLevels(resp.Bids)
	if err != nil {
		return guard.OrderBook{}, fmt.Errorf("parse bids: %w", err)
	}
	book.Asks, err = parseLevels(resp.Asks)
	if err != nil {
		return guard.OrderBook{}, fmt.Errorf("parse asks: %w", err)
	}
	return book, nil
}

func parseLevels(levels [][2]string) ([][2]float64, error) {
	out := make([][2]float64, 0, len(levels))
	for _, lvl := range levels {
		price, err := decimal.NewFromString(lvl[0])
		if err != nil {
			return nil, err
		}
		size, err := decimal.NewFromString(lvl[1])
		if err != nil {
			return nil, err
		}
		p, _ := price.Float64()
		s, _ := size.Float64()
		out = append(out, [2]float64{p, s})
	}
	return out, nil
}

// Backfill fetches history for every symbol/interval pair into the store.
func (c *BinanceClient) Backfill(ctx context.Context, store *Store, symbols []string, intervals []candle.Interval, limit int) error {
	for _, symbol := range symbols {
		for _, interval := range intervals {
			bars, err := c.FetchKlines(ctx, symbol, interval, limit)
			if err != nil {
				return fmt.Errorf("backfill %s %s: %w", symbol, interval, err)
			}
			store.Upsert(symbol, interval, bars)
			c.log.Info().Str("symbol", symbol).Str("interval", string(interval)).Int("candles", len(bars)).Msg("backfilled")
		}
	}
	return nil
}

func (c *BinanceClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("binance %s: status %d", path, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
