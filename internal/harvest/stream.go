package harvest

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"oraclehub/internal/candle"
)

const defaultBinanceWSURL = "wss://stream.binance.com:9443"

// KlineStream keeps the store current by consuming Binance kline websocket
// streams. Only closed candles are upserted so the core never sees a
// half-formed bar.
type KlineStream struct {
	wsURL    string
	symbols  []string
	interval candle.Interval
	store    *Store
	log      zerolog.Logger
}

// NewKlineStream builds a stream for one interval over many symbols. An
// empty wsURL selects the production endpoint.
func NewKlineStream(wsURL string, symbols []string, interval candle.Interval, store *Store, log zerolog.Logger) *KlineStream {
	if wsURL == "" {
		wsURL = defaultBinanceWSURL
	}
	return &KlineStream{
		wsURL:    strings.TrimSuffix(wsURL, "/"),
		symbols:  symbols,
		interval: interval,
		store:    store,
		log:      log,
	}
}

type klineEnvelope struct {
	Stream string    `json:"stream"`
	Data   klineData `json:"data"`
}

type klineData struct {
	Symbol string  `json:"s"`
	Kline  payload `json:"k"`
}

type payload struct {
	OpenTime int64  `json:"t"`
	Open     string `json:"o"`
	High     string `json:"h"`
	Low      string `json:"l"`
	Close    string `json:"c"`
	Volume   string `json:"v"`
	Closed   bool   `json:"x"`
}

// Run consumes the stream until the context is canceled, reconnecting with
// exponential backoff on failures.
func (k *KlineStream) Run(ctx context.Context) error {
	if len(k.symbols) == 0 {
		return fmt.Errorf("kline stream requires at least one symbol")
	}

	streams := make([]string, len(k.symbols))
	for i, sym := range k.symbols {
		streams[i] = strings.ToLower(binanceSymbol(sym)) + "@kline_" + string(k.interval)
	}
	url := fmt.Sprintf("%s/stream?streams=%s", k.wsURL, strings.Join(streams, "/"))

	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := k.consume(ctx, url); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			k.log.Warn().Err(err).Msg("kline stream disconnected, retrying")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff = time.Duration(math.Min(float64(maxBackoff), float64(backoff)*1.8))
			continue
		}
		return nil
	}
}

func (k *KlineStream) consume(ctx context.Context, url string) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	k.log.Info().Str("interval", string(k.interval)).Strs("symbols", k.symbols).Msg("connected kline stream")

	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		return nil
	})

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					k.log.Warn().Err(err).Msg("kline stream ping failed")
					return
				}
			case <-pingCtx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var env klineEnvelope
		if err := json.Unmarshal(message, &env); err != nil {
			k.log.Warn().Err(err).Msg("failed to decode kline message")
			continue
		}
		if !env.Data.Kline.Closed {
			continue
		}

		bar, exchangeSymbol, err := parseKlinePayload(env.Data)
		if err != nil {
			k.log.Warn().Err(err).Msg("invalid kline payload")
			continue
		}
		symbol, ok := k.ResolveSymbol(exchangeSymbol)
		if !ok {
			k.log.Warn().Str("symbol", exchangeSymbol).Msg("kline for untracked symbol")
			continue
		}
		k.store.Upsert(symbol, k.interval, []candle.Candle{bar})
	}
}

// parseKlinePayload converts a closed kline into a candle and restores the
// BASE/QUOTE symbol from the match in the configured list.
func parseKlinePayload(data klineData) (candle.Candle, string, error) {
	fields := [...]string{data.Kline.Open, data.Kline.High, data.Kline.Low, data.Kline.Close, data.Kline.Volume}
	parsed := make([]float64, len(fields))
	for i, raw := range fields {
		dec, err := decimal.NewFromString(raw)
		if err != nil {
			return candle.Candle{}, "", fmt.Errorf("kline field %d: %w", i, err)
		}
		parsed[i], _ = dec.Float64()
	}
	bar := candle.Candle{
		Timestamp: time.UnixMilli(data.Kline.OpenTime).UTC(),
		Open:      parsed[0],
		High:      parsed[1],
		Low:       parsed[2],
		Close:     parsed[3],
		Volume:    parsed[4],
	}
	return bar, data.Symbol, nil
}

// ResolveSymbol maps an exchange symbol like BTCUSDT back to BASE/QUOTE
// using the configured symbol list.
func (k *KlineStream) ResolveSymbol(exchangeSymbol string) (string, bool) {
	for _, sym := range k.symbols {
		if binanceSymbol(sym) == strings.ToUpper(exchangeSymbol) {
			return sym, true
		}
	}
	return "", false
}
