// Package packet validates trade proposals and seals them into immutable,
// auditable trade packets.
package packet

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// packetVersion is the wire schema version stamped into every packet.
const packetVersion = "1.0"

// Side is the order direction carried in a packet.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// TradeRequest is the strongly typed proposal handed to the packager.
// StrategyVerdict and AgentVerdict are optional context.
type TradeRequest struct {
	Symbol          string
	Side            Side
	EntryPrice      float64
	StopLoss        float64
	TakeProfit      float64
	Size            float64
	Level           int
	SubLevel        int
	StrategyVerdict string
	AgentVerdict    string
}

// TradePacket is the sealed output unit. It is never mutated after
// construction; the audit sink receives it as one JSON line.
type TradePacket struct {
	Meta    Meta    `json:"meta" validate:"required"`
	Trade   Trade   `json:"trade" validate:"required"`
	Context Context `json:"context"`
}

// Meta carries provenance for the packet.
type Meta struct {
	Timestamp string `json:"timestamp" validate:"required"`
	Version   string `json:"version" validate:"required"`
	Source    string `json:"source" validate:"required"`
}

// Trade is the executable portion of the packet.
type Trade struct {
	Symbol string  `json:"symbol" validate:"required,contains=/"`
	Side   Side    `json:"side" validate:"required,oneof=BUY SELL"`
	Entry  float64 `json:"entry" validate:"gt=0"`
	SL     float64 `json:"sl" validate:"gt=0"`
	TP     float64 `json:"tp" validate:"gt=0"`
	Size   float64 `json:"size" validate:"gt=0"`
	Risk   Risk    `json:"risk"`
}

// Risk carries the level pair the sizing was computed under.
type Risk struct {
	Level    int `json:"level" validate:"gte=1,lte=10"`
	SubLevel int `json:"slevel" validate:"gte=0"`
}

// Context carries the verdicts that justified the trade.
type Context struct {
	Strategy  string `json:"strategy"`
	Sentiment string `json:"sentiment"`
}

// AuditSink receives each sealed packet exactly once. Implementations own
// durability; packaging never observes sink errors as partial packets.
type AuditSink interface {
	Record(TradePacket) error
}

// Packager validates proposals and emits packets to the injected sink. The
// sink is a constructor dependency so no global log handle exists.
type Packager struct {
	source   string
	sink     AuditSink
	validate *validator.Validate
	now      func() time.Time
	log      zerolog.Logger
}

// Option adjusts Packager construction.
type Option func(*Packager)

// WithClock overrides the timestamp source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(p *Packager) { p.now = now }
}

// NewPackager builds a packager stamping packets with the given source tag.
func NewPackager(source string, sink AuditSink, log zerolog.Logger, opts ...Option) *Packager {
	p := &Packager{
		source:   source,
		sink:     sink,
		validate: validator.New(),
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Package validates the request in order (missing fields, symbol shape,
// side, positive numerics), seals a packet, and appends it to the audit
// sink. A validation failure aborts before anything is logged.
func (p *Packager) Package(req TradeRequest) (TradePacket, error) {
	if missing := missingFields(req); len(missing) > 0 {
		return TradePacket{}, fmt.Errorf("missing required fields for signal package: %s", strings.Join(missing, ", "))
	}
	if !strings.Contains(req.Symbol, "/") {
		return TradePacket{}, fmt.Errorf("invalid symbol format: %s", req.Symbol)
	}
	if req.Side != SideBuy && req.Side != SideSell {
		return TradePacket{}, fmt.Errorf("invalid side: %s", req.Side)
	}
	if req.EntryPrice <= 0 || req.StopLoss <= 0 || req.TakeProfit <= 0 || req.Size <= 0 {
		return TradePacket{}, fmt.Errorf("price, SL, TP, and size must be positive")
	}

	pkt := TradePacket{
		Meta: Meta{
			Timestamp: p.now().UTC().Format(time.RFC3339),
			Version:   packetVersion,
			Source:    p.source,
		},
		Trade: Trade{
			Symbol: req.Symbol,
			Side:   req.Side,
			Entry:  req.EntryPrice,
			SL:     req.StopLoss,
			TP:     req.TakeProfit,
			Size:   req.Size,
			Risk:   Risk{Level: req.Level, SubLevel: req.SubLevel},
		},
		Context: Context{
			Strategy:  orNA(req.StrategyVerdict),
			Sentiment: orNA(req.AgentVerdict),
		},
	}

	if err := p.validate.Struct(pkt); err != nil {
		return TradePacket{}, fmt.Errorf("packet failed schema validation: %w", err)
	}

	if err := p.sink.Record(pkt); err != nil {
		// The packet is still valid; audit failure is logged, not fatal.
		p.log.Error().Err(err).Str("symbol", pkt.Trade.Symbol).Msg("failed to audit signal packet")
	}
	return pkt, nil
}

func missingFields(req TradeRequest) []string {
	var missing []string
	if req.Symbol == "" {
		missing = append(missing, "symbol")
	}
	if req.Side == "" {
		missing = append(missing, "side")
	}
	if req.EntryPrice == 0 {
		missing = append(missing, "entry_price")
	}
	if req.StopLoss == 0 {
		missing = append(missing, "sl")
	}
	if req.TakeProfit == 0 {
		missing = append(missing, "tp")
	}
	if req.Size == 0 {
		missing = append(missing, "size")
	}
	if req.Level == 0 {
		missing = append(missing, "level")
	}
	return missing
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
