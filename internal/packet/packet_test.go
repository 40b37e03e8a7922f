package packet

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	packets []TradePacket
}

func (s *memorySink) Record(pkt TradePacket) error {
	s.packets = append(s.packets, pkt)
	return nil
}

func validRequest() TradeRequest {
	return TradeRequest{
		Symbol:          "BTC/USDT",
		Side:            SideBuy,
		EntryPrice:      50000.0,
		StopLoss:        49000.0,
		TakeProfit:      53000.0,
		Size:            0.01,
		Level:           5,
		SubLevel:        0,
		StrategyVerdict: "BUY",
		AgentVerdict:    "BULLISH",
	}
}

func newTestPackager(sink AuditSink) *Packager {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return NewPackager("oracle-hub", sink, zerolog.Nop(), WithClock(func() time.Time { return fixed }))
}

func TestPackageAcceptsValidRequest(t *testing.T) {
	sink := &memorySink{}
	p := newTestPackager(sink)

	pkt, err := p.Package(validRequest())
	require.NoError(t, err)

	assert.Equal(t, 50000.0, pkt.Trade.Entry)
	assert.Equal(t, 5, pkt.Trade.Risk.Level)
	assert.Equal(t, 0, pkt.Trade.Risk.SubLevel)
	assert.Equal(t, "1.0", pkt.Meta.Version)
	assert.Equal(t, "oracle-hub", pkt.Meta.Source)
	assert.Equal(t, "2025-06-01T12:00:00Z", pkt.Meta.Timestamp)
	assert.Equal(t, "BUY", pkt.Context.Strategy)
	assert.Equal(t, "BULLISH", pkt.Context.Sentiment)
	require.Len(t, sink.packets, 1)
}

func TestPackageRejectsInvalidSide(t *testing.T) {
	p := newTestPackager(&memorySink{})
	req := validRequest()
	req.Side = "LONG"
	_, err := p.Package(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid side")
}

func TestPackageRejectsZeroSize(t *testing.T) {
	sink := &memorySink{}
	p := newTestPackager(sink)
	req := validRequest()
	req.Size = 0
	_, err := p.Package(req)
	require.Error(t, err)
	assert.Empty(t, sink.packets, "no partial packet may reach the sink")
}

func TestPackageRejectsNegativePrice(t *testing.T) {
	p := newTestPackager(&memorySink{})
	req := validRequest()
	req.StopLoss = -1
	_, err := p.Package(req)
	require.Error(t, err)
}

func TestPackageReportsMissingFields(t *testing.T) {
	p := newTestPackager(&memorySink{})
	req := TradeRequest{Symbol: "BTC/USDT", Side: SideBuy}
	_, err := p.Package(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry_price")
	assert.Contains(t, err.Error(), "size")
	assert.Contains(t, err.Error(), "level")
}

func TestPackageRejectsSymbolWithoutSeparator(t *testing.T) {
	p := newTestPackager(&memorySink{})
	req := validRequest()
	req.Symbol = "BTCUSDT"
	_, err := p.Package(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "symbol")
}

func TestPackageDefaultsContextToNA(t *testing.T) {
	p := newTestPackager(&memorySink{})
	req := validRequest()
	req.StrategyVerdict = ""
	req.AgentVerdict = ""
	pkt, err := p.Package(req)
	require.NoError(t, err)
	assert.Equal(t, "N/A", pkt.Context.Strategy)
	assert.Equal(t, "N/A", pkt.Context.Sentiment)
}

func TestJSONLAuditRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signals", "audit.jsonl")
	sink, err := NewJSONLAudit(path)
	require.NoError(t, err)

	p := newTestPackager(sink)
	_, err = p.Package(validRequest())
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	scanner := bufio.NewScanner(file)
	require.True(t, scanner.Scan(), "expected one audit line")

	var decoded TradePacket
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &decoded))
	assert.Equal(t, "BTC/USDT", decoded.Trade.Symbol)
	assert.Equal(t, SideBuy, decoded.Trade.Side)
	assert.Equal(t, 5, decoded.Trade.Risk.Level)
}
