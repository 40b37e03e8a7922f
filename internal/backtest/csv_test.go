package backtest

import (
	"os"
	"path/filepath"
	"testing"

	"oraclehub/internal/candle"
)

func TestLoadCSV(t *testing.T) {
	content := "timestamp,open,high,low,close,volume\n" +
		"2025-01-01T00:00:00Z,100,101,99,100.5,12.5\n" +
		"1735693200000,100.5,102,100,101.5,8.25\n"
	path := filepath.Join(t.TempDir(), "candles.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	series, err := LoadCSV(path, "BTC/USDT", candle.Hour1)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if series.Len() != 2 {
		t.Fatalf("expected 2 candles, got %d", series.Len())
	}
	if series.At(0).Close != 100.5 || series.At(1).Volume != 8.25 {
		t.Fatalf("unexpected candles: %+v %+v", series.At(0), series.At(1))
	}
}

func TestLoadCSVBadField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles.csv")
	if err := os.WriteFile(path, []byte("2025-01-01T00:00:00Z,abc,1,1,1,1\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadCSV(path, "BTC/USDT", candle.Hour1); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	if _, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"), "BTC/USDT", candle.Hour1); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
