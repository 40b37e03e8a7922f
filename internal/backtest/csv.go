package backtest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"oraclehub/internal/candle"
)

// LoadCSV reads a candle series from a CSV file with the columns
// timestamp,open,high,low,close,volume. Timestamps are RFC 3339 or unix
// milliseconds; a header row is skipped automatically.
func LoadCSV(path, symbol string, interval candle.Interval) (*candle.Series, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open candles csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 6

	var candles []candle.Candle
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read candles csv: %w", err)
		}
		line++
		if line == 1 && record[0] == "timestamp" {
			continue
		}

		ts, err := parseTimestamp(record[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		fields := make([]float64, 5)
		for i := 0; i < 5; i++ {
			fields[i], err = strconv.ParseFloat(record[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d field %d: %w", line, i+1, err)
			}
		}
		candles = append(candles, candle.Candle{
			Timestamp: ts,
			Open:      fields[0],
			High:      fields[1],
			Low:       fields[2],
			Close:     fields[3],
			Volume:    fields[4],
		})
	}

	return candle.NewSeries(symbol, interval, candles)
}

func parseTimestamp(raw string) (time.Time, error) {
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", raw)
	}
	return ts.UTC(), nil
}
