// Package indicator computes EMA, RSI, and MACD columns over close-price
// series. Every function returns a slice aligned 1:1 with its input; values
// inside the warm-up window carry Valid=false so consumers are forced to
// handle the absent case.
package indicator

// Sample is one indicator value. Valid is false while the warm-up window
// for the indicator is still filling.
type Sample struct {
	Value float64
	Valid bool
}

// MACDResult bundles the MACD line, signal line, and histogram columns for
// a MACD(fast,slow,signal) computation.
type MACDResult struct {
	Line      []Sample
	Signal    []Sample
	Histogram []Sample
}

// EMA computes an exponential moving average seeded with the simple average
// of the first period values. Samples before index period-1 are invalid.
func EMA(closes []float64, period int) []Sample {
	out := make([]Sample, len(closes))
	if period <= 0 || len(closes) < period {
		return out
	}

	var sum float64
	for i := 0; i < period; i++ {
		sum += closes[i]
	}
	prev := sum / float64(period)
	out[period-1] = Sample{Value: prev, Valid: true}

	k := 2.0 / (float64(period) + 1.0)
	for i := period; i < len(closes); i++ {
		prev = (closes[i]-prev)*k + prev
		out[i] = Sample{Value: prev, Valid: true}
	}
	return out
}

// RSI computes the relative strength index with Wilder smoothing. Samples
// before index period are invalid.
func RSI(closes []float64, period int) []Sample {
	out := make([]Sample, len(closes))
	if period <= 0 || len(closes) <= period {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = Sample{Value: rsiValue(avgGain, avgLoss), Valid: true}

	for i := period + 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = Sample{Value: rsiValue(avgGain, avgLoss), Valid: true}
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACD computes the MACD line as EMA(fast)-EMA(slow) and the signal line as
// an EMA(signal) of the MACD line. The signal and histogram columns become
// valid only after the slow and signal windows have both filled.
func MACD(closes []float64, fast, slow, signal int) MACDResult {
	n := len(closes)
	res := MACDResult{
		Line:      make([]Sample, n),
		Signal:    make([]Sample, n),
		Histogram: make([]Sample, n),
	}

	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)
	for i := 0; i < n; i++ {
		if fastEMA[i].Valid && slowEMA[i].Valid {
			res.Line[i] = Sample{Value: fastEMA[i].Value - slowEMA[i].Value, Valid: true}
		}
	}

	// Signal line is an EMA over the valid segment of the MACD line.
	start := -1
	for i, s := range res.Line {
		if s.Valid {
			start = i
			break
		}
	}
	if start < 0 || n-start < signal {
		return res
	}

	segment := make([]float64, 0, n-start)
	for i := start; i < n; i++ {
		segment = append(segment, res.Line[i].Value)
	}
	sigEMA := EMA(segment, signal)
	for i, s := range sigEMA {
		if !s.Valid {
			continue
		}
		res.Signal[start+i] = s
		res.Histogram[start+i] = Sample{Value: res.Line[start+i].Value - s.Value, Valid: true}
	}
	return res
}
