package indicator

import "stockpulse/internal/model"

// MACD computes the MACD line, signal line and histogram.
//
// line[i] = EMA(fast)[i] - EMA(slow)[i] where both are defined. The
// signal line is an EMA over the missing-prefix-trimmed line, padded
// back at the front so all three outputs stay index-aligned with the
// input. histogram[i] = line[i] - signal[i] where both are defined.
func MACD(closes []float64, fast, slow, signalPeriod int) (line, signal, histogram []model.Value) {
	n := len(closes)
	line, signal, histogram = none(n), none(n), none(n)

	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)
	for i := 0; i < n; i++ {
		if emaFast[i].Valid && emaSlow[i].Valid {
			line[i] = model.Some(emaFast[i].Float64 - emaSlow[i].Float64)
		}
	}

	// Trim the missing prefix and run the signal EMA over the defined
	// tail, then realign.
	start := 0
	for start < n && !line[start].Valid {
		start++
	}
	if start == n {
		return line, signal, histogram
	}
	tail := make([]float64, 0, n-start)
	for i := start; i < n; i++ {
		tail = append(tail, line[i].Float64)
	}
	for j, v := range EMA(tail, signalPeriod) {
		signal[start+j] = v
	}

	for i := 0; i < n; i++ {
		if line[i].Valid && signal[i].Valid {
			histogram[i] = model.Some(line[i].Float64 - signal[i].Float64)
		}
	}
	return line, signal, histogram
}
