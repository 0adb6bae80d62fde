package indicator

import "stockpulse/internal/model"

// SMA computes the simple moving average with a rolling window sum.
// Index i is the mean of the trailing window of length period ending
// at i; indices before period-1 are missing.
func SMA(closes []float64, period int) []model.Value {
	out := none(len(closes))
	if period <= 0 || len(closes) < period {
		return out
	}
	sum := 0.0
	for i, price := range closes {
		sum += price
		if i >= period {
			sum -= closes[i-period]
		}
		if i >= period-1 {
			out[i] = model.Some(sum / float64(period))
		}
	}
	return out
}
