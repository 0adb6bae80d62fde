package indicator

import "stockpulse/internal/model"

// RSI computes the relative strength index over per-step gains and
// losses. Averages are simple rolling means over the trailing window
// of length period ending at the previous delta, not Wilder smoothing.
// Indices before period are missing; a window with zero average loss
// clamps to 100. Non-missing values are always within [0, 100].
func RSI(closes []float64, period int) []model.Value {
	out := none(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	// deltas[j] = closes[j+1] - closes[j]
	gains := make([]float64, len(closes)-1)
	losses := make([]float64, len(closes)-1)
	for j := 1; j < len(closes); j++ {
		delta := closes[j] - closes[j-1]
		if delta > 0 {
			gains[j-1] = delta
		} else {
			losses[j-1] = -delta
		}
	}

	// Rolling sums over the delta window [i-period, i-1].
	var gainSum, lossSum float64
	for j := 0; j < period; j++ {
		gainSum += gains[j]
		lossSum += losses[j]
	}
	for i := period; i < len(closes); i++ {
		if i > period {
			gainSum += gains[i-1] - gains[i-1-period]
			lossSum += losses[i-1] - losses[i-1-period]
		}
		avgGain := gainSum / float64(period)
		avgLoss := lossSum / float64(period)
		if avgLoss == 0 {
			out[i] = model.Some(100.0)
			continue
		}
		rs := avgGain / avgLoss
		out[i] = model.Some(100.0 - 100.0/(1.0+rs))
	}
	return out
}
