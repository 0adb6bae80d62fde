package indicator

import (
	"math"

	"stockpulse/internal/model"
)

// Bollinger computes Bollinger Bands: middle = SMA(period), upper and
// lower = middle ± k times the population standard deviation over the
// same trailing window. The window size is always exactly period, so
// the variance divisor is structurally non-zero.
func Bollinger(closes []float64, period int, k float64) (upper, middle, lower []model.Value) {
	n := len(closes)
	middle = SMA(closes, period)
	upper, lower = none(n), none(n)
	if period <= 0 || n < period {
		return upper, middle, lower
	}

	// Rolling sum of squares alongside the SMA window.
	sumSq := 0.0
	for i, price := range closes {
		sumSq += price * price
		if i >= period {
			old := closes[i-period]
			sumSq -= old * old
		}
		if i < period-1 {
			continue
		}
		mean := middle[i].Float64
		variance := sumSq/float64(period) - mean*mean
		if variance < 0 {
			variance = 0 // float cancellation on near-constant windows
		}
		sigma := math.Sqrt(variance)
		upper[i] = model.Some(mean + k*sigma)
		lower[i] = model.Some(mean - k*sigma)
	}
	return upper, middle, lower
}
