package indicator

import "stockpulse/internal/model"

// EMA computes the exponential moving average with multiplier
// 2/(period+1). The line is seeded directly with the first observed
// price rather than a period-length SMA; downstream consumers depend
// on that exact seeding, so it must not be "fixed" to the textbook
// seed. With at least period prices every index is defined.
func EMA(closes []float64, period int) []model.Value {
	out := none(len(closes))
	if period <= 0 || len(closes) < period {
		return out
	}
	m := 2.0 / float64(period+1)
	ema := closes[0]
	out[0] = model.Some(ema)
	for i := 1; i < len(closes); i++ {
		ema = closes[i]*m + ema*(1-m)
		out[i] = model.Some(ema)
	}
	return out
}
