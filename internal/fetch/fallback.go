package fetch

import (
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"stockpulse/internal/model"
)

// FallbackSource is the provenance tag for synthetic series.
const FallbackSource = "fallback"

// FallbackBars generates a deterministic synthetic daily series for a
// symbol when the upstream is unreachable. The walk is seeded from the
// symbol and calendar day, so every consumer asking for the same symbol
// on the same day sees identical fallback values, and values roll over
// at most once per day.
func FallbackBars(symbol string, now time.Time, n int) model.TimeSeries {
	day := now.UTC().Truncate(24 * time.Hour)
	rng := rand.New(rand.NewSource(seed(symbol, day)))

	// Base price in [20, 520), stable per symbol+day.
	price := 20.0 + rng.Float64()*500.0

	bars := make(model.TimeSeries, 0, n)
	for i := 0; i < n; i++ {
		date := day.AddDate(0, 0, i-n)
		change := rng.NormFloat64() * 0.015 // ~1.5% daily volatility
		change = math.Max(-0.1, math.Min(0.1, change))
		open := price
		price = price * (1 + change)
		high := math.Max(open, price) * (1 + rng.Float64()*0.005)
		low := math.Min(open, price) * (1 - rng.Float64()*0.005)
		bars = append(bars, model.Bar{
			Date:   date,
			Open:   round2(open),
			High:   round2(high),
			Low:    round2(low),
			Close:  round2(price),
			Volume: 1_000_000 + rng.Int63n(9_000_000),
			Count:  1,
		})
	}
	return bars
}

func seed(symbol string, day time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	h.Write([]byte(day.Format("2006-01-02")))
	return int64(h.Sum64())
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
