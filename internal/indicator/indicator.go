// Package indicator computes technical indicators over a canonical
// close-price sequence.
//
// All functions are pure: they take a price slice and return a
// []model.Value aligned one-to-one with the input, marking indices
// without enough history as missing. A missing value is never the same
// as a computed zero. If the input holds fewer than `period` prices the
// entire output is missing; the engine never substitutes a smaller
// effective window.
package indicator

import "stockpulse/internal/model"

// Default periods used by Compute. These match the upstream analysis
// backend so both sides stay numerically comparable.
const (
	SMAFastPeriod   = 20
	SMASlowPeriod   = 50
	EMAFastPeriod   = 12
	EMASlowPeriod   = 26
	RSIPeriod       = 14
	MACDSignal      = 9
	BollingerPeriod = 20
	BollingerK      = 2.0
)

// none returns an all-missing output of length n.
func none(n int) []model.Value {
	return make([]model.Value, n)
}

// last returns the final value of an output, or missing when empty.
func last(vals []model.Value) model.Value {
	if len(vals) == 0 {
		return model.None
	}
	return vals[len(vals)-1]
}
