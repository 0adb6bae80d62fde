package model

import "time"

// Bar represents one OHLCV bucket for a single instrument.
// Daily bars carry a midnight-UTC timestamp; intraday bars carry the
// bucket start time.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
	Count  int       `json:"count,omitempty"` // observations aggregated into this bucket
}

// TimeSeries is a canonical bar sequence: strictly ascending by date,
// unique dates. Produced by normalize.Normalize; the indicator engine
// assumes these invariants and does not re-check them.
type TimeSeries []Bar

// Closes extracts the close-price sequence.
func (ts TimeSeries) Closes() []float64 {
	closes := make([]float64, len(ts))
	for i, b := range ts {
		closes[i] = b.Close
	}
	return closes
}

// Last returns the final bar. ok is false for an empty series.
func (ts TimeSeries) Last() (Bar, bool) {
	if len(ts) == 0 {
		return Bar{}, false
	}
	return ts[len(ts)-1], true
}
