// Package normalize converts heterogeneous raw OHLCV records into the
// canonical model.TimeSeries consumed by the indicator engine: strictly
// ascending dates, unique dates, strictly parsed numeric fields.
//
// Validation rejects the whole batch rather than dropping bad records.
// A silently shortened series can fall below an indicator's minimum
// window and flip its entire output to null, which is much harder to
// diagnose than an upfront error.
package normalize

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"stockpulse/internal/model"
)

// RawBar is one upstream bar record before validation. Numeric fields
// are kept as json.Number so that a non-numeric payload fails here,
// explicitly, instead of decoding to a zero value upstream.
type RawBar struct {
	Date   string      `json:"date"`
	Open   json.Number `json:"open"`
	High   json.Number `json:"high"`
	Low    json.Number `json:"low"`
	Close  json.Number `json:"close"`
	Volume json.Number `json:"volume"`
}

// ValidationError reports the first malformed record in a batch.
type ValidationError struct {
	Index  int    // position in the raw batch
	Field  string // offending field name
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("normalize: record %d: field %q: %s", e.Index, e.Field, e.Reason)
}

// Date layouts accepted from upstream, tried in order. The raw-series
// API emits "2006-01-02 15:04:05" for intraday intervals and
// "2006-01-02" for daily and coarser ones.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
}

// Normalize parses and validates a raw batch into a canonical series.
// Records are sorted ascending by date; records sharing a date are
// merged (last close wins, volumes sum, observation count increments).
// Returns a *ValidationError if any record is malformed.
func Normalize(raw []RawBar) (model.TimeSeries, error) {
	bars := make(model.TimeSeries, 0, len(raw))

	for i, r := range raw {
		if r.Date == "" {
			return nil, &ValidationError{Index: i, Field: "date", Reason: "missing"}
		}
		ts, err := parseDate(r.Date)
		if err != nil {
			return nil, &ValidationError{Index: i, Field: "date", Reason: err.Error()}
		}

		open, err := parseDecimal(r.Open)
		if err != nil {
			return nil, &ValidationError{Index: i, Field: "open", Reason: err.Error()}
		}
		high, err := parseDecimal(r.High)
		if err != nil {
			return nil, &ValidationError{Index: i, Field: "high", Reason: err.Error()}
		}
		low, err := parseDecimal(r.Low)
		if err != nil {
			return nil, &ValidationError{Index: i, Field: "low", Reason: err.Error()}
		}
		cls, err := parseDecimal(r.Close)
		if err != nil {
			return nil, &ValidationError{Index: i, Field: "close", Reason: err.Error()}
		}
		if cls <= 0 {
			return nil, &ValidationError{Index: i, Field: "close", Reason: "must be positive"}
		}
		vol, err := parseVolume(r.Volume)
		if err != nil {
			return nil, &ValidationError{Index: i, Field: "volume", Reason: err.Error()}
		}

		bars = append(bars, model.Bar{
			Date:   ts,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  cls,
			Volume: vol,
			Count:  1,
		})
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	// Collapse duplicate dates in place.
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Date.Equal(b.Date) {
			out[n-1] = merge(out[n-1], b)
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// merge folds a later observation into the bucket bar: the bucket keeps
// its first open, the running high/low extremes, the last-seen close,
// the summed volume, and counts the observation.
func merge(bucket, b model.Bar) model.Bar {
	if b.High > bucket.High {
		bucket.High = b.High
	}
	if b.Low < bucket.Low {
		bucket.Low = b.Low
	}
	bucket.Close = b.Close
	bucket.Volume += b.Volume
	bucket.Count += b.Count
	return bucket
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseDecimal(n json.Number) (float64, error) {
	if n == "" {
		return 0, fmt.Errorf("missing")
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("not numeric: %q", n)
	}
	return f, nil
}

func parseVolume(n json.Number) (int64, error) {
	if n == "" {
		return 0, fmt.Errorf("missing")
	}
	v, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", n)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative: %d", v)
	}
	return v, nil
}
