package normalize

import "fmt"

// Range is the upstream period/interval pair resolved from a UI
// timeframe. Periods shrink as intervals get finer because the
// raw-series API caps how far back intraday data goes.
type Range struct {
	Period   string // e.g. "1y"
	Interval string // e.g. "1d"
}

var timeframes = map[string]Range{
	"1min":   {Period: "5d", Interval: "1m"},
	"5min":   {Period: "1mo", Interval: "5m"},
	"15min":  {Period: "1mo", Interval: "15m"},
	"30min":  {Period: "1mo", Interval: "30m"},
	"1hour":  {Period: "3mo", Interval: "1h"},
	"1day":   {Period: "1y", Interval: "1d"},
	"1week":  {Period: "2y", Interval: "1wk"},
	"1month": {Period: "5y", Interval: "1mo"},
}

// RangeForTimeframe resolves a requested timeframe to the period and
// interval the raw-series fetcher should ask for.
func RangeForTimeframe(tf string) (Range, error) {
	r, ok := timeframes[tf]
	if !ok {
		return Range{}, fmt.Errorf("normalize: unknown timeframe %q", tf)
	}
	return r, nil
}

// CacheKey builds the shared raw-series cache key for a symbol and
// resolved range.
func CacheKey(symbol string, r Range) string {
	return "bars:" + symbol + ":" + r.Period + ":" + r.Interval
}

// Intraday reports whether the interval is finer than one day, i.e.
// whether AggregateDaily is needed to build daily buckets from it.
func (r Range) Intraday() bool {
	switch r.Interval {
	case "1m", "5m", "15m", "30m", "1h":
		return true
	}
	return false
}
