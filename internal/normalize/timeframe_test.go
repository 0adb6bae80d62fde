package normalize

import "testing"

func TestRangeForTimeframe(t *testing.T) {
	cases := []struct {
		tf       string
		period   string
		interval string
		intraday bool
	}{
		{"1min", "5d", "1m", true},
		{"1hour", "3mo", "1h", true},
		{"1day", "1y", "1d", false},
		{"1week", "2y", "1wk", false},
		{"1month", "5y", "1mo", false},
	}
	for _, tc := range cases {
		r, err := RangeForTimeframe(tc.tf)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tc.tf, err)
			continue
		}
		if r.Period != tc.period || r.Interval != tc.interval {
			t.Errorf("%s: expected %s/%s, got %s/%s", tc.tf, tc.period, tc.interval, r.Period, r.Interval)
		}
		if r.Intraday() != tc.intraday {
			t.Errorf("%s: expected intraday=%v", tc.tf, tc.intraday)
		}
	}
}

func TestRangeForTimeframe_Unknown(t *testing.T) {
	if _, err := RangeForTimeframe("2day"); err == nil {
		t.Fatal("expected error for unknown timeframe")
	}
}

func TestCacheKey(t *testing.T) {
	r, _ := RangeForTimeframe("1day")
	if got := CacheKey("AAPL", r); got != "bars:AAPL:1y:1d" {
		t.Errorf("unexpected cache key %q", got)
	}
}
