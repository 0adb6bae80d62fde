package normalize

import (
	"time"

	"stockpulse/internal/model"
)

// BucketFunc maps a bar's timestamp to its bucket key.
type BucketFunc func(time.Time) time.Time

// DayBucket aligns a timestamp to its UTC calendar day.
func DayBucket(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Aggregate resamples a canonical series into coarser buckets. Each
// bucket keeps the first record's open, the running max high and min
// low, the last-seen close as the bucket's representative close, the
// summed volume, and an observation count. Input order is preserved:
// the series is already ascending, so buckets come out ascending too.
func Aggregate(ts model.TimeSeries, bucket BucketFunc) model.TimeSeries {
	if len(ts) == 0 {
		return nil
	}
	out := make(model.TimeSeries, 0, len(ts))
	for _, b := range ts {
		key := bucket(b.Date)
		if n := len(out); n > 0 && out[n-1].Date.Equal(key) {
			out[n-1] = merge(out[n-1], b)
			continue
		}
		b.Date = key
		if b.Count == 0 {
			b.Count = 1
		}
		out = append(out, b)
	}
	return out
}

// AggregateDaily buckets an intraday series into daily bars.
func AggregateDaily(ts model.TimeSeries) model.TimeSeries {
	return Aggregate(ts, DayBucket)
}
