package fetch

import (
	"context"
	"log/slog"
	"time"

	"stockpulse/internal/model"
	"stockpulse/internal/normalize"
)

// BarCache is the optional shared raw-series freshness cache (Redis in
// production). A nil cache disables sharing.
type BarCache interface {
	Get(ctx context.Context, key string) (model.TimeSeries, bool)
	Set(ctx context.Context, key string, ts model.TimeSeries)
}

// SourceConfig configures series resolution.
type SourceConfig struct {
	SourceName    string // provenance tag for upstream data, e.g. "yahoo-finance"
	AllowFallback bool   // serve synthetic bars when the upstream is down
	FallbackLen   int    // synthetic series length
	DailyBuckets  bool   // aggregate intraday fetches into daily buckets
}

// Source resolves a symbol to a canonical bar series: shared cache
// first, then the upstream raw-series API, then (when allowed) the
// deterministic synthetic fallback. Provenance travels with the series
// so the resulting IndicatorSet can be tagged honestly.
type Source struct {
	client *Client
	cache  BarCache
	cfg    SourceConfig
	log    *slog.Logger
}

// NewSource creates a Source. cache may be nil.
func NewSource(client *Client, cache BarCache, cfg SourceConfig, log *slog.Logger) *Source {
	if cfg.FallbackLen <= 0 {
		cfg.FallbackLen = 130 // roughly six months of daily bars
	}
	return &Source{client: client, cache: cache, cfg: cfg, log: log}
}

// Series returns the canonical series for a symbol and resolved range,
// along with its provenance tag and whether it is synthetic fallback
// data. Validation errors from malformed upstream payloads are returned
// as-is; only transport-level failures trigger the fallback.
func (s *Source) Series(ctx context.Context, symbol string, r normalize.Range) (model.TimeSeries, string, bool, error) {
	key := normalize.CacheKey(symbol, r)
	if s.cache != nil {
		if ts, ok := s.cache.Get(ctx, key); ok {
			return ts, s.cfg.SourceName, false, nil
		}
	}

	raw, err := s.client.Bars(ctx, symbol, r)
	if err != nil {
		if !s.cfg.AllowFallback {
			return nil, "", false, err
		}
		s.log.Warn("raw series fetch failed, serving synthetic fallback",
			slog.String("symbol", symbol), slog.Any("error", err))
		return FallbackBars(symbol, time.Now(), s.cfg.FallbackLen), FallbackSource, true, nil
	}

	ts, err := normalize.Normalize(raw)
	if err != nil {
		return nil, "", false, err
	}
	if s.cfg.DailyBuckets && r.Intraday() {
		ts = normalize.AggregateDaily(ts)
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, ts)
	}
	return ts, s.cfg.SourceName, false, nil
}
