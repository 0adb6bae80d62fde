package sync

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	gosync "sync"
	"time"

	"github.com/robfig/cron/v3"

	"stockpulse/internal/cache"
	"stockpulse/internal/indicator"
	"stockpulse/internal/metrics"
	"stockpulse/internal/model"
	"stockpulse/internal/normalize"
)

// SeriesSource resolves a symbol to its canonical bar series, with
// provenance. Satisfied by fetch.Source.
type SeriesSource interface {
	Series(ctx context.Context, symbol string, r normalize.Range) (model.TimeSeries, string, bool, error)
}

// Config configures the sync service.
type Config struct {
	Timeframe      string        // e.g. "1day"
	ResyncInterval time.Duration // forced refresh period for the active symbol
}

// Service orchestrates the pipeline: raw bars, normalizer, indicator
// engine, freshness cache, subscriber registry. It is an explicitly
// constructed instance with a Run/Close lifecycle, injected into its
// consumers; there is no package-level shared state.
type Service struct {
	log      *slog.Logger
	cache    *cache.Cache
	source   SeriesSource
	registry *Registry
	rng      normalize.Range
	resync   time.Duration

	// Stale-response guard. Every symbol selection increments the
	// generation; a computation that finishes under an older generation
	// is returned to its direct caller but never published.
	mu         gosync.Mutex
	activeSym  string
	generation int64

	cron *cron.Cron

	// Metrics hooks, nil unless wired by New.
	onPublish    func()
	onStale      func()
	onCompute    func()
	onComputeErr func()
	observeDur   func(seconds float64)
}

// New creates a sync service. prom may be nil (tests).
func New(cfg Config, source SeriesSource, c *cache.Cache, reg *Registry, log *slog.Logger, prom *metrics.Metrics) (*Service, error) {
	if cfg.Timeframe == "" {
		cfg.Timeframe = "1day"
	}
	rng, err := normalize.RangeForTimeframe(cfg.Timeframe)
	if err != nil {
		return nil, err
	}
	if cfg.ResyncInterval <= 0 {
		cfg.ResyncInterval = 30 * time.Second
	}

	s := &Service{
		log:      log,
		cache:    c,
		source:   source,
		registry: reg,
		rng:      rng,
		resync:   cfg.ResyncInterval,
	}
	if prom != nil {
		c.OnHit = prom.CacheHits.Inc
		c.OnMiss = prom.CacheMisses.Inc
		c.OnCoalesced = prom.CoalescedWaiters.Inc
		c.OnForced = prom.ForcedRefreshes.Inc
		reg.OnPanic = prom.SubscriberPanic.Inc
		reg.OnCount = func(n int) { prom.Subscribers.Set(float64(n)) }
		s.onPublish = prom.PublishesTotal.Inc
		s.onStale = prom.StaleDiscarded.Inc
		s.onCompute = prom.ComputeTotal.Inc
		s.onComputeErr = prom.ComputeErrors.Inc
		s.observeDur = prom.ComputeDur.Observe
	}
	return s, nil
}

// Subscribe registers a consumer callback and returns its unsubscribe
// handle. The signature is spelled out so consumers can depend on a
// local interface without importing this package.
func (s *Service) Subscribe(cb func(symbol string, set model.IndicatorSet)) func() {
	return s.registry.Subscribe(cb)
}

// compute is the ComputeFunc handed to the freshness cache: fetch the
// raw series, normalize, run the indicator engine, tag provenance.
func (s *Service) compute(ctx context.Context, symbol string) (model.IndicatorSet, error) {
	if s.onCompute != nil {
		s.onCompute()
	}
	start := time.Now()

	ts, src, fallback, err := s.source.Series(ctx, symbol, s.rng)
	if err != nil {
		if s.onComputeErr != nil {
			s.onComputeErr()
		}
		return model.IndicatorSet{}, err
	}

	set := indicator.Compute(symbol, ts)
	set.Source = src
	set.Fallback = fallback

	if s.observeDur != nil {
		s.observeDur(time.Since(start).Seconds())
	}
	return set, nil
}

// GetRealTimeIndicators returns the indicator set for a symbol through
// the freshness cache. It does not publish and does not move the
// active-symbol generation.
func (s *Service) GetRealTimeIndicators(ctx context.Context, symbol string) model.Result {
	symbol, err := canonSymbol(symbol)
	if err != nil {
		return model.Result{Success: false, Error: err.Error()}
	}
	set, err := s.cache.GetOrCompute(ctx, symbol, s.compute)
	if err != nil {
		return model.Result{Success: false, Error: err.Error()}
	}
	return model.Result{Success: true, Data: &set}
}

// SyncIndicators selects a symbol, computes (or joins) its indicator
// set, and publishes it to every subscriber. If another symbol is
// selected before this computation completes, the result is returned
// to the direct caller but discarded by the stale-response guard and
// never published.
func (s *Service) SyncIndicators(ctx context.Context, symbol string) model.Result {
	symbol, err := canonSymbol(symbol)
	if err != nil {
		return model.Result{Success: false, Error: err.Error()}
	}

	gen := s.selectSymbol(symbol)
	set, err := s.cache.GetOrCompute(ctx, symbol, s.compute)
	if err != nil {
		return model.Result{Success: false, Error: err.Error()}
	}

	if !s.current(gen) {
		if s.onStale != nil {
			s.onStale()
		}
		s.log.Debug("stale response discarded",
			slog.String("symbol", symbol), slog.Int64("generation", gen))
		return model.Result{Success: true, Data: &set}
	}

	s.publish(symbol, set)
	return model.Result{Success: true, Data: &set}
}

// ClearCache drops one symbol's cache entry and marker, or all of them.
func (s *Service) ClearCache(symbols ...string) {
	for i, sym := range symbols {
		if c, err := canonSymbol(sym); err == nil {
			symbols[i] = c
		}
	}
	s.cache.Clear(symbols...)
}

// CacheStatus reports the freshness cache contents.
func (s *Service) CacheStatus() model.CacheStatus {
	return s.cache.Status()
}

// Run starts the periodic resync job and blocks until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	s.cron = cron.New()
	spec := fmt.Sprintf("@every %ds", int(s.resync.Seconds()))
	if _, err := s.cron.AddFunc(spec, func() { s.resyncActive(ctx) }); err != nil {
		return fmt.Errorf("register resync job: %w", err)
	}
	s.cron.Start()
	s.log.Info("sync service running",
		slog.String("timeframe", s.rng.Interval), slog.Duration("resync", s.resync))

	<-ctx.Done()
	s.cron.Stop()
	return nil
}

// resyncActive force-refreshes the currently active symbol. The forced
// refresh bypasses the cache TTL deliberately but still goes through
// the in-flight marker, so it cannot race a user-triggered fetch. It
// does not advance the generation: a refresh is not a new selection.
func (s *Service) resyncActive(ctx context.Context) {
	s.mu.Lock()
	symbol, gen := s.activeSym, s.generation
	s.mu.Unlock()
	if symbol == "" {
		return
	}

	set, err := s.cache.ForceCompute(ctx, symbol, s.compute)
	if err != nil {
		s.log.Warn("resync failed", slog.String("symbol", symbol), slog.Any("error", err))
		return
	}
	if !s.current(gen) {
		if s.onStale != nil {
			s.onStale()
		}
		return
	}
	s.publish(symbol, set)
}

func (s *Service) publish(symbol string, set model.IndicatorSet) {
	if set.Symbol != symbol {
		// A set must never be delivered under a different symbol.
		s.log.Error("symbol mismatch, publish suppressed",
			slog.String("want", symbol), slog.String("got", set.Symbol))
		return
	}
	s.registry.Publish(symbol, set)
	if s.onPublish != nil {
		s.onPublish()
	}
}

// selectSymbol records a new symbol selection and returns its generation.
func (s *Service) selectSymbol(symbol string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.activeSym = symbol
	return s.generation
}

func (s *Service) current(gen int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.generation
}

func canonSymbol(symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return "", fmt.Errorf("sync: empty symbol")
	}
	return symbol, nil
}
