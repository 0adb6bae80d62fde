// Package cache implements the per-symbol TTL freshness cache with
// in-flight request coalescing. N concurrent callers for the same
// symbol within one freshness window trigger exactly one upstream
// computation; every caller sees the same value or the same error.
//
// Entries expire lazily: an entry stored at t0 with TTL d is treated as
// absent for any read at t0+d or later. No background sweeper.
package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"stockpulse/internal/model"
)

// ComputeFunc performs the fetch + normalize + indicator computation
// for a symbol. Invoked at most once per symbol per freshness window.
type ComputeFunc func(ctx context.Context, symbol string) (model.IndicatorSet, error)

type entry struct {
	set      model.IndicatorSet
	storedAt time.Time
}

// flight is the in-flight marker for one symbol. Result fields are
// written exactly once, before done is closed.
type flight struct {
	done chan struct{}
	set  model.IndicatorSet
	err  error
}

// Cache is the per-symbol freshness cache. All map mutation happens
// under one mutex; the check-then-act around marker creation must be
// atomic or two callers could both start an upstream computation.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	inflight   map[string]*flight
	ttl        time.Duration
	lastUpdate time.Time

	now func() time.Time

	// Metrics hooks (optional, set externally).
	OnHit       func()
	OnMiss      func()
	OnCoalesced func()
	OnForced    func()
}

// New creates a cache with the given freshness TTL.
func New(ttl time.Duration) *Cache {
	return &Cache{
		entries:  make(map[string]entry),
		inflight: make(map[string]*flight),
		ttl:      ttl,
		now:      time.Now,
	}
}

// GetOrCompute returns the fresh cached set for symbol, or awaits the
// in-flight computation, or starts one. Errors are propagated to every
// waiter, never cached, and the next call retries from scratch.
func (c *Cache) GetOrCompute(ctx context.Context, symbol string, fn ComputeFunc) (model.IndicatorSet, error) {
	return c.get(ctx, symbol, fn, false)
}

// ForceCompute bypasses the TTL check (a forced refresh, used by the
// periodic resync) but still goes through the in-flight marker, so a
// forced refresh can never race a concurrent user-triggered fetch.
func (c *Cache) ForceCompute(ctx context.Context, symbol string, fn ComputeFunc) (model.IndicatorSet, error) {
	if c.OnForced != nil {
		c.OnForced()
	}
	return c.get(ctx, symbol, fn, true)
}

func (c *Cache) get(ctx context.Context, symbol string, fn ComputeFunc, force bool) (model.IndicatorSet, error) {
	c.mu.Lock()

	if !force {
		if e, ok := c.entries[symbol]; ok && c.now().Sub(e.storedAt) < c.ttl {
			c.mu.Unlock()
			if c.OnHit != nil {
				c.OnHit()
			}
			return e.set, nil
		}
	}

	if f, ok := c.inflight[symbol]; ok {
		c.mu.Unlock()
		if c.OnCoalesced != nil {
			c.OnCoalesced()
		}
		select {
		case <-f.done:
			return f.set, f.err
		case <-ctx.Done():
			return model.IndicatorSet{}, ctx.Err()
		}
	}

	f := &flight{done: make(chan struct{})}
	c.inflight[symbol] = f
	c.mu.Unlock()

	if c.OnMiss != nil {
		c.OnMiss()
	}

	set, err := fn(ctx, symbol)

	// Clear may have dropped this flight's marker mid-computation and a
	// newer flight may own the slot now. Only the marker's current owner
	// may remove it or store its result; a detached flight still resolves
	// for its own waiters but leaves no trace in the cache.
	c.mu.Lock()
	if cur, ok := c.inflight[symbol]; ok && cur == f {
		delete(c.inflight, symbol)
		if err == nil {
			now := c.now()
			c.entries[symbol] = entry{set: set, storedAt: now}
			c.lastUpdate = now
		}
	}
	c.mu.Unlock()

	f.set, f.err = set, err
	close(f.done)
	return set, err
}

// Clear drops the given symbols' entries and markers, or everything
// when called with no arguments. Waiters on a dropped marker still
// receive that computation's result; only future calls start fresh.
func (c *Cache) Clear(symbols ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(symbols) == 0 {
		c.entries = make(map[string]entry)
		c.inflight = make(map[string]*flight)
		return
	}
	for _, s := range symbols {
		delete(c.entries, s)
		delete(c.inflight, s)
	}
}

// Status reports entry count, cached symbols (expired entries excluded)
// and the last successful update time.
func (c *Cache) Status() model.CacheStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	symbols := make([]string, 0, len(c.entries))
	for s, e := range c.entries {
		if now.Sub(e.storedAt) < c.ttl {
			symbols = append(symbols, s)
		}
	}
	sort.Strings(symbols)
	return model.CacheStatus{
		Size:       len(symbols),
		Symbols:    symbols,
		LastUpdate: c.lastUpdate,
	}
}
