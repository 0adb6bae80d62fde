// Package sync delivers computed indicator sets consistently to every
// subscriber: an observer registry with isolated delivery, a
// generation-based stale-response guard, and a periodic resync job that
// keeps long-lived sessions fresh without user interaction.
package sync

import (
	"log"
	"sort"
	gosync "sync"

	"stockpulse/internal/model"
)

// Callback receives every published IndicatorSet. The set is always
// tagged with the symbol it was computed for.
type Callback func(symbol string, set model.IndicatorSet)

// Registry is the subscriber registry. Subscriptions are keyed by a
// monotonic id so unsubscribe is O(1); delivery walks ids in ascending
// order, which is subscription order.
type Registry struct {
	mu     gosync.Mutex
	subs   map[int64]Callback
	nextID int64

	// Metrics hooks (optional, set externally).
	OnPanic func()
	OnCount func(n int)
}

// NewRegistry creates an empty subscriber registry.
func NewRegistry() *Registry {
	return &Registry{subs: make(map[int64]Callback)}
}

// Subscribe registers a callback and returns its unsubscribe handle.
// The subscription's lifetime is owned by the caller.
func (r *Registry) Subscribe(cb Callback) func() {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.subs[id] = cb
	n := len(r.subs)
	r.mu.Unlock()

	if r.OnCount != nil {
		r.OnCount(n)
	}
	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		n := len(r.subs)
		r.mu.Unlock()
		if r.OnCount != nil {
			r.OnCount(n)
		}
	}
}

// Publish delivers to every currently registered callback in
// subscription order. A panicking subscriber is isolated: it cannot
// block or fail delivery to the others.
func (r *Registry) Publish(symbol string, set model.IndicatorSet) {
	r.mu.Lock()
	ids := make([]int64, 0, len(r.subs))
	for id := range r.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	cbs := make([]Callback, len(ids))
	for i, id := range ids {
		cbs[i] = r.subs[id]
	}
	r.mu.Unlock()

	for i, cb := range cbs {
		r.deliver(ids[i], cb, symbol, set)
	}
}

func (r *Registry) deliver(id int64, cb Callback, symbol string, set model.IndicatorSet) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[sync] subscriber %d panicked: %v", id, rec)
			if r.OnPanic != nil {
				r.OnPanic()
			}
		}
	}()
	cb(symbol, set)
}

// Len returns the number of registered subscribers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}
