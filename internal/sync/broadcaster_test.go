package sync

import (
	"testing"

	"stockpulse/internal/model"
)

func TestRegistry_PublishInSubscriptionOrder(t *testing.T) {
	r := NewRegistry()
	var order []int
	for i := 0; i < 4; i++ {
		i := i
		r.Subscribe(func(symbol string, set model.IndicatorSet) {
			order = append(order, i)
		})
	}

	r.Publish("AAPL", model.IndicatorSet{Symbol: "AAPL"})

	if len(order) != 4 {
		t.Fatalf("expected 4 deliveries, got %d", len(order))
	}
	for i, got := range order {
		if got != i {
			t.Fatalf("expected subscription order, got %v", order)
		}
	}
}

func TestRegistry_Unsubscribe(t *testing.T) {
	r := NewRegistry()
	var aCalls, bCalls int
	unsubA := r.Subscribe(func(string, model.IndicatorSet) { aCalls++ })
	r.Subscribe(func(string, model.IndicatorSet) { bCalls++ })

	r.Publish("AAPL", model.IndicatorSet{Symbol: "AAPL"})
	unsubA()
	r.Publish("AAPL", model.IndicatorSet{Symbol: "AAPL"})

	if aCalls != 1 {
		t.Errorf("expected unsubscribed callback called once, got %d", aCalls)
	}
	if bCalls != 2 {
		t.Errorf("expected remaining callback called twice, got %d", bCalls)
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 subscriber after unsubscribe, got %d", r.Len())
	}

	// Unsubscribing twice is harmless.
	unsubA()
	if r.Len() != 1 {
		t.Errorf("expected registry unchanged after double unsubscribe, got %d", r.Len())
	}
}

func TestRegistry_PanickingSubscriberIsIsolated(t *testing.T) {
	r := NewRegistry()
	var panics int
	r.OnPanic = func() { panics++ }

	var before, after bool
	r.Subscribe(func(string, model.IndicatorSet) { before = true })
	r.Subscribe(func(string, model.IndicatorSet) { panic("bad subscriber") })
	r.Subscribe(func(string, model.IndicatorSet) { after = true })

	r.Publish("AAPL", model.IndicatorSet{Symbol: "AAPL"})

	if !before || !after {
		t.Errorf("expected delivery around the panicking subscriber, before=%v after=%v", before, after)
	}
	if panics != 1 {
		t.Errorf("expected 1 recorded panic, got %d", panics)
	}
}

func TestRegistry_SubscriberCountHook(t *testing.T) {
	r := NewRegistry()
	var last int
	r.OnCount = func(n int) { last = n }

	unsub := r.Subscribe(func(string, model.IndicatorSet) {})
	if last != 1 {
		t.Errorf("expected count 1 after subscribe, got %d", last)
	}
	unsub()
	if last != 0 {
		t.Errorf("expected count 0 after unsubscribe, got %d", last)
	}
}
