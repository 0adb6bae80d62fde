package metrics

import (
	"context"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the indicator sync core.
type Metrics struct {
	// Freshness cache
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	CoalescedWaiters prometheus.Counter
	ForcedRefreshes  prometheus.Counter

	// Upstream fetch + compute
	ComputeTotal  prometheus.Counter
	ComputeErrors prometheus.Counter
	ComputeDur    prometheus.Histogram

	// Sync broadcaster
	PublishesTotal  prometheus.Counter
	StaleDiscarded  prometheus.Counter
	SubscriberPanic prometheus.Counter
	Subscribers     prometheus.Gauge

	// WebSocket gateway
	WSClients       prometheus.Gauge
	WSDroppedFrames prometheus.Counter
}

// New registers and returns all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "indsync_cache_hits_total",
			Help: "Indicator cache reads served from a fresh entry",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "indsync_cache_misses_total",
			Help: "Indicator cache reads that triggered or joined a computation",
		}),
		CoalescedWaiters: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "indsync_coalesced_waiters_total",
			Help: "Callers that awaited an already in-flight computation",
		}),
		ForcedRefreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "indsync_forced_refreshes_total",
			Help: "Resync-triggered computations that bypassed the TTL",
		}),
		ComputeTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "indsync_compute_total",
			Help: "Upstream fetch+compute invocations",
		}),
		ComputeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "indsync_compute_errors_total",
			Help: "Upstream fetch+compute failures propagated to waiters",
		}),
		ComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "indsync_compute_duration_seconds",
			Help:    "Fetch + normalize + indicator computation latency",
			Buckets: prometheus.DefBuckets,
		}),
		PublishesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "indsync_publishes_total",
			Help: "IndicatorSets delivered to the subscriber registry",
		}),
		StaleDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "indsync_stale_discarded_total",
			Help: "Responses discarded by the stale-response guard",
		}),
		SubscriberPanic: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "indsync_subscriber_panics_total",
			Help: "Subscriber callbacks that panicked during delivery",
		}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "indsync_subscribers",
			Help: "Currently registered subscribers",
		}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "indsync_ws_clients",
			Help: "Connected WebSocket clients",
		}),
		WSDroppedFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "indsync_ws_dropped_frames_total",
			Help: "Frames dropped for slow WebSocket clients",
		}),
	}

	prometheus.MustRegister(
		m.CacheHits,
		m.CacheMisses,
		m.CoalescedWaiters,
		m.ForcedRefreshes,
		m.ComputeTotal,
		m.ComputeErrors,
		m.ComputeDur,
		m.PublishesTotal,
		m.StaleDiscarded,
		m.SubscriberPanic,
		m.Subscribers,
		m.WSClients,
		m.WSDroppedFrames,
	)

	return m
}

// Server runs an HTTP server exposing /metrics.
type Server struct {
	srv *http.Server
}

// NewServer creates the metrics server.
func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &Server{srv: &http.Server{Addr: addr, Handler: mux}}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
