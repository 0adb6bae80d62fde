package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stockpulse/config"
	"stockpulse/internal/api"
	"stockpulse/internal/cache"
	"stockpulse/internal/fetch"
	"stockpulse/internal/gateway"
	"stockpulse/internal/logger"
	"stockpulse/internal/metrics"
	redisstore "stockpulse/internal/store/redis"
	syncsvc "stockpulse/internal/sync"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	godotenv.Load()

	cfg := config.Load()
	lg := logger.Init("indsyncd", logger.ParseLevel(cfg.LogLevel))
	prom := metrics.New()

	client := fetch.NewClient(fetch.ClientConfig{
		BaseURL:    cfg.UpstreamURL,
		Timeout:    cfg.UpstreamTimeout,
		RetryCount: cfg.UpstreamRetries,
		RetryWait:  cfg.UpstreamRetryWait,
	})

	var barCache fetch.BarCache
	if cfg.RedisAddr != "" {
		rc, err := redisstore.New(redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			TTL:      cfg.SeriesTTL,
		})
		if err != nil {
			log.Printf("[indsyncd] WARNING: redis unavailable: %v (continuing without shared series cache)", err)
		} else {
			barCache = rc
			defer rc.Close()
		}
	}

	source := fetch.NewSource(client, barCache, fetch.SourceConfig{
		SourceName:    cfg.UpstreamSourceName,
		AllowFallback: cfg.AllowFallback,
		DailyBuckets:  cfg.DailyBuckets,
	}, lg)

	svc, err := syncsvc.New(syncsvc.Config{
		Timeframe:      cfg.Timeframe,
		ResyncInterval: cfg.ResyncInterval,
	}, source, cache.New(cfg.IndicatorTTL), syncsvc.NewRegistry(), lg, prom)
	if err != nil {
		log.Fatalf("[indsyncd] init failed: %v", err)
	}

	hub := gateway.NewHub(svc)
	hub.OnClients = func(n int) { prom.WSClients.Set(float64(n)) }
	hub.OnDrop = prom.WSDroppedFrames.Inc

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: api.NewRouter(svc, hub.ServeWS)}
	metricsSrv := metrics.NewServer(cfg.MetricsAddr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	go hub.Run(ctx)
	metricsSrv.Start()
	go func() {
		log.Printf("[indsyncd] HTTP server on %s (/api, /ws)", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[indsyncd] HTTP server error: %v", err)
		}
	}()

	// Blocks until signal; Run owns the resync scheduler.
	if err := svc.Run(ctx); err != nil {
		log.Fatalf("[indsyncd] fatal: %v", err)
	}

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutCancel()
	httpSrv.Shutdown(shutCtx)
	metricsSrv.Stop(shutCtx)
	log.Println("[indsyncd] shutdown complete.")
}
