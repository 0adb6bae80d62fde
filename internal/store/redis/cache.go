// Package redis provides an optional shared freshness cache for raw bar
// series. Multiple service instances pointed at the same Redis see the
// same upstream responses within the raw-series TTL, which keeps their
// indicator outputs identical without extra upstream traffic. This is a
// freshness window only; entries expire and nothing is ever backfilled
// from here.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"stockpulse/internal/model"
)

// Config configures the bar cache.
type Config struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int
	TTL      time.Duration // raw-series freshness window
}

// Cache stores canonical bar series as JSON values with a TTL.
type Cache struct {
	client *goredis.Client
	ttl    time.Duration
}

// New creates a bar cache and pings the server.
func New(cfg Config) (*Cache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Cache{client: client, ttl: cfg.TTL}, nil
}

// Get returns the cached series for key, or ok=false on a miss. Redis
// errors degrade to a miss so an unhealthy Redis never blocks a fetch.
func (c *Cache) Get(ctx context.Context, key string) (model.TimeSeries, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false
	}
	if err != nil {
		log.Printf("[redis] get %s: %v", key, err)
		return nil, false
	}
	var ts model.TimeSeries
	if err := json.Unmarshal(raw, &ts); err != nil {
		log.Printf("[redis] unmarshal %s: %v", key, err)
		return nil, false
	}
	return ts, true
}

// Set stores a series under key with the configured TTL. Best effort:
// failures are logged and the caller proceeds with its local copy.
func (c *Cache) Set(ctx context.Context, key string, ts model.TimeSeries) {
	raw, err := json.Marshal(ts)
	if err != nil {
		log.Printf("[redis] marshal %s: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		log.Printf("[redis] set %s: %v", key, err)
	}
}

// Close releases the underlying client.
func (c *Cache) Close() error {
	return c.client.Close()
}
