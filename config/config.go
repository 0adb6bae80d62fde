package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment
// variables.
type Config struct {
	// Upstream collaborators
	UpstreamURL        string // raw-series + analysis backend base URL
	UpstreamTimeout    time.Duration
	UpstreamRetries    int
	UpstreamRetryWait  time.Duration
	UpstreamSourceName string

	// Freshness windows
	IndicatorTTL time.Duration // per-symbol indicator cache
	SeriesTTL    time.Duration // shared raw-series cache (Redis)

	// Sync
	Timeframe      string
	ResyncInterval time.Duration
	AllowFallback  bool
	DailyBuckets   bool

	// Infrastructure
	RedisAddr     string // empty disables the shared series cache
	RedisPassword string
	HTTPAddr      string
	MetricsAddr   string
	LogLevel      string
}

// Load reads configuration from environment variables with sensible
// defaults.
func Load() *Config {
	return &Config{
		UpstreamURL:        getEnv("UPSTREAM_URL", "http://localhost:5000"),
		UpstreamTimeout:    getDuration("UPSTREAM_TIMEOUT_SEC", 15*time.Second),
		UpstreamRetries:    getInt("UPSTREAM_RETRIES", 2),
		UpstreamRetryWait:  getDuration("UPSTREAM_RETRY_WAIT_SEC", 1*time.Second),
		UpstreamSourceName: getEnv("UPSTREAM_SOURCE_NAME", "yahoo-finance"),

		IndicatorTTL: getDuration("INDICATOR_TTL_SEC", 5*time.Second),
		SeriesTTL:    getDuration("SERIES_TTL_SEC", 60*time.Second),

		Timeframe:      getEnv("TIMEFRAME", "1day"),
		ResyncInterval: getDuration("RESYNC_INTERVAL_SEC", 30*time.Second),
		AllowFallback:  getBool("ALLOW_FALLBACK", true),
		DailyBuckets:   getBool("DAILY_BUCKETS", false),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[config] invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return time.Duration(n) * time.Second
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return b
}
