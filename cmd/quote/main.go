// Command quote fetches one symbol's bars, computes the indicator set
// and prints it as JSON. With -predict it asks the analysis backend for
// a forecast instead. Useful for eyeballing upstream data without
// running the full service.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"stockpulse/config"
	"stockpulse/internal/fetch"
	"stockpulse/internal/indicator"
	"stockpulse/internal/logger"
	"stockpulse/internal/normalize"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	tf := flag.String("tf", cfg.Timeframe, "timeframe (1min..1month)")
	predictDays := flag.Int("predict", 0, "request an N-day forecast instead of indicators")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: quote [-tf 1day] [-predict N] SYMBOL")
		os.Exit(2)
	}
	symbol := flag.Arg(0)

	lg := logger.Init("quote", logger.ParseLevel(cfg.LogLevel))
	client := fetch.NewClient(fetch.ClientConfig{
		BaseURL:    cfg.UpstreamURL,
		Timeout:    cfg.UpstreamTimeout,
		RetryCount: cfg.UpstreamRetries,
		RetryWait:  cfg.UpstreamRetryWait,
	})

	if *predictDays > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		p, err := client.Predict(ctx, symbol, *predictDays)
		if err != nil {
			log.Fatalf("[quote] predict %s: %v", symbol, err)
		}
		printJSON(p)
		return
	}

	rng, err := normalize.RangeForTimeframe(*tf)
	if err != nil {
		log.Fatalf("[quote] %v", err)
	}
	source := fetch.NewSource(client, nil, fetch.SourceConfig{
		SourceName:    cfg.UpstreamSourceName,
		AllowFallback: cfg.AllowFallback,
		DailyBuckets:  cfg.DailyBuckets,
	}, lg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ts, src, fallback, err := source.Series(ctx, symbol, rng)
	if err != nil {
		log.Fatalf("[quote] fetch %s: %v", symbol, err)
	}

	set := indicator.Compute(symbol, ts)
	set.Source = src
	set.Fallback = fallback
	printJSON(set)
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
