// Package fetch talks to the two external collaborators: the raw-series
// API that serves unprocessed OHLCV bars and the analysis backend that
// serves model forecasts. Both are opaque remote calls with their own
// retry policy; everything downstream only sees canonical series or a
// typed UpstreamError.
package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"stockpulse/internal/normalize"
)

// UpstreamError wraps a raw-series or analysis backend failure. It is
// propagated to every waiter of the corresponding in-flight computation
// and is always safe to retry.
type UpstreamError struct {
	Op  string // "stock_data", "predict"
	Err error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("upstream %s: %v", e.Op, e.Err) }
func (e *UpstreamError) Unwrap() error { return e.Err }

// ClientConfig configures the upstream HTTP client.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	RetryWait  time.Duration
}

// Client is a resty-backed client for the upstream REST API.
type Client struct {
	http *resty.Client
}

// NewClient creates a client with timeout and retry policy applied.
func NewClient(cfg ClientConfig) *Client {
	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWait)
	return &Client{http: c}
}

// stockDataResponse mirrors the upstream /api/stock_data payload.
type stockDataResponse struct {
	Symbol string             `json:"symbol"`
	Data   []normalize.RawBar `json:"data"`
	Error  string             `json:"error,omitempty"`
}

// Bars fetches the raw bar records for a symbol over the resolved
// period/interval pair. Records come back unvalidated; callers run
// them through normalize.Normalize.
func (c *Client) Bars(ctx context.Context, symbol string, r normalize.Range) ([]normalize.RawBar, error) {
	var out stockDataResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"period":   r.Period,
			"interval": r.Interval,
		}).
		SetResult(&out).
		Get("/api/stock_data/" + symbol)
	if err != nil {
		return nil, &UpstreamError{Op: "stock_data", Err: err}
	}
	if resp.IsError() {
		return nil, &UpstreamError{Op: "stock_data", Err: fmt.Errorf("status %d", resp.StatusCode())}
	}
	if out.Error != "" {
		return nil, &UpstreamError{Op: "stock_data", Err: fmt.Errorf("%s", out.Error)}
	}
	if len(out.Data) == 0 {
		return nil, &UpstreamError{Op: "stock_data", Err: fmt.Errorf("empty series for %s", symbol)}
	}
	return out.Data, nil
}

// PredictedPoint is one day of the upstream forecast.
type PredictedPoint struct {
	Day            int     `json:"day"`
	PredictedPrice float64 `json:"predicted_price"`
	Confidence     float64 `json:"confidence"`
}

// Prediction mirrors the analysis backend's /api/predict payload.
type Prediction struct {
	Symbol           string           `json:"symbol"`
	CurrentPrice     float64          `json:"current_price"`
	Signal           int              `json:"signal"` // 1 buy, -1 sell, 0 hold
	SignalConfidence float64          `json:"signal_confidence"`
	Predictions      []PredictedPoint `json:"predictions"`
	ModelType        string           `json:"model_type"`
	Timestamp        string           `json:"timestamp"`
	Error            string           `json:"error,omitempty"`
}

// Predict requests a forecast from the analysis backend.
func (c *Client) Predict(ctx context.Context, symbol string, days int) (*Prediction, error) {
	var out Prediction
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{"symbol": symbol, "days": days}).
		SetResult(&out).
		Post("/api/predict")
	if err != nil {
		return nil, &UpstreamError{Op: "predict", Err: err}
	}
	if resp.IsError() {
		return nil, &UpstreamError{Op: "predict", Err: fmt.Errorf("status %d", resp.StatusCode())}
	}
	if out.Error != "" {
		return nil, &UpstreamError{Op: "predict", Err: fmt.Errorf("%s", out.Error)}
	}
	return &out, nil
}
