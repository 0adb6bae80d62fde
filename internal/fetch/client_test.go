package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stockpulse/internal/normalize"
)

func testClient(baseURL string) *Client {
	return NewClient(ClientConfig{BaseURL: baseURL, Timeout: 2 * time.Second})
}

func TestClient_Bars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/stock_data/AAPL" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("period"); got != "1y" {
			t.Errorf("expected period 1y, got %q", got)
		}
		if got := r.URL.Query().Get("interval"); got != "1d" {
			t.Errorf("expected interval 1d, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"symbol": "AAPL",
			"data": []map[string]interface{}{
				{"date": "2024-01-02", "open": 185.1, "high": 186.0, "low": 184.2, "close": 185.6, "volume": 1200000},
				{"date": "2024-01-03", "open": 185.6, "high": 187.3, "low": 185.0, "close": 186.9, "volume": 900000},
			},
		})
	}))
	defer srv.Close()

	raw, err := testClient(srv.URL).Bars(context.Background(), "AAPL", normalize.Range{Period: "1y", Interval: "1d"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(raw) != 2 {
		t.Fatalf("expected 2 records, got %d", len(raw))
	}
	if raw[0].Date != "2024-01-02" || raw[0].Close.String() != "185.6" {
		t.Errorf("unexpected first record: %+v", raw[0])
	}
}

func TestClient_BarsUpstreamStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Bars(context.Background(), "AAPL", normalize.Range{Period: "1y", Interval: "1d"})
	var uerr *UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected *UpstreamError, got %T (%v)", err, err)
	}
	if uerr.Op != "stock_data" {
		t.Errorf("expected op stock_data, got %q", uerr.Op)
	}
}

func TestClient_BarsPayloadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"error": "unknown symbol"})
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Bars(context.Background(), "NOPE", normalize.Range{Period: "1y", Interval: "1d"})
	if err == nil {
		t.Fatal("expected error for payload-level failure")
	}
}

func TestClient_BarsEmptySeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"symbol": "AAPL", "data": []interface{}{}})
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Bars(context.Background(), "AAPL", normalize.Range{Period: "1y", Interval: "1d"})
	if err == nil {
		t.Fatal("expected error for empty series")
	}
}

func TestClient_Predict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/predict" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Symbol string `json:"symbol"`
			Days   int    `json:"days"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.Symbol != "AAPL" || body.Days != 5 {
			t.Errorf("unexpected request body: %+v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Prediction{
			Symbol:           "AAPL",
			CurrentPrice:     185.6,
			Signal:           1,
			SignalConfidence: 0.7,
			Predictions: []PredictedPoint{
				{Day: 1, PredictedPrice: 186.2, Confidence: 0.9},
			},
			ModelType: "lstm",
		})
	}))
	defer srv.Close()

	p, err := testClient(srv.URL).Predict(context.Background(), "AAPL", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Signal != 1 || len(p.Predictions) != 1 {
		t.Errorf("unexpected prediction: %+v", p)
	}
}

func TestClient_UnreachableHost(t *testing.T) {
	c := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond})
	_, err := c.Bars(context.Background(), "AAPL", normalize.Range{Period: "1y", Interval: "1d"})
	var uerr *UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected *UpstreamError, got %T (%v)", err, err)
	}
}
