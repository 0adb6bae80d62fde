package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"stockpulse/internal/model"
)

type fakeService struct {
	realTime func(symbol string) model.Result
	synced   []string
	cleared  [][]string
}

func (f *fakeService) GetRealTimeIndicators(ctx context.Context, symbol string) model.Result {
	if f.realTime != nil {
		return f.realTime(symbol)
	}
	return model.Result{Success: true, Data: &model.IndicatorSet{Symbol: symbol}}
}

func (f *fakeService) SyncIndicators(ctx context.Context, symbol string) model.Result {
	f.synced = append(f.synced, symbol)
	return model.Result{Success: true, Data: &model.IndicatorSet{Symbol: symbol}}
}

func (f *fakeService) ClearCache(symbols ...string) {
	f.cleared = append(f.cleared, symbols)
}

func (f *fakeService) CacheStatus() model.CacheStatus {
	return model.CacheStatus{Size: 1, Symbols: []string{"AAPL"}}
}

func TestHealthEndpoint(t *testing.T) {
	srv := httptest.NewServer(NewRouter(&fakeService{}, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestIndicatorsEndpoint(t *testing.T) {
	srv := httptest.NewServer(NewRouter(&fakeService{}, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/indicators/AAPL")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var res model.Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Success || res.Data == nil || res.Data.Symbol != "AAPL" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestIndicatorsEndpoint_UpstreamFailure(t *testing.T) {
	svc := &fakeService{
		realTime: func(symbol string) model.Result {
			return model.Result{Success: false, Error: "upstream stock_data: status 502"}
		},
	}
	srv := httptest.NewServer(NewRouter(svc, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/indicators/AAPL")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
	var res model.Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Success || res.Error == "" {
		t.Errorf("expected error result, got %+v", res)
	}
}

func TestSyncEndpoint(t *testing.T) {
	svc := &fakeService{}
	srv := httptest.NewServer(NewRouter(svc, nil))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/sync/MSFT", "application/json", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(svc.synced) != 1 || svc.synced[0] != "MSFT" {
		t.Errorf("expected MSFT synced, got %v", svc.synced)
	}

	// GET is not allowed on the sync route.
	resp, err = http.Get(srv.URL + "/api/sync/MSFT")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for GET, got %d", resp.StatusCode)
	}
}

func TestCacheEndpoints(t *testing.T) {
	svc := &fakeService{}
	srv := httptest.NewServer(NewRouter(svc, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/cache/status")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	var st model.CacheStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Size != 1 || len(st.Symbols) != 1 {
		t.Errorf("unexpected status: %+v", st)
	}

	// Only GET is allowed on the status route.
	respPost, err := http.Post(srv.URL+"/api/cache/status", "application/json", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	respPost.Body.Close()
	if respPost.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for POST on status, got %d", respPost.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/cache?symbol=AAPL", nil)
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp2.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodDelete, srv.URL+"/api/cache", nil)
	resp3, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp3.Body.Close()

	if len(svc.cleared) != 2 {
		t.Fatalf("expected 2 clear calls, got %d", len(svc.cleared))
	}
	if len(svc.cleared[0]) != 1 || svc.cleared[0][0] != "AAPL" {
		t.Errorf("expected targeted clear for AAPL, got %v", svc.cleared[0])
	}
	if len(svc.cleared[1]) != 0 {
		t.Errorf("expected full clear, got %v", svc.cleared[1])
	}
}
