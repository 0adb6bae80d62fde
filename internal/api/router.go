// Package api provides the REST surface over the sync service.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"stockpulse/internal/model"
)

// Service is the slice of the sync service the API needs.
type Service interface {
	GetRealTimeIndicators(ctx context.Context, symbol string) model.Result
	SyncIndicators(ctx context.Context, symbol string) model.Result
	ClearCache(symbols ...string)
	CacheStatus() model.CacheStatus
}

// NewRouter sets up HTTP routes for the API server. wsHandler serves
// the WebSocket upgrade and may be nil.
func NewRouter(svc Service, wsHandler http.HandlerFunc) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	// GET /api/indicators/{symbol}
	mux.HandleFunc("/api/indicators/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "GET only", http.StatusMethodNotAllowed)
			return
		}
		symbol := strings.TrimPrefix(r.URL.Path, "/api/indicators/")
		res := svc.GetRealTimeIndicators(r.Context(), symbol)
		writeResult(w, res)
	})

	// POST /api/sync/{symbol}, which also publishes to all subscribers.
	mux.HandleFunc("/api/sync/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST only", http.StatusMethodNotAllowed)
			return
		}
		symbol := strings.TrimPrefix(r.URL.Path, "/api/sync/")
		res := svc.SyncIndicators(r.Context(), symbol)
		writeResult(w, res)
	})

	// GET /api/cache/status, DELETE /api/cache?symbol=X
	mux.HandleFunc("/api/cache/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "GET only", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, svc.CacheStatus())
	})
	mux.HandleFunc("/api/cache", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.Error(w, "DELETE only", http.StatusMethodNotAllowed)
			return
		}
		if symbol := r.URL.Query().Get("symbol"); symbol != "" {
			svc.ClearCache(symbol)
		} else {
			svc.ClearCache()
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if wsHandler != nil {
		mux.HandleFunc("/ws", wsHandler)
	}

	return mux
}

func writeResult(w http.ResponseWriter, res model.Result) {
	code := http.StatusOK
	if !res.Success {
		code = http.StatusBadGateway
	}
	writeJSON(w, code, res)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
