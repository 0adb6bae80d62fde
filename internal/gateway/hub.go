// Package gateway fans computed indicator sets out to WebSocket
// consumers. Every connected UI sees the same envelope for the same
// symbol at the same moment; per-client symbol filtering happens at
// send time, and a slow client drops frames instead of blocking the
// fan-out.
package gateway

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"stockpulse/internal/model"
)

// Syncer is the slice of the sync service the gateway needs.
type Syncer interface {
	Subscribe(cb func(symbol string, set model.IndicatorSet)) func()
	SyncIndicators(ctx context.Context, symbol string) model.Result
}

type latestEntry struct {
	envelope []byte
	ts       time.Time
}

// Hub manages WebSocket clients and bridges them to the sync service.
type Hub struct {
	svc Syncer

	mu      sync.RWMutex
	clients map[*Client]bool
	latest  map[string]latestEntry // per symbol, for initial state on connect
	seq     int64

	upgrader websocket.Upgrader

	// Metrics hooks (optional, set externally).
	OnClients func(n int)
	OnDrop    func()
}

// NewHub creates a Hub bridging the given sync service.
func NewHub(svc Syncer) *Hub {
	return &Hub{
		svc:     svc,
		clients: make(map[*Client]bool),
		latest:  make(map[string]latestEntry),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The REST surface is the place for origin policy; the
			// socket mirrors it.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Run subscribes the hub to the sync service and blocks until ctx is
// cancelled, then detaches and closes every client.
func (h *Hub) Run(ctx context.Context) {
	unsub := h.svc.Subscribe(h.broadcast)
	<-ctx.Done()
	unsub()

	h.mu.Lock()
	for c := range h.clients {
		c.closeSend()
		delete(h.clients, c)
	}
	h.mu.Unlock()
}

// broadcast builds the wire envelope for one publish and fans it out
// to every client subscribed to the symbol.
func (h *Hub) broadcast(symbol string, set model.IndicatorSet) {
	data := set.JSON()
	now := time.Now().UTC()

	h.mu.Lock()
	h.seq++
	seq := h.seq

	buf := make([]byte, 0, len(symbol)+len(data)+96)
	buf = append(buf, `{"symbol":"`...)
	buf = append(buf, symbol...)
	buf = append(buf, `","data":`...)
	buf = append(buf, data...)
	buf = append(buf, `,"ts":"`...)
	buf = now.AppendFormat(buf, time.RFC3339Nano)
	buf = append(buf, `","seq":`...)
	buf = strconv.AppendInt(buf, seq, 10)
	buf = append(buf, '}')

	h.latest[symbol] = latestEntry{envelope: buf, ts: now}
	h.mu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if !client.matches(symbol) {
			continue
		}
		if !client.enqueue(buf) {
			if h.OnDrop != nil {
				h.OnDrop()
			} else {
				log.Printf("[gateway] client send buffer full, dropping frame for %s", symbol)
			}
		}
	}
}

// ServeWS upgrades an HTTP request to a WebSocket client.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[gateway] upgrade: %v", err)
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, 256),
		hub:  h,
	}
	h.addClient(client)
	client.sendInitialState()

	go client.writePump()
	go client.readPump()
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()
	if h.OnClients != nil {
		h.OnClients(n)
	}
	log.Printf("[gateway] ws client connected (%d total)", n)
}

// RemoveClient unregisters a client after its read pump exits.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	c.closeSend()
	n := len(h.clients)
	h.mu.Unlock()
	if h.OnClients != nil {
		h.OnClients(n)
	}
}

// initialEnvelopes snapshots the latest envelope per symbol so a new
// client starts from the currently displayed state.
func (h *Hub) initialEnvelopes() [][]byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([][]byte, 0, len(h.latest))
	for _, entry := range h.latest {
		out = append(out, entry.envelope)
	}
	return out
}
