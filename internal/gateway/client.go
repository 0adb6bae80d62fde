package gateway

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Client represents a single WebSocket peer. A client watches one
// symbol at a time (the UI's selected instrument); an empty symbol
// receives every publish.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Hub

	mu     sync.RWMutex
	symbol string
	closed bool
}

// matches reports whether this client wants envelopes for symbol.
func (c *Client) matches(symbol string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.symbol == "" || c.symbol == symbol
}

// enqueue offers a frame to the send buffer. Returns false when the
// buffer is full or the client has been closed. All sends go through
// here: the closed check and the send happen under the same lock that
// closeSend takes, so a hub shutdown can never close the channel
// between the check and the send.
func (c *Client) enqueue(msg []byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel exactly once. Safe to call from
// both RemoveClient and the hub shutdown path.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) sendInitialState() {
	for _, envelope := range c.hub.initialEnvelopes() {
		c.enqueue(envelope)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			// Write coalescing: batch queued envelopes into a single
			// frame with newline separators.
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(msg)
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// selectMsg is the client-to-server control message. Selecting a
// symbol re-enters the indicator pipeline for it; every consumer sees
// the resulting publish.
type selectMsg struct {
	Type   string `json:"type"` // "SELECT"
	Symbol string `json:"symbol"`
}

func (c *Client) readPump() {
	defer func() {
		c.hub.RemoveClient(c)
		c.conn.Close()
		log.Println("[gateway] ws client disconnected")
	}()

	c.conn.SetReadLimit(1024)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var m selectMsg
		if json.Unmarshal(msg, &m) != nil || m.Type != "SELECT" {
			continue
		}
		symbol := strings.ToUpper(strings.TrimSpace(m.Symbol))
		if symbol == "" {
			continue
		}

		c.mu.Lock()
		c.symbol = symbol
		c.mu.Unlock()

		// The sync service publishes on success; the guard drops this
		// response if the client has since selected something else.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if res := c.hub.svc.SyncIndicators(ctx, symbol); !res.Success {
				c.sendError(symbol, res.Error)
			}
		}()
	}
}

func (c *Client) sendError(symbol, msg string) {
	envelope, _ := json.Marshal(map[string]interface{}{
		"symbol": symbol,
		"error":  msg,
		"ts":     time.Now().UTC().Format(time.RFC3339Nano),
	})
	c.enqueue(envelope)
}
