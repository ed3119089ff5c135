package wsgateway

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mohamedamin/halal-screener/pkg/logger"
)

// ClientMessage is what a client may send: subscription management for
// per-symbol price updates.
type ClientMessage struct {
	Action  string   `json:"action"` // "subscribe" or "unsubscribe"
	Symbols []string `json:"symbols"`
}

// Connection represents one WebSocket client.
type Connection struct {
	ID            string
	Conn          *websocket.Conn
	Send          chan []byte
	subscriptions map[string]bool
	mu            sync.RWMutex
	ctx           context.Context
	cancel        context.CancelFunc
	lastPong      time.Time
	createdAt     time.Time
}

// NewConnection wraps an upgraded websocket connection.
func NewConnection(id string, conn *websocket.Conn) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		ID:            id,
		Conn:          conn,
		Send:          make(chan []byte, 256),
		subscriptions: make(map[string]bool),
		ctx:           ctx,
		cancel:        cancel,
		createdAt:     time.Now(),
		lastPong:      time.Now(),
	}
}

// Subscribe adds symbols to the connection's filter.
func (c *Connection) Subscribe(symbols []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range symbols {
		c.subscriptions[s] = true
	}
}

// Unsubscribe removes symbols from the connection's filter.
func (c *Connection) Unsubscribe(symbols []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range symbols {
		delete(c.subscriptions, s)
	}
}

// FilterPrices returns the subset of a price batch this connection
// wants. With no explicit subscriptions the full batch passes through.
func (c *Connection) FilterPrices(prices map[string]float64) map[string]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.subscriptions) == 0 {
		return prices
	}

	out := make(map[string]float64)
	for sym, price := range prices {
		if c.subscriptions[sym] {
			out[sym] = price
		}
	}
	return out
}

// UpdateLastPong updates the last pong time.
func (c *Connection) UpdateLastPong() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastPong = time.Now()
}

// GetLastPong returns the last pong time.
func (c *Connection) GetLastPong() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastPong
}

// Close tears the connection down.
func (c *Connection) Close() {
	c.cancel()
	close(c.Send)
	c.Conn.Close()
}

// SendPrices queues a price-update message. A slow client drops the
// update rather than stalling the feed.
func (c *Connection) SendPrices(prices map[string]float64) error {
	message := map[string]interface{}{
		"type": "price_update",
		"data": prices,
	}

	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	select {
	case c.Send <- data:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	case <-time.After(1 * time.Second):
		logger.Warn("Dropping price update, send channel full",
			logger.String("connection_id", c.ID),
		)
		return nil
	}
}

// SendError queues an error message, dropped silently when the channel
// is full.
func (c *Connection) SendError(code string, message string) error {
	errorMsg := map[string]interface{}{
		"type":    "error",
		"code":    code,
		"message": message,
	}

	data, err := json.Marshal(errorMsg)
	if err != nil {
		return err
	}

	select {
	case c.Send <- data:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		return nil
	}
}
