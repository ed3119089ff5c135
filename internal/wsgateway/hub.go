// Package wsgateway pushes live price updates to WebSocket clients. The
// hub implements the price feed's listener interface; each poll round
// fans out to connected clients through their subscription filters.
package wsgateway

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mohamedamin/halal-screener/pkg/logger"
)

const (
	writeTimeout = 10 * time.Second
	readTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The REST layer owns origin policy via its CORS middleware; the
	// websocket endpoint accepts the same audience.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub manages WebSocket connections and broadcasts price updates.
type Hub struct {
	connections map[string]*Connection
	connMu      sync.RWMutex

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	running bool
	stats   HubStats
}

// HubStats holds statistics about the hub.
type HubStats struct {
	ConnectionsTotal  int64
	ConnectionsActive int64
	UpdatesBroadcast  int64
	MessagesSent      int64

	mu sync.RWMutex
}

// NewHub creates a WebSocket hub.
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		connections: make(map[string]*Connection),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches the connection health monitor.
func (h *Hub) Start() error {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return nil
	}
	h.running = true
	h.mu.Unlock()

	logger.Info("Starting WebSocket hub")

	h.wg.Add(1)
	go h.monitorConnections()
	return nil
}

// Stop closes all connections and stops the hub.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	logger.Info("Stopping WebSocket hub")
	h.cancel()

	h.connMu.Lock()
	for id, conn := range h.connections {
		delete(h.connections, id)
		conn.Close()
	}
	h.connMu.Unlock()

	h.wg.Wait()
	logger.Info("WebSocket hub stopped")
}

// ServeHTTP upgrades the request and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed", logger.ErrorField(err))
		return
	}
	h.Register(NewConnection(uuid.New().String(), ws))
}

// Register registers a connection and starts its pumps.
func (h *Hub) Register(conn *Connection) {
	h.connMu.Lock()
	h.connections[conn.ID] = conn
	count := len(h.connections)
	h.connMu.Unlock()

	h.stats.mu.Lock()
	h.stats.ConnectionsTotal++
	h.stats.mu.Unlock()

	logger.Info("Connection registered",
		logger.String("connection_id", conn.ID),
		logger.Int("total_connections", count),
	)

	h.wg.Add(2)
	go h.writePump(conn)
	go h.readPump(conn)
}

// Unregister removes and closes a connection.
func (h *Hub) Unregister(conn *Connection) {
	h.connMu.Lock()
	_, present := h.connections[conn.ID]
	delete(h.connections, conn.ID)
	count := len(h.connections)
	h.connMu.Unlock()

	if !present {
		return
	}
	conn.Close()

	logger.Info("Connection unregistered",
		logger.String("connection_id", conn.ID),
		logger.Int("total_connections", count),
	)
}

// OnPrices broadcasts a price batch to every connection, filtered per
// client. Implements the price feed listener.
func (h *Hub) OnPrices(prices map[string]float64) {
	if len(prices) == 0 {
		return
	}

	h.connMu.RLock()
	conns := make([]*Connection, 0, len(h.connections))
	for _, c := range h.connections {
		conns = append(conns, c)
	}
	h.connMu.RUnlock()

	sent := 0
	for _, conn := range conns {
		filtered := conn.FilterPrices(prices)
		if len(filtered) == 0 {
			continue
		}
		if err := conn.SendPrices(filtered); err != nil {
			logger.Debug("Failed to send price update",
				logger.ErrorField(err),
				logger.String("connection_id", conn.ID),
			)
			continue
		}
		sent++
	}

	h.stats.mu.Lock()
	h.stats.UpdatesBroadcast++
	h.stats.MessagesSent += int64(sent)
	h.stats.mu.Unlock()
}

// Count returns the number of active connections.
func (h *Hub) Count() int {
	h.connMu.RLock()
	defer h.connMu.RUnlock()
	return len(h.connections)
}

// GetStats returns hub statistics.
func (h *Hub) GetStats() HubStats {
	h.stats.mu.RLock()
	defer h.stats.mu.RUnlock()
	return HubStats{
		ConnectionsTotal:  h.stats.ConnectionsTotal,
		ConnectionsActive: int64(h.Count()),
		UpdatesBroadcast:  h.stats.UpdatesBroadcast,
		MessagesSent:      h.stats.MessagesSent,
	}
}

// writePump pumps queued messages out to the client and keeps the
// connection alive with pings.
func (h *Hub) writePump(conn *Connection) {
	defer h.wg.Done()
	defer h.Unregister(conn)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return

		case message, ok := <-conn.Send:
			conn.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				conn.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			conn.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump handles inbound subscription messages.
func (h *Hub) readPump(conn *Connection) {
	defer h.wg.Done()
	defer h.Unregister(conn)

	conn.Conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		conn.UpdateLastPong()
		conn.Conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		_, message, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Debug("WebSocket error",
					logger.ErrorField(err),
					logger.String("connection_id", conn.ID),
				)
			}
			break
		}

		var clientMsg ClientMessage
		if err := json.Unmarshal(message, &clientMsg); err != nil {
			conn.SendError("invalid_message", "failed to parse message")
			continue
		}

		switch clientMsg.Action {
		case "subscribe":
			conn.Subscribe(clientMsg.Symbols)
		case "unsubscribe":
			conn.Unsubscribe(clientMsg.Symbols)
		default:
			conn.SendError("unknown_action", "action must be subscribe or unsubscribe")
		}
	}
}

// monitorConnections drops connections whose pongs have gone stale.
func (h *Hub) monitorConnections() {
	defer h.wg.Done()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return

		case <-ticker.C:
			h.connMu.RLock()
			conns := make([]*Connection, 0, len(h.connections))
			for _, c := range h.connections {
				conns = append(conns, c)
			}
			h.connMu.RUnlock()

			now := time.Now()
			for _, conn := range conns {
				if now.Sub(conn.GetLastPong()) > readTimeout*2 {
					logger.Info("Removing stale connection",
						logger.String("connection_id", conn.ID),
						logger.Duration("idle_time", now.Sub(conn.GetLastPong())),
					)
					h.Unregister(conn)
				}
			}
		}
	}
}
