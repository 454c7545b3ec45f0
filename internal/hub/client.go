package hub

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/dispatch/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBufferSize = 64
)

// Envelope is the wire frame in both directions: an event name plus a
// JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// EventHandler receives the connection lifecycle and every inbound frame.
type EventHandler interface {
	HandleConnect(c Conn, role string)
	HandleEvent(c Conn, event string, data json.RawMessage)
	HandleDisconnect(c Conn)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Network policy is the deployment's business, not the relay's.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Client pumps one websocket connection. Outbound frames go through a
// buffered channel so sends stay FIFO per connection and never block the
// sender; when the buffer is full the frame is dropped.
type Client struct {
	conn   *websocket.Conn
	logger *zap.Logger

	mu     sync.Mutex
	send   chan Envelope
	closed bool
}

// ServeWS upgrades the request and runs the connection until it drops.
// The role query parameter classifies the connection; anything but "admin"
// is an unprivileged guest.
func ServeWS(handler EventHandler, logger *zap.Logger, w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	role := r.URL.Query().Get("role")
	if role == "" {
		role = "guest"
	}

	client := &Client{
		conn:   ws,
		logger: logger,
		send:   make(chan Envelope, sendBufferSize),
	}

	metrics.ActiveConnections.Inc()
	logger.Info("client connected", zap.String("role", role), zap.String("remote", ws.RemoteAddr().String()))

	go client.writePump()
	handler.HandleConnect(client, role)
	client.readPump(handler)
}

// Send marshals the payload and queues the frame. Safe to call from any
// goroutine, including after the connection has died.
func (c *Client) Send(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("marshal outbound payload", zap.String("event", event), zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- Envelope{Event: event, Data: data}:
	default:
		c.logger.Warn("send buffer full, dropping frame", zap.String("event", event))
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) readPump(handler EventHandler) {
	defer func() {
		handler.HandleDisconnect(c)
		c.close()
		_ = c.conn.Close()
		metrics.ActiveConnections.Dec()
		c.logger.Info("client disconnected", zap.String("remote", c.conn.RemoteAddr().String()))
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("read failed", zap.Error(err))
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil || env.Event == "" {
			// Malformed frames never take the connection down.
			c.logger.Debug("dropping malformed frame", zap.Error(err))
			continue
		}

		handler.HandleEvent(c, env.Event, env.Data)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
