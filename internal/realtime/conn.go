package realtime

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/markb/sareeone/internal/log"
	"golang.org/x/time/rate"
)

const (
	// Time allowed to write a message
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message
	pongWait = 60 * time.Second

	// Send pings with this period (must be less than pongWait)
	pingPeriod = 50 * time.Second

	// Clients only ever send small auth frames.
	maxMessageSize = 4 * 1024

	// Per-connection budget for logging ignored frames.
	frameRate  = 5
	frameBurst = 10
)

// Conn is one WebSocket client. Outbound frames go through a bounded queue
// drained by WritePump; nothing else writes data frames to the socket.
type Conn struct {
	id      string
	ws      *websocket.Conn
	hub     *Hub
	send    chan []byte
	done    chan struct{}
	limiter *rate.Limiter

	closeOnce    sync.Once
	unregistered atomic.Bool
}

func newConn(h *Hub, ws *websocket.Conn) *Conn {
	return &Conn{
		id:      uuid.NewString(),
		ws:      ws,
		hub:     h,
		send:    make(chan []byte, h.sendBuffer),
		done:    make(chan struct{}),
		limiter: rate.NewLimiter(frameRate, frameBurst),
	}
}

// ID returns the connection id used in logs.
func (c *Conn) ID() string {
	return c.id
}

// enqueue queues a frame without blocking. It returns false when the
// connection is closed or its queue is full.
func (c *Conn) enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *Conn) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Close shuts the socket and removes the connection from the hub.
func (c *Conn) Close() {
	c.closeSocket(websocket.CloseNormalClosure)
	if c.hub != nil && c.unregistered.CompareAndSwap(false, true) {
		c.hub.Unregister(c)
	}
}

// closeGoingAway is used by the hub on shutdown. It must not call back
// into the hub.
func (c *Conn) closeGoingAway() {
	c.closeSocket(websocket.CloseGoingAway)
}

func (c *Conn) closeSocket(code int) {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.ws == nil {
			return
		}
		msg := websocket.FormatCloseMessage(code, "")
		c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		c.ws.Close()
	})
}

// ReadPump reads client frames until the socket fails or closes.
func (c *Conn) ReadPump() {
	defer func() {
		if r := recover(); r != nil {
			log.Error("realtime: read pump panic", "conn_id", c.id, "panic", r)
		}
		c.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.Warn("realtime: websocket error", "conn_id", c.id, "error", err.Error())
			}
			return
		}
		c.handleFrame(data)
	}
}

// handleFrame registers the conn on a valid auth frame. Auth frames are
// never throttled; the limiter only caps how often ignored frames are logged.
func (c *Conn) handleFrame(data []byte) {
	frame, err := decodeAuth(data)
	if err != nil && !c.limiter.Allow() {
		return
	}
	switch {
	case errors.Is(err, errNotAuth):
		log.Debug("realtime: ignoring frame", "conn_id", c.id)
		return
	case err != nil:
		n := min(len(data), 100)
		log.Warn("realtime: invalid frame", "conn_id", c.id, "error", err.Error(), "raw", string(data[:n]))
		return
	}
	c.hub.Register(frame.UserID, frame.UserType, c)
}

// WritePump drains the send queue and keeps the connection alive with pings.
func (c *Conn) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			log.Error("realtime: write pump panic", "conn_id", c.id, "panic", r)
		}
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Warn("realtime: write failed", "conn_id", c.id, "error", err.Error())
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}
