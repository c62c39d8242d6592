// Package realtime pushes notifications to connected web clients over
// WebSocket. Clients identify themselves with an auth frame; the server can
// then address them by user id or by role.
package realtime

import (
	"context"
	"sync/atomic"

	"github.com/markb/sareeone/internal/log"
)

const defaultSendBuffer = 256

type entry struct {
	conn *Conn
	role Role
}

type registration struct {
	userID string
	role   Role
	conn   *Conn
	reply  chan bool
}

type delivery struct {
	userID string // unicast target; empty for a role broadcast
	role   Role
	frame  []byte
	reply  chan int
}

type connRequest struct {
	conn  *Conn
	reply chan bool
}

// Stats is a snapshot of the registry.
type Stats struct {
	Connections int          `json:"connections"`
	Sockets     int          `json:"sockets"`
	ByRole      map[Role]int `json:"byRole"`
}

// Hub owns the user registry. Run must be running for any method to make
// progress; every registry read and write happens on the Run goroutine.
// Once Run returns, all methods are no-ops returning zero values.
type Hub struct {
	attach     chan connRequest
	detach     chan connRequest
	register   chan registration
	deliver    chan delivery
	stats      chan chan Stats
	stopped    chan struct{}
	running    atomic.Bool
	sendBuffer int
	metrics    *Metrics
}

// NewHub creates a hub. sendBuffer is the per-connection outbound queue
// length; metrics may be nil.
func NewHub(sendBuffer int, metrics *Metrics) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Hub{
		attach:     make(chan connRequest),
		detach:     make(chan connRequest),
		register:   make(chan registration),
		deliver:    make(chan delivery),
		stats:      make(chan chan Stats),
		stopped:    make(chan struct{}),
		sendBuffer: sendBuffer,
		metrics:    metrics,
	}
}

// Run processes hub commands until ctx is cancelled, then closes every open
// socket. Only the first call does anything.
func (h *Hub) Run(ctx context.Context) {
	if !h.running.CompareAndSwap(false, true) {
		return
	}
	defer close(h.stopped)

	registry := make(map[string]entry)
	sockets := make(map[*Conn]struct{})

	for {
		select {
		case <-ctx.Done():
			h.shutdown(registry, sockets)
			return

		case req := <-h.attach:
			sockets[req.conn] = struct{}{}
			h.metrics.Sockets.Set(float64(len(sockets)))
			req.reply <- true

		case req := <-h.detach:
			removed := h.removeConn(registry, req.conn)
			delete(sockets, req.conn)
			h.metrics.Sockets.Set(float64(len(sockets)))
			req.reply <- removed > 0

		case reg := <-h.register:
			if reg.conn.closed() {
				reg.reply <- false
				continue
			}
			if prev, ok := registry[reg.userID]; ok && prev.conn != reg.conn {
				log.Debug("realtime: replacing registration", "user_id", reg.userID, "old_conn", prev.conn.id, "conn_id", reg.conn.id)
			}
			registry[reg.userID] = entry{conn: reg.conn, role: reg.role}
			h.metrics.Registered.Set(float64(len(registry)))
			log.Info("realtime: user registered", "user_id", reg.userID, "role", string(reg.role), "conn_id", reg.conn.id)

			if reg.conn.enqueue(connectedFrame) {
				h.metrics.Sent.WithLabelValues(kindConnected).Inc()
			} else {
				h.metrics.Dropped.WithLabelValues(reasonNotReady).Inc()
			}
			reg.reply <- true

		case d := <-h.deliver:
			if d.userID != "" {
				d.reply <- h.unicast(registry, d)
			} else {
				d.reply <- h.broadcast(registry, d)
			}

		case reply := <-h.stats:
			reply <- snapshot(registry, len(sockets))
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.stopped
}

func (h *Hub) unicast(registry map[string]entry, d delivery) int {
	e, ok := registry[d.userID]
	if !ok {
		h.metrics.Dropped.WithLabelValues(reasonNotRegistered).Inc()
		log.Debug("realtime: notify target not connected", "user_id", d.userID)
		return 0
	}
	if !e.conn.enqueue(d.frame) {
		h.metrics.Dropped.WithLabelValues(reasonNotReady).Inc()
		log.Warn("realtime: connection not ready, notification dropped", "user_id", d.userID, "conn_id", e.conn.id)
		return 0
	}
	h.metrics.Sent.WithLabelValues(kindUnicast).Inc()
	log.Info("realtime: notification sent", "user_id", d.userID)
	return 1
}

// broadcast walks the whole registry; there is no per-role index.
func (h *Hub) broadcast(registry map[string]entry, d delivery) int {
	sent := 0
	for userID, e := range registry {
		if e.role != d.role {
			continue
		}
		if !e.conn.enqueue(d.frame) {
			h.metrics.Dropped.WithLabelValues(reasonNotReady).Inc()
			log.Warn("realtime: connection not ready, broadcast skipped", "user_id", userID, "role", string(d.role))
			continue
		}
		sent++
	}
	h.metrics.Sent.WithLabelValues(kindBroadcast).Add(float64(sent))
	log.Info("realtime: broadcast sent", "role", string(d.role), "sent", sent)
	return sent
}

// removeConn deletes every registry entry held by conn.
func (h *Hub) removeConn(registry map[string]entry, conn *Conn) int {
	removed := 0
	for userID, e := range registry {
		if e.conn == conn {
			delete(registry, userID)
			removed++
			log.Info("realtime: user disconnected", "user_id", userID, "conn_id", conn.id)
		}
	}
	if removed > 0 {
		h.metrics.Registered.Set(float64(len(registry)))
	}
	return removed
}

func (h *Hub) shutdown(registry map[string]entry, sockets map[*Conn]struct{}) {
	log.Info("realtime: hub stopping", "sockets", len(sockets), "registered", len(registry))
	for c := range sockets {
		c.closeGoingAway()
	}
	clear(registry)
	clear(sockets)
	h.metrics.Registered.Set(0)
	h.metrics.Sockets.Set(0)
}

func snapshot(registry map[string]entry, sockets int) Stats {
	s := Stats{Connections: len(registry), Sockets: sockets, ByRole: make(map[Role]int, len(Roles))}
	for _, r := range Roles {
		s.ByRole[r] = 0
	}
	for _, e := range registry {
		s.ByRole[e.role]++
	}
	return s
}

// Register maps userID to conn, replacing any earlier mapping for that user,
// and queues the connected acknowledgement on conn.
func (h *Hub) Register(userID string, role Role, conn *Conn) bool {
	reply := make(chan bool, 1)
	select {
	case h.register <- registration{userID: userID, role: role, conn: conn, reply: reply}:
		return <-reply
	case <-h.stopped:
		return false
	}
}

// Unregister removes every entry held by conn and forgets the socket. It
// reports whether any user entry was removed.
func (h *Hub) Unregister(conn *Conn) bool {
	reply := make(chan bool, 1)
	select {
	case h.detach <- connRequest{conn: conn, reply: reply}:
		return <-reply
	case <-h.stopped:
		return false
	}
}

func (h *Hub) track(conn *Conn) bool {
	reply := make(chan bool, 1)
	select {
	case h.attach <- connRequest{conn: conn, reply: reply}:
		return <-reply
	case <-h.stopped:
		return false
	}
}

// Notify sends payload to userID's connection if it is registered and
// ready. It reports whether the frame was queued.
func (h *Hub) Notify(userID string, payload any) bool {
	if userID == "" {
		return false
	}
	frame, err := encodeNotification(payload)
	if err != nil {
		h.metrics.Dropped.WithLabelValues(reasonEncode).Inc()
		log.Error("realtime: notification dropped", "user_id", userID, "error", err.Error())
		return false
	}
	return h.send(delivery{userID: userID, frame: frame}) == 1
}

// BroadcastToRole sends payload to every ready connection registered with
// role and returns how many frames were queued.
func (h *Hub) BroadcastToRole(role Role, payload any) int {
	frame, err := encodeNotification(payload)
	if err != nil {
		h.metrics.Dropped.WithLabelValues(reasonEncode).Inc()
		log.Error("realtime: broadcast dropped", "role", string(role), "error", err.Error())
		return 0
	}
	return h.send(delivery{role: role, frame: frame})
}

func (h *Hub) send(d delivery) int {
	d.reply = make(chan int, 1)
	select {
	case h.deliver <- d:
		return <-d.reply
	case <-h.stopped:
		return 0
	}
}

// Stats returns a registry snapshot.
func (h *Hub) Stats() Stats {
	reply := make(chan Stats, 1)
	select {
	case h.stats <- reply:
		return <-reply
	case <-h.stopped:
		return Stats{ByRole: map[Role]int{}}
	}
}

// Len returns the number of registered users.
func (h *Hub) Len() int {
	return h.Stats().Connections
}
