package realtime

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/markb/sareeone/internal/log"
)

// Handler upgrades requests on /ws and hands the socket to the hub.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler allows browser origins from allowedOrigins, plus same-host
// requests and clients that send no Origin header.
func NewHandler(hub *Hub, allowedOrigins []string) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}

	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || allowed["*"] || allowed[origin] {
					return true
				}
				u, err := url.Parse(origin)
				return err == nil && strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		log.Warn("realtime: upgrade failed", "error", err.Error(), "remote_addr", r.RemoteAddr)
		return
	}

	conn := newConn(h.hub, ws)
	if !h.hub.track(conn) {
		conn.closeGoingAway()
		return
	}
	log.Info("realtime: new connection", "conn_id", conn.id, "remote_addr", r.RemoteAddr)

	go conn.WritePump()
	go conn.ReadPump()
}
