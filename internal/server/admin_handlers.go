package server

import (
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/markb/sareeone/internal/log"
	"github.com/markb/sareeone/internal/realtime"
)

// notifyRequest targets exactly one user or one role.
type notifyRequest struct {
	UserID string          `json:"userId" validate:"required_without=Role,excluded_with=Role"`
	Role   string          `json:"role" validate:"omitempty,oneof=driver admin"`
	Data   json.RawMessage `json:"data" validate:"required"`
}

type notifyResponse struct {
	Sent int `json:"sent"`
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sent := 0
	switch {
	case req.UserID != "":
		if s.notifier.NotifyUser(req.UserID, req.Data) {
			sent = 1
		}
	case realtime.Role(req.Role) == realtime.RoleDriver:
		sent = s.notifier.BroadcastToDrivers(req.Data)
	default:
		sent = s.notifier.BroadcastToAdmins(req.Data)
	}
	writeJSON(w, http.StatusOK, notifyResponse{Sent: sent})
}

func (s *Server) handleConnections(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.hub.Stats())
}

const (
	defaultLogLines = 100
	maxLogLines     = 1000
)

type logsResponse struct {
	Lines    []string `json:"lines"`
	Total    int      `json:"total"`
	Capacity int      `json:"capacity"`
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	n := defaultLogLines
	if v := r.URL.Query().Get("lines"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "lines must be a positive integer")
			return
		}
		n = min(parsed, maxLogLines)
	}

	total, capacity, ok := log.BufferStats()
	if !ok {
		writeError(w, http.StatusNotFound, "log buffer disabled")
		return
	}
	writeJSON(w, http.StatusOK, logsResponse{Lines: log.Recent(n), Total: total, Capacity: capacity})
}
