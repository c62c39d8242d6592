package server

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/markb/sareeone/internal/log"
	"github.com/markb/sareeone/internal/validate"
)

type ErrorResponse struct {
	Error   string                `json:"error"`
	Message string                `json:"message"`
	Fields  []validate.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("server: failed to encode response", "error", err.Error())
	}
}

// writeError matches the signature auth.RequireRole expects.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: http.StatusText(status), Message: message})
}

func writeValidationError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: http.StatusText(http.StatusBadRequest), Message: err.Error()}
	var verr *validate.Error
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	writeJSON(w, http.StatusBadRequest, resp)
}

// decodeBody parses a JSON request body into v and validates it.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeValidationError(w, err)
		return false
	}
	return true
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	log.Error("server: request failed",
		"path", r.URL.Path,
		"request_id", log.GetRequestID(r.Context()),
		"error", err.Error(),
	)
	writeError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
}
