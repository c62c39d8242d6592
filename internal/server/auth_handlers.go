package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/markb/sareeone/internal/auth"
	"github.com/markb/sareeone/internal/log"
	"github.com/markb/sareeone/internal/store"
)

type adminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type driverLoginRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	User      *store.Account `json:"user"`
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	acc, err := s.auth.LoginAdmin(r.Context(), req.Email, req.Password)
	s.finishLogin(w, r, acc, err)
}

func (s *Server) handleDriverLogin(w http.ResponseWriter, r *http.Request) {
	var req driverLoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	acc, err := s.auth.LoginDriver(r.Context(), req.Phone, req.Password)
	s.finishLogin(w, r, acc, err)
}

func (s *Server) finishLogin(w http.ResponseWriter, r *http.Request, acc *store.Account, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "بيانات الدخول غير صحيحة")
		return
	case errors.Is(err, auth.ErrAccountDisabled):
		writeError(w, http.StatusForbidden, "الحساب معطل")
		return
	case err != nil:
		s.internalError(w, r, err)
		return
	}

	token, expires, err := s.auth.IssueSession(acc)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	http.SetCookie(w, s.auth.Cookie(token, expires, s.cfg.IsProduction()))
	log.Info("server: login", "user_id", acc.ID, "user_type", acc.UserType)
	writeJSON(w, http.StatusOK, loginResponse{User: acc, Token: token, ExpiresAt: expires})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ClearCookie(s.cfg.IsProduction()))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	acc, err := s.store.GetAccountByID(r.Context(), claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "غير مصرح")
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}
