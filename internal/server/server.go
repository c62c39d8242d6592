// Package server wires the HTTP API, the /ws endpoint and the metrics
// endpoint onto one chi router.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/markb/sareeone/internal/auth"
	"github.com/markb/sareeone/internal/config"
	"github.com/markb/sareeone/internal/db"
	"github.com/markb/sareeone/internal/log"
	"github.com/markb/sareeone/internal/realtime"
	"github.com/markb/sareeone/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/acme/autocert"
)

type Server struct {
	cfg      *config.Config
	db       *db.DB
	store    *store.Store
	auth     *auth.Service
	hub      *realtime.Hub
	notifier realtime.Notifier
	gatherer prometheus.Gatherer
	router   *chi.Mux

	// HTTP server for graceful shutdown
	httpServer *http.Server

	// HTTPS fields
	httpsServer  *http.Server
	httpRedirect *http.Server
	autocertMgr  *autocert.Manager
}

// New builds the server. gatherer backs /metrics; nil uses the default
// Prometheus registry.
func New(cfg *config.Config, database *db.DB, hub *realtime.Hub, gatherer prometheus.Gatherer) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	st := store.New(database)
	s := &Server{
		cfg:      cfg,
		db:       database,
		store:    st,
		auth:     auth.NewService(st, cfg.SessionSecret),
		hub:      hub,
		notifier: hub,
		gatherer: gatherer,
		router:   chi.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	s.router.Use(log.RequestLogger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/ws", realtime.NewHandler(s.hub, s.cfg.AllowedOrigins()).ServeHTTP)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	s.router.Group(func(r chi.Router) {
		r.Use(middleware.SetHeader("Content-Type", "application/json"))
		r.Get("/health", s.handleHealth)

		r.Route("/api", func(r chi.Router) {
			if s.cfg.RateLimitRequests > 0 {
				r.Use(httprate.LimitByIP(s.cfg.RateLimitRequests, s.cfg.RateLimitWindow))
			}

			r.Get("/categories", s.handleCategories)
			r.Get("/sections", s.handleSections)
			r.Get("/restaurants", s.handleRestaurants)
			r.Get("/restaurants/{id}", s.handleRestaurant)
			r.Get("/restaurants/{id}/menu", s.handleMenu)
			r.Get("/offers", s.handleOffers)
			r.Get("/settings", s.handleSettings)

			r.Post("/admin/login", s.handleAdminLogin)
			r.Post("/driver/login", s.handleDriverLogin)
			r.Post("/logout", s.handleLogout)

			r.Route("/driver", func(r chi.Router) {
				r.Use(s.auth.RequireRole(writeError, store.UserTypeDriver))
				r.Get("/me", s.handleMe)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(s.auth.RequireRole(writeError, store.UserTypeAdmin))
				r.Get("/me", s.handleMe)
				r.Post("/notify", s.handleNotify)
				r.Get("/connections", s.handleConnections)
				r.Get("/logs", s.handleLogs)
			})
		})
	})
}

func (s *Server) Router() *chi.Mux {
	return s.router
}

type healthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Connections int    `json:"connections"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "OK",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Connections: s.hub.Len(),
	})
}

func (s *Server) ListenAndServe(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info("server: listening", "addr", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server(s). Hijacked WebSocket
// connections are not tracked here; stopping the hub closes them.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.httpsServer != nil {
		if err := s.httpsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTPS server: %w", err))
		}
	}
	if s.httpRedirect != nil {
		if err := s.httpRedirect.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP redirect server: %w", err))
		}
	}
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP server: %w", err))
		}
	}

	return errors.Join(errs...)
}
