// Package http is the thin JSON surface over the evaluation service.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/stratlab/stratrun/internal/app"
	"github.com/stratlab/stratrun/internal/config"
)

// Server hosts the evaluation endpoints.
type Server struct {
	router *mux.Router
	server *http.Server
}

// NewServer wires routes over the service. The prometheus gatherer backs
// /metrics.
func NewServer(cfg config.ServerConfig, svc *app.Service, gatherer prometheus.Gatherer) *Server {
	router := mux.NewRouter()
	h := &handlers{svc: svc}

	v1 := router.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/backtest", h.backtest).Methods(http.MethodPost)
	v1.HandleFunc("/backtest/optimize", h.optimize).Methods(http.MethodPost)
	v1.HandleFunc("/recommend/{symbol}", h.recommend).Methods(http.MethodGet)
	v1.HandleFunc("/screen", h.screen).Methods(http.MethodGet)
	v1.HandleFunc("/weights/{symbol}", h.weights).Methods(http.MethodGet)
	v1.HandleFunc("/strategies", h.strategies).Methods(http.MethodGet)

	router.HandleFunc("/health", h.health).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	router.Use(requestID)
	router.Use(hlog.NewHandler(log.Logger))
	router.Use(accessLog)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	return &Server{
		router: router,
		server: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout(),
			WriteTimeout: cfg.WriteTimeout(),
			IdleTimeout:  cfg.IdleTimeout(),
		},
	}
}

// Start blocks serving until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("http server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.router }

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", w.Header().Get("X-Request-ID")).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
