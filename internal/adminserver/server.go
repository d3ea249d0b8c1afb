// Package adminserver exposes the tunnel's admin HTTP surface: health,
// readiness, status, stats, and tunnels endpoints, following the teacher's
// chi router + middleware stack.
package adminserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/your-org/gtp-tunnel/internal/config"
	"github.com/your-org/gtp-tunnel/internal/stats"
)

// TunnelLister reports the active TEID-to-peer mappings known to the GTP
// listener; satisfied by *gtplistener.Listener.
type TunnelLister interface {
	Tunnels() map[uint32]string
}

// Server is the gtpd admin/monitoring HTTP server.
type Server struct {
	config     *config.Config
	router     *chi.Mux
	httpServer *http.Server
	counters   *stats.Counters
	tunnels    TunnelLister
	logger     *zap.Logger
}

func NewServer(cfg *config.Config, counters *stats.Counters, tunnels TunnelLister, logger *zap.Logger) *Server {
	s := &Server{
		config:   cfg,
		router:   chi.NewRouter(),
		counters: counters,
		tunnels:  tunnels,
		logger:   logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/ready", s.handleReady)
	s.router.Get("/status", s.handleStatus)
	s.router.Get("/stats", s.handleStats)
	s.router.Get("/tunnels", s.handleTunnels)
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.config.GetAdminAddress(),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.logger.Info("starting admin server", zap.String("address", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"node_name":        s.config.Node.Name,
		"node_instance_id": s.config.Node.InstanceID,
		"gtp_address":      s.config.GetGTPAddress(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.counters.Snapshot())
}

func (s *Server) handleTunnels(w http.ResponseWriter, r *http.Request) {
	if s.tunnels == nil {
		s.respondJSON(w, http.StatusOK, map[string]string{})
		return
	}
	byTEID := s.tunnels.Tunnels()
	out := make(map[string]string, len(byTEID))
	for teid, peer := range byTEID {
		out[fmt.Sprintf("0x%08x", teid)] = peer
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.Error("failed to encode JSON response", zap.Error(err))
		}
	}
}
