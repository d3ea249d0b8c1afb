// Package metrics exposes the tunnel's prometheus counters and a
// /metrics + /health HTTP server, following the shape of the teacher's
// common metrics server.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	GTPPacketsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gtp_packets_total",
			Help: "Total number of GTP packets processed, by direction and message type",
		},
		[]string{"direction", "message_type"},
	)

	IPPacketsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ip_packets_total",
			Help: "Total number of IP packets processed, by direction",
		},
		[]string{"direction"},
	)

	IPPacketsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ip_packets_dropped_total",
			Help: "IP packets dropped because neither a source nor destination filter matched",
		},
	)

	PacketProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "packet_processing_duration_seconds",
			Help:    "Time spent decoding and forwarding a single packet",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	ServiceUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "service_up",
			Help: "Whether gtpd is up (1 = up, 0 = down)",
		},
	)
)

// Server is the prometheus + health HTTP server.
type Server struct {
	port   int
	server *http.Server
	logger *zap.Logger
}

func NewServer(port int, logger *zap.Logger) *Server {
	return &Server{port: port, logger: logger}
}

func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.logger.Info("starting metrics server", zap.Int("port", s.port))
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func SetServiceUp(up bool) {
	if up {
		ServiceUp.Set(1)
	} else {
		ServiceUp.Set(0)
	}
}
