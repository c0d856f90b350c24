// Package metrics exposes Prometheus instrumentation for the tracker.
package metrics

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/typesteps/typesteps/internal/logger"
)

var (
	// Ingest metrics
	KeystrokesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "typesteps_keystrokes_total",
			Help: "Total keystrokes counted, partitioned by application category",
		},
		[]string{"category"},
	)

	EventsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "typesteps_events_rejected_total",
			Help: "Capture events dropped before reaching the counters",
		},
		[]string{"reason"},
	)

	TodayKeystrokes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "typesteps_today_keystrokes",
			Help: "Keystrokes counted so far today",
		},
	)

	// Storage metrics
	PersistenceErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "typesteps_persistence_errors_total",
			Help: "Counter mutations that failed to reach storage",
		},
	)

	// Milestone metrics
	MilestonesNotified = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "typesteps_milestones_notified_total",
			Help: "Daily goal milestones notified",
		},
	)

	// WakaTime metrics
	WakaTimeFetchErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "typesteps_wakatime_fetch_errors_total",
			Help: "Failed WakaTime summary requests",
		},
	)
)

func init() {
	prometheus.MustRegister(
		KeystrokesTotal,
		EventsRejected,
		TodayKeystrokes,
		PersistenceErrors,
		MilestonesNotified,
		WakaTimeFetchErrors,
	)
}

// Server is the metrics HTTP server
type Server struct {
	server   *http.Server
	listener net.Listener
}

// NewServer creates a new metrics server
func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	s.listener = ln

	logger.Info("starting metrics server", "addr", ln.Addr().String())
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address, useful when listening on port 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.server.Addr
	}
	return s.listener.Addr().String()
}

// Stop stops the metrics server
func (s *Server) Stop() error {
	logger.Info("stopping metrics server")
	return s.server.Close()
}
