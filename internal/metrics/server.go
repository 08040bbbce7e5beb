// Package metrics serves health and Prometheus endpoints while the queue
// poller runs.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Server provides /health and /metrics.
type Server struct {
	addr            string
	shutdownTimeout time.Duration
	server          *http.Server
}

// NewServer creates a new Server.
func NewServer(host string, port int, shutdownTimeout time.Duration) *Server {
	return &Server{
		addr:            net.JoinHostPort(host, fmt.Sprint(port)),
		shutdownTimeout: shutdownTimeout,
	}
}

// Handler returns the HTTP handler exposing the endpoints.
func Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// Start binds the listen address and serves in the background until ctx
// is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.server = &http.Server{
		Addr:    s.addr,
		Handler: Handler(),
	}

	log.Info().Str("addr", ln.Addr().String()).Msg("Starting metrics server")

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Metrics server shutdown error")
		}
	}()

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Metrics server error")
		}
	}()
	return nil
}
