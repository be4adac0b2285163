package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the debug HTTP server bundling the health probes and the
// Prometheus scrape endpoint.
type Server struct {
	srv *http.Server
}

// NewServer builds a debug server on addr serving /healthz, /readyz and
// /metrics.
func NewServer(addr string, h *Handler) *Server {
	mux := http.NewServeMux()
	h.Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start serves in a background goroutine. Listen failures are reported
// through errs; a clean shutdown is not.
func (s *Server) Start(errs chan<- error) {
	go func() {
		slog.Info("debug http server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("health: debug server: %w", err)
		}
	}()
}

// Shutdown stops the server, waiting up to ctx's deadline for in-flight
// requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
