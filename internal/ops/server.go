// Package ops exposes the device's operational surface: liveness and
// prometheus metrics. Nothing here is business traffic.
package ops

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/metrics"
)

const shutdownGrace = 5 * time.Second

// Server is the ops HTTP listener.
type Server struct {
	srv *http.Server
	log *slog.Logger
}

// New builds the listener. A nil metrics set disables the /metrics route.
func New(addr string, m *metrics.Metrics, log *slog.Logger) *Server {
	if log != nil {
		log = log.With("component", "ops")
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if m != nil {
		r.Handle("/metrics", m.Handler())
	}

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) {
	if s == nil {
		return
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.ListenAndServe()
	}()

	if s.log != nil {
		s.log.Info("ops listener started", "addr", s.srv.Addr)
	}

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && s.log != nil {
			s.log.Error("ops listener failed", "error", err)
		}
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := s.srv.Shutdown(shCtx); err != nil && s.log != nil {
			s.log.Warn("ops listener shutdown", "error", err)
		}
	}
}
