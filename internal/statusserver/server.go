// Package statusserver exposes health, metrics and the command catalog over
// HTTP for the process supervisor and scrapers.
package statusserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/keshon/nvbot/internal/docs"
)

const shutdownTimeout = 5 * time.Second

// Readiness reports whether the bot is connected.
type Readiness interface {
	Ready() bool
}

// CommandInfo is one /commands entry.
type CommandInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Cooldown    int    `json:"cooldown_seconds"`
}

type Server struct {
	srv      *http.Server
	ready    Readiness
	sections func() []docs.Section
	log      zerolog.Logger
}

// New builds the server. sections is called per request.
func New(addr string, gatherer prometheus.Gatherer, ready Readiness, sections func() []docs.Section, log zerolog.Logger) *Server {
	s := &Server{ready: ready, sections: sections, log: log}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", s.healthz)
	mux.HandleFunc("GET /commands", s.commands)

	s.srv = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	return s
}

func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Msgf("Status server listening on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("Shutting down status server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	if s.ready == nil || !s.ready.Ready() {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) commands(w http.ResponseWriter, _ *http.Request) {
	out := []CommandInfo{}
	for _, sec := range s.sections() {
		for _, d := range sec.Commands {
			out = append(out, CommandInfo{
				Name:        d.Name,
				Description: d.Description,
				Category:    sec.Category,
				Cooldown:    int(d.Cooldown / time.Second),
			})
		}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		s.log.Warn().Err(err).Msg("Failed to write command catalog")
	}
}
