// Package api provides the HTTP surface for boothbot: the WhatsApp
// webhook (verification handshake and message delivery) plus health and
// receipt endpoints.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/festibooth/boothbot/internal/funnel"
	"github.com/festibooth/boothbot/internal/store"
)

// DefaultAddr is the listen address used unless overridden.
const DefaultAddr = ":8080"

// Opts holds configuration options for the API server.
type Opts struct {
	Addr        string
	VerifyToken string
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the server listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithVerifyToken sets the webhook verification secret the GET
// handshake must present.
func WithVerifyToken(token string) Option {
	return func(o *Opts) { o.VerifyToken = token }
}

// Server wires the webhook handlers to the funnel.
type Server struct {
	funnel      *funnel.Funnel
	st          store.Store
	verifyToken string
}

// NewServer creates an API server around the funnel and store.
func NewServer(f *funnel.Funnel, st store.Store, opts ...Option) (*Server, *Opts) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	return &Server{funnel: f, st: st, verifyToken: cfg.VerifyToken}, &cfg
}

// Run starts the HTTP server and blocks until SIGINT/SIGTERM, then
// shuts down gracefully.
func Run(f *funnel.Funnel, st store.Store, opts ...Option) error {
	s, cfg := NewServer(f, st, opts...)

	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", s.webhookHandler)
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/receipts", s.receiptsHandler)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		slog.Error("API server failed", "error", err)
		return fmt.Errorf("server failed: %w", err)
	case sig := <-sigCh:
		slog.Info("API server shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("API server shutdown failed", "error", err)
		return fmt.Errorf("shutdown failed: %w", err)
	}
	slog.Info("API server stopped")
	return nil
}

// healthHandler reports liveness.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
