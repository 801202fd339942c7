// Package server implements the HTTP backend that stores session results.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/verte-zerg/keybeat/internal/model"
)

const (
	defaultPageSize = 10
	shutdownTimeout = 5 * time.Second
)

// ResultStore persists and pages session results.
type ResultStore interface {
	InsertResult(ctx context.Context, r model.SessionResult) (model.StoredResult, error)
	CountResults(ctx context.Context) (int, error)
	ListResults(ctx context.Context, offset, limit int) ([]model.StoredResult, error)
}

// Server serves the results API.
type Server struct {
	store ResultStore
}

// New returns a server backed by st.
func New(st ResultStore) *Server {
	return &Server{store: st}
}

// Handler returns the routed handler with CORS, request ids and access logs.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("POST /session", s.handleCreateSession)
	mux.HandleFunc("GET /sessions", s.handleListSessions)
	return withRequestLog(withRequestID(withCORS(mux)))
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[HTTP] listening on %s\n", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	log.Println("[HTTP] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
