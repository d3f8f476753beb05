// Package web serves the netkit operations as a JSON API.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/user/netkit/internal/storage"
	"github.com/user/netkit/internal/toolkit"
	"github.com/user/netkit/internal/util"
)

// Probes such as traceroute can legitimately run for minutes.
const writeTimeout = 5 * time.Minute

// Server is the web server.
type Server struct {
	handlers *Handlers
	port     int
	srv      *http.Server
}

// NewServer creates a new web server. history may be nil when the journal
// is disabled.
func NewServer(tk *toolkit.Toolkit, history *storage.HistoryStorage, cfg *util.Config, port int) *Server {
	return &Server{
		handlers: NewHandlers(tk, history, cfg),
		port:     port,
	}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	h := s.handlers
	mux := http.NewServeMux()

	mux.HandleFunc("/api/status", h.APIGetStatus)
	mux.HandleFunc("/api/tools", h.APIGetTools)
	mux.HandleFunc("/api/operations", h.APIGetOperations)
	mux.HandleFunc("/api/history", h.APIGetHistory)
	mux.HandleFunc("/api/report", h.DownloadReport)
	mux.HandleFunc("/api/", h.APIRunOperation)

	return logRequests(mux)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		if err := s.Stop(); err != nil {
			util.Error("Web server shutdown: %v", err)
		}
	}()

	util.Info("Web server starting on port %d", s.port)

	if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Stop stops the web server.
func (s *Server) Stop() error {
	if s.srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.srv.Shutdown(ctx)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		util.Debug("%s %s (%s)", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}
