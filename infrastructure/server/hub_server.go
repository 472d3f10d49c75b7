package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"nfinite/infrastructure/transport"
	"nfinite/runtime"
	"nfinite/runtime/workers"
	"nfinite/services"
	"time"
)

// HubServer accepts websocket connections and runs one receive loop per connection.
// Hijacked connections outlive http.Server.Shutdown, so each of them is bound to the
// root context given at construction instead.
type HubServer struct {
	ctx        context.Context
	log        *slog.Logger
	hub        *services.HubService
	opts       transport.Options
	mux        *http.ServeMux
	httpServer *http.Server
}

func NewHubServer(
	ctx context.Context,
	log *slog.Logger,
	hub *services.HubService,
	addr, path string,
	opts transport.Options,
) *HubServer {
	s := &HubServer{ctx: ctx, log: log, hub: hub, opts: opts, mux: http.NewServeMux()}
	s.mux.HandleFunc(path, s.handleConnection)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *HubServer) Handler() http.Handler {
	return s.mux
}

// Handle mounts an extra route next to the websocket endpoint.
func (s *HubServer) Handle(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
}

// ListenAndServe blocks until the server is shut down.
func (s *HubServer) ListenAndServe() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.log.Info("Starting hub", "address", listener.Addr().String(), "at", time.Now().UTC())
	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HubServer) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *HubServer) handleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := transport.Accept(w, r, s.opts, s.log, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	session := s.hub.NewSession(conn)
	log := s.log.With("session_id", session.ID(), "remote", conn.RemoteAddr())
	log.Info("Peer connected")

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	worker := workers.NewSessionWorker(log, conn, runtime.NewSession(log), session)
	if err := worker.Run(ctx); err != nil {
		log.Error("Receive loop failed", "error", err)
	}
	cancel()
	_ = conn.Close()
	session.Close()
	log.Info("Peer disconnected")
}
