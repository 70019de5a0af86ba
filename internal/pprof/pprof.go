// Package pprof serves the runtime profiling endpoints on a separate
// listener so the hub's public port stays free of debug surface.
package pprof

import (
	"context"
	"net"
	"net/http"
	netpprof "net/http/pprof"

	"github.com/codefionn/workhub/internal/logger"
)

// Server is an optional debug HTTP server exposing /debug/pprof
type Server struct {
	addr       string
	listener   net.Listener
	httpServer *http.Server
}

// NewServer creates a debug server bound to addr once started
func NewServer(addr string) *Server {
	return &Server{addr: addr}
}

// Start binds the listener and serves the pprof handlers in the background
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", netpprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", netpprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", netpprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", netpprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", netpprof.Trace)

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.httpServer = &http.Server{Handler: mux}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("pprof server error: %v", err)
		}
	}()

	logger.Info("pprof server listening on %s", listener.Addr())
	return nil
}

// Stop shuts the debug server down
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Addr reports the bound address
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
