package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/codefionn/workhub/internal/channel"
	"github.com/codefionn/workhub/internal/config"
	"github.com/codefionn/workhub/internal/consts"
	"github.com/codefionn/workhub/internal/logger"
)

// Server hosts the hub's single websocket endpoint plus a small
// observability surface.
type Server struct {
	cfg        *config.Config
	hub        *Hub
	router     *httprouter.Router
	httpServer *http.Server
	upgrader   websocket.Upgrader

	mu       sync.Mutex
	listener net.Listener
	running  bool

	pumps sync.WaitGroup
}

// NewServer creates the HTTP server around a hub
func NewServer(cfg *config.Config, h *Hub) *Server {
	s := &Server{
		cfg: cfg,
		hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  consts.BufferSize1KB,
			WriteBufferSize: consts.BufferSize1KB,
			CheckOrigin: func(r *http.Request) bool {
				// Locality gating happens at auth, not at the upgrade
				return true
			},
		},
	}

	s.router = httprouter.New()
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/ws", s.handleWebSocket)
	s.router.GET("/stats", s.handleStats)
	s.router.GET("/healthz", s.handleHealthz)
}

// Start begins listening and serving. It returns once the listener is
// bound; serving continues in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server is already running")
	}

	listener, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.ListenAddr, err)
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  0, // websocket connections are long-lived
		WriteTimeout: 0,
	}

	s.hub.StartHeartbeat()

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error: %v", err)
		}
	}()

	s.running = true
	logger.Info("Hub listening on %s", listener.Addr())
	return nil
}

// Addr reports the bound listen address
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop drains the hub and shuts the acceptor down. Every connection is
// closed with a going-away code and the method returns only after the
// acceptor and all connection pumps have finished.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	httpServer := s.httpServer
	s.mu.Unlock()

	s.hub.Shutdown()

	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.pumps.Wait()
	logger.Info("Hub server stopped")
	return nil
}

// handleWebSocket upgrades a connection and hands it to the hub
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Failed to upgrade websocket: %v", err)
		return
	}

	ws := newWSConn(conn)
	cn := s.hub.Accept(ws)
	if cn == nil {
		return
	}

	readWait := 2 * s.hub.heartbeatTimeout

	s.pumps.Add(2)
	ws.done = func() { s.pumps.Done() }
	go ws.writePump()
	go func() {
		defer s.pumps.Done()
		ws.readPump(s.hub, cn, readWait)
	}()
}

// handleStats reports worker and channel aggregates
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	payload := struct {
		Workers  Stats         `json:"workers"`
		Channels channel.Stats `json:"channels"`
		Time     string        `json:"time"`
	}{
		Workers:  s.hub.GetStats(),
		Channels: s.hub.ChannelStats(),
		Time:     time.Now().UTC().Format(time.RFC3339),
	}

	writeJSON(w, http.StatusOK, payload)
}

// handleHealthz is the liveness probe
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	workers, browsers, bridges := s.hub.Counts()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"workers":  workers,
		"browsers": browsers,
		"bridges":  bridges,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response: %v", err)
	}
}
