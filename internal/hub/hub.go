// Package hub implements the real-time connection hub: a single websocket
// endpoint accepting workers, browsers and sse-writer bridges, with
// role-aware authentication, pattern-based event fan-out, heartbeat-driven
// eviction and single-task-per-worker dispatch.
package hub

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/codefionn/workhub/internal/auth"
	"github.com/codefionn/workhub/internal/channel"
	"github.com/codefionn/workhub/internal/consts"
	"github.com/codefionn/workhub/internal/logger"
	"github.com/codefionn/workhub/internal/protocol"
)

// Options configures a Hub
type Options struct {
	// Authenticator applies the worker auth strategies; required
	Authenticator *auth.Authenticator

	// Store is the optional token/registration collaborator. It must be
	// the same store the Authenticator validates against.
	Store auth.TokenStore

	// Callbacks are the lifecycle hooks
	Callbacks Callbacks

	HeartbeatInterval time.Duration
	HeartbeatTimeout  time.Duration
}

// Hub owns the three client registries, the pending-auth table and the
// subscription index. All registry mutations are serialized by one mutex,
// which is never held across a transport write or a token-store call.
type Hub struct {
	authn     *auth.Authenticator
	store     auth.TokenStore
	channels  *channel.Manager
	callbacks Callbacks

	heartbeatInterval time.Duration
	heartbeatTimeout  time.Duration

	mu          sync.Mutex
	conns       map[string]*connection
	workers     map[string]*ConnectedWorker
	workerOrder []string
	browsers    map[string]*BrowserClient
	bridges     map[string]*BridgeClient
	pending     map[string]pendingAuth
	ordinal     uint64
	closed      bool

	heartbeatStop chan struct{}
	heartbeatDone chan struct{}
}

// New creates a Hub
func New(opts Options) *Hub {
	if opts.Authenticator == nil {
		opts.Authenticator = auth.NewAuthenticator(opts.Store, "")
	}
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = consts.DefaultHeartbeatInterval
	}
	if opts.HeartbeatTimeout <= 0 {
		opts.HeartbeatTimeout = consts.DefaultHeartbeatTimeout
	}

	return &Hub{
		authn:             opts.Authenticator,
		store:             opts.Store,
		channels:          channel.NewManager(),
		callbacks:         opts.Callbacks,
		heartbeatInterval: opts.HeartbeatInterval,
		heartbeatTimeout:  opts.HeartbeatTimeout,
		conns:             make(map[string]*connection),
		workers:           make(map[string]*ConnectedWorker),
		browsers:          make(map[string]*BrowserClient),
		bridges:           make(map[string]*BridgeClient),
		pending:           make(map[string]pendingAuth),
	}
}

// Channels exposes the subscription index
func (h *Hub) Channels() *channel.Manager {
	return h.channels
}

// nextOrdinal must be called with the hub lock held
func (h *Hub) nextOrdinal() uint64 {
	h.ordinal++
	return h.ordinal
}

func b36now() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 36)
}

// Accept admits a raw transport into the hub under a temporary pending
// identifier and announces whether authentication is required. Returns nil
// once the hub is shut down.
func (h *Hub) Accept(t transport) *connection {
	local := auth.IsLocalAddr(t.RemoteAddr())
	requiresAuth := h.authn.RequiresAuth(local)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		t.Close(websocket.CloseGoingAway, "server shutdown")
		return nil
	}
	id := fmt.Sprintf("pending-%d-%d", h.nextOrdinal(), time.Now().UnixMilli())
	c := &connection{id: id, t: t, local: local}
	h.conns[id] = c
	h.mu.Unlock()

	t.Send(protocol.NewConnectionPending(id, requiresAuth))
	logger.Info("Connection accepted: %s (local=%v requiresAuth=%v addr=%s)", id, local, requiresAuth, t.RemoteAddr())
	return c
}

// Disconnect runs the shared cleanup for a connection. It is idempotent:
// re-invoking it for an identifier already absent from every registry is a
// no-op. Safe to call from any goroutine.
func (h *Hub) Disconnect(c *connection) {
	if c == nil {
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	cur, ok := h.conns[c.id]
	if !ok || cur != c {
		h.mu.Unlock()
		return
	}
	id := c.id
	delete(h.conns, id)
	delete(h.pending, id)
	delete(h.browsers, id)
	delete(h.bridges, id)

	var removed *ConnectedWorker
	if w, ok := h.workers[id]; ok {
		removed = w
		delete(h.workers, id)
		h.removeWorkerOrder(id)
	}
	h.mu.Unlock()

	h.channels.RemoveClient(id)
	c.t.Close(websocket.CloseNormalClosure, "")

	if removed != nil {
		if h.store != nil && removed.SystemID != "" {
			ctx, cancel := context.WithTimeout(context.Background(), consts.Timeout10Seconds)
			if err := h.store.DisconnectWorker(ctx, removed.SystemID); err != nil {
				logger.Warn("Token store disconnect for %s failed: %v", removed.SystemID, err)
			}
			cancel()
		}
		logger.Info("Worker %s disconnected", id)
		h.callbacks.workerDisconnected(id)
	} else {
		logger.Info("Client %s disconnected", id)
	}
}

// disconnectID resolves an identifier to its connection and cleans it up
func (h *Hub) disconnectID(id string) {
	h.mu.Lock()
	c := h.conns[id]
	h.mu.Unlock()
	h.Disconnect(c)
}

// removeWorkerOrder must be called with the hub lock held
func (h *Hub) removeWorkerOrder(id string) {
	for i, wid := range h.workerOrder {
		if wid == id {
			h.workerOrder = append(h.workerOrder[:i], h.workerOrder[i+1:]...)
			return
		}
	}
}

// Counts returns the per-registry connection counts
func (h *Hub) Counts() (workers, browsers, bridges int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.workers), len(h.browsers), len(h.bridges)
}

// Shutdown closes every connection with a going-away code, clears all
// registries and stops the heartbeat monitor. No callback fires after it
// returns.
func (h *Hub) Shutdown() {
	h.StopHeartbeat()

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true

	conns := make([]*connection, 0, len(h.conns))
	ids := make([]string, 0, len(h.conns))
	for id, c := range h.conns {
		conns = append(conns, c)
		ids = append(ids, id)
	}
	var systemIDs []string
	if h.store != nil {
		for _, w := range h.workers {
			if w.SystemID != "" {
				systemIDs = append(systemIDs, w.SystemID)
			}
		}
	}
	h.conns = make(map[string]*connection)
	h.workers = make(map[string]*ConnectedWorker)
	h.workerOrder = nil
	h.browsers = make(map[string]*BrowserClient)
	h.bridges = make(map[string]*BridgeClient)
	h.pending = make(map[string]pendingAuth)
	h.mu.Unlock()

	for _, id := range ids {
		h.channels.RemoveClient(id)
	}
	for _, c := range conns {
		c.t.Close(websocket.CloseGoingAway, "server shutdown")
	}

	// Store-tracked workers are marked offline so the collaborator does
	// not keep them listed past the daemon's lifetime.
	for _, sid := range systemIDs {
		ctx, cancel := context.WithTimeout(context.Background(), consts.Timeout10Seconds)
		if err := h.store.DisconnectWorker(ctx, sid); err != nil {
			logger.Warn("Token store disconnect for %s failed: %v", sid, err)
		}
		cancel()
	}

	logger.Info("Hub shut down, %d connections closed", len(conns))
}
