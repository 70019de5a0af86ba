package hub

import (
	"context"
	"fmt"

	"github.com/codefionn/workhub/internal/auth"
	"github.com/codefionn/workhub/internal/consts"
	"github.com/codefionn/workhub/internal/logger"
	"github.com/codefionn/workhub/internal/protocol"
)

// classifyRole decides the client role from the first auth frame: an
// explicit bridge marker wins, a token or capability list implies worker,
// anything else is a browser.
func classifyRole(f *protocol.AuthFrame) string {
	if f.ClientType == roleBridge || f.ClientType == "bridge" {
		return roleBridge
	}
	if f.Token != "" || len(f.Capabilities) > 0 {
		return roleWorker
	}
	return roleBrowser
}

func (h *Hub) handleAuth(c *connection, data []byte) {
	var f protocol.AuthFrame
	if err := protocol.Unmarshal(data, &f); err != nil {
		c.t.Send(protocol.NewError("invalid auth frame"))
		return
	}

	if c.authenticated {
		c.t.Send(protocol.NewError("already authenticated"))
		return
	}

	switch classifyRole(&f) {
	case roleBridge:
		h.admitBridge(c, &f)
	case roleWorker:
		h.authenticateWorker(c, &f)
	default:
		h.admitBrowser(c)
	}
}

// admitBrowser admits an observer client. Browsers need no credential.
func (h *Hub) admitBrowser(c *connection) {
	now := timeNow()

	h.mu.Lock()
	id := fmt.Sprintf("browser-%d-%s", h.nextOrdinal(), b36now())
	h.rekeyLocked(c, id)
	c.authenticated = true
	c.role = roleBrowser
	h.browsers[id] = &BrowserClient{
		ID:            id,
		ConnectedAt:   now,
		LastHeartbeat: now,
		conn:          c.t,
	}
	h.mu.Unlock()

	c.t.Send(protocol.NewAuthSuccess(id, browserPermissions))
	logger.Info("Browser connected: %s", id)
}

// admitBridge admits an sse-writer bridge, capturing its fixed scope and
// auto-subscribing it to the bridge channel set.
func (h *Hub) admitBridge(c *connection, f *protocol.AuthFrame) {
	now := timeNow()

	h.mu.Lock()
	id := fmt.Sprintf("sse-writer-%d-%s", h.nextOrdinal(), b36now())
	h.rekeyLocked(c, id)
	c.authenticated = true
	c.role = roleBridge
	h.bridges[id] = &BridgeClient{
		ID:            id,
		ConnectedAt:   now,
		LastHeartbeat: now,
		SessionID:     f.SessionID,
		ProjectID:     f.ProjectID,
		WorkingDir:    f.WorkingDir,
		conn:          c.t,
	}
	h.mu.Unlock()

	h.channels.Subscribe(id, DefaultBridgeChannels)
	c.t.Send(protocol.NewAuthSuccess(id, bridgePermissions))
	logger.Info("Bridge connected: %s (session=%s project=%s)", id, f.SessionID, f.ProjectID)
}

// authenticateWorker runs the two-strategy worker auth. The token-store
// call happens before any lock is taken so its latency cannot stall other
// connections.
func (h *Hub) authenticateWorker(c *connection, f *protocol.AuthFrame) {
	ctx, cancel := context.WithTimeout(context.Background(), consts.Timeout10Seconds)
	res := h.authn.AuthenticateWorker(ctx, f.Token, c.local)
	cancel()

	if !res.OK {
		logger.Warn("Worker auth failed for %s: %s", c.id, res.Reason)
		c.t.Send(protocol.NewAuthFailed(res.Reason))
		c.t.Close(protocol.CloseUnauthorized, res.Reason)
		return
	}

	h.mu.Lock()
	c.authenticated = true
	if res.Method == auth.MethodTokenStore {
		systemID := res.SystemID
		if systemID == "" {
			systemID = f.SystemID
		}
		h.pending[c.id] = pendingAuth{tokenID: res.TokenID, systemID: systemID}
	}
	h.mu.Unlock()

	c.t.Send(protocol.NewAuthSuccess("", nil))
	logger.Info("Worker %s authenticated via %s", c.id, res.Method)
}

// rekeyLocked replaces a connection's identifier; hub lock must be held
func (h *Hub) rekeyLocked(c *connection, newID string) {
	delete(h.conns, c.id)
	c.id = newID
	h.conns[newID] = c
}
