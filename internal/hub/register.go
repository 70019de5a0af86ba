package hub

import (
	"context"
	"fmt"

	"github.com/codefionn/workhub/internal/auth"
	"github.com/codefionn/workhub/internal/consts"
	"github.com/codefionn/workhub/internal/logger"
	"github.com/codefionn/workhub/internal/protocol"
)

// handleRegister turns an authenticated connection into a ConnectedWorker.
// A pending-auth entry from a store-backed auth is consumed here, and the
// store upsert failure is logged but never blocks registration.
func (h *Hub) handleRegister(c *connection, data []byte) {
	var f protocol.RegisterFrame
	if err := protocol.Unmarshal(data, &f); err != nil {
		c.t.Send(protocol.NewError("invalid register frame"))
		return
	}

	// Admission into a registry is final: browsers and bridges must not
	// cross over into the worker path, or their registry entry would be
	// orphaned under the old identifier.
	if c.role == roleBrowser || c.role == roleBridge {
		c.t.Send(protocol.NewError("already admitted as " + c.role))
		return
	}

	if h.authn.RequiresAuth(c.local) && !c.authenticated {
		if !c.local {
			c.t.Send(protocol.NewAuthFailed("registration requires authentication"))
			c.t.Close(protocol.CloseUnauthorized, "registration requires authentication")
			return
		}
		c.t.Send(protocol.NewError("authentication required"))
		return
	}

	capabilities := append([]string(nil), f.Capabilities...)
	now := timeNow()

	h.mu.Lock()
	if _, ok := h.workers[c.id]; ok {
		h.mu.Unlock()
		c.t.Send(protocol.NewError("already registered"))
		return
	}

	connID := c.id
	p, hadPending := h.pending[connID]
	delete(h.pending, connID)

	workerID := fmt.Sprintf("worker-%d-%s", h.nextOrdinal(), b36now())
	h.rekeyLocked(c, workerID)
	c.role = roleWorker

	w := &ConnectedWorker{
		ID:            workerID,
		Capabilities:  capabilities,
		Hostname:      f.Hostname,
		ConnectedAt:   now,
		LastHeartbeat: now,
		Metadata:      f.Metadata,
		conn:          c.t,
	}
	if hadPending {
		w.TokenID = p.tokenID
		w.SystemID = p.systemID
		if w.SystemID == "" {
			w.SystemID = connID
		}
	}
	h.workers[workerID] = w
	h.workerOrder = append(h.workerOrder, workerID)
	h.mu.Unlock()

	if hadPending && h.store != nil {
		h.upsertRegistration(w, f.Hostname, capabilities, f.Metadata)
	}

	c.t.Send(protocol.NewRegistered(workerID, capabilities))
	logger.Info("Worker registered: %s capabilities=%v hostname=%s", workerID, capabilities, f.Hostname)
	h.callbacks.workerConnected(workerID)
}

// upsertRegistration mirrors the registration into the token store; any
// failure leaves the worker registered-but-untracked.
func (h *Hub) upsertRegistration(w *ConnectedWorker, hostname string, capabilities []string, metadata map[string]interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), consts.Timeout10Seconds)
	defer cancel()

	_, err := h.store.RegisterWorker(ctx, w.TokenID, w.SystemID, auth.Registration{
		Hostname:     hostname,
		WorkerID:     w.ID,
		Capabilities: capabilities,
		Metadata:     metadata,
	})
	if err != nil {
		logger.Warn("Token store registration for %s failed: %v", w.ID, err)
	}
}
