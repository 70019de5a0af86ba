package hub

import (
	"github.com/codefionn/workhub/internal/logger"
	"github.com/codefionn/workhub/internal/protocol"
)

// HandleFrame decodes and routes one inbound frame. Malformed frames get
// an error reply and leave the connection open; unknown types are logged
// and dropped. Frames for a single connection arrive from its read pump,
// so per-connection order is preserved.
func (h *Hub) HandleFrame(c *connection, data []byte) {
	typ, err := protocol.FrameType(data)
	if err != nil {
		logger.Warn("Invalid frame from %s: %v", c.id, err)
		c.t.Send(protocol.NewError("invalid frame: " + err.Error()))
		return
	}

	switch typ {
	case protocol.TypeAuth:
		h.handleAuth(c, data)
	case protocol.TypeRegister:
		h.handleRegister(c, data)
	case protocol.TypeHeartbeat:
		h.handleHeartbeat(c)
	case protocol.TypePong:
		h.handleAppPong(c)
	case protocol.TypeSubscribe:
		h.handleSubscribe(c, data)
	case protocol.TypeUnsubscribe:
		h.handleUnsubscribe(c, data)
	case protocol.TypeTaskComplete:
		h.handleTaskComplete(c, data)
	case protocol.TypeTaskError:
		h.handleTaskError(c, data)
	case protocol.TypeTaskProgress:
		h.handleTaskProgress(c, data)
	default:
		logger.Warn("Dropping frame with unknown type %q from %s", typ, c.id)
	}
}

// handleHeartbeat answers a client heartbeat and refreshes liveness
func (h *Hub) handleHeartbeat(c *connection) {
	now := timeNow()

	h.mu.Lock()
	if w, ok := h.workers[c.id]; ok {
		w.LastHeartbeat = now
	} else if b, ok := h.browsers[c.id]; ok {
		b.LastHeartbeat = now
	} else if b, ok := h.bridges[c.id]; ok {
		b.LastHeartbeat = now
	}
	h.mu.Unlock()

	c.t.Send(protocol.NewHeartbeatAck())
}

// handleAppPong refreshes liveness for browsers and bridges only; worker
// liveness comes from heartbeat frames and worker latency from
// transport-level pongs.
func (h *Hub) handleAppPong(c *connection) {
	now := timeNow()

	h.mu.Lock()
	if b, ok := h.browsers[c.id]; ok {
		b.LastHeartbeat = now
	} else if b, ok := h.bridges[c.id]; ok {
		b.LastHeartbeat = now
	}
	h.mu.Unlock()
}

func (h *Hub) handleSubscribe(c *connection, data []byte) {
	var f protocol.SubscribeFrame
	if err := protocol.Unmarshal(data, &f); err != nil {
		c.t.Send(protocol.NewError("invalid subscribe frame"))
		return
	}

	if c.role == "" {
		c.t.Send(protocol.NewError("not authenticated"))
		return
	}

	applied := h.channels.Subscribe(c.id, f.Channels)
	c.t.Send(protocol.NewSubscribed(applied))
}

func (h *Hub) handleUnsubscribe(c *connection, data []byte) {
	var f protocol.UnsubscribeFrame
	if err := protocol.Unmarshal(data, &f); err != nil {
		c.t.Send(protocol.NewError("invalid unsubscribe frame"))
		return
	}

	if c.role == "" {
		c.t.Send(protocol.NewError("not authenticated"))
		return
	}

	h.channels.Unsubscribe(c.id, f.Channels)
}
