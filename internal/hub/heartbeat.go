package hub

import (
	"time"

	"github.com/codefionn/workhub/internal/logger"
	"github.com/codefionn/workhub/internal/protocol"
)

// StartHeartbeat launches the periodic liveness sweep
func (h *Hub) StartHeartbeat() {
	h.mu.Lock()
	if h.heartbeatStop != nil || h.closed {
		h.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	h.heartbeatStop = stop
	h.heartbeatDone = done
	h.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(h.heartbeatInterval)
		defer ticker.Stop()

		logger.Info("Heartbeat monitor started (interval=%v timeout=%v)", h.heartbeatInterval, h.heartbeatTimeout)
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				h.sweep(timeNow())
			}
		}
	}()
}

// StopHeartbeat stops the sweep loop and waits for it to exit
func (h *Hub) StopHeartbeat() {
	h.mu.Lock()
	stop := h.heartbeatStop
	done := h.heartbeatDone
	h.heartbeatStop = nil
	h.heartbeatDone = nil
	h.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

// sweep probes every registry entry and evicts the stale ones. Workers get
// a transport-level ping with the send time recorded for the latency
// sample; browsers and bridges get an application-level ping frame.
func (h *Hub) sweep(now time.Time) {
	type evictee struct {
		id string
		t  transport
	}
	var evict []evictee
	var transportPings []transport
	var appPings []transport

	h.mu.Lock()
	for id, w := range h.workers {
		if now.Sub(w.LastHeartbeat) > h.heartbeatTimeout {
			evict = append(evict, evictee{id, w.conn})
			continue
		}
		w.lastPingTime = now
		transportPings = append(transportPings, w.conn)
	}
	for id, b := range h.browsers {
		if now.Sub(b.LastHeartbeat) > h.heartbeatTimeout {
			evict = append(evict, evictee{id, b.conn})
			continue
		}
		appPings = append(appPings, b.conn)
	}
	for id, b := range h.bridges {
		if now.Sub(b.LastHeartbeat) > h.heartbeatTimeout {
			evict = append(evict, evictee{id, b.conn})
			continue
		}
		appPings = append(appPings, b.conn)
	}
	h.mu.Unlock()

	for _, t := range transportPings {
		if err := t.Ping(); err != nil {
			logger.Debug("Transport ping failed: %v", err)
		}
	}
	for _, t := range appPings {
		t.Send(protocol.NewPing())
	}

	for _, e := range evict {
		logger.Info("Evicting %s after heartbeat timeout", e.id)
		e.t.Close(protocol.CloseHeartbeatTimeout, "heartbeat timeout")
		h.disconnectID(e.id)
	}
}

// HandleTransportPong records one round-trip latency sample for a worker
// answering the sweep's transport ping. The probe time is consumed once
// and cleared.
func (h *Hub) HandleTransportPong(c *connection) {
	now := timeNow()

	h.mu.Lock()
	defer h.mu.Unlock()

	w, ok := h.workers[c.id]
	if !ok || w.lastPingTime.IsZero() {
		return
	}
	w.addLatencySample(float64(now.Sub(w.lastPingTime).Microseconds()) / 1000.0)
	w.lastPingTime = time.Time{}
}
