package hub

import (
	"github.com/codefionn/workhub/internal/channel"
	"github.com/codefionn/workhub/internal/logger"
	"github.com/codefionn/workhub/internal/protocol"
)

// Stats aggregates worker-facing observability numbers
type Stats struct {
	ConnectedWorkers int            `json:"connectedWorkers"`
	ByCapability     map[string]int `json:"byCapability"`

	// AvgLatencyMs is the mean of each worker's own mean sample; workers
	// without samples are excluded, not counted as zero.
	AvgLatencyMs float64 `json:"avgLatencyMs"`
}

// Publish fans an event out to every subscriber of the channel. Bridges
// pass through a secondary content filter keyed on their fixed scope;
// workers and browsers always receive a matched event. Delivery is
// best-effort: a closed transport is skipped silently.
func (h *Hub) Publish(channelName string, data map[string]interface{}) {
	subs := h.channels.Subscribers(channelName)
	if len(subs) == 0 {
		logger.Debug("No subscribers for channel %s", channelName)
		return
	}

	evt := protocol.NewEvent(channelName, data)

	var targets []transport
	filtered := 0

	h.mu.Lock()
	for _, id := range subs {
		if b, ok := h.bridges[id]; ok {
			if !bridgeScopeMatches(b, data) {
				filtered++
				continue
			}
			targets = append(targets, b.conn)
			continue
		}
		if bc, ok := h.browsers[id]; ok {
			targets = append(targets, bc.conn)
			continue
		}
		if w, ok := h.workers[id]; ok {
			targets = append(targets, w.conn)
		}
	}
	h.mu.Unlock()

	delivered := 0
	for _, t := range targets {
		if t.Send(evt) {
			delivered++
		}
	}

	logger.Debug("Published %s to %d/%d subscribers (%d filtered)", channelName, delivered, len(subs), filtered)
}

// bridgeScopeMatches applies the bridge content filter: a scope field in
// the event payload must equal the bridge's fixed scope; events or bridges
// without a given scope field pass that check.
func bridgeScopeMatches(b *BridgeClient, data map[string]interface{}) bool {
	return scopeFieldMatches(data["sessionId"], b.SessionID) &&
		scopeFieldMatches(data["projectId"], b.ProjectID) &&
		scopeFieldMatches(data["workingDir"], b.WorkingDir)
}

func scopeFieldMatches(v interface{}, scope string) bool {
	s, ok := v.(string)
	if !ok || s == "" || scope == "" {
		return true
	}
	return s == scope
}

// Broadcast sends a frame to every connected worker unconditionally,
// bypassing the subscription index.
func (h *Hub) Broadcast(msg interface{}) {
	h.mu.Lock()
	targets := make([]transport, 0, len(h.workers))
	for _, w := range h.workers {
		targets = append(targets, w.conn)
	}
	h.mu.Unlock()

	for _, t := range targets {
		t.Send(msg)
	}
}

// GetStats reports connected-worker totals. A worker with N capabilities
// contributes to N capability buckets.
func (h *Hub) GetStats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	stats := Stats{
		ConnectedWorkers: len(h.workers),
		ByCapability:     make(map[string]int),
	}

	sum := 0.0
	sampled := 0
	for _, w := range h.workers {
		for _, cap := range w.Capabilities {
			stats.ByCapability[cap]++
		}
		if len(w.LatencyHistory) > 0 {
			mean := 0.0
			for _, s := range w.LatencyHistory {
				mean += s
			}
			sum += mean / float64(len(w.LatencyHistory))
			sampled++
		}
	}
	if sampled > 0 {
		stats.AvgLatencyMs = sum / float64(sampled)
	}

	return stats
}

// ChannelStats reports subscription index totals
func (h *Hub) ChannelStats() channel.Stats {
	return h.channels.GetStats()
}
