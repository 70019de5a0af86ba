// Package channel implements the pattern-based subscription index used to
// fan hub events out to connected clients. Patterns are either exact
// channel names or prefix wildcards ("task:*").
package channel

import (
	"sort"
	"strings"
	"sync"

	"github.com/codefionn/workhub/internal/logger"
)

// Manager maintains a many-to-many mapping between client identifiers and
// channel patterns. It is safe for concurrent use.
type Manager struct {
	mu sync.RWMutex

	// subscriptions maps clientID -> set of patterns
	subscriptions map[string]map[string]struct{}
}

// Stats reports subscription index totals for observability
type Stats struct {
	TotalPatterns     int            `json:"totalPatterns"`
	SubscribedClients int            `json:"subscribedClients"`
	PatternCounts     map[string]int `json:"patternCounts"`
}

// NewManager creates an empty subscription index
func NewManager() *Manager {
	return &Manager{
		subscriptions: make(map[string]map[string]struct{}),
	}
}

// Subscribe adds patterns for a client and returns the subset it actually
// applied; empty patterns and duplicates are skipped.
func (m *Manager) Subscribe(clientID string, patterns []string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.subscriptions[clientID]
	if !ok {
		set = make(map[string]struct{})
		m.subscriptions[clientID] = set
	}

	applied := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, exists := set[p]; exists {
			continue
		}
		set[p] = struct{}{}
		applied = append(applied, p)
	}

	if len(applied) > 0 {
		logger.Debug("Client %s subscribed to %v", clientID, applied)
	}
	return applied
}

// Unsubscribe removes the given patterns for a client
func (m *Manager) Unsubscribe(clientID string, patterns []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.subscriptions[clientID]
	if !ok {
		return
	}

	for _, p := range patterns {
		delete(set, p)
	}
	if len(set) == 0 {
		delete(m.subscriptions, clientID)
	}
}

// RemoveClient purges all of a client's patterns in one step. Used on
// disconnect, eviction and failed registration; a no-op for unknown ids.
func (m *Manager) RemoveClient(clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.subscriptions, clientID)
}

// Subscribers resolves every client whose stored pattern matches the
// concrete channel name. The result is deduplicated and sorted for
// deterministic delivery order.
func (m *Manager) Subscribers(channel string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []string
	for clientID, set := range m.subscriptions {
		for p := range set {
			if Matches(p, channel) {
				out = append(out, clientID)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// Matches reports whether a stored pattern matches a concrete channel name.
// A trailing "*" matches any channel with the preceding prefix; "*" alone
// matches everything.
func Matches(pattern, channel string) bool {
	if pattern == channel {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(channel, strings.TrimSuffix(pattern, "*"))
	}
	return false
}

// GetStats reports totals over the subscription index
func (m *Manager) GetStats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int)
	total := 0
	for _, set := range m.subscriptions {
		for p := range set {
			counts[p]++
			total++
		}
	}

	return Stats{
		TotalPatterns:     total,
		SubscribedClients: len(m.subscriptions),
		PatternCounts:     counts,
	}
}
