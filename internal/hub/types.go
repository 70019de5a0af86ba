package hub

import (
	"time"

	"github.com/codefionn/workhub/internal/consts"
)

// timeNow is swapped out by tests that steer the clock
var timeNow = time.Now

// Client roles decided from the first auth frame
const (
	roleWorker  = "worker"
	roleBrowser = "browser"
	roleBridge  = "sse-writer"
)

// Fixed permission sets granted on admission
var (
	browserPermissions = []string{"events:subscribe"}
	bridgePermissions  = []string{"events:subscribe", "events:forward"}
)

// DefaultBridgeChannels is the channel set every bridge is auto-subscribed
// to on admission.
var DefaultBridgeChannels = []string{"session:*", "task:*", "worker:*"}

// transport is the hub's view of a connection. Send is a best-effort
// enqueue that reports whether the frame was accepted; Ping is a
// transport-level probe distinct from the application-level ping frame.
type transport interface {
	Send(v interface{}) bool
	Ping() error
	Close(code int, reason string)
	RemoteAddr() string
}

// connection tracks per-socket protocol state. The id starts as a
// temporary pending identifier and is replaced on admission or
// registration; all fields are guarded by the hub mutex.
type connection struct {
	id            string
	t             transport
	local         bool
	authenticated bool
	role          string
}

// pendingAuth bridges a successful store-backed auth and the following
// register frame on the same connection.
type pendingAuth struct {
	tokenID  string
	systemID string
}

// ConnectedWorker is a registered compute client running at most one task
// at a time.
type ConnectedWorker struct {
	ID            string
	Capabilities  []string
	Hostname      string
	ConnectedAt   time.Time
	LastHeartbeat time.Time
	Metadata      map[string]interface{}

	// Task fields are always both set or both empty
	CurrentTaskID   string
	CurrentTaskType string

	// Bounded round-trip history in milliseconds, oldest first
	LatencyHistory []float64

	// Present only under store-backed auth
	TokenID  string
	SystemID string

	// PendingTermination is one-way: the worker finishes its current task
	// and becomes ineligible for new assignment.
	PendingTermination bool

	conn                transport
	lastPingTime        time.Time
	terminationNotified bool
}

// addLatencySample appends a round-trip sample, evicting the oldest past
// the bound.
func (w *ConnectedWorker) addLatencySample(ms float64) {
	w.LatencyHistory = append(w.LatencyHistory, ms)
	if len(w.LatencyHistory) > consts.MaxLatencySamples {
		w.LatencyHistory = w.LatencyHistory[1:]
	}
}

// hasAnyCapability reports whether the worker advertises at least one of
// the given capabilities.
func (w *ConnectedWorker) hasAnyCapability(capabilities []string) bool {
	for _, want := range capabilities {
		for _, have := range w.Capabilities {
			if have == want {
				return true
			}
		}
	}
	return false
}

// available reports whether the worker can take a new task
func (w *ConnectedWorker) available() bool {
	return w.CurrentTaskID == "" && !w.PendingTermination
}

// BrowserClient is an interactive observer with no task responsibilities
type BrowserClient struct {
	ID            string
	ConnectedAt   time.Time
	LastHeartbeat time.Time

	conn transport
}

// BridgeClient re-emits hub events as an outbound event stream, scoped to
// one session/project; the scope doubles as the event content filter.
type BridgeClient struct {
	ID            string
	ConnectedAt   time.Time
	LastHeartbeat time.Time

	SessionID  string
	ProjectID  string
	WorkingDir string

	conn transport
}
