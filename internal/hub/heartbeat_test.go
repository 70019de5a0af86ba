package hub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codefionn/workhub/internal/protocol"
)

// setNow pins the hub clock for the duration of a test.
func setNow(t *testing.T, at time.Time) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = orig })
}

func TestSweepEvictsStaleBrowser(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	setNow(t, base)

	h := New(Options{})
	_, ft, _ := connectBrowser(t, h)

	// Default timeout is 60s; 70s of silence is past the deadline.
	h.sweep(base.Add(70 * time.Second))

	closed, code := ft.closedWith()
	assert.True(t, closed)
	assert.Equal(t, protocol.CloseHeartbeatTimeout, code)
	_, browsers, _ := h.Counts()
	assert.Equal(t, 0, browsers)
}

func TestSweepEvictsStaleWorker(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	setNow(t, base)

	var disconnected []string
	h := New(Options{Callbacks: Callbacks{
		OnWorkerDisconnected: func(workerID string) { disconnected = append(disconnected, workerID) },
	}})
	_, ft, workerID := connectWorker(t, h, "build")

	h.sweep(base.Add(70 * time.Second))

	closed, code := ft.closedWith()
	assert.True(t, closed)
	assert.Equal(t, protocol.CloseHeartbeatTimeout, code)
	assert.Equal(t, []string{workerID}, disconnected)
	workers, _, _ := h.Counts()
	assert.Equal(t, 0, workers)
}

func TestSweepProbesLiveClients(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	setNow(t, base)

	h := New(Options{})
	_, wft, _ := connectWorker(t, h, "build")
	_, bft, _ := connectBrowser(t, h)
	_, gft, _ := connectBridge(t, h, "sess-1", "")
	wft.reset()
	bft.reset()
	gft.reset()

	h.sweep(base.Add(10 * time.Second))

	// Workers are probed at the transport level, everyone else with an
	// application ping frame.
	assert.Equal(t, 1, wft.pingCount())
	assert.Empty(t, framesOfType[*protocol.Ping](wft))
	assert.Len(t, framesOfType[*protocol.Ping](bft), 1)
	assert.Len(t, framesOfType[*protocol.Ping](gft), 1)
	assert.Equal(t, 0, bft.pingCount())
}

func TestHeartbeatFrameDefersEviction(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	setNow(t, base)

	h := New(Options{})
	c, _, _ := connectWorker(t, h, "build")

	setNow(t, base.Add(40*time.Second))
	h.HandleFrame(c, mustFrame(t, map[string]interface{}{"type": "heartbeat"}))

	h.sweep(base.Add(70 * time.Second))

	workers, _, _ := h.Counts()
	assert.Equal(t, 1, workers)
}

func TestAppPongRefreshesBrowserNotWorker(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	setNow(t, base)

	h := New(Options{})
	bc, _, _ := connectBrowser(t, h)
	wc, _, _ := connectWorker(t, h, "build")

	setNow(t, base.Add(40*time.Second))
	h.HandleFrame(bc, mustFrame(t, map[string]interface{}{"type": "pong"}))
	h.HandleFrame(wc, mustFrame(t, map[string]interface{}{"type": "pong"}))

	h.sweep(base.Add(70 * time.Second))

	// The browser's liveness was refreshed; the worker's was not, since
	// worker liveness comes from heartbeat frames only.
	workers, browsers, _ := h.Counts()
	assert.Equal(t, 1, browsers)
	assert.Equal(t, 0, workers)
}

func TestTransportPongRecordsLatency(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	setNow(t, base)

	h := New(Options{})
	c, _, workerID := connectWorker(t, h, "build")

	h.sweep(base)
	setNow(t, base.Add(5*time.Millisecond))
	h.HandleTransportPong(c)

	h.mu.Lock()
	history := append([]float64(nil), h.workers[workerID].LatencyHistory...)
	h.mu.Unlock()
	require.Len(t, history, 1)
	assert.InDelta(t, 5.0, history[0], 0.001)

	// A pong without an outstanding probe records nothing.
	h.HandleTransportPong(c)
	h.mu.Lock()
	n := len(h.workers[workerID].LatencyHistory)
	h.mu.Unlock()
	assert.Equal(t, 1, n)
}

func TestLatencyHistoryBounded(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	h := New(Options{})
	c, _, workerID := connectWorker(t, h, "build")

	for i := 0; i < 12; i++ {
		setNow(t, base)
		h.sweep(base)
		setNow(t, base.Add(time.Duration(i+1)*time.Millisecond))
		h.HandleTransportPong(c)
	}

	h.mu.Lock()
	history := append([]float64(nil), h.workers[workerID].LatencyHistory...)
	h.mu.Unlock()

	// Oldest samples fall off the front past the bound of ten.
	require.Len(t, history, 10)
	assert.InDelta(t, 3.0, history[0], 0.001)
	assert.InDelta(t, 12.0, history[9], 0.001)
}

func TestStartStopHeartbeat(t *testing.T) {
	h := New(Options{HeartbeatInterval: time.Hour})

	h.StartHeartbeat()
	h.StartHeartbeat() // second start is a no-op
	h.StopHeartbeat()
	h.StopHeartbeat() // stop after stop is a no-op
}
