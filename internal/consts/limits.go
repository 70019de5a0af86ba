package consts

import "time"

// Buffer sizes for socket I/O
const (
	// BufferSize1KB is 1 kilobyte
	BufferSize1KB = 1024
	// BufferSize8KB is 8 kilobytes
	BufferSize8KB = 8 * 1024
)

// Connection limits
const (
	// SendQueueDepth is the per-connection outbound frame buffer
	SendQueueDepth = 256
	// MaxFrameSize is the maximum inbound frame size in bytes
	MaxFrameSize = BufferSize8KB
	// MaxLatencySamples bounds a worker's round-trip history
	MaxLatencySamples = 10
)

// Heartbeat defaults
const (
	// DefaultHeartbeatInterval is the default sweep interval
	DefaultHeartbeatInterval = 30 * time.Second
	// DefaultHeartbeatTimeout is the default liveness timeout
	DefaultHeartbeatTimeout = 60 * time.Second
)

// Timeouts for various operations
const (
	// Timeout1Second is a 1 second timeout
	Timeout1Second = 1 * time.Second
	// Timeout5Seconds is a 5 second timeout
	Timeout5Seconds = 5 * time.Second
	// Timeout10Seconds is a 10 second timeout
	Timeout10Seconds = 10 * time.Second
	// Timeout30Seconds is a 30 second timeout
	Timeout30Seconds = 30 * time.Second
)
