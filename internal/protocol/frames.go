// Package protocol defines the JSON frame vocabulary spoken on the hub's
// websocket endpoint. Every frame is a flat JSON object tagged by "type";
// inbound and outbound frames each have a typed struct so dispatch is
// exhaustive rather than map-based.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Client→server frame types
const (
	TypeAuth         = "auth"
	TypeRegister     = "register"
	TypeHeartbeat    = "heartbeat"
	TypePong         = "pong"
	TypeSubscribe    = "subscribe"
	TypeUnsubscribe  = "unsubscribe"
	TypeTaskComplete = "task:complete"
	TypeTaskError    = "task:error"
	TypeTaskProgress = "task:progress"
)

// Server→client frame types
const (
	TypeConnectionPending = "connection:pending"
	TypeAuthSuccess       = "auth:success"
	TypeAuthFailed        = "auth:failed"
	TypeRegistered        = "registered"
	TypeHeartbeatAck      = "heartbeat:ack"
	TypePing              = "ping"
	TypeSubscribed        = "subscribed"
	TypeTaskAssign        = "task:assign"
	TypeEvent             = "event"
	TypeError             = "error"
)

// Websocket close codes used by the hub
const (
	// CloseUnauthorized terminates a connection that failed authentication
	CloseUnauthorized = 4001
	// CloseHeartbeatTimeout terminates a connection evicted by the monitor
	CloseHeartbeatTimeout = 4002
)

var (
	// ErrMalformed indicates a frame that is not a valid JSON object
	ErrMalformed = errors.New("malformed frame")
	// ErrMissingType indicates a frame without a type tag
	ErrMissingType = errors.New("frame missing type")
)

type envelope struct {
	Type string `json:"type"`
}

// FrameType extracts the type tag from a raw frame
func FrameType(data []byte) (string, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return "", ErrMissingType
	}
	return env.Type, nil
}

// Unmarshal decodes a raw frame into the typed struct for its type tag
func Unmarshal(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// ParseData converts loosely-typed payload data into a struct via a JSON
// round-trip
func ParseData(data map[string]interface{}, v interface{}) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}
	if err := json.Unmarshal(jsonBytes, v); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}
	return nil
}

// Timestamp returns the wire timestamp format used in event frames
func Timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
