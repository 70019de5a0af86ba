package protocol

// ConnectionPending greets a freshly accepted connection
type ConnectionPending struct {
	Type         string `json:"type"`
	ClientID     string `json:"clientId"`
	RequiresAuth bool   `json:"requiresAuth"`
}

// NewConnectionPending builds the greeting frame
func NewConnectionPending(clientID string, requiresAuth bool) *ConnectionPending {
	return &ConnectionPending{Type: TypeConnectionPending, ClientID: clientID, RequiresAuth: requiresAuth}
}

// AuthSuccess acknowledges a successful authentication
type AuthSuccess struct {
	Type        string   `json:"type"`
	ClientID    string   `json:"clientId,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// NewAuthSuccess builds an auth acknowledgement
func NewAuthSuccess(clientID string, permissions []string) *AuthSuccess {
	return &AuthSuccess{Type: TypeAuthSuccess, ClientID: clientID, Permissions: permissions}
}

// AuthFailed reports a terminal authentication failure; the connection is
// closed with CloseUnauthorized immediately after
type AuthFailed struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// NewAuthFailed builds an auth failure frame
func NewAuthFailed(reason string) *AuthFailed {
	return &AuthFailed{Type: TypeAuthFailed, Reason: reason}
}

// Registered confirms a worker registration with its final identity
type Registered struct {
	Type                 string   `json:"type"`
	WorkerID             string   `json:"workerId"`
	AssignedCapabilities []string `json:"assignedCapabilities"`
}

// NewRegistered builds a registration confirmation
func NewRegistered(workerID string, capabilities []string) *Registered {
	return &Registered{Type: TypeRegistered, WorkerID: workerID, AssignedCapabilities: capabilities}
}

// HeartbeatAck answers a client heartbeat frame
type HeartbeatAck struct {
	Type string `json:"type"`
}

// NewHeartbeatAck builds a heartbeat acknowledgement
func NewHeartbeatAck() *HeartbeatAck {
	return &HeartbeatAck{Type: TypeHeartbeatAck}
}

// Ping is the application-level liveness probe for browsers and bridges
type Ping struct {
	Type string `json:"type"`
}

// NewPing builds an application-level ping
func NewPing() *Ping {
	return &Ping{Type: TypePing}
}

// Subscribed echoes the channel patterns actually applied
type Subscribed struct {
	Type     string   `json:"type"`
	Channels []string `json:"channels"`
}

// NewSubscribed builds a subscription confirmation
func NewSubscribed(channels []string) *Subscribed {
	return &Subscribed{Type: TypeSubscribed, Channels: channels}
}

// TaskSpec describes a task handed to a worker
type TaskSpec struct {
	ID      string      `json:"id"`
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// TaskAssign dispatches a task to a worker
type TaskAssign struct {
	Type       string   `json:"type"`
	Task       TaskSpec `json:"task"`
	Capability string   `json:"capability"`
}

// NewTaskAssign builds a task dispatch frame
func NewTaskAssign(taskID, taskType string, payload interface{}) *TaskAssign {
	return &TaskAssign{
		Type:       TypeTaskAssign,
		Task:       TaskSpec{ID: taskID, Type: taskType, Payload: payload},
		Capability: taskType,
	}
}

// Event carries a published channel event
type Event struct {
	Type      string                 `json:"type"`
	Channel   string                 `json:"channel"`
	Data      map[string]interface{} `json:"data"`
	Timestamp string                 `json:"timestamp"`
}

// NewEvent builds an event frame with the current timestamp
func NewEvent(channel string, data map[string]interface{}) *Event {
	return &Event{Type: TypeEvent, Channel: channel, Data: data, Timestamp: Timestamp()}
}

// ErrorFrame reports a recoverable protocol error; the connection stays open
type ErrorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewError builds an error frame
func NewError(message string) *ErrorFrame {
	return &ErrorFrame{Type: TypeError, Message: message}
}
