package protocol

// AuthFrame is the first frame every client sends. The field combination
// decides the role: an explicit sse-writer client type marks a bridge, a
// token or capability list marks a worker, anything else a browser.
type AuthFrame struct {
	Type         string   `json:"type"`
	Token        string   `json:"token,omitempty"`
	ClientType   string   `json:"clientType,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
	SystemID     string   `json:"systemId,omitempty"`

	// Bridge scope, used later as the event content filter
	SessionID  string `json:"sessionId,omitempty"`
	ProjectID  string `json:"projectId,omitempty"`
	WorkingDir string `json:"workingDir,omitempty"`
}

// RegisterFrame announces a worker's capabilities after auth
type RegisterFrame struct {
	Type         string                 `json:"type"`
	Capabilities []string               `json:"capabilities"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	Hostname     string                 `json:"hostname,omitempty"`
}

// HeartbeatFrame is an application-level liveness signal
type HeartbeatFrame struct {
	Type string `json:"type"`
}

// PongFrame answers an application-level ping
type PongFrame struct {
	Type string `json:"type"`
}

// SubscribeFrame adds channel patterns for the sender
type SubscribeFrame struct {
	Type     string   `json:"type"`
	Channels []string `json:"channels"`
}

// UnsubscribeFrame removes channel patterns for the sender
type UnsubscribeFrame struct {
	Type     string   `json:"type"`
	Channels []string `json:"channels"`
}

// TaskCompleteFrame reports a successful task outcome
type TaskCompleteFrame struct {
	Type   string      `json:"type"`
	TaskID string      `json:"taskId"`
	Result interface{} `json:"result,omitempty"`
}

// TaskErrorFrame reports a failed task outcome
type TaskErrorFrame struct {
	Type   string `json:"type"`
	TaskID string `json:"taskId"`
	Error  string `json:"error"`
}

// TaskProgressFrame reports intermediate task progress
type TaskProgressFrame struct {
	Type     string  `json:"type"`
	TaskID   string  `json:"taskId"`
	Progress float64 `json:"progress"`
	Message  string  `json:"message,omitempty"`
}
