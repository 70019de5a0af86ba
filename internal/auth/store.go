// Package auth implements the hub's two authentication strategies: opaque
// tokens validated through an external token store, and a static shared
// secret fallback whose strictness depends on peer locality.
package auth

import "context"

// TokenRecord is the store's view of a validated token
type TokenRecord struct {
	TokenID  string
	SystemID string
	Name     string
}

// Registration carries the worker details upserted on registration
type Registration struct {
	Hostname     string
	WorkerID     string
	Capabilities []string
	Metadata     map[string]interface{}
}

// WorkerRecord is the store's view of a registered worker
type WorkerRecord struct {
	SystemID string
	WorkerID string
	Hostname string
}

// TokenStore is the external token/registration collaborator. The hub never
// treats a store failure as fatal: validation errors degrade to the static
// fallback, registration and disconnect errors are logged and dropped.
type TokenStore interface {
	// ValidateToken resolves a plaintext token to its record. A revoked,
	// expired or unknown token returns (nil, nil); a non-nil error means
	// the store itself failed.
	ValidateToken(ctx context.Context, plain string) (*TokenRecord, error)

	// RegisterWorker upserts a worker registration keyed by systemID
	RegisterWorker(ctx context.Context, tokenID, systemID string, reg Registration) (*WorkerRecord, error)

	// DisconnectWorker marks a worker offline
	DisconnectWorker(ctx context.Context, systemID string) error
}
