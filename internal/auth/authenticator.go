package auth

import (
	"context"

	"github.com/codefionn/workhub/internal/logger"
)

// Auth methods reported in Result.Method
const (
	MethodTokenStore = "token-store"
	MethodStatic     = "static"
	MethodOpen       = "open"
)

// Result is the outcome of a worker authentication attempt
type Result struct {
	OK     bool
	Method string

	// Populated only for store-backed successes
	TokenID  string
	SystemID string

	// Populated on failure
	Reason string
}

// Authenticator applies the worker auth order: store-backed token
// validation first, static shared-secret comparison second. Browsers and
// bridges never pass through here; they need no credential.
type Authenticator struct {
	store       TokenStore
	staticToken string
}

// NewAuthenticator creates an authenticator. Both the store and the static
// token are optional; with neither configured only local workers pass.
func NewAuthenticator(store TokenStore, staticToken string) *Authenticator {
	return &Authenticator{store: store, staticToken: staticToken}
}

// RequiresAuth reports whether a peer must authenticate before
// registering: remote peers always, local peers only when a static token
// is configured.
func (a *Authenticator) RequiresAuth(local bool) bool {
	return !local || a.staticToken != ""
}

// AuthenticateWorker validates a worker credential. A token-store failure
// is logged and degrades to the static path, never propagated.
func (a *Authenticator) AuthenticateWorker(ctx context.Context, token string, local bool) Result {
	if a.store != nil && token != "" {
		rec, err := a.store.ValidateToken(ctx, token)
		if err != nil {
			logger.Warn("Token store validation failed, falling back to static token: %v", err)
		} else if rec != nil {
			return Result{
				OK:       true,
				Method:   MethodTokenStore,
				TokenID:  rec.TokenID,
				SystemID: rec.SystemID,
			}
		}
	}

	if !local {
		if a.staticToken == "" {
			return Result{Reason: "authentication required"}
		}
		if token != a.staticToken {
			return Result{Reason: "invalid token"}
		}
		return Result{OK: true, Method: MethodStatic}
	}

	// Local peers: a configured static token must match, but with no token
	// configured the connection passes without a credential.
	if a.staticToken != "" && token != a.staticToken {
		return Result{Reason: "invalid token"}
	}
	if a.staticToken != "" {
		return Result{OK: true, Method: MethodStatic}
	}
	return Result{OK: true, Method: MethodOpen}
}
